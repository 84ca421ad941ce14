package auditlog

import (
	"sync"

	"github.com/eleven-am/live-console/internal/live"
)

const DefaultCapacity = 1000

// Store keeps the most recent log entries of one console session. A string
// message that repeats the previous entry's type and message bumps that
// entry's Count instead of adding a line.
type Store struct {
	mu       sync.RWMutex
	entries  []live.LogEntry
	capacity int
}

func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		entries:  make([]live.LogEntry, 0, min(capacity, 64)),
		capacity: capacity,
	}
}

func (s *Store) Append(e live.LogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n := len(s.entries); n > 0 && repeats(s.entries[n-1], e) {
		last := &s.entries[n-1]
		last.Count++
		last.Date = e.Date
		return
	}

	if e.Count == 0 {
		e.Count = 1
	}
	if len(s.entries) == s.capacity {
		copy(s.entries, s.entries[1:])
		s.entries = s.entries[:len(s.entries)-1]
	}
	s.entries = append(s.entries, e)
}

func repeats(prev, next live.LogEntry) bool {
	if prev.Type != next.Type {
		return false
	}
	a, ok := prev.Message.(string)
	if !ok {
		return false
	}
	b, ok := next.Message.(string)
	return ok && a == b
}

func (s *Store) Entries() []live.LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]live.LogEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Tail returns up to n of the newest entries, oldest first.
func (s *Store) Tail(n int) []live.LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n <= 0 || n > len(s.entries) {
		n = len(s.entries)
	}
	out := make([]live.LogEntry, n)
	copy(out, s.entries[len(s.entries)-n:])
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Store) Clear() {
	s.mu.Lock()
	s.entries = s.entries[:0]
	s.mu.Unlock()
}
