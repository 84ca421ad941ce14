package auditlog

import (
	"fmt"
	"testing"
	"time"

	"github.com/eleven-am/live-console/internal/live"
)

func entry(typ string, msg any) live.LogEntry {
	return live.LogEntry{Date: time.Unix(0, 0), Type: typ, Message: msg}
}

func TestStore_CollapsesRepeats(t *testing.T) {
	s := NewStore(10)
	s.Append(entry(live.LogServerAudio, "buffer (960)"))
	s.Append(entry(live.LogServerAudio, "buffer (960)"))
	later := entry(live.LogServerAudio, "buffer (960)")
	later.Date = time.Unix(5, 0)
	s.Append(later)
	s.Append(entry(live.LogServerAudio, "buffer (480)"))

	got := s.Entries()
	if len(got) != 2 {
		t.Fatalf("entries = %d, want 2", len(got))
	}
	if got[0].Count != 3 {
		t.Errorf("count = %d, want 3", got[0].Count)
	}
	if !got[0].Date.Equal(time.Unix(5, 0)) {
		t.Errorf("date = %v, want the latest repeat", got[0].Date)
	}
	if got[1].Count != 1 {
		t.Errorf("second count = %d, want 1", got[1].Count)
	}
}

func TestStore_DifferentTypeDoesNotCollapse(t *testing.T) {
	s := NewStore(10)
	s.Append(entry(live.LogClientOpen, "Connected"))
	s.Append(entry(live.LogServerClose, "Connected"))
	if s.Len() != 2 {
		t.Errorf("len = %d, want 2", s.Len())
	}
}

func TestStore_StructuredMessagesNeverCollapse(t *testing.T) {
	s := NewStore(10)
	payload := map[string]any{"ids": []string{"a"}}
	s.Append(entry(live.LogServerToolCall, payload))
	s.Append(entry(live.LogServerToolCall, payload))
	if s.Len() != 2 {
		t.Errorf("len = %d, want 2", s.Len())
	}
}

func TestStore_EvictsOldest(t *testing.T) {
	s := NewStore(3)
	for i := range 5 {
		s.Append(entry(live.LogClientSend, fmt.Sprintf("msg %d", i)))
	}

	got := s.Entries()
	if len(got) != 3 {
		t.Fatalf("entries = %d, want 3", len(got))
	}
	if got[0].Message != "msg 2" || got[2].Message != "msg 4" {
		t.Errorf("entries = %v", got)
	}
}

func TestStore_DefaultCapacity(t *testing.T) {
	s := NewStore(0)
	if s.capacity != DefaultCapacity {
		t.Errorf("capacity = %d, want %d", s.capacity, DefaultCapacity)
	}
}

func TestStore_Tail(t *testing.T) {
	s := NewStore(10)
	for i := range 4 {
		s.Append(entry(live.LogClientSend, fmt.Sprintf("msg %d", i)))
	}

	tail := s.Tail(2)
	if len(tail) != 2 || tail[0].Message != "msg 2" || tail[1].Message != "msg 3" {
		t.Errorf("Tail(2) = %v", tail)
	}
	if len(s.Tail(0)) != 4 || len(s.Tail(99)) != 4 {
		t.Error("out of range tail should return everything")
	}
}

func TestStore_EntriesIsACopy(t *testing.T) {
	s := NewStore(10)
	s.Append(entry(live.LogClientOpen, "Connected"))
	got := s.Entries()
	got[0].Message = "changed"
	if s.Entries()[0].Message != "Connected" {
		t.Error("Entries exposed internal storage")
	}
}

func TestStore_Clear(t *testing.T) {
	s := NewStore(10)
	s.Append(entry(live.LogClientOpen, "Connected"))
	s.Clear()
	if s.Len() != 0 {
		t.Errorf("len = %d after Clear", s.Len())
	}
}
