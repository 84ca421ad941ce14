package consolesession

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/eleven-am/live-console/internal/auditlog"
	"github.com/eleven-am/live-console/internal/live"
	"github.com/eleven-am/live-console/internal/liveconfig"
	"github.com/eleven-am/live-console/internal/session"
	"github.com/google/uuid"
)

var (
	ErrTooManySessions = errors.New("consolesession: session limit reached")
	ErrNoTransport     = errors.New("consolesession: live backend is not configured")
)

const (
	recordTimeout   = 2 * time.Second
	recordQueueSize = 256
)

type Recorder interface {
	CreateSession(ctx context.Context, sess *session.Session) error
	EndSession(ctx context.Context, id, reason string) error
	IncrementMetric(ctx context.Context, model, field string, value int64) error
}

type ManagerConfig struct {
	Transport   live.Transport
	Model       string
	Presets     *liveconfig.File
	Sink        auditlog.Sink
	Records     Recorder
	LogCapacity int
	MaxSessions int
	Log         *slog.Logger
}

type Manager struct {
	transport   live.Transport
	model       string
	presets     *liveconfig.File
	sink        auditlog.Sink
	records     Recorder
	logCapacity int
	maxSessions int
	log         *slog.Logger

	mu       sync.RWMutex
	consoles map[string]*Console

	queue    chan func(context.Context) error
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func NewManager(cfg ManagerConfig) *Manager {
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	if cfg.Presets == nil {
		cfg.Presets = liveconfig.Builtin()
	}
	model := cfg.Model
	if cfg.Presets.Model != "" {
		model = cfg.Presets.Model
	}

	m := &Manager{
		transport:   cfg.Transport,
		model:       model,
		presets:     cfg.Presets,
		sink:        cfg.Sink,
		records:     cfg.Records,
		logCapacity: cfg.LogCapacity,
		maxSessions: cfg.MaxSessions,
		log:         cfg.Log.With("component", "console_manager"),
		consoles:    make(map[string]*Console),
	}
	if m.records != nil {
		m.queue = make(chan func(context.Context) error, recordQueueSize)
		m.stop = make(chan struct{})
		m.done = make(chan struct{})
		go m.runRecords()
	}
	return m
}

func (m *Manager) Model() string {
	return m.model
}

func (m *Manager) Presets() *liveconfig.File {
	return m.presets
}

func (m *Manager) Ready() bool {
	return m.transport != nil
}

// Create registers a new console with its own live client. The client is
// not connected yet.
func (m *Manager) Create(remoteAddr string) (*Console, error) {
	if m.transport == nil {
		return nil, ErrNoTransport
	}

	m.mu.Lock()
	if m.maxSessions > 0 && len(m.consoles) >= m.maxSessions {
		m.mu.Unlock()
		return nil, ErrTooManySessions
	}
	id := uuid.NewString()
	c := &Console{
		id:         id,
		model:      m.model,
		remoteAddr: remoteAddr,
		createdAt:  time.Now(),
		logs:       auditlog.NewStore(m.logCapacity),
	}
	c.client = live.NewClient(m.model, m.transport, live.WithLogger(m.log.With("session_id", id)))
	m.consoles[id] = c
	m.mu.Unlock()

	c.subs = append(c.subs, auditlog.Attach(c.client, id, c.logs, m.sink))
	c.subs = append(c.subs, m.trackUsage(c)...)

	m.record(func(ctx context.Context) error {
		return m.records.CreateSession(ctx, &session.Session{
			ID:         id,
			Model:      m.model,
			RemoteAddr: remoteAddr,
		})
	})

	m.log.Info("console session created", "session_id", id, "remote_addr", remoteAddr)
	return c, nil
}

// ResolveConfig picks the config for a connect request: an explicit config
// wins, otherwise the named preset (or the default one) is used.
func (m *Manager) ResolveConfig(preset string, override *live.SessionConfig) (string, *live.SessionConfig, error) {
	if override != nil {
		if err := liveconfig.Validate(override); err != nil {
			return "", nil, fmt.Errorf("invalid session config: %w", err)
		}
		return preset, override, nil
	}
	if preset == "" {
		preset = m.presets.Default
	}
	cfg, err := m.presets.Preset(preset)
	if err != nil {
		return "", nil, err
	}
	return preset, cfg, nil
}

func (m *Manager) trackUsage(c *Console) []live.Subscription {
	count := func(field string) {
		m.record(func(ctx context.Context) error {
			return m.records.IncrementMetric(ctx, c.model, field, 1)
		})
	}

	return []live.Subscription{
		live.On(c.client, func(live.Open) {
			c.setLastError("")
			count(session.MetricSessions)
		}),
		live.On(c.client, func(live.TurnComplete) { count(session.MetricTurns) }),
		live.On(c.client, func(live.ToolCallEvent) { count(session.MetricToolCalls) }),
		live.On(c.client, func(live.Interrupted) { count(session.MetricInterruptions) }),
		live.On(c.client, func(e live.Error) {
			c.setLastError(e.Message)
			count(session.MetricErrors)
		}),
		live.On(c.client, func(e live.Close) {
			if e.Reason != "" {
				c.setLastError(e.Reason)
			}
		}),
	}
}

func (m *Manager) Get(id string) (*Console, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.consoles[id]
	return c, ok
}

// Remove disconnects the console and closes its record. Unknown ids are
// ignored.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	c, ok := m.consoles[id]
	delete(m.consoles, id)
	m.mu.Unlock()
	if !ok {
		return
	}

	c.close()
	reason := c.lastError()
	m.record(func(ctx context.Context) error {
		return m.records.EndSession(ctx, id, reason)
	})
	m.log.Info("console session removed", "session_id", id)
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.consoles)
}

func (m *Manager) CountByStatus() map[string]int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[string]int, 3)
	for _, c := range m.consoles {
		counts[c.client.Status().String()]++
	}
	return counts
}

func (m *Manager) List() []Info {
	m.mu.RLock()
	infos := make([]Info, 0, len(m.consoles))
	for _, c := range m.consoles {
		infos = append(infos, c.Info())
	}
	m.mu.RUnlock()

	slices.SortFunc(infos, func(a, b Info) int {
		if n := a.CreatedAt.Compare(b.CreatedAt); n != 0 {
			return n
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return infos
}

func (m *Manager) Close() error {
	m.mu.RLock()
	ids := make([]string, 0, len(m.consoles))
	for id := range m.consoles {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	for _, id := range ids {
		m.Remove(id)
	}

	if m.records != nil {
		m.stopOnce.Do(func() { close(m.stop) })
		<-m.done
	}
	return nil
}

// record queues fn for the record worker. It never blocks: event handlers
// call it from the live client's dispatch path.
func (m *Manager) record(fn func(ctx context.Context) error) {
	if m.records == nil {
		return
	}
	select {
	case m.queue <- fn:
	default:
		m.log.Warn("record queue full, dropping session activity")
	}
}

func (m *Manager) runRecords() {
	defer close(m.done)
	for {
		select {
		case fn := <-m.queue:
			m.apply(fn)
		case <-m.stop:
			for {
				select {
				case fn := <-m.queue:
					m.apply(fn)
				default:
					return
				}
			}
		}
	}
}

func (m *Manager) apply(fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		m.log.Warn("failed to record session activity", "error", err)
	}
}
