package live

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

type Option func(*Client)

func WithBus(bus *Bus) Option {
	return func(c *Client) {
		if bus != nil {
			c.bus = bus
		}
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// Client drives one live session: it owns the connection state, dispatches
// inbound messages onto its bus and gates every outbound call.
//
// Inbound callbacks are serialized with Connect, so Open is always published
// before the first inbound event of a session. Handlers may call the outbound
// methods and Disconnect, but must not call Connect.
type Client struct {
	model     string
	transport Transport
	bus       *Bus
	log       *slog.Logger
	now       func() time.Time

	mu      sync.Mutex
	status  Status
	session Session
	gen     uint64

	dispatchMu sync.Mutex
}

func NewClient(model string, transport Transport, opts ...Option) *Client {
	c := &Client{
		model:     model,
		transport: transport,
		bus:       NewBus(),
		log:       slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With("component", "live_client", "model", model)
	return c
}

func (c *Client) Model() string {
	return c.model
}

func (c *Client) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Client) Subscribe(name EventName, fn Handler) Subscription {
	return c.bus.Subscribe(name, fn)
}

func (c *Client) Unsubscribe(sub Subscription) {
	c.bus.Unsubscribe(sub)
}

// Connect opens a session. It fails without side effects when the client is
// already connecting or connected. A transport failure is reported as an
// Error event and returned wrapped in ErrConnectFailed.
func (c *Client) Connect(ctx context.Context, cfg *SessionConfig) error {
	c.mu.Lock()
	if c.status != StatusDisconnected {
		c.mu.Unlock()
		return ErrAlreadyConnected
	}
	c.status = StatusConnecting
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	c.dispatchMu.Lock()
	defer c.dispatchMu.Unlock()

	sess, err := c.transport.Open(ctx, c.model, cfg, c.callbacks(gen))
	if err != nil {
		c.mu.Lock()
		current := c.gen == gen
		if current {
			c.session = nil
			c.status = StatusDisconnected
		}
		c.mu.Unlock()

		connErr := fmt.Errorf("%w: %w", ErrConnectFailed, err)
		if current {
			c.handleError(connErr)
		}
		return connErr
	}

	c.mu.Lock()
	if c.gen != gen || c.status != StatusConnecting {
		c.mu.Unlock()
		_ = sess.Close()
		return fmt.Errorf("%w: disconnected while connecting", ErrConnectFailed)
	}
	c.session = sess
	c.status = StatusConnected
	c.mu.Unlock()

	c.logEntry(LogClientOpen, "Connected")
	c.bus.Publish(Open{})
	return nil
}

// Disconnect drops the session unconditionally. Calling it while already
// disconnected still logs and leaves the client disconnected.
func (c *Client) Disconnect() {
	c.mu.Lock()
	sess := c.session
	c.session = nil
	c.status = StatusDisconnected
	c.gen++
	c.mu.Unlock()

	if sess != nil {
		if err := sess.Close(); err != nil {
			c.log.Debug("session close failed", "error", err)
		}
	}
	c.logEntry(LogClientClose, "Disconnected")
}

func (c *Client) callbacks(gen uint64) Callbacks {
	return Callbacks{
		OnOpen: func() {
			c.log.Debug("transport opened")
		},
		OnMessage: func(msg InboundMessage) {
			c.dispatchMu.Lock()
			defer c.dispatchMu.Unlock()
			if c.isCurrent(gen) {
				c.dispatch(msg)
			}
		},
		OnError: func(err error) {
			c.dispatchMu.Lock()
			defer c.dispatchMu.Unlock()
			if c.isCurrent(gen) {
				c.handleError(err)
			}
		},
		OnClose: func(ev CloseEvent) {
			c.dispatchMu.Lock()
			defer c.dispatchMu.Unlock()
			if c.isCurrent(gen) {
				c.handleClose(ev)
			}
		},
	}
}

func (c *Client) isCurrent(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		c.log.Debug("dropping callback from stale session")
		return false
	}
	return true
}

func (c *Client) detach() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	sess := c.session
	c.session = nil
	c.status = StatusDisconnected
	return sess
}

func (c *Client) handleError(err error) {
	if sess := c.detach(); sess != nil {
		_ = sess.Close()
	}
	c.log.Warn("live session error", "error", err)
	c.logEntry(LogServerError, err.Error())
	c.bus.Publish(Error{Message: err.Error()})
}

func (c *Client) handleClose(ev CloseEvent) {
	if sess := c.detach(); sess != nil {
		_ = sess.Close()
	}
	reason := CloseReason(ev.Reason)
	c.log.Info("live session closed", "code", ev.Code, "reason", reason)
	c.logEntry(LogServerClose, "disconnected "+reason)
	c.bus.Publish(Close{Reason: reason})
}

func (c *Client) logEntry(typ string, message any) {
	c.log.Debug("live log", "type", typ)
	c.bus.Publish(Log{Entry: LogEntry{
		Date:    c.now(),
		Type:    typ,
		Message: message,
	}})
}
