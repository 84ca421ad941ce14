package consolesession

import (
	"context"
	"sync"
	"time"

	"github.com/eleven-am/live-console/internal/auditlog"
	"github.com/eleven-am/live-console/internal/live"
)

type Console struct {
	id         string
	model      string
	remoteAddr string
	createdAt  time.Time

	client *live.Client
	logs   *auditlog.Store
	subs   []live.Subscription

	mu      sync.Mutex
	preset  string
	lastErr string
}

type Info struct {
	ID         string    `json:"id"`
	Model      string    `json:"model"`
	Preset     string    `json:"preset,omitempty"`
	Status     string    `json:"status"`
	RemoteAddr string    `json:"remote_addr,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	LogEntries int       `json:"log_entries"`
}

func (c *Console) ID() string {
	return c.id
}

func (c *Console) Client() *live.Client {
	return c.client
}

func (c *Console) Logs() *auditlog.Store {
	return c.logs
}

func (c *Console) Info() Info {
	c.mu.Lock()
	preset := c.preset
	c.mu.Unlock()

	return Info{
		ID:         c.id,
		Model:      c.model,
		Preset:     preset,
		Status:     c.client.Status().String(),
		RemoteAddr: c.remoteAddr,
		CreatedAt:  c.createdAt,
		LogEntries: c.logs.Len(),
	}
}

func (c *Console) Connect(ctx context.Context, preset string, cfg *live.SessionConfig) error {
	if err := c.client.Connect(ctx, cfg); err != nil {
		return err
	}
	c.mu.Lock()
	c.preset = preset
	c.mu.Unlock()
	return nil
}

func (c *Console) close() {
	c.client.Disconnect()
	for _, sub := range c.subs {
		c.client.Unsubscribe(sub)
	}
}

func (c *Console) setLastError(msg string) {
	c.mu.Lock()
	c.lastErr = msg
	c.mu.Unlock()
}

func (c *Console) lastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}
