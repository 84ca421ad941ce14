package auditlog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/eleven-am/live-console/internal/live"
	"github.com/redis/go-redis/v9"
)

const (
	logChannel = "live:%s:logs"

	publishTimeout   = 2 * time.Second
	publishQueueSize = 512
)

func Channel(sessionID string) string {
	return fmt.Sprintf(logChannel, sessionID)
}

type Record struct {
	SessionID string        `json:"session_id"`
	Entry     live.LogEntry `json:"entry"`
}

// Publisher fans log entries out over redis pub/sub. Publish never blocks
// the caller; entries are dropped when the queue is full.
type Publisher struct {
	redis  *redis.Client
	logger *slog.Logger
	queue  chan Record

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewPublisher(redisClient *redis.Client, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Publisher{
		redis:  redisClient,
		logger: logger.With("component", "auditlog_publisher"),
		queue:  make(chan Record, publishQueueSize),
		ctx:    ctx,
		cancel: cancel,
	}
	p.wg.Add(1)
	go p.run()
	return p
}

func (p *Publisher) Publish(sessionID string, e live.LogEntry) {
	select {
	case p.queue <- Record{SessionID: sessionID, Entry: e}:
	case <-p.ctx.Done():
	default:
		p.logger.Warn("log queue full, dropping entry", "session_id", sessionID, "type", e.Type)
	}
}

func (p *Publisher) run() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case rec := <-p.queue:
			p.send(rec)
		}
	}
}

func (p *Publisher) send(rec Record) {
	data, err := json.Marshal(rec)
	if err != nil {
		p.logger.Error("marshal log entry", "error", err, "session_id", rec.SessionID, "type", rec.Entry.Type)
		return
	}

	ctx, cancel := context.WithTimeout(p.ctx, publishTimeout)
	defer cancel()
	if err := p.redis.Publish(ctx, Channel(rec.SessionID), data).Err(); err != nil {
		p.logger.Warn("publish log entry", "error", err, "session_id", rec.SessionID)
	}
}

func Follow(ctx context.Context, client *redis.Client, sessionID string, fn func(Record)) error {
	pubsub := client.Subscribe(ctx, Channel(sessionID))
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", Channel(sessionID), err)
	}

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("receive log entry: %w", err)
		}
		var rec Record
		if err := json.Unmarshal([]byte(msg.Payload), &rec); err != nil {
			continue
		}
		fn(rec)
	}
}

func (p *Publisher) Close() error {
	p.cancel()
	p.wg.Wait()
	return nil
}
