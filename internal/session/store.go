package session

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/eleven-am/live-console/internal/shared"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	sessionTTL = 24 * time.Hour
	metricsTTL = 7 * 24 * time.Hour
	scanCount  = 100
)

type Store struct {
	redis *redis.Client
	now   func() time.Time
}

func NewStore(redisClient *redis.Client) *Store {
	return &Store{redis: redisClient, now: time.Now}
}

func (s *Store) CreateSession(ctx context.Context, sess *Session) error {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	now := s.now()
	sess.Status = StatusActive
	sess.StartedAt = now
	sess.LastActiveAt = now
	return s.save(ctx, sess)
}

func (s *Store) GetSession(ctx context.Context, id string) (*Session, error) {
	data, err := s.redis.Get(ctx, RedisKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *Store) UpdateSession(ctx context.Context, sess *Session) error {
	sess.LastActiveAt = s.now()
	return s.save(ctx, sess)
}

// EndSession marks the session finished. A non-empty reason records it as
// failed.
func (s *Store) EndSession(ctx context.Context, id, reason string) error {
	sess, err := s.GetSession(ctx, id)
	if err != nil {
		return err
	}
	now := s.now()
	sess.Status = StatusEnded
	if reason != "" {
		sess.Status = StatusError
		sess.LastError = reason
	}
	sess.EndedAt = &now
	return s.UpdateSession(ctx, sess)
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
	return s.redis.Del(ctx, RedisKey(id)).Err()
}

func (s *Store) ListSessions(ctx context.Context, status Status) ([]*Session, error) {
	var sessions []*Session
	iter := s.redis.Scan(ctx, 0, RedisKey("*"), scanCount).Iterator()
	for iter.Next(ctx) {
		data, err := s.redis.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			continue
		}
		var sess Session
		if err := json.Unmarshal(data, &sess); err != nil {
			continue
		}
		if status == "" || sess.Status == status {
			sessions = append(sessions, &sess)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (s *Store) save(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, sess.RedisKey(), data, sessionTTL).Err()
}

func (s *Store) IncrementMetric(ctx context.Context, model, field string, value int64) error {
	now := s.now().UTC()
	key := MetricsRedisKey(model, now.Format(time.DateOnly), now.Hour())

	pipe := s.redis.Pipeline()
	pipe.HIncrBy(ctx, key, field, value)
	pipe.Expire(ctx, key, metricsTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// GetMetrics returns the non-empty hourly buckets of the last hours, newest
// first.
func (s *Store) GetMetrics(ctx context.Context, model string, hours int) ([]*Metrics, error) {
	now := s.now().UTC()
	var metrics []*Metrics

	for i := range hours {
		t := now.Add(-time.Duration(i) * time.Hour)
		key := MetricsRedisKey(model, t.Format(time.DateOnly), t.Hour())

		data, err := s.redis.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, err
		}
		if len(data) == 0 {
			continue
		}

		metrics = append(metrics, &Metrics{
			Model:         model,
			Date:          t.Format(time.DateOnly),
			Hour:          t.Hour(),
			Sessions:      parseCount(data[MetricSessions]),
			Turns:         parseCount(data[MetricTurns]),
			ToolCalls:     parseCount(data[MetricToolCalls]),
			Interruptions: parseCount(data[MetricInterruptions]),
			Errors:        parseCount(data[MetricErrors]),
		})
	}
	return metrics, nil
}

func parseCount(v string) int64 {
	n, _ := strconv.ParseInt(v, 10, 64)
	return n
}
