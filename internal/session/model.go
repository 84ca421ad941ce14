package session

import (
	"strconv"
	"time"
)

type Status string

const (
	StatusActive Status = "active"
	StatusEnded  Status = "ended"
	StatusError  Status = "error"
)

type Session struct {
	ID           string     `json:"id"`
	Model        string     `json:"model"`
	Preset       string     `json:"preset,omitempty"`
	RemoteAddr   string     `json:"remote_addr,omitempty"`
	Status       Status     `json:"status"`
	LastError    string     `json:"last_error,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	LastActiveAt time.Time  `json:"last_active_at"`
	EndedAt      *time.Time `json:"ended_at,omitempty"`
}

func (s *Session) RedisKey() string {
	return RedisKey(s.ID)
}

func RedisKey(id string) string {
	return "live:session:" + id
}

const (
	MetricSessions      = "sessions"
	MetricTurns         = "turns"
	MetricToolCalls     = "tool_calls"
	MetricInterruptions = "interruptions"
	MetricErrors        = "errors"
)

type Metrics struct {
	Model         string `json:"model"`
	Date          string `json:"date"`
	Hour          int    `json:"hour"`
	Sessions      int64  `json:"sessions"`
	Turns         int64  `json:"turns"`
	ToolCalls     int64  `json:"tool_calls"`
	Interruptions int64  `json:"interruptions"`
	Errors        int64  `json:"errors"`
}

func MetricsRedisKey(model, date string, hour int) string {
	return "live:model:" + model + ":metrics:" + date + ":" + strconv.Itoa(hour)
}
