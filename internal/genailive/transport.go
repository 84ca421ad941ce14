package genailive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/eleven-am/live-console/internal/live"
	"github.com/gorilla/websocket"
	"google.golang.org/genai"
)

const (
	BackendGemini = "gemini"
	BackendVertex = "vertex"

	defaultAPIVersion = "v1beta"
)

type Config struct {
	APIKey     string
	Backend    string
	Project    string
	Location   string
	APIVersion string
	BaseURL    string
}

type conn interface {
	SendClientContent(genai.LiveClientContentInput) error
	SendRealtimeInput(genai.LiveRealtimeInput) error
	SendToolResponse(genai.LiveToolResponseInput) error
	Receive() (*genai.LiveServerMessage, error)
	Close() error
}

type Transport struct {
	client *genai.Client
	log    *slog.Logger
}

func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Transport, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cc, err := clientConfig(cfg)
	if err != nil {
		return nil, err
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Transport{
		client: client,
		log:    logger.With("component", "genai_live"),
	}, nil
}

func clientConfig(cfg Config) (*genai.ClientConfig, error) {
	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = defaultAPIVersion
	}
	cc := &genai.ClientConfig{
		APIKey:   cfg.APIKey,
		Project:  cfg.Project,
		Location: cfg.Location,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    cfg.BaseURL,
			APIVersion: apiVersion,
		},
	}
	switch strings.ToLower(cfg.Backend) {
	case "", BackendGemini:
		if cfg.APIKey == "" {
			return nil, errors.New("genai live: api key is required for the gemini backend")
		}
		cc.Backend = genai.BackendGeminiAPI
	case BackendVertex:
		if cfg.Project == "" || cfg.Location == "" {
			return nil, errors.New("genai live: project and location are required for the vertex backend")
		}
		cc.Backend = genai.BackendVertexAI
	default:
		return nil, fmt.Errorf("genai live: unknown backend %q", cfg.Backend)
	}
	return cc, nil
}

func (t *Transport) Open(ctx context.Context, model string, cfg *live.SessionConfig, cb live.Callbacks) (live.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, err := t.client.Live.Connect(ctx, model, ConnectConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", model, err)
	}
	t.log.Info("live session opened", "model", model)
	return startSession(c, cb, t.log.With("model", model)), nil
}

type session struct {
	conn conn
	cb   live.Callbacks
	log  *slog.Logger

	writeMu   sync.Mutex
	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
	done      chan struct{}
}

func startSession(c conn, cb live.Callbacks, logger *slog.Logger) *session {
	s := &session{
		conn: c,
		cb:   cb,
		log:  logger,
		done: make(chan struct{}),
	}
	if cb.OnOpen != nil {
		cb.OnOpen()
	}
	go s.readLoop()
	return s
}

func (s *session) readLoop() {
	defer close(s.done)
	for {
		msg, err := s.conn.Receive()
		if err != nil {
			s.finish(err)
			return
		}
		in := Inbound(msg)
		if in == nil {
			s.log.Debug("ignoring server message without a known payload")
			continue
		}
		if s.cb.OnMessage != nil {
			s.cb.OnMessage(in)
		}
	}
}

func (s *session) finish(err error) {
	if s.closed.Load() {
		s.log.Debug("read loop stopped after local close", "error", err)
		return
	}

	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		s.log.Info("live session closed by server", "code", ce.Code, "reason", ce.Text)
		if s.cb.OnClose != nil {
			s.cb.OnClose(live.CloseEvent{Code: ce.Code, Reason: ce.Text})
		}
		return
	}

	s.log.Warn("live session read failed", "error", err)
	if s.cb.OnError != nil {
		s.cb.OnError(err)
	}
}

func (s *session) SendTurn(turns []live.Part, turnComplete bool) error {
	parts, err := ToParts(turns)
	if err != nil {
		return err
	}
	input := genai.LiveClientContentInput{TurnComplete: genai.Ptr(turnComplete)}
	if len(parts) > 0 {
		input.Turns = []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	}
	return s.write(func() error { return s.conn.SendClientContent(input) })
}

func (s *session) SendRealtime(chunk live.RealtimeChunk) error {
	input, err := RealtimeInput(chunk)
	if err != nil {
		return err
	}
	return s.write(func() error { return s.conn.SendRealtimeInput(input) })
}

func (s *session) SendToolResponse(resp live.ToolResponse) error {
	input := ToolResponseInput(resp)
	return s.write(func() error { return s.conn.SendToolResponse(input) })
}

func (s *session) write(fn func() error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.closed.Load() {
		return live.ErrNotConnected
	}
	return fn()
}

// Close shuts the connection. It does not wait for the read loop, so it is
// safe to call from inside a callback.
func (s *session) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.closeErr = s.conn.Close()
	})
	return s.closeErr
}
