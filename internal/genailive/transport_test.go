package genailive

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/eleven-am/live-console/internal/live"
	"github.com/gorilla/websocket"
	"google.golang.org/genai"
)

type fakeConn struct {
	msgs chan *genai.LiveServerMessage
	errs chan error

	mu       sync.Mutex
	content  []genai.LiveClientContentInput
	realtime []genai.LiveRealtimeInput
	tools    []genai.LiveToolResponseInput
	closed   int
	closeErr error
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		msgs: make(chan *genai.LiveServerMessage, 8),
		errs: make(chan error, 1),
	}
}

func (f *fakeConn) SendClientContent(in genai.LiveClientContentInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.content = append(f.content, in)
	return nil
}

func (f *fakeConn) SendRealtimeInput(in genai.LiveRealtimeInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.realtime = append(f.realtime, in)
	return nil
}

func (f *fakeConn) SendToolResponse(in genai.LiveToolResponseInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tools = append(f.tools, in)
	return nil
}

func (f *fakeConn) Receive() (*genai.LiveServerMessage, error) {
	select {
	case m := <-f.msgs:
		return m, nil
	case err := <-f.errs:
		return nil, err
	}
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	f.closed++
	f.mu.Unlock()
	select {
	case f.errs <- errors.New("use of closed network connection"):
	default:
	}
	return f.closeErr
}

type callbackLog struct {
	mu       sync.Mutex
	opened   int
	messages []live.InboundMessage
	errs     []error
	closes   []live.CloseEvent
	done     chan struct{}
}

func newCallbackLog() *callbackLog {
	return &callbackLog{done: make(chan struct{}, 4)}
}

func (l *callbackLog) callbacks() live.Callbacks {
	return live.Callbacks{
		OnOpen: func() {
			l.mu.Lock()
			l.opened++
			l.mu.Unlock()
		},
		OnMessage: func(m live.InboundMessage) {
			l.mu.Lock()
			l.messages = append(l.messages, m)
			l.mu.Unlock()
			l.done <- struct{}{}
		},
		OnError: func(err error) {
			l.mu.Lock()
			l.errs = append(l.errs, err)
			l.mu.Unlock()
			l.done <- struct{}{}
		},
		OnClose: func(ev live.CloseEvent) {
			l.mu.Lock()
			l.closes = append(l.closes, ev)
			l.mu.Unlock()
			l.done <- struct{}{}
		},
	}
}

func (l *callbackLog) wait(t *testing.T) {
	t.Helper()
	select {
	case <-l.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for callback")
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSession_DeliversMessagesInOrder(t *testing.T) {
	fc := newFakeConn()
	cl := newCallbackLog()
	s := startSession(fc, cl.callbacks(), discardLogger())
	defer s.Close()

	fc.msgs <- &genai.LiveServerMessage{SetupComplete: &genai.LiveServerSetupComplete{}}
	fc.msgs <- &genai.LiveServerMessage{}
	fc.msgs <- &genai.LiveServerMessage{ServerContent: &genai.LiveServerContent{TurnComplete: true}}
	cl.wait(t)
	cl.wait(t)

	cl.mu.Lock()
	defer cl.mu.Unlock()
	if cl.opened != 1 {
		t.Errorf("opened = %d, want 1", cl.opened)
	}
	if len(cl.messages) != 2 {
		t.Fatalf("messages = %d, want 2 (empty message skipped)", len(cl.messages))
	}
	if _, ok := cl.messages[0].(*live.SetupComplete); !ok {
		t.Errorf("first message = %T", cl.messages[0])
	}
	if _, ok := cl.messages[1].(*live.ServerContent); !ok {
		t.Errorf("second message = %T", cl.messages[1])
	}
}

func TestSession_ServerCloseReportsCodeAndReason(t *testing.T) {
	fc := newFakeConn()
	cl := newCallbackLog()
	startSession(fc, cl.callbacks(), discardLogger())

	fc.errs <- &websocket.CloseError{Code: 1011, Text: "[ORIGINAL ERROR] quota exceeded"}
	cl.wait(t)

	cl.mu.Lock()
	defer cl.mu.Unlock()
	if len(cl.closes) != 1 || len(cl.errs) != 0 {
		t.Fatalf("closes = %v, errs = %v", cl.closes, cl.errs)
	}
	if cl.closes[0].Code != 1011 || live.CloseReason(cl.closes[0].Reason) != "quota exceeded" {
		t.Errorf("close = %+v", cl.closes[0])
	}
}

func TestSession_ReadFailureReportsError(t *testing.T) {
	fc := newFakeConn()
	cl := newCallbackLog()
	startSession(fc, cl.callbacks(), discardLogger())

	fc.errs <- errors.New("unexpected frame")
	cl.wait(t)

	cl.mu.Lock()
	defer cl.mu.Unlock()
	if len(cl.errs) != 1 || len(cl.closes) != 0 {
		t.Fatalf("errs = %v, closes = %v", cl.errs, cl.closes)
	}
}

func TestSession_LocalCloseIsSilent(t *testing.T) {
	fc := newFakeConn()
	cl := newCallbackLog()
	s := startSession(fc, cl.callbacks(), discardLogger())

	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}

	select {
	case <-s.done:
	case <-time.After(2 * time.Second):
		t.Fatal("read loop did not stop")
	}

	cl.mu.Lock()
	defer cl.mu.Unlock()
	if len(cl.errs) != 0 || len(cl.closes) != 0 {
		t.Errorf("local close produced callbacks: errs=%v closes=%v", cl.errs, cl.closes)
	}
	fc.mu.Lock()
	defer fc.mu.Unlock()
	if fc.closed != 1 {
		t.Errorf("conn closed %d times, want 1", fc.closed)
	}
}

func TestSession_Sends(t *testing.T) {
	fc := newFakeConn()
	s := startSession(fc, live.Callbacks{}, discardLogger())
	defer s.Close()

	if err := s.SendTurn([]live.Part{live.TextPart("hi")}, false); err != nil {
		t.Fatalf("SendTurn() error = %v", err)
	}
	if err := s.SendRealtime(live.RealtimeChunk{MIMEType: "audio/pcm;rate=16000", Data: "AAE="}); err != nil {
		t.Fatalf("SendRealtime() error = %v", err)
	}
	if err := s.SendToolResponse(live.ToolResponse{FunctionResponses: []live.FunctionResponse{{ID: "c1", Name: "f"}}}); err != nil {
		t.Fatalf("SendToolResponse() error = %v", err)
	}

	fc.mu.Lock()
	defer fc.mu.Unlock()
	if len(fc.content) != 1 || *fc.content[0].TurnComplete {
		t.Errorf("content = %+v", fc.content)
	}
	if turns := fc.content[0].Turns; len(turns) != 1 || turns[0].Role != genai.RoleUser || turns[0].Parts[0].Text != "hi" {
		t.Errorf("turns = %+v", turns)
	}
	if len(fc.realtime) != 1 || fc.realtime[0].Audio == nil {
		t.Errorf("realtime = %+v", fc.realtime)
	}
	if len(fc.tools) != 1 || fc.tools[0].FunctionResponses[0].ID != "c1" {
		t.Errorf("tools = %+v", fc.tools)
	}
}

func TestSession_SendAfterClose(t *testing.T) {
	fc := newFakeConn()
	s := startSession(fc, live.Callbacks{}, discardLogger())
	_ = s.Close()

	err := s.SendTurn([]live.Part{live.TextPart("late")}, true)
	if !errors.Is(err, live.ErrNotConnected) {
		t.Errorf("SendTurn() error = %v, want ErrNotConnected", err)
	}
}

func TestClientConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		backend genai.Backend
		wantErr bool
	}{
		{"gemini default", Config{APIKey: "k"}, genai.BackendGeminiAPI, false},
		{"gemini missing key", Config{}, 0, true},
		{"vertex", Config{Backend: "vertex", Project: "p", Location: "us-central1"}, genai.BackendVertexAI, false},
		{"vertex missing project", Config{Backend: "vertex"}, 0, true},
		{"unknown", Config{Backend: "azure", APIKey: "k"}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cc, err := clientConfig(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("clientConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if cc.Backend != tt.backend {
				t.Errorf("backend = %v, want %v", cc.Backend, tt.backend)
			}
			if cc.HTTPOptions.APIVersion != defaultAPIVersion {
				t.Errorf("api version = %q", cc.HTTPOptions.APIVersion)
			}
		})
	}
}

func TestTransport_OpenAgainstWebsocketServer(t *testing.T) {
	setups := make(chan string, 1)
	turns := make(chan string, 1)
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-goog-api-key") != "test-key" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()

		_, setup, err := ws.ReadMessage()
		if err != nil {
			return
		}
		setups <- string(setup)

		_ = ws.WriteMessage(websocket.TextMessage, []byte(`{"setupComplete":{}}`))
		_ = ws.WriteMessage(websocket.TextMessage, []byte(`{"serverContent":{"modelTurn":{"parts":[{"text":"hello"}]},"turnComplete":true}}`))

		_, turn, err := ws.ReadMessage()
		if err != nil {
			return
		}
		turns <- string(turn)

		_ = ws.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "[ORIGINAL ERROR] quota exceeded"))
		_, _, _ = ws.ReadMessage()
	}))
	defer srv.Close()

	tr, err := New(context.Background(), Config{
		APIKey:  "test-key",
		BaseURL: "ws" + strings.TrimPrefix(srv.URL, "http") + "/",
	}, discardLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	cl := newCallbackLog()
	sess, err := tr.Open(context.Background(), "gemini-test", &live.SessionConfig{ResponseModalities: []string{"text"}}, cl.callbacks())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer sess.Close()

	select {
	case setup := <-setups:
		if !strings.Contains(setup, "models/gemini-test") {
			t.Errorf("setup = %s", setup)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no setup message")
	}

	cl.wait(t)
	cl.wait(t)

	if err := sess.SendTurn([]live.Part{live.TextPart("hi")}, true); err != nil {
		t.Fatalf("SendTurn() error = %v", err)
	}
	select {
	case turn := <-turns:
		if !strings.Contains(turn, `"hi"`) {
			t.Errorf("turn = %s", turn)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no turn message")
	}

	cl.wait(t)

	cl.mu.Lock()
	defer cl.mu.Unlock()
	if len(cl.messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(cl.messages))
	}
	sc, ok := cl.messages[1].(*live.ServerContent)
	if !ok || sc.ModelTurn == nil || sc.ModelTurn.Parts[0].Text != "hello" || !sc.TurnComplete {
		t.Errorf("server content = %+v", cl.messages[1])
	}
	if len(cl.closes) != 1 || cl.closes[0].Code != websocket.CloseInternalServerErr {
		t.Fatalf("closes = %+v", cl.closes)
	}
	if got := live.CloseReason(cl.closes[0].Reason); got != "quota exceeded" {
		t.Errorf("close reason = %q", got)
	}
}
