package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/eleven-am/live-console/internal/audio"
	"github.com/eleven-am/live-console/internal/consolesession"
	"github.com/eleven-am/live-console/internal/live"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024 * 1024
	connectTimeout = 30 * time.Second
	sendBufferSize = 512
)

var audioMIMEType = audio.PCMMIMEType(audio.OutputRate)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type consoleConn struct {
	ws      *websocket.Conn
	console *consolesession.Console
	manager *consolesession.Manager
	logger  *slog.Logger

	send chan Frame
	subs []live.Subscription

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

func newConsoleConn(ws *websocket.Conn, console *consolesession.Console, manager *consolesession.Manager, logger *slog.Logger) *consoleConn {
	return &consoleConn{
		ws:      ws,
		console: console,
		manager: manager,
		logger:  logger.With("session_id", console.ID()),
		send:    make(chan Frame, sendBufferSize),
		done:    make(chan struct{}),
	}
}

func (c *consoleConn) forwardEvents() {
	client := c.console.Client()
	for _, name := range live.EventNames {
		c.subs = append(c.subs, client.Subscribe(name, func(ev live.Event) {
			c.Send(eventFrame(ev))
		}))
	}
}

func (c *consoleConn) stopEvents() {
	client := c.console.Client()
	for _, sub := range c.subs {
		client.Unsubscribe(sub)
	}
	c.subs = nil
}

// Send queues a frame for the write pump. It never blocks; frames are
// dropped once the connection is closed or the buffer is full.
func (c *consoleConn) Send(f Frame) {
	select {
	case <-c.done:
		return
	default:
	}

	select {
	case c.send <- f:
	case <-c.done:
	default:
		c.logger.Warn("send buffer full, dropping frame", "type", f.Type)
	}
}

func (c *consoleConn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.done)
	c.mu.Unlock()

	return c.ws.Close()
}

func (c *consoleConn) readPump(ctx context.Context) {
	defer c.Close()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Error("websocket read error", "error", err)
			}
			return
		}

		var cmd Command
		if err := json.Unmarshal(message, &cmd); err != nil {
			c.logger.Warn("failed to unmarshal command", "error", err)
			c.Send(Frame{Type: FrameCommandError, Payload: CommandError{Message: "invalid command: " + err.Error()}})
			continue
		}

		if err := c.handle(ctx, &cmd); err != nil {
			c.logger.Debug("command failed", "command", cmd.Type, "error", err)
			c.Send(Frame{Type: FrameCommandError, Payload: CommandError{Command: cmd.Type, Message: err.Error()}})
		}
	}
}

func (c *consoleConn) handle(ctx context.Context, cmd *Command) error {
	client := c.console.Client()

	switch cmd.Type {
	case CommandConnect:
		preset, cfg, err := c.manager.ResolveConfig(cmd.Preset, cmd.Config)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		return c.console.Connect(ctx, preset, cfg)

	case CommandDisconnect:
		client.Disconnect()
		return nil

	case CommandSend:
		turnComplete := true
		if cmd.TurnComplete != nil {
			turnComplete = *cmd.TurnComplete
		}
		return client.SendTurn(cmd.Parts, turnComplete)

	case CommandRealtimeInput:
		return client.SendRealtimeInput(cmd.Chunks)

	case CommandToolResponse:
		return client.SendToolResponse(live.ToolResponse{FunctionResponses: cmd.FunctionResponses})

	default:
		return fmt.Errorf("unknown command %q", cmd.Type)
	}
}

func (c *consoleConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case f := <-c.send:
			data, err := json.Marshal(f)
			if err != nil {
				c.logger.Error("failed to marshal frame", "error", err, "type", f.Type)
				continue
			}

			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Error("websocket write error", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
