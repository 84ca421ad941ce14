package gateway

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/eleven-am/live-console/internal/consolesession"
	"github.com/eleven-am/live-console/internal/live"
	"github.com/eleven-am/live-console/internal/shared"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	manager *consolesession.Manager
	logger  *slog.Logger
}

func NewHandler(manager *consolesession.Manager, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		manager: manager,
		logger:  logger.With("component", "gateway"),
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/ws", h.HandleConnection)
	g.GET("/sessions", h.ListSessions)
	g.GET("/sessions/:id", h.GetSession)
	g.DELETE("/sessions/:id", h.CloseSession)
	g.GET("/sessions/:id/logs", h.GetLogs)
	g.GET("/presets", h.ListPresets)
}

// HandleConnection upgrades the request and runs one console session until
// the socket goes away.
func (h *Handler) HandleConnection(c echo.Context) error {
	console, err := h.manager.Create(c.RealIP())
	if err != nil {
		switch {
		case errors.Is(err, consolesession.ErrNoTransport):
			return shared.ServiceUnavailable("live_unavailable", "live backend is not configured")
		case errors.Is(err, consolesession.ErrTooManySessions):
			return shared.ServiceUnavailable("session_limit", "too many active sessions")
		default:
			h.logger.Error("failed to create console session", "error", err)
			return shared.InternalError("create_failed", "failed to create session")
		}
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		h.manager.Remove(console.ID())
		return nil
	}

	conn := newConsoleConn(ws, console, h.manager, h.logger)
	conn.forwardEvents()
	conn.Send(Frame{Type: FrameSession, Payload: console.Info()})

	h.logger.Info("console connected", "session_id", console.ID())

	go conn.writePump()
	conn.readPump(c.Request().Context())

	conn.stopEvents()
	h.manager.Remove(console.ID())

	h.logger.Info("console disconnected", "session_id", console.ID())
	return nil
}

type SessionsResponse struct {
	Sessions []consolesession.Info `json:"sessions"`
}

func (h *Handler) ListSessions(c echo.Context) error {
	return c.JSON(http.StatusOK, SessionsResponse{Sessions: h.manager.List()})
}

func (h *Handler) GetSession(c echo.Context) error {
	console, ok := h.manager.Get(c.Param("id"))
	if !ok {
		return shared.NotFound("session_not_found", "session not found")
	}
	return c.JSON(http.StatusOK, console.Info())
}

// CloseSession drops the live connection of a session. The browser socket
// stays open and may connect again.
func (h *Handler) CloseSession(c echo.Context) error {
	console, ok := h.manager.Get(c.Param("id"))
	if !ok {
		return shared.NotFound("session_not_found", "session not found")
	}
	console.Client().Disconnect()
	return c.NoContent(http.StatusNoContent)
}

type LogsResponse struct {
	SessionID string          `json:"session_id"`
	Entries   []live.LogEntry `json:"entries"`
}

func (h *Handler) GetLogs(c echo.Context) error {
	console, ok := h.manager.Get(c.Param("id"))
	if !ok {
		return shared.NotFound("session_not_found", "session not found")
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return shared.BadRequest("invalid_limit", "limit must be a non-negative integer")
		}
		limit = n
	}

	return c.JSON(http.StatusOK, LogsResponse{
		SessionID: console.ID(),
		Entries:   console.Logs().Tail(limit),
	})
}

type PresetsResponse struct {
	Model   string                        `json:"model"`
	Default string                        `json:"default"`
	Presets map[string]live.SessionConfig `json:"presets"`
}

func (h *Handler) ListPresets(c echo.Context) error {
	file := h.manager.Presets()
	return c.JSON(http.StatusOK, PresetsResponse{
		Model:   h.manager.Model(),
		Default: file.Default,
		Presets: file.Presets,
	})
}
