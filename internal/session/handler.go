package session

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/eleven-am/live-console/internal/shared"
	"github.com/labstack/echo/v4"
)

const (
	defaultMetricsHours = 24
	maxMetricsHours     = 168
)

type Handler struct {
	store  *Store
	logger *slog.Logger
}

func NewHandler(store *Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:  store,
		logger: logger.With("component", "session_handler"),
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/history", h.ListHistory)
	g.GET("/history/:id", h.GetHistory)
	g.GET("/metrics/:model", h.GetMetrics)
}

type HistoryResponse struct {
	Sessions []*Session `json:"sessions"`
}

func (h *Handler) ListHistory(c echo.Context) error {
	status := Status(c.QueryParam("status"))
	switch status {
	case "", StatusActive, StatusEnded, StatusError:
	default:
		return shared.BadRequest("invalid_status", "status must be active, ended or error")
	}

	sessions, err := h.store.ListSessions(c.Request().Context(), status)
	if err != nil {
		h.logger.Error("failed to list sessions", "error", err)
		return shared.InternalError("list_failed", "failed to list sessions")
	}
	if sessions == nil {
		sessions = []*Session{}
	}
	return c.JSON(http.StatusOK, HistoryResponse{Sessions: sessions})
}

func (h *Handler) GetHistory(c echo.Context) error {
	sess, err := h.store.GetSession(c.Request().Context(), c.Param("id"))
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NotFound("session_not_found", "session not found")
	}
	if err != nil {
		h.logger.Error("failed to get session", "error", err, "session_id", c.Param("id"))
		return shared.InternalError("get_failed", "failed to get session")
	}
	return c.JSON(http.StatusOK, sess)
}

type MetricsResponse struct {
	Model   string     `json:"model"`
	Hours   int        `json:"hours"`
	Metrics []*Metrics `json:"metrics"`
}

func (h *Handler) GetMetrics(c echo.Context) error {
	model := c.Param("model")
	hours := defaultMetricsHours
	if v := c.QueryParam("hours"); v != "" {
		if hr, err := strconv.Atoi(v); err == nil && hr > 0 && hr <= maxMetricsHours {
			hours = hr
		}
	}

	metrics, err := h.store.GetMetrics(c.Request().Context(), model, hours)
	if err != nil {
		h.logger.Error("failed to get metrics", "error", err, "model", model)
		return shared.InternalError("get_metrics_failed", "failed to get metrics")
	}
	if metrics == nil {
		metrics = []*Metrics{}
	}
	return c.JSON(http.StatusOK, MetricsResponse{Model: model, Hours: hours, Metrics: metrics})
}
