package bootstrap

import (
	"log/slog"
	"os"

	"github.com/eleven-am/live-console/internal/consolesession"
	"github.com/eleven-am/live-console/internal/gateway"
	"github.com/eleven-am/live-console/internal/session"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type HandlerParams struct {
	fx.In

	GatewayHandler *gateway.Handler
	SessionHandler *session.Handler
	Config         *Config
}

func RegisterRoutes(e *echo.Echo, params HandlerParams, logger *slog.Logger) {
	api := e.Group("/api/v1/live", gateway.RateLimiter(params.Config.RateLimiter()))
	params.GatewayHandler.RegisterRoutes(api)
	params.SessionHandler.RegisterRoutes(api)

	if !registerConsoleUI(e, params.Config) {
		logger.Info("console UI not found, serving API only", "index_html", params.Config.IndexHTML)
	}
}

func registerConsoleUI(e *echo.Echo, cfg *Config) bool {
	if info, err := os.Stat(cfg.IndexHTML); err != nil || info.IsDir() {
		return false
	}
	e.Static("/assets", cfg.StaticDir)
	e.GET("/*", func(c echo.Context) error {
		return c.File(cfg.IndexHTML)
	})
	return true
}

func ProvideGatewayHandler(manager *consolesession.Manager, logger *slog.Logger) *gateway.Handler {
	return gateway.NewHandler(manager, logger.With("handler", "gateway"))
}

func ProvideSessionHandler(store *session.Store, logger *slog.Logger) *session.Handler {
	return session.NewHandler(store, logger.With("handler", "session"))
}

var HandlersModule = fx.Options(
	fx.Provide(
		ProvideGatewayHandler,
		ProvideSessionHandler,
	),
	fx.Invoke(RegisterRoutes),
)
