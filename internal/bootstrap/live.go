package bootstrap

import (
	"context"
	"log/slog"

	"github.com/eleven-am/live-console/internal/auditlog"
	"github.com/eleven-am/live-console/internal/consolesession"
	"github.com/eleven-am/live-console/internal/genailive"
	"github.com/eleven-am/live-console/internal/live"
	"github.com/eleven-am/live-console/internal/liveconfig"
	"github.com/eleven-am/live-console/internal/session"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

// ProvideLiveTransport returns nil when no credentials are configured. The
// server still starts; readiness reports the live backend as unhealthy.
func ProvideLiveTransport(cfg *Config, logger *slog.Logger) (live.Transport, error) {
	if !cfg.LiveConfigured() {
		logger.Warn("live backend not configured, console sessions are disabled", "backend", cfg.LiveBackend)
		return nil, nil
	}

	t, err := genailive.New(context.Background(), genailive.Config{
		APIKey:     cfg.LiveAPIKey,
		Backend:    cfg.LiveBackend,
		Project:    cfg.LiveProject,
		Location:   cfg.LiveLocation,
		APIVersion: cfg.LiveAPIVersion,
		BaseURL:    cfg.LiveBaseURL,
	}, logger)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func ProvidePresets(cfg *Config, logger *slog.Logger) (*liveconfig.File, error) {
	file, err := liveconfig.Load(cfg.LiveConfigFile)
	if err != nil {
		return nil, err
	}
	logger.Info("session presets loaded", "file", cfg.LiveConfigFile, "default", file.Default, "presets", file.Names())
	return file, nil
}

func ProvideLogPublisher(lc fx.Lifecycle, redisClient *redis.Client, logger *slog.Logger) *auditlog.Publisher {
	p := auditlog.NewPublisher(redisClient, logger)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return p.Close()
		},
	})
	return p
}

func ProvideSessionStore(redisClient *redis.Client) *session.Store {
	return session.NewStore(redisClient)
}

type ManagerParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *Config
	Transport live.Transport
	Presets   *liveconfig.File
	Publisher *auditlog.Publisher
	Store     *session.Store
	Logger    *slog.Logger
}

func ProvideConsoleManager(p ManagerParams) *consolesession.Manager {
	m := consolesession.NewManager(consolesession.ManagerConfig{
		Transport:   p.Transport,
		Model:       p.Config.LiveModel,
		Presets:     p.Presets,
		Sink:        p.Publisher,
		Records:     p.Store,
		LogCapacity: p.Config.LogCapacity,
		MaxSessions: p.Config.MaxSessions,
		Log:         p.Logger,
	})
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return m.Close()
		},
	})
	return m
}

var LiveModule = fx.Options(
	fx.Provide(
		ProvideLiveTransport,
		ProvidePresets,
		ProvideLogPublisher,
		ProvideSessionStore,
		ProvideConsoleManager,
	),
)
