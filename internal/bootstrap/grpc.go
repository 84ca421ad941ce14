package bootstrap

import (
	"context"
	"log/slog"
	"net"

	"github.com/eleven-am/live-console/internal/health"
	"go.uber.org/fx"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func NewGRPCServer() *grpc.Server {
	return grpc.NewServer()
}

func ProvideGRPCHealthServer() *grpchealth.Server {
	return grpchealth.NewServer()
}

func RegisterHealthService(server *grpc.Server, hs *grpchealth.Server) {
	healthpb.RegisterHealthServer(server, hs)
}

func StartHealthWatch(lc fx.Lifecycle, h *health.Handler, hs *grpchealth.Server, cfg *Config, logger *slog.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				h.Watch(ctx, hs, cfg.HealthInterval, logger)
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			<-done
			hs.Shutdown()
			return nil
		},
	})
}

func StartGRPCServer(lc fx.Lifecycle, server *grpc.Server, cfg *Config, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			lis, err := net.Listen("tcp", cfg.GRPCAddr)
			if err != nil {
				return err
			}
			go func() {
				logger.Info("gRPC server starting", "addr", cfg.GRPCAddr)
				if err := server.Serve(lis); err != nil {
					logger.Error("gRPC server error", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			server.GracefulStop()
			return nil
		},
	})
}

var GRPCModule = fx.Options(
	fx.Provide(
		NewGRPCServer,
		ProvideGRPCHealthServer,
	),
	fx.Invoke(RegisterHealthService),
	fx.Invoke(StartHealthWatch),
	fx.Invoke(StartGRPCServer),
)
