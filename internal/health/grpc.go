package health

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const ServiceName = "live.Console"

const DefaultWatchInterval = 15 * time.Second

// Watch mirrors the readiness check into srv every interval until ctx is
// done. The overall ("") service follows the same status.
func (h *Handler) Watch(ctx context.Context, srv *health.Server, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	logger = logger.With("component", "grpc_health")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := healthpb.HealthCheckResponse_UNKNOWN
	for {
		next := ServingStatus(h.Check(ctx).Status)
		if next != last {
			logger.Info("serving status changed", "from", last.String(), "to", next.String())
			srv.SetServingStatus("", next)
			srv.SetServingStatus(ServiceName, next)
			last = next
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// ServingStatus maps a readiness status onto the gRPC health protocol.
// Degraded still serves.
func ServingStatus(s Status) healthpb.HealthCheckResponse_ServingStatus {
	if s == StatusUnhealthy {
		return healthpb.HealthCheckResponse_NOT_SERVING
	}
	return healthpb.HealthCheckResponse_SERVING
}
