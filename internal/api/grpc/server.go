package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"kos-backend-trusted/internal/api/grpc/interceptor"
	"kos-backend-trusted/internal/logger"
)

// OccupancyService is the name the occupancy backend reports health under.
const OccupancyService = "kos.v1.OccupancyService"

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthReporter publishes the store's reachability through the standard
// gRPC health service.
type HealthReporter struct {
	server *health.Server
	store  Pinger
}

func NewHealthReporter(store Pinger) *HealthReporter {
	return &HealthReporter{server: health.NewServer(), store: store}
}

// Refresh pings the store once and updates the served status.
func (h *HealthReporter) Refresh(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	st := healthpb.HealthCheckResponse_SERVING
	if err := h.store.Ping(ctx); err != nil {
		logger.Warn("Store ping failed", "error", err)
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.server.SetServingStatus("", st)
	h.server.SetServingStatus(OccupancyService, st)
	return st
}

// Watch refreshes the status every interval until ctx is done.
func (h *HealthReporter) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		h.Refresh(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Shutdown marks every service NOT_SERVING so clients drain before the listener closes.
func (h *HealthReporter) Shutdown() {
	h.server.Shutdown()
}

// NewServer builds the gRPC server with health and reflection registered.
func NewServer(reporter *HealthReporter) *grpc.Server {
	logging := interceptor.NewLoggingInterceptor(
		healthpb.Health_Check_FullMethodName,
		healthpb.Health_Watch_FullMethodName,
	)
	s := grpc.NewServer(
		grpc.UnaryInterceptor(logging.Unary()),
	)
	healthpb.RegisterHealthServer(s, reporter.server)

	// Register reflection service for grpcurl
	reflection.Register(s)
	return s
}
