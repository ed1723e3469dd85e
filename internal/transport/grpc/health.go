// Package grpc exposes the standard gRPC health service, backed by the product store.
package grpc

import (
	"context"
	"log/slog"
	"time"

	"github.com/abgdnv/productcatalog/internal/store"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name reported alongside the server-wide "" entry.
const ServiceName = "productcatalog.Products"

const pingTimeout = 2 * time.Second

// HealthServer keeps the gRPC health status in sync with store reachability.
type HealthServer struct {
	srv      *health.Server
	pinger   store.Pinger
	interval time.Duration
	logger   *slog.Logger
}

// NewHealthServer creates a HealthServer that pings the store every interval.
// A nil pinger reports SERVING unconditionally.
func NewHealthServer(pinger store.Pinger, interval time.Duration, logger *slog.Logger) *HealthServer {
	return &HealthServer{
		srv:      health.NewServer(),
		pinger:   pinger,
		interval: interval,
		logger:   logger.With("component", "grpc-health"),
	}
}

// Register adds the health service to s.
func (h *HealthServer) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.srv)
}

// Refresh pings the store once and updates the reported status.
func (h *HealthServer) Refresh(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if h.pinger != nil {
		pctx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if err := h.pinger.Ping(pctx); err != nil {
			h.logger.WarnContext(ctx, "Store ping failed", "error", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	h.srv.SetServingStatus("", status)
	h.srv.SetServingStatus(ServiceName, status)
	return status
}

// Run refreshes the status until ctx is done, then marks every service NOT_SERVING.
func (h *HealthServer) Run(ctx context.Context) error {
	h.Refresh(ctx)
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.srv.Shutdown()
			return nil
		case <-ticker.C:
			h.Refresh(ctx)
		}
	}
}
