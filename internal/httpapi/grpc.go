package httpapi

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// GRPCHealth exposes the readiness probe over the standard gRPC health
// service, for orchestrators that probe gRPC instead of HTTP.
type GRPCHealth struct {
	server *grpc.Server
	health *health.Server
	probe  ReadyProbe
}

// NewGRPCHealth creates the health service wrapper.
func NewGRPCHealth(probe ReadyProbe) *GRPCHealth {
	srv := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	return &GRPCHealth{server: srv, health: hs, probe: probe}
}

// Serve blocks serving gRPC health checks on the listener.
func (g *GRPCHealth) Serve(lis net.Listener) error {
	return g.server.Serve(lis)
}

// Stop gracefully stops the server.
func (g *GRPCHealth) Stop() { g.server.GracefulStop() }

// Watch re-evaluates the readiness probe on an interval until the context is
// cancelled, publishing the result as the serving status.
func (g *GRPCHealth) Watch(ctx context.Context, every time.Duration) {
	g.update(ctx)
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			g.health.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
			return
		case <-ticker.C:
			g.update(ctx)
		}
	}
}

func (g *GRPCHealth) update(ctx context.Context) {
	checkCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := g.probe.Check(checkCtx); err != nil {
		g.health.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
		return
	}
	g.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
}
