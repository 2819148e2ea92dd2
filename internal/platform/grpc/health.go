// Package grpc holds client helpers for gRPC peers.
package grpc

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

const (
	initialBackoff = 100 * time.Millisecond
	maxBackoff     = time.Second
)

// ClientDialOptions returns dial options for local peers. The OTel stats
// handler propagates trace context when a TracerProvider is registered.
func ClientDialOptions() []gogrpc.DialOption {
	return []gogrpc.DialOption{
		gogrpc.WithTransportCredentials(insecure.NewCredentials()),
		gogrpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	}
}

// ProbeHealth connects to addr and waits until service reports SERVING.
// A zero timeout waits until ctx ends.
func ProbeHealth(ctx context.Context, addr, service string, timeout time.Duration) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	conn, err := gogrpc.NewClient(addr, ClientDialOptions()...)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", addr, err)
	}
	defer conn.Close()
	return WaitForHealth(ctx, conn, service, nil)
}

// WaitForHealth polls the health service with backoff until it reports
// SERVING or ctx ends.
func WaitForHealth(ctx context.Context, conn *gogrpc.ClientConn, service string, logf func(string, ...any)) error {
	if conn == nil {
		return fmt.Errorf("gRPC connection is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	client := grpc_health_v1.NewHealthClient(conn)
	backoff := initialBackoff
	var lastErr error
	for {
		callCtx, cancel := context.WithTimeout(ctx, maxBackoff)
		response, err := client.Check(callCtx, &grpc_health_v1.HealthCheckRequest{Service: service})
		cancel()
		switch {
		case err != nil:
			lastErr = err
		case response.GetStatus() == grpc_health_v1.HealthCheckResponse_SERVING:
			return nil
		default:
			lastErr = fmt.Errorf("status %s", response.GetStatus())
		}
		if logf != nil {
			logf("waiting for gRPC health: %v", lastErr)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for gRPC health: %w (last: %v)", ctx.Err(), lastErr)
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}
}
