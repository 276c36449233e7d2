package grpc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func servingStatus(t *testing.T, s *Server, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := s.health.Check(context.Background(), &healthpb.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.Status
}

func TestServer_HealthFollowsPing(t *testing.T) {
	s := NewServer(logger.NewNop(), "0", time.Second, time.Minute)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, servingStatus(t, s, ServiceName))

	s.checkHealth(context.Background(), pingFunc(func(context.Context) error { return nil }))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, servingStatus(t, s, ServiceName))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, servingStatus(t, s, ""))

	s.checkHealth(context.Background(), pingFunc(func(context.Context) error { return errors.New("down") }))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, servingStatus(t, s, ServiceName))
}

func TestServer_WatchHealthStopsWithContext(t *testing.T) {
	s := NewServer(logger.NewNop(), "0", time.Second, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.WatchHealth(ctx, pingFunc(func(context.Context) error { return nil }), 10*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool {
		resp, err := s.health.Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
		return err == nil && resp.Status == healthpb.HealthCheckResponse_SERVING
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("WatchHealth did not return after cancel")
	}
}
