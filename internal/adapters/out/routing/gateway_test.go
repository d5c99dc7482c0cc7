package routing_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dispatch/internal/adapters/out/routing"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
)

type providerStub struct {
	mu    sync.Mutex
	calls int
	fn    func(call int) (ports.Plan, error)
}

func (s *providerStub) Plan(_ context.Context, _ ports.PlanRequest) (ports.Plan, error) {
	s.mu.Lock()
	s.calls++
	call := s.calls
	s.mu.Unlock()
	return s.fn(call)
}

func (s *providerStub) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func planRequest(t *testing.T) ports.PlanRequest {
	t.Helper()
	origin, err := kernel.NewGeoPoint(3.0, 101.5)
	require.NoError(t, err)
	a, err := kernel.NewGeoPoint(3.1, 101.6)
	require.NoError(t, err)
	b, err := kernel.NewGeoPoint(3.2, 101.7)
	require.NoError(t, err)
	return ports.PlanRequest{Origin: origin, Destination: origin, Waypoints: []kernel.GeoPoint{a, b}}
}

func goodPlan() ports.Plan {
	return ports.Plan{
		DistanceMeters: 25000,
		Duration:       45 * time.Minute,
		Legs: []ports.Leg{
			{DistanceMeters: 10000, Duration: 15 * time.Minute},
			{DistanceMeters: 10000, Duration: 15 * time.Minute},
			{DistanceMeters: 5000, Duration: 15 * time.Minute},
		},
	}
}

func fastConfig() routing.Config {
	cfg := routing.DefaultConfig()
	cfg.RetryMaxAttempts = 1
	cfg.RetryInitialDelay = time.Millisecond
	cfg.RetryMaxDelay = 2 * time.Millisecond
	cfg.BreakerFailureThreshold = 3
	cfg.BreakerOpenTimeout = 50 * time.Millisecond
	return cfg
}

func transientErr() error {
	return ports.NewProviderError(ports.ErrorKindTransient, errors.New("boom"))
}

func TestGatewayPlan(t *testing.T) {
	ctx := context.Background()

	t.Run("identical requests are served from the cache", func(t *testing.T) {
		provider := &providerStub{fn: func(int) (ports.Plan, error) { return goodPlan(), nil }}
		gw := routing.NewGateway(provider, fastConfig(), nil, nil)
		req := planRequest(t)

		first, err := gw.Plan(ctx, req)
		require.NoError(t, err)
		second, err := gw.Plan(ctx, req)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, 1, provider.callCount())
	})

	t.Run("provider failure degrades to an estimate, never an error", func(t *testing.T) {
		provider := &providerStub{fn: func(int) (ports.Plan, error) { return ports.Plan{}, transientErr() }}
		gw := routing.NewGateway(provider, fastConfig(), nil, nil)

		plan, err := gw.Plan(ctx, planRequest(t))

		require.NoError(t, err)
		assert.True(t, plan.Estimated)
		assert.Greater(t, plan.DistanceMeters, 0)
		assert.Len(t, plan.Legs, 3)
	})

	t.Run("retry-worthy errors are retried within one call", func(t *testing.T) {
		provider := &providerStub{fn: func(call int) (ports.Plan, error) {
			if call == 1 {
				return ports.Plan{}, transientErr()
			}
			return goodPlan(), nil
		}}
		cfg := fastConfig()
		cfg.RetryMaxAttempts = 3
		gw := routing.NewGateway(provider, cfg, nil, nil)

		plan, err := gw.Plan(ctx, planRequest(t))

		require.NoError(t, err)
		assert.False(t, plan.Estimated)
		assert.Equal(t, 2, provider.callCount())
	})

	t.Run("auth errors are not retried and not queued for replay", func(t *testing.T) {
		provider := &providerStub{fn: func(int) (ports.Plan, error) {
			return ports.Plan{}, ports.NewProviderError(ports.ErrorKindAuth, errors.New("bad key"))
		}}
		cfg := fastConfig()
		cfg.RetryMaxAttempts = 3
		gw := routing.NewGateway(provider, cfg, nil, nil)

		plan, err := gw.Plan(ctx, planRequest(t))

		require.NoError(t, err)
		assert.True(t, plan.Estimated)
		assert.Equal(t, 1, provider.callCount())
		assert.Equal(t, 0, gw.RetryQueueRef().Len())
	})

	t.Run("rate limit exhaustion skips the provider", func(t *testing.T) {
		provider := &providerStub{fn: func(int) (ports.Plan, error) { return goodPlan(), nil }}
		cfg := fastConfig()
		cfg.RateLimitCalls = 1
		cfg.RateLimitWindow = time.Hour
		gw := routing.NewGateway(provider, cfg, nil, nil)

		first, err := gw.Plan(ctx, planRequest(t))
		require.NoError(t, err)
		assert.False(t, first.Estimated)

		// Different request misses the cache and hits the exhausted limiter.
		other := planRequest(t)
		other.TrafficAware = true
		second, err := gw.Plan(ctx, other)
		require.NoError(t, err)

		assert.True(t, second.Estimated)
		assert.Equal(t, 1, provider.callCount())
		assert.Equal(t, 1, gw.RetryQueueRef().Len())
	})

	t.Run("daily budget exhaustion skips the provider", func(t *testing.T) {
		provider := &providerStub{fn: func(int) (ports.Plan, error) { return goodPlan(), nil }}
		cfg := fastConfig()
		cfg.DailyBudget = 1
		gw := routing.NewGateway(provider, cfg, nil, nil)

		_, err := gw.Plan(ctx, planRequest(t))
		require.NoError(t, err)

		other := planRequest(t)
		other.TrafficAware = true
		plan, err := gw.Plan(ctx, other)
		require.NoError(t, err)

		assert.True(t, plan.Estimated)
		assert.Equal(t, 1, provider.callCount())
	})
}

func TestGatewayCircuitBreaker(t *testing.T) {
	ctx := context.Background()

	t.Run("opens after exactly the failure threshold", func(t *testing.T) {
		provider := &providerStub{fn: func(int) (ports.Plan, error) { return ports.Plan{}, transientErr() }}
		cfg := fastConfig()
		gw := routing.NewGateway(provider, cfg, nil, nil)
		req := planRequest(t)

		for i := 0; i < int(cfg.BreakerFailureThreshold)-1; i++ {
			_, err := gw.Plan(ctx, req)
			require.NoError(t, err)
			assert.Equal(t, gobreaker.StateClosed, gw.BreakerState())
		}

		_, err := gw.Plan(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, gobreaker.StateOpen, gw.BreakerState())

		// While open the provider is not called.
		before := provider.callCount()
		plan, err := gw.Plan(ctx, req)
		require.NoError(t, err)
		assert.True(t, plan.Estimated)
		assert.Equal(t, before, provider.callCount())
	})

	t.Run("half-open single trial closes the breaker on success", func(t *testing.T) {
		var failing sync.Map
		failing.Store("fail", true)
		provider := &providerStub{fn: func(int) (ports.Plan, error) {
			if _, ok := failing.Load("fail"); ok {
				return ports.Plan{}, transientErr()
			}
			return goodPlan(), nil
		}}
		cfg := fastConfig()
		cfg.CacheTTL = time.Nanosecond
		gw := routing.NewGateway(provider, cfg, nil, nil)
		req := planRequest(t)

		for i := 0; i < int(cfg.BreakerFailureThreshold); i++ {
			_, _ = gw.Plan(ctx, req)
		}
		require.Equal(t, gobreaker.StateOpen, gw.BreakerState())

		failing.Delete("fail")
		time.Sleep(cfg.BreakerOpenTimeout + 20*time.Millisecond)

		plan, err := gw.Plan(ctx, req)
		require.NoError(t, err)
		assert.False(t, plan.Estimated)
		assert.Equal(t, gobreaker.StateClosed, gw.BreakerState())
	})
}
