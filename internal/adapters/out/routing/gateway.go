// Package routing implements the resilient gateway in front of the external
// route-optimization provider. The gateway layers, each independently
// testable: a TTL response cache, a sliding-window rate limit, a daily cost
// budget, a circuit breaker, bounded retries for retry-worthy errors and a
// straight-line fallback estimator. Callers never see a hard failure; the
// worst case is an estimated plan marked as such.
package routing

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/metrics"
)

// Fallback reason label values, also used as metric labels.
const (
	reasonRateLimited     = "rate_limited"
	reasonBudgetExhausted = "budget_exhausted"
	reasonBreakerOpen     = "breaker_open"
	reasonProviderError   = "provider_error"
)

// Gateway is the production ports.RoutePlanner. All shared state (cache,
// limiter, budget, breaker, retry queue) is process-wide and safe for
// concurrent use.
type Gateway struct {
	provider   ports.RoutePlanner
	cfg        Config
	cache      *planCache
	limiter    *slidingWindowLimiter
	budget     *dailyBudget
	breaker    *gobreaker.CircuitBreaker
	retryQueue *RetryQueue
	estimate   estimator
	metrics    *metrics.Metrics
	logger     *slog.Logger

	now func() time.Time
}

// NewGateway creates a Gateway wrapping the given provider.
func NewGateway(provider ports.RoutePlanner, cfg Config, m *metrics.Metrics, logger *slog.Logger) *Gateway {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = metrics.New()
	}

	g := &Gateway{
		provider:   provider,
		cfg:        cfg,
		cache:      newPlanCache(cfg.CacheTTL),
		limiter:    newSlidingWindowLimiter(cfg.RateLimitCalls, cfg.RateLimitWindow),
		budget:     newDailyBudget(cfg.DailyBudget),
		retryQueue: NewRetryQueue(cfg.RetryQueueMaxAge),
		estimate:   estimator{roadFactor: cfg.RoadFactor, speedKmh: cfg.FallbackSpeedKmh},
		metrics:    m,
		logger:     logger.With("component", "routing_gateway"),
		now:        time.Now,
	}

	g.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: "routing-provider",
		// A single trial request probes the provider in half-open state.
		MaxRequests: 1,
		Timeout:     cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			g.logger.Warn("circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
			g.metrics.CircuitBreakerState.Set(breakerStateValue(to))
			if to == gobreaker.StateOpen {
				g.metrics.CircuitBreakerTrips.Inc()
			}
		},
	})

	return g
}

// RetryQueueRef exposes the replay queue to the background sweeper job.
func (g *Gateway) RetryQueueRef() *RetryQueue {
	return g.retryQueue
}

// BreakerState returns the current circuit breaker state.
func (g *Gateway) BreakerState() gobreaker.State {
	return g.breaker.State()
}

// Plan answers from the cache when possible, otherwise calls the provider
// through the protective layers. On any failure it degrades to the local
// estimator and queues the request for later cache warming; the returned
// error is always nil.
func (g *Gateway) Plan(ctx context.Context, req ports.PlanRequest) (ports.Plan, error) {
	now := g.now()

	if plan, ok := g.cache.get(req, now); ok {
		g.metrics.GatewayCalls.WithLabelValues(metrics.GatewayOutcomeCacheHit, "").Inc()
		return plan, nil
	}

	if !g.limiter.Allow(now) {
		return g.degrade(req, now, reasonRateLimited, nil), nil
	}
	if !g.budget.Allow(now) {
		return g.degrade(req, now, reasonBudgetExhausted, nil), nil
	}

	started := now
	result, err := g.breaker.Execute(func() (interface{}, error) {
		return g.callWithRetry(ctx, req)
	})
	elapsed := g.now().Sub(started)

	if err != nil {
		reason := reasonProviderError
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			reason = reasonBreakerOpen
		}
		g.metrics.ObserveGatewayCall(metrics.GatewayOutcomeFallback, reason, elapsed)
		return g.degrade(req, now, reason, err), nil
	}

	plan := result.(ports.Plan)
	g.cache.put(req, plan, now)
	g.metrics.ObserveGatewayCall(metrics.GatewayOutcomeSuccess, "", elapsed)
	return plan, nil
}

// callWithRetry performs one provider call with bounded exponential backoff.
// Only retry-worthy errors (rate limited, transient, timeouts) are retried;
// auth failures surface immediately. The whole attempt sequence counts as a
// single circuit breaker sample.
func (g *Gateway) callWithRetry(ctx context.Context, req ports.PlanRequest) (ports.Plan, error) {
	var lastErr error
	delay := g.cfg.RetryInitialDelay

	for attempt := 0; attempt < g.cfg.RetryMaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ports.Plan{}, ctx.Err()
		default:
		}

		callCtx, cancel := context.WithTimeout(ctx, g.cfg.CallTimeout)
		plan, err := g.provider.Plan(callCtx, req)
		cancel()

		if err == nil {
			return plan, nil
		}
		lastErr = err

		if !ports.IsRetryWorthy(err) {
			return ports.Plan{}, err
		}

		if attempt < g.cfg.RetryMaxAttempts-1 {
			select {
			case <-ctx.Done():
				return ports.Plan{}, ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * g.cfg.RetryBackoffFactor)
			if delay > g.cfg.RetryMaxDelay {
				delay = g.cfg.RetryMaxDelay
			}
		}
	}

	return ports.Plan{}, lastErr
}

// degrade produces the local estimate and queues the request for replay.
// Requests that failed for configuration reasons (auth) are not queued:
// replaying them cannot succeed.
func (g *Gateway) degrade(req ports.PlanRequest, now time.Time, reason string, cause error) ports.Plan {
	g.logger.Warn("degrading to fallback estimate",
		"reason", reason,
		"waypoints", len(req.Waypoints),
		"error", cause,
	)

	if cause == nil || ports.IsRetryWorthy(cause) {
		g.retryQueue.Enqueue(req, now)
	}

	if reason == reasonRateLimited || reason == reasonBudgetExhausted {
		g.metrics.GatewayCalls.WithLabelValues(metrics.GatewayOutcomeFallback, reason).Inc()
	}

	return g.estimate.Estimate(req)
}

// WarmCache replays queued requests against the provider to repopulate the
// cache. Used by the background sweeper once the provider looks healthy.
// Replays respect the same limits as live traffic.
func (g *Gateway) WarmCache(ctx context.Context, max int) int {
	now := g.now()
	warmed := 0
	for _, item := range g.retryQueue.Drain(max, now) {
		if plan, err := g.Plan(ctx, item.Request); err == nil && !plan.Estimated {
			warmed++
		}
	}
	return warmed
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
