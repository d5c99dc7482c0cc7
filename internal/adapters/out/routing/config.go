package routing

import "time"

// Config tunes the resilient routing gateway. Zero values are replaced by
// the defaults below; every knob is operational policy, not business law.
type Config struct {
	// CallTimeout bounds one provider call. Timeouts count as circuit
	// breaker failures.
	CallTimeout time.Duration

	// CacheTTL is how long a planned route stays valid in the cache.
	CacheTTL time.Duration

	// RateLimitCalls is the number of provider calls allowed within
	// RateLimitWindow, enforced with a sliding window.
	RateLimitCalls  int
	RateLimitWindow time.Duration

	// DailyBudget caps billable provider calls per calendar day.
	DailyBudget int

	// BreakerFailureThreshold is the number of consecutive failures that
	// opens the circuit. While open, calls go straight to the fallback
	// estimator; after BreakerOpenTimeout a single trial request probes
	// the provider.
	BreakerFailureThreshold uint32
	BreakerOpenTimeout      time.Duration

	// Retry policy for retry-worthy provider errors within one call.
	RetryMaxAttempts   int
	RetryInitialDelay  time.Duration
	RetryMaxDelay      time.Duration
	RetryBackoffFactor float64

	// Fallback estimator parameters: straight-line distance is scaled by
	// RoadFactor and converted to time at FallbackSpeedKmh.
	RoadFactor       float64
	FallbackSpeedKmh float64

	// RetryQueueMaxAge is how long a failed request stays queued for
	// cache warming before the sweeper drops it.
	RetryQueueMaxAge time.Duration
}

// DefaultConfig returns the gateway defaults.
func DefaultConfig() Config {
	return Config{
		CallTimeout:             5 * time.Second,
		CacheTTL:                15 * time.Minute,
		RateLimitCalls:          30,
		RateLimitWindow:         time.Minute,
		DailyBudget:             2000,
		BreakerFailureThreshold: 5,
		BreakerOpenTimeout:      30 * time.Second,
		RetryMaxAttempts:        3,
		RetryInitialDelay:       100 * time.Millisecond,
		RetryMaxDelay:           2 * time.Second,
		RetryBackoffFactor:      2.0,
		RoadFactor:              1.3,
		FallbackSpeedKmh:        40,
		RetryQueueMaxAge:        24 * time.Hour,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.CallTimeout <= 0 {
		c.CallTimeout = d.CallTimeout
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = d.CacheTTL
	}
	if c.RateLimitCalls <= 0 {
		c.RateLimitCalls = d.RateLimitCalls
	}
	if c.RateLimitWindow <= 0 {
		c.RateLimitWindow = d.RateLimitWindow
	}
	if c.DailyBudget <= 0 {
		c.DailyBudget = d.DailyBudget
	}
	if c.BreakerFailureThreshold == 0 {
		c.BreakerFailureThreshold = d.BreakerFailureThreshold
	}
	if c.BreakerOpenTimeout <= 0 {
		c.BreakerOpenTimeout = d.BreakerOpenTimeout
	}
	if c.RetryMaxAttempts <= 0 {
		c.RetryMaxAttempts = d.RetryMaxAttempts
	}
	if c.RetryInitialDelay <= 0 {
		c.RetryInitialDelay = d.RetryInitialDelay
	}
	if c.RetryMaxDelay <= 0 {
		c.RetryMaxDelay = d.RetryMaxDelay
	}
	if c.RetryBackoffFactor <= 1 {
		c.RetryBackoffFactor = d.RetryBackoffFactor
	}
	if c.RoadFactor <= 0 {
		c.RoadFactor = d.RoadFactor
	}
	if c.FallbackSpeedKmh <= 0 {
		c.FallbackSpeedKmh = d.FallbackSpeedKmh
	}
	if c.RetryQueueMaxAge <= 0 {
		c.RetryQueueMaxAge = d.RetryQueueMaxAge
	}
	return c
}
