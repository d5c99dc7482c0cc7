// Package ports defines the interfaces between the core and the outside
// world: persistence contracts, the routing provider, event publishing and
// geocoding. These contracts enable dependency inversion and testability.
package ports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
)

// PlanRequest describes one routing computation: visit every waypoint
// starting at Origin and ending at Destination. The provider may reorder
// waypoints; it reports the chosen order in Plan.WaypointOrder.
type PlanRequest struct {
	Origin       kernel.GeoPoint
	Destination  kernel.GeoPoint
	Waypoints    []kernel.GeoPoint
	TrafficAware bool

	// KeepOrder forbids waypoint reordering. Used to measure the cost of
	// driving an existing route as-is, e.g. under refreshed traffic.
	KeepOrder bool
}

// Leg is the segment between two consecutive points of the planned route,
// including origin->first and last->destination.
type Leg struct {
	DistanceMeters int
	Duration       time.Duration
}

// Plan is the routing provider's answer.
type Plan struct {
	DistanceMeters int
	Duration       time.Duration

	// WaypointOrder is a permutation of the request's waypoint indices in
	// visiting order. Empty means the input order was kept.
	WaypointOrder []int

	// Legs has len(Waypoints)+1 entries in visiting order.
	Legs []Leg

	Polyline string

	// Estimated marks a plan produced by the local fallback estimator
	// rather than the provider.
	Estimated bool
}

// ErrorKind classifies provider failures for retry decisions.
type ErrorKind int

const (
	// ErrorKindTransient covers provider 5xx responses, network errors and
	// timeouts. Retry-worthy.
	ErrorKindTransient ErrorKind = iota + 1
	// ErrorKindRateLimited covers provider 429 responses. Retry-worthy
	// after backoff.
	ErrorKindRateLimited
	// ErrorKindAuth covers 401/403 responses. A configuration problem,
	// never retried.
	ErrorKindAuth
)

// ProviderError wraps a routing provider failure with its classification.
type ProviderError struct {
	Kind  ErrorKind
	Cause error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("routing provider error (%s): %v", e.kindString(), e.Cause)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

func (e *ProviderError) kindString() string {
	switch e.Kind {
	case ErrorKindTransient:
		return "transient"
	case ErrorKindRateLimited:
		return "rate limited"
	case ErrorKindAuth:
		return "auth"
	default:
		return "unknown"
	}
}

// NewProviderError creates a classified provider error.
func NewProviderError(kind ErrorKind, cause error) *ProviderError {
	return &ProviderError{Kind: kind, Cause: cause}
}

// IsRetryWorthy reports whether the error may succeed on a later attempt.
// Rate-limited and transient failures qualify; auth failures do not.
func IsRetryWorthy(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind == ErrorKindTransient || pe.Kind == ErrorKindRateLimited
	}
	// Unclassified errors (timeouts, transport failures) are treated as
	// transient.
	return true
}

// RoutePlanner computes optimized visiting orders and travel estimates.
// The production implementation is the resilient routing gateway; it never
// returns an error to callers, degrading to a local estimate instead.
type RoutePlanner interface {
	Plan(ctx context.Context, req PlanRequest) (Plan, error)
}
