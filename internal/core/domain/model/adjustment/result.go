package adjustment

import (
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
)

// ChangeKind names a single concrete modification applied to a route.
type ChangeKind string

const (
	StopInserted  ChangeKind = "STOP_INSERTED"
	StopRemoved   ChangeKind = "STOP_REMOVED"
	TimingUpdated ChangeKind = "TIMING_UPDATED"
)

// Change describes one modification made while applying an adjustment.
type Change struct {
	Kind     ChangeKind
	RouteID  kernel.UUID
	OrderID  *kernel.UUID
	Position int
}

// RouteTotals carries the post-adjustment totals of an affected route.
type RouteTotals struct {
	RouteID    kernel.UUID
	DistanceKm float64
	Duration   time.Duration
	StopCount  int
}

// Result is the structured outcome of processing one adjustment request.
// Unsupported or failed adjustments produce Success=false with an
// explanatory message; the engine never panics and the queue never stalls.
type Result struct {
	RequestID       kernel.UUID
	Success         bool
	AffectedRouteID []kernel.UUID
	Changes         []Change
	NewTotals       []RouteTotals
	Message         string
}

// Failure builds a failed Result for the request with a formatted message.
func Failure(requestID kernel.UUID, format string, args ...any) Result {
	return Result{
		RequestID: requestID,
		Success:   false,
		Message:   fmt.Sprintf(format, args...),
	}
}
