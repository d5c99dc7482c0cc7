package route

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
)

// Stop is a single scheduled visit within a route. Stops are entities owned
// by their Route; the route assigns and maintains sequence numbers.
type Stop struct {
	orderID         kernel.UUID
	sequence        int
	location        kernel.GeoPoint
	demand          order.Demand
	eta             time.Time
	serviceDuration time.Duration
	completed       bool
	actualArrival   *time.Time
}

// NewStop creates a validated Stop. The sequence number is assigned by the
// owning route, so it is not a constructor argument.
func NewStop(
	orderID kernel.UUID,
	location kernel.GeoPoint,
	demand order.Demand,
	eta time.Time,
	serviceDuration time.Duration,
) (Stop, error) {
	if err := orderID.Validate(); err != nil {
		return Stop{}, err
	}
	if err := location.Validate(); err != nil {
		return Stop{}, err
	}
	if err := demand.Validate(); err != nil {
		return Stop{}, err
	}
	if serviceDuration < 0 {
		return Stop{}, errs.NewValueIsInvalidError("service duration")
	}

	return Stop{
		orderID:         orderID,
		location:        location,
		demand:          demand.Clone(),
		eta:             eta,
		serviceDuration: serviceDuration,
	}, nil
}

// RestoreStop reconstructs a Stop from persistence including its sequence
// and completion state. Used by repositories only.
func RestoreStop(
	orderID kernel.UUID,
	sequence int,
	location kernel.GeoPoint,
	demand order.Demand,
	eta time.Time,
	serviceDuration time.Duration,
	completed bool,
	actualArrival *time.Time,
) (Stop, error) {
	s, err := NewStop(orderID, location, demand, eta, serviceDuration)
	if err != nil {
		return Stop{}, err
	}

	s.sequence = sequence
	s.completed = completed
	s.actualArrival = actualArrival
	return s, nil
}

// OrderID returns the order served at this stop.
func (s Stop) OrderID() kernel.UUID {
	return s.orderID
}

// Sequence returns the 1-based position within the route.
func (s Stop) Sequence() int {
	return s.sequence
}

// Location returns the stop's coordinate.
func (s Stop) Location() kernel.GeoPoint {
	return s.location
}

// Demand returns a copy of the cylinders delivered at this stop.
func (s Stop) Demand() order.Demand {
	return s.demand.Clone()
}

// ETA returns the estimated arrival time.
func (s Stop) ETA() time.Time {
	return s.eta
}

// ServiceDuration returns the estimated on-site handling time.
func (s Stop) ServiceDuration() time.Duration {
	return s.serviceDuration
}

// IsCompleted reports whether the delivery has been made.
func (s Stop) IsCompleted() bool {
	return s.completed
}

// ActualArrival returns the recorded arrival time, or nil if not yet visited.
func (s Stop) ActualArrival() *time.Time {
	return s.actualArrival
}
