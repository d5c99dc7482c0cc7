package adjustment

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// ErrRequestIsNotConstructed is returned when a Request instance was not
// created through the NewRequest factory method.
var ErrRequestIsNotConstructed = errors.New("Request must be created via NewRequest constructor")

// Request describes one real-time adjustment submitted to the engine.
//
// RouteID is optional for UrgentOrder requests: when absent the engine picks
// the cheapest viable route itself. Priority is recorded for metrics only
// and never influences processing order; the queue is strictly FIFO.
type Request struct {
	id          kernel.UUID
	kind        Type
	routeID     *kernel.UUID
	orderID     *kernel.UUID
	priority    int
	requestedAt time.Time

	isConstructed bool
}

// NewRequest creates a validated Request. Per-type payload requirements:
// UrgentOrder and CustomerCancellation need an order id, TrafficUpdate needs
// a route id.
func NewRequest(
	id kernel.UUID,
	kind Type,
	routeID *kernel.UUID,
	orderID *kernel.UUID,
	priority int,
	requestedAt time.Time,
) (Request, error) {
	if err := id.Validate(); err != nil {
		return Request{}, err
	}
	if _, err := ParseType(string(kind)); err != nil {
		return Request{}, err
	}
	if routeID != nil {
		if err := routeID.Validate(); err != nil {
			return Request{}, err
		}
	}
	if orderID != nil {
		if err := orderID.Validate(); err != nil {
			return Request{}, err
		}
	}
	if requestedAt.IsZero() {
		return Request{}, errs.NewValueIsRequiredError("requestedAt")
	}

	switch kind {
	case UrgentOrder, CustomerCancellation:
		if orderID == nil {
			return Request{}, errs.NewValueIsRequiredError("orderId")
		}
	case TrafficUpdate:
		if routeID == nil {
			return Request{}, errs.NewValueIsRequiredError("routeId")
		}
	case DriverUnavailable, TimeWindowChange, VehicleBreakdown:
		// No payload requirements until these handlers are implemented.
	}

	return Request{
		id:            id,
		kind:          kind,
		routeID:       routeID,
		orderID:       orderID,
		priority:      priority,
		requestedAt:   requestedAt,
		isConstructed: true,
	}, nil
}

// Validate ensures the Request was properly constructed.
func (r Request) Validate() error {
	if !r.isConstructed {
		return ErrRequestIsNotConstructed
	}
	return nil
}

// ID returns the request's unique identifier.
func (r Request) ID() kernel.UUID {
	return r.id
}

// Kind returns the adjustment type.
func (r Request) Kind() Type {
	return r.kind
}

// RouteID returns the explicitly targeted route, or nil for auto resolution.
func (r Request) RouteID() *kernel.UUID {
	return r.routeID
}

// OrderID returns the order the adjustment concerns, if any.
func (r Request) OrderID() *kernel.UUID {
	return r.orderID
}

// Priority returns the caller-supplied priority. Metric-only.
func (r Request) Priority() int {
	return r.priority
}

// RequestedAt returns the submission timestamp.
func (r Request) RequestedAt() time.Time {
	return r.requestedAt
}
