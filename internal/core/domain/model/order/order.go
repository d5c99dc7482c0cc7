package order

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// ErrOrderIsNotConstructed is returned when an Order instance was not created
// through the NewOrder or RestoreOrder factory methods.
var ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

// Order is the aggregate root for a gas-cylinder delivery request. It owns
// the demand being delivered, the destination, and the assignment lifecycle.
//
// Invariants:
//   - Must have a valid unique identifier and destination location
//   - Demand must name known cylinder categories with positive counts
//   - An order is linked to at most one active route at a time
//   - Status transitions follow the Pending/Assigned/Completed machine
type Order struct {
	id       kernel.UUID
	routeID  *kernel.UUID
	area     string
	address  string
	location kernel.GeoPoint
	demand   Demand
	urgent   bool
	window   kernel.TimeWindow
	status   Status

	isConstructed bool
}

// NewOrder creates a validated Order in Pending status.
//
// The location may be a pseudo-point when geocoding was unavailable; the
// caller decides that substitution before construction.
func NewOrder(
	id kernel.UUID,
	area string,
	address string,
	location kernel.GeoPoint,
	demand Demand,
	urgent bool,
	window kernel.TimeWindow,
) (*Order, error) {
	o := &Order{
		status:        Pending,
		urgent:        urgent,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setArea(area),
		o.setAddress(address),
		o.setLocation(location),
		o.setDemand(demand),
		o.setWindow(window),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// RestoreOrder reconstructs an Order from persistence, including its status
// and route linkage. Used by repositories only.
func RestoreOrder(
	id kernel.UUID,
	area string,
	address string,
	location kernel.GeoPoint,
	demand Demand,
	urgent bool,
	window kernel.TimeWindow,
	status Status,
	routeID *kernel.UUID,
) (*Order, error) {
	o, err := NewOrder(id, area, address, location, demand, urgent, window)
	if err != nil {
		return nil, err
	}

	o.status = status
	o.routeID = routeID
	return o, nil
}

// Validate ensures the Order was properly constructed.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares two orders by identifier.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// Area returns the administrative area the destination belongs to.
func (o *Order) Area() string {
	return o.area
}

// Address returns the street address of the destination.
func (o *Order) Address() string {
	return o.address
}

// Location returns the destination coordinate (possibly a pseudo-point).
func (o *Order) Location() kernel.GeoPoint {
	return o.location
}

// Demand returns a copy of the per-category cylinder counts.
func (o *Order) Demand() Demand {
	return o.demand.Clone()
}

// IsUrgent reports whether the order carries the urgency flag.
func (o *Order) IsUrgent() bool {
	return o.urgent
}

// Window returns the requested delivery time window.
func (o *Order) Window() kernel.TimeWindow {
	return o.window
}

// Status returns the current lifecycle state.
func (o *Order) Status() Status {
	return o.status
}

// Route returns the active route the order is linked to, or nil.
func (o *Order) Route() *kernel.UUID {
	return o.routeID
}

// Assign links the order to a route. Reassignment is allowed so an
// adjustment can move an order between routes in one step.
func (o *Order) Assign(routeID kernel.UUID) error {
	if err := routeID.Validate(); err != nil {
		return err
	}

	newStatus, err := o.status.Assign()
	if err != nil {
		return err
	}

	o.status = newStatus
	o.routeID = &routeID
	return nil
}

// Unassign detaches the order from its route and returns it to Pending.
func (o *Order) Unassign() error {
	newStatus, err := o.status.Unassign()
	if err != nil {
		return err
	}

	o.status = newStatus
	o.routeID = nil
	return nil
}

// Complete marks the order as delivered.
func (o *Order) Complete() error {
	newStatus, err := o.status.Complete()
	if err != nil {
		return err
	}

	o.status = newStatus
	return nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setArea(area string) error {
	if area == "" {
		return errs.NewValueIsRequiredError("area")
	}
	o.area = area
	return nil
}

func (o *Order) setAddress(address string) error {
	if address == "" {
		return errs.NewValueIsRequiredError("address")
	}
	o.address = address
	return nil
}

func (o *Order) setLocation(location kernel.GeoPoint) error {
	if err := location.Validate(); err != nil {
		return err
	}
	o.location = location
	return nil
}

func (o *Order) setDemand(demand Demand) error {
	if err := demand.Validate(); err != nil {
		return err
	}
	o.demand = demand.Clone()
	return nil
}

func (o *Order) setWindow(window kernel.TimeWindow) error {
	if err := window.Validate(); err != nil {
		return err
	}
	o.window = window
	return nil
}
