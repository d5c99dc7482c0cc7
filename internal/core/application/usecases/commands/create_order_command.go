package commands

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

var ErrCreateOrderCommandIsNotConstructed = errors.New(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// CreateOrderCommand represents a request to register a new gas-cylinder
// delivery order. The destination coordinate is resolved by the handler, so
// the command carries only the textual address.
type CreateOrderCommand struct {
	orderID kernel.UUID
	area    string
	address string
	demand  order.Demand
	urgent  bool
	window  kernel.TimeWindow

	guard kernel.ConstructorGuard
}

// NewCreateOrderCommand creates a validated command. Demand must name known
// cylinder categories with positive counts and the window must be a valid
// interval.
func NewCreateOrderCommand(
	orderID kernel.UUID,
	area string,
	address string,
	demand order.Demand,
	urgent bool,
	windowFrom time.Time,
	windowTo time.Time,
) (CreateOrderCommand, error) {
	if err := orderID.Validate(); err != nil {
		return CreateOrderCommand{}, err
	}
	if err := demand.Validate(); err != nil {
		return CreateOrderCommand{}, err
	}

	window, err := kernel.NewTimeWindow(windowFrom, windowTo)
	if err != nil {
		return CreateOrderCommand{}, err
	}

	// Area and address emptiness is rejected by the order constructor; the
	// command only guards what the handler needs before reaching it.
	return CreateOrderCommand{
		orderID: orderID,
		area:    area,
		address: address,
		demand:  demand.Clone(),
		urgent:  urgent,
		window:  window,
		guard:   kernel.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

// OrderID returns the identifier the new order will carry.
func (c CreateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Area returns the administrative area of the destination.
func (c CreateOrderCommand) Area() string {
	return c.area
}

// Address returns the destination street address.
func (c CreateOrderCommand) Address() string {
	return c.address
}

// Demand returns a copy of the requested cylinder counts.
func (c CreateOrderCommand) Demand() order.Demand {
	return c.demand.Clone()
}

// IsUrgent reports whether the order carries the urgency flag.
func (c CreateOrderCommand) IsUrgent() bool {
	return c.urgent
}

// Window returns the requested delivery time window.
func (c CreateOrderCommand) Window() kernel.TimeWindow {
	return c.window
}
