package commands

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

var ErrOptimizeRoutesCommandIsNotConstructed = errors.New(
	"OptimizeRoutesCommand must be created via NewOptimizeRoutesCommand constructor",
)

// OptimizeRoutesCommand requests a full optimization run for one delivery
// date: cluster the pending orders, distribute them over the fleet and build
// a route per vehicle.
type OptimizeRoutesCommand struct {
	date time.Time

	guard kernel.ConstructorGuard
}

// NewOptimizeRoutesCommand creates a validated command for the given date.
func NewOptimizeRoutesCommand(date time.Time) (OptimizeRoutesCommand, error) {
	if date.IsZero() {
		return OptimizeRoutesCommand{}, errs.NewValueIsRequiredError("date")
	}

	return OptimizeRoutesCommand{
		date:  date,
		guard: kernel.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c OptimizeRoutesCommand) Validate() error {
	return c.guard.Validate(ErrOptimizeRoutesCommandIsNotConstructed)
}

// Date returns the delivery date being optimized.
func (c OptimizeRoutesCommand) Date() time.Time {
	return c.date
}
