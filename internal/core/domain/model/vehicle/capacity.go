package vehicle

import (
	"fmt"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
)

// ErrCapacityIsNotConstructed is returned when attempting to use an
// improperly initialized Capacity.
var ErrCapacityIsNotConstructed = errs.NewValueIsRequiredError(
	"capacity must be created via NewCapacity constructor")

// Load is the aggregate weight and per-category cylinder counts of a set of
// orders. It is what gets compared against a vehicle's Capacity.
type Load struct {
	WeightKg float64
	Units    map[order.CylinderCategory]int
}

// TotalUnits returns the cylinder count across all categories.
func (l Load) TotalUnits() int {
	total := 0
	for _, n := range l.Units {
		total += n
	}
	return total
}

// TotalsOf computes the combined Load of the given orders.
func TotalsOf(orders []*order.Order) Load {
	load := Load{Units: make(map[order.CylinderCategory]int)}
	for _, o := range orders {
		for c, n := range o.Demand() {
			load.Units[c] += n
			load.WeightKg += c.LadenWeightKg() * float64(n)
		}
	}
	return load
}

// Capacity is an immutable value object describing what a vehicle can carry:
// a maximum laden weight plus per-category cylinder limits.
//
// CanFit is monotonic: if a set of orders fits, every subset of it fits too,
// because both weight and counts only shrink under subset removal.
type Capacity struct {
	maxWeightKg float64
	maxUnits    map[order.CylinderCategory]int
	guard       kernel.ConstructorGuard
}

// NewCapacity creates a validated Capacity.
func NewCapacity(maxWeightKg float64, maxUnits map[order.CylinderCategory]int) (Capacity, error) {
	if maxWeightKg <= 0 {
		return Capacity{}, errs.NewValueIsInvalidErrorWithCause("max weight",
			fmt.Errorf("%f is not greater than 0", maxWeightKg))
	}
	if len(maxUnits) == 0 {
		return Capacity{}, errs.NewValueIsRequiredError("per-category capacity")
	}

	units := make(map[order.CylinderCategory]int, len(maxUnits))
	for c, n := range maxUnits {
		if err := c.Validate(); err != nil {
			return Capacity{}, err
		}
		if n < 0 {
			return Capacity{}, errs.NewValueIsInvalidError("capacity count for " + string(c))
		}
		units[c] = n
	}

	return Capacity{
		maxWeightKg: maxWeightKg,
		maxUnits:    units,
		guard:       kernel.NewConstructorGuard(),
	}, nil
}

// MaxWeightKg returns the maximum laden weight.
func (c Capacity) MaxWeightKg() float64 {
	return c.maxWeightKg
}

// MaxUnits returns a copy of the per-category cylinder limits.
func (c Capacity) MaxUnits() map[order.CylinderCategory]int {
	out := make(map[order.CylinderCategory]int, len(c.maxUnits))
	for cat, n := range c.maxUnits {
		out[cat] = n
	}
	return out
}

// CanFit reports whether the combined load of the orders fits within this
// capacity: total weight and every per-category count must be within limits.
// Categories absent from the capacity table cannot be carried at all.
func (c Capacity) CanFit(orders []*order.Order) bool {
	load := TotalsOf(orders)

	if load.WeightKg > c.maxWeightKg {
		return false
	}
	for cat, n := range load.Units {
		if n > c.maxUnits[cat] {
			return false
		}
	}
	return true
}

// Reduce returns a new Capacity with the orders' load subtracted. It is a
// pure transform: the receiver is unchanged. Reducing below zero fails.
func (c Capacity) Reduce(orders []*order.Order) (Capacity, error) {
	if !c.CanFit(orders) {
		return Capacity{}, errs.NewValueIsInvalidErrorWithCause("capacity",
			fmt.Errorf("load exceeds remaining capacity of %.1fkg", c.maxWeightKg))
	}

	load := TotalsOf(orders)
	units := make(map[order.CylinderCategory]int, len(c.maxUnits))
	for cat, n := range c.maxUnits {
		units[cat] = n - load.Units[cat]
	}

	return Capacity{
		maxWeightKg: c.maxWeightKg - load.WeightKg,
		maxUnits:    units,
		guard:       kernel.NewConstructorGuard(),
	}, nil
}

// Validate ensures the capacity was built via NewCapacity.
func (c Capacity) Validate() error {
	return c.guard.Validate(ErrCapacityIsNotConstructed)
}
