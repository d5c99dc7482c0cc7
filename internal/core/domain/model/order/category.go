package order

import "dispatch/internal/pkg/errs"

// CylinderCategory identifies a gas cylinder size class.
type CylinderCategory string

// Supported cylinder categories, keyed by nominal gas content.
const (
	Cylinder9kg  CylinderCategory = "9kg"
	Cylinder12kg CylinderCategory = "12kg"
	Cylinder14kg CylinderCategory = "14kg"
	Cylinder50kg CylinderCategory = "50kg"
)

// ladenWeightsKg maps a category to the full (gas + steel tare) weight that
// actually loads the vehicle. A 50kg cylinder weighs roughly 75kg laden.
var ladenWeightsKg = map[CylinderCategory]float64{
	Cylinder9kg:  17.0,
	Cylinder12kg: 25.0,
	Cylinder14kg: 29.0,
	Cylinder50kg: 75.0,
}

// AllCategories returns the supported categories in ascending size order.
func AllCategories() []CylinderCategory {
	return []CylinderCategory{Cylinder9kg, Cylinder12kg, Cylinder14kg, Cylinder50kg}
}

// LadenWeightKg returns the per-unit laden weight for the category.
func (c CylinderCategory) LadenWeightKg() float64 {
	return ladenWeightsKg[c]
}

// Validate reports whether the category is one of the supported sizes.
func (c CylinderCategory) Validate() error {
	if _, ok := ladenWeightsKg[c]; !ok {
		return errs.NewValueIsInvalidError("cylinder category " + string(c))
	}
	return nil
}

// Demand is the per-category cylinder count requested by an order.
type Demand map[CylinderCategory]int

// Units returns the total cylinder count across categories.
func (d Demand) Units() int {
	total := 0
	for _, n := range d {
		total += n
	}
	return total
}

// WeightKg returns the total laden weight of the demand.
func (d Demand) WeightKg() float64 {
	weight := 0.0
	for c, n := range d {
		weight += c.LadenWeightKg() * float64(n)
	}
	return weight
}

// Validate checks categories are known and counts positive.
func (d Demand) Validate() error {
	if len(d) == 0 {
		return errs.NewValueIsRequiredError("demand")
	}
	for c, n := range d {
		if err := c.Validate(); err != nil {
			return err
		}
		if n <= 0 {
			return errs.NewValueIsInvalidError("demand count for " + string(c))
		}
	}
	return nil
}

// Clone returns an independent copy of the demand map.
func (d Demand) Clone() Demand {
	out := make(Demand, len(d))
	for c, n := range d {
		out[c] = n
	}
	return out
}
