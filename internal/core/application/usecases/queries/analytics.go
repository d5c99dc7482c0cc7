// Package queries contains read-side operations in the CQRS architecture.
// Query handlers read the database directly and bypass the domain model:
// analytics aggregates thousands of rows and never mutates state, so the
// aggregate-loading machinery of the write side would only add cost.
package queries

import (
	"math"
	"time"
)

// Analytics constants. The straight-route baseline factor models the
// distance a naive per-order dispatch would drive compared to an optimized
// multi-stop route.
const (
	baselineDistanceFactor = 1.25
	fuelLitersPerKm        = 0.12
	fuelCostPerLiter       = 2.05

	// trendSlopeDeadBand is the least-squares slope magnitude below which a
	// weekly series counts as stable rather than improving or declining.
	trendSlopeDeadBand = 0.1
)

// Trend classifies the direction of a weekly series.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

// Ratio divides numerator by denominator, returning 0 for an empty
// denominator. Every analytics ratio goes through here so a day without
// deliveries reads as zero instead of NaN.
func Ratio(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

// FuelSavings converts the distance saved against the per-order baseline
// into liters and cost.
func FuelSavings(actualDistanceKm float64) (savedKm, savedLiters, savedCost float64) {
	savedKm = actualDistanceKm*baselineDistanceFactor - actualDistanceKm
	savedLiters = savedKm * fuelLitersPerKm
	savedCost = savedLiters * fuelCostPerLiter
	return savedKm, savedLiters, savedCost
}

// LeastSquaresSlope fits y = a + b*x over the series with x = 0..n-1 and
// returns b. Series shorter than two points have no direction and yield 0.
func LeastSquaresSlope(values []float64) float64 {
	n := float64(len(values))
	if n < 2 {
		return 0
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denominator := n*sumXX - sumX*sumX
	if denominator == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denominator
}

// TrendOf maps a slope to its classification using the dead band.
func TrendOf(slope float64) Trend {
	switch {
	case slope > trendSlopeDeadBand:
		return TrendImproving
	case slope < -trendSlopeDeadBand:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// Driver score weights. The four components are each scored 0..100 and
// blended: punctuality and fuel efficiency dominate, delay magnitude and
// delivered volume refine.
const (
	weightOnTime = 0.30
	weightDelay  = 0.20
	weightFuel   = 0.30
	weightVolume = 0.20

	// delayScoreZeroAt is the average delay at which the delay component
	// bottoms out.
	delayScoreZeroAt = time.Hour
)

// DriverScoreInput carries the per-driver aggregates the composite score is
// computed from, plus the fleet references they are normalized against.
type DriverScoreInput struct {
	OnTimeRate   float64
	AverageDelay time.Duration
	KmPerStop    float64

	FleetKmPerStop float64
	StopsCompleted int
	FleetMaxStops  int
}

// ComputeDriverScore blends the four performance components into a 0..100
// integer score. Missing fleet references zero the affected component
// rather than failing.
func ComputeDriverScore(in DriverScoreInput) int {
	onTimeScore := clampComponent(in.OnTimeRate * 100)

	delayScore := clampComponent(100 * (1 - float64(in.AverageDelay)/float64(delayScoreZeroAt)))

	// Driving fewer kilometers per delivered stop than the fleet average
	// scores above parity, capped at 100.
	fuelScore := clampComponent(Ratio(in.FleetKmPerStop, in.KmPerStop) * 100)

	volumeScore := clampComponent(Ratio(float64(in.StopsCompleted), float64(in.FleetMaxStops)) * 100)

	score := weightOnTime*onTimeScore +
		weightDelay*delayScore +
		weightFuel*fuelScore +
		weightVolume*volumeScore

	return int(math.Round(score))
}

func clampComponent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
