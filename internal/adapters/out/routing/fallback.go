package routing

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
)

// estimator produces a local plan from straight-line distances when the
// provider is unavailable. Distances are scaled by a road factor and
// converted to durations at an assumed average speed. The waypoint order is
// kept as given; the estimate never fails.
type estimator struct {
	roadFactor float64
	speedKmh   float64
}

func (e estimator) Estimate(req ports.PlanRequest) ports.Plan {
	points := make([]kernel.GeoPoint, 0, len(req.Waypoints)+2)
	points = append(points, req.Origin)
	points = append(points, req.Waypoints...)
	points = append(points, req.Destination)

	plan := ports.Plan{
		Legs:      make([]ports.Leg, 0, len(points)-1),
		Estimated: true,
	}

	for i := 1; i < len(points); i++ {
		km := points[i-1].DistanceKm(points[i]) * e.roadFactor
		leg := ports.Leg{
			DistanceMeters: int(km * 1000),
			Duration:       time.Duration(km / e.speedKmh * float64(time.Hour)),
		}
		plan.Legs = append(plan.Legs, leg)
		plan.DistanceMeters += leg.DistanceMeters
		plan.Duration += leg.Duration
	}

	return plan
}
