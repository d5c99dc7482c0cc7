package services

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/route"
	"dispatch/internal/core/domain/model/vehicle"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// Per-stop service time: a flat handling base plus a per-cylinder charge
// scaled by cylinder size. Heavy 50kg cylinders take noticeably longer to
// unload and connect than the portable sizes.
const (
	serviceBase         = 5 * time.Minute
	servicePerUnit      = 2 * time.Minute
	servicePerHeavyUnit = 5 * time.Minute
)

// FallbackSpeedKmh is the assumed average speed when leg durations must be
// derived from straight-line distances.
const FallbackSpeedKmh = 40.0

// FallbackWarning is attached to routes built without provider guidance.
const FallbackWarning = "fallback route used"

// ServiceDurationFor estimates the on-site handling time for a delivery.
func ServiceDurationFor(demand order.Demand) time.Duration {
	d := serviceBase
	for category, units := range demand {
		if category == order.Cylinder50kg {
			d += time.Duration(units) * servicePerHeavyUnit
		} else {
			d += time.Duration(units) * servicePerUnit
		}
	}
	return d
}

// RouteBuilder turns one vehicle's assigned orders into a Route aggregate.
//
// The happy path asks the route planner for an optimized visiting order and
// maps the returned permutation onto stops with contiguous sequences and
// cumulative ETAs. When the planner degrades to a local estimate, or fails
// outright, the builder still produces a usable route: orders sorted by
// area then address, straight-line leg estimates, the FallbackWarning and a
// fixed lower score. Route building never fails because of the provider.
type RouteBuilder struct {
	planner ports.RoutePlanner
	logger  *slog.Logger
}

// NewRouteBuilder creates a RouteBuilder using the given planner.
func NewRouteBuilder(planner ports.RoutePlanner, logger *slog.Logger) RouteBuilder {
	if logger == nil {
		logger = slog.Default()
	}
	return RouteBuilder{
		planner: planner,
		logger:  logger.With("component", "route_builder"),
	}
}

// Build creates a Planned route for the vehicle serving the orders on the
// given date. Urgent orders are moved to the front of the waypoint list
// before planning so that both the provider's baseline order and the
// fallback order serve them early.
func (b RouteBuilder) Build(
	ctx context.Context,
	v *vehicle.Vehicle,
	orders []*order.Order,
	date time.Time,
) (*route.Route, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, errs.NewValueIsRequiredError("orders")
	}
	for _, o := range orders {
		if err := o.Validate(); err != nil {
			return nil, err
		}
	}

	ordered := urgentFirst(orders)
	waypoints := make([]kernel.GeoPoint, len(ordered))
	for i, o := range ordered {
		waypoints[i] = o.Location()
	}

	plan, err := b.planner.Plan(ctx, ports.PlanRequest{
		Origin:      v.StartLocation(),
		Destination: v.EndLocation(),
		Waypoints:   waypoints,
	})
	if err != nil || len(plan.Legs) < len(ordered) {
		b.logger.Warn("route planning unavailable, building fallback route",
			"vehicle_id", v.ID().String(),
			"orders", len(orders),
			"error", err,
		)
		return b.buildFallback(v, orders, date)
	}

	visit := applyWaypointOrder(ordered, plan.WaypointOrder)

	stops := make([]route.Stop, 0, len(visit))
	eta := v.WorkWindow().From()
	serviceTotal := time.Duration(0)
	for i, o := range visit {
		eta = eta.Add(plan.Legs[i].Duration)
		service := ServiceDurationFor(o.Demand())

		stop, stopErr := route.NewStop(o.ID(), o.Location(), o.Demand(), eta, service)
		if stopErr != nil {
			return nil, stopErr
		}
		stops = append(stops, stop)

		eta = eta.Add(service)
		serviceTotal += service
	}

	distanceKm := float64(plan.DistanceMeters) / 1000
	duration := plan.Duration + serviceTotal

	warnings := pseudoWarnings(visit)
	score := route.ComputeScore(duration, distanceKm, countUrgent(visit))
	if plan.Estimated {
		warnings = append(warnings, FallbackWarning)
		score = route.ScoreFallback
	}

	return route.NewRoute(kernel.NewUUID(), v.ID(), date, stops, v.Capacity(),
		distanceKm, duration, score, warnings)
}

// buildFallback produces a deterministic route without any provider input:
// orders sorted by area then address, straight-line leg estimates at
// FallbackSpeedKmh, the FallbackWarning and the fixed fallback score.
func (b RouteBuilder) buildFallback(
	v *vehicle.Vehicle,
	orders []*order.Order,
	date time.Time,
) (*route.Route, error) {
	visit := append([]*order.Order(nil), orders...)
	sort.SliceStable(visit, func(i, j int) bool {
		if visit[i].Area() != visit[j].Area() {
			return visit[i].Area() < visit[j].Area()
		}
		return visit[i].Address() < visit[j].Address()
	})

	stops := make([]route.Stop, 0, len(visit))
	eta := v.WorkWindow().From()
	distanceKm := 0.0
	travel := time.Duration(0)
	serviceTotal := time.Duration(0)

	prev := v.StartLocation()
	for _, o := range visit {
		legKm := prev.DistanceKm(o.Location())
		legDuration := time.Duration(legKm / FallbackSpeedKmh * float64(time.Hour))

		distanceKm += legKm
		travel += legDuration
		eta = eta.Add(legDuration)

		service := ServiceDurationFor(o.Demand())
		stop, err := route.NewStop(o.ID(), o.Location(), o.Demand(), eta, service)
		if err != nil {
			return nil, err
		}
		stops = append(stops, stop)

		eta = eta.Add(service)
		serviceTotal += service
		prev = o.Location()
	}

	// Return leg to the depot counts toward totals even though no stop
	// exists for it.
	returnKm := prev.DistanceKm(v.EndLocation())
	distanceKm += returnKm
	travel += time.Duration(returnKm / FallbackSpeedKmh * float64(time.Hour))

	warnings := append(pseudoWarnings(visit), FallbackWarning)

	return route.NewRoute(kernel.NewUUID(), v.ID(), date, stops, v.Capacity(),
		distanceKm, travel+serviceTotal, route.ScoreFallback, warnings)
}

// urgentFirst returns the orders with urgent ones moved to the front,
// preserving relative order within each group.
func urgentFirst(orders []*order.Order) []*order.Order {
	out := make([]*order.Order, 0, len(orders))
	for _, o := range orders {
		if o.IsUrgent() {
			out = append(out, o)
		}
	}
	for _, o := range orders {
		if !o.IsUrgent() {
			out = append(out, o)
		}
	}
	return out
}

// applyWaypointOrder reorders the orders by the provider's permutation.
// An empty or malformed permutation keeps the input order.
func applyWaypointOrder(orders []*order.Order, waypointOrder []int) []*order.Order {
	if len(waypointOrder) != len(orders) {
		return orders
	}

	out := make([]*order.Order, 0, len(orders))
	seen := make(map[int]bool, len(waypointOrder))
	for _, idx := range waypointOrder {
		if idx < 0 || idx >= len(orders) || seen[idx] {
			return orders
		}
		seen[idx] = true
		out = append(out, orders[idx])
	}
	return out
}

func countUrgent(orders []*order.Order) int {
	n := 0
	for _, o := range orders {
		if o.IsUrgent() {
			n++
		}
	}
	return n
}

func pseudoWarnings(orders []*order.Order) []string {
	var warnings []string
	for _, o := range orders {
		if o.Location().IsPseudo() {
			warnings = append(warnings, "approximate location used for order "+o.ID().String())
		}
	}
	return warnings
}
