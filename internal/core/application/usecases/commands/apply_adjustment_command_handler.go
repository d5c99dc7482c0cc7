package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/adjustment"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/route"
	"dispatch/internal/core/domain/model/vehicle"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

const (
	// defaultTrafficDegradationFactor is the threshold above which a traffic
	// refresh triggers a re-optimization attempt: the refreshed duration must
	// exceed the planned duration by more than 20%.
	defaultTrafficDegradationFactor = 1.2

	// maxRouteResolveAttempts bounds how often an auto-resolved adjustment
	// re-runs route selection when the chosen route changed before its lock
	// was acquired.
	maxRouteResolveAttempts = 3
)

// AdjustmentConfig carries the tunable thresholds of the adjustment path.
// Zero values pick the defaults.
type AdjustmentConfig struct {
	// TrafficDegradationFactor is the multiplier over a route's stored
	// duration above which a traffic refresh attempts a re-optimization.
	// Values at or below 1 fall back to the 1.2 default.
	TrafficDegradationFactor float64
}

// ApplyAdjustmentCommandHandler applies one real-time adjustment to the
// active route set.
//
// The handler distinguishes business failures from infrastructure failures:
// an unknown order, a full route, or an unsupported adjustment type produce
// a Result with Success=false and never an error, so the adjustment queue
// keeps draining. Errors are reserved for storage problems that make the
// outcome unknowable.
//
// Every stop-set mutation runs under a per-route lock shared by all copies
// of the handler. Requests that resolve their route at runtime pick it in a
// read-only pass first, then re-verify it inside the locked transaction.
type ApplyAdjustmentCommandHandler struct {
	uowFactory UoWFactory
	planner    ports.RoutePlanner
	publisher  ports.RouteEventPublisher
	locks      *routeLockSet

	degradationFactor float64

	logger *slog.Logger
}

// NewApplyAdjustmentCommandHandler creates the adjustment handler. The
// publisher is optional; a nil publisher disables event notification.
func NewApplyAdjustmentCommandHandler(
	uowFactory UoWFactory,
	planner ports.RoutePlanner,
	publisher ports.RouteEventPublisher,
	config AdjustmentConfig,
	logger *slog.Logger,
) ApplyAdjustmentCommandHandler {
	if config.TrafficDegradationFactor <= 1 {
		config.TrafficDegradationFactor = defaultTrafficDegradationFactor
	}
	if logger == nil {
		logger = slog.Default()
	}
	return ApplyAdjustmentCommandHandler{
		uowFactory:        uowFactory,
		planner:           planner,
		publisher:         publisher,
		locks:             newRouteLockSet(),
		degradationFactor: config.TrafficDegradationFactor,
		logger:            logger.With("component", "apply_adjustment"),
	}
}

// Handle applies the adjustment and returns its structured outcome.
func (h *ApplyAdjustmentCommandHandler) Handle(
	ctx context.Context,
	cmd ApplyAdjustmentCommand,
) (adjustment.Result, error) {
	if err := cmd.Validate(); err != nil {
		return adjustment.Result{}, err
	}

	req := cmd.Request()
	switch req.Kind() {
	case adjustment.UrgentOrder:
		return h.handleUrgentOrder(ctx, req)
	case adjustment.TrafficUpdate:
		return h.handleTrafficUpdate(ctx, req)
	case adjustment.CustomerCancellation:
		return h.handleCancellation(ctx, req)
	case adjustment.DriverUnavailable, adjustment.TimeWindowChange, adjustment.VehicleBreakdown:
		return adjustment.Failure(req.ID(),
			"adjustment type %s is not supported yet", req.Kind()), nil
	default:
		return adjustment.Failure(req.ID(),
			"unknown adjustment type %s", req.Kind()), nil
	}
}

// handleUrgentOrder inserts a pending order into an active route at the
// position with the lowest detour cost. When the request names a route only
// that route is considered; otherwise every active route that can still
// accept the demand competes and the cheapest insertion wins. The chosen
// route is re-verified under its lock, so two requests resolving the same
// route never insert from stale snapshots.
func (h *ApplyAdjustmentCommandHandler) handleUrgentOrder(
	ctx context.Context,
	req adjustment.Request,
) (adjustment.Result, error) {
	if req.RouteID() != nil {
		result, _, err := h.insertUrgentOrder(ctx, req, *req.RouteID(), false)
		return result, err
	}

	for attempt := 0; attempt < maxRouteResolveAttempts; attempt++ {
		routeID, resolved, done, err := h.resolveUrgentRoute(ctx, req)
		if done || err != nil {
			return resolved, err
		}

		result, stale, err := h.insertUrgentOrder(ctx, req, routeID, true)
		if err != nil || !stale {
			return result, err
		}
	}
	return adjustment.Failure(req.ID(),
		"no active route can accept order %s", req.OrderID()), nil
}

// resolveUrgentRoute picks the cheapest-insertion route for the order in a
// read-only pass. done reports that resolution itself settled the outcome:
// an unknown order, an idempotent re-apply or no acceptable route.
func (h *ApplyAdjustmentCommandHandler) resolveUrgentRoute(
	ctx context.Context,
	req adjustment.Request,
) (kernel.UUID, adjustment.Result, bool, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return kernel.UUID{}, adjustment.Result{}, false, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, err := uow.OrderRepository().Get(ctx, *req.OrderID())
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			return kernel.UUID{}, adjustment.Failure(req.ID(),
				"order %s not found", req.OrderID()), true, nil
		}
		return kernel.UUID{}, adjustment.Result{}, false, err
	}

	candidates, err := uow.RouteRepository().GetAllActive(ctx)
	if err != nil {
		return kernel.UUID{}, adjustment.Result{}, false, err
	}

	// Re-applying the same request must not duplicate the stop.
	for _, r := range candidates {
		if r.ContainsOrder(o.ID()) {
			return kernel.UUID{}, adjustment.Result{
				RequestID:       req.ID(),
				Success:         true,
				AffectedRouteID: []kernel.UUID{r.ID()},
				Message:         "order already scheduled on route " + r.ID().String(),
			}, true, nil
		}
	}

	evaluator := services.NewInsertionEvaluator()

	var (
		bestRoute *route.Route
		bestCost  float64
	)
	for _, r := range candidates {
		if r.Status() == route.Finalized || !r.CanAccept(o.Demand()) {
			continue
		}

		v, getErr := uow.VehicleRepository().Get(ctx, r.VehicleID())
		if getErr != nil {
			return kernel.UUID{}, adjustment.Result{}, false, getErr
		}

		_, cost := evaluator.BestInsertion(r, v.StartLocation(), o.Location())
		if bestRoute == nil || cost < bestCost {
			bestRoute = r
			bestCost = cost
		}
	}

	if bestRoute == nil {
		return kernel.UUID{}, adjustment.Failure(req.ID(),
			"no active route can accept order %s", o.ID()), true, nil
	}
	return bestRoute.ID(), adjustment.Result{}, false, nil
}

// insertUrgentOrder inserts the order into the given route inside one
// transaction, holding the route's lock throughout. The route is re-read
// under the lock and re-verified; stale reports that it can no longer take
// the order and selection should run again. stale is only raised when
// retryable is set, otherwise the request fails.
func (h *ApplyAdjustmentCommandHandler) insertUrgentOrder(
	ctx context.Context,
	req adjustment.Request,
	routeID kernel.UUID,
	retryable bool,
) (adjustment.Result, bool, error) {
	unlock := h.locks.acquire(routeID)
	defer unlock()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return adjustment.Result{}, false, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	routeRepo := uow.RouteRepository()

	o, err := orderRepo.Get(ctx, *req.OrderID())
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			return adjustment.Failure(req.ID(),
				"order %s not found", req.OrderID()), false, nil
		}
		return adjustment.Result{}, false, err
	}

	r, err := routeRepo.Get(ctx, routeID)
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			if retryable {
				return adjustment.Result{}, true, nil
			}
			return adjustment.Failure(req.ID(),
				"route %s not found", req.RouteID()), false, nil
		}
		return adjustment.Result{}, false, err
	}

	if r.ContainsOrder(o.ID()) {
		return adjustment.Result{
			RequestID:       req.ID(),
			Success:         true,
			AffectedRouteID: []kernel.UUID{r.ID()},
			Message:         "order already scheduled on route " + r.ID().String(),
		}, false, nil
	}

	if r.Status() == route.Finalized || !r.CanAccept(o.Demand()) {
		if retryable {
			return adjustment.Result{}, true, nil
		}
		return adjustment.Failure(req.ID(),
			"no active route can accept order %s", o.ID()), false, nil
	}

	v, err := uow.VehicleRepository().Get(ctx, r.VehicleID())
	if err != nil {
		return adjustment.Result{}, false, err
	}

	position, _ := services.NewInsertionEvaluator().BestInsertion(
		r, v.StartLocation(), o.Location())

	stop, err := route.NewStop(o.ID(), o.Location(), o.Demand(),
		o.Window().From(), services.ServiceDurationFor(o.Demand()))
	if err != nil {
		return adjustment.Result{}, false, err
	}

	if err = r.InsertStopAt(position, stop); err != nil {
		return adjustment.Failure(req.ID(),
			"cannot insert order %s into route %s: %v", o.ID(), r.ID(), err), false, nil
	}

	if err = refreshTiming(r, v); err != nil {
		return adjustment.Result{}, false, err
	}

	if err = o.Assign(r.ID()); err != nil {
		return adjustment.Failure(req.ID(),
			"order %s cannot be assigned: %v", o.ID(), err), false, nil
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return adjustment.Result{}, false, err
	}
	if err = routeRepo.Update(ctx, r); err != nil {
		return adjustment.Result{}, false, err
	}
	if err = uow.Commit(ctx); err != nil {
		return adjustment.Result{}, false, err
	}

	orderID := o.ID()
	result := adjustment.Result{
		RequestID:       req.ID(),
		Success:         true,
		AffectedRouteID: []kernel.UUID{r.ID()},
		Changes: []adjustment.Change{
			{Kind: adjustment.StopInserted, RouteID: r.ID(), OrderID: &orderID, Position: position},
			{Kind: adjustment.TimingUpdated, RouteID: r.ID()},
		},
		NewTotals: []adjustment.RouteTotals{totalsOf(r)},
		Message:   fmt.Sprintf("urgent order inserted at position %d", position),
	}

	h.publish(ctx, r.ID(), result)
	return result, false, nil
}

// handleTrafficUpdate refreshes one route against current traffic. The
// route's existing sequence is re-estimated first; only when its duration
// degrades beyond the configured factor is a re-optimization attempted, and
// the new visiting order is adopted only when strictly faster than driving
// the current sequence through the same traffic.
func (h *ApplyAdjustmentCommandHandler) handleTrafficUpdate(
	ctx context.Context,
	req adjustment.Request,
) (adjustment.Result, error) {
	unlock := h.locks.acquire(*req.RouteID())
	defer unlock()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return adjustment.Result{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	routeRepo := uow.RouteRepository()

	r, err := routeRepo.Get(ctx, *req.RouteID())
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			return adjustment.Failure(req.ID(), "route %s not found", req.RouteID()), nil
		}
		return adjustment.Result{}, err
	}
	if r.Status() == route.Finalized {
		return adjustment.Failure(req.ID(), "route %s is finalized", r.ID()), nil
	}

	v, err := uow.VehicleRepository().Get(ctx, r.VehicleID())
	if err != nil {
		return adjustment.Result{}, err
	}

	stops := r.Stops()
	waypoints := make([]kernel.GeoPoint, len(stops))
	serviceTotal := time.Duration(0)
	for i, s := range stops {
		waypoints[i] = s.Location()
		serviceTotal += s.ServiceDuration()
	}

	basePlan, err := h.planner.Plan(ctx, ports.PlanRequest{
		Origin:       v.StartLocation(),
		Destination:  v.EndLocation(),
		Waypoints:    waypoints,
		TrafficAware: true,
		KeepOrder:    true,
	})
	if err != nil || basePlan.Estimated || len(basePlan.Legs) < len(stops) {
		return adjustment.Failure(req.ID(),
			"traffic data unavailable for route %s", r.ID()), nil
	}

	refreshed := basePlan.Duration + serviceTotal
	degraded := float64(refreshed) > float64(r.Duration())*h.degradationFactor

	adopted := basePlan
	message := "traffic refresh within tolerance"
	if degraded {
		message = "traffic degradation above threshold, current sequence kept"

		optPlan, optErr := h.planner.Plan(ctx, ports.PlanRequest{
			Origin:       v.StartLocation(),
			Destination:  v.EndLocation(),
			Waypoints:    waypoints,
			TrafficAware: true,
		})
		if optErr == nil && !optPlan.Estimated &&
			len(optPlan.Legs) >= len(stops) &&
			optPlan.Duration < basePlan.Duration &&
			len(optPlan.WaypointOrder) == len(stops) {
			if reorderErr := r.Reorder(optPlan.WaypointOrder); reorderErr == nil {
				adopted = optPlan
				message = "route re-optimized under traffic"
			}
		}
	}

	if err = applyPlanTiming(r, v, adopted); err != nil {
		return adjustment.Result{}, err
	}

	if err = routeRepo.Update(ctx, r); err != nil {
		return adjustment.Result{}, err
	}
	if err = uow.Commit(ctx); err != nil {
		return adjustment.Result{}, err
	}

	result := adjustment.Result{
		RequestID:       req.ID(),
		Success:         true,
		AffectedRouteID: []kernel.UUID{r.ID()},
		Changes: []adjustment.Change{
			{Kind: adjustment.TimingUpdated, RouteID: r.ID()},
		},
		NewTotals: []adjustment.RouteTotals{totalsOf(r)},
		Message:   message,
	}

	h.publish(ctx, r.ID(), result)
	return result, nil
}

// handleCancellation removes the order's stop from its route and returns
// the order to Pending. The order's route is resolved in a read-only pass,
// then re-verified under that route's lock; selection runs again if the
// order moved in between.
func (h *ApplyAdjustmentCommandHandler) handleCancellation(
	ctx context.Context,
	req adjustment.Request,
) (adjustment.Result, error) {
	for attempt := 0; attempt < maxRouteResolveAttempts; attempt++ {
		routeID, resolved, done, err := h.resolveAssignedRoute(ctx, req)
		if done || err != nil {
			return resolved, err
		}

		result, stale, err := h.removeCancelledStop(ctx, req, routeID)
		if err != nil || !stale {
			return result, err
		}
	}
	return adjustment.Failure(req.ID(),
		"order %s kept changing routes, cancellation not applied", req.OrderID()), nil
}

// resolveAssignedRoute reads the route the order is currently assigned to.
// done reports that resolution settled the outcome already.
func (h *ApplyAdjustmentCommandHandler) resolveAssignedRoute(
	ctx context.Context,
	req adjustment.Request,
) (kernel.UUID, adjustment.Result, bool, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return kernel.UUID{}, adjustment.Result{}, false, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, err := uow.OrderRepository().Get(ctx, *req.OrderID())
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			return kernel.UUID{}, adjustment.Failure(req.ID(),
				"order %s not found", req.OrderID()), true, nil
		}
		return kernel.UUID{}, adjustment.Result{}, false, err
	}
	if o.Route() == nil {
		return kernel.UUID{}, adjustment.Failure(req.ID(),
			"order %s is not assigned to any route", o.ID()), true, nil
	}
	return *o.Route(), adjustment.Result{}, false, nil
}

// removeCancelledStop removes the order's stop inside one transaction,
// holding the route's lock throughout. stale reports that the order is no
// longer on the locked route and resolution should run again.
func (h *ApplyAdjustmentCommandHandler) removeCancelledStop(
	ctx context.Context,
	req adjustment.Request,
	routeID kernel.UUID,
) (adjustment.Result, bool, error) {
	unlock := h.locks.acquire(routeID)
	defer unlock()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return adjustment.Result{}, false, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	routeRepo := uow.RouteRepository()

	o, err := orderRepo.Get(ctx, *req.OrderID())
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			return adjustment.Failure(req.ID(),
				"order %s not found", req.OrderID()), false, nil
		}
		return adjustment.Result{}, false, err
	}
	if o.Route() == nil {
		return adjustment.Failure(req.ID(),
			"order %s is not assigned to any route", o.ID()), false, nil
	}
	if !o.Route().IsEqual(routeID) {
		return adjustment.Result{}, true, nil
	}

	r, err := routeRepo.Get(ctx, routeID)
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			return adjustment.Failure(req.ID(), "route %s not found", o.Route()), false, nil
		}
		return adjustment.Result{}, false, err
	}

	removed, err := r.RemoveStop(o.ID())
	if err != nil {
		return adjustment.Failure(req.ID(),
			"cannot remove order %s from route %s: %v", o.ID(), r.ID(), err), false, nil
	}

	if err = o.Unassign(); err != nil {
		return adjustment.Failure(req.ID(),
			"order %s cannot be unassigned: %v", o.ID(), err), false, nil
	}

	v, err := uow.VehicleRepository().Get(ctx, r.VehicleID())
	if err != nil {
		return adjustment.Result{}, false, err
	}
	if err = refreshTiming(r, v); err != nil {
		return adjustment.Result{}, false, err
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return adjustment.Result{}, false, err
	}
	if err = routeRepo.Update(ctx, r); err != nil {
		return adjustment.Result{}, false, err
	}
	if err = uow.Commit(ctx); err != nil {
		return adjustment.Result{}, false, err
	}

	orderID := o.ID()
	result := adjustment.Result{
		RequestID:       req.ID(),
		Success:         true,
		AffectedRouteID: []kernel.UUID{r.ID()},
		Changes: []adjustment.Change{
			{Kind: adjustment.StopRemoved, RouteID: r.ID(), OrderID: &orderID, Position: removed.Sequence()},
			{Kind: adjustment.TimingUpdated, RouteID: r.ID()},
		},
		NewTotals: []adjustment.RouteTotals{totalsOf(r)},
		Message:   "order cancelled and removed from route",
	}

	h.publish(ctx, r.ID(), result)
	return result, false, nil
}

// publish notifies downstream consumers of the applied changes. Best
// effort: a publish failure is logged and never fails the adjustment.
func (h *ApplyAdjustmentCommandHandler) publish(
	ctx context.Context,
	routeID kernel.UUID,
	result adjustment.Result,
) {
	if h.publisher == nil {
		return
	}

	changes := make([]string, 0, len(result.Changes))
	for _, c := range result.Changes {
		changes = append(changes, string(c.Kind))
	}

	err := h.publisher.PublishRouteChanged(ctx, ports.RouteChangedEvent{
		RouteID:    routeID,
		Changes:    changes,
		Message:    result.Message,
		OccurredAt: time.Now(),
	})
	if err != nil {
		h.logger.Warn("route change event not published",
			"route_id", routeID.String(),
			"error", err,
		)
	}
}

// refreshTiming recomputes per-stop ETAs and route totals from straight-line
// leg estimates after a stop set mutation. The provider is deliberately not
// consulted here: adjustments must complete even when routing is down, and
// the next traffic refresh restores provider-grade timing.
func refreshTiming(r *route.Route, v *vehicle.Vehicle) error {
	stops := r.Stops()

	etas := make([]time.Time, len(stops))
	eta := v.WorkWindow().From()
	distanceKm := 0.0
	travel := time.Duration(0)
	serviceTotal := time.Duration(0)

	prev := v.StartLocation()
	for i, s := range stops {
		legKm := prev.DistanceKm(s.Location())
		legDuration := time.Duration(legKm / services.FallbackSpeedKmh * float64(time.Hour))

		distanceKm += legKm
		travel += legDuration
		eta = eta.Add(legDuration)
		etas[i] = eta

		eta = eta.Add(s.ServiceDuration())
		serviceTotal += s.ServiceDuration()
		prev = s.Location()
	}

	returnKm := prev.DistanceKm(v.EndLocation())
	distanceKm += returnKm
	travel += time.Duration(returnKm / services.FallbackSpeedKmh * float64(time.Hour))

	return r.UpdateTiming(etas, distanceKm, travel+serviceTotal)
}

// applyPlanTiming maps a provider plan's legs onto the route's stops in
// sequence order and updates the totals.
func applyPlanTiming(r *route.Route, v *vehicle.Vehicle, plan ports.Plan) error {
	stops := r.Stops()

	etas := make([]time.Time, len(stops))
	eta := v.WorkWindow().From()
	serviceTotal := time.Duration(0)
	for i, s := range stops {
		eta = eta.Add(plan.Legs[i].Duration)
		etas[i] = eta
		eta = eta.Add(s.ServiceDuration())
		serviceTotal += s.ServiceDuration()
	}

	return r.UpdateTiming(etas, float64(plan.DistanceMeters)/1000, plan.Duration+serviceTotal)
}

func totalsOf(r *route.Route) adjustment.RouteTotals {
	return adjustment.RouteTotals{
		RouteID:    r.ID(),
		DistanceKm: r.DistanceKm(),
		Duration:   r.Duration(),
		StopCount:  len(r.Stops()),
	}
}
