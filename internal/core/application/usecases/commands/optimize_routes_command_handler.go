package commands

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/route"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/pkg/metrics"
)

// defaultBuildWorkers bounds the number of routes built concurrently. Each
// build may hit the routing provider, so the bound also caps provider
// pressure during an optimization run.
const defaultBuildWorkers = 4

// OptimizeRoutesResult summarizes one optimization run. Unassigned orders
// are a partial outcome, not an error: callers decide whether to add
// vehicles or carry the overflow to the next day.
type OptimizeRoutesResult struct {
	RouteIDs      []kernel.UUID
	AssignedCount int
	UnassignedIDs []kernel.UUID
	Warnings      []string
}

// OptimizeRoutesCommandHandler orchestrates the daily optimization pipeline:
// pending orders are clustered geographically, clusters are distributed over
// the fleet, and one route per loaded vehicle is built concurrently. All
// resulting routes and order assignments are persisted in one transaction.
type OptimizeRoutesCommandHandler struct {
	uowFactory UoWFactory
	clusterer  services.GeoClusterer
	assigner   services.ClusterAssigner
	builder    services.RouteBuilder
	workers    int
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// NewOptimizeRoutesCommandHandler creates the optimization handler.
// Non-positive workers fall back to defaultBuildWorkers.
func NewOptimizeRoutesCommandHandler(
	uowFactory UoWFactory,
	clusterer services.GeoClusterer,
	assigner services.ClusterAssigner,
	builder services.RouteBuilder,
	workers int,
	m *metrics.Metrics,
	logger *slog.Logger,
) OptimizeRoutesCommandHandler {
	if workers <= 0 {
		workers = defaultBuildWorkers
	}
	if logger == nil {
		logger = slog.Default()
	}
	return OptimizeRoutesCommandHandler{
		uowFactory: uowFactory,
		clusterer:  clusterer,
		assigner:   assigner,
		builder:    builder,
		workers:    workers,
		metrics:    m,
		logger:     logger.With("component", "optimize_routes"),
	}
}

// Handle runs one optimization for the command's date.
//
// Reads and route building happen outside the transaction: building routes
// calls the routing provider and can take seconds, and nothing is mutated
// until every route exists. Persistence of routes and order assignments
// then runs in a single transaction so a crash never leaves orders pointing
// at half-written routes.
func (h *OptimizeRoutesCommandHandler) Handle(
	ctx context.Context,
	cmd OptimizeRoutesCommand,
) (OptimizeRoutesResult, error) {
	if err := cmd.Validate(); err != nil {
		return OptimizeRoutesResult{}, err
	}

	uow := h.uowFactory.Create()

	orders, err := uow.OrderRepository().GetAllPendingForDate(ctx, cmd.Date())
	if err != nil {
		return OptimizeRoutesResult{}, err
	}
	if len(orders) == 0 {
		h.logger.Info("no pending orders for date", "date", cmd.Date().Format("2006-01-02"))
		return OptimizeRoutesResult{}, nil
	}

	vehicles, err := uow.VehicleRepository().GetAll(ctx)
	if err != nil {
		return OptimizeRoutesResult{}, err
	}

	clusters, err := h.clusterer.Cluster(orders)
	if err != nil {
		return OptimizeRoutesResult{}, err
	}

	plan, err := h.assigner.Assign(clusters, vehicles)
	if err != nil {
		return OptimizeRoutesResult{}, err
	}

	routes, err := h.buildRoutes(ctx, plan, cmd)
	if err != nil {
		return OptimizeRoutesResult{}, err
	}

	if err = h.persist(ctx, uow, plan, routes); err != nil {
		return OptimizeRoutesResult{}, err
	}

	result := OptimizeRoutesResult{
		AssignedCount: len(orders) - plan.UnassignedCount(),
	}
	for _, r := range routes {
		result.RouteIDs = append(result.RouteIDs, r.ID())
		result.Warnings = append(result.Warnings, r.Warnings()...)
	}
	for _, o := range plan.UnassignedOrders {
		result.UnassignedIDs = append(result.UnassignedIDs, o.ID())
	}

	h.observe(len(clusters), routes, result)

	h.logger.Info("optimization run complete",
		"date", cmd.Date().Format("2006-01-02"),
		"orders", len(orders),
		"clusters", len(clusters),
		"routes", len(routes),
		"unassigned", plan.UnassignedCount(),
	)

	return result, nil
}

// buildRoutes builds one route per assignment with a bounded worker pool.
// Results keep the assignment order so the run stays deterministic apart
// from provider variance.
func (h *OptimizeRoutesCommandHandler) buildRoutes(
	ctx context.Context,
	plan services.AssignmentPlan,
	cmd OptimizeRoutesCommand,
) ([]*route.Route, error) {
	routes := make([]*route.Route, len(plan.Assignments))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.workers)

	for i, assignment := range plan.Assignments {
		g.Go(func() error {
			built, buildErr := h.builder.Build(gctx, assignment.Vehicle, assignment.Orders, cmd.Date())
			if buildErr != nil {
				return buildErr
			}
			routes[i] = built
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return routes, nil
}

func (h *OptimizeRoutesCommandHandler) persist(
	ctx context.Context,
	uow UoW,
	plan services.AssignmentPlan,
	routes []*route.Route,
) error {
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	routeRepo := uow.RouteRepository()
	orderRepo := uow.OrderRepository()

	for i, r := range routes {
		if err := routeRepo.Add(ctx, r); err != nil {
			return err
		}
		for _, o := range plan.Assignments[i].Orders {
			if err := o.Assign(r.ID()); err != nil {
				return err
			}
			if err := orderRepo.Update(ctx, o); err != nil {
				return err
			}
		}
	}

	return uow.Commit(ctx)
}

func (h *OptimizeRoutesCommandHandler) observe(
	clusters int,
	routes []*route.Route,
	result OptimizeRoutesResult,
) {
	if h.metrics == nil {
		return
	}

	h.metrics.ClustersBuilt.Add(float64(clusters))
	h.metrics.OrdersAssigned.Add(float64(result.AssignedCount))
	h.metrics.OrdersUnassigned.Add(float64(len(result.UnassignedIDs)))
	for _, r := range routes {
		mode := "optimized"
		if r.Score() == route.ScoreFallback {
			mode = "fallback"
		}
		h.metrics.RoutesBuilt.WithLabelValues(mode).Inc()
	}
}
