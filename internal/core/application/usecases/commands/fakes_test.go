package commands_test

import (
	"context"
	"sync"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/route"
	"dispatch/internal/core/domain/model/vehicle"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// fakeStore is an in-memory aggregate store shared by the fake repositories.
// Slices keep insertion order so handler runs stay deterministic.
type fakeStore struct {
	mu       sync.Mutex
	orders   []*order.Order
	vehicles []*vehicle.Vehicle
	routes   []*route.Route
	commits  int
}

func (s *fakeStore) addOrder(o *order.Order)       { s.orders = append(s.orders, o) }
func (s *fakeStore) addVehicle(v *vehicle.Vehicle) { s.vehicles = append(s.vehicles, v) }
func (s *fakeStore) addRoute(r *route.Route)       { s.routes = append(s.routes, r) }

type fakeUoW struct{ store *fakeStore }

func (u *fakeUoW) Begin(context.Context) error { return nil }
func (u *fakeUoW) Commit(context.Context) error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	u.store.commits++
	return nil
}
func (u *fakeUoW) Rollback(context.Context) error { return nil }

func (u *fakeUoW) OrderRepository() ports.OrderRepository     { return &fakeOrderRepo{store: u.store} }
func (u *fakeUoW) VehicleRepository() ports.VehicleRepository { return &fakeVehicleRepo{store: u.store} }
func (u *fakeUoW) RouteRepository() ports.RouteRepository     { return &fakeRouteRepo{store: u.store} }

type fakeUoWFactory struct{ store *fakeStore }

func (f *fakeUoWFactory) Create() commands.UoW { return &fakeUoW{store: f.store} }

type fakeOrderRepo struct{ store *fakeStore }

func (r *fakeOrderRepo) Add(_ context.Context, o *order.Order) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.orders = append(r.store.orders, o)
	return nil
}

func (r *fakeOrderRepo) Update(_ context.Context, o *order.Order) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for i, existing := range r.store.orders {
		if existing.ID().IsEqual(o.ID()) {
			r.store.orders[i] = o
			return nil
		}
	}
	return errs.NewObjectNotFoundError("orderId", o.ID().String())
}

func (r *fakeOrderRepo) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, o := range r.store.orders {
		if o.ID().IsEqual(id) {
			return o, nil
		}
	}
	return nil, errs.NewObjectNotFoundError("orderId", id.String())
}

func (r *fakeOrderRepo) GetAllPendingForDate(_ context.Context, _ time.Time) ([]*order.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var pending []*order.Order
	for _, o := range r.store.orders {
		if o.Status() == order.Pending {
			pending = append(pending, o)
		}
	}
	return pending, nil
}

type fakeVehicleRepo struct{ store *fakeStore }

func (r *fakeVehicleRepo) Add(_ context.Context, v *vehicle.Vehicle) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.vehicles = append(r.store.vehicles, v)
	return nil
}

func (r *fakeVehicleRepo) Get(_ context.Context, id kernel.UUID) (*vehicle.Vehicle, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, v := range r.store.vehicles {
		if v.ID().IsEqual(id) {
			return v, nil
		}
	}
	return nil, errs.NewObjectNotFoundError("vehicleId", id.String())
}

func (r *fakeVehicleRepo) GetAll(_ context.Context) ([]*vehicle.Vehicle, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return append([]*vehicle.Vehicle(nil), r.store.vehicles...), nil
}

type fakeRouteRepo struct{ store *fakeStore }

// cloneRoute returns an independent copy, the way a database read does.
// Handlers must not observe each other's uncommitted route mutations.
func cloneRoute(r *route.Route) (*route.Route, error) {
	return route.RestoreRoute(r.ID(), r.VehicleID(), r.Date(), r.Stops(),
		r.Capacity(), r.DistanceKm(), r.Duration(), r.Score(), r.Warnings(), r.Status())
}

func (r *fakeRouteRepo) Add(_ context.Context, aggregate *route.Route) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.routes = append(r.store.routes, aggregate)
	return nil
}

func (r *fakeRouteRepo) Update(_ context.Context, aggregate *route.Route) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for i, existing := range r.store.routes {
		if existing.ID().IsEqual(aggregate.ID()) {
			r.store.routes[i] = aggregate
			return nil
		}
	}
	return errs.NewObjectNotFoundError("routeId", aggregate.ID().String())
}

func (r *fakeRouteRepo) Get(_ context.Context, id kernel.UUID) (*route.Route, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.routes {
		if existing.ID().IsEqual(id) {
			return cloneRoute(existing)
		}
	}
	return nil, errs.NewObjectNotFoundError("routeId", id.String())
}

func (r *fakeRouteRepo) GetAllActive(_ context.Context) ([]*route.Route, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var active []*route.Route
	for _, existing := range r.store.routes {
		if existing.Status() == route.Planned || existing.Status() == route.Active {
			snapshot, err := cloneRoute(existing)
			if err != nil {
				return nil, err
			}
			active = append(active, snapshot)
		}
	}
	return active, nil
}

func (r *fakeRouteRepo) GetAllForDate(_ context.Context, _ time.Time) ([]*route.Route, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return append([]*route.Route(nil), r.store.routes...), nil
}

// plannerFunc adapts a function to the RoutePlanner port.
type plannerFunc func(ctx context.Context, req ports.PlanRequest) (ports.Plan, error)

func (f plannerFunc) Plan(ctx context.Context, req ports.PlanRequest) (ports.Plan, error) {
	return f(ctx, req)
}

// publisherStub records published route-change events.
type publisherStub struct {
	mu     sync.Mutex
	events []ports.RouteChangedEvent
}

func (p *publisherStub) PublishRouteChanged(_ context.Context, event ports.RouteChangedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}
