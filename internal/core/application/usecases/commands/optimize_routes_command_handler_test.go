package commands_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/vehicle"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/metrics"
)

var optimizeDate = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

func deliveryWindow(t *testing.T) kernel.TimeWindow {
	t.Helper()
	w, err := kernel.NewTimeWindow(
		optimizeDate.Add(9*time.Hour), optimizeDate.Add(17*time.Hour))
	require.NoError(t, err)
	return w
}

func pendingOrder(t *testing.T, area, address string, lat, lng float64) *order.Order {
	t.Helper()
	loc, err := kernel.NewGeoPoint(lat, lng)
	require.NoError(t, err)
	o, err := order.NewOrder(kernel.NewUUID(), area, address, loc,
		order.Demand{order.Cylinder12kg: 1}, false, deliveryWindow(t))
	require.NoError(t, err)
	return o
}

func fleetVehicle(t *testing.T, driver string, maxWeightKg float64, maxUnits12 int) *vehicle.Vehicle {
	t.Helper()
	depot, err := kernel.NewGeoPoint(3.00, 101.50)
	require.NoError(t, err)
	capacity, err := vehicle.NewCapacity(maxWeightKg,
		map[order.CylinderCategory]int{order.Cylinder12kg: maxUnits12})
	require.NoError(t, err)
	v, err := vehicle.NewVehicle(kernel.NewUUID(), driver, depot, depot,
		deliveryWindow(t), nil, capacity)
	require.NoError(t, err)
	return v
}

// failingPlanner forces the route builder onto its deterministic fallback
// path so test outcomes do not depend on provider behavior.
var failingPlanner = plannerFunc(func(context.Context, ports.PlanRequest) (ports.Plan, error) {
	return ports.Plan{}, errors.New("provider down")
})

func newOptimizeHandler(store *fakeStore) commands.OptimizeRoutesCommandHandler {
	return commands.NewOptimizeRoutesCommandHandler(
		&fakeUoWFactory{store: store},
		services.NewGeoClusterer(services.DefaultGridEdgeKm, nil),
		services.NewClusterAssigner(),
		services.NewRouteBuilder(failingPlanner, nil),
		2,
		metrics.New(),
		nil,
	)
}

func TestOptimizeRoutesTwoAreasTwoDrivers(t *testing.T) {
	store := &fakeStore{}
	// Successive stops sit roughly 2.2 km apart, so each area spreads over
	// several grid cells and one driver serves multiple clusters.
	for i := 0; i < 6; i++ {
		store.addOrder(pendingOrder(t, "Subang",
			fmt.Sprintf("%d Jalan Kemajuan", i+1), 3.05+float64(i)*0.02, 101.58))
		store.addOrder(pendingOrder(t, "Puchong",
			fmt.Sprintf("%d Jalan Puteri", i+1), 3.02+float64(i)*0.02, 101.62))
	}
	// Each vehicle holds exactly one area's worth of cylinders.
	store.addVehicle(fleetVehicle(t, "Arif", 200, 6))
	store.addVehicle(fleetVehicle(t, "Bala", 200, 6))

	handler := newOptimizeHandler(store)
	cmd, err := commands.NewOptimizeRoutesCommand(optimizeDate)
	require.NoError(t, err)

	result, err := handler.Handle(context.Background(), cmd)
	require.NoError(t, err)

	assert.Len(t, result.RouteIDs, 2)
	assert.Equal(t, 12, result.AssignedCount)
	assert.Empty(t, result.UnassignedIDs)

	require.Len(t, store.routes, 2)
	totalStops := 0
	for _, r := range store.routes {
		totalStops += len(r.Stops())
	}
	assert.Equal(t, 12, totalStops)

	for _, o := range store.orders {
		assert.Equal(t, order.Assigned, o.Status())
		assert.NotNil(t, o.Route())
	}
	assert.Equal(t, 1, store.commits)
}

func TestOptimizeRoutesOverflowLeavesOneUnassigned(t *testing.T) {
	store := &fakeStore{}
	for i := 0; i < 6; i++ {
		store.addOrder(pendingOrder(t, "Subang",
			fmt.Sprintf("%d Jalan Kemajuan", i+1), 3.0501, 101.5801))
	}
	store.addVehicle(fleetVehicle(t, "Arif", 1000, 5))

	handler := newOptimizeHandler(store)
	cmd, err := commands.NewOptimizeRoutesCommand(optimizeDate)
	require.NoError(t, err)

	result, err := handler.Handle(context.Background(), cmd)
	require.NoError(t, err)

	assert.Equal(t, 5, result.AssignedCount)
	require.Len(t, result.UnassignedIDs, 1)
	require.Len(t, store.routes, 1)
	assert.Len(t, store.routes[0].Stops(), 5)

	pending := 0
	for _, o := range store.orders {
		if o.Status() == order.Pending {
			pending++
			assert.True(t, o.ID().IsEqual(result.UnassignedIDs[0]))
		}
	}
	assert.Equal(t, 1, pending)
}

func TestOptimizeRoutesNoPendingOrders(t *testing.T) {
	store := &fakeStore{}
	store.addVehicle(fleetVehicle(t, "Arif", 200, 6))

	handler := newOptimizeHandler(store)
	cmd, err := commands.NewOptimizeRoutesCommand(optimizeDate)
	require.NoError(t, err)

	result, err := handler.Handle(context.Background(), cmd)
	require.NoError(t, err)

	assert.Empty(t, result.RouteIDs)
	assert.Zero(t, result.AssignedCount)
	assert.Empty(t, store.routes)
}

func TestOptimizeRoutesFallbackRoutesCarryWarning(t *testing.T) {
	store := &fakeStore{}
	store.addOrder(pendingOrder(t, "Subang", "1 Jalan Kemajuan", 3.05, 101.58))
	store.addVehicle(fleetVehicle(t, "Arif", 200, 6))

	handler := newOptimizeHandler(store)
	cmd, err := commands.NewOptimizeRoutesCommand(optimizeDate)
	require.NoError(t, err)

	result, err := handler.Handle(context.Background(), cmd)
	require.NoError(t, err)

	assert.Contains(t, result.Warnings, services.FallbackWarning)
}
