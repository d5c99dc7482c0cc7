package vehicle_test

import (
	"testing"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/vehicle"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder(t *testing.T, demand order.Demand) *order.Order {
	t.Helper()

	loc, err := kernel.NewGeoPoint(3.14, 101.68)
	require.NoError(t, err)
	window, err := kernel.NewTimeWindow(
		time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 2, 18, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)

	o, err := order.NewOrder(kernel.NewUUID(), "north", "1 Jalan Ampang", loc, demand, false, window)
	require.NoError(t, err)
	return o
}

func standardCapacity(t *testing.T) vehicle.Capacity {
	t.Helper()
	c, err := vehicle.NewCapacity(600, map[order.CylinderCategory]int{
		order.Cylinder9kg:  10,
		order.Cylinder12kg: 10,
		order.Cylinder14kg: 10,
		order.Cylinder50kg: 6,
	})
	require.NoError(t, err)
	return c
}

func TestCapacityCanFit(t *testing.T) {
	t.Run("load within limits fits", func(t *testing.T) {
		c := standardCapacity(t)
		orders := []*order.Order{
			newTestOrder(t, order.Demand{order.Cylinder50kg: 2}),
			newTestOrder(t, order.Demand{order.Cylinder12kg: 3}),
		}

		assert.True(t, c.CanFit(orders))
	})

	t.Run("weight overflow is rejected", func(t *testing.T) {
		c, err := vehicle.NewCapacity(100, map[order.CylinderCategory]int{order.Cylinder50kg: 6})
		require.NoError(t, err)

		// Two 50kg cylinders weigh 150kg laden.
		orders := []*order.Order{newTestOrder(t, order.Demand{order.Cylinder50kg: 2})}
		assert.False(t, c.CanFit(orders))
	})

	t.Run("per-category overflow is rejected even under the weight cap", func(t *testing.T) {
		c, err := vehicle.NewCapacity(10000, map[order.CylinderCategory]int{order.Cylinder50kg: 1})
		require.NoError(t, err)

		orders := []*order.Order{newTestOrder(t, order.Demand{order.Cylinder50kg: 2})}
		assert.False(t, c.CanFit(orders))
	})

	t.Run("category missing from the table cannot be carried", func(t *testing.T) {
		c, err := vehicle.NewCapacity(10000, map[order.CylinderCategory]int{order.Cylinder50kg: 6})
		require.NoError(t, err)

		orders := []*order.Order{newTestOrder(t, order.Demand{order.Cylinder9kg: 1})}
		assert.False(t, c.CanFit(orders))
	})

	t.Run("monotonic under subset removal", func(t *testing.T) {
		c := standardCapacity(t)
		orders := []*order.Order{
			newTestOrder(t, order.Demand{order.Cylinder50kg: 3}),
			newTestOrder(t, order.Demand{order.Cylinder14kg: 4}),
			newTestOrder(t, order.Demand{order.Cylinder9kg: 5}),
		}
		require.True(t, c.CanFit(orders))

		// Every subset of a fitting set must fit.
		for drop := range orders {
			subset := make([]*order.Order, 0, len(orders)-1)
			for i, o := range orders {
				if i != drop {
					subset = append(subset, o)
				}
			}
			assert.True(t, c.CanFit(subset))
		}
		assert.True(t, c.CanFit(nil))
	})
}

func TestCapacityReduce(t *testing.T) {
	t.Run("reduce is pure and subtracts the load", func(t *testing.T) {
		c := standardCapacity(t)
		orders := []*order.Order{newTestOrder(t, order.Demand{order.Cylinder50kg: 2})}

		reduced, err := c.Reduce(orders)
		require.NoError(t, err)

		assert.InDelta(t, 600-150, reduced.MaxWeightKg(), 1e-9)
		assert.Equal(t, 4, reduced.MaxUnits()[order.Cylinder50kg])
		// Receiver unchanged.
		assert.InDelta(t, 600, c.MaxWeightKg(), 1e-9)
		assert.Equal(t, 6, c.MaxUnits()[order.Cylinder50kg])
	})

	t.Run("reduce fails when load does not fit", func(t *testing.T) {
		c, err := vehicle.NewCapacity(100, map[order.CylinderCategory]int{order.Cylinder50kg: 6})
		require.NoError(t, err)

		_, err = c.Reduce([]*order.Order{newTestOrder(t, order.Demand{order.Cylinder50kg: 2})})
		require.Error(t, err)
	})

	t.Run("repeated reduction tracks remaining capacity", func(t *testing.T) {
		c := standardCapacity(t)

		first := []*order.Order{newTestOrder(t, order.Demand{order.Cylinder50kg: 4})}
		reduced, err := c.Reduce(first)
		require.NoError(t, err)

		second := []*order.Order{newTestOrder(t, order.Demand{order.Cylinder50kg: 3})}
		assert.False(t, reduced.CanFit(second))
		assert.True(t, reduced.CanFit([]*order.Order{newTestOrder(t, order.Demand{order.Cylinder50kg: 2})}))
	})
}

func TestTotalsOf(t *testing.T) {
	orders := []*order.Order{
		newTestOrder(t, order.Demand{order.Cylinder50kg: 1, order.Cylinder12kg: 2}),
		newTestOrder(t, order.Demand{order.Cylinder12kg: 1}),
	}

	load := vehicle.TotalsOf(orders)

	assert.InDelta(t, 75.0+3*25.0, load.WeightKg, 1e-9)
	assert.Equal(t, 3, load.Units[order.Cylinder12kg])
	assert.Equal(t, 1, load.Units[order.Cylinder50kg])
	assert.Equal(t, 4, load.TotalUnits())
}

func TestNewVehicle(t *testing.T) {
	start, err := kernel.NewGeoPoint(3.0, 101.5)
	require.NoError(t, err)
	work, err := kernel.NewTimeWindow(
		time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 2, 17, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)

	t.Run("valid vehicle", func(t *testing.T) {
		v, err := vehicle.NewVehicle(kernel.NewUUID(), "Ravi", start, start, work, nil, standardCapacity(t))

		require.NoError(t, err)
		require.NoError(t, v.Validate())
		assert.Equal(t, "Ravi", v.DriverName())
		assert.Nil(t, v.BreakWindow())
	})

	t.Run("empty driver name is rejected", func(t *testing.T) {
		_, err := vehicle.NewVehicle(kernel.NewUUID(), "", start, start, work, nil, standardCapacity(t))
		require.Error(t, err)
	})

	t.Run("zero value fails validation", func(t *testing.T) {
		var v vehicle.Vehicle
		require.ErrorIs(t, v.Validate(), vehicle.ErrVehicleIsNotConstructed)
	})
}
