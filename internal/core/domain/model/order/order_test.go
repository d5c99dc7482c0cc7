package order_test

import (
	"testing"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWindow(t *testing.T) kernel.TimeWindow {
	t.Helper()
	w, err := kernel.NewTimeWindow(
		time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 2, 18, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return w
}

func testLocation(t *testing.T) kernel.GeoPoint {
	t.Helper()
	p, err := kernel.NewGeoPoint(3.1390, 101.6869)
	require.NoError(t, err)
	return p
}

func TestNewOrder(t *testing.T) {
	t.Run("valid order starts pending and unassigned", func(t *testing.T) {
		o, err := order.NewOrder(kernel.NewUUID(), "north", "12 Jalan Besar",
			testLocation(t), order.Demand{order.Cylinder50kg: 2}, false, testWindow(t))

		require.NoError(t, err)
		assert.Equal(t, order.Pending, o.Status())
		assert.Nil(t, o.Route())
		assert.False(t, o.IsUrgent())
		require.NoError(t, o.Validate())
	})

	t.Run("empty area is rejected", func(t *testing.T) {
		_, err := order.NewOrder(kernel.NewUUID(), "", "12 Jalan Besar",
			testLocation(t), order.Demand{order.Cylinder50kg: 2}, false, testWindow(t))
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("unknown cylinder category is rejected", func(t *testing.T) {
		_, err := order.NewOrder(kernel.NewUUID(), "north", "12 Jalan Besar",
			testLocation(t), order.Demand{"33kg": 1}, false, testWindow(t))
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("non-positive demand count is rejected", func(t *testing.T) {
		_, err := order.NewOrder(kernel.NewUUID(), "north", "12 Jalan Besar",
			testLocation(t), order.Demand{order.Cylinder12kg: 0}, false, testWindow(t))
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("zero value fails validation", func(t *testing.T) {
		var o order.Order
		require.ErrorIs(t, o.Validate(), order.ErrOrderIsNotConstructed)
	})
}

func TestOrderLifecycle(t *testing.T) {
	newOrder := func(t *testing.T) *order.Order {
		t.Helper()
		o, err := order.NewOrder(kernel.NewUUID(), "north", "12 Jalan Besar",
			testLocation(t), order.Demand{order.Cylinder14kg: 1}, true, testWindow(t))
		require.NoError(t, err)
		return o
	}

	t.Run("assign links route and changes status", func(t *testing.T) {
		o := newOrder(t)
		routeID := kernel.NewUUID()

		require.NoError(t, o.Assign(routeID))
		assert.Equal(t, order.Assigned, o.Status())
		require.NotNil(t, o.Route())
		assert.True(t, o.Route().IsEqual(routeID))
	})

	t.Run("reassignment replaces the route link", func(t *testing.T) {
		o := newOrder(t)
		first := kernel.NewUUID()
		second := kernel.NewUUID()

		require.NoError(t, o.Assign(first))
		require.NoError(t, o.Assign(second))
		assert.True(t, o.Route().IsEqual(second))
	})

	t.Run("unassign returns order to pending", func(t *testing.T) {
		o := newOrder(t)
		require.NoError(t, o.Assign(kernel.NewUUID()))

		require.NoError(t, o.Unassign())
		assert.Equal(t, order.Pending, o.Status())
		assert.Nil(t, o.Route())
	})

	t.Run("complete requires assignment first", func(t *testing.T) {
		o := newOrder(t)
		require.ErrorIs(t, o.Complete(), errs.ErrValueIsInvalid)

		require.NoError(t, o.Assign(kernel.NewUUID()))
		require.NoError(t, o.Complete())
		assert.Equal(t, order.Completed, o.Status())
	})

	t.Run("completed order cannot be assigned", func(t *testing.T) {
		o := newOrder(t)
		require.NoError(t, o.Assign(kernel.NewUUID()))
		require.NoError(t, o.Complete())

		require.ErrorIs(t, o.Assign(kernel.NewUUID()), errs.ErrValueIsInvalid)
	})
}

func TestDemand(t *testing.T) {
	t.Run("weight uses the laden table", func(t *testing.T) {
		d := order.Demand{order.Cylinder50kg: 2, order.Cylinder12kg: 1}

		assert.InDelta(t, 2*75.0+25.0, d.WeightKg(), 1e-9)
		assert.Equal(t, 3, d.Units())
	})

	t.Run("clone is independent", func(t *testing.T) {
		d := order.Demand{order.Cylinder9kg: 1}
		c := d.Clone()
		c[order.Cylinder9kg] = 5

		assert.Equal(t, 1, d[order.Cylinder9kg])
	})
}
