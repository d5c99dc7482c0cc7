package services_test

import (
	"fmt"
	"testing"

	"dispatch/internal/core/domain/model/cluster"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/vehicle"
	"dispatch/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func demandOrder(t *testing.T, area string, address string, demand order.Demand, urgent bool) *order.Order {
	t.Helper()
	loc, err := kernel.NewGeoPoint(3.10, 101.60)
	require.NoError(t, err)
	o, err := order.NewOrder(kernel.NewUUID(), area, address, loc, demand, urgent, clusterTestWindow(t))
	require.NoError(t, err)
	return o
}

func vehicleWithCapacity(t *testing.T, name string, maxWeightKg float64, maxUnits map[order.CylinderCategory]int) *vehicle.Vehicle {
	t.Helper()
	loc, err := kernel.NewGeoPoint(3.0, 101.5)
	require.NoError(t, err)
	c, err := vehicle.NewCapacity(maxWeightKg, maxUnits)
	require.NoError(t, err)
	v, err := vehicle.NewVehicle(kernel.NewUUID(), name, loc, loc, clusterTestWindow(t), nil, c)
	require.NoError(t, err)
	return v
}

func mustCluster(t *testing.T, area string, orders []*order.Order) *cluster.Cluster {
	t.Helper()
	c, err := cluster.NewCluster(area, cluster.CellKey{}, orders)
	require.NoError(t, err)
	return c
}

func TestClusterAssignerAssign(t *testing.T) {
	assigner := services.NewClusterAssigner()

	t.Run("twelve orders across two areas fit two drivers with none left over", func(t *testing.T) {
		var north, south []*order.Order
		for i := 0; i < 6; i++ {
			north = append(north, demandOrder(t, "north", fmt.Sprintf("%d Jalan Utara", i),
				order.Demand{order.Cylinder12kg: 1}, false))
			south = append(south, demandOrder(t, "south", fmt.Sprintf("%d Jalan Selatan", i),
				order.Demand{order.Cylinder12kg: 1}, false))
		}
		clusters := []*cluster.Cluster{
			mustCluster(t, "north", north),
			mustCluster(t, "south", south),
		}
		vehicles := []*vehicle.Vehicle{
			vehicleWithCapacity(t, "Aina", 600, map[order.CylinderCategory]int{order.Cylinder12kg: 8}),
			vehicleWithCapacity(t, "Badrul", 600, map[order.CylinderCategory]int{order.Cylinder12kg: 8}),
		}

		plan, err := assigner.Assign(clusters, vehicles)

		require.NoError(t, err)
		assert.Len(t, plan.Assignments, 2)
		assert.Equal(t, 0, plan.UnassignedCount())
		total := 0
		for _, a := range plan.Assignments {
			total += len(a.Orders)
		}
		assert.Equal(t, 12, total)
	})

	t.Run("six orders against capacity for five leaves exactly one unassigned", func(t *testing.T) {
		var orders []*order.Order
		for i := 0; i < 6; i++ {
			orders = append(orders, demandOrder(t, "north", fmt.Sprintf("%d Jalan Utara", i),
				order.Demand{order.Cylinder12kg: 1}, false))
		}
		clusters := []*cluster.Cluster{mustCluster(t, "north", orders)}
		vehicles := []*vehicle.Vehicle{
			vehicleWithCapacity(t, "Aina", 600, map[order.CylinderCategory]int{order.Cylinder12kg: 5}),
		}

		plan, err := assigner.Assign(clusters, vehicles)

		require.NoError(t, err)
		require.Len(t, plan.Assignments, 1)
		assert.Len(t, plan.Assignments[0].Orders, 5)
		assert.Equal(t, 1, plan.UnassignedCount())
	})

	t.Run("urgent clusters claim capacity before routine ones", func(t *testing.T) {
		routine := mustCluster(t, "north", []*order.Order{
			demandOrder(t, "north", "1 Jalan Utara", order.Demand{order.Cylinder50kg: 4}, false),
		})
		urgent := mustCluster(t, "south", []*order.Order{
			demandOrder(t, "south", "2 Jalan Selatan", order.Demand{order.Cylinder50kg: 4}, true),
		})
		// Room for only one of the two clusters.
		vehicles := []*vehicle.Vehicle{
			vehicleWithCapacity(t, "Aina", 400, map[order.CylinderCategory]int{order.Cylinder50kg: 4}),
		}

		// Routine cluster comes first in input order but must lose anyway.
		plan, err := assigner.Assign([]*cluster.Cluster{routine, urgent}, vehicles)

		require.NoError(t, err)
		require.Len(t, plan.Assignments, 1)
		require.Len(t, plan.Assignments[0].Orders, 1)
		assert.True(t, plan.Assignments[0].Orders[0].IsUrgent())
		assert.Equal(t, 1, plan.UnassignedCount())
	})

	t.Run("deterministic for identical inputs", func(t *testing.T) {
		clusters := []*cluster.Cluster{
			mustCluster(t, "north", []*order.Order{
				demandOrder(t, "north", "1 Jalan Utara", order.Demand{order.Cylinder12kg: 2}, false),
			}),
			mustCluster(t, "south", []*order.Order{
				demandOrder(t, "south", "2 Jalan Selatan", order.Demand{order.Cylinder12kg: 3}, true),
			}),
		}
		vehicles := []*vehicle.Vehicle{
			vehicleWithCapacity(t, "Aina", 600, map[order.CylinderCategory]int{order.Cylinder12kg: 10}),
			vehicleWithCapacity(t, "Badrul", 600, map[order.CylinderCategory]int{order.Cylinder12kg: 10}),
		}

		first, err := assigner.Assign(clusters, vehicles)
		require.NoError(t, err)
		second, err := assigner.Assign(clusters, vehicles)
		require.NoError(t, err)

		require.Equal(t, len(first.Assignments), len(second.Assignments))
		for i := range first.Assignments {
			assert.True(t, first.Assignments[i].Vehicle.ID().IsEqual(second.Assignments[i].Vehicle.ID()))
			require.Equal(t, len(first.Assignments[i].Orders), len(second.Assignments[i].Orders))
			for j := range first.Assignments[i].Orders {
				assert.True(t, first.Assignments[i].Orders[j].IsEqual(second.Assignments[i].Orders[j]))
			}
		}
	})

	t.Run("no vehicles leaves everything unassigned", func(t *testing.T) {
		clusters := []*cluster.Cluster{
			mustCluster(t, "north", []*order.Order{
				demandOrder(t, "north", "1 Jalan Utara", order.Demand{order.Cylinder12kg: 1}, false),
			}),
		}

		plan, err := assigner.Assign(clusters, nil)

		require.NoError(t, err)
		assert.Empty(t, plan.Assignments)
		assert.Equal(t, 1, plan.UnassignedCount())
	})
}
