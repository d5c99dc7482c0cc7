package services

import (
	"dispatch/internal/core/domain/model/cluster"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/vehicle"
)

// VehicleAssignment pairs one vehicle with the orders it will serve, in
// assignment order.
type VehicleAssignment struct {
	Vehicle *vehicle.Vehicle
	Orders  []*order.Order
}

// AssignmentPlan is the outcome of one assignment run. Unassigned orders
// are a soft outcome reported to the caller, never an error.
type AssignmentPlan struct {
	Assignments      []VehicleAssignment
	UnassignedOrders []*order.Order
}

// UnassignedCount returns the number of orders no vehicle could absorb.
func (p AssignmentPlan) UnassignedCount() int {
	return len(p.UnassignedOrders)
}

// ClusterAssigner distributes clustered orders over the available vehicles
// using a greedy first-fit strategy. The result is deterministic for
// identical inputs and makes no optimality claim.
//
// Two passes run in cluster input order: first the clusters containing at
// least one urgent order, then the rest. Urgent work therefore claims
// capacity before routine work can exhaust it. Each cluster goes whole to
// the first vehicle whose remaining capacity can absorb it; when no vehicle
// can take the cluster whole, its orders are placed individually so a tight
// fleet still carries as much as it can.
type ClusterAssigner struct{}

// NewClusterAssigner creates a new ClusterAssigner instance.
func NewClusterAssigner() ClusterAssigner {
	return ClusterAssigner{}
}

// Assign produces an AssignmentPlan for the clusters and vehicles. Vehicles
// keep their input order; remaining capacities are tracked with the pure
// Reduce operation so the inputs are never mutated.
func (ClusterAssigner) Assign(clusters []*cluster.Cluster, vehicles []*vehicle.Vehicle) (AssignmentPlan, error) {
	remaining := make([]vehicle.Capacity, len(vehicles))
	assigned := make([][]*order.Order, len(vehicles))
	for i, v := range vehicles {
		if err := v.Validate(); err != nil {
			return AssignmentPlan{}, err
		}
		remaining[i] = v.Capacity()
	}

	var unassigned []*order.Order

	placeOrders := func(orders []*order.Order) bool {
		for i := range vehicles {
			if !remaining[i].CanFit(orders) {
				continue
			}
			reduced, err := remaining[i].Reduce(orders)
			if err != nil {
				continue
			}
			remaining[i] = reduced
			assigned[i] = append(assigned[i], orders...)
			return true
		}
		return false
	}

	placeCluster := func(c *cluster.Cluster) {
		if placeOrders(c.Orders()) {
			return
		}
		// No vehicle takes the cluster whole: place orders one by one,
		// urgent ones first, input order otherwise.
		for _, o := range urgentFirst(c.Orders()) {
			if !placeOrders([]*order.Order{o}) {
				unassigned = append(unassigned, o)
			}
		}
	}

	// Priority pass: clusters with urgent orders claim capacity first.
	for _, c := range clusters {
		if err := c.Validate(); err != nil {
			return AssignmentPlan{}, err
		}
		if c.HasUrgent() {
			placeCluster(c)
		}
	}

	// General pass over the remaining clusters.
	for _, c := range clusters {
		if !c.HasUrgent() {
			placeCluster(c)
		}
	}

	plan := AssignmentPlan{UnassignedOrders: unassigned}
	for i, v := range vehicles {
		if len(assigned[i]) == 0 {
			continue
		}
		plan.Assignments = append(plan.Assignments, VehicleAssignment{
			Vehicle: v,
			Orders:  assigned[i],
		})
	}

	return plan, nil
}
