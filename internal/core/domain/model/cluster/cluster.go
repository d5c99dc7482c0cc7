package cluster

import (
	"errors"
	"fmt"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/vehicle"
	"dispatch/internal/pkg/errs"
)

// ErrClusterIsNotConstructed is returned when a Cluster instance was not
// created through the NewCluster factory method.
var ErrClusterIsNotConstructed = errors.New("Cluster must be created via NewCluster constructor")

// Cluster is an ephemeral grouping of orders produced by the geographic
// clusterer and consumed by the assigner within a single optimization run.
// Clusters are never persisted.
type Cluster struct {
	area    string
	cellKey CellKey
	orders  []*order.Order

	isConstructed bool
}

// CellKey identifies a fixed-size grid cell within an administrative area.
type CellKey struct {
	Row int
	Col int
}

func (k CellKey) String() string {
	return fmt.Sprintf("%d:%d", k.Row, k.Col)
}

// NewCluster creates a validated Cluster. A cluster must contain at least
// one order and every order must belong to the cluster's area.
func NewCluster(area string, cellKey CellKey, orders []*order.Order) (*Cluster, error) {
	if area == "" {
		return nil, errs.NewValueIsRequiredError("area")
	}
	if len(orders) == 0 {
		return nil, errs.NewValueIsRequiredError("orders")
	}
	for _, o := range orders {
		if err := o.Validate(); err != nil {
			return nil, err
		}
		if o.Area() != area {
			return nil, errs.NewValueIsInvalidErrorWithCause("orders",
				fmt.Errorf("order %s belongs to area %q, not %q", o.ID(), o.Area(), area))
		}
	}

	return &Cluster{
		area:          area,
		cellKey:       cellKey,
		orders:        append([]*order.Order(nil), orders...),
		isConstructed: true,
	}, nil
}

// Validate ensures the Cluster was properly constructed.
func (c *Cluster) Validate() error {
	if c == nil || !c.isConstructed {
		return ErrClusterIsNotConstructed
	}
	return nil
}

// Area returns the administrative area the cluster belongs to.
func (c *Cluster) Area() string {
	return c.area
}

// CellKey returns the grid cell the cluster occupies within its area.
func (c *Cluster) CellKey() CellKey {
	return c.cellKey
}

// Orders returns a copy of the cluster's order list in input order.
func (c *Cluster) Orders() []*order.Order {
	return append([]*order.Order(nil), c.orders...)
}

// Size returns the number of orders in the cluster.
func (c *Cluster) Size() int {
	return len(c.orders)
}

// TotalLoad returns the combined laden weight and per-category unit counts
// of the cluster's orders.
func (c *Cluster) TotalLoad() vehicle.Load {
	return vehicle.TotalsOf(c.orders)
}

// HasUrgent reports whether the cluster contains at least one urgent order.
func (c *Cluster) HasUrgent() bool {
	for _, o := range c.orders {
		if o.IsUrgent() {
			return true
		}
	}
	return false
}
