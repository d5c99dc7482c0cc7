package services

import (
	"log/slog"
	"math"
	"sort"

	"dispatch/internal/core/domain/model/cluster"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// DefaultGridEdgeKm is the default edge length of a clustering grid cell.
const DefaultGridEdgeKm = 2.0

// GeoClusterer groups pending orders into geographic clusters: first by
// administrative area, then by fixed-size grid cells within the area.
//
// The grid is anchored at the coordinate origin with cell edges converted
// from kilometers to degrees by the flat approximation 1 degree ~ 111 km.
// That approximation is deliberate: clusters only need to put nearby orders
// together, not to measure distance precisely.
//
// Orders whose location is a pseudo-point still cluster deterministically
// (the placeholder is hash-derived from the address); the degraded accuracy
// is logged as a warning, never treated as fatal.
type GeoClusterer struct {
	gridEdgeKm float64
	logger     *slog.Logger
}

// NewGeoClusterer creates a GeoClusterer with the given cell edge length in
// kilometers. Non-positive edges fall back to DefaultGridEdgeKm.
func NewGeoClusterer(gridEdgeKm float64, logger *slog.Logger) GeoClusterer {
	if gridEdgeKm <= 0 {
		gridEdgeKm = DefaultGridEdgeKm
	}
	if logger == nil {
		logger = slog.Default()
	}
	return GeoClusterer{
		gridEdgeKm: gridEdgeKm,
		logger:     logger.With("component", "geo_clusterer"),
	}
}

// Cluster groups the orders by area and grid cell. The result is ordered
// deterministically: areas alphabetically, cells by (row, col), and orders
// within a cluster keep their input order.
func (g GeoClusterer) Cluster(orders []*order.Order) ([]*cluster.Cluster, error) {
	edgeDeg := g.gridEdgeKm / kernel.KmPerDegree

	type groupKey struct {
		area string
		cell cluster.CellKey
	}

	groups := make(map[groupKey][]*order.Order)
	keys := make([]groupKey, 0)

	for _, o := range orders {
		if err := o.Validate(); err != nil {
			return nil, err
		}

		loc := o.Location()
		if loc.IsPseudo() {
			g.logger.Warn("clustering order by pseudo-coordinate placeholder",
				"order_id", o.ID().String(),
				"area", o.Area(),
			)
		}

		key := groupKey{
			area: o.Area(),
			cell: cluster.CellKey{
				Row: int(math.Floor(loc.Lat() / edgeDeg)),
				Col: int(math.Floor(loc.Lng() / edgeDeg)),
			},
		}

		if _, seen := groups[key]; !seen {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], o)
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].area != keys[j].area {
			return keys[i].area < keys[j].area
		}
		if keys[i].cell.Row != keys[j].cell.Row {
			return keys[i].cell.Row < keys[j].cell.Row
		}
		return keys[i].cell.Col < keys[j].cell.Col
	})

	clusters := make([]*cluster.Cluster, 0, len(keys))
	for _, key := range keys {
		c, err := cluster.NewCluster(key.area, key.cell, groups[key])
		if err != nil {
			return nil, err
		}
		clusters = append(clusters, c)
	}

	return clusters, nil
}
