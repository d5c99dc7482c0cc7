// Package geocoding provides the address resolution adapter. Resolution is
// table-backed: known addresses come from a registry loaded at startup,
// everything else degrades to a deterministic pseudo coordinate so order
// intake never blocks on an unresolvable address.
package geocoding

import (
	"context"
	"strings"
	"sync"

	"dispatch/internal/core/domain/model/kernel"
)

// TableGeocoder resolves addresses against an in-memory registry and falls
// back to pseudo coordinates for unknown ones.
type TableGeocoder struct {
	mu    sync.RWMutex
	known map[string]kernel.GeoPoint
}

// NewTableGeocoder creates an empty geocoder registry.
func NewTableGeocoder() *TableGeocoder {
	return &TableGeocoder{known: make(map[string]kernel.GeoPoint)}
}

// Register stores the resolved coordinate for an address.
func (g *TableGeocoder) Register(area, address string, point kernel.GeoPoint) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.known[addressKey(area, address)] = point
}

// Geocode resolves an address to coordinates. Unknown addresses yield a
// deterministic pseudo point rather than an error.
func (g *TableGeocoder) Geocode(_ context.Context, area, address string) (kernel.GeoPoint, error) {
	g.mu.RLock()
	point, ok := g.known[addressKey(area, address)]
	g.mu.RUnlock()

	if ok {
		return point, nil
	}
	return kernel.PseudoPoint(area, address), nil
}

func addressKey(area, address string) string {
	return strings.ToLower(strings.TrimSpace(area)) + "|" +
		strings.ToLower(strings.TrimSpace(address))
}
