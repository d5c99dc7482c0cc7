package ports

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
)

// Geocoder resolves a customer address to coordinates. Implementations must
// not fail on unresolvable addresses: they return a deterministic pseudo
// coordinate instead, which callers detect via GeoPoint.IsPseudo and report
// as a warning.
type Geocoder interface {
	Geocode(ctx context.Context, area string, address string) (kernel.GeoPoint, error)
}
