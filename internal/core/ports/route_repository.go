package ports

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/route"
)

// RouteRepository defines the persistence contract for route aggregates
// including their stops.
type RouteRepository interface {
	// Add persists a new route aggregate with all its stops.
	Add(ctx context.Context, aggregate *route.Route) error

	// Update persists changes to an existing route, replacing its stop set.
	Update(ctx context.Context, aggregate *route.Route) error

	// Get retrieves a route aggregate by its unique identifier with stops
	// in sequence order. Returns errs.ObjectNotFoundError when missing.
	Get(ctx context.Context, id kernel.UUID) (*route.Route, error)

	// GetAllActive retrieves every route in Planned or Active status.
	GetAllActive(ctx context.Context) ([]*route.Route, error)

	// GetAllForDate retrieves every route planned for the given date.
	GetAllForDate(ctx context.Context, date time.Time) ([]*route.Route, error)
}
