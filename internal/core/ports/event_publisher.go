package ports

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/kernel"
)

// RouteChangedEvent notifies downstream consumers (driver apps, dashboards)
// that a route was modified by an adjustment.
type RouteChangedEvent struct {
	RouteID    kernel.UUID `json:"route_id"`
	Changes    []string    `json:"changes"`
	Message    string      `json:"message"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// RouteEventPublisher delivers route-change events at-most-once. Publishing
// is best effort: callers log failures and never roll back the mutation
// that triggered the event.
type RouteEventPublisher interface {
	PublishRouteChanged(ctx context.Context, event RouteChangedEvent) error
}
