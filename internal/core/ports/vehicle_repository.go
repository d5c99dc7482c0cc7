package ports

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/vehicle"
)

// VehicleRepository defines the persistence contract for vehicle aggregates.
type VehicleRepository interface {
	// Add persists a new vehicle aggregate to storage.
	Add(ctx context.Context, aggregate *vehicle.Vehicle) error

	// Get retrieves a vehicle aggregate by its unique identifier.
	// Returns errs.ObjectNotFoundError when no such vehicle exists.
	Get(ctx context.Context, id kernel.UUID) (*vehicle.Vehicle, error)

	// GetAll retrieves every registered vehicle in driver-name order.
	// Ordering keeps assignment runs deterministic for a given fleet.
	GetAll(ctx context.Context) ([]*vehicle.Vehicle, error)
}
