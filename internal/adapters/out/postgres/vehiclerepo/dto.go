// Package vehiclerepo provides data transfer objects and mapping functions
// for vehicle persistence.
package vehiclerepo

import (
	"time"

	"github.com/google/uuid"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/vehicle"
)

// VehicleDTO represents the database structure for persisting vehicle
// aggregates.
type VehicleDTO struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	DriverName     string    `gorm:"index"`
	StartLatitude  float64
	StartLongitude float64
	EndLatitude    float64
	EndLongitude   float64
	WorkFrom       time.Time
	WorkTo         time.Time
	BreakFrom      *time.Time
	BreakTo        *time.Time
	MaxWeightKg    float64
	MaxUnits9      int
	MaxUnits12     int
	MaxUnits14     int
	MaxUnits50     int
}

// TableName overrides GORM's default naming to use "vehicles".
func (VehicleDTO) TableName() string {
	return "vehicles"
}

// fromDomain converts a vehicle aggregate to its database representation.
func fromDomain(aggregate *vehicle.Vehicle) VehicleDTO {
	capacity := aggregate.Capacity()
	maxUnits := capacity.MaxUnits()

	dto := VehicleDTO{
		ID:             aggregate.ID().Bytes(),
		DriverName:     aggregate.DriverName(),
		StartLatitude:  aggregate.StartLocation().Lat(),
		StartLongitude: aggregate.StartLocation().Lng(),
		EndLatitude:    aggregate.EndLocation().Lat(),
		EndLongitude:   aggregate.EndLocation().Lng(),
		WorkFrom:       aggregate.WorkWindow().From(),
		WorkTo:         aggregate.WorkWindow().To(),
		MaxWeightKg:    capacity.MaxWeightKg(),
		MaxUnits9:      maxUnits[order.Cylinder9kg],
		MaxUnits12:     maxUnits[order.Cylinder12kg],
		MaxUnits14:     maxUnits[order.Cylinder14kg],
		MaxUnits50:     maxUnits[order.Cylinder50kg],
	}

	if brk := aggregate.BreakWindow(); brk != nil {
		from := brk.From()
		to := brk.To()
		dto.BreakFrom = &from
		dto.BreakTo = &to
	}

	return dto
}

// toDomain reconstructs the vehicle aggregate from a database row.
func toDomain(dto VehicleDTO) (*vehicle.Vehicle, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	start, err := kernel.NewGeoPoint(dto.StartLatitude, dto.StartLongitude)
	if err != nil {
		return nil, err
	}
	end, err := kernel.NewGeoPoint(dto.EndLatitude, dto.EndLongitude)
	if err != nil {
		return nil, err
	}

	work, err := kernel.NewTimeWindow(dto.WorkFrom, dto.WorkTo)
	if err != nil {
		return nil, err
	}

	var brk *kernel.TimeWindow
	if dto.BreakFrom != nil && dto.BreakTo != nil {
		w, brkErr := kernel.NewTimeWindow(*dto.BreakFrom, *dto.BreakTo)
		if brkErr != nil {
			return nil, brkErr
		}
		brk = &w
	}

	maxUnits := map[order.CylinderCategory]int{}
	if dto.MaxUnits9 > 0 {
		maxUnits[order.Cylinder9kg] = dto.MaxUnits9
	}
	if dto.MaxUnits12 > 0 {
		maxUnits[order.Cylinder12kg] = dto.MaxUnits12
	}
	if dto.MaxUnits14 > 0 {
		maxUnits[order.Cylinder14kg] = dto.MaxUnits14
	}
	if dto.MaxUnits50 > 0 {
		maxUnits[order.Cylinder50kg] = dto.MaxUnits50
	}

	capacity, err := vehicle.NewCapacity(dto.MaxWeightKg, maxUnits)
	if err != nil {
		return nil, err
	}

	return vehicle.NewVehicle(id, dto.DriverName, start, end, work, brk, capacity)
}
