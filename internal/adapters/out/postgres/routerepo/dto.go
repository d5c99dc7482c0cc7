// Package routerepo provides data transfer objects and mapping functions
// for route persistence. A route row owns its stop rows; updates replace
// the whole stop set so the sequence invariant survives the round trip.
package routerepo

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/route"
	"dispatch/internal/core/domain/model/vehicle"
)

// RouteDTO represents the database structure for persisting route
// aggregates, including the capacity snapshot taken at build time.
type RouteDTO struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	VehicleID       uuid.UUID `gorm:"type:uuid;index"`
	Date            time.Time `gorm:"index"`
	DistanceKm      float64
	DurationSeconds int64
	Score           int
	Warnings        string
	Status          int       `gorm:"index"`
	MaxWeightKg     float64
	MaxUnits9       int
	MaxUnits12      int
	MaxUnits14      int
	MaxUnits50      int
	Stops           []StopDTO `gorm:"foreignKey:RouteID;constraint:OnDelete:CASCADE"`
}

// TableName overrides GORM's default naming to use "routes".
func (RouteDTO) TableName() string {
	return "routes"
}

// StopDTO represents one scheduled visit row within a route.
type StopDTO struct {
	RouteID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Sequence       int       `gorm:"primaryKey"`
	OrderID        uuid.UUID `gorm:"type:uuid;index"`
	Latitude       float64
	Longitude      float64
	PseudoLocation bool
	Units9         int
	Units12        int
	Units14        int
	Units50        int
	ETA            time.Time
	ServiceSeconds int64
	Completed      bool
	ActualArrival  *time.Time
}

// TableName overrides GORM's default naming to use "route_stops".
func (StopDTO) TableName() string {
	return "route_stops"
}

func demandToColumns(d order.Demand) (int, int, int, int) {
	return d[order.Cylinder9kg], d[order.Cylinder12kg], d[order.Cylinder14kg], d[order.Cylinder50kg]
}

func demandFromColumns(u9, u12, u14, u50 int) order.Demand {
	demand := order.Demand{}
	if u9 > 0 {
		demand[order.Cylinder9kg] = u9
	}
	if u12 > 0 {
		demand[order.Cylinder12kg] = u12
	}
	if u14 > 0 {
		demand[order.Cylinder14kg] = u14
	}
	if u50 > 0 {
		demand[order.Cylinder50kg] = u50
	}
	return demand
}

// fromDomain converts a route aggregate and its stops to database rows.
func fromDomain(aggregate *route.Route) RouteDTO {
	capacity := aggregate.Capacity()
	maxUnits := capacity.MaxUnits()

	warnings, _ := json.Marshal(aggregate.Warnings())

	dto := RouteDTO{
		ID:              aggregate.ID().Bytes(),
		VehicleID:       aggregate.VehicleID().Bytes(),
		Date:            aggregate.Date(),
		DistanceKm:      aggregate.DistanceKm(),
		DurationSeconds: int64(aggregate.Duration() / time.Second),
		Score:           aggregate.Score(),
		Warnings:        string(warnings),
		Status:          int(aggregate.Status()),
		MaxWeightKg:     capacity.MaxWeightKg(),
		MaxUnits9:       maxUnits[order.Cylinder9kg],
		MaxUnits12:      maxUnits[order.Cylinder12kg],
		MaxUnits14:      maxUnits[order.Cylinder14kg],
		MaxUnits50:      maxUnits[order.Cylinder50kg],
	}

	for _, s := range aggregate.Stops() {
		u9, u12, u14, u50 := demandToColumns(s.Demand())
		dto.Stops = append(dto.Stops, StopDTO{
			RouteID:        dto.ID,
			Sequence:       s.Sequence(),
			OrderID:        s.OrderID().Bytes(),
			Latitude:       s.Location().Lat(),
			Longitude:      s.Location().Lng(),
			PseudoLocation: s.Location().IsPseudo(),
			Units9:         u9,
			Units12:        u12,
			Units14:        u14,
			Units50:        u50,
			ETA:            s.ETA(),
			ServiceSeconds: int64(s.ServiceDuration() / time.Second),
			Completed:      s.IsCompleted(),
			ActualArrival:  s.ActualArrival(),
		})
	}

	return dto
}

// toDomain reconstructs the route aggregate from database rows. Stops are
// sorted by sequence before restoration.
func toDomain(dto RouteDTO) (*route.Route, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	vehicleID, err := kernel.UUIDFromBytes(dto.VehicleID[:])
	if err != nil {
		return nil, err
	}

	capacity, err := vehicle.NewCapacity(dto.MaxWeightKg,
		demandFromColumns(dto.MaxUnits9, dto.MaxUnits12, dto.MaxUnits14, dto.MaxUnits50))
	if err != nil {
		return nil, err
	}

	var warnings []string
	if dto.Warnings != "" {
		if err := json.Unmarshal([]byte(dto.Warnings), &warnings); err != nil {
			return nil, err
		}
	}

	sort.Slice(dto.Stops, func(i, j int) bool {
		return dto.Stops[i].Sequence < dto.Stops[j].Sequence
	})

	stops := make([]route.Stop, 0, len(dto.Stops))
	for _, s := range dto.Stops {
		orderID, stopErr := kernel.UUIDFromBytes(s.OrderID[:])
		if stopErr != nil {
			return nil, stopErr
		}
		loc, stopErr := kernel.RestoreGeoPoint(s.Latitude, s.Longitude, s.PseudoLocation)
		if stopErr != nil {
			return nil, stopErr
		}

		stop, stopErr := route.RestoreStop(orderID, s.Sequence, loc,
			demandFromColumns(s.Units9, s.Units12, s.Units14, s.Units50),
			s.ETA, time.Duration(s.ServiceSeconds)*time.Second,
			s.Completed, s.ActualArrival)
		if stopErr != nil {
			return nil, stopErr
		}
		stops = append(stops, stop)
	}

	return route.RestoreRoute(id, vehicleID, dto.Date, stops, capacity,
		dto.DistanceKm, time.Duration(dto.DurationSeconds)*time.Second,
		dto.Score, warnings, route.Status(dto.Status))
}
