// Package orderrepo provides data transfer objects and mapping functions for
// order persistence. It implements the repository pattern for the order
// aggregate, handling conversion between domain entities and database rows.
package orderrepo

import (
	"time"

	"github.com/google/uuid"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// OrderDTO represents the database structure for persisting order
// aggregates, indexed for querying by status, area and route assignment.
type OrderDTO struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	RouteID        *uuid.UUID `gorm:"type:uuid;index"`
	Area           string     `gorm:"index"`
	Address        string
	Latitude       float64
	Longitude      float64
	PseudoLocation bool
	Demand         DemandDTO `gorm:"embedded;embeddedPrefix:demand_"`
	Urgent         bool
	WindowFrom     time.Time `gorm:"index"`
	WindowTo       time.Time
	Status         int `gorm:"index"`
	CreatedAt      time.Time
}

// TableName overrides GORM's default naming to use "orders".
func (OrderDTO) TableName() string {
	return "orders"
}

// DemandDTO stores per-category cylinder counts as embedded columns.
type DemandDTO struct {
	Units9  int
	Units12 int
	Units14 int
	Units50 int
}

func demandFromDomain(d order.Demand) DemandDTO {
	return DemandDTO{
		Units9:  d[order.Cylinder9kg],
		Units12: d[order.Cylinder12kg],
		Units14: d[order.Cylinder14kg],
		Units50: d[order.Cylinder50kg],
	}
}

func (d DemandDTO) toDomain() order.Demand {
	demand := order.Demand{}
	if d.Units9 > 0 {
		demand[order.Cylinder9kg] = d.Units9
	}
	if d.Units12 > 0 {
		demand[order.Cylinder12kg] = d.Units12
	}
	if d.Units14 > 0 {
		demand[order.Cylinder14kg] = d.Units14
	}
	if d.Units50 > 0 {
		demand[order.Cylinder50kg] = d.Units50
	}
	return demand
}

// fromDomain converts an order aggregate to its database representation.
func fromDomain(aggregate *order.Order) OrderDTO {
	var routeID *uuid.UUID
	if id := aggregate.Route(); id != nil {
		raw := id.Bytes()
		routeID = &raw
	}

	return OrderDTO{
		ID:             aggregate.ID().Bytes(),
		RouteID:        routeID,
		Area:           aggregate.Area(),
		Address:        aggregate.Address(),
		Latitude:       aggregate.Location().Lat(),
		Longitude:      aggregate.Location().Lng(),
		PseudoLocation: aggregate.Location().IsPseudo(),
		Demand:         demandFromDomain(aggregate.Demand()),
		Urgent:         aggregate.IsUrgent(),
		WindowFrom:     aggregate.Window().From(),
		WindowTo:       aggregate.Window().To(),
		Status:         int(aggregate.Status()),
	}
}

// toDomain reconstructs the order aggregate from a database row.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	var routeID *kernel.UUID
	if dto.RouteID != nil {
		rID, routeErr := kernel.UUIDFromBytes((*dto.RouteID)[:])
		if routeErr != nil {
			return nil, routeErr
		}
		routeID = &rID
	}

	loc, err := kernel.RestoreGeoPoint(dto.Latitude, dto.Longitude, dto.PseudoLocation)
	if err != nil {
		return nil, err
	}

	window, err := kernel.NewTimeWindow(dto.WindowFrom, dto.WindowTo)
	if err != nil {
		return nil, err
	}

	return order.RestoreOrder(id, dto.Area, dto.Address, loc, dto.Demand.toDomain(),
		dto.Urgent, window, order.Status(dto.Status), routeID)
}
