package vehicle

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// ErrVehicleIsNotConstructed is returned when a Vehicle instance was not
// created through the NewVehicle factory method.
var ErrVehicleIsNotConstructed = errors.New("Vehicle must be created via NewVehicle constructor")

// Vehicle is the aggregate for a delivery vehicle and its driver: where the
// shift starts and ends, when the driver works and breaks, and how many
// cylinders of each category the truck can carry.
type Vehicle struct {
	id            kernel.UUID
	driverName    string
	startLocation kernel.GeoPoint
	endLocation   kernel.GeoPoint
	workWindow    kernel.TimeWindow
	breakWindow   *kernel.TimeWindow
	capacity      Capacity

	isConstructed bool
}

// NewVehicle creates a validated Vehicle. The break window is optional.
func NewVehicle(
	id kernel.UUID,
	driverName string,
	startLocation kernel.GeoPoint,
	endLocation kernel.GeoPoint,
	workWindow kernel.TimeWindow,
	breakWindow *kernel.TimeWindow,
	capacity Capacity,
) (*Vehicle, error) {
	v := &Vehicle{isConstructed: true}

	if err := errors.Join(
		v.setID(id),
		v.setDriverName(driverName),
		v.setLocations(startLocation, endLocation),
		v.setWindows(workWindow, breakWindow),
		v.setCapacity(capacity),
	); err != nil {
		return nil, err
	}

	return v, nil
}

// Validate ensures the Vehicle was properly constructed.
func (v *Vehicle) Validate() error {
	if v == nil || !v.isConstructed {
		return ErrVehicleIsNotConstructed
	}
	return nil
}

// ID returns the vehicle's unique identifier.
func (v *Vehicle) ID() kernel.UUID {
	return v.id
}

// DriverName returns the assigned driver's display name.
func (v *Vehicle) DriverName() string {
	return v.driverName
}

// StartLocation returns where the route begins (depot or driver home base).
func (v *Vehicle) StartLocation() kernel.GeoPoint {
	return v.startLocation
}

// EndLocation returns where the route must end.
func (v *Vehicle) EndLocation() kernel.GeoPoint {
	return v.endLocation
}

// WorkWindow returns the driver's shift window.
func (v *Vehicle) WorkWindow() kernel.TimeWindow {
	return v.workWindow
}

// BreakWindow returns the driver's break window, or nil when none is scheduled.
func (v *Vehicle) BreakWindow() *kernel.TimeWindow {
	return v.breakWindow
}

// Capacity returns the vehicle's full (unreduced) carrying capacity.
func (v *Vehicle) Capacity() Capacity {
	return v.capacity
}

func (v *Vehicle) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	v.id = id
	return nil
}

func (v *Vehicle) setDriverName(name string) error {
	if name == "" {
		return errs.NewValueIsRequiredError("driver name")
	}
	v.driverName = name
	return nil
}

func (v *Vehicle) setLocations(start, end kernel.GeoPoint) error {
	if err := start.Validate(); err != nil {
		return err
	}
	if err := end.Validate(); err != nil {
		return err
	}
	v.startLocation = start
	v.endLocation = end
	return nil
}

func (v *Vehicle) setWindows(work kernel.TimeWindow, brk *kernel.TimeWindow) error {
	if err := work.Validate(); err != nil {
		return err
	}
	if brk != nil {
		if err := brk.Validate(); err != nil {
			return err
		}
	}
	v.workWindow = work
	v.breakWindow = brk
	return nil
}

func (v *Vehicle) setCapacity(capacity Capacity) error {
	if err := capacity.Validate(); err != nil {
		return err
	}
	v.capacity = capacity
	return nil
}
