package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/vehicle"
)

var ErrCreateVehicleCommandIsNotConstructed = errors.New(
	"CreateVehicleCommand must be created via NewCreateVehicleCommand constructor",
)

// CreateVehicleCommand represents a request to register a delivery vehicle
// with its driver, shift windows and carrying capacity.
type CreateVehicleCommand struct {
	vehicleID     kernel.UUID
	driverName    string
	startLocation kernel.GeoPoint
	endLocation   kernel.GeoPoint
	workWindow    kernel.TimeWindow
	breakWindow   *kernel.TimeWindow
	capacity      vehicle.Capacity

	guard kernel.ConstructorGuard
}

// NewCreateVehicleCommand creates a validated command. The break window is
// optional; everything else must be constructed value objects.
func NewCreateVehicleCommand(
	vehicleID kernel.UUID,
	driverName string,
	startLocation kernel.GeoPoint,
	endLocation kernel.GeoPoint,
	workWindow kernel.TimeWindow,
	breakWindow *kernel.TimeWindow,
	capacity vehicle.Capacity,
) (CreateVehicleCommand, error) {
	if err := errors.Join(
		vehicleID.Validate(),
		startLocation.Validate(),
		endLocation.Validate(),
		workWindow.Validate(),
		capacity.Validate(),
	); err != nil {
		return CreateVehicleCommand{}, err
	}
	if breakWindow != nil {
		if err := breakWindow.Validate(); err != nil {
			return CreateVehicleCommand{}, err
		}
	}

	return CreateVehicleCommand{
		vehicleID:     vehicleID,
		driverName:    driverName,
		startLocation: startLocation,
		endLocation:   endLocation,
		workWindow:    workWindow,
		breakWindow:   breakWindow,
		capacity:      capacity,
		guard:         kernel.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateVehicleCommand) Validate() error {
	return c.guard.Validate(ErrCreateVehicleCommandIsNotConstructed)
}

// VehicleID returns the identifier the new vehicle will carry.
func (c CreateVehicleCommand) VehicleID() kernel.UUID {
	return c.vehicleID
}

// DriverName returns the driver's display name.
func (c CreateVehicleCommand) DriverName() string {
	return c.driverName
}

// StartLocation returns where the vehicle's routes begin.
func (c CreateVehicleCommand) StartLocation() kernel.GeoPoint {
	return c.startLocation
}

// EndLocation returns where the vehicle's routes must end.
func (c CreateVehicleCommand) EndLocation() kernel.GeoPoint {
	return c.endLocation
}

// WorkWindow returns the driver's shift window.
func (c CreateVehicleCommand) WorkWindow() kernel.TimeWindow {
	return c.workWindow
}

// BreakWindow returns the optional break window.
func (c CreateVehicleCommand) BreakWindow() *kernel.TimeWindow {
	return c.breakWindow
}

// Capacity returns the vehicle's carrying capacity.
func (c CreateVehicleCommand) Capacity() vehicle.Capacity {
	return c.capacity
}
