package commands

import (
	"context"

	"dispatch/internal/core/domain/model/vehicle"
)

// CreateVehicleCommandHandler handles vehicle registration.
type CreateVehicleCommandHandler struct {
	uowFactory VehicleUoWFactory
}

// NewCreateVehicleCommandHandler creates a handler for vehicle registration.
func NewCreateVehicleCommandHandler(uowFactory VehicleUoWFactory) CreateVehicleCommandHandler {
	return CreateVehicleCommandHandler{uowFactory: uowFactory}
}

// Handle processes the vehicle creation command within one transaction.
func (h *CreateVehicleCommandHandler) Handle(ctx context.Context, cmd CreateVehicleCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	newVehicle, err := vehicle.NewVehicle(
		cmd.VehicleID(), cmd.DriverName(),
		cmd.StartLocation(), cmd.EndLocation(),
		cmd.WorkWindow(), cmd.BreakWindow(),
		cmd.Capacity(),
	)
	if err != nil {
		return err
	}

	if err = uow.VehicleRepository().Add(ctx, newVehicle); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
