package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/adjustment"
	"dispatch/internal/core/domain/model/kernel"
)

var ErrApplyAdjustmentCommandIsNotConstructed = errors.New(
	"ApplyAdjustmentCommand must be created via NewApplyAdjustmentCommand constructor",
)

// ApplyAdjustmentCommand carries one adjustment request into the engine.
type ApplyAdjustmentCommand struct {
	request adjustment.Request

	guard kernel.ConstructorGuard
}

// NewApplyAdjustmentCommand creates a validated command around the request.
func NewApplyAdjustmentCommand(request adjustment.Request) (ApplyAdjustmentCommand, error) {
	if err := request.Validate(); err != nil {
		return ApplyAdjustmentCommand{}, err
	}

	return ApplyAdjustmentCommand{
		request: request,
		guard:   kernel.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c ApplyAdjustmentCommand) Validate() error {
	return c.guard.Validate(ErrApplyAdjustmentCommandIsNotConstructed)
}

// Request returns the wrapped adjustment request.
func (c ApplyAdjustmentCommand) Request() adjustment.Request {
	return c.request
}
