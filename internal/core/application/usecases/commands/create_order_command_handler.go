package commands

import (
	"context"
	"log/slog"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
)

// CreateOrderCommandHandler handles the business logic for order creation.
// Resolves the destination address through the geocoder and persists the
// order in Pending status, ready for the next optimization run.
//
// Geocoding never blocks order intake: when the address cannot be resolved
// the geocoder substitutes a deterministic pseudo coordinate and the order
// is accepted with a warning in the logs.
type CreateOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	geocoder   ports.Geocoder
	logger     *slog.Logger
}

// NewCreateOrderCommandHandler creates a handler for order creation.
func NewCreateOrderCommandHandler(
	uowFactory OrderUoWFactory,
	geocoder ports.Geocoder,
	logger *slog.Logger,
) CreateOrderCommandHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
		geocoder:   geocoder,
		logger:     logger.With("component", "create_order"),
	}
}

// Handle processes the order creation command within one transaction.
func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	location, err := h.geocoder.Geocode(ctx, cmd.Area(), cmd.Address())
	if err != nil {
		return err
	}
	if location.IsPseudo() {
		h.logger.Warn("address not resolved, using pseudo coordinate",
			"order_id", cmd.OrderID().String(),
			"area", cmd.Area(),
		)
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	newOrder, err := order.NewOrder(
		cmd.OrderID(), cmd.Area(), cmd.Address(), location,
		cmd.Demand(), cmd.IsUrgent(), cmd.Window(),
	)
	if err != nil {
		return err
	}

	if err = uow.OrderRepository().Add(ctx, newOrder); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
