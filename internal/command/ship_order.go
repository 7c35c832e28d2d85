package command

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/OlegStrokan/free-ebay-sub000/internal/domain/order"
)

// ShipOrder is the intent to mark an order as handed to the carrier.
type ShipOrder struct {
	OrderID        string
	TrackingNumber string
	DeliveryDate   time.Time
}

type ShipOrderHandler struct {
	store  Store
	bus    Publisher
	logger *slog.Logger
}

func NewShipOrderHandler(store Store, bus Publisher, logger *slog.Logger) *ShipOrderHandler {
	return &ShipOrderHandler{store: store, bus: bus, logger: logger}
}

func (h *ShipOrderHandler) Handle(ctx context.Context, cmd ShipOrder) error {
	o, err := h.store.FindOrderByID(ctx, cmd.OrderID)
	if err != nil {
		return err
	}

	next, err := o.Ship(cmd.TrackingNumber, cmd.DeliveryDate)
	if err != nil {
		return err
	}

	next, err = h.store.UpdateOrder(ctx, next)
	if err != nil {
		return fmt.Errorf("persist shipped order: %w", err)
	}

	h.logger.InfoContext(ctx, "order shipped",
		"order_id", next.ID, "tracking_number", cmd.TrackingNumber)

	h.bus.Publish(ctx, order.Shipped{
		OrderID:        next.ID,
		TrackingNumber: cmd.TrackingNumber,
		DeliveryDate:   cmd.DeliveryDate,
		Timestamp:      time.Now().UTC(),
	})
	return nil
}
