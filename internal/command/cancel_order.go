package command

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/OlegStrokan/free-ebay-sub000/internal/domain/order"
)

// CancelOrder is the intent to cancel an order that has not shipped.
type CancelOrder struct {
	OrderID string
}

type CancelOrderHandler struct {
	store  Store
	bus    Publisher
	logger *slog.Logger
}

func NewCancelOrderHandler(store Store, bus Publisher, logger *slog.Logger) *CancelOrderHandler {
	return &CancelOrderHandler{store: store, bus: bus, logger: logger}
}

func (h *CancelOrderHandler) Handle(ctx context.Context, cmd CancelOrder) error {
	o, err := h.store.FindOrderByID(ctx, cmd.OrderID)
	if err != nil {
		return err
	}

	next, err := o.Cancel()
	if err != nil {
		return err
	}

	next, err = h.store.UpdateOrder(ctx, next)
	if err != nil {
		return fmt.Errorf("persist cancelled order: %w", err)
	}

	h.logger.InfoContext(ctx, "order cancelled", "order_id", next.ID)

	h.bus.Publish(ctx, order.Cancelled{OrderID: next.ID, Timestamp: time.Now().UTC()})
	return nil
}
