package command

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/OlegStrokan/free-ebay-sub000/internal/domain/order"
)

// DeliverOrder marks a shipped order as handed to the customer.
type DeliverOrder struct {
	OrderID string
}

// CompleteOrder closes out an order; completion is terminal.
type CompleteOrder struct {
	OrderID string
}

type DeliverOrderHandler struct {
	store  Store
	bus    Publisher
	logger *slog.Logger
}

func NewDeliverOrderHandler(store Store, bus Publisher, logger *slog.Logger) *DeliverOrderHandler {
	return &DeliverOrderHandler{store: store, bus: bus, logger: logger}
}

func (h *DeliverOrderHandler) Handle(ctx context.Context, cmd DeliverOrder) error {
	o, err := h.store.FindOrderByID(ctx, cmd.OrderID)
	if err != nil {
		return err
	}
	next, err := o.Deliver()
	if err != nil {
		return err
	}
	next, err = h.store.UpdateOrder(ctx, next)
	if err != nil {
		return fmt.Errorf("persist delivered order: %w", err)
	}
	h.logger.InfoContext(ctx, "order delivered", "order_id", next.ID)
	h.bus.Publish(ctx, order.Delivered{OrderID: next.ID, Timestamp: time.Now().UTC()})
	return nil
}

type CompleteOrderHandler struct {
	store  Store
	bus    Publisher
	logger *slog.Logger
}

func NewCompleteOrderHandler(store Store, bus Publisher, logger *slog.Logger) *CompleteOrderHandler {
	return &CompleteOrderHandler{store: store, bus: bus, logger: logger}
}

func (h *CompleteOrderHandler) Handle(ctx context.Context, cmd CompleteOrder) error {
	o, err := h.store.FindOrderByID(ctx, cmd.OrderID)
	if err != nil {
		return err
	}
	next, err := o.Complete()
	if err != nil {
		return err
	}
	next, err = h.store.UpdateOrder(ctx, next)
	if err != nil {
		return fmt.Errorf("persist completed order: %w", err)
	}
	h.logger.InfoContext(ctx, "order completed", "order_id", next.ID)
	h.bus.Publish(ctx, order.Completed{OrderID: next.ID, Timestamp: time.Now().UTC()})
	return nil
}
