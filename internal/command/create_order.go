package command

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/OlegStrokan/free-ebay-sub000/internal/domain/order"
)

// CreateOrder is the intent to open a new order for a customer with the
// given lines.
type CreateOrder struct {
	CustomerID string
	Items      []ItemInput
}

// ItemInput is one requested order line. UnitPrice is in minor units.
type ItemInput struct {
	ProductID string
	Quantity  int
	UnitPrice int64
	WeightKG  float64
}

// CreateOrderHandler persists a new order with its items and derived
// parcels, then publishes order.Created. All downstream effects (read model,
// integration events) hang off that event.
type CreateOrderHandler struct {
	store    Store
	bus      Publisher
	grouping order.GroupingStrategy
	logger   *slog.Logger
}

func NewCreateOrderHandler(store Store, bus Publisher, grouping order.GroupingStrategy, logger *slog.Logger) *CreateOrderHandler {
	if grouping == nil {
		grouping = order.OneParcelPerItem{}
	}
	return &CreateOrderHandler{store: store, bus: bus, grouping: grouping, logger: logger}
}

func (h *CreateOrderHandler) Handle(ctx context.Context, cmd CreateOrder) (order.Order, error) {
	items := make([]order.Item, 0, len(cmd.Items))
	for _, in := range cmd.Items {
		it, err := order.NewItem(in.ProductID, in.Quantity, in.UnitPrice, in.WeightKG)
		if err != nil {
			return order.Order{}, err
		}
		items = append(items, it)
	}

	o := order.New(cmd.CustomerID, items)
	if err := h.store.InsertOrder(ctx, o); err != nil {
		return order.Order{}, fmt.Errorf("persist order: %w", err)
	}

	parcels, err := order.BuildParcels(o, h.grouping, time.Now().UTC())
	if err != nil {
		return order.Order{}, err
	}
	if err := h.store.InsertParcels(ctx, parcels); err != nil {
		return order.Order{}, fmt.Errorf("persist parcels: %w", err)
	}

	h.logger.InfoContext(ctx, "order created",
		"order_id", o.ID, "customer_id", o.CustomerID, "parcels", len(parcels))

	h.bus.Publish(ctx, order.NewCreated(o, parcels))
	return o, nil
}
