// Package projection translates domain events into query-store writes,
// keeping the read model eventually consistent with the command store. A
// projector never blocks or unwinds the command path that emitted the event;
// its failures are isolated by the bus and logged.
package projection

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/OlegStrokan/free-ebay-sub000/internal/domain/order"
	"github.com/OlegStrokan/free-ebay-sub000/internal/eventbus"
	"github.com/OlegStrokan/free-ebay-sub000/internal/readmodel"
)

// OrderProjector applies order lifecycle events to the query store.
type OrderProjector struct {
	store  readmodel.Store
	logger *slog.Logger
}

func NewOrderProjector(store readmodel.Store, logger *slog.Logger) *OrderProjector {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderProjector{store: store, logger: logger}
}

// Register subscribes the projector to every order event kind.
func (p *OrderProjector) Register(bus *eventbus.Bus) {
	bus.Subscribe(order.EventKindCreated, eventbus.HandlerFunc(p.onCreated))
	bus.Subscribe(order.EventKindShipped, eventbus.HandlerFunc(p.onShipped))
	bus.Subscribe(order.EventKindCancelled, p.statusHandler(order.StatusCanceled))
	bus.Subscribe(order.EventKindDelivered, p.statusHandler(order.StatusDelivered))
	bus.Subscribe(order.EventKindCompleted, p.statusHandler(order.StatusCompleted))
}

// onCreated upserts the order row by id: a replayed event updates in place
// instead of inserting a duplicate, items replaced wholesale.
func (p *OrderProjector) onCreated(ctx context.Context, event order.Event) error {
	e, ok := event.(order.Created)
	if !ok {
		return fmt.Errorf("projection: unexpected event %T for %s", event, event.Kind())
	}

	items := make([]readmodel.ItemRow, 0, len(e.Items))
	for _, it := range e.Items {
		items = append(items, readmodel.ItemRow{
			ID:        it.ID,
			OrderID:   e.OrderID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			WeightKG:  it.WeightKG,
		})
	}

	row := readmodel.OrderRow{
		ID:          e.OrderID,
		CustomerID:  e.CustomerID,
		Status:      string(e.Status),
		TotalAmount: e.TotalAmount,
		Items:       items,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.OccurredAt(),
	}
	if err := p.store.UpsertOrder(ctx, row); err != nil {
		return fmt.Errorf("projection: upsert order %s: %w", e.OrderID, err)
	}

	if len(e.Parcels) > 0 {
		parcels := make([]readmodel.ParcelRow, 0, len(e.Parcels))
		for _, par := range e.Parcels {
			parcels = append(parcels, readmodel.ParcelRow{
				ID:             par.ID,
				OrderID:        e.OrderID,
				TrackingNumber: par.TrackingNumber,
				WeightKG:       par.WeightKG,
				CreatedAt:      e.CreatedAt,
			})
		}
		if err := p.store.UpsertParcels(ctx, parcels); err != nil {
			return fmt.Errorf("projection: upsert parcels for %s: %w", e.OrderID, err)
		}
	}

	if e.Shipping != nil {
		err := p.store.UpsertShippingCost(ctx, readmodel.ShippingRow{
			ID:            e.Shipping.ID,
			OrderID:       e.OrderID,
			Cost:          e.Shipping.Cost,
			TotalWeightKG: e.Shipping.TotalWeightKG,
		})
		if err != nil {
			return fmt.Errorf("projection: upsert shipping cost for %s: %w", e.OrderID, err)
		}
	}
	return nil
}

// onShipped loads the projected row and applies the shipment fields. A
// missing row means the read model has not seen Created yet; the not-found
// error is surfaced for the caller's retry policy, never swallowed.
func (p *OrderProjector) onShipped(ctx context.Context, event order.Event) error {
	e, ok := event.(order.Shipped)
	if !ok {
		return fmt.Errorf("projection: unexpected event %T for %s", event, event.Kind())
	}

	row, err := p.store.FindOrderByID(ctx, e.OrderID)
	if err != nil {
		return err
	}
	row.Status = string(order.StatusShipped)
	row.TrackingNumber = e.TrackingNumber
	d := e.DeliveryDate
	row.DeliveryDate = &d
	row.UpdatedAt = e.OccurredAt()
	if err := p.store.SaveOrder(ctx, row); err != nil {
		return fmt.Errorf("projection: save shipped order %s: %w", e.OrderID, err)
	}
	return nil
}

func (p *OrderProjector) statusHandler(status order.Status) eventbus.HandlerFunc {
	return func(ctx context.Context, event order.Event) error {
		row, err := p.store.FindOrderByID(ctx, event.AggregateID())
		if err != nil {
			return err
		}
		row.Status = string(status)
		row.UpdatedAt = event.OccurredAt()
		if err := p.store.SaveOrder(ctx, row); err != nil {
			return fmt.Errorf("projection: save order %s: %w", event.AggregateID(), err)
		}
		return nil
	}
}

// CommandReader is the slice of the command store the rebuilder needs.
type CommandReader interface {
	ListOrders(ctx context.Context, limit int) ([]order.Order, error)
	ListParcelsByOrder(ctx context.Context, orderID string) ([]order.Parcel, error)
}

// Rebuild reseeds the query store from the command store by replaying every
// order through the Created projection. Upsert semantics make it safe to run
// against a non-empty read model.
func (p *OrderProjector) Rebuild(ctx context.Context, source CommandReader, limit int) error {
	orders, err := source.ListOrders(ctx, limit)
	if err != nil {
		return fmt.Errorf("projection: list orders for rebuild: %w", err)
	}

	started := time.Now()
	for _, o := range orders {
		parcels, err := source.ListParcelsByOrder(ctx, o.ID)
		if err != nil {
			return fmt.Errorf("projection: list parcels for %s: %w", o.ID, err)
		}
		if err := p.onCreated(ctx, order.NewCreated(o, parcels)); err != nil {
			return err
		}
		// The synthesized event carries the current status but not the
		// shipment fields; restore those for orders past Created.
		if o.TrackingNumber != "" {
			row, err := p.store.FindOrderByID(ctx, o.ID)
			if err != nil {
				return err
			}
			row.TrackingNumber = o.TrackingNumber
			row.DeliveryDate = o.DeliveryDate
			if err := p.store.SaveOrder(ctx, row); err != nil {
				return fmt.Errorf("projection: restore shipment fields for %s: %w", o.ID, err)
			}
		}
	}

	p.logger.InfoContext(ctx, "read model rebuilt",
		"orders", len(orders), "took", time.Since(started))
	return nil
}
