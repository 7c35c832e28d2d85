// Package command holds the write-side handlers for the order core. Handlers
// are the only writers to the command store: they validate, load the
// aggregate, apply the mutation, persist, and only then publish the domain
// event. They never read the query store — correctness-sensitive decisions
// come from the command store alone.
package command

import (
	"context"

	"github.com/OlegStrokan/free-ebay-sub000/internal/domain/order"
)

// Store is the command-side repository port. Implementations must persist
// InsertOrder atomically with its items, and guard UpdateOrder with the
// aggregate version (order.ErrVersionConflict on a lost race).
type Store interface {
	InsertOrder(ctx context.Context, o order.Order) error
	UpdateOrder(ctx context.Context, o order.Order) (order.Order, error)
	FindOrderByID(ctx context.Context, id string) (order.Order, error)
	InsertParcels(ctx context.Context, parcels []order.Parcel) error
	InsertShippingCost(ctx context.Context, sc order.ShippingCost) error
	InsertPayment(ctx context.Context, p order.Payment) error
	UpdatePayment(ctx context.Context, p order.Payment) error
}

// Publisher fans a domain event out to its subscribers. Implementations
// return only after every subscriber ran.
type Publisher interface {
	Publish(ctx context.Context, event order.Event)
}
