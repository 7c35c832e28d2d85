package order

import (
	"time"

	"github.com/google/uuid"
)

// Item is a line of an order. Items are owned exclusively by their order and
// are not addressable from outside the aggregate.
type Item struct {
	ID        string
	ProductID string
	Quantity  int
	// UnitPrice is in minor currency units (cents).
	UnitPrice int64
	// WeightKG is the per-unit weight in kilograms.
	WeightKG  float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewItem validates and builds an order item. Quantity must be positive and
// the unit price non-negative.
func NewItem(productID string, quantity int, unitPrice int64, weightKG float64) (Item, error) {
	if quantity <= 0 {
		return Item{}, &InvalidOrderItemError{ProductID: productID, Reason: "quantity must be positive"}
	}
	if unitPrice < 0 {
		return Item{}, &InvalidOrderItemError{ProductID: productID, Reason: "unit price must not be negative"}
	}
	if weightKG < 0 {
		return Item{}, &InvalidOrderItemError{ProductID: productID, Reason: "weight must not be negative"}
	}
	now := time.Now().UTC()
	return Item{
		ID:        uuid.NewString(),
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		WeightKG:  weightKG,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Subtotal is quantity times unit price, in minor units.
func (i Item) Subtotal() int64 {
	return int64(i.Quantity) * i.UnitPrice
}

// TotalWeightKG is quantity times per-unit weight.
func (i Item) TotalWeightKG() float64 {
	return float64(i.Quantity) * i.WeightKG
}

// ItemList is a relation of items that may or may not have been fetched from
// the store. The zero value is the not-loaded state, so a row hydrated
// without its relation cannot be mistaken for an order with zero items.
type ItemList struct {
	loaded bool
	items  []Item
}

// LoadedItems marks the relation as fetched with the given items.
func LoadedItems(items []Item) ItemList {
	return ItemList{loaded: true, items: items}
}

// NotLoadedItems marks the relation as not fetched.
func NotLoadedItems() ItemList {
	return ItemList{}
}

// Loaded reports whether the relation has been fetched.
func (l ItemList) Loaded() bool { return l.loaded }

// Items returns the fetched items. ok is false when the relation was never
// loaded; in that case the slice is nil and says nothing about the order.
func (l ItemList) Items() (items []Item, ok bool) {
	if !l.loaded {
		return nil, false
	}
	return l.items, true
}

// MustItems returns the fetched items and an empty slice for a not-loaded
// relation. Use only where emptiness and absence are equivalent.
func (l ItemList) MustItems() []Item {
	return l.items
}

func (l ItemList) append(item Item) ItemList {
	next := make([]Item, 0, len(l.items)+1)
	next = append(next, l.items...)
	next = append(next, item)
	return ItemList{loaded: true, items: next}
}
