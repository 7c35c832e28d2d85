// Package order holds the order aggregate: the order itself, its items, the
// parcels and shipping cost derived from them, and the domain events the
// aggregate emits. Everything here is pure; persistence and I/O live in the
// surrounding packages.
//
// Aggregate operations are copy-on-write: each one returns a new Order value
// and never mutates the receiver, so a reference held elsewhere in the
// process cannot observe a half-applied mutation.
package order

import (
	"time"

	"github.com/google/uuid"
)

// Order is the aggregate root. TotalAmount is derived from the items and is
// never set independently; Version backs optimistic concurrency at the
// command store.
type Order struct {
	ID          string
	CustomerID  string
	Items       ItemList
	TotalAmount int64
	Status      Status
	Version     int
	CreatedAt   time.Time

	DeliveryAddress     string
	PaymentMethod       string
	TrackingNumber      string
	DeliveryDate        *time.Time
	Feedback            string
	SpecialInstructions string

	// ShipmentID and PaymentID are linked onto the order by the checkout
	// saga once the corresponding records exist.
	ShipmentID string
	PaymentID  string
}

// New builds a fresh order in the Created state with a generated id.
func New(customerID string, items []Item) Order {
	o := Order{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		Items:      LoadedItems(items),
		Status:     StatusCreated,
		CreatedAt:  time.Now().UTC(),
	}
	o.TotalAmount = sumItems(items)
	return o
}

// AddItem appends an item and recomputes the total. The items relation must
// be loaded; appending to an unfetched relation would silently drop rows.
func (o Order) AddItem(it *Item) (Order, error) {
	if it == nil {
		return o, ErrNilItem
	}
	if !o.Items.Loaded() {
		return o, ErrItemsNotLoaded
	}
	next := o
	next.Items = o.Items.append(*it)
	next.TotalAmount = sumItems(next.Items.MustItems())
	return next, nil
}

// Ship moves the order to Shipped, recording the tracking number and the
// expected delivery date.
func (o Order) Ship(trackingNumber string, deliveryDate time.Time) (Order, error) {
	next, err := o.transition(StatusShipped)
	if err != nil {
		return o, err
	}
	next.TrackingNumber = trackingNumber
	d := deliveryDate
	next.DeliveryDate = &d
	return next, nil
}

// Cancel moves the order to Canceled.
func (o Order) Cancel() (Order, error) {
	return o.transition(StatusCanceled)
}

// Deliver moves the order to Delivered.
func (o Order) Deliver() (Order, error) {
	return o.transition(StatusDelivered)
}

// Complete moves the order to Completed.
func (o Order) Complete() (Order, error) {
	return o.transition(StatusCompleted)
}

func (o Order) transition(to Status) (Order, error) {
	if !o.Status.CanTransition(to) {
		return o, &StatusTransitionError{From: o.Status, To: to}
	}
	next := o
	next.Status = to
	return next, nil
}

func sumItems(items []Item) int64 {
	var total int64
	for _, it := range items {
		total += it.Subtotal()
	}
	return total
}
