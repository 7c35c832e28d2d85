package order

import "time"

// Event kinds, used by the bus registry and as the Kafka message type header.
const (
	EventKindCreated   = "order.created"
	EventKindShipped   = "order.shipped"
	EventKindCancelled = "order.cancelled"
	EventKindDelivered = "order.delivered"
	EventKindCompleted = "order.completed"
)

// Event is an immutable fact emitted by a command handler after the
// command-store write has been persisted. Events carry a snapshot of the
// fields downstream projectors need, so they never have to re-read the
// command store.
type Event interface {
	Kind() string
	AggregateID() string
	OccurredAt() time.Time
}

// EventItem is the item snapshot embedded in Created events.
type EventItem struct {
	ID        string  `json:"id"`
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice int64   `json:"unit_price"`
	WeightKG  float64 `json:"weight_kg"`
}

// EventShipping is the shipping-cost snapshot carried by Created events
// emitted from checkout; nil when the order was created without one.
type EventShipping struct {
	ID            string  `json:"id"`
	Cost          int64   `json:"cost"`
	TotalWeightKG float64 `json:"total_weight_kg"`
}

// EventParcel is the parcel snapshot embedded in Created events.
type EventParcel struct {
	ID             string  `json:"id"`
	TrackingNumber string  `json:"tracking_number"`
	WeightKG       float64 `json:"weight_kg"`
}

// Created is emitted once the order and its derived parcels are durable in
// the command store.
type Created struct {
	OrderID     string         `json:"order_id"`
	CustomerID  string         `json:"customer_id"`
	Items       []EventItem    `json:"items"`
	TotalAmount int64          `json:"total_amount"`
	Status      Status         `json:"status"`
	Parcels     []EventParcel  `json:"parcels"`
	Shipping    *EventShipping `json:"shipping,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	Timestamp   time.Time      `json:"timestamp"`
}

func (e Created) Kind() string          { return EventKindCreated }
func (e Created) AggregateID() string   { return e.OrderID }
func (e Created) OccurredAt() time.Time { return e.Timestamp }

// Shipped is emitted after a successful Ship transition.
type Shipped struct {
	OrderID        string    `json:"order_id"`
	TrackingNumber string    `json:"tracking_number"`
	DeliveryDate   time.Time `json:"delivery_date"`
	Timestamp      time.Time `json:"timestamp"`
}

func (e Shipped) Kind() string          { return EventKindShipped }
func (e Shipped) AggregateID() string   { return e.OrderID }
func (e Shipped) OccurredAt() time.Time { return e.Timestamp }

// Cancelled is emitted after a successful Cancel transition.
type Cancelled struct {
	OrderID   string    `json:"order_id"`
	Timestamp time.Time `json:"timestamp"`
}

func (e Cancelled) Kind() string          { return EventKindCancelled }
func (e Cancelled) AggregateID() string   { return e.OrderID }
func (e Cancelled) OccurredAt() time.Time { return e.Timestamp }

// Delivered is emitted after a successful Deliver transition.
type Delivered struct {
	OrderID   string    `json:"order_id"`
	Timestamp time.Time `json:"timestamp"`
}

func (e Delivered) Kind() string          { return EventKindDelivered }
func (e Delivered) AggregateID() string   { return e.OrderID }
func (e Delivered) OccurredAt() time.Time { return e.Timestamp }

// Completed is emitted after a successful Complete transition.
type Completed struct {
	OrderID   string    `json:"order_id"`
	Timestamp time.Time `json:"timestamp"`
}

func (e Completed) Kind() string          { return EventKindCompleted }
func (e Completed) AggregateID() string   { return e.OrderID }
func (e Completed) OccurredAt() time.Time { return e.Timestamp }

// NewCreated snapshots an order and its parcels into a Created event.
func NewCreated(o Order, parcels []Parcel) Created {
	items := o.Items.MustItems()
	snap := make([]EventItem, 0, len(items))
	for _, it := range items {
		snap = append(snap, EventItem{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			WeightKG:  it.WeightKG,
		})
	}
	parcelSnap := make([]EventParcel, 0, len(parcels))
	for _, p := range parcels {
		parcelSnap = append(parcelSnap, EventParcel{
			ID:             p.ID,
			TrackingNumber: p.TrackingNumber,
			WeightKG:       p.WeightKG,
		})
	}
	return Created{
		OrderID:     o.ID,
		CustomerID:  o.CustomerID,
		Items:       snap,
		TotalAmount: o.TotalAmount,
		Status:      o.Status,
		Parcels:     parcelSnap,
		CreatedAt:   o.CreatedAt,
		Timestamp:   time.Now().UTC(),
	}
}
