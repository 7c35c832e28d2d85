// Package readmodel defines the denormalized rows of the query store and the
// port for writing and reading them. Rows are written only by projectors
// reacting to domain events; they may lag the command store by the event
// delivery latency and are never consulted for mutation decisions.
package readmodel

import (
	"context"
	"time"
)

// OrderRow is the read-optimized order projection, items included.
type OrderRow struct {
	ID             string     `json:"id"`
	CustomerID     string     `json:"customer_id"`
	Status         string     `json:"status"`
	TotalAmount    int64      `json:"total_amount"`
	TrackingNumber string     `json:"tracking_number,omitempty"`
	DeliveryDate   *time.Time `json:"delivery_date,omitempty"`
	Items          []ItemRow  `json:"items"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ItemRow is a projected order line.
type ItemRow struct {
	ID        string  `json:"id"`
	OrderID   string  `json:"order_id"`
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice int64   `json:"unit_price"`
	WeightKG  float64 `json:"weight_kg"`
}

// ParcelRow is a projected parcel.
type ParcelRow struct {
	ID             string    `json:"id"`
	OrderID        string    `json:"order_id"`
	TrackingNumber string    `json:"tracking_number"`
	WeightKG       float64   `json:"weight_kg"`
	CreatedAt      time.Time `json:"created_at"`
}

// ShippingRow is the projected shipping cost of an order.
type ShippingRow struct {
	ID            string  `json:"id"`
	OrderID       string  `json:"order_id"`
	Cost          int64   `json:"cost"`
	TotalWeightKG float64 `json:"total_weight_kg"`
}

// Store is the query-store port. UpsertOrder must be idempotent by order id:
// replaying the same event yields one row, with items replaced wholesale.
// Find methods return order.ErrOrderNotFound when the row does not exist —
// on a fresh order that usually means the projection has not caught up yet.
type Store interface {
	UpsertOrder(ctx context.Context, row OrderRow) error
	SaveOrder(ctx context.Context, row OrderRow) error
	FindOrderByID(ctx context.Context, id string) (OrderRow, error)
	FindOrdersByCustomer(ctx context.Context, customerID string) ([]OrderRow, error)
	UpsertParcels(ctx context.Context, rows []ParcelRow) error
	UpsertShippingCost(ctx context.Context, row ShippingRow) error
}
