package httpapi

import (
	"time"

	"github.com/OlegStrokan/free-ebay-sub000/internal/checkout"
	"github.com/OlegStrokan/free-ebay-sub000/internal/domain/order"
	"github.com/OlegStrokan/free-ebay-sub000/internal/readmodel"
)

type CreateOrderRequest struct {
	CustomerID string             `json:"customer_id"`
	Items      []OrderItemRequest `json:"items"`
}

type OrderItemRequest struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     int64   `json:"price"`
	WeightKG  float64 `json:"weight_kg,omitempty"`
}

type CheckoutRequest struct {
	CartID              string `json:"cart_id"`
	CustomerID          string `json:"customer_id,omitempty"`
	PaymentMethod       string `json:"payment_method"`
	Currency            string `json:"currency,omitempty"`
	DeliveryAddress     string `json:"delivery_address,omitempty"`
	SpecialInstructions string `json:"special_instructions,omitempty"`
	Express             bool   `json:"express,omitempty"`
	Fragile             bool   `json:"fragile,omitempty"`
	Insurance           bool   `json:"insurance,omitempty"`
}

type ShipOrderRequest struct {
	TrackingNumber string    `json:"tracking_number"`
	DeliveryDate   time.Time `json:"delivery_date"`
}

type OrderResponse struct {
	ID             string              `json:"id"`
	CustomerID     string              `json:"customer_id"`
	Status         string              `json:"status"`
	TotalAmount    int64               `json:"total_amount"`
	TrackingNumber string              `json:"tracking_number,omitempty"`
	DeliveryDate   *time.Time          `json:"delivery_date,omitempty"`
	Items          []OrderItemResponse `json:"items"`
	CreatedAt      time.Time           `json:"created_at"`
}

type OrderItemResponse struct {
	ID        string  `json:"id"`
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     int64   `json:"price"`
	WeightKG  float64 `json:"weight_kg,omitempty"`
}

type CheckoutResponse struct {
	Order    OrderResponse    `json:"order"`
	Payment  PaymentResponse  `json:"payment"`
	Shipping ShippingResponse `json:"shipping"`
	Parcels  []ParcelResponse `json:"parcels"`
}

type PaymentResponse struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	Amount        int64  `json:"amount"`
	TransactionID string `json:"transaction_id,omitempty"`
	ClientSecret  string `json:"client_secret,omitempty"`
}

type ShippingResponse struct {
	ID            string  `json:"id"`
	Cost          int64   `json:"cost"`
	TotalWeightKG float64 `json:"total_weight_kg"`
}

type ParcelResponse struct {
	ID             string  `json:"id"`
	TrackingNumber string  `json:"tracking_number"`
	WeightKG       float64 `json:"weight_kg"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func orderResponseFromDomain(o order.Order) OrderResponse {
	items := make([]OrderItemResponse, 0)
	for _, it := range o.Items.MustItems() {
		items = append(items, OrderItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.UnitPrice,
			WeightKG:  it.WeightKG,
		})
	}
	return OrderResponse{
		ID:             o.ID,
		CustomerID:     o.CustomerID,
		Status:         string(o.Status),
		TotalAmount:    o.TotalAmount,
		TrackingNumber: o.TrackingNumber,
		DeliveryDate:   o.DeliveryDate,
		Items:          items,
		CreatedAt:      o.CreatedAt,
	}
}

func orderResponseFromRow(row readmodel.OrderRow) OrderResponse {
	items := make([]OrderItemResponse, 0, len(row.Items))
	for _, it := range row.Items {
		items = append(items, OrderItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.UnitPrice,
			WeightKG:  it.WeightKG,
		})
	}
	return OrderResponse{
		ID:             row.ID,
		CustomerID:     row.CustomerID,
		Status:         row.Status,
		TotalAmount:    row.TotalAmount,
		TrackingNumber: row.TrackingNumber,
		DeliveryDate:   row.DeliveryDate,
		Items:          items,
		CreatedAt:      row.CreatedAt,
	}
}

func checkoutResponse(placed checkout.PlacedOrder) CheckoutResponse {
	parcels := make([]ParcelResponse, 0, len(placed.Parcels))
	for _, p := range placed.Parcels {
		parcels = append(parcels, ParcelResponse{
			ID:             p.ID,
			TrackingNumber: p.TrackingNumber,
			WeightKG:       p.WeightKG,
		})
	}
	return CheckoutResponse{
		Order: orderResponseFromDomain(placed.Order),
		Payment: PaymentResponse{
			ID:            placed.Payment.ID,
			Status:        string(placed.Payment.Status),
			Amount:        placed.Payment.Amount,
			TransactionID: placed.Payment.TransactionID,
			ClientSecret:  placed.Payment.ClientSecret,
		},
		Shipping: ShippingResponse{
			ID:            placed.Shipping.ID,
			Cost:          placed.Shipping.Cost,
			TotalWeightKG: placed.Shipping.TotalWeightKG,
		},
		Parcels: parcels,
	}
}
