package order

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus is the lifecycle state of a payment record.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
	PaymentFailed  PaymentStatus = "FAILED"
)

// Payment methods accepted at checkout. Cash on delivery settles offline and
// never reaches the gateway.
const (
	MethodCashOnDelivery = "cash_on_delivery"
	MethodCard           = "card"
)

// Payment is the record of a payment attempt for an order. It is created
// Pending before the gateway call and updated from the gateway's response;
// a failed attempt stays persisted as a record, never deleted.
type Payment struct {
	ID            string
	OrderID       string
	Amount        int64
	Currency      string
	Method        string
	Status        PaymentStatus
	TransactionID string
	ClientSecret  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewPendingPayment builds the Pending payment record for an order.
func NewPendingPayment(orderID string, amount int64, currency, method string) Payment {
	now := time.Now().UTC()
	return Payment{
		ID:        uuid.NewString(),
		OrderID:   orderID,
		Amount:    amount,
		Currency:  currency,
		Method:    method,
		Status:    PaymentPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
