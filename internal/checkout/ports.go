// Package checkout orchestrates the order-creation saga: consume a cart,
// persist the order with its derived shipment records, charge the payment
// gateway, and finalize. Failures are visible, not hidden: every record
// written before the failing step stays persisted and clearly unpaid, and
// the cart is only cleared after a successful charge so a resubmission never
// loses data or double-derives state.
package checkout

import (
	"context"

	"github.com/OlegStrokan/free-ebay-sub000/internal/cart"
)

// CartSource supplies carts with their items. GetCartWithItems returns a nil
// cart when the id is unknown.
type CartSource interface {
	GetCartWithItems(ctx context.Context, cartID string) (*cart.Cart, error)
	Clear(ctx context.Context, cartID string) error
}

// Money is an amount in a currency's minor units; Fraction is the number of
// decimal digits of that currency (2 for EUR/USD).
type Money struct {
	Value    int64  `json:"value"`
	Currency string `json:"currency"`
	Fraction int    `json:"fraction"`
}

// GatewayRequest is the charge instruction sent to the payment gateway.
type GatewayRequest struct {
	PaymentID string `json:"payment_id"`
	OrderID   string `json:"order_id"`
	Amount    Money  `json:"amount"`
	Method    string `json:"method"`
}

// GatewayBody is the decoded response body of a successful charge.
type GatewayBody struct {
	PaymentStatus string `json:"payment_status"`
	TransactionID string `json:"transaction_id"`
	ClientSecret  string `json:"client_secret"`
}

// GatewayResult carries the raw status code plus the decoded body, which is
// nil when the response could not be decoded. Anything outside [200,300) or
// a nil body counts as failure.
type GatewayResult struct {
	StatusCode int
	Body       *GatewayBody
}

// Ok reports whether the gateway accepted the charge.
func (r GatewayResult) Ok() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300 && r.Body != nil
}

// PaymentGateway is the external payment collaborator. The call is bounded
// by the context deadline the saga applies; a timeout is treated exactly
// like a declined charge.
type PaymentGateway interface {
	ProcessPayment(ctx context.Context, req GatewayRequest) (GatewayResult, error)
}
