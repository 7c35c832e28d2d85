package order

import (
	"errors"
	"fmt"
)

var (
	// ErrOrderNotFound is returned when an order id resolves to nothing in
	// the consulted store. On the query side this can simply mean the read
	// model has not caught up yet; callers there may retry.
	ErrOrderNotFound = errors.New("order not found")

	// ErrCartNotFound is returned by the checkout saga when the source cart
	// id resolves to nothing.
	ErrCartNotFound = errors.New("cart not found")

	// ErrCartEmpty is returned by the checkout saga when the source cart has
	// no items to convert.
	ErrCartEmpty = errors.New("cart has no items")

	// ErrVersionConflict is returned by the command store when an update
	// loses an optimistic-concurrency race for the same order id.
	ErrVersionConflict = errors.New("order version conflict")

	// ErrNilItem is returned by AddItem for a nil item.
	ErrNilItem = errors.New("order item is nil")

	// ErrItemsNotLoaded is returned by operations that need the items
	// relation when it was never fetched from the store.
	ErrItemsNotLoaded = errors.New("order items relation not loaded")
)

// StatusTransitionError signals an attempt to move an order along an edge
// that is not in the transition table. The order is left unchanged.
type StatusTransitionError struct {
	From Status
	To   Status
}

func (e *StatusTransitionError) Error() string {
	return fmt.Sprintf("illegal order status transition %s -> %s", e.From, e.To)
}

// InvalidOrderItemError signals an item value that violates construction
// invariants (quantity > 0, unit price >= 0).
type InvalidOrderItemError struct {
	ProductID string
	Reason    string
}

func (e *InvalidOrderItemError) Error() string {
	return fmt.Sprintf("invalid order item %q: %s", e.ProductID, e.Reason)
}

// PaymentFailedError signals a declined, malformed or timed-out payment
// gateway response during checkout. The order and its pending payment remain
// persisted as a record of the attempt; the cart is left intact so the caller
// can resubmit safely.
type PaymentFailedError struct {
	OrderID string
	Cause   error
}

func (e *PaymentFailedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("payment failed for order %s: %v", e.OrderID, e.Cause)
	}
	return fmt.Sprintf("payment failed for order %s", e.OrderID)
}

func (e *PaymentFailedError) Unwrap() error { return e.Cause }
