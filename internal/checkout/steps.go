package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/OlegStrokan/free-ebay-sub000/internal/cart"
	"github.com/OlegStrokan/free-ebay-sub000/internal/command"
	"github.com/OlegStrokan/free-ebay-sub000/internal/domain/order"
)

// sagaState is the working set shared by the checkout steps. Each step reads
// what its predecessors produced and records its own output here.
type sagaState struct {
	orderID string
	req     PlaceOrder

	cart     *cart.Cart
	ord      order.Order
	parcels  []order.Parcel
	shipping order.ShippingCost
	payment  order.Payment
	gateway  *GatewayBody
}

// --- load cart ---

type loadCartStep struct {
	source CartSource
	state  *sagaState
}

func (s *loadCartStep) Name() string { return "load_cart" }

func (s *loadCartStep) Execute(ctx context.Context) error {
	c, err := s.source.GetCartWithItems(ctx, s.state.req.CartID)
	if err != nil {
		return fmt.Errorf("load cart %q: %w", s.state.req.CartID, err)
	}
	if c == nil {
		return order.ErrCartNotFound
	}
	if len(c.Items) == 0 {
		return order.ErrCartEmpty
	}
	s.state.cart = c
	return nil
}

func (s *loadCartStep) Compensate(ctx context.Context) error { return nil }

// --- persist order ---

type persistOrderStep struct {
	store command.Store
	state *sagaState
}

func (s *persistOrderStep) Name() string { return "persist_order" }

func (s *persistOrderStep) Execute(ctx context.Context) error {
	items := make([]order.Item, 0, len(s.state.cart.Items))
	for _, ci := range s.state.cart.Items {
		it, err := order.NewItem(ci.ProductID, ci.Quantity, ci.UnitPrice, ci.WeightKG)
		if err != nil {
			return err
		}
		items = append(items, it)
	}

	customerID := s.state.req.CustomerID
	if customerID == "" {
		customerID = s.state.cart.CustomerID
	}

	o := order.New(customerID, items)
	o.ID = s.state.orderID
	o.DeliveryAddress = s.state.req.DeliveryAddress
	o.PaymentMethod = s.state.req.PaymentMethod
	o.SpecialInstructions = s.state.req.SpecialInstructions

	if err := s.store.InsertOrder(ctx, o); err != nil {
		return fmt.Errorf("persist order: %w", err)
	}
	s.state.ord = o
	return nil
}

// The order row stays persisted as a record of the attempt; it is
// distinguishable as unpaid through its payment row.
func (s *persistOrderStep) Compensate(ctx context.Context) error { return nil }

// --- derive shipment and pending payment ---

type deriveShipmentStep struct {
	store    command.Store
	grouping order.GroupingStrategy
	state    *sagaState
}

func (s *deriveShipmentStep) Name() string { return "derive_shipment" }

func (s *deriveShipmentStep) Execute(ctx context.Context) error {
	parcels, err := order.BuildParcels(s.state.ord, s.grouping, time.Now().UTC())
	if err != nil {
		return err
	}
	if err := s.store.InsertParcels(ctx, parcels); err != nil {
		return fmt.Errorf("persist parcels: %w", err)
	}

	sc := order.ComputeShippingCost(s.state.ord, parcels, s.state.req.ShippingOptions)
	if err := s.store.InsertShippingCost(ctx, sc); err != nil {
		return fmt.Errorf("persist shipping cost: %w", err)
	}

	p := order.NewPendingPayment(
		s.state.ord.ID,
		s.state.ord.TotalAmount+sc.Cost,
		s.state.req.Currency,
		s.state.req.PaymentMethod,
	)
	if err := s.store.InsertPayment(ctx, p); err != nil {
		return fmt.Errorf("persist payment: %w", err)
	}

	s.state.parcels = parcels
	s.state.shipping = sc
	s.state.payment = p
	return nil
}

// Compensate marks the payment row Failed instead of deleting anything, so
// the failed attempt stays diagnosable and the order is visibly unpaid.
func (s *deriveShipmentStep) Compensate(ctx context.Context) error {
	p := s.state.payment
	p.Status = order.PaymentFailed
	p.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdatePayment(ctx, p); err != nil {
		return fmt.Errorf("mark payment failed: %w", err)
	}
	s.state.payment = p
	return nil
}

// --- charge payment gateway ---

type chargePaymentStep struct {
	gateway PaymentGateway
	timeout time.Duration
	state   *sagaState
}

func (s *chargePaymentStep) Name() string { return "charge_payment" }

func (s *chargePaymentStep) Execute(ctx context.Context) error {
	// Cash on delivery settles offline; the payment record stays Pending.
	if s.state.req.PaymentMethod == order.MethodCashOnDelivery {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.gateway.ProcessPayment(ctx, GatewayRequest{
		PaymentID: s.state.payment.ID,
		OrderID:   s.state.ord.ID,
		Amount: Money{
			Value:    s.state.payment.Amount,
			Currency: s.state.payment.Currency,
			Fraction: 2,
		},
		Method: s.state.req.PaymentMethod,
	})
	if err != nil {
		return &order.PaymentFailedError{OrderID: s.state.ord.ID, Cause: err}
	}
	if !res.Ok() {
		return &order.PaymentFailedError{
			OrderID: s.state.ord.ID,
			Cause:   fmt.Errorf("gateway returned status %d", res.StatusCode),
		}
	}
	s.state.gateway = res.Body
	return nil
}

// The charge is a single call with no retry loop: at most once, with a
// visible failure. There is nothing to refund on our side when it fails.
func (s *chargePaymentStep) Compensate(ctx context.Context) error { return nil }

// --- finalize ---

type finalizeStep struct {
	store  command.Store
	source CartSource
	bus    command.Publisher
	state  *sagaState
}

func (s *finalizeStep) Name() string { return "finalize" }

func (s *finalizeStep) Execute(ctx context.Context) error {
	if s.state.gateway != nil {
		p := s.state.payment
		p.Status = paymentStatusFrom(s.state.gateway.PaymentStatus)
		p.TransactionID = s.state.gateway.TransactionID
		p.ClientSecret = s.state.gateway.ClientSecret
		p.UpdatedAt = time.Now().UTC()
		if err := s.store.UpdatePayment(ctx, p); err != nil {
			return fmt.Errorf("record payment result: %w", err)
		}
		s.state.payment = p
	}

	o := s.state.ord
	o.PaymentID = s.state.payment.ID
	o.ShipmentID = s.state.shipping.ID
	o, err := s.store.UpdateOrder(ctx, o)
	if err != nil {
		return fmt.Errorf("link shipment and payment: %w", err)
	}
	s.state.ord = o

	// Only a fully charged checkout consumes the cart.
	if err := s.source.Clear(ctx, s.state.req.CartID); err != nil {
		return fmt.Errorf("clear cart %q: %w", s.state.req.CartID, err)
	}

	ev := order.NewCreated(o, s.state.parcels)
	ev.Shipping = &order.EventShipping{
		ID:            s.state.shipping.ID,
		Cost:          s.state.shipping.Cost,
		TotalWeightKG: s.state.shipping.TotalWeightKG,
	}
	s.bus.Publish(ctx, ev)
	return nil
}

func (s *finalizeStep) Compensate(ctx context.Context) error { return nil }

func paymentStatusFrom(gatewayStatus string) order.PaymentStatus {
	switch strings.ToLower(gatewayStatus) {
	case "paid", "succeeded", "captured":
		return order.PaymentPaid
	case "failed", "declined":
		return order.PaymentFailed
	default:
		return order.PaymentPending
	}
}
