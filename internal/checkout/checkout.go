package checkout

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/OlegStrokan/free-ebay-sub000/internal/checkout/sagalog"
	"github.com/OlegStrokan/free-ebay-sub000/internal/command"
	"github.com/OlegStrokan/free-ebay-sub000/internal/domain/order"
)

// PlaceOrder is the checkout request: convert the given cart into a paid
// order. CustomerID may be empty, in which case the cart's owner is used.
type PlaceOrder struct {
	CartID              string
	CustomerID          string
	PaymentMethod       string
	Currency            string
	DeliveryAddress     string
	SpecialInstructions string
	ShippingOptions     order.ShippingOptions
}

// PlacedOrder is the fully assembled result of a successful checkout.
type PlacedOrder struct {
	Order    order.Order
	Parcels  []order.Parcel
	Shipping order.ShippingCost
	Payment  order.Payment
}

// Service runs the checkout saga. One instance is wired in the composition
// root and shared by all requests.
type Service struct {
	store          command.Store
	carts          CartSource
	gateway        PaymentGateway
	bus            command.Publisher
	grouping       order.GroupingStrategy
	sagaLog        sagalog.Repository
	paymentTimeout time.Duration
	logger         *slog.Logger
}

func NewService(
	store command.Store,
	carts CartSource,
	gateway PaymentGateway,
	bus command.Publisher,
	grouping order.GroupingStrategy,
	sagaLog sagalog.Repository,
	paymentTimeout time.Duration,
	logger *slog.Logger,
) *Service {
	if grouping == nil {
		grouping = order.OneParcelPerItem{}
	}
	if paymentTimeout <= 0 {
		paymentTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:          store,
		carts:          carts,
		gateway:        gateway,
		bus:            bus,
		grouping:       grouping,
		sagaLog:        sagaLog,
		paymentTimeout: paymentTimeout,
		logger:         logger,
	}
}

// PlaceOrder executes the saga. On failure the error is returned unchanged
// (order.ErrCartNotFound, order.ErrCartEmpty, *order.PaymentFailedError,
// store errors); whatever was persisted before the failing step remains
// persisted, and the cart is only cleared on full success.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrder) (PlacedOrder, error) {
	// The order id doubles as the saga id so log rows join with business
	// data; it is generated up front and stamped onto the aggregate.
	orderID := uuid.NewString()
	state := &sagaState{orderID: orderID, req: req}

	steps := []Step{
		&loadCartStep{source: s.carts, state: state},
		&persistOrderStep{store: s.store, state: state},
		&deriveShipmentStep{store: s.store, grouping: s.grouping, state: state},
		&chargePaymentStep{gateway: s.gateway, timeout: s.paymentTimeout, state: state},
		&finalizeStep{store: s.store, source: s.carts, bus: s.bus, state: state},
	}

	saga := NewOrchestrator(orderID, req.CartID, steps, s.sagaLog, s.logger)
	if err := saga.Start(ctx); err != nil {
		return PlacedOrder{}, err
	}

	s.logger.InfoContext(ctx, "checkout completed",
		"order_id", state.ord.ID,
		"cart_id", req.CartID,
		"total_amount", state.ord.TotalAmount,
		"payment_status", state.payment.Status,
	)

	return PlacedOrder{
		Order:    state.ord,
		Parcels:  state.parcels,
		Shipping: state.shipping,
		Payment:  state.payment,
	}, nil
}
