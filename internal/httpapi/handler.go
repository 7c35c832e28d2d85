// Package httpapi exposes the order core over HTTP: the commands and the
// checkout saga on the write side, the query service on the read side.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/OlegStrokan/free-ebay-sub000/internal/checkout"
	"github.com/OlegStrokan/free-ebay-sub000/internal/command"
	"github.com/OlegStrokan/free-ebay-sub000/internal/domain/order"
	"github.com/OlegStrokan/free-ebay-sub000/internal/query"
)

// Commands groups the write-side handlers the HTTP layer dispatches to.
type Commands struct {
	Create   *command.CreateOrderHandler
	Ship     *command.ShipOrderHandler
	Cancel   *command.CancelOrderHandler
	Deliver  *command.DeliverOrderHandler
	Complete *command.CompleteOrderHandler
}

type Handler struct {
	commands Commands
	checkout *checkout.Service
	queries  *query.Service
	logger   *slog.Logger
}

func NewHandler(commands Commands, checkoutSvc *checkout.Service, queries *query.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{commands: commands, checkout: checkoutSvc, queries: queries, logger: logger}
}

// Checkout converts a cart into a paid order via the saga.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.CartID == "" || req.PaymentMethod == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "cart_id and payment_method are required")
		return
	}
	currency := req.Currency
	if currency == "" {
		currency = "EUR"
	}

	placed, err := h.checkout.PlaceOrder(r.Context(), checkout.PlaceOrder{
		CartID:              req.CartID,
		CustomerID:          req.CustomerID,
		PaymentMethod:       req.PaymentMethod,
		Currency:            currency,
		DeliveryAddress:     req.DeliveryAddress,
		SpecialInstructions: req.SpecialInstructions,
		ShippingOptions: order.ShippingOptions{
			Express:   req.Express,
			Fragile:   req.Fragile,
			Insurance: req.Insurance,
		},
	})
	if err != nil {
		h.writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, checkoutResponse(placed))
}

// CreateOrder opens an order directly from the given items, without a cart
// or payment involved.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.CustomerID == "" || len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "customer_id and items are required")
		return
	}

	items := make([]command.ItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, command.ItemInput{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.Price,
			WeightKG:  it.WeightKG,
		})
	}

	o, err := h.commands.Create.Handle(r.Context(), command.CreateOrder{
		CustomerID: req.CustomerID,
		Items:      items,
	})
	if err != nil {
		h.writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, orderResponseFromDomain(o))
}

// ShipOrder marks an order as handed to the carrier.
func (h *Handler) ShipOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	var req ShipOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.TrackingNumber == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "tracking_number is required")
		return
	}
	if req.DeliveryDate.IsZero() {
		req.DeliveryDate = time.Now().UTC().Add(72 * time.Hour)
	}

	err := h.commands.Ship.Handle(r.Context(), command.ShipOrder{
		OrderID:        orderID,
		TrackingNumber: req.TrackingNumber,
		DeliveryDate:   req.DeliveryDate,
	})
	if err != nil {
		h.writeDomainError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CancelOrder cancels an order that has not shipped.
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	err := h.commands.Cancel.Handle(r.Context(), command.CancelOrder{OrderID: chi.URLParam(r, "id")})
	if err != nil {
		h.writeDomainError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeliverOrder marks a shipped order as delivered.
func (h *Handler) DeliverOrder(w http.ResponseWriter, r *http.Request) {
	err := h.commands.Deliver.Handle(r.Context(), command.DeliverOrder{OrderID: chi.URLParam(r, "id")})
	if err != nil {
		h.writeDomainError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CompleteOrder closes out an order.
func (h *Handler) CompleteOrder(w http.ResponseWriter, r *http.Request) {
	err := h.commands.Complete.Handle(r.Context(), command.CompleteOrder{OrderID: chi.URLParam(r, "id")})
	if err != nil {
		h.writeDomainError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetOrder serves a single order from the read model.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	row, err := h.queries.FindOrderByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, orderResponseFromRow(row))
}

// ListCustomerOrders serves a customer's orders from the read model.
func (h *Handler) ListCustomerOrders(w http.ResponseWriter, r *http.Request) {
	rows, err := h.queries.FindOrdersByCustomer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(r.Context(), w, err)
		return
	}
	out := make([]OrderResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, orderResponseFromRow(row))
	}
	writeJSON(w, http.StatusOK, out)
}

// writeDomainError maps domain errors onto the HTTP surface. Not-found is
// 404 (on the read side that includes projection lag, which the client may
// retry); invariant violations are 422; a payment decline is 402 with the
// order id so the client can reconcile; a lost optimistic-concurrency race
// is 409.
func (h *Handler) writeDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	var (
		transitionErr *order.StatusTransitionError
		itemErr       *order.InvalidOrderItemError
		paymentErr    *order.PaymentFailedError
	)
	switch {
	case errors.Is(err, order.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, "order_not_found", err.Error())
	case errors.Is(err, order.ErrCartNotFound):
		writeError(w, http.StatusNotFound, "cart_not_found", err.Error())
	case errors.Is(err, order.ErrCartEmpty):
		writeError(w, http.StatusUnprocessableEntity, "cart_empty", err.Error())
	case errors.As(err, &transitionErr):
		writeError(w, http.StatusUnprocessableEntity, "illegal_status_transition", err.Error())
	case errors.As(err, &itemErr):
		writeError(w, http.StatusUnprocessableEntity, "invalid_order_item", err.Error())
	case errors.Is(err, order.ErrVersionConflict):
		writeError(w, http.StatusConflict, "version_conflict", err.Error())
	case errors.As(err, &paymentErr):
		writeError(w, http.StatusPaymentRequired, "payment_failed", err.Error())
	default:
		h.logger.ErrorContext(ctx, "request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: msg})
}
