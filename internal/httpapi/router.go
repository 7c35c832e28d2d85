package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Post("/checkout", h.Checkout)

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.CreateOrder)
		r.Get("/{id}", h.GetOrder)
		r.Post("/{id}/ship", h.ShipOrder)
		r.Post("/{id}/cancel", h.CancelOrder)
		r.Post("/{id}/deliver", h.DeliverOrder)
		r.Post("/{id}/complete", h.CompleteOrder)
	})

	r.Get("/customers/{id}/orders", h.ListCustomerOrders)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return r
}
