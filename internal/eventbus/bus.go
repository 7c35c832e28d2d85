// Package eventbus is the in-process publish/subscribe mechanism that
// decouples "a fact happened" from "who must react". Handlers are registered
// against an event kind at wiring time; no reflection is involved.
package eventbus

import (
	"context"
	"log/slog"

	"github.com/OlegStrokan/free-ebay-sub000/internal/domain/order"
)

// Handler reacts to a single domain event. Projectors and relays implement
// this interface.
type Handler interface {
	Handle(ctx context.Context, event order.Event) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, event order.Event) error

func (f HandlerFunc) Handle(ctx context.Context, event order.Event) error {
	return f(ctx, event)
}

// Bus fans each published event out to every handler registered for its
// kind, in registration order. Registration happens in the composition root
// before any publish; the bus is not safe for concurrent registration.
type Bus struct {
	handlers map[string][]Handler
	logger   *slog.Logger
}

func New(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

// Subscribe appends a handler for the given event kind.
func (b *Bus) Subscribe(kind string, h Handler) {
	b.handlers[kind] = append(b.handlers[kind], h)
}

// Publish invokes every handler registered for the event's kind and returns
// only after all of them ran, so read-model staleness is bounded by this
// call. A failing handler is logged and skipped; it never prevents the
// remaining handlers from running and never fails the publish.
func (b *Bus) Publish(ctx context.Context, event order.Event) {
	for _, h := range b.handlers[event.Kind()] {
		if err := h.Handle(ctx, event); err != nil {
			b.logger.ErrorContext(ctx, "event handler failed",
				"event", event.Kind(),
				"order_id", event.AggregateID(),
				"error", err,
			)
		}
	}
}
