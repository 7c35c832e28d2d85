package eventbus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/OlegStrokan/free-ebay-sub000/internal/domain/order"
)

func TestBus_FanOutInRegistrationOrder(t *testing.T) {
	bus := New(nil)
	var calls []string
	bus.Subscribe(order.EventKindCancelled, HandlerFunc(func(ctx context.Context, e order.Event) error {
		calls = append(calls, "first")
		return nil
	}))
	bus.Subscribe(order.EventKindCancelled, HandlerFunc(func(ctx context.Context, e order.Event) error {
		calls = append(calls, "second")
		return nil
	}))

	bus.Publish(context.Background(), order.Cancelled{OrderID: "o-1", Timestamp: time.Now()})

	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestBus_HandlerFailureDoesNotStopOthers(t *testing.T) {
	bus := New(nil)
	var reached bool
	bus.Subscribe(order.EventKindShipped, HandlerFunc(func(ctx context.Context, e order.Event) error {
		return errors.New("projector down")
	}))
	bus.Subscribe(order.EventKindShipped, HandlerFunc(func(ctx context.Context, e order.Event) error {
		reached = true
		return nil
	}))

	bus.Publish(context.Background(), order.Shipped{OrderID: "o-1", Timestamp: time.Now()})

	assert.True(t, reached)
}

func TestBus_UnknownKindIsANoOp(t *testing.T) {
	bus := New(nil)
	assert.NotPanics(t, func() {
		bus.Publish(context.Background(), order.Completed{OrderID: "o-1", Timestamp: time.Now()})
	})
}

func TestBus_DispatchesByKind(t *testing.T) {
	bus := New(nil)
	var shipped, cancelled int
	bus.Subscribe(order.EventKindShipped, HandlerFunc(func(ctx context.Context, e order.Event) error {
		shipped++
		return nil
	}))
	bus.Subscribe(order.EventKindCancelled, HandlerFunc(func(ctx context.Context, e order.Event) error {
		cancelled++
		return nil
	}))

	bus.Publish(context.Background(), order.Shipped{OrderID: "o-1", Timestamp: time.Now()})
	bus.Publish(context.Background(), order.Shipped{OrderID: "o-2", Timestamp: time.Now()})

	assert.Equal(t, 2, shipped)
	assert.Equal(t, 0, cancelled)
}
