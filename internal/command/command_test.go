package command

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OlegStrokan/free-ebay-sub000/internal/domain/order"
)

// fakeStore is an in-memory command store that records call order so tests
// can assert persist-before-publish.
type fakeStore struct {
	orders   map[string]order.Order
	parcels  []order.Parcel
	payments map[string]order.Payment
	calls    []string

	updateErr error
	insertErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		orders:   make(map[string]order.Order),
		payments: make(map[string]order.Payment),
	}
}

func (s *fakeStore) InsertOrder(_ context.Context, o order.Order) error {
	s.calls = append(s.calls, "InsertOrder")
	if s.insertErr != nil {
		return s.insertErr
	}
	s.orders[o.ID] = o
	return nil
}

func (s *fakeStore) UpdateOrder(_ context.Context, o order.Order) (order.Order, error) {
	s.calls = append(s.calls, "UpdateOrder")
	if s.updateErr != nil {
		return order.Order{}, s.updateErr
	}
	if _, ok := s.orders[o.ID]; !ok {
		return order.Order{}, order.ErrOrderNotFound
	}
	o.Version++
	s.orders[o.ID] = o
	return o, nil
}

func (s *fakeStore) FindOrderByID(_ context.Context, id string) (order.Order, error) {
	s.calls = append(s.calls, "FindOrderByID")
	o, ok := s.orders[id]
	if !ok {
		return order.Order{}, order.ErrOrderNotFound
	}
	return o, nil
}

func (s *fakeStore) InsertParcels(_ context.Context, parcels []order.Parcel) error {
	s.calls = append(s.calls, "InsertParcels")
	s.parcels = append(s.parcels, parcels...)
	return nil
}

func (s *fakeStore) InsertShippingCost(_ context.Context, _ order.ShippingCost) error {
	s.calls = append(s.calls, "InsertShippingCost")
	return nil
}

func (s *fakeStore) InsertPayment(_ context.Context, p order.Payment) error {
	s.calls = append(s.calls, "InsertPayment")
	s.payments[p.ID] = p
	return nil
}

func (s *fakeStore) UpdatePayment(_ context.Context, p order.Payment) error {
	s.calls = append(s.calls, "UpdatePayment")
	s.payments[p.ID] = p
	return nil
}

type capturingBus struct {
	events []order.Event
}

func (b *capturingBus) Publish(_ context.Context, e order.Event) {
	b.events = append(b.events, e)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestCreateOrderHandler(t *testing.T) {
	store := newFakeStore()
	bus := &capturingBus{}
	h := NewCreateOrderHandler(store, bus, nil, discardLogger())

	o, err := h.Handle(context.Background(), CreateOrder{
		CustomerID: "customer-1",
		Items: []ItemInput{
			{ProductID: "prod-a", Quantity: 2, UnitPrice: 250, WeightKG: 1},
			{ProductID: "prod-b", Quantity: 1, UnitPrice: 500, WeightKG: 0.5},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1000), o.TotalAmount)
	assert.Equal(t, order.StatusCreated, o.Status)
	assert.Contains(t, store.orders, o.ID)
	assert.Len(t, store.parcels, 2)

	require.Len(t, bus.events, 1)
	created, ok := bus.events[0].(order.Created)
	require.True(t, ok)
	assert.Equal(t, o.ID, created.OrderID)
	assert.Len(t, created.Parcels, 2)

	// The event leaves only after every write landed.
	assert.Equal(t, []string{"InsertOrder", "InsertParcels"}, store.calls)
}

func TestCreateOrderHandler_RejectsInvalidItem(t *testing.T) {
	store := newFakeStore()
	bus := &capturingBus{}
	h := NewCreateOrderHandler(store, bus, nil, discardLogger())

	_, err := h.Handle(context.Background(), CreateOrder{
		CustomerID: "customer-1",
		Items:      []ItemInput{{ProductID: "prod-a", Quantity: 0, UnitPrice: 100}},
	})

	var ierr *order.InvalidOrderItemError
	require.ErrorAs(t, err, &ierr)
	assert.Empty(t, store.calls, "nothing may be persisted for an invalid command")
	assert.Empty(t, bus.events)
}

func TestShipOrderHandler(t *testing.T) {
	store := newFakeStore()
	bus := &capturingBus{}
	o := order.New("customer-1", nil)
	store.orders[o.ID] = o
	h := NewShipOrderHandler(store, bus, discardLogger())

	due := time.Now().Add(72 * time.Hour)
	err := h.Handle(context.Background(), ShipOrder{OrderID: o.ID, TrackingNumber: "TRK-9", DeliveryDate: due})
	require.NoError(t, err)

	stored := store.orders[o.ID]
	assert.Equal(t, order.StatusShipped, stored.Status)
	assert.Equal(t, "TRK-9", stored.TrackingNumber)
	assert.Equal(t, 1, stored.Version)

	require.Len(t, bus.events, 1)
	shipped, ok := bus.events[0].(order.Shipped)
	require.True(t, ok)
	assert.Equal(t, "TRK-9", shipped.TrackingNumber)
}

func TestShipOrderHandler_OrderNotFound(t *testing.T) {
	store := newFakeStore()
	bus := &capturingBus{}
	h := NewShipOrderHandler(store, bus, discardLogger())

	err := h.Handle(context.Background(), ShipOrder{OrderID: "missing"})
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
	assert.Empty(t, bus.events)
}

func TestCancelOrderHandler_IllegalTransitionPublishesNothing(t *testing.T) {
	store := newFakeStore()
	bus := &capturingBus{}
	o := order.New("customer-1", nil)
	o.Status = order.StatusShipped
	store.orders[o.ID] = o
	h := NewCancelOrderHandler(store, bus, discardLogger())

	err := h.Handle(context.Background(), CancelOrder{OrderID: o.ID})

	var terr *order.StatusTransitionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, order.StatusShipped, store.orders[o.ID].Status)
	assert.Empty(t, bus.events)
}

func TestLifecycleHandlers_VersionConflictSurfaces(t *testing.T) {
	store := newFakeStore()
	bus := &capturingBus{}
	o := order.New("customer-1", nil)
	o.Status = order.StatusShipped
	store.orders[o.ID] = o
	store.updateErr = order.ErrVersionConflict
	h := NewDeliverOrderHandler(store, bus, discardLogger())

	err := h.Handle(context.Background(), DeliverOrder{OrderID: o.ID})

	assert.ErrorIs(t, err, order.ErrVersionConflict)
	assert.Empty(t, bus.events, "a lost write race must not publish")
}

func TestDeliverThenCompleteHandlers(t *testing.T) {
	store := newFakeStore()
	bus := &capturingBus{}
	o := order.New("customer-1", nil)
	o.Status = order.StatusShipped
	store.orders[o.ID] = o

	err := NewDeliverOrderHandler(store, bus, discardLogger()).
		Handle(context.Background(), DeliverOrder{OrderID: o.ID})
	require.NoError(t, err)
	assert.Equal(t, order.StatusDelivered, store.orders[o.ID].Status)

	err = NewCompleteOrderHandler(store, bus, discardLogger()).
		Handle(context.Background(), CompleteOrder{OrderID: o.ID})
	require.NoError(t, err)
	assert.Equal(t, order.StatusCompleted, store.orders[o.ID].Status)

	require.Len(t, bus.events, 2)
	assert.Equal(t, order.EventKindDelivered, bus.events[0].Kind())
	assert.Equal(t, order.EventKindCompleted, bus.events[1].Kind())
}
