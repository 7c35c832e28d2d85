package projection

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OlegStrokan/free-ebay-sub000/internal/domain/order"
	"github.com/OlegStrokan/free-ebay-sub000/internal/eventbus"
	"github.com/OlegStrokan/free-ebay-sub000/internal/readmodel"
)

type memoryReadModel struct {
	orders   map[string]readmodel.OrderRow
	parcels  map[string][]readmodel.ParcelRow
	shipping map[string]readmodel.ShippingRow
}

func newMemoryReadModel() *memoryReadModel {
	return &memoryReadModel{
		orders:   make(map[string]readmodel.OrderRow),
		parcels:  make(map[string][]readmodel.ParcelRow),
		shipping: make(map[string]readmodel.ShippingRow),
	}
}

func (m *memoryReadModel) UpsertOrder(_ context.Context, row readmodel.OrderRow) error {
	m.orders[row.ID] = row
	return nil
}

func (m *memoryReadModel) SaveOrder(_ context.Context, row readmodel.OrderRow) error {
	if _, ok := m.orders[row.ID]; !ok {
		return order.ErrOrderNotFound
	}
	m.orders[row.ID] = row
	return nil
}

func (m *memoryReadModel) FindOrderByID(_ context.Context, id string) (readmodel.OrderRow, error) {
	row, ok := m.orders[id]
	if !ok {
		return readmodel.OrderRow{}, order.ErrOrderNotFound
	}
	return row, nil
}

func (m *memoryReadModel) FindOrdersByCustomer(_ context.Context, customerID string) ([]readmodel.OrderRow, error) {
	var out []readmodel.OrderRow
	for _, row := range m.orders {
		if row.CustomerID == customerID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *memoryReadModel) UpsertParcels(_ context.Context, rows []readmodel.ParcelRow) error {
	for _, row := range rows {
		m.parcels[row.OrderID] = append(m.parcels[row.OrderID], row)
	}
	return nil
}

func (m *memoryReadModel) UpsertShippingCost(_ context.Context, row readmodel.ShippingRow) error {
	m.shipping[row.OrderID] = row
	return nil
}

func testProjector(store readmodel.Store) *OrderProjector {
	return NewOrderProjector(store, slog.New(slog.DiscardHandler))
}

func createdEvent(t *testing.T) (order.Order, order.Created) {
	t.Helper()
	itemA, err := order.NewItem("prod-a", 2, 250, 1)
	require.NoError(t, err)
	itemB, err := order.NewItem("prod-b", 1, 500, 0.5)
	require.NoError(t, err)
	o := order.New("customer-1", []order.Item{itemA, itemB})
	parcels, err := order.BuildParcels(o, order.OneParcelPerItem{}, time.Now())
	require.NoError(t, err)
	return o, order.NewCreated(o, parcels)
}

func TestProjector_OnCreated(t *testing.T) {
	store := newMemoryReadModel()
	p := testProjector(store)
	o, ev := createdEvent(t)

	require.NoError(t, p.onCreated(context.Background(), ev))

	row := store.orders[o.ID]
	assert.Equal(t, "customer-1", row.CustomerID)
	assert.Equal(t, string(order.StatusCreated), row.Status)
	assert.Equal(t, int64(1000), row.TotalAmount)
	assert.Len(t, row.Items, 2)
	assert.Len(t, store.parcels[o.ID], 2)
}

func TestProjector_OnCreatedIsIdempotent(t *testing.T) {
	store := newMemoryReadModel()
	p := testProjector(store)
	_, ev := createdEvent(t)

	require.NoError(t, p.onCreated(context.Background(), ev))
	require.NoError(t, p.onCreated(context.Background(), ev))

	assert.Len(t, store.orders, 1)
	row := store.orders[ev.OrderID]
	assert.Len(t, row.Items, 2, "items are replaced wholesale, not appended")
}

func TestProjector_OnShipped(t *testing.T) {
	store := newMemoryReadModel()
	p := testProjector(store)
	o, ev := createdEvent(t)
	require.NoError(t, p.onCreated(context.Background(), ev))

	due := time.Now().Add(72 * time.Hour)
	err := p.onShipped(context.Background(), order.Shipped{
		OrderID:        o.ID,
		TrackingNumber: "TRK-7",
		DeliveryDate:   due,
		Timestamp:      time.Now(),
	})
	require.NoError(t, err)

	row := store.orders[o.ID]
	assert.Equal(t, string(order.StatusShipped), row.Status)
	assert.Equal(t, "TRK-7", row.TrackingNumber)
	require.NotNil(t, row.DeliveryDate)
	assert.True(t, row.DeliveryDate.Equal(due))
}

func TestProjector_OnShipped_ReadModelLag(t *testing.T) {
	store := newMemoryReadModel()
	p := testProjector(store)

	err := p.onShipped(context.Background(), order.Shipped{
		OrderID: "never-projected", Timestamp: time.Now(),
	})

	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestProjector_StatusEventsViaBus(t *testing.T) {
	store := newMemoryReadModel()
	p := testProjector(store)
	bus := eventbus.New(slog.New(slog.DiscardHandler))
	p.Register(bus)

	o, ev := createdEvent(t)
	bus.Publish(context.Background(), ev)
	bus.Publish(context.Background(), order.Cancelled{OrderID: o.ID, Timestamp: time.Now()})

	assert.Equal(t, string(order.StatusCanceled), store.orders[o.ID].Status)
}

type memoryCommandReader struct {
	orders  []order.Order
	parcels map[string][]order.Parcel
}

func (m *memoryCommandReader) ListOrders(_ context.Context, limit int) ([]order.Order, error) {
	if limit > 0 && limit < len(m.orders) {
		return m.orders[:limit], nil
	}
	return m.orders, nil
}

func (m *memoryCommandReader) ListParcelsByOrder(_ context.Context, orderID string) ([]order.Parcel, error) {
	return m.parcels[orderID], nil
}

func TestProjector_Rebuild(t *testing.T) {
	store := newMemoryReadModel()
	p := testProjector(store)

	item, err := order.NewItem("prod-a", 1, 900, 2)
	require.NoError(t, err)
	o := order.New("customer-1", []order.Item{item})
	parcels, err := order.BuildParcels(o, order.OneParcelPerItem{}, time.Now())
	require.NoError(t, err)

	// A shipped order must come back with its shipment fields.
	due := time.Now().Add(24 * time.Hour)
	o, err = o.Ship("TRK-42", due)
	require.NoError(t, err)

	source := &memoryCommandReader{
		orders:  []order.Order{o},
		parcels: map[string][]order.Parcel{o.ID: parcels},
	}

	require.NoError(t, p.Rebuild(context.Background(), source, 100))

	row := store.orders[o.ID]
	assert.Equal(t, string(order.StatusShipped), row.Status)
	assert.Equal(t, int64(900), row.TotalAmount)
	assert.Equal(t, "TRK-42", row.TrackingNumber)
	require.NotNil(t, row.DeliveryDate)
	assert.True(t, row.DeliveryDate.Equal(due))
	assert.Len(t, store.parcels[o.ID], 1)
}
