package order

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustItem(t *testing.T, productID string, qty int, price int64, weight float64) Item {
	t.Helper()
	it, err := NewItem(productID, qty, price, weight)
	require.NoError(t, err)
	return it
}

func TestNew_StartsCreatedWithDerivedTotal(t *testing.T) {
	items := []Item{
		mustItem(t, "prod-a", 2, 250, 1.0),
		mustItem(t, "prod-b", 1, 500, 0.5),
	}

	o := New("customer-1", items)

	assert.NotEmpty(t, o.ID)
	assert.Equal(t, "customer-1", o.CustomerID)
	assert.Equal(t, StatusCreated, o.Status)
	assert.Equal(t, int64(1000), o.TotalAmount)
	assert.True(t, o.Items.Loaded())
	assert.Equal(t, 0, o.Version)
}

func TestStatus_TransitionTable(t *testing.T) {
	cases := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusCreated, StatusShipped, true},
		{StatusCreated, StatusCanceled, true},
		{StatusCreated, StatusCompleted, true},
		{StatusCreated, StatusDelivered, false},
		{StatusShipped, StatusDelivered, true},
		{StatusShipped, StatusCanceled, false},
		{StatusShipped, StatusCompleted, false},
		{StatusDelivered, StatusCompleted, true},
		// A failed hand-off attempt can be re-shipped.
		{StatusDelivered, StatusShipped, true},
		{StatusDelivered, StatusCanceled, false},
		{StatusCompleted, StatusShipped, false},
		{StatusCompleted, StatusCanceled, false},
		{StatusCanceled, StatusShipped, false},
		{StatusCanceled, StatusCompleted, false},
		{StatusPending, StatusShipped, false},
		{StatusPending, StatusCanceled, false},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.allowed, tc.from.CanTransition(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestStatus_Terminal(t *testing.T) {
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCanceled.IsTerminal())
	assert.False(t, StatusCreated.IsTerminal())
	assert.False(t, StatusShipped.IsTerminal())
	assert.False(t, StatusDelivered.IsTerminal())
}

func TestOrder_Ship(t *testing.T) {
	o := New("customer-1", []Item{mustItem(t, "prod-a", 1, 100, 1)})
	due := time.Now().Add(72 * time.Hour)

	shipped, err := o.Ship("TRK-1", due)
	require.NoError(t, err)

	assert.Equal(t, StatusShipped, shipped.Status)
	assert.Equal(t, "TRK-1", shipped.TrackingNumber)
	require.NotNil(t, shipped.DeliveryDate)
	assert.True(t, shipped.DeliveryDate.Equal(due))

	// Receiver is untouched.
	assert.Equal(t, StatusCreated, o.Status)
	assert.Empty(t, o.TrackingNumber)
	assert.Nil(t, o.DeliveryDate)
}

func TestOrder_IllegalTransitionLeavesOrderUnchanged(t *testing.T) {
	o := New("customer-1", []Item{mustItem(t, "prod-a", 1, 100, 1)})
	completed, err := o.Complete()
	require.NoError(t, err)

	_, err = completed.Cancel()
	var terr *StatusTransitionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, StatusCompleted, terr.From)
	assert.Equal(t, StatusCanceled, terr.To)
	assert.Equal(t, StatusCompleted, completed.Status)
}

func TestOrder_FullLifecycle(t *testing.T) {
	o := New("customer-1", []Item{mustItem(t, "prod-a", 1, 100, 1)})

	o, err := o.Ship("TRK-1", time.Now().Add(time.Hour))
	require.NoError(t, err)
	o, err = o.Deliver()
	require.NoError(t, err)

	// Redelivery loop.
	o, err = o.Ship("TRK-2", time.Now().Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "TRK-2", o.TrackingNumber)
	o, err = o.Deliver()
	require.NoError(t, err)

	o, err = o.Complete()
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, o.Status)
}

func TestOrder_AddItem(t *testing.T) {
	o := New("customer-1", []Item{mustItem(t, "prod-a", 2, 250, 1)})
	extra := mustItem(t, "prod-b", 3, 100, 0.2)

	next, err := o.AddItem(&extra)
	require.NoError(t, err)

	assert.Equal(t, int64(800), next.TotalAmount)
	got, ok := next.Items.Items()
	require.True(t, ok)
	assert.Len(t, got, 2)

	// Copy-on-write: the original order still has a single item.
	prev, ok := o.Items.Items()
	require.True(t, ok)
	assert.Len(t, prev, 1)
	assert.Equal(t, int64(500), o.TotalAmount)
}

func TestOrder_AddItem_NilItem(t *testing.T) {
	o := New("customer-1", nil)
	_, err := o.AddItem(nil)
	assert.ErrorIs(t, err, ErrNilItem)
}

func TestOrder_AddItem_RequiresLoadedRelation(t *testing.T) {
	o := New("customer-1", nil)
	o.Items = NotLoadedItems()
	it := mustItem(t, "prod-a", 1, 100, 1)

	_, err := o.AddItem(&it)
	assert.ErrorIs(t, err, ErrItemsNotLoaded)
}

func TestPaymentFailedError_Unwrap(t *testing.T) {
	cause := errors.New("gateway said no")
	err := &PaymentFailedError{OrderID: "o-1", Cause: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "o-1")
}
