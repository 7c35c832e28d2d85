package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewItem_Validation(t *testing.T) {
	cases := []struct {
		name   string
		qty    int
		price  int64
		weight float64
		ok     bool
	}{
		{"valid", 1, 100, 0.5, true},
		{"free item", 1, 0, 0.5, true},
		{"weightless", 2, 100, 0, true},
		{"zero quantity", 0, 100, 0.5, false},
		{"negative quantity", -1, 100, 0.5, false},
		{"negative price", 1, -1, 0.5, false},
		{"negative weight", 1, 100, -0.1, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			it, err := NewItem("prod-a", tc.qty, tc.price, tc.weight)
			if !tc.ok {
				var ierr *InvalidOrderItemError
				require.ErrorAs(t, err, &ierr)
				assert.Equal(t, "prod-a", ierr.ProductID)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, it.ID)
			assert.Equal(t, "prod-a", it.ProductID)
		})
	}
}

func TestItem_Subtotal(t *testing.T) {
	it, err := NewItem("prod-a", 3, 250, 1.5)
	require.NoError(t, err)
	assert.Equal(t, int64(750), it.Subtotal())
	assert.InDelta(t, 4.5, it.TotalWeightKG(), 1e-9)
}

func TestItemList_ZeroValueIsNotLoaded(t *testing.T) {
	var l ItemList
	assert.False(t, l.Loaded())
	items, ok := l.Items()
	assert.False(t, ok)
	assert.Nil(t, items)
}

func TestItemList_EmptyLoadedIsNotTheSameAsNotLoaded(t *testing.T) {
	loaded := LoadedItems(nil)
	assert.True(t, loaded.Loaded())
	items, ok := loaded.Items()
	assert.True(t, ok)
	assert.Empty(t, items)

	notLoaded := NotLoadedItems()
	assert.False(t, notLoaded.Loaded())
	_, ok = notLoaded.Items()
	assert.False(t, ok)
}
