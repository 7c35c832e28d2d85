package order

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Dimensions are the outer measurements of a parcel in centimetres.
type Dimensions struct {
	LengthCM float64
	WidthCM  float64
	HeightCM float64
}

// Parcel is a shipment unit derived from an order's items. An item belongs
// to at most one parcel.
type Parcel struct {
	ID             string
	OrderID        string
	TrackingNumber string
	WeightKG       float64
	Dimensions     Dimensions
	Items          ItemList
	CreatedAt      time.Time
}

// GroupingStrategy decides how an order's items are split into parcels.
type GroupingStrategy interface {
	Group(items []Item) [][]Item
}

// OneParcelPerItem is the default strategy: every line item ships on its own.
type OneParcelPerItem struct{}

func (OneParcelPerItem) Group(items []Item) [][]Item {
	groups := make([][]Item, 0, len(items))
	for _, it := range items {
		groups = append(groups, []Item{it})
	}
	return groups
}

// SingleParcel packs the whole order into one parcel.
type SingleParcel struct{}

func (SingleParcel) Group(items []Item) [][]Item {
	if len(items) == 0 {
		return nil
	}
	return [][]Item{items}
}

// BuildParcels derives the parcels for an order using the given strategy.
// Tracking numbers are generated from the order id and the current time and
// are never caller-supplied.
func BuildParcels(o Order, strategy GroupingStrategy, now time.Time) ([]Parcel, error) {
	items, ok := o.Items.Items()
	if !ok {
		return nil, ErrItemsNotLoaded
	}
	groups := strategy.Group(items)
	parcels := make([]Parcel, 0, len(groups))
	for i, group := range groups {
		var weight float64
		for _, it := range group {
			weight += it.TotalWeightKG()
		}
		parcels = append(parcels, Parcel{
			ID:             uuid.NewString(),
			OrderID:        o.ID,
			TrackingNumber: trackingNumber(o.ID, now, i),
			WeightKG:       weight,
			Dimensions:     defaultParcelDimensions,
			Items:          LoadedItems(group),
			CreatedAt:      now,
		})
	}
	return parcels, nil
}

var defaultParcelDimensions = Dimensions{LengthCM: 40, WidthCM: 30, HeightCM: 20}

func trackingNumber(orderID string, now time.Time, seq int) string {
	short := orderID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("TRK-%s-%d-%02d", short, now.Unix(), seq)
}
