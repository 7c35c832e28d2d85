package order

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// ShippingOptions are the service modifiers a customer can pick for a
// shipment.
type ShippingOptions struct {
	Express   bool
	Fragile   bool
	Insurance bool
}

// ShippingCost is derived from an order's parcels; Cost is recomputed
// whenever parcels change and is never directly settable.
type ShippingCost struct {
	ID            string
	OrderID       string
	TotalWeightKG float64
	Dimensions    Dimensions
	Options       ShippingOptions
	// Cost is in minor currency units (cents).
	Cost      int64
	ParcelIDs []string
	CreatedAt time.Time
}

// Shipping rate card, in minor units.
const (
	shippingBaseCents    int64   = 500 // flat pick-up fee
	shippingPerKGCents   int64   = 125
	shippingFragileCents int64   = 400
	expressMultiplier    float64 = 1.5
	insuranceRateOfTotal float64 = 0.02
	maxBillableWeightKG  float64 = 1000
)

// ComputeShippingCost derives the cost for shipping the given parcels of an
// order. orderTotal is the order's total amount in minor units and feeds the
// insurance premium.
func ComputeShippingCost(o Order, parcels []Parcel, opts ShippingOptions) ShippingCost {
	var weight float64
	ids := make([]string, 0, len(parcels))
	dims := Dimensions{}
	for _, p := range parcels {
		weight += p.WeightKG
		ids = append(ids, p.ID)
		if p.Dimensions.LengthCM > dims.LengthCM {
			dims = p.Dimensions
		}
	}
	if weight > maxBillableWeightKG {
		weight = maxBillableWeightKG
	}

	cost := float64(shippingBaseCents) + float64(shippingPerKGCents)*weight
	if opts.Express {
		cost *= expressMultiplier
	}
	if opts.Fragile {
		cost += float64(shippingFragileCents)
	}
	if opts.Insurance {
		cost += float64(o.TotalAmount) * insuranceRateOfTotal
	}

	return ShippingCost{
		ID:            uuid.NewString(),
		OrderID:       o.ID,
		TotalWeightKG: weight,
		Dimensions:    dims,
		Options:       opts,
		Cost:          int64(math.Round(cost)),
		ParcelIDs:     ids,
		CreatedAt:     time.Now().UTC(),
	}
}
