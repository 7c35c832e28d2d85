// Package cart provides the shopping-cart source consumed by checkout.
// Carts live in Redis as JSON documents keyed by cart id.
package cart

// Cart is a customer's shopping cart as stored in Redis.
type Cart struct {
	ID         string `json:"id"`
	CustomerID string `json:"customer_id"`
	Items      []Item `json:"items"`
}

// Item is one cart line. UnitPrice is in minor units; WeightKG is per unit
// and may be zero for products without weight data.
type Item struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice int64   `json:"price"`
	WeightKG  float64 `json:"weight_kg,omitempty"`
}
