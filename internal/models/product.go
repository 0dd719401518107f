package models

// Product is a cake available for order. Price is the catalog price per kg
// in whole currency units.
type Product struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    int64   `json:"price"`
	Rating   float64 `json:"rating"`
	Category string  `json:"category"`
	Image    string  `json:"image,omitempty"`
}
