package model

import (
	"fmt"
	"time"
)

// CartLine is a product plus the variant and quantity a user put in their
// cart. Lines are keyed by the composite LineID; the backend keys the same
// row by (user, product, size, color).
type CartLine struct {
	Product       Product   `json:"product"`
	LineID        string    `json:"lineId"`
	SelectedSize  string    `json:"selectedSize"`
	SelectedColor string    `json:"selectedColor"`
	Quantity      int       `json:"quantity"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// LineID derives the composite cart line identifier for a product variant.
func LineID(productID, size, color string) string {
	if color == "" {
		color = "default"
	}
	return fmt.Sprintf("%s-%s-%s", productID, size, color)
}
