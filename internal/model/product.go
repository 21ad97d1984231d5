package model

import (
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a shoe in the catalogue.
type Product struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Tagline       string           `json:"tagline,omitempty"`
	Description   string           `json:"description,omitempty"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"originalPrice,omitempty"`
	Image         string           `json:"image"`
	Gallery       []string         `json:"gallery,omitempty"`
	Category      string           `json:"category"`
	Gender        string           `json:"gender,omitempty"`
	Sizes         []string         `json:"sizes"`
	Colors        []string         `json:"colors"`
	Features      []string         `json:"features,omitempty"`
	Rating        float64          `json:"rating"`
	ReviewsCount  int              `json:"reviewsCount"`
	InStock       bool             `json:"inStock"`
	StockQuantity int              `json:"stockQuantity"`
	IsDeleted     bool             `json:"isDeleted"`
	UpdatedAt     time.Time        `json:"updatedAt,omitempty"`
}

// DefaultColor returns the colour used for a cart line when none is selected.
func (p *Product) DefaultColor() string {
	if len(p.Colors) > 0 {
		return p.Colors[0]
	}
	return "Default"
}

// DefaultSize returns the size used when a saved item moves back to the cart.
func (p *Product) DefaultSize() string {
	if len(p.Sizes) > 0 {
		return p.Sizes[0]
	}
	return "OS"
}

const canonicalImageHost = "https://lh3.googleusercontent.com/d/"

// SanitizeImageURL rewrites legacy catalogue image links into the canonical
// lh3.googleusercontent.com form. Two legacy shapes exist in old rows:
// drive.google.com/uc?id=<id> links, and lh3 links that were prefixed twice
// during an earlier migration.
func SanitizeImageURL(raw string) string {
	img := raw

	if strings.Contains(img, "drive.google.com/uc?") {
		if _, query, ok := strings.Cut(img, "?"); ok {
			if params, err := url.ParseQuery(query); err == nil {
				if id := params.Get("id"); id != "" {
					img = canonicalImageHost + id
				}
			}
		}
	}

	if strings.Contains(img, "lh3.googleusercontent.com/d/") {
		parts := strings.Split(img, "lh3.googleusercontent.com/d/")
		id := parts[len(parts)-1]
		if len(id) > 20 {
			img = canonicalImageHost + id
		}
	}

	return img
}
