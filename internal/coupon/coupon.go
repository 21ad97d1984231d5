// Package coupon is the single coupon-resolution path. The cart's apply flow
// and the standalone promo-code check both validate codes and compute
// discounts here, against the coupons table.
package coupon

import (
	"context"

	"solemate/internal/model"

	"github.com/shopspring/decimal"
)

// Source fetches coupon records from the backend.
type Source interface {
	// FetchCoupon retrieves an active coupon by code; nil when absent.
	FetchCoupon(ctx context.Context, code string) (*model.Coupon, error)
}

// Result is the outcome of validating a code against a subtotal. Validation
// never fails with an error: remote and parse failures become a generic
// invalid result.
type Result struct {
	Valid    bool            `json:"valid"`
	Discount decimal.Decimal `json:"discount"`
	Coupon   *model.Coupon   `json:"coupon,omitempty"`
	Message  string          `json:"message"`

	// Found reports whether a catalogue record existed for the code at all,
	// letting callers fall back to reward coupons only on a true miss.
	Found bool `json:"-"`
}

// Resolver validates coupon codes.
type Resolver interface {
	// Validate checks a user-entered code against the coupon catalogue and
	// computes the discount for the given subtotal.
	Validate(ctx context.Context, code string, subtotal decimal.Decimal) Result
}

// freebieMinOrder is the order value reward freebies require.
var freebieMinOrder = decimal.NewFromInt(500)

// ComputeDiscount returns the discount a coupon grants on a subtotal:
// percentage coupons take value% capped at MaxDiscount, fixed coupons the
// flat value. The result never exceeds the subtotal and is rounded to the
// nearest whole currency unit.
func ComputeDiscount(c model.Coupon, subtotal decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal

	switch c.DiscountType {
	case model.DiscountPercentage:
		discount = subtotal.Mul(c.Value).Div(decimal.NewFromInt(100))
		if c.MaxDiscount != nil && discount.GreaterThan(*c.MaxDiscount) {
			discount = *c.MaxDiscount
		}
	case model.DiscountFreebie:
		// Freebies add an item rather than reducing the total.
		return decimal.Zero
	default:
		discount = c.Value
	}

	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}

	return discount.Round(0)
}
