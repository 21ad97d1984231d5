package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DiscountType enumerates the kinds of discount a coupon grants.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
	DiscountFreebie    DiscountType = "freebie"
)

// Coupon is a discount code from the global coupon catalogue. Reward coupons
// held in user profile metadata are normalised into the same shape before use.
type Coupon struct {
	ID            string           `json:"id"`
	Code          string           `json:"code"`
	DiscountType  DiscountType     `json:"discount_type"`
	Value         decimal.Decimal  `json:"value"`
	MinOrderValue decimal.Decimal  `json:"min_order_value"`
	MaxDiscount   *decimal.Decimal `json:"max_discount,omitempty"`
	UsageLimit    int              `json:"usage_limit"`
	UsedCount     int              `json:"used_count"`
	IsActive      bool             `json:"is_active"`
	ValidUntil    *time.Time       `json:"valid_until,omitempty"`
	IsReward      bool             `json:"-"`
}

// RewardCoupon is the shape reward coupons take inside the auth user's
// profile metadata (spin_coupons).
type RewardCoupon struct {
	ID            string          `json:"id"`
	CouponCode    string          `json:"coupon_code"`
	DiscountType  DiscountType    `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
}

// Coupon converts a profile reward into the common coupon shape.
func (r RewardCoupon) Coupon() Coupon {
	return Coupon{
		ID:           r.ID,
		Code:         r.CouponCode,
		DiscountType: r.DiscountType,
		Value:        r.DiscountValue,
		IsReward:     true,
	}
}
