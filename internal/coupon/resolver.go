package coupon

import (
	"context"
	"fmt"
	"strings"
	"time"

	"solemate/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// resolver implements Resolver against a coupon Source.
type resolver struct {
	source Source
	logger zerolog.Logger
	now    func() time.Time
}

// NewResolver creates a coupon resolver backed by the given source.
func NewResolver(source Source, logger zerolog.Logger) Resolver {
	return &resolver{
		source: source,
		logger: logger.With().Str("component", "coupon-resolver").Logger(),
		now:    time.Now,
	}
}

// Validate checks a user-entered code and computes the discount for the
// subtotal. All failure modes come back as an invalid Result with a
// user-facing message; nothing propagates as an error.
func (r *resolver) Validate(ctx context.Context, code string, subtotal decimal.Decimal) Result {
	cleanCode := strings.ToUpper(strings.TrimSpace(code))

	c, err := r.source.FetchCoupon(ctx, cleanCode)
	if err != nil {
		r.logger.Error().Err(err).Str("code", cleanCode).Msg("coupon lookup failed")
		return Result{Valid: false, Message: "Error validating coupon. Try again."}
	}

	if c == nil {
		return Result{Valid: false, Message: "Invalid or expired promo code"}
	}

	if c.ValidUntil != nil && c.ValidUntil.Before(r.now()) {
		return Result{Valid: false, Found: true, Message: "This coupon has expired"}
	}

	if c.UsageLimit > 0 && c.UsedCount >= c.UsageLimit {
		return Result{Valid: false, Found: true, Message: "Coupon usage limit reached"}
	}

	if subtotal.LessThan(c.MinOrderValue) {
		return Result{
			Valid:   false,
			Found:   true,
			Message: fmt.Sprintf("Minimum order value for this coupon is Rs. %s", c.MinOrderValue.StringFixed(0)),
		}
	}

	discount := ComputeDiscount(*c, subtotal)

	r.logger.Debug().
		Str("code", cleanCode).
		Str("discount", discount.String()).
		Msg("coupon validated")

	return Result{
		Valid:    true,
		Found:    true,
		Discount: discount,
		Coupon:   c,
		Message:  fmt.Sprintf("Coupon applied! You saved Rs. %s", discount.StringFixed(0)),
	}
}

// ValidateReward checks a reward coupon taken from the user's profile
// metadata. Rewards skip catalogue rules; only the freebie minimum applies.
func ValidateReward(reward model.RewardCoupon, subtotal decimal.Decimal) Result {
	c := reward.Coupon()

	if c.DiscountType == model.DiscountFreebie && subtotal.LessThan(freebieMinOrder) {
		return Result{
			Valid:   false,
			Found:   true,
			Message: fmt.Sprintf("Free bag applies on orders over Rs. %s", freebieMinOrder.StringFixed(0)),
		}
	}

	return Result{
		Valid:    true,
		Found:    true,
		Discount: ComputeDiscount(c, subtotal),
		Coupon:   &c,
		Message:  "Reward applied successfully!",
	}
}
