package coupon

import (
	"context"
	"errors"
	"testing"
	"time"

	"solemate/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockSource is a mock implementation of Source.
type MockSource struct {
	mock.Mock
}

func (m *MockSource) FetchCoupon(ctx context.Context, code string) (*model.Coupon, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Coupon), args.Error(1)
}

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func decPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func TestComputeDiscount(t *testing.T) {
	tests := []struct {
		name     string
		coupon   model.Coupon
		subtotal decimal.Decimal
		expected decimal.Decimal
	}{
		{
			name:     "percentage without cap",
			coupon:   model.Coupon{DiscountType: model.DiscountPercentage, Value: dec(10)},
			subtotal: dec(2000),
			expected: dec(200),
		},
		{
			name:     "percentage capped at max discount",
			coupon:   model.Coupon{DiscountType: model.DiscountPercentage, Value: dec(50), MaxDiscount: decPtr(300)},
			subtotal: dec(2000),
			expected: dec(300),
		},
		{
			name:     "fixed amount",
			coupon:   model.Coupon{DiscountType: model.DiscountFixed, Value: dec(150)},
			subtotal: dec(2000),
			expected: dec(150),
		},
		{
			name:     "fixed amount clamped to subtotal",
			coupon:   model.Coupon{DiscountType: model.DiscountFixed, Value: dec(500)},
			subtotal: dec(300),
			expected: dec(300),
		},
		{
			name:     "freebie grants no monetary discount",
			coupon:   model.Coupon{DiscountType: model.DiscountFreebie, Value: dec(100)},
			subtotal: dec(2000),
			expected: decimal.Zero,
		},
		{
			name:     "percentage on empty cart",
			coupon:   model.Coupon{DiscountType: model.DiscountPercentage, Value: dec(10)},
			subtotal: decimal.Zero,
			expected: decimal.Zero,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeDiscount(tt.coupon, tt.subtotal)
			assert.True(t, tt.expected.Equal(got), "expected %s, got %s", tt.expected, got)
		})
	}
}

func TestResolver_Validate(t *testing.T) {
	logger := zerolog.Nop()
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(24 * time.Hour)

	tests := []struct {
		name           string
		code           string
		subtotal       decimal.Decimal
		coupon         *model.Coupon
		fetchErr       error
		expectValid    bool
		expectFound    bool
		expectDiscount decimal.Decimal
		expectMessage  string
	}{
		{
			name:     "valid percentage coupon",
			code:     "save10",
			subtotal: dec(2000),
			coupon: &model.Coupon{
				ID: "c1", Code: "SAVE10",
				DiscountType: model.DiscountPercentage, Value: dec(10),
				IsActive: true, ValidUntil: &future,
			},
			expectValid:    true,
			expectFound:    true,
			expectDiscount: dec(200),
			expectMessage:  "Coupon applied! You saved Rs. 200",
		},
		{
			name:          "unknown code",
			code:          "NOPE",
			subtotal:      dec(2000),
			coupon:        nil,
			expectValid:   false,
			expectFound:   false,
			expectMessage: "Invalid or expired promo code",
		},
		{
			name:          "lookup error",
			code:          "SAVE10",
			subtotal:      dec(2000),
			fetchErr:      errors.New("connection refused"),
			expectValid:   false,
			expectFound:   false,
			expectMessage: "Error validating coupon. Try again.",
		},
		{
			name:     "expired coupon",
			code:     "OLD",
			subtotal: dec(2000),
			coupon: &model.Coupon{
				ID: "c2", Code: "OLD",
				DiscountType: model.DiscountFixed, Value: dec(100),
				IsActive: true, ValidUntil: &past,
			},
			expectValid:   false,
			expectFound:   true,
			expectMessage: "This coupon has expired",
		},
		{
			name:     "usage limit reached",
			code:     "BUSY",
			subtotal: dec(2000),
			coupon: &model.Coupon{
				ID: "c3", Code: "BUSY",
				DiscountType: model.DiscountFixed, Value: dec(100),
				UsageLimit: 5, UsedCount: 5, IsActive: true,
			},
			expectValid:   false,
			expectFound:   true,
			expectMessage: "Coupon usage limit reached",
		},
		{
			name:     "below minimum order value",
			code:     "BIG",
			subtotal: dec(400),
			coupon: &model.Coupon{
				ID: "c4", Code: "BIG",
				DiscountType: model.DiscountFixed, Value: dec(100),
				MinOrderValue: dec(500), IsActive: true,
			},
			expectValid:   false,
			expectFound:   true,
			expectMessage: "Minimum order value for this coupon is Rs. 500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := new(MockSource)
			source.On("FetchCoupon", mock.Anything, "SAVE10").Return(tt.coupon, tt.fetchErr).Maybe()
			source.On("FetchCoupon", mock.Anything, mock.Anything).Return(tt.coupon, tt.fetchErr).Maybe()

			r := NewResolver(source, logger)
			res := r.Validate(context.Background(), tt.code, tt.subtotal)

			assert.Equal(t, tt.expectValid, res.Valid)
			assert.Equal(t, tt.expectFound, res.Found)
			assert.Equal(t, tt.expectMessage, res.Message)
			if tt.expectValid {
				assert.True(t, tt.expectDiscount.Equal(res.Discount))
				assert.NotNil(t, res.Coupon)
			}
		})
	}
}

func TestResolver_Validate_NormalisesCode(t *testing.T) {
	source := new(MockSource)
	source.On("FetchCoupon", mock.Anything, "SAVE10").Return(&model.Coupon{
		ID: "c1", Code: "SAVE10",
		DiscountType: model.DiscountPercentage, Value: dec(10),
		IsActive: true,
	}, nil)

	r := NewResolver(source, zerolog.Nop())
	res := r.Validate(context.Background(), "  save10 ", dec(1000))

	assert.True(t, res.Valid)
	source.AssertCalled(t, "FetchCoupon", mock.Anything, "SAVE10")
}

func TestValidateReward(t *testing.T) {
	freebie := model.RewardCoupon{
		ID: "r1", CouponCode: "FREEBAG",
		DiscountType: model.DiscountFreebie, DiscountValue: dec(0),
	}
	percent := model.RewardCoupon{
		ID: "r2", CouponCode: "SPIN20",
		DiscountType: model.DiscountPercentage, DiscountValue: dec(20),
	}

	t.Run("freebie below minimum order", func(t *testing.T) {
		res := ValidateReward(freebie, dec(400))
		assert.False(t, res.Valid)
		assert.True(t, res.Found)
		assert.Equal(t, "Free bag applies on orders over Rs. 500", res.Message)
	})

	t.Run("freebie above minimum order", func(t *testing.T) {
		res := ValidateReward(freebie, dec(600))
		assert.True(t, res.Valid)
		assert.True(t, res.Discount.IsZero())
		assert.True(t, res.Coupon.IsReward)
	})

	t.Run("percentage reward", func(t *testing.T) {
		res := ValidateReward(percent, dec(1000))
		assert.True(t, res.Valid)
		assert.True(t, dec(200).Equal(res.Discount))
		assert.Equal(t, "Reward applied successfully!", res.Message)
	})
}
