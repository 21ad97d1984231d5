package store

import (
	"context"

	"solemate/internal/backend"
	"solemate/internal/model"
	"solemate/internal/realtime"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// mockAPI is a mock implementation of backend.API.
type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) FetchCatalog(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *mockAPI) CheckStock(ctx context.Context, productID string) (int, error) {
	args := m.Called(ctx, productID)
	return args.Int(0), args.Error(1)
}

func (m *mockAPI) InsertProduct(ctx context.Context, token string, p model.Product) error {
	return m.Called(ctx, token, p).Error(0)
}

func (m *mockAPI) UpdateProduct(ctx context.Context, token string, p model.Product) error {
	return m.Called(ctx, token, p).Error(0)
}

func (m *mockAPI) SoftDeleteProduct(ctx context.Context, token, productID string) error {
	return m.Called(ctx, token, productID).Error(0)
}

func (m *mockAPI) FetchCartRows(ctx context.Context, token, userID string) ([]backend.CartRow, error) {
	args := m.Called(ctx, token, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]backend.CartRow), args.Error(1)
}

func (m *mockAPI) InsertCartRow(ctx context.Context, token string, row backend.CartRow) error {
	return m.Called(ctx, token, row).Error(0)
}

func (m *mockAPI) UpdateCartQuantity(ctx context.Context, token, userID, productID, size, color string, quantity int) error {
	return m.Called(ctx, token, userID, productID, size, color, quantity).Error(0)
}

func (m *mockAPI) DeleteCartRow(ctx context.Context, token, userID, productID, size, color string) error {
	return m.Called(ctx, token, userID, productID, size, color).Error(0)
}

func (m *mockAPI) ClearCart(ctx context.Context, token, userID string) error {
	return m.Called(ctx, token, userID).Error(0)
}

func (m *mockAPI) FetchOrders(ctx context.Context, token, userID string) ([]model.Order, error) {
	args := m.Called(ctx, token, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *mockAPI) PlaceOrder(ctx context.Context, token string, items []model.OrderItem, total decimal.Decimal, shippingAddress, paymentMethod string) error {
	return m.Called(ctx, token, items, total, shippingAddress, paymentMethod).Error(0)
}

func (m *mockAPI) UpdateOrderStatus(ctx context.Context, token, orderID string, status model.OrderStatus) error {
	return m.Called(ctx, token, orderID, status).Error(0)
}

func (m *mockAPI) ArchiveOrder(ctx context.Context, token, orderID string) error {
	return m.Called(ctx, token, orderID).Error(0)
}

func (m *mockAPI) InsertReturn(ctx context.Context, token, userID string, req model.ReturnRequest) error {
	return m.Called(ctx, token, userID, req).Error(0)
}

func (m *mockAPI) InsertReview(ctx context.Context, token string, review backend.Review) error {
	return m.Called(ctx, token, review).Error(0)
}

func (m *mockAPI) PatchOrderReview(ctx context.Context, token, orderID string, rating int, comment string) error {
	return m.Called(ctx, token, orderID, rating, comment).Error(0)
}

func (m *mockAPI) FetchCoupon(ctx context.Context, code string) (*model.Coupon, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Coupon), args.Error(1)
}

func (m *mockAPI) IncrementCouponUsage(ctx context.Context, couponID string) error {
	return m.Called(ctx, couponID).Error(0)
}

func (m *mockAPI) FetchSavedItems(ctx context.Context, token, userID string) ([]model.Product, error) {
	args := m.Called(ctx, token, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *mockAPI) InsertSavedItem(ctx context.Context, token, userID, userEmail string, product model.Product) error {
	return m.Called(ctx, token, userID, userEmail, product).Error(0)
}

func (m *mockAPI) DeleteSavedItem(ctx context.Context, token, userID, productID string) error {
	return m.Called(ctx, token, userID, productID).Error(0)
}

func (m *mockAPI) GetAuthUser(ctx context.Context, token string) (*backend.AuthUser, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backend.AuthUser), args.Error(1)
}

func (m *mockAPI) UpdateRewardCoupons(ctx context.Context, token string, coupons []model.RewardCoupon) error {
	return m.Called(ctx, token, coupons).Error(0)
}

// stubFeed returns an already-closed event channel so feed consumers exit
// immediately.
type stubFeed struct{}

func (stubFeed) Subscribe(table, userID string) (<-chan realtime.Event, func()) {
	ch := make(chan realtime.Event)
	close(ch)
	return ch, func() {}
}
