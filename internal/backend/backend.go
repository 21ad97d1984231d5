package backend

import (
	"context"

	"solemate/internal/model"

	"github.com/shopspring/decimal"
)

// CatalogAPI covers the product catalogue reads and admin mutations.
type CatalogAPI interface {
	// FetchCatalog retrieves all non-deleted products. Legacy image URLs are
	// sanitised during mapping.
	FetchCatalog(ctx context.Context) ([]model.Product, error)

	// CheckStock returns the current stock quantity for a product.
	CheckStock(ctx context.Context, productID string) (int, error)

	// InsertProduct adds a product to the catalogue.
	InsertProduct(ctx context.Context, token string, p model.Product) error

	// UpdateProduct replaces a product's catalogue row.
	UpdateProduct(ctx context.Context, token string, p model.Product) error

	// SoftDeleteProduct marks a product deleted without removing the row.
	SoftDeleteProduct(ctx context.Context, token, productID string) error
}

// CartAPI covers the per-user persisted cart rows.
type CartAPI interface {
	// FetchCartRows retrieves the user's persisted cart rows.
	FetchCartRows(ctx context.Context, token, userID string) ([]CartRow, error)

	// InsertCartRow persists a new cart row.
	InsertCartRow(ctx context.Context, token string, row CartRow) error

	// UpdateCartQuantity updates the quantity of an existing cart row,
	// keyed by user, product, size and colour.
	UpdateCartQuantity(ctx context.Context, token, userID, productID, size, color string, quantity int) error

	// DeleteCartRow removes a cart row keyed by user, product, size and colour.
	DeleteCartRow(ctx context.Context, token, userID, productID, size, color string) error

	// ClearCart removes every cart row for the user.
	ClearCart(ctx context.Context, token, userID string) error
}

// OrderAPI covers orders, returns and reviews.
type OrderAPI interface {
	// FetchOrders retrieves the user's orders, newest first.
	FetchOrders(ctx context.Context, token, userID string) ([]model.Order, error)

	// PlaceOrder invokes the atomic order-placement procedure, which checks
	// and decrements stock server-side.
	PlaceOrder(ctx context.Context, token string, items []model.OrderItem, total decimal.Decimal, shippingAddress, paymentMethod string) error

	// UpdateOrderStatus requests a status transition for an order.
	UpdateOrderStatus(ctx context.Context, token, orderID string, status model.OrderStatus) error

	// ArchiveOrder marks an order archived.
	ArchiveOrder(ctx context.Context, token, orderID string) error

	// InsertReturn records a return request.
	InsertReturn(ctx context.Context, token, userID string, req model.ReturnRequest) error

	// InsertReview records a product review for an order.
	InsertReview(ctx context.Context, token string, review Review) error

	// PatchOrderReview attaches a rating and review text to an order.
	// Best effort; callers may ignore the error.
	PatchOrderReview(ctx context.Context, token, orderID string, rating int, comment string) error
}

// CouponAPI covers the global coupon catalogue.
type CouponAPI interface {
	// FetchCoupon retrieves an active coupon by code. Returns nil when no
	// such coupon exists.
	FetchCoupon(ctx context.Context, code string) (*model.Coupon, error)

	// IncrementCouponUsage bumps a coupon's server-side usage counter.
	IncrementCouponUsage(ctx context.Context, couponID string) error
}

// WishlistAPI covers the per-user saved product rows.
type WishlistAPI interface {
	// FetchSavedItems retrieves the user's saved product snapshots.
	FetchSavedItems(ctx context.Context, token, userID string) ([]model.Product, error)

	// InsertSavedItem persists a saved product snapshot.
	InsertSavedItem(ctx context.Context, token, userID, userEmail string, product model.Product) error

	// DeleteSavedItem removes a saved product row.
	DeleteSavedItem(ctx context.Context, token, userID, productID string) error
}

// AuthAPI covers the backend's auth service.
type AuthAPI interface {
	// GetAuthUser resolves the session token to the authenticated user.
	GetAuthUser(ctx context.Context, token string) (*AuthUser, error)

	// UpdateRewardCoupons replaces the reward coupon list embedded in the
	// user's profile metadata.
	UpdateRewardCoupons(ctx context.Context, token string, coupons []model.RewardCoupon) error
}

// API is the full surface of the hosted backend.
type API interface {
	CatalogAPI
	CartAPI
	OrderAPI
	CouponAPI
	WishlistAPI
	AuthAPI
}
