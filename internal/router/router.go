package router

import (
	"net/http"

	"solemate/internal/backend"
	"solemate/internal/handler"
	"solemate/internal/middleware"

	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	catalogHandler *handler.CatalogHandler,
	cartHandler *handler.CartHandler,
	orderHandler *handler.OrderHandler,
	wishlistHandler *handler.WishlistHandler,
	couponHandler *handler.CouponHandler,
	sessionHandler *handler.SessionHandler,
	auth backend.AuthAPI,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no identity resolution required)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Catalogue routes
	mux.HandleFunc("GET /api/products", catalogHandler.List)
	mux.HandleFunc("GET /api/products/{productID}", catalogHandler.GetByID)
	mux.HandleFunc("GET /api/products/{productID}/stock", catalogHandler.Stock)
	mux.HandleFunc("POST /api/products", catalogHandler.Create)
	mux.HandleFunc("PUT /api/products/{productID}", catalogHandler.Update)
	mux.HandleFunc("DELETE /api/products/{productID}", catalogHandler.Delete)

	// Cart routes
	mux.HandleFunc("GET /api/cart", cartHandler.Get)
	mux.HandleFunc("DELETE /api/cart", cartHandler.Clear)
	mux.HandleFunc("POST /api/cart/items", cartHandler.AddItem)
	mux.HandleFunc("PATCH /api/cart/items/{lineID}", cartHandler.UpdateItem)
	mux.HandleFunc("DELETE /api/cart/items/{lineID}", cartHandler.RemoveItem)
	mux.HandleFunc("POST /api/cart/items/{lineID}/save", cartHandler.SaveForLater)
	mux.HandleFunc("POST /api/cart/saved/{productID}/move", cartHandler.MoveToCart)
	mux.HandleFunc("DELETE /api/cart/saved/{productID}", cartHandler.RemoveSaved)
	mux.HandleFunc("POST /api/cart/coupon", cartHandler.ApplyCoupon)
	mux.HandleFunc("DELETE /api/cart/coupon", cartHandler.RemoveCoupon)
	mux.HandleFunc("POST /api/checkout", cartHandler.Checkout)

	// Order routes
	mux.HandleFunc("GET /api/orders", orderHandler.List)
	mux.HandleFunc("POST /api/orders/{orderID}/cancel", orderHandler.Cancel)
	mux.HandleFunc("POST /api/orders/{orderID}/return", orderHandler.Return)
	mux.HandleFunc("POST /api/orders/{orderID}/archive", orderHandler.Archive)
	mux.HandleFunc("POST /api/orders/{orderID}/review", orderHandler.Review)
	mux.HandleFunc("PATCH /api/orders/{orderID}/status", orderHandler.UpdateStatus)
	mux.HandleFunc("DELETE /api/orders/{orderID}", orderHandler.Purge)

	// Wishlist routes
	mux.HandleFunc("GET /api/wishlist", wishlistHandler.List)
	mux.HandleFunc("POST /api/wishlist", wishlistHandler.Add)
	mux.HandleFunc("POST /api/wishlist/toggle", wishlistHandler.Toggle)
	mux.HandleFunc("DELETE /api/wishlist/{productID}", wishlistHandler.Remove)

	// Coupon routes
	mux.HandleFunc("POST /api/coupons/validate", couponHandler.Validate)
	mux.HandleFunc("GET /api/coupons/rewards", couponHandler.Rewards)

	// Session routes
	mux.HandleFunc("POST /api/session/logout", sessionHandler.Logout)

	// Apply middleware in order: Recovery -> Logging -> CORS -> Session
	var h http.Handler = mux
	h = middleware.Session(auth, logger)(h)
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}
