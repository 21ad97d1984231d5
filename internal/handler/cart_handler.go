package handler

import (
	"encoding/json"
	"net/http"

	"solemate/internal/model"
	"solemate/internal/store"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// CartHandler handles cart-related HTTP requests.
type CartHandler struct {
	manager *store.Manager
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(manager *store.Manager, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		manager: manager,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// cartView is the full cart state a client renders from.
type cartView struct {
	Lines      []model.CartLine `json:"lines"`
	SavedItems []model.Product  `json:"savedItems"`
	Subtotal   decimal.Decimal  `json:"subtotal"`
	Discount   decimal.Decimal  `json:"discount"`
	Total      decimal.Decimal  `json:"total"`
	Count      int              `json:"count"`
	Coupon     *model.Coupon    `json:"coupon,omitempty"`
}

func viewOf(cart *store.Cart) cartView {
	return cartView{
		Lines:      cart.Lines(),
		SavedItems: cart.SavedItems(),
		Subtotal:   cart.Subtotal(),
		Discount:   cart.DiscountAmount(),
		Total:      cart.CartTotal(),
		Count:      cart.CartCount(),
		Coupon:     cart.AppliedCoupon(),
	}
}

// Get handles GET /api/cart requests.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	stores := sessionStores(h.manager, r)
	writeResult(w, http.StatusOK, viewOf(stores.Cart), stores.Notices)
}

// AddItem handles POST /api/cart/items requests.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"productId"`
		Size      string `json:"size"`
		Color     string `json:"color"`
		Quantity  int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	stores := sessionStores(h.manager, r)
	product, ok := stores.Cart.Product(req.ProductID)
	if !ok {
		writeError(w, http.StatusNotFound, "product not found", h.logger)
		return
	}

	stores.Cart.AddToCart(r.Context(), product, req.Size, req.Color, req.Quantity)
	writeResult(w, http.StatusOK, viewOf(stores.Cart), stores.Notices)
}

// UpdateItem handles PATCH /api/cart/items/{lineID} requests.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	stores := sessionStores(h.manager, r)
	stores.Cart.UpdateQuantity(r.Context(), r.PathValue("lineID"), req.Quantity)
	writeResult(w, http.StatusOK, viewOf(stores.Cart), stores.Notices)
}

// RemoveItem handles DELETE /api/cart/items/{lineID} requests.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	stores := sessionStores(h.manager, r)
	stores.Cart.RemoveFromCart(r.Context(), r.PathValue("lineID"))
	writeResult(w, http.StatusOK, viewOf(stores.Cart), stores.Notices)
}

// Clear handles DELETE /api/cart requests.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	stores := sessionStores(h.manager, r)
	stores.Cart.ClearCart(r.Context())
	writeResult(w, http.StatusOK, viewOf(stores.Cart), stores.Notices)
}

// ApplyCoupon handles POST /api/cart/coupon requests.
func (h *CartHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	stores := sessionStores(h.manager, r)
	result := stores.Cart.ApplyCoupon(r.Context(), req.Code)

	status := http.StatusOK
	if !result.Valid {
		status = http.StatusUnprocessableEntity
	}
	writeResult(w, status, result, stores.Notices)
}

// RemoveCoupon handles DELETE /api/cart/coupon requests.
func (h *CartHandler) RemoveCoupon(w http.ResponseWriter, r *http.Request) {
	stores := sessionStores(h.manager, r)
	stores.Cart.RemoveCoupon()
	writeResult(w, http.StatusOK, viewOf(stores.Cart), stores.Notices)
}

// SaveForLater handles POST /api/cart/items/{lineID}/save requests.
func (h *CartHandler) SaveForLater(w http.ResponseWriter, r *http.Request) {
	stores := sessionStores(h.manager, r)
	stores.Cart.SaveForLater(r.Context(), r.PathValue("lineID"))
	writeResult(w, http.StatusOK, viewOf(stores.Cart), stores.Notices)
}

// MoveToCart handles POST /api/cart/saved/{productID}/move requests.
func (h *CartHandler) MoveToCart(w http.ResponseWriter, r *http.Request) {
	stores := sessionStores(h.manager, r)
	stores.Cart.MoveToCart(r.Context(), r.PathValue("productID"))
	writeResult(w, http.StatusOK, viewOf(stores.Cart), stores.Notices)
}

// RemoveSaved handles DELETE /api/cart/saved/{productID} requests.
func (h *CartHandler) RemoveSaved(w http.ResponseWriter, r *http.Request) {
	stores := sessionStores(h.manager, r)
	stores.Cart.RemoveFromSaved(r.Context(), r.PathValue("productID"))
	writeResult(w, http.StatusOK, viewOf(stores.Cart), stores.Notices)
}

// Checkout handles POST /api/checkout requests.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req store.PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	stores := sessionStores(h.manager, r)
	placed := stores.Cart.PlaceOrder(r.Context(), req)

	status := http.StatusCreated
	if !placed {
		status = http.StatusUnprocessableEntity
	}
	writeResult(w, status, map[string]bool{"placed": placed}, stores.Notices)
}
