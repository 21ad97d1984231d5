package handler

import (
	"encoding/json"
	"net/http"

	"solemate/internal/store"

	"github.com/rs/zerolog"
)

// WishlistHandler handles wishlist HTTP requests.
type WishlistHandler struct {
	manager *store.Manager
	logger  zerolog.Logger
}

// NewWishlistHandler creates a new wishlist handler.
func NewWishlistHandler(manager *store.Manager, logger zerolog.Logger) *WishlistHandler {
	return &WishlistHandler{
		manager: manager,
		logger:  logger.With().Str("handler", "wishlist").Logger(),
	}
}

// List handles GET /api/wishlist requests.
func (h *WishlistHandler) List(w http.ResponseWriter, r *http.Request) {
	stores := sessionStores(h.manager, r)
	writeResult(w, http.StatusOK, stores.Wishlist.Items(), stores.Notices)
}

// Toggle handles POST /api/wishlist/toggle requests: the product is added
// when absent and removed when present.
func (h *WishlistHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"productId"`
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

	stores.Wishlist.Toggle(r.Context(), product)
	writeResult(w, http.StatusOK, stores.Wishlist.Items(), stores.Notices)
}

// Add handles POST /api/wishlist requests.
func (h *WishlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"productId"`
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

	stores.Wishlist.Add(r.Context(), product)
	writeResult(w, http.StatusOK, stores.Wishlist.Items(), stores.Notices)
}

// Remove handles DELETE /api/wishlist/{productID} requests.
func (h *WishlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	stores := sessionStores(h.manager, r)
	stores.Wishlist.Remove(r.Context(), r.PathValue("productID"))
	writeResult(w, http.StatusOK, stores.Wishlist.Items(), stores.Notices)
}
