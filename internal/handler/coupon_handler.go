package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"solemate/internal/coupon"
	"solemate/internal/model"
	"solemate/internal/store"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// CouponHandler handles coupon HTTP requests.
type CouponHandler struct {
	manager  *store.Manager
	resolver coupon.Resolver
	logger   zerolog.Logger
}

// NewCouponHandler creates a new coupon handler.
func NewCouponHandler(manager *store.Manager, resolver coupon.Resolver, logger zerolog.Logger) *CouponHandler {
	return &CouponHandler{
		manager:  manager,
		resolver: resolver,
		logger:   logger.With().Str("handler", "coupon").Logger(),
	}
}

// Validate handles POST /api/coupons/validate requests: a dry-run check that
// does not apply the coupon to the cart. When the subtotal is omitted the
// current cart subtotal is used.
func (h *CouponHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code     string          `json:"code"`
		Subtotal decimal.Decimal `json:"subtotal"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	subtotal := req.Subtotal
	if subtotal.IsZero() {
		subtotal = sessionStores(h.manager, r).Cart.Subtotal()
	}

	result := h.resolver.Validate(r.Context(), req.Code, subtotal)

	status := http.StatusOK
	if !result.Valid {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, result)
}

// Rewards handles GET /api/coupons/rewards requests, refreshing the reward
// coupons from the user's profile metadata.
func (h *CouponHandler) Rewards(w http.ResponseWriter, r *http.Request) {
	stores := sessionStores(h.manager, r)

	rewards, err := stores.Cart.FetchUserCoupons(r.Context())
	if err != nil {
		if errors.Is(err, model.ErrLoginRequired) {
			writeError(w, http.StatusUnauthorized, model.ErrLoginRequired.Message, h.logger)
			return
		}
		writeError(w, http.StatusBadGateway, "failed to fetch reward coupons", h.logger)
		return
	}

	writeResult(w, http.StatusOK, rewards, stores.Notices)
}
