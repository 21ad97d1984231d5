package handler

import (
	"encoding/json"
	"net/http"

	"solemate/internal/model"
	"solemate/internal/store"

	"github.com/rs/zerolog"
)

// OrderHandler handles order history HTTP requests.
type OrderHandler struct {
	manager *store.Manager
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(manager *store.Manager, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		manager: manager,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// List handles GET /api/orders requests. Archived orders are excluded unless
// the archived query parameter is set.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	stores := sessionStores(h.manager, r)

	orders := stores.Cart.Orders()
	if r.URL.Query().Get("archived") == "" {
		visible := orders[:0]
		for _, o := range orders {
			if !o.IsArchived {
				visible = append(visible, o)
			}
		}
		orders = visible
	}

	writeResult(w, http.StatusOK, orders, stores.Notices)
}

// Cancel handles POST /api/orders/{orderID}/cancel requests.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	stores := sessionStores(h.manager, r)
	stores.Cart.CancelOrder(r.Context(), r.PathValue("orderID"))
	writeResult(w, http.StatusOK, stores.Cart.Orders(), stores.Notices)
}

// Return handles POST /api/orders/{orderID}/return requests.
func (h *OrderHandler) Return(w http.ResponseWriter, r *http.Request) {
	var req model.ReturnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}
	req.OrderID = r.PathValue("orderID")

	stores := sessionStores(h.manager, r)
	stores.Cart.ReturnOrder(r.Context(), req)
	writeResult(w, http.StatusOK, stores.Cart.Orders(), stores.Notices)
}

// Archive handles POST /api/orders/{orderID}/archive requests.
func (h *OrderHandler) Archive(w http.ResponseWriter, r *http.Request) {
	stores := sessionStores(h.manager, r)
	stores.Cart.ArchiveOrder(r.Context(), r.PathValue("orderID"))
	writeResult(w, http.StatusOK, stores.Cart.Orders(), stores.Notices)
}

// UpdateStatus handles PATCH /api/orders/{orderID}/status requests.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status model.OrderStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	stores := sessionStores(h.manager, r)
	stores.Cart.UpdateOrderStatus(r.Context(), r.PathValue("orderID"), req.Status)
	writeResult(w, http.StatusOK, stores.Cart.Orders(), stores.Notices)
}

// Purge handles DELETE /api/orders/{orderID} requests. Only the local copy is
// dropped; the backend row survives.
func (h *OrderHandler) Purge(w http.ResponseWriter, r *http.Request) {
	stores := sessionStores(h.manager, r)
	stores.Cart.PurgeOrder(r.PathValue("orderID"))
	writeResult(w, http.StatusOK, stores.Cart.Orders(), stores.Notices)
}

// Review handles POST /api/orders/{orderID}/review requests.
func (h *OrderHandler) Review(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	stores := sessionStores(h.manager, r)
	stores.Cart.SubmitReview(r.Context(), r.PathValue("orderID"), req.Rating, req.Comment)
	writeResult(w, http.StatusOK, stores.Cart.Orders(), stores.Notices)
}
