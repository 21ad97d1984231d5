package handler

import (
	"encoding/json"
	"net/http"

	"solemate/internal/model"
	"solemate/internal/store"

	"github.com/rs/zerolog"
)

// CatalogHandler handles product catalogue HTTP requests.
type CatalogHandler struct {
	manager *store.Manager
	logger  zerolog.Logger
}

// NewCatalogHandler creates a new catalogue handler.
func NewCatalogHandler(manager *store.Manager, logger zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{
		manager: manager,
		logger:  logger.With().Str("handler", "catalog").Logger(),
	}
}

// List handles GET /api/products requests.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	stores := sessionStores(h.manager, r)
	writeResult(w, http.StatusOK, stores.Cart.Products(), stores.Notices)
}

// GetByID handles GET /api/products/{productID} requests.
func (h *CatalogHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	stores := sessionStores(h.manager, r)
	product, ok := stores.Cart.Product(r.PathValue("productID"))
	if !ok {
		writeError(w, http.StatusNotFound, "product not found", h.logger)
		return
	}
	writeResult(w, http.StatusOK, product, stores.Notices)
}

// Stock handles GET /api/products/{productID}/stock requests.
func (h *CatalogHandler) Stock(w http.ResponseWriter, r *http.Request) {
	stores := sessionStores(h.manager, r)
	quantity := stores.Cart.CheckStock(r.Context(), r.PathValue("productID"))
	writeResult(w, http.StatusOK, map[string]int{"stockQuantity": quantity}, stores.Notices)
}

// Create handles POST /api/products requests.
func (h *CatalogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var p model.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	stores := sessionStores(h.manager, r)
	stores.Cart.AddProduct(r.Context(), p)
	writeResult(w, http.StatusCreated, stores.Cart.Products(), stores.Notices)
}

// Update handles PUT /api/products/{productID} requests.
func (h *CatalogHandler) Update(w http.ResponseWriter, r *http.Request) {
	var p model.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}
	p.ID = r.PathValue("productID")

	stores := sessionStores(h.manager, r)
	stores.Cart.UpdateProduct(r.Context(), p)
	writeResult(w, http.StatusOK, stores.Cart.Products(), stores.Notices)
}

// Delete handles DELETE /api/products/{productID} requests.
func (h *CatalogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	stores := sessionStores(h.manager, r)
	stores.Cart.DeleteProduct(r.Context(), r.PathValue("productID"))
	writeResult(w, http.StatusOK, stores.Cart.Products(), stores.Notices)
}
