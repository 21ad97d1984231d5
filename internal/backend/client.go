package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"solemate/internal/config"
	"solemate/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	catalogFetchTimeout = 15 * time.Second
	placeOrderTimeout   = 30 * time.Second
)

// APIError is a non-2xx response from the backend. The body is kept verbatim
// because business-rule rejections arrive as plain-text messages.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Body)
}

// client implements API over the backend's REST surface.
type client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  zerolog.Logger
}

// New creates a backend client for the configured REST endpoint.
func New(cfg config.BackendConfig, logger zerolog.Logger) API {
	return &client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		http:    &http.Client{},
		logger:  logger.With().Str("component", "backend-client").Logger(),
	}
}

// do performs a request against the backend. The apikey header is always set;
// the bearer token falls back to the anon key for unauthenticated reads.
func (c *client) do(ctx context.Context, method, path string, query url.Values, token string, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	if token == "" {
		token = c.apiKey
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	if out != nil {
		req.Header.Set("Prefer", "return=representation")
	} else if method != http.MethodGet {
		req.Header.Set("Prefer", "return=minimal")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// FetchCatalog retrieves all non-deleted products.
func (c *client) FetchCatalog(ctx context.Context) ([]model.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, catalogFetchTimeout)
	defer cancel()

	query := url.Values{
		"isdeleted": {"eq.false"},
		"select":    {"*"},
	}

	var rows []productRow
	if err := c.do(ctx, http.MethodGet, "/rest/v1/products", query, "", nil, &rows); err != nil {
		c.logger.Error().Err(err).Msg("failed to fetch catalog")
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}

	products := make([]model.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, row.toProduct())
	}

	c.logger.Debug().Int("count", len(products)).Msg("catalog fetched")

	return products, nil
}

// CheckStock returns the current stock quantity for a product.
func (c *client) CheckStock(ctx context.Context, productID string) (int, error) {
	query := url.Values{
		"id":     {"eq." + productID},
		"select": {"stockquantity"},
		"limit":  {"1"},
	}

	var rows []struct {
		StockQuantity int `json:"stockquantity"`
	}
	if err := c.do(ctx, http.MethodGet, "/rest/v1/products", query, "", nil, &rows); err != nil {
		return 0, fmt.Errorf("failed to check stock: %w", err)
	}
	if len(rows) == 0 {
		return 0, model.ErrProductNotFound
	}

	return rows[0].StockQuantity, nil
}

// InsertProduct adds a product to the catalogue.
func (c *client) InsertProduct(ctx context.Context, token string, p model.Product) error {
	row := productToRow(p)
	row["isdeleted"] = false
	if err := c.do(ctx, http.MethodPost, "/rest/v1/products", nil, token, []map[string]any{row}, nil); err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

// UpdateProduct replaces a product's catalogue row.
func (c *client) UpdateProduct(ctx context.Context, token string, p model.Product) error {
	query := url.Values{"id": {"eq." + p.ID}}
	if err := c.do(ctx, http.MethodPatch, "/rest/v1/products", query, token, productToRow(p), nil); err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return nil
}

// SoftDeleteProduct marks a product deleted without removing the row.
func (c *client) SoftDeleteProduct(ctx context.Context, token, productID string) error {
	query := url.Values{"id": {"eq." + productID}}
	body := map[string]any{"isdeleted": true}
	if err := c.do(ctx, http.MethodPatch, "/rest/v1/products", query, token, body, nil); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

// FetchCartRows retrieves the user's persisted cart rows.
func (c *client) FetchCartRows(ctx context.Context, token, userID string) ([]CartRow, error) {
	query := url.Values{
		"user_id": {"eq." + userID},
		"select":  {"*"},
	}

	var rows []CartRow
	if err := c.do(ctx, http.MethodGet, "/rest/v1/cart_items", query, token, nil, &rows); err != nil {
		return nil, fmt.Errorf("failed to fetch cart: %w", err)
	}

	return rows, nil
}

// InsertCartRow persists a new cart row.
func (c *client) InsertCartRow(ctx context.Context, token string, row CartRow) error {
	body := map[string]any{
		"user_id":    row.UserID,
		"product_id": row.ProductID,
		"quantity":   row.Quantity,
		"size":       row.Size,
		"color":      row.Color,
	}
	if err := c.do(ctx, http.MethodPost, "/rest/v1/cart_items", nil, token, body, nil); err != nil {
		return fmt.Errorf("failed to insert cart row: %w", err)
	}
	return nil
}

func cartRowQuery(userID, productID, size, color string) url.Values {
	return url.Values{
		"user_id":    {"eq." + userID},
		"product_id": {"eq." + productID},
		"size":       {"eq." + size},
		"color":      {"eq." + color},
	}
}

// UpdateCartQuantity updates the quantity of an existing cart row.
func (c *client) UpdateCartQuantity(ctx context.Context, token, userID, productID, size, color string, quantity int) error {
	body := map[string]any{"quantity": quantity}
	if err := c.do(ctx, http.MethodPatch, "/rest/v1/cart_items", cartRowQuery(userID, productID, size, color), token, body, nil); err != nil {
		return fmt.Errorf("failed to update cart row: %w", err)
	}
	return nil
}

// DeleteCartRow removes a cart row.
func (c *client) DeleteCartRow(ctx context.Context, token, userID, productID, size, color string) error {
	if err := c.do(ctx, http.MethodDelete, "/rest/v1/cart_items", cartRowQuery(userID, productID, size, color), token, nil, nil); err != nil {
		return fmt.Errorf("failed to delete cart row: %w", err)
	}
	return nil
}

// ClearCart removes every cart row for the user.
func (c *client) ClearCart(ctx context.Context, token, userID string) error {
	query := url.Values{"user_id": {"eq." + userID}}
	if err := c.do(ctx, http.MethodDelete, "/rest/v1/cart_items", query, token, nil, nil); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// FetchOrders retrieves the user's orders, newest first.
func (c *client) FetchOrders(ctx context.Context, token, userID string) ([]model.Order, error) {
	query := url.Values{
		"user_id": {"eq." + userID},
		"select":  {"*"},
		"order":   {"createdat.desc"},
	}

	var rows []orderRow
	if err := c.do(ctx, http.MethodGet, "/rest/v1/orders", query, token, nil, &rows); err != nil {
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}

	orders := make([]model.Order, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, row.toOrder())
	}

	return orders, nil
}

// PlaceOrder invokes the atomic order-placement procedure. Business-rule
// rejections arrive as plain-text bodies and are classified by substring.
func (c *client) PlaceOrder(ctx context.Context, token string, items []model.OrderItem, total decimal.Decimal, shippingAddress, paymentMethod string) error {
	ctx, cancel := context.WithTimeout(ctx, placeOrderTimeout)
	defer cancel()

	body := map[string]any{
		"p_items":            items,
		"p_total":            total,
		"p_shipping_address": shippingAddress,
		"p_payment_method":   paymentMethod,
	}

	err := c.do(ctx, http.MethodPost, "/rest/v1/rpc/place_order_with_stock", nil, token, body, nil)
	if err == nil {
		return nil
	}

	apiErr, ok := err.(*APIError)
	if !ok {
		return err
	}

	c.logger.Warn().Int("status", apiErr.Status).Str("body", apiErr.Body).Msg("order placement rejected")

	switch {
	case strings.Contains(apiErr.Body, "Insufficient stock"):
		return model.ErrInsufficientStock
	case strings.Contains(apiErr.Body, "Insufficient wallet"):
		return model.ErrInsufficientFunds
	default:
		return model.NewDomainError(model.ErrCodeOrderFailed, "Order failed: "+apiErr.Body)
	}
}

// UpdateOrderStatus requests a status transition for an order.
func (c *client) UpdateOrderStatus(ctx context.Context, token, orderID string, status model.OrderStatus) error {
	query := url.Values{"id": {"eq." + orderID}}
	body := map[string]any{"status": status}
	if err := c.do(ctx, http.MethodPatch, "/rest/v1/orders", query, token, body, nil); err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	return nil
}

// ArchiveOrder marks an order archived.
func (c *client) ArchiveOrder(ctx context.Context, token, orderID string) error {
	query := url.Values{"id": {"eq." + orderID}}
	body := map[string]any{"isarchived": true}
	if err := c.do(ctx, http.MethodPatch, "/rest/v1/orders", query, token, body, nil); err != nil {
		return fmt.Errorf("failed to archive order: %w", err)
	}
	return nil
}

// InsertReturn records a return request.
func (c *client) InsertReturn(ctx context.Context, token, userID string, req model.ReturnRequest) error {
	body := map[string]any{
		"id":            req.ID,
		"user_id":       userID,
		"order_id":      req.OrderID,
		"items":         req.ItemIDs,
		"reason":        req.Reason,
		"method":        req.Method,
		"status":        "Pending",
		"refund_amount": req.RefundAmount,
		"created_at":    time.Now().UTC().Format(time.RFC3339),
	}
	if err := c.do(ctx, http.MethodPost, "/rest/v1/returns", nil, token, body, nil); err != nil {
		return fmt.Errorf("failed to insert return request: %w", err)
	}
	return nil
}

// InsertReview records a product review for an order.
func (c *client) InsertReview(ctx context.Context, token string, review Review) error {
	if err := c.do(ctx, http.MethodPost, "/rest/v1/reviews", nil, token, review, nil); err != nil {
		return fmt.Errorf("failed to insert review: %w", err)
	}
	return nil
}

// PatchOrderReview attaches a rating and review text to an order.
func (c *client) PatchOrderReview(ctx context.Context, token, orderID string, rating int, comment string) error {
	query := url.Values{"id": {"eq." + orderID}}
	body := map[string]any{"rating": rating, "review_text": comment}
	if err := c.do(ctx, http.MethodPatch, "/rest/v1/orders", query, token, body, nil); err != nil {
		return fmt.Errorf("failed to patch order review: %w", err)
	}
	return nil
}

// FetchCoupon retrieves an active coupon by code. Returns nil when absent.
func (c *client) FetchCoupon(ctx context.Context, code string) (*model.Coupon, error) {
	query := url.Values{
		"code":      {"eq." + strings.ToUpper(code)},
		"is_active": {"eq.true"},
		"select":    {"*"},
		"limit":     {"1"},
	}

	var rows []model.Coupon
	if err := c.do(ctx, http.MethodGet, "/rest/v1/coupons", query, "", nil, &rows); err != nil {
		return nil, fmt.Errorf("failed to fetch coupon: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	return &rows[0], nil
}

// IncrementCouponUsage bumps a coupon's server-side usage counter.
func (c *client) IncrementCouponUsage(ctx context.Context, couponID string) error {
	body := map[string]any{"coupon_id": couponID}
	if err := c.do(ctx, http.MethodPost, "/rest/v1/rpc/increment_coupon_usage", nil, "", body, nil); err != nil {
		return fmt.Errorf("failed to increment coupon usage: %w", err)
	}
	return nil
}

// FetchSavedItems retrieves the user's saved product snapshots.
func (c *client) FetchSavedItems(ctx context.Context, token, userID string) ([]model.Product, error) {
	query := url.Values{
		"user_id": {"eq." + userID},
		"select":  {"productdata,productid"},
	}

	var rows []savedItemRow
	if err := c.do(ctx, http.MethodGet, "/rest/v1/saved_items", query, token, nil, &rows); err != nil {
		return nil, fmt.Errorf("failed to fetch saved items: %w", err)
	}

	products := make([]model.Product, 0, len(rows))
	for _, row := range rows {
		if p, ok := row.toProduct(); ok {
			products = append(products, p)
		}
	}

	return products, nil
}

// InsertSavedItem persists a saved product snapshot.
func (c *client) InsertSavedItem(ctx context.Context, token, userID, userEmail string, product model.Product) error {
	body := []map[string]any{{
		"user_id":     userID,
		"useremail":   userEmail,
		"productid":   product.ID,
		"productdata": product,
	}}
	if err := c.do(ctx, http.MethodPost, "/rest/v1/saved_items", nil, token, body, nil); err != nil {
		return fmt.Errorf("failed to insert saved item: %w", err)
	}
	return nil
}

// DeleteSavedItem removes a saved product row.
func (c *client) DeleteSavedItem(ctx context.Context, token, userID, productID string) error {
	query := url.Values{
		"user_id":   {"eq." + userID},
		"productid": {"eq." + productID},
	}
	if err := c.do(ctx, http.MethodDelete, "/rest/v1/saved_items", query, token, nil, nil); err != nil {
		return fmt.Errorf("failed to delete saved item: %w", err)
	}
	return nil
}

// GetAuthUser resolves the session token to the authenticated user.
func (c *client) GetAuthUser(ctx context.Context, token string) (*AuthUser, error) {
	var user AuthUser
	if err := c.do(ctx, http.MethodGet, "/auth/v1/user", nil, token, nil, &user); err != nil {
		return nil, fmt.Errorf("failed to fetch auth user: %w", err)
	}
	if user.ID == "" {
		return nil, model.ErrLoginRequired
	}
	return &user, nil
}

// UpdateRewardCoupons replaces the reward coupon list in profile metadata.
func (c *client) UpdateRewardCoupons(ctx context.Context, token string, coupons []model.RewardCoupon) error {
	if coupons == nil {
		coupons = []model.RewardCoupon{}
	}
	body := map[string]any{
		"data": map[string]any{"spin_coupons": coupons},
	}
	if err := c.do(ctx, http.MethodPut, "/auth/v1/user", nil, token, body, nil); err != nil {
		return fmt.Errorf("failed to update reward coupons: %w", err)
	}
	return nil
}
