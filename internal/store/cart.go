package store

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"solemate/internal/backend"
	"solemate/internal/coupon"
	"solemate/internal/model"
	"solemate/internal/realtime"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// PlaceOrderRequest carries the checkout inputs. Items and Total are optional;
// when Items is empty the current cart lines and discounted total are used.
type PlaceOrderRequest struct {
	Items           []model.OrderItem `json:"items,omitempty"`
	Total           decimal.Decimal   `json:"total"`
	ShippingAddress model.Address     `json:"shippingAddress"`
	PaymentMethod   string            `json:"paymentMethod"`
}

// Cart is the per-session shopping state: catalogue snapshot, cart lines,
// saved-for-later items, order history and the applied coupon. Mutations are
// optimistic: local state changes first, the backend write follows, and the
// local change is rolled back if the write fails. Guests (nil session) get the
// same local behaviour with all backend writes skipped.
type Cart struct {
	api      backend.API
	resolver coupon.Resolver
	feed     realtime.Feed
	notifier Notifier
	logger   zerolog.Logger
	session  *model.Session

	mu             sync.Mutex
	products       []model.Product
	lines          []model.CartLine
	saved          []model.Product
	orders         []model.Order
	applied        *model.Coupon
	rewardCoupons  []model.RewardCoupon
	refreshTrigger int

	cancelFeeds []func()
}

// NewCart creates a cart store for the session.
func NewCart(api backend.API, resolver coupon.Resolver, feed realtime.Feed, notifier Notifier, session *model.Session, logger zerolog.Logger) *Cart {
	return &Cart{
		api:      api,
		resolver: resolver,
		feed:     feed,
		notifier: notifier,
		session:  session,
		logger:   logger.With().Str("store", "cart").Logger(),
	}
}

// Start loads the catalogue and, for signed-in users, the persisted cart,
// orders, saved items and reward coupons, then opens the change feeds.
// Individual sync failures are logged and leave that slice empty; Start never
// fails outright.
func (c *Cart) Start(ctx context.Context) {
	c.syncCatalog(ctx)

	if c.session.Authenticated() {
		c.syncCart(ctx)
		c.syncOrders(ctx)
		c.syncSaved(ctx)
		if _, err := c.FetchUserCoupons(ctx); err != nil {
			c.logger.Error().Err(err).Msg("reward coupon sync failed")
		}
	}

	c.subscribe("products", "", c.applyProductEvent)
	if c.session.Authenticated() {
		c.subscribe("cart_items", c.session.UserID, c.applyCartEvent)
		c.subscribe("orders", c.session.UserID, c.applyOrderEvent)
		c.subscribe("saved_items", c.session.UserID, c.applySavedEvent)
	}
}

// Close cancels all change feed subscriptions.
func (c *Cart) Close() {
	for _, cancel := range c.cancelFeeds {
		cancel()
	}
	c.cancelFeeds = nil
}

func (c *Cart) subscribe(table, userID string, apply func(realtime.Event)) {
	events, cancel := c.feed.Subscribe(table, userID)
	c.cancelFeeds = append(c.cancelFeeds, cancel)
	go func() {
		for event := range events {
			apply(event)
		}
	}()
}

func (c *Cart) syncCatalog(ctx context.Context) {
	products, err := c.api.FetchCatalog(ctx)
	if err != nil {
		c.logger.Error().Err(err).Msg("catalogue sync failed")
		return
	}

	c.mu.Lock()
	c.products = products
	c.mu.Unlock()
}

// syncCart joins persisted cart rows against the catalogue snapshot. Rows
// whose product no longer exists are dropped.
func (c *Cart) syncCart(ctx context.Context) {
	rows, err := c.api.FetchCartRows(ctx, c.session.AccessToken, c.session.UserID)
	if err != nil {
		c.logger.Error().Err(err).Msg("cart sync failed")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	lines := make([]model.CartLine, 0, len(rows))
	for _, row := range rows {
		p, ok := c.productLocked(row.ProductID)
		if !ok {
			c.logger.Warn().Str("product_id", row.ProductID).Msg("cart row references unknown product")
			continue
		}
		lines = append(lines, model.CartLine{
			Product:       p,
			LineID:        model.LineID(row.ProductID, row.Size, row.Color),
			SelectedSize:  row.Size,
			SelectedColor: row.Color,
			Quantity:      row.Quantity,
			UpdatedAt:     row.UpdatedAt,
		})
	}
	c.lines = lines
}

func (c *Cart) syncOrders(ctx context.Context) {
	orders, err := c.api.FetchOrders(ctx, c.session.AccessToken, c.session.UserID)
	if err != nil {
		c.logger.Error().Err(err).Msg("order sync failed")
		return
	}

	c.mu.Lock()
	c.orders = orders
	c.mu.Unlock()
}

func (c *Cart) syncSaved(ctx context.Context) {
	saved, err := c.api.FetchSavedItems(ctx, c.session.AccessToken, c.session.UserID)
	if err != nil {
		c.logger.Error().Err(err).Msg("saved items sync failed")
		return
	}

	c.mu.Lock()
	c.saved = saved
	c.mu.Unlock()
}

// FetchUserCoupons refreshes the reward coupons from the user's profile
// metadata and returns the current list.
func (c *Cart) FetchUserCoupons(ctx context.Context) ([]model.RewardCoupon, error) {
	if !c.session.Authenticated() {
		return nil, model.ErrLoginRequired
	}

	user, err := c.api.GetAuthUser(ctx, c.session.AccessToken)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.rewardCoupons = user.UserMetadata.SpinCoupons
	rewards := make([]model.RewardCoupon, len(c.rewardCoupons))
	copy(rewards, c.rewardCoupons)
	c.mu.Unlock()

	return rewards, nil
}

// Products returns a copy of the catalogue snapshot.
func (c *Cart) Products() []model.Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Product, len(c.products))
	copy(out, c.products)
	return out
}

// Product looks up a catalogue product by id.
func (c *Cart) Product(productID string) (model.Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.productLocked(productID)
}

// productLocked requires c.mu held.
func (c *Cart) productLocked(productID string) (model.Product, bool) {
	for _, p := range c.products {
		if p.ID == productID {
			return p, true
		}
	}
	return model.Product{}, false
}

// Lines returns a copy of the cart lines.
func (c *Cart) Lines() []model.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// SavedItems returns a copy of the saved-for-later products.
func (c *Cart) SavedItems() []model.Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Product, len(c.saved))
	copy(out, c.saved)
	return out
}

// Orders returns a copy of the order history, archived orders included.
func (c *Cart) Orders() []model.Order {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Order, len(c.orders))
	copy(out, c.orders)
	return out
}

// AppliedCoupon returns the currently applied coupon, nil when none.
func (c *Cart) AppliedCoupon() *model.Coupon {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.applied == nil {
		return nil
	}
	cp := *c.applied
	return &cp
}

// RewardCoupons returns the cached reward coupons.
func (c *Cart) RewardCoupons() []model.RewardCoupon {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.RewardCoupon, len(c.rewardCoupons))
	copy(out, c.rewardCoupons)
	return out
}

// RefreshTrigger returns a counter that increments after each successful
// order, letting callers re-fetch stock-sensitive views.
func (c *Cart) RefreshTrigger() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshTrigger
}

// lineIndexLocked requires c.mu held.
func (c *Cart) lineIndexLocked(lineID string) int {
	for i, line := range c.lines {
		if line.LineID == lineID {
			return i
		}
	}
	return -1
}

// CartCount is the total quantity across all lines.
func (c *Cart) CartCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := 0
	for _, line := range c.lines {
		count += line.Quantity
	}
	return count
}

// Subtotal is the pre-discount sum of line price times quantity.
func (c *Cart) Subtotal() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subtotalLocked()
}

// subtotalLocked requires c.mu held.
func (c *Cart) subtotalLocked() decimal.Decimal {
	subtotal := decimal.Zero
	for _, line := range c.lines {
		subtotal = subtotal.Add(line.Product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return subtotal
}

// DiscountAmount is the discount the applied coupon grants on the current
// subtotal. Recomputed on every call so quantity changes are reflected.
func (c *Cart) DiscountAmount() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.applied == nil {
		return decimal.Zero
	}
	return coupon.ComputeDiscount(*c.applied, c.subtotalLocked())
}

// CartTotal is the subtotal less the coupon discount.
func (c *Cart) CartTotal() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	subtotal := c.subtotalLocked()
	if c.applied == nil {
		return subtotal
	}
	return subtotal.Sub(coupon.ComputeDiscount(*c.applied, subtotal))
}

// AddToCart adds quantity units of a product variant. An existing line for
// the same (product, size, color) has its quantity incremented instead of a
// duplicate line being created. Empty size and color fall back to the
// product's defaults.
func (c *Cart) AddToCart(ctx context.Context, product model.Product, size, color string, quantity int) {
	if quantity <= 0 {
		quantity = 1
	}
	if size == "" {
		size = product.DefaultSize()
	}
	if color == "" {
		color = product.DefaultColor()
	}

	lineID := model.LineID(product.ID, size, color)

	c.mu.Lock()
	i := c.lineIndexLocked(lineID)
	existed := i >= 0
	var prevQuantity int
	if existed {
		prevQuantity = c.lines[i].Quantity
		c.lines[i].Quantity += quantity
		c.lines[i].UpdatedAt = time.Now()
	} else {
		c.lines = append(c.lines, model.CartLine{
			Product:       product,
			LineID:        lineID,
			SelectedSize:  size,
			SelectedColor: color,
			Quantity:      quantity,
			UpdatedAt:     time.Now(),
		})
	}
	newQuantity := prevQuantity + quantity
	c.mu.Unlock()

	if c.session.Authenticated() {
		var err error
		if existed {
			err = c.api.UpdateCartQuantity(ctx, c.session.AccessToken, c.session.UserID, product.ID, size, color, newQuantity)
		} else {
			err = c.api.InsertCartRow(ctx, c.session.AccessToken, backend.CartRow{
				UserID:    c.session.UserID,
				ProductID: product.ID,
				Quantity:  quantity,
				Size:      size,
				Color:     color,
			})
		}
		if err != nil {
			c.logger.Error().Err(err).Str("line_id", lineID).Msg("cart add failed")
			c.mu.Lock()
			if j := c.lineIndexLocked(lineID); j >= 0 {
				if existed {
					c.lines[j].Quantity = prevQuantity
				} else {
					c.lines = append(c.lines[:j], c.lines[j+1:]...)
				}
			}
			c.mu.Unlock()
			c.notifier.Error("Failed to update cart")
			return
		}
	}

	c.notifier.Success(product.Name + " added to cart")
}

// RemoveFromCart deletes a cart line. Unknown line ids are ignored.
func (c *Cart) RemoveFromCart(ctx context.Context, lineID string) {
	c.mu.Lock()
	i := c.lineIndexLocked(lineID)
	if i < 0 {
		c.mu.Unlock()
		return
	}
	removed := c.lines[i]
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	c.mu.Unlock()

	if c.session.Authenticated() {
		err := c.api.DeleteCartRow(ctx, c.session.AccessToken, c.session.UserID,
			removed.Product.ID, removed.SelectedSize, removed.SelectedColor)
		if err != nil {
			c.logger.Error().Err(err).Str("line_id", lineID).Msg("cart remove failed")
			c.mu.Lock()
			c.lines = append(c.lines, removed)
			c.mu.Unlock()
			c.notifier.Error("Failed to update cart")
			return
		}
	}

	c.notifier.Info(removed.Product.Name + " removed from cart")
}

// UpdateQuantity sets a line's quantity. Zero or negative removes the line.
func (c *Cart) UpdateQuantity(ctx context.Context, lineID string, quantity int) {
	if quantity <= 0 {
		c.RemoveFromCart(ctx, lineID)
		return
	}

	c.mu.Lock()
	i := c.lineIndexLocked(lineID)
	if i < 0 {
		c.mu.Unlock()
		return
	}
	prev := c.lines[i].Quantity
	line := c.lines[i]
	c.lines[i].Quantity = quantity
	c.lines[i].UpdatedAt = time.Now()
	c.mu.Unlock()

	if c.session.Authenticated() {
		err := c.api.UpdateCartQuantity(ctx, c.session.AccessToken, c.session.UserID,
			line.Product.ID, line.SelectedSize, line.SelectedColor, quantity)
		if err != nil {
			c.logger.Error().Err(err).Str("line_id", lineID).Msg("cart quantity update failed")
			c.mu.Lock()
			if j := c.lineIndexLocked(lineID); j >= 0 {
				c.lines[j].Quantity = prev
			}
			c.mu.Unlock()
			c.notifier.Error("Failed to update cart")
		}
	}
}

// ClearCart empties the cart and drops any applied coupon.
func (c *Cart) ClearCart(ctx context.Context) {
	c.mu.Lock()
	prevLines := c.lines
	prevCoupon := c.applied
	c.lines = nil
	c.applied = nil
	c.mu.Unlock()

	if c.session.Authenticated() {
		if err := c.api.ClearCart(ctx, c.session.AccessToken, c.session.UserID); err != nil {
			c.logger.Error().Err(err).Msg("cart clear failed")
			c.mu.Lock()
			c.lines = prevLines
			c.applied = prevCoupon
			c.mu.Unlock()
			c.notifier.Error("Failed to update cart")
		}
	}
}

// ApplyCoupon validates a code against the current subtotal and applies it on
// success. Codes absent from the coupon catalogue fall back to the user's
// reward coupons. Requires a signed-in session.
func (c *Cart) ApplyCoupon(ctx context.Context, code string) coupon.Result {
	if !c.session.Authenticated() {
		res := coupon.Result{Valid: false, Message: "Please login to apply coupons"}
		c.notifier.Error(res.Message)
		return res
	}

	subtotal := c.Subtotal()
	res := c.resolver.Validate(ctx, code, subtotal)

	if !res.Valid && !res.Found {
		if reward, ok := c.findReward(code); ok {
			res = coupon.ValidateReward(reward, subtotal)
		}
	}

	if !res.Valid {
		c.notifier.Error(res.Message)
		return res
	}

	c.mu.Lock()
	c.applied = res.Coupon
	c.mu.Unlock()

	c.notifier.Success(res.Message)
	return res
}

func (c *Cart) findReward(code string) (model.RewardCoupon, bool) {
	clean := strings.ToUpper(strings.TrimSpace(code))

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, reward := range c.rewardCoupons {
		if strings.ToUpper(reward.CouponCode) == clean {
			return reward, true
		}
	}
	return model.RewardCoupon{}, false
}

// RemoveCoupon drops the applied coupon; totals revert to the subtotal.
func (c *Cart) RemoveCoupon() {
	c.mu.Lock()
	had := c.applied != nil
	c.applied = nil
	c.mu.Unlock()

	if had {
		c.notifier.Info("Coupon removed")
	}
}

// PlaceOrder runs checkout through the atomic order-placement procedure. The
// cart is only cleared after the backend confirms; on any failure the cart,
// coupon and totals are left untouched and the return is false.
func (c *Cart) PlaceOrder(ctx context.Context, req PlaceOrderRequest) bool {
	if !c.session.Authenticated() {
		c.notifier.Error("Please login to place an order")
		return false
	}

	items := req.Items
	total := req.Total
	if len(items) == 0 {
		c.mu.Lock()
		for _, line := range c.lines {
			items = append(items, model.OrderItem{
				ProductID:     line.Product.ID,
				Name:          line.Product.Name,
				Price:         line.Product.Price,
				Image:         line.Product.Image,
				SelectedSize:  line.SelectedSize,
				SelectedColor: line.SelectedColor,
				Quantity:      line.Quantity,
			})
		}
		subtotal := c.subtotalLocked()
		total = subtotal
		if c.applied != nil {
			total = subtotal.Sub(coupon.ComputeDiscount(*c.applied, subtotal))
		}
		c.mu.Unlock()
	}

	if len(items) == 0 {
		c.notifier.Error("Your cart is empty")
		return false
	}

	err := c.api.PlaceOrder(ctx, c.session.AccessToken, items, total,
		req.ShippingAddress.Flatten(), req.PaymentMethod)
	if err != nil {
		c.logger.Error().Err(err).Msg("order placement failed")
		switch {
		case errors.Is(err, model.ErrInsufficientStock):
			c.notifier.Error(model.ErrInsufficientStock.Message)
		case errors.Is(err, model.ErrInsufficientFunds):
			c.notifier.Error(model.ErrInsufficientFunds.Message)
		default:
			var domainErr *model.DomainError
			if errors.As(err, &domainErr) {
				c.notifier.Error(domainErr.Message)
			} else {
				c.notifier.Error("Failed to place order. Try again.")
			}
		}
		return false
	}

	c.consumeCoupon(ctx)

	c.mu.Lock()
	c.lines = nil
	c.applied = nil
	c.refreshTrigger++
	c.mu.Unlock()

	if err := c.api.ClearCart(ctx, c.session.AccessToken, c.session.UserID); err != nil {
		c.logger.Warn().Err(err).Msg("post-order cart clear failed")
	}

	c.notifier.Success("Order placed successfully!")
	return true
}

// consumeCoupon spends the applied coupon after a successful order: reward
// coupons are removed from the profile metadata, catalogue coupons have their
// usage counter bumped. Both are best effort.
func (c *Cart) consumeCoupon(ctx context.Context) {
	c.mu.Lock()
	applied := c.applied
	c.mu.Unlock()
	if applied == nil {
		return
	}

	if applied.IsReward {
		c.mu.Lock()
		remaining := make([]model.RewardCoupon, 0, len(c.rewardCoupons))
		for _, reward := range c.rewardCoupons {
			if reward.ID != applied.ID {
				remaining = append(remaining, reward)
			}
		}
		c.rewardCoupons = remaining
		c.mu.Unlock()

		if err := c.api.UpdateRewardCoupons(ctx, c.session.AccessToken, remaining); err != nil {
			c.logger.Warn().Err(err).Str("coupon_id", applied.ID).Msg("reward coupon consume failed")
		}
		return
	}

	if err := c.api.IncrementCouponUsage(ctx, applied.ID); err != nil {
		c.logger.Warn().Err(err).Str("coupon_id", applied.ID).Msg("coupon usage increment failed")
	}
}

// SaveForLater moves a cart line into the saved items list. Requires a
// signed-in session.
func (c *Cart) SaveForLater(ctx context.Context, lineID string) {
	if !c.session.Authenticated() {
		c.notifier.Error("Please login to save items")
		return
	}

	c.mu.Lock()
	i := c.lineIndexLocked(lineID)
	if i < 0 {
		c.mu.Unlock()
		return
	}
	line := c.lines[i]
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	alreadySaved := false
	for _, p := range c.saved {
		if p.ID == line.Product.ID {
			alreadySaved = true
			break
		}
	}
	if !alreadySaved {
		c.saved = append(c.saved, line.Product)
	}
	c.mu.Unlock()

	err := c.api.DeleteCartRow(ctx, c.session.AccessToken, c.session.UserID,
		line.Product.ID, line.SelectedSize, line.SelectedColor)
	if err == nil && !alreadySaved {
		err = c.api.InsertSavedItem(ctx, c.session.AccessToken, c.session.UserID, c.session.Email, line.Product)
	}
	if err != nil {
		c.logger.Error().Err(err).Str("line_id", lineID).Msg("save for later failed")
		c.mu.Lock()
		c.lines = append(c.lines, line)
		if !alreadySaved {
			c.removeSavedLocked(line.Product.ID)
		}
		c.mu.Unlock()
		c.notifier.Error("Failed to save item")
		return
	}

	c.notifier.Success(line.Product.Name + " saved for later")
}

// MoveToCart moves a saved item back into the cart with default variant and
// quantity 1, then removes it from the saved list.
func (c *Cart) MoveToCart(ctx context.Context, productID string) {
	c.mu.Lock()
	var product model.Product
	found := false
	for _, p := range c.saved {
		if p.ID == productID {
			product = p
			found = true
			break
		}
	}
	c.mu.Unlock()
	if !found {
		return
	}

	c.AddToCart(ctx, product, product.DefaultSize(), product.DefaultColor(), 1)
	c.RemoveFromSaved(ctx, productID)
}

// RemoveFromSaved drops a product from the saved items list.
func (c *Cart) RemoveFromSaved(ctx context.Context, productID string) {
	c.mu.Lock()
	removed, ok := c.removeSavedLocked(productID)
	c.mu.Unlock()
	if !ok {
		return
	}

	if c.session.Authenticated() {
		err := c.api.DeleteSavedItem(ctx, c.session.AccessToken, c.session.UserID, productID)
		if err != nil {
			c.logger.Error().Err(err).Str("product_id", productID).Msg("saved item remove failed")
			c.mu.Lock()
			c.saved = append(c.saved, removed)
			c.mu.Unlock()
			c.notifier.Error("Failed to update saved items")
		}
	}
}

// removeSavedLocked requires c.mu held.
func (c *Cart) removeSavedLocked(productID string) (model.Product, bool) {
	for i, p := range c.saved {
		if p.ID == productID {
			c.saved = append(c.saved[:i], c.saved[i+1:]...)
			return p, true
		}
	}
	return model.Product{}, false
}

// CheckStock returns the live stock quantity for a product, zero when the
// lookup fails.
func (c *Cart) CheckStock(ctx context.Context, productID string) int {
	quantity, err := c.api.CheckStock(ctx, productID)
	if err != nil {
		c.logger.Error().Err(err).Str("product_id", productID).Msg("stock check failed")
		return 0
	}
	return quantity
}

// orderIndexLocked requires c.mu held.
func (c *Cart) orderIndexLocked(orderID string) int {
	for i, o := range c.orders {
		if o.ID == orderID {
			return i
		}
	}
	return -1
}

// CancelOrder cancels an order that is still processing.
func (c *Cart) CancelOrder(ctx context.Context, orderID string) {
	c.mu.Lock()
	i := c.orderIndexLocked(orderID)
	if i < 0 || c.orders[i].Status != model.StatusProcessing {
		c.mu.Unlock()
		c.notifier.Error("This order can no longer be cancelled")
		return
	}
	prev := c.orders[i].Status
	c.orders[i].Status = model.StatusCancelled
	c.mu.Unlock()

	err := c.api.UpdateOrderStatus(ctx, c.session.AccessToken, orderID, model.StatusCancelled)
	if err != nil {
		c.logger.Error().Err(err).Str("order_id", orderID).Msg("order cancel failed")
		c.mu.Lock()
		if j := c.orderIndexLocked(orderID); j >= 0 {
			c.orders[j].Status = prev
		}
		c.mu.Unlock()
		c.notifier.Error("Failed to cancel order")
		return
	}

	c.notifier.Success("Order cancelled")
}

// ReturnOrder records a return request for a delivered order and moves the
// order into the return-requested state.
func (c *Cart) ReturnOrder(ctx context.Context, req model.ReturnRequest) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.RequestedAt.IsZero() {
		req.RequestedAt = time.Now()
	}
	if req.Status == "" {
		req.Status = "pending"
	}

	c.mu.Lock()
	i := c.orderIndexLocked(req.OrderID)
	if i < 0 || c.orders[i].Status != model.StatusDelivered {
		c.mu.Unlock()
		c.notifier.Error("Only delivered orders can be returned")
		return
	}
	prevStatus := c.orders[i].Status
	prevReturns := c.orders[i].ReturnsInfo
	c.orders[i].Status = model.StatusReturnRequested
	c.orders[i].ReturnsInfo = &req
	c.mu.Unlock()

	err := c.api.InsertReturn(ctx, c.session.AccessToken, c.session.UserID, req)
	if err == nil {
		err = c.api.UpdateOrderStatus(ctx, c.session.AccessToken, req.OrderID, model.StatusReturnRequested)
	}
	if err != nil {
		c.logger.Error().Err(err).Str("order_id", req.OrderID).Msg("return request failed")
		c.mu.Lock()
		if j := c.orderIndexLocked(req.OrderID); j >= 0 {
			c.orders[j].Status = prevStatus
			c.orders[j].ReturnsInfo = prevReturns
		}
		c.mu.Unlock()
		c.notifier.Error("Failed to submit return request")
		return
	}

	c.notifier.Success("Return request submitted")
}

// ArchiveOrder hides an order from the default history view.
func (c *Cart) ArchiveOrder(ctx context.Context, orderID string) {
	c.mu.Lock()
	i := c.orderIndexLocked(orderID)
	if i < 0 {
		c.mu.Unlock()
		return
	}
	c.orders[i].IsArchived = true
	c.mu.Unlock()

	if err := c.api.ArchiveOrder(ctx, c.session.AccessToken, orderID); err != nil {
		c.logger.Error().Err(err).Str("order_id", orderID).Msg("order archive failed")
		c.mu.Lock()
		if j := c.orderIndexLocked(orderID); j >= 0 {
			c.orders[j].IsArchived = false
		}
		c.mu.Unlock()
		c.notifier.Error("Failed to archive order")
		return
	}

	c.notifier.Info("Order archived")
}

// UpdateOrderStatus requests a status transition for an order.
func (c *Cart) UpdateOrderStatus(ctx context.Context, orderID string, status model.OrderStatus) {
	c.mu.Lock()
	i := c.orderIndexLocked(orderID)
	if i < 0 {
		c.mu.Unlock()
		return
	}
	prev := c.orders[i].Status
	c.orders[i].Status = status
	c.mu.Unlock()

	if err := c.api.UpdateOrderStatus(ctx, c.session.AccessToken, orderID, status); err != nil {
		c.logger.Error().Err(err).Str("order_id", orderID).Msg("order status update failed")
		c.mu.Lock()
		if j := c.orderIndexLocked(orderID); j >= 0 {
			c.orders[j].Status = prev
		}
		c.mu.Unlock()
		c.notifier.Error("Failed to update order")
	}
}

// PurgeOrder drops an order from the local history only; the backend row is
// untouched.
func (c *Cart) PurgeOrder(orderID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.orderIndexLocked(orderID); i >= 0 {
		c.orders = append(c.orders[:i], c.orders[i+1:]...)
	}
}

// SubmitReview records a rating and comment against a delivered order and each
// product in it.
func (c *Cart) SubmitReview(ctx context.Context, orderID string, rating int, comment string) {
	if rating < 1 || rating > 5 {
		c.notifier.Error("Rating must be between 1 and 5")
		return
	}

	c.mu.Lock()
	i := c.orderIndexLocked(orderID)
	if i < 0 || c.orders[i].Status != model.StatusDelivered {
		c.mu.Unlock()
		c.notifier.Error("Only delivered orders can be reviewed")
		return
	}
	order := c.orders[i]
	c.mu.Unlock()

	for _, item := range order.Items {
		review := backend.Review{
			OrderID:   orderID,
			UserID:    c.session.UserID,
			ProductID: item.ProductID,
			Rating:    rating,
			Comment:   comment,
			UserName:  c.session.Name,
			CreatedAt: time.Now(),
		}
		if err := c.api.InsertReview(ctx, c.session.AccessToken, review); err != nil {
			c.logger.Error().Err(err).Str("order_id", orderID).Msg("review insert failed")
			c.notifier.Error("Failed to submit review")
			return
		}
	}

	if err := c.api.PatchOrderReview(ctx, c.session.AccessToken, orderID, rating, comment); err != nil {
		c.logger.Warn().Err(err).Str("order_id", orderID).Msg("order review patch failed")
	}

	c.mu.Lock()
	if j := c.orderIndexLocked(orderID); j >= 0 {
		c.orders[j].Rating = rating
		c.orders[j].ReviewText = comment
	}
	c.mu.Unlock()

	c.notifier.Success("Thanks for your review!")
}

// AddProduct adds a product to the catalogue. Generates an id when absent.
func (c *Cart) AddProduct(ctx context.Context, p model.Product) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.Image = model.SanitizeImageURL(p.Image)

	if err := c.api.InsertProduct(ctx, c.session.AccessToken, p); err != nil {
		c.logger.Error().Err(err).Str("product_id", p.ID).Msg("product insert failed")
		c.notifier.Error("Failed to add product")
		return
	}

	c.mu.Lock()
	c.products = append(c.products, p)
	c.mu.Unlock()

	c.notifier.Success(p.Name + " added to catalogue")
}

// UpdateProduct replaces a catalogue product.
func (c *Cart) UpdateProduct(ctx context.Context, p model.Product) {
	p.Image = model.SanitizeImageURL(p.Image)

	if err := c.api.UpdateProduct(ctx, c.session.AccessToken, p); err != nil {
		c.logger.Error().Err(err).Str("product_id", p.ID).Msg("product update failed")
		c.notifier.Error("Failed to update product")
		return
	}

	c.mu.Lock()
	for i := range c.products {
		if c.products[i].ID == p.ID {
			c.products[i] = p
			break
		}
	}
	c.mu.Unlock()

	c.notifier.Success(p.Name + " updated")
}

// DeleteProduct soft-deletes a catalogue product. Existing cart lines and
// order snapshots keep referencing it.
func (c *Cart) DeleteProduct(ctx context.Context, productID string) {
	if err := c.api.SoftDeleteProduct(ctx, c.session.AccessToken, productID); err != nil {
		c.logger.Error().Err(err).Str("product_id", productID).Msg("product delete failed")
		c.notifier.Error("Failed to delete product")
		return
	}

	c.mu.Lock()
	for i := range c.products {
		if c.products[i].ID == productID {
			c.products = append(c.products[:i], c.products[i+1:]...)
			break
		}
	}
	c.mu.Unlock()

	c.notifier.Success("Product deleted")
}

// applyProductEvent merges a catalogue change feed event. Updates older than
// the local copy are ignored.
func (c *Cart) applyProductEvent(event realtime.Event) {
	switch event.Type {
	case realtime.EventInsert, realtime.EventUpdate:
		p, err := backend.DecodeProductEvent(event.New)
		if err != nil {
			c.logger.Warn().Err(err).Msg("bad product event payload")
			return
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		for i := range c.products {
			if c.products[i].ID != p.ID {
				continue
			}
			if p.IsDeleted {
				c.products = append(c.products[:i], c.products[i+1:]...)
			} else if !p.UpdatedAt.Before(c.products[i].UpdatedAt) {
				c.products[i] = p
			}
			return
		}
		if !p.IsDeleted {
			c.products = append(c.products, p)
		}
	case realtime.EventDelete:
		p, err := backend.DecodeProductEvent(event.Old)
		if err != nil {
			return
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		for i := range c.products {
			if c.products[i].ID == p.ID {
				c.products = append(c.products[:i], c.products[i+1:]...)
				return
			}
		}
	}
}

// applyCartEvent merges a cart change feed event from another session of the
// same user.
func (c *Cart) applyCartEvent(event realtime.Event) {
	switch event.Type {
	case realtime.EventInsert, realtime.EventUpdate:
		row, err := backend.DecodeCartEvent(event.New)
		if err != nil {
			c.logger.Warn().Err(err).Msg("bad cart event payload")
			return
		}
		lineID := model.LineID(row.ProductID, row.Size, row.Color)

		c.mu.Lock()
		defer c.mu.Unlock()
		if i := c.lineIndexLocked(lineID); i >= 0 {
			if !row.UpdatedAt.Before(c.lines[i].UpdatedAt) {
				c.lines[i].Quantity = row.Quantity
				c.lines[i].UpdatedAt = row.UpdatedAt
			}
			return
		}
		p, ok := c.productLocked(row.ProductID)
		if !ok {
			return
		}
		c.lines = append(c.lines, model.CartLine{
			Product:       p,
			LineID:        lineID,
			SelectedSize:  row.Size,
			SelectedColor: row.Color,
			Quantity:      row.Quantity,
			UpdatedAt:     row.UpdatedAt,
		})
	case realtime.EventDelete:
		row, err := backend.DecodeCartEvent(event.Old)
		if err != nil {
			return
		}
		lineID := model.LineID(row.ProductID, row.Size, row.Color)
		c.mu.Lock()
		defer c.mu.Unlock()
		if i := c.lineIndexLocked(lineID); i >= 0 {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
		}
	}
}

// applyOrderEvent merges an order change feed event.
func (c *Cart) applyOrderEvent(event realtime.Event) {
	switch event.Type {
	case realtime.EventInsert, realtime.EventUpdate:
		order, err := backend.DecodeOrderEvent(event.New)
		if err != nil {
			c.logger.Warn().Err(err).Msg("bad order event payload")
			return
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		if i := c.orderIndexLocked(order.ID); i >= 0 {
			if !order.UpdatedAt.Before(c.orders[i].UpdatedAt) {
				c.orders[i] = order
			}
			return
		}
		// New orders arrive first in the feed.
		c.orders = append([]model.Order{order}, c.orders...)
	case realtime.EventDelete:
		order, err := backend.DecodeOrderEvent(event.Old)
		if err != nil {
			return
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		if i := c.orderIndexLocked(order.ID); i >= 0 {
			c.orders = append(c.orders[:i], c.orders[i+1:]...)
		}
	}
}

// applySavedEvent merges a saved items change feed event.
func (c *Cart) applySavedEvent(event realtime.Event) {
	switch event.Type {
	case realtime.EventInsert:
		p, ok := backend.DecodeSavedItemEvent(event.New)
		if !ok {
			return
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		for _, existing := range c.saved {
			if existing.ID == p.ID {
				return
			}
		}
		c.saved = append(c.saved, p)
	case realtime.EventDelete:
		p, ok := backend.DecodeSavedItemEvent(event.Old)
		if !ok {
			return
		}
		c.mu.Lock()
		c.removeSavedLocked(p.ID)
		c.mu.Unlock()
	}
}
