package store

import (
	"context"
	"sync"

	"solemate/internal/backend"
	"solemate/internal/model"
	"solemate/internal/realtime"

	"github.com/rs/zerolog"
)

// Wishlist maintains the signed-in user's saved-product set. There is no
// guest mode: every mutation requires authentication.
type Wishlist struct {
	api      backend.WishlistAPI
	feed     realtime.Feed
	notifier Notifier
	logger   zerolog.Logger
	session  *model.Session

	mu    sync.Mutex
	items []model.Product

	cancelFeed func()
}

// NewWishlist creates a wishlist store for the session.
func NewWishlist(api backend.WishlistAPI, feed realtime.Feed, notifier Notifier, session *model.Session, logger zerolog.Logger) *Wishlist {
	return &Wishlist{
		api:      api,
		feed:     feed,
		notifier: notifier,
		session:  session,
		logger:   logger.With().Str("store", "wishlist").Logger(),
	}
}

// Start fetches the persisted wishlist and opens the change feed. Guests get
// an empty, inert wishlist.
func (w *Wishlist) Start(ctx context.Context) {
	if !w.session.Authenticated() {
		return
	}

	items, err := w.api.FetchSavedItems(ctx, w.session.AccessToken, w.session.UserID)
	if err != nil {
		w.logger.Error().Err(err).Msg("wishlist sync failed")
	} else {
		w.mu.Lock()
		w.items = items
		w.mu.Unlock()
	}

	events, cancel := w.feed.Subscribe("saved_items", w.session.UserID)
	w.cancelFeed = cancel
	go w.consumeFeed(events)
}

// Close cancels the change feed subscription.
func (w *Wishlist) Close() {
	if w.cancelFeed != nil {
		w.cancelFeed()
	}
}

func (w *Wishlist) consumeFeed(events <-chan realtime.Event) {
	for event := range events {
		switch event.Type {
		case realtime.EventInsert:
			if p, ok := backend.DecodeSavedItemEvent(event.New); ok {
				w.applyInsert(p)
			}
		case realtime.EventDelete:
			if p, ok := backend.DecodeSavedItemEvent(event.Old); ok {
				w.applyDelete(p.ID)
			}
		}
	}
}

func (w *Wishlist) applyInsert(p model.Product) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.indexOf(p.ID) >= 0 {
		return
	}
	w.items = append(w.items, p)
}

func (w *Wishlist) applyDelete(productID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if i := w.indexOf(productID); i >= 0 {
		w.items = append(w.items[:i], w.items[i+1:]...)
	}
}

// indexOf requires w.mu held.
func (w *Wishlist) indexOf(productID string) int {
	for i, item := range w.items {
		if item.ID == productID {
			return i
		}
	}
	return -1
}

// Items returns a copy of the wishlist contents.
func (w *Wishlist) Items() []model.Product {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]model.Product, len(w.items))
	copy(out, w.items)
	return out
}

// IsInWishlist reports membership for a product.
func (w *Wishlist) IsInWishlist(productID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.indexOf(productID) >= 0
}

// Add saves a product. No-op when already present. The local insert is
// optimistic and rolled back if the remote insert fails.
func (w *Wishlist) Add(ctx context.Context, product model.Product) {
	if !w.session.Authenticated() {
		w.notifier.Error("Please login to save items")
		return
	}

	w.mu.Lock()
	if w.indexOf(product.ID) >= 0 {
		w.mu.Unlock()
		return
	}
	w.items = append(w.items, product)
	w.mu.Unlock()

	err := w.api.InsertSavedItem(ctx, w.session.AccessToken, w.session.UserID, w.session.Email, product)
	if err != nil {
		w.logger.Error().Err(err).Str("product_id", product.ID).Msg("wishlist add failed")
		w.applyDelete(product.ID)
		w.notifier.Error("Failed to update wishlist")
		return
	}

	w.notifier.Success(product.Name + " added to wishlist")
}

// Remove drops a product. The local removal is optimistic and the item is
// restored if the remote delete fails.
func (w *Wishlist) Remove(ctx context.Context, productID string) {
	if !w.session.Authenticated() {
		return
	}

	w.mu.Lock()
	i := w.indexOf(productID)
	if i < 0 {
		w.mu.Unlock()
		return
	}
	removed := w.items[i]
	w.items = append(w.items[:i], w.items[i+1:]...)
	w.mu.Unlock()

	err := w.api.DeleteSavedItem(ctx, w.session.AccessToken, w.session.UserID, productID)
	if err != nil {
		w.logger.Error().Err(err).Str("product_id", productID).Msg("wishlist remove failed")
		w.applyInsert(removed)
		w.notifier.Error("Failed to update wishlist")
		return
	}

	w.notifier.Info(removed.Name + " removed from wishlist")
}

// Toggle adds or removes the product based on current membership.
func (w *Wishlist) Toggle(ctx context.Context, product model.Product) {
	if w.IsInWishlist(product.ID) {
		w.Remove(ctx, product.ID)
	} else {
		w.Add(ctx, product)
	}
}
