package store

import (
	"context"
	"sync"

	"solemate/internal/backend"
	"solemate/internal/coupon"
	"solemate/internal/model"
	"solemate/internal/realtime"

	"github.com/rs/zerolog"
)

// SessionStores is the store set handed out for one shopper: the cart, the
// wishlist and the notification queue the two share.
type SessionStores struct {
	Session  *model.Session
	Cart     *Cart
	Wishlist *Wishlist
	Notices  *Recorder
}

// Close tears down the session's change feed subscriptions.
func (s *SessionStores) Close() {
	s.Cart.Close()
	s.Wishlist.Close()
}

// Manager creates and caches per-session store sets. Signed-in users are keyed
// by user id so all their devices share one store set; guests are keyed by an
// opaque session id.
type Manager struct {
	api      backend.API
	resolver coupon.Resolver
	feed     realtime.Feed
	logger   zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*SessionStores
}

// NewManager creates a store manager.
func NewManager(api backend.API, resolver coupon.Resolver, feed realtime.Feed, logger zerolog.Logger) *Manager {
	return &Manager{
		api:      api,
		resolver: resolver,
		feed:     feed,
		logger:   logger.With().Str("component", "store-manager").Logger(),
		sessions: make(map[string]*SessionStores),
	}
}

func sessionKey(session *model.Session, guestID string) string {
	if session.Authenticated() {
		return session.UserID
	}
	return "guest:" + guestID
}

// Get returns the store set for the session, creating and starting it on
// first access. guestID keys unauthenticated sessions.
func (m *Manager) Get(ctx context.Context, session *model.Session, guestID string) *SessionStores {
	key := sessionKey(session, guestID)

	m.mu.Lock()
	if stores, ok := m.sessions[key]; ok {
		m.mu.Unlock()
		return stores
	}

	notices := NewRecorder(m.logger)
	stores := &SessionStores{
		Session:  session,
		Cart:     NewCart(m.api, m.resolver, m.feed, notices, session, m.logger),
		Wishlist: NewWishlist(m.api, m.feed, notices, session, m.logger),
		Notices:  notices,
	}
	m.sessions[key] = stores
	m.mu.Unlock()

	m.logger.Info().Str("session", key).Msg("session stores created")
	stores.Cart.Start(ctx)
	stores.Wishlist.Start(ctx)
	return stores
}

// Drop closes and forgets the session's store set, typically at sign-out.
func (m *Manager) Drop(session *model.Session, guestID string) {
	key := sessionKey(session, guestID)

	m.mu.Lock()
	stores, ok := m.sessions[key]
	if ok {
		delete(m.sessions, key)
	}
	m.mu.Unlock()

	if ok {
		stores.Close()
		m.logger.Info().Str("session", key).Msg("session stores dropped")
	}
}

// Shutdown closes every cached store set.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*SessionStores)
	m.mu.Unlock()

	for _, stores := range sessions {
		stores.Close()
	}
}
