package handler

import (
	"net/http"

	"solemate/internal/middleware"
	"solemate/internal/store"

	"github.com/rs/zerolog"
)

// SessionHandler handles session lifecycle HTTP requests.
type SessionHandler struct {
	manager *store.Manager
	logger  zerolog.Logger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(manager *store.Manager, logger zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		manager: manager,
		logger:  logger.With().Str("handler", "session").Logger(),
	}
}

// Logout handles POST /api/session/logout requests, dropping the caller's
// cached stores and closing their change feed subscriptions.
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.manager.Drop(middleware.SessionFrom(ctx), middleware.GuestIDFrom(ctx))
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}
