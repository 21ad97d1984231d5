package handler

import (
	"encoding/json"
	"net/http"

	"solemate/internal/middleware"
	"solemate/internal/store"

	"github.com/rs/zerolog"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Response is the common envelope: the payload plus any user-facing
// notifications the operation produced.
type Response struct {
	Data          any                  `json:"data,omitempty"`
	Notifications []store.Notification `json:"notifications,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string, logger zerolog.Logger) {
	logger.Error().Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeResult writes the payload together with the drained notifications.
func writeResult(w http.ResponseWriter, status int, data any, notices *store.Recorder) {
	writeJSON(w, status, Response{Data: data, Notifications: notices.Drain()})
}

// sessionStores resolves the request's store set from the manager.
func sessionStores(m *store.Manager, r *http.Request) *store.SessionStores {
	ctx := r.Context()
	return m.Get(ctx, middleware.SessionFrom(ctx), middleware.GuestIDFrom(ctx))
}
