package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"solemate/internal/backend"
	"solemate/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	sessionContextKey contextKey = "session"
	guestContextKey   contextKey = "guest"
)

// WithSession returns a context carrying an authenticated session.
func WithSession(ctx context.Context, s *model.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

// WithGuest returns a context carrying a guest session id.
func WithGuest(ctx context.Context, guestID string) context.Context {
	return context.WithValue(ctx, guestContextKey, guestID)
}

// SessionFrom returns the session attached by the Session middleware. Nil for
// guests.
func SessionFrom(ctx context.Context) *model.Session {
	s, _ := ctx.Value(sessionContextKey).(*model.Session)
	return s
}

// GuestIDFrom returns the guest session id attached by the Session middleware.
func GuestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(guestContextKey).(string)
	return id
}

// CORS adds CORS headers to the response.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Session-ID")

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Session resolves the caller's identity. A bearer token is verified against
// the backend auth service and becomes an authenticated session; requests
// without one are guests, keyed by the X-Session-ID header. When a guest sends
// no session id a fresh one is generated and echoed back so the client can
// persist it.
func Session(auth backend.AuthAPI, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip identity resolution for the health check endpoint
			if r.URL.Path == "/health" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()

			token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if token != "" && token != r.Header.Get("Authorization") {
				user, err := auth.GetAuthUser(ctx, token)
				if err != nil {
					logger.Warn().Err(err).Str("path", r.URL.Path).Msg("token verification failed")
					http.Error(w, "unauthorised: invalid token", http.StatusUnauthorized)
					return
				}

				session := &model.Session{
					UserID:        user.ID,
					Email:         user.Email,
					Name:          user.UserMetadata.Name,
					AccessToken:   token,
					RewardCoupons: user.UserMetadata.SpinCoupons,
				}
				next.ServeHTTP(w, r.WithContext(WithSession(ctx, session)))
				return
			}

			guestID := r.Header.Get("X-Session-ID")
			if guestID == "" {
				guestID = uuid.NewString()
				w.Header().Set("X-Session-ID", guestID)
			}
			next.ServeHTTP(w, r.WithContext(WithGuest(ctx, guestID)))
		})
	}
}

// Logging logs HTTP requests with timing information.
func Logging(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Create a response writer wrapper to capture status code
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			duration := time.Since(start)
			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rw.statusCode).
				Dur("duration", duration).
				Str("remote_addr", r.RemoteAddr).
				Msg("http request")
		})
	}
}

// Recovery recovers from panics and returns a 500 error.
func Recovery(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error().
						Interface("panic", err).
						Str("method", r.Method).
						Str("path", r.URL.Path).
						Msg("panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					w.Write([]byte(`{"error": "internal server error"}`))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code.
func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
