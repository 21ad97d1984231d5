package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"solemate/internal/backend"
	"solemate/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAuth resolves a single known token.
type fakeAuth struct {
	user *backend.AuthUser
}

func (f *fakeAuth) GetAuthUser(ctx context.Context, token string) (*backend.AuthUser, error) {
	if f.user != nil && token == "good-token" {
		return f.user, nil
	}
	return nil, model.ErrLoginRequired
}

func (f *fakeAuth) UpdateRewardCoupons(ctx context.Context, token string, coupons []model.RewardCoupon) error {
	return nil
}

func TestSession_BearerToken(t *testing.T) {
	auth := &fakeAuth{user: &backend.AuthUser{
		ID:           "user-1",
		Email:        "shopper@example.com",
		UserMetadata: backend.UserMetadata{Name: "Shopper"},
	}}

	var captured *model.Session
	handler := Session(auth, zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = SessionFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured)
	assert.Equal(t, "user-1", captured.UserID)
	assert.Equal(t, "good-token", captured.AccessToken)
	assert.True(t, captured.Authenticated())
}

func TestSession_InvalidToken(t *testing.T) {
	handler := Session(&fakeAuth{}, zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run for an invalid token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSession_GuestKeepsProvidedID(t *testing.T) {
	var guestID string
	handler := Session(&fakeAuth{}, zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		guestID = GuestIDFrom(r.Context())
		assert.Nil(t, SessionFrom(r.Context()))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set("X-Session-ID", "guest-abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "guest-abc", guestID)
	// No replacement id is issued when the client already has one
	assert.Empty(t, rec.Header().Get("X-Session-ID"))
}

func TestSession_GuestWithoutIDGetsOne(t *testing.T) {
	var guestID string
	handler := Session(&fakeAuth{}, zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		guestID = GuestIDFrom(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.NotEmpty(t, guestID)
	assert.Equal(t, guestID, rec.Header().Get("X-Session-ID"))
}

func TestSession_HealthSkipsResolution(t *testing.T) {
	handler := Session(&fakeAuth{}, zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORS_Preflight(t *testing.T) {
	handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run for preflight requests")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/cart", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "X-Session-ID")
}

func TestRecovery(t *testing.T) {
	handler := Recovery(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error": "internal server error"}`, rec.Body.String())
}

func TestLogging_PassesThrough(t *testing.T) {
	handler := Logging(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTeapot, rec.Code)
}
