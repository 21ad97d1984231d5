package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"solemate/internal/config"
	"solemate/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) API {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return New(config.BackendConfig{URL: server.URL, APIKey: "anon-key"}, zerolog.Nop())
}

func TestClient_FetchCatalog(t *testing.T) {
	api := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/products", r.URL.Path)
		assert.Equal(t, "eq.false", r.URL.Query().Get("isdeleted"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer anon-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		// sizes arrives as a JSON-encoded string in legacy rows
		w.Write([]byte(`[{
			"id": "p1",
			"name": "Runner",
			"price": 1000,
			"image": "https://drive.google.com/uc?id=1AbCdEfGhIjKlMnOpQrStUv&export=view",
			"sizes": "[\"8\",\"9\"]",
			"colors": ["Black"],
			"instock": true,
			"stockquantity": 5,
			"reviewscount": 12
		}]`))
	})

	products, err := api.FetchCatalog(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)

	p := products[0]
	assert.Equal(t, "Runner", p.Name)
	assert.Equal(t, []string{"8", "9"}, p.Sizes)
	assert.Equal(t, []string{"Black"}, p.Colors)
	assert.Equal(t, "https://lh3.googleusercontent.com/d/1AbCdEfGhIjKlMnOpQrStUv", p.Image)
	assert.Equal(t, 12, p.ReviewsCount)
	assert.True(t, decimal.NewFromInt(1000).Equal(p.Price))
}

func TestClient_FetchCoupon(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		api := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/rest/v1/coupons", r.URL.Path)
			assert.Equal(t, "eq.SAVE10", r.URL.Query().Get("code"))
			assert.Equal(t, "eq.true", r.URL.Query().Get("is_active"))

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[{"id":"c1","code":"SAVE10","discount_type":"percentage","value":10,"is_active":true}]`))
		})

		c, err := api.FetchCoupon(context.Background(), "save10")
		require.NoError(t, err)
		require.NotNil(t, c)
		assert.Equal(t, "SAVE10", c.Code)
		assert.Equal(t, model.DiscountPercentage, c.DiscountType)
	})

	t.Run("missing returns nil without error", func(t *testing.T) {
		api := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[]`))
		})

		c, err := api.FetchCoupon(context.Background(), "NOPE")
		require.NoError(t, err)
		assert.Nil(t, c)
	})
}

func TestClient_PlaceOrder_ErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		expectErr error
	}{
		{
			name:      "insufficient stock",
			status:    http.StatusBadRequest,
			body:      `{"message":"Insufficient stock for product Runner"}`,
			expectErr: model.ErrInsufficientStock,
		},
		{
			name:      "insufficient wallet",
			status:    http.StatusBadRequest,
			body:      `{"message":"Insufficient wallet balance"}`,
			expectErr: model.ErrInsufficientFunds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/rest/v1/rpc/place_order_with_stock", r.URL.Path)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			err := api.PlaceOrder(context.Background(), "token",
				[]model.OrderItem{{ProductID: "p1", Quantity: 1}},
				decimal.NewFromInt(1000), "addr", "wallet")

			assert.ErrorIs(t, err, tt.expectErr)
		})
	}

	t.Run("other rejection becomes order failure", func(t *testing.T) {
		api := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte("duplicate order"))
		})

		err := api.PlaceOrder(context.Background(), "token", nil, decimal.Zero, "addr", "wallet")

		var domainErr *model.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, model.ErrCodeOrderFailed, domainErr.Code)
		assert.Contains(t, domainErr.Message, "duplicate order")
	})

	t.Run("success", func(t *testing.T) {
		api := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusNoContent)
		})

		err := api.PlaceOrder(context.Background(), "token",
			[]model.OrderItem{{ProductID: "p1", Quantity: 1}},
			decimal.NewFromInt(1000), "addr", "wallet")
		assert.NoError(t, err)
	})
}

func TestClient_GetAuthUser(t *testing.T) {
	t.Run("authenticated", func(t *testing.T) {
		api := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/auth/v1/user", r.URL.Path)
			assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"id": "user-1",
				"email": "shopper@example.com",
				"user_metadata": {
					"name": "Shopper",
					"spin_coupons": [{"id":"r1","coupon_code":"SPIN20","discount_type":"percentage","discount_value":20}]
				}
			}`))
		})

		user, err := api.GetAuthUser(context.Background(), "user-token")
		require.NoError(t, err)
		assert.Equal(t, "user-1", user.ID)
		assert.Equal(t, "Shopper", user.UserMetadata.Name)
		require.Len(t, user.UserMetadata.SpinCoupons, 1)
		assert.Equal(t, "SPIN20", user.UserMetadata.SpinCoupons[0].CouponCode)
	})

	t.Run("empty user means login required", func(t *testing.T) {
		api := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{}`))
		})

		_, err := api.GetAuthUser(context.Background(), "stale-token")
		assert.ErrorIs(t, err, model.ErrLoginRequired)
	})
}

func TestClient_FetchSavedItems(t *testing.T) {
	api := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/saved_items", r.URL.Path)
		assert.Equal(t, "eq.user-1", r.URL.Query().Get("user_id"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"productid":"p1","productdata":{"id":"p1","name":"Runner","price":1000}},
			{"productid":"","productdata":null}
		]`))
	})

	items, err := api.FetchSavedItems(context.Background(), "token", "user-1")
	require.NoError(t, err)
	// The row without a product snapshot is dropped
	require.Len(t, items, 1)
	assert.Equal(t, "Runner", items[0].Name)
}

func TestClient_CheckStock(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		api := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "eq.p1", r.URL.Query().Get("id"))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[{"stockquantity": 7}]`))
		})

		quantity, err := api.CheckStock(context.Background(), "p1")
		require.NoError(t, err)
		assert.Equal(t, 7, quantity)
	})

	t.Run("unknown product", func(t *testing.T) {
		api := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[]`))
		})

		_, err := api.CheckStock(context.Background(), "missing")
		assert.ErrorIs(t, err, model.ErrProductNotFound)
	})
}
