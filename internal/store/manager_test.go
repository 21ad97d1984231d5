package store

import (
	"context"
	"testing"

	"solemate/internal/backend"
	"solemate/internal/coupon"
	"solemate/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTestManager(api *mockAPI) *Manager {
	logger := zerolog.Nop()
	return NewManager(api, coupon.NewResolver(api, logger), stubFeed{}, logger)
}

func TestManager_GuestStoresAreCachedPerSessionID(t *testing.T) {
	api := new(mockAPI)
	api.On("FetchCatalog", mock.Anything).Return([]model.Product{}, nil)

	m := newTestManager(api)
	ctx := context.Background()

	first := m.Get(ctx, nil, "guest-abc")
	again := m.Get(ctx, nil, "guest-abc")
	other := m.Get(ctx, nil, "guest-xyz")

	assert.Same(t, first, again)
	assert.NotSame(t, first, other)
}

func TestManager_UserStoresKeyedByUserID(t *testing.T) {
	api := new(mockAPI)
	api.On("FetchCatalog", mock.Anything).Return([]model.Product{}, nil)
	api.On("FetchCartRows", mock.Anything, "token-1", "user-1").Return([]backend.CartRow{}, nil)
	api.On("FetchOrders", mock.Anything, "token-1", "user-1").Return([]model.Order{}, nil)
	api.On("FetchSavedItems", mock.Anything, "token-1", "user-1").Return([]model.Product{}, nil)
	api.On("GetAuthUser", mock.Anything, "token-1").Return(&backend.AuthUser{ID: "user-1"}, nil)

	m := newTestManager(api)
	ctx := context.Background()

	// Two devices of the same user share one store set
	first := m.Get(ctx, testSession(), "")
	second := m.Get(ctx, testSession(), "")
	assert.Same(t, first, second)
	assert.True(t, first.Session.Authenticated())
}

func TestManager_DropForgetsStores(t *testing.T) {
	api := new(mockAPI)
	api.On("FetchCatalog", mock.Anything).Return([]model.Product{}, nil)

	m := newTestManager(api)
	ctx := context.Background()

	first := m.Get(ctx, nil, "guest-abc")
	m.Drop(nil, "guest-abc")
	second := m.Get(ctx, nil, "guest-abc")

	assert.NotSame(t, first, second)
}
