package app

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/optomall/optomall/internal/auth"
	"github.com/optomall/optomall/internal/currency"
	"github.com/optomall/optomall/internal/imageproxy"
	"github.com/optomall/optomall/internal/marketplace"
	"github.com/optomall/optomall/internal/orders"
	"github.com/optomall/optomall/internal/shop"
	"github.com/optomall/optomall/internal/upstream"
)

func newTestRouter(t *testing.T, adminHash string) http.Handler {
	t.Helper()
	logger := slog.Default()
	cfg := &Config{
		AppRequestTimeout: time.Second,
		SessionCookie:     "test_session",
		SessionTTL:        time.Hour,
	}

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	marketplaceService := marketplace.NewService(nil, upstream.NewCache(nil, 0), logger)
	ordersService := orders.NewService(nil, nil, nil, logger)

	return NewRouter(RouterParams{
		Logger:             logger,
		Config:             cfg,
		MarketplaceHandler: marketplace.NewHandler(logger, marketplaceService),
		ImageProxy:         imageproxy.New(logger, redisClient, time.Second),
		ShopHandler:        shop.NewHandler(logger, shop.NewStore(redisClient, time.Hour), nil),
		CurrencyHandler:    currency.NewHandler(),
		OrdersHandler:      orders.NewHandler(logger, ordersService),
		AdminGate:          auth.NewAdmin(logger, adminHash),
	})
}

func TestRouterHealthz(t *testing.T) {
	router := newTestRouter(t, "")

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRouterAdminRoutesAbsentWithoutToken(t *testing.T) {
	router := newTestRouter(t, "")

	req := httptest.NewRequest(http.MethodPost, "/api/admin/bulk-actions", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouterAdminRoutesGated(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("admin-token"), bcrypt.MinCost)
	require.NoError(t, err)
	router := newTestRouter(t, string(hash))

	req := httptest.NewRequest(http.MethodPost, "/api/admin/bulk-actions", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouterMountsPublicAPIs(t *testing.T) {
	router := newTestRouter(t, "")

	req := httptest.NewRequest(http.MethodGet, "/api/currency/rates", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/shop/cart", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
