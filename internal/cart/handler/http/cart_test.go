package http

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/cart/domain"
	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/cart/event"
	cartredis "github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/cart/repository/redis"
	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/cart/service"
	pkgkafka "github.com/Rishabhostwal48/Manglanam-Naturals-sub000/pkg/kafka"
	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/pkg/middleware"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestRouter runs the handler against a real service backed by miniredis,
// with the authenticated user injected the way the auth middleware would.
func newTestRouter(t *testing.T, userID string) http.Handler {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	logger := testLogger()
	repo := cartredis.NewCartRepository(client, 24*time.Hour)
	producer := event.NewProducer(pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig([]string{"localhost:19092"}), logger), logger)
	svc := service.NewCartService(repo, producer, logger, "INR", 24*time.Hour)
	handler := NewCartHandler(svc, logger)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := middleware.WithUser(req.Context(), userID, "customer")
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Route("/api/v1/cart", handler.Routes)
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeCart(t *testing.T, rr *httptest.ResponseRecorder) domain.Cart {
	t.Helper()

	var envelope struct {
		Data domain.Cart `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope))
	return envelope.Data
}

func TestGetCart_EmptyByDefault(t *testing.T) {
	router := newTestRouter(t, "user-1")

	rr := doJSON(t, router, http.MethodGet, "/api/v1/cart", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	cart := decodeCart(t, rr)
	assert.Equal(t, "user-1", cart.UserID)
	assert.Empty(t, cart.Items)
}

func TestAddItem_ThenGet(t *testing.T) {
	router := newTestRouter(t, "user-1")

	rr := doJSON(t, router, http.MethodPost, "/api/v1/cart/items", AddItemRequest{
		ProductID: "turmeric-powder",
		VariantID: "250g",
		Name:      "Turmeric Powder",
		UnitPrice: 10000,
		Quantity:  2,
	})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, router, http.MethodGet, "/api/v1/cart", nil)
	cart := decodeCart(t, rr)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
}

func TestAddItem_ValidationFailure(t *testing.T) {
	router := newTestRouter(t, "user-1")

	rr := doJSON(t, router, http.MethodPost, "/api/v1/cart/items", AddItemRequest{
		ProductID: "",
		Name:      "Nameless",
		Quantity:  1,
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "product_id")
}

func TestAddItem_MalformedBody(t *testing.T) {
	router := newTestRouter(t, "user-1")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", bytes.NewBufferString("{not json"))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUpdateQuantity_SetsExactValue(t *testing.T) {
	router := newTestRouter(t, "user-1")

	doJSON(t, router, http.MethodPost, "/api/v1/cart/items", AddItemRequest{
		ProductID: "turmeric-powder",
		VariantID: "250g",
		Name:      "Turmeric Powder",
		UnitPrice: 10000,
		Quantity:  2,
	})

	rr := doJSON(t, router, http.MethodPut, "/api/v1/cart/items/turmeric-powder?variant=250g", UpdateQuantityRequest{Quantity: 5})
	require.Equal(t, http.StatusOK, rr.Code)

	cart := decodeCart(t, rr)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
}

func TestUpdateQuantity_ZeroRemovesItem(t *testing.T) {
	router := newTestRouter(t, "user-1")

	doJSON(t, router, http.MethodPost, "/api/v1/cart/items", AddItemRequest{
		ProductID: "turmeric-powder",
		Name:      "Turmeric Powder",
		UnitPrice: 10000,
		Quantity:  2,
	})

	rr := doJSON(t, router, http.MethodPut, "/api/v1/cart/items/turmeric-powder", UpdateQuantityRequest{Quantity: 0})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decodeCart(t, rr).Items)
}

func TestRemoveItem_AbsentReturns200(t *testing.T) {
	router := newTestRouter(t, "user-1")

	rr := doJSON(t, router, http.MethodDelete, "/api/v1/cart/items/no-such-product", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestClearCart(t *testing.T) {
	router := newTestRouter(t, "user-1")

	doJSON(t, router, http.MethodPost, "/api/v1/cart/items", AddItemRequest{
		ProductID: "turmeric-powder",
		Name:      "Turmeric Powder",
		UnitPrice: 10000,
		Quantity:  2,
	})

	rr := doJSON(t, router, http.MethodDelete, "/api/v1/cart", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, router, http.MethodGet, "/api/v1/cart", nil)
	assert.Empty(t, decodeCart(t, rr).Items)
}

func TestOpenAndClose(t *testing.T) {
	router := newTestRouter(t, "user-1")

	rr := doJSON(t, router, http.MethodPost, "/api/v1/cart/open", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, decodeCart(t, rr).IsOpen)

	rr = doJSON(t, router, http.MethodPost, "/api/v1/cart/close", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, decodeCart(t, rr).IsOpen)
}

func TestSetShippingAddress(t *testing.T) {
	router := newTestRouter(t, "user-1")

	rr := doJSON(t, router, http.MethodPut, "/api/v1/cart/shipping-address", ShippingAddressRequest{
		FullName:    "Meera Sharma",
		AddressLine: "12 MG Road",
		City:        "Jaipur",
		State:       "Rajasthan",
		PostalCode:  "302001",
		Country:     "IN",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	cart := decodeCart(t, rr)
	require.NotNil(t, cart.ShippingAddress)
	assert.Equal(t, "Jaipur", cart.ShippingAddress.City)
}

func TestSetShippingAddress_Invalid(t *testing.T) {
	router := newTestRouter(t, "user-1")

	rr := doJSON(t, router, http.MethodPut, "/api/v1/cart/shipping-address", ShippingAddressRequest{
		FullName: "Meera Sharma",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
