package razorpay

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/payment/provider"
	apperrors "github.com/Rishabhostwal48/Manglanam-Naturals-sub000/pkg/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newProvider(baseURL string) *Provider {
	return NewProvider(Config{
		BaseURL:   baseURL,
		KeyID:     "rzp_test_key",
		KeySecret: "rzp_test_secret",
	}, testLogger())
}

func TestCreateProviderOrder_Success(t *testing.T) {
	var gotBody createOrderRequest
	var gotAuthUser, gotAuthPass string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/orders", r.URL.Path)
		gotAuthUser, gotAuthPass, _ = r.BasicAuth()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(createOrderResponse{
			ID:       "order_abc123",
			Amount:   gotBody.Amount,
			Currency: gotBody.Currency,
			Status:   "created",
		})
	}))
	defer srv.Close()

	p := newProvider(srv.URL)
	id, err := p.CreateProviderOrder(context.Background(), 36400, "INR", "ord-1")
	require.NoError(t, err)

	assert.Equal(t, "order_abc123", id)
	assert.Equal(t, int64(36400), gotBody.Amount)
	assert.Equal(t, "INR", gotBody.Currency)
	assert.Equal(t, "ord-1", gotBody.Receipt)
	assert.Equal(t, "rzp_test_key", gotAuthUser)
	assert.Equal(t, "rzp_test_secret", gotAuthPass)
}

func TestCreateProviderOrder_NoRetryOnServerError(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := newProvider(srv.URL)
	_, err := p.CreateProviderOrder(context.Background(), 36400, "INR", "ord-1")

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestCreateProviderOrder_BadCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"code": "BAD_REQUEST_ERROR", "description": "Authentication failed"},
		})
	}))
	defer srv.Close()

	p := newProvider(srv.URL)
	_, err := p.CreateProviderOrder(context.Background(), 36400, "INR", "ord-1")
	assert.ErrorIs(t, err, apperrors.ErrProvider)
}

func TestFetchPayment_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/payments/pay_xyz", r.URL.Path)
		json.NewEncoder(w).Encode(fetchPaymentResponse{
			ID:       "pay_xyz",
			OrderID:  "order_abc123",
			Status:   "captured",
			Amount:   36400,
			Currency: "INR",
		})
	}))
	defer srv.Close()

	p := newProvider(srv.URL)
	details, err := p.FetchPayment(context.Background(), "pay_xyz")
	require.NoError(t, err)

	assert.Equal(t, provider.StatusCaptured, details.Status)
	assert.Equal(t, int64(36400), details.Amount)
	assert.Equal(t, "order_abc123", details.ProviderOrderID)
}

func TestFetchPayment_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"code": "BAD_REQUEST_ERROR", "description": "payment not found"},
		})
	}))
	defer srv.Close()

	p := newProvider(srv.URL)
	_, err := p.FetchPayment(context.Background(), "pay_missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
