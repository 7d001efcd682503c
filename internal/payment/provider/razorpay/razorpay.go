package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/payment/provider"
	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/pkg/httpclient"
)

const providerName = "razorpay"

// Config holds the credentials and endpoint for the Razorpay REST API.
type Config struct {
	BaseURL   string
	KeyID     string
	KeySecret string
}

// Provider implements provider.Provider against a razorpay-style REST API.
// Order creation goes through a single-attempt client so an ambiguous
// network outcome surfaces as an error instead of a duplicate charge.
// Payment fetches are idempotent and go through the circuit breaker.
type Provider struct {
	cfg     Config
	charges *httpclient.Client
	reads   *httpclient.CircuitBreakerClient
	logger  *slog.Logger
}

// NewProvider creates a Razorpay provider backed by the shared HTTP clients.
func NewProvider(cfg Config, logger *slog.Logger) *Provider {
	client := httpclient.New(httpclient.DefaultConfig())
	return &Provider{
		cfg:     cfg,
		charges: client,
		reads:   httpclient.NewCircuitBreakerClient(client, httpclient.DefaultCircuitBreakerConfig(providerName), logger),
		logger:  logger,
	}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return providerName
}

type createOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type createOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

// CreateProviderOrder registers the order with Razorpay. Amount is in the
// currency's smallest unit, which matches our internal representation.
func (p *Provider) CreateProviderOrder(ctx context.Context, amount int64, currency, receipt string) (string, error) {
	body, err := json.Marshal(createOrderRequest{
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
	})
	if err != nil {
		return "", fmt.Errorf("marshal order request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(p.cfg.KeyID, p.cfg.KeySecret)

	resp, err := p.charges.DoOnce(ctx, req)
	if err != nil {
		return "", fmt.Errorf("create provider order: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", httpclient.ParseResponseError(resp, providerName)
	}

	var out createOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode order response: %w", err)
	}

	p.logger.InfoContext(ctx, "provider order created",
		slog.String("provider_order_id", out.ID),
		slog.Int64("amount", out.Amount),
	)

	return out.ID, nil
}

type fetchPaymentResponse struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id"`
	Status   string `json:"status"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// FetchPayment re-queries Razorpay for the payment state.
func (p *Provider) FetchPayment(ctx context.Context, providerPaymentID string) (*provider.PaymentDetails, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.BaseURL+"/v1/payments/"+providerPaymentID, nil)
	if err != nil {
		return nil, fmt.Errorf("build payment request: %w", err)
	}
	req.SetBasicAuth(p.cfg.KeyID, p.cfg.KeySecret)

	resp, err := p.reads.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("fetch payment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, providerName)
	}

	var out fetchPaymentResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode payment response: %w", err)
	}

	return &provider.PaymentDetails{
		ProviderPaymentID: out.ID,
		ProviderOrderID:   out.OrderID,
		Status:            out.Status,
		Amount:            out.Amount,
		Currency:          out.Currency,
	}, nil
}
