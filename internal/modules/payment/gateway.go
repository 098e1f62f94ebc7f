package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

var ErrProviderDeclined = errors.New("payment provider declined the request")

// Gateway talks to the external payment provider over HTTP. Every call
// carries an idempotency key so a timed-out request can be retried
// without double-charging. With an empty base URL the gateway runs in
// sandbox mode and settles everything locally, which is what tests and
// local development use.
type Gateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewGateway(baseURL, apiKey string) *Gateway {
	return &Gateway{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type chargeRequest struct {
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
	Reference   string `json:"reference"`
}

type refundRequest struct {
	PaymentRef  string `json:"payment_ref"`
	AmountCents int64  `json:"amount_cents"`
}

type providerResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// ChargeDeposit collects the booking deposit and returns the provider's
// payment reference.
func (g *Gateway) ChargeDeposit(ctx context.Context, amountCents int64, reference string) (string, error) {
	if amountCents <= 0 {
		// Zero-deposit bookings confirm without a charge.
		return "free_" + reference, nil
	}
	if g.baseURL == "" {
		return "sandbox_" + uuid.New().String(), nil
	}
	resp, err := g.post(ctx, "/v1/charges", reference, chargeRequest{
		AmountCents: amountCents,
		Currency:    "usd",
		Reference:   reference,
	})
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}

// Refund returns part or all of a charge and yields the refund
// reference.
func (g *Gateway) Refund(ctx context.Context, paymentRef string, amountCents int64) (string, error) {
	if amountCents <= 0 {
		return "", nil
	}
	if g.baseURL == "" {
		return "sandbox_rf_" + uuid.New().String(), nil
	}
	resp, err := g.post(ctx, "/v1/refunds", uuid.New().String(), refundRequest{
		PaymentRef:  paymentRef,
		AmountCents: amountCents,
	})
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}

func (g *Gateway) post(ctx context.Context, path, idempotencyKey string, payload any) (*providerResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Idempotency-Key", idempotencyKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payment provider request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusPaymentRequired || resp.StatusCode == http.StatusUnprocessableEntity {
		return nil, ErrProviderDeclined
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("payment provider status %d", resp.StatusCode)
	}

	var out providerResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("payment provider response: %w", err)
	}
	if out.Status != "" && out.Status != "succeeded" {
		return nil, ErrProviderDeclined
	}
	return &out, nil
}
