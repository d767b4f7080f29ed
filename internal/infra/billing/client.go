// File: internal/infra/billing/client.go
package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"subscription-checkout/internal/domain/model"
	"subscription-checkout/internal/domain/ports/adapter"
	"subscription-checkout/internal/infra/metrics"
)

// Compile-time check
var _ adapter.BillingAPI = (*Client)(nil)

// Client implements the billing API port using direct HTTP calls.
type Client struct {
	baseURL string
	client  *http.Client
	log     *zerolog.Logger
}

// NewClient creates a billing API client. The timeout applies per request;
// the core imposes no timeout of its own beyond it.
func NewClient(baseURL string, timeout time.Duration, logger *zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		log:     logger,
	}
}

// errorBody is the billing API's error response shape. The unprocessable
// class carries the per-field error map.
type errorBody struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// do sends one JSON request and decodes the response into out (when non-nil).
// Error responses are returned as *adapter.APIError; transport failures come
// back wrapped so callers can tell the two classes apart.
func (c *Client) do(ctx context.Context, method, path string, body any, idempotencyKey string, out any) error {
	endpoint := metricName(method, path)
	start := time.Now()
	err := c.doOnce(ctx, method, path, body, idempotencyKey, out)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.ObserveBillingRequest(endpoint, outcome, float64(time.Since(start).Milliseconds()))
	return err
}

func (c *Client) doOnce(ctx context.Context, method, path string, body any, idempotencyKey string, out any) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var eb errorBody
		_ = json.Unmarshal(data, &eb) // best effort; an empty body is allowed
		c.log.Warn().Str("path", path).Int("status", resp.StatusCode).Str("message", eb.Message).Msg("billing api error")
		return &adapter.APIError{
			Status:      resp.StatusCode,
			Message:     eb.Message,
			FieldErrors: eb.Errors,
		}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("unmarshal response: %w, body: %s", err, string(data))
		}
	}
	return nil
}

// Health probes GET /health. Any response, including an error status, counts
// as available; only a transport failure reports the API unreachable.
func (c *Client) Health(ctx context.Context) error {
	err := c.do(ctx, http.MethodGet, "/health", nil, "", nil)
	if err == nil {
		return nil
	}
	var apiErr *adapter.APIError
	if errors.As(err, &apiErr) {
		return nil
	}
	return err
}

func (c *Client) ListPlans(ctx context.Context) ([]*model.Plan, error) {
	var plans []*model.Plan
	if err := c.do(ctx, http.MethodGet, "/plans", nil, "", &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

func (c *Client) ListCardFlags(ctx context.Context) ([]*model.CardFlag, error) {
	var flags []*model.CardFlag
	if err := c.do(ctx, http.MethodGet, "/card-flags", nil, "", &flags); err != nil {
		return nil, err
	}
	return flags, nil
}

type couponValidateRequest struct {
	Coupon string `json:"coupon"`
	PlanID int64  `json:"plan_id"`
}

type couponValidateResponse struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

func (c *Client) ValidateCoupon(ctx context.Context, code string, planID int64) (bool, string, error) {
	var res couponValidateResponse
	req := couponValidateRequest{Coupon: code, PlanID: planID}
	if err := c.do(ctx, http.MethodPost, "/coupons-validate", req, "", &res); err != nil {
		return false, "", err
	}
	return res.Valid, res.Reason, nil
}

func (c *Client) GetCoupon(ctx context.Context, code string) (*model.Coupon, error) {
	var coupon model.Coupon
	path := "/coupons/" + url.PathEscape(code)
	if err := c.do(ctx, http.MethodGet, path, nil, "", &coupon); err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (c *Client) CreateSubscription(ctx context.Context, req adapter.SubscriptionRequest, idempotencyKey string) (*model.Subscription, error) {
	var sub model.Subscription
	if err := c.do(ctx, http.MethodPost, "/subscriptions", req, idempotencyKey, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (c *Client) CreatePayment(ctx context.Context, req adapter.PaymentRequest, idempotencyKey string) (*model.Transaction, error) {
	var tx model.Transaction
	if err := c.do(ctx, http.MethodPost, "/payments", req, idempotencyKey, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

func (c *Client) GetSubscription(ctx context.Context, id int64) (*model.Subscription, error) {
	var sub model.Subscription
	path := fmt.Sprintf("/subscriptions/%d", id)
	if err := c.do(ctx, http.MethodGet, path, nil, "", &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// metricName collapses parameterized paths to a stable endpoint label.
func metricName(method, path string) string {
	base := path
	if i := strings.Index(base[1:], "/"); i >= 0 {
		base = base[:i+1]
	}
	return method + " " + base
}
