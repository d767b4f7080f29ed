package adapter

import (
	"context"
	"fmt"
	"net/http"

	"subscription-checkout/internal/domain/model"
)

// SubscriptionRequest is the body of POST /subscriptions. Coupon is nil when
// no validated coupon applies to the submission.
type SubscriptionRequest struct {
	PlanID int64   `json:"plan_id"`
	Coupon *string `json:"coupon"`
	Email  string  `json:"email"`
}

// PaymentRequest is the body of POST /payments. Card data passes through to
// the billing API and is never stored or logged by this service.
type PaymentRequest struct {
	SubscriptionID int64  `json:"subscription_id"`
	CardNumber     string `json:"card_number"`
	ClientName     string `json:"client_name"`
	ExpireDate     string `json:"expire_date"`
	CVC            string `json:"cvc"`
	CardFlagID     int64  `json:"card_flag_id"`
}

// APIError is an error response from the billing API. FieldErrors is only
// populated for the unprocessable-request class.
type APIError struct {
	Status      int
	Message     string
	FieldErrors map[string][]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("billing api: status %d: %s", e.Status, e.Message)
}

// Unprocessable reports whether the error belongs to the client validation
// failure class.
func (e *APIError) Unprocessable() bool {
	return e.Status == http.StatusUnprocessableEntity
}

// BillingAPI is the port for the remote billing API. Implementations attach
// the given idempotency key as the Idempotency-Key header on the two mutating
// calls.
type BillingAPI interface {
	// Health probes availability. Any response from the API, including an
	// error status, counts as available; only a transport failure errors.
	Health(ctx context.Context) error

	ListPlans(ctx context.Context) ([]*model.Plan, error)
	ListCardFlags(ctx context.Context) ([]*model.CardFlag, error)

	// ValidateCoupon checks a code against a plan. When the coupon is not
	// valid, reason carries the server's stated cause (may be empty).
	ValidateCoupon(ctx context.Context, code string, planID int64) (valid bool, reason string, err error)
	// GetCoupon fetches a validated coupon's discount terms by code.
	GetCoupon(ctx context.Context, code string) (*model.Coupon, error)

	CreateSubscription(ctx context.Context, req SubscriptionRequest, idempotencyKey string) (*model.Subscription, error)
	CreatePayment(ctx context.Context, req PaymentRequest, idempotencyKey string) (*model.Transaction, error)
	// GetSubscription returns the full record including transactions.
	GetSubscription(ctx context.Context, id int64) (*model.Subscription, error)
}
