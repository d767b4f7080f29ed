// File: internal/usecase/checkout_uc.go
package usecase

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"subscription-checkout/internal/domain"
	"subscription-checkout/internal/domain/model"
	"subscription-checkout/internal/domain/ports/adapter"
	"subscription-checkout/internal/infra/metrics"
)

// CheckoutPayload carries everything one submission needs. Coupon is nil
// unless a coupon is currently validated for the selected plan.
type CheckoutPayload struct {
	PlanID     int64
	Coupon     *string
	Email      string
	CardNumber string
	ClientName string
	ExpireDate string
	CVC        string
	CardFlagID int64
}

const submitFallbackMessage = "Could not process the subscription. Please try again."

// Compile-time check
var _ CheckoutUseCase = (*Orchestrator)(nil)

type CheckoutUseCase interface {
	// Submit runs the create-subscription -> create-payment -> re-fetch
	// sequence. Remote failures are normalized into a failure result; the only
	// error returned is domain.ErrSubmitInFlight for a re-entrant call.
	Submit(ctx context.Context, payload CheckoutPayload) (*model.CheckoutResult, error)
}

// Orchestrator drives one subscription purchase against the billing API. Each
// of the two mutating calls gets its own fresh idempotency key: subscription
// creation and payment are separate idempotent operations keyed independently.
type Orchestrator struct {
	billing  adapter.BillingAPI
	log      *zerolog.Logger
	inFlight atomic.Bool
}

func NewOrchestrator(billing adapter.BillingAPI, logger *zerolog.Logger) *Orchestrator {
	return &Orchestrator{billing: billing, log: logger}
}

func (o *Orchestrator) Submit(ctx context.Context, payload CheckoutPayload) (*model.CheckoutResult, error) {
	if !o.inFlight.CompareAndSwap(false, true) {
		// Rapid repeated submits must not create duplicate subscriptions.
		metrics.IncCheckoutSubmission("rejected")
		return nil, domain.ErrSubmitInFlight
	}
	defer o.inFlight.Store(false)

	// Step 1: create the subscription. Failure aborts the whole operation.
	sub, err := o.billing.CreateSubscription(ctx, adapter.SubscriptionRequest{
		PlanID: payload.PlanID,
		Coupon: payload.Coupon,
		Email:  payload.Email,
	}, uuid.NewString())
	if err != nil {
		o.log.Warn().Err(err).Int64("plan_id", payload.PlanID).Msg("subscription creation failed")
		metrics.IncCheckoutSubmission("failure")
		return failureFrom(err), nil
	}

	// Step 2: submit payment with a second fresh key. On failure the
	// subscription from step 1 is left as-is; reconciling it is the server's
	// responsibility, not retried or rolled back here.
	_, err = o.billing.CreatePayment(ctx, adapter.PaymentRequest{
		SubscriptionID: sub.ID,
		CardNumber:     payload.CardNumber,
		ClientName:     payload.ClientName,
		ExpireDate:     payload.ExpireDate,
		CVC:            payload.CVC,
		CardFlagID:     payload.CardFlagID,
	}, uuid.NewString())
	if err != nil {
		o.log.Warn().Err(err).Int64("subscription_id", sub.ID).Msg("payment submission failed")
		metrics.IncCheckoutSubmission("failure")
		return failureFrom(err), nil
	}

	// Step 3: re-fetch the full record. Approval or decline is decided
	// server-side and is not inferable from the payment call alone.
	full, err := o.billing.GetSubscription(ctx, sub.ID)
	if err != nil {
		o.log.Warn().Err(err).Int64("subscription_id", sub.ID).Msg("subscription re-fetch failed")
		metrics.IncCheckoutSubmission("failure")
		return failureFrom(err), nil
	}

	metrics.IncCheckoutSubmission("success")
	return &model.CheckoutResult{Success: true, Subscription: full}, nil
}

// failureFrom normalizes a billing error into the failure result shape:
// unprocessable responses keep their field-error map, other responses keep
// their message, and anything without a usable message gets the fallback.
func failureFrom(err error) *model.CheckoutResult {
	var apiErr *adapter.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Unprocessable() && len(apiErr.FieldErrors) > 0 {
			return &model.CheckoutResult{
				Success:     false,
				Message:     apiErr.Message,
				FieldErrors: apiErr.FieldErrors,
			}
		}
		if apiErr.Message != "" {
			return &model.CheckoutResult{Success: false, Message: apiErr.Message}
		}
	}
	return &model.CheckoutResult{Success: false, Message: submitFallbackMessage}
}
