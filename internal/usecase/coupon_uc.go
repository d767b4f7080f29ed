// File: internal/usecase/coupon_uc.go
package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"subscription-checkout/internal/domain/model"
	"subscription-checkout/internal/domain/ports/adapter"
	"subscription-checkout/internal/infra/metrics"
)

type CouponStatus string

const (
	CouponIdle       CouponStatus = "idle"
	CouponValidating CouponStatus = "validating"
	CouponValid      CouponStatus = "valid"
	CouponInvalid    CouponStatus = "invalid"
)

// Messages for the known server-side rejection reasons. Anything outside this
// table falls back to the generic message.
var couponMessages = map[string]string{
	"expired":             "This coupon has expired.",
	"not_applicable":      "This coupon does not apply to the selected plan.",
	"usage_limit_reached": "This coupon has reached its usage limit.",
}

const couponGenericMessage = "Coupon is invalid or not applicable."

// CouponState is an immutable snapshot of the validator.
type CouponState struct {
	Status  CouponStatus  `json:"status"`
	Code    string        `json:"code,omitempty"`
	Coupon  *model.Coupon `json:"coupon,omitempty"`
	Message string        `json:"message,omitempty"`
}

// CouponValidator validates a coupon code against the currently selected plan.
// It is a per-session state machine: idle -> validating -> {valid, invalid},
// reset whenever the plan selection changes. Only the latest Validate call may
// update state; a superseded in-flight call's result is discarded on arrival
// regardless of response ordering.
type CouponValidator struct {
	billing adapter.BillingAPI
	log     *zerolog.Logger

	mu      sync.Mutex
	seq     uint64
	status  CouponStatus
	code    string
	planID  int64
	coupon  *model.Coupon
	message string
}

func NewCouponValidator(billing adapter.BillingAPI, logger *zerolog.Logger) *CouponValidator {
	return &CouponValidator{
		billing: billing,
		log:     logger,
		status:  CouponIdle,
	}
}

// State returns the current snapshot.
func (v *CouponValidator) State() CouponState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshotLocked()
}

func (v *CouponValidator) snapshotLocked() CouponState {
	return CouponState{
		Status:  v.status,
		Code:    v.code,
		Coupon:  v.coupon,
		Message: v.message,
	}
}

// Reset returns the validator to idle. Called on plan change: a coupon
// validated for one plan must never silently apply to another.
func (v *CouponValidator) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.seq++ // invalidates any in-flight call
	v.status = CouponIdle
	v.code = ""
	v.planID = 0
	v.coupon = nil
	v.message = ""
}

// Validate checks code against planID and returns the resulting snapshot.
// An empty code (after trimming) resets to idle without a network call.
// Remote failures are absorbed into the invalid state, never raised.
func (v *CouponValidator) Validate(ctx context.Context, code string, planID int64) CouponState {
	code = strings.TrimSpace(code)

	v.mu.Lock()
	v.seq++
	call := v.seq

	if code == "" {
		v.status = CouponIdle
		v.code = ""
		v.planID = planID
		v.coupon = nil
		v.message = ""
		snap := v.snapshotLocked()
		v.mu.Unlock()
		metrics.IncCouponValidation("skipped")
		return snap
	}

	v.status = CouponValidating
	v.code = code
	v.planID = planID
	v.coupon = nil
	v.message = ""
	v.mu.Unlock()

	valid, reason, err := v.billing.ValidateCoupon(ctx, code, planID)

	var coupon *model.Coupon
	status := CouponInvalid
	message := ""
	switch {
	case err == nil && valid:
		status = CouponValid
		c, cErr := v.billing.GetCoupon(ctx, code)
		if cErr != nil {
			// Defined degradation: the coupon stays valid with no discount
			// terms, so the discount is effectively zero.
			v.log.Warn().Err(cErr).Str("coupon", code).Msg("coupon detail fetch failed; treating discount terms as absent")
		} else {
			coupon = c
		}
	case err == nil:
		message = messageForReason(reason)
	default:
		var apiErr *adapter.APIError
		if errors.As(err, &apiErr) && apiErr.Unprocessable() {
			message = messageForReason(apiErr.Message)
		}
		v.log.Warn().Err(err).Str("coupon", code).Msg("coupon validation failed")
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.seq != call {
		// A newer Validate or Reset started after this one; drop the result.
		metrics.IncCouponValidation("superseded")
		return v.snapshotLocked()
	}
	v.status = status
	v.coupon = coupon
	v.message = message
	metrics.IncCouponValidation(string(status))
	return v.snapshotLocked()
}

func messageForReason(reason string) string {
	if msg, ok := couponMessages[strings.ToLower(strings.TrimSpace(reason))]; ok {
		return msg
	}
	return couponGenericMessage
}
