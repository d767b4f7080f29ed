//go:build !integration

package usecase

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"subscription-checkout/internal/domain/model"
	"subscription-checkout/internal/domain/ports/adapter"
)

func TestCouponValidator_EmptyCodeNoNetworkCall(t *testing.T) {
	ctx := context.Background()
	billing := newMockBilling()
	v := NewCouponValidator(billing, testLogger())

	for _, code := range []string{"", "   ", "\t"} {
		st := v.Validate(ctx, code, 1)
		if st.Status != CouponIdle {
			t.Fatalf("code %q: expected idle, got %s", code, st.Status)
		}
	}
	if n := billing.callCount("validate_coupon"); n != 0 {
		t.Fatalf("expected no validation calls, got %d", n)
	}
}

func TestCouponValidator_ValidFetchesTerms(t *testing.T) {
	ctx := context.Background()
	billing := newMockBilling()
	billing.ValidateCouponFunc = func(_ context.Context, code string, planID int64) (bool, string, error) {
		if code != "SAVE10" || planID != 7 {
			t.Fatalf("unexpected validation args: %s %d", code, planID)
		}
		return true, "", nil
	}
	billing.GetCouponFunc = func(_ context.Context, code string) (*model.Coupon, error) {
		return &model.Coupon{ID: 1, Name: code, DiscountPercent: 10}, nil
	}

	v := NewCouponValidator(billing, testLogger())
	st := v.Validate(ctx, " SAVE10 ", 7)

	if st.Status != CouponValid {
		t.Fatalf("expected valid, got %s", st.Status)
	}
	if st.Coupon == nil || st.Coupon.DiscountPercent != 10 {
		t.Fatalf("expected discount terms, got %+v", st.Coupon)
	}
	if st.Code != "SAVE10" {
		t.Fatalf("expected trimmed code, got %q", st.Code)
	}
}

func TestCouponValidator_DetailFetchFailureDegrades(t *testing.T) {
	ctx := context.Background()
	billing := newMockBilling()
	billing.ValidateCouponFunc = func(context.Context, string, int64) (bool, string, error) {
		return true, "", nil
	}
	billing.GetCouponFunc = func(context.Context, string) (*model.Coupon, error) {
		return nil, errors.New("boom")
	}

	v := NewCouponValidator(billing, testLogger())
	st := v.Validate(ctx, "SAVE10", 1)

	// Still valid, but with no terms the discount is effectively zero.
	if st.Status != CouponValid {
		t.Fatalf("expected valid, got %s", st.Status)
	}
	if st.Coupon != nil {
		t.Fatalf("expected absent terms, got %+v", st.Coupon)
	}
	if d := CalculateDiscount(100, st.Coupon, true); d != 0 {
		t.Fatalf("expected zero discount, got %v", d)
	}
}

func TestCouponValidator_InvalidReasonMessages(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		reason  string
		message string
	}{
		{"expired", "This coupon has expired."},
		{"not_applicable", "This coupon does not apply to the selected plan."},
		{"usage_limit_reached", "This coupon has reached its usage limit."},
		{"something_new", couponGenericMessage},
		{"", couponGenericMessage},
	}
	for _, tc := range cases {
		billing := newMockBilling()
		billing.ValidateCouponFunc = func(context.Context, string, int64) (bool, string, error) {
			return false, tc.reason, nil
		}
		v := NewCouponValidator(billing, testLogger())
		st := v.Validate(ctx, "NOPE", 1)
		if st.Status != CouponInvalid {
			t.Fatalf("reason %q: expected invalid, got %s", tc.reason, st.Status)
		}
		if st.Message != tc.message {
			t.Fatalf("reason %q: expected message %q, got %q", tc.reason, tc.message, st.Message)
		}
	}
}

func TestCouponValidator_UnprocessableErrorMapsReason(t *testing.T) {
	ctx := context.Background()
	billing := newMockBilling()
	billing.ValidateCouponFunc = func(context.Context, string, int64) (bool, string, error) {
		return false, "", &adapter.APIError{Status: http.StatusUnprocessableEntity, Message: "expired"}
	}
	v := NewCouponValidator(billing, testLogger())
	st := v.Validate(ctx, "OLD", 1)
	if st.Status != CouponInvalid {
		t.Fatalf("expected invalid, got %s", st.Status)
	}
	if st.Message != "This coupon has expired." {
		t.Fatalf("unexpected message %q", st.Message)
	}
}

func TestCouponValidator_NetworkFailureHasNoSpecificMessage(t *testing.T) {
	ctx := context.Background()
	billing := newMockBilling()
	billing.ValidateCouponFunc = func(context.Context, string, int64) (bool, string, error) {
		return false, "", errors.New("connection refused")
	}
	v := NewCouponValidator(billing, testLogger())
	st := v.Validate(ctx, "SAVE10", 1)
	if st.Status != CouponInvalid {
		t.Fatalf("expected invalid, got %s", st.Status)
	}
	if st.Message != "" {
		t.Fatalf("expected no specific message, got %q", st.Message)
	}
}

func TestCouponValidator_ResetOnPlanChange(t *testing.T) {
	ctx := context.Background()
	billing := newMockBilling()
	billing.ValidateCouponFunc = func(context.Context, string, int64) (bool, string, error) {
		return true, "", nil
	}
	billing.GetCouponFunc = func(_ context.Context, code string) (*model.Coupon, error) {
		return &model.Coupon{ID: 1, Name: code, DiscountPercent: 10}, nil
	}

	v := NewCouponValidator(billing, testLogger())
	if st := v.Validate(ctx, "SAVE10", 1); st.Status != CouponValid {
		t.Fatalf("setup: expected valid, got %s", st.Status)
	}

	v.Reset()
	st := v.State()
	if st.Status != CouponIdle || st.Code != "" || st.Coupon != nil || st.Message != "" {
		t.Fatalf("expected clean idle state after reset, got %+v", st)
	}
}

// Two overlapping validations: "A" starts first, "B" second, but "A"'s
// response arrives last. The final state must reflect "B".
func TestCouponValidator_SupersededResultIgnored(t *testing.T) {
	ctx := context.Background()
	billing := newMockBilling()

	started := map[string]chan struct{}{"A": make(chan struct{}), "B": make(chan struct{})}
	release := map[string]chan struct{}{"A": make(chan struct{}), "B": make(chan struct{})}
	billing.ValidateCouponFunc = func(_ context.Context, code string, _ int64) (bool, string, error) {
		close(started[code])
		<-release[code]
		return true, "", nil
	}
	billing.GetCouponFunc = func(_ context.Context, code string) (*model.Coupon, error) {
		return &model.Coupon{ID: 1, Name: code, DiscountPercent: 10}, nil
	}

	v := NewCouponValidator(billing, testLogger())

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		v.Validate(ctx, "A", 1)
	}()
	<-started["A"]
	go func() {
		defer wg.Done()
		v.Validate(ctx, "B", 1)
	}()
	<-started["B"]

	close(release["B"]) // B's response arrives first
	close(release["A"]) // A's response arrives after B superseded it
	wg.Wait()

	st := v.State()
	if st.Code != "B" {
		t.Fatalf("expected final state for B, got %q", st.Code)
	}
	if st.Status != CouponValid || st.Coupon == nil || st.Coupon.Name != "B" {
		t.Fatalf("expected B's result, got %+v", st)
	}
}
