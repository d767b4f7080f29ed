//go:build !integration

package usecase

import (
	"testing"

	"subscription-checkout/internal/domain/model"
)

func TestCalculateDiscount_Percentage(t *testing.T) {
	coupon := &model.Coupon{ID: 1, Name: "SAVE10", DiscountPercent: 10}

	got := CalculateDiscount(100.00, coupon, true)
	if got != 10.00 {
		t.Fatalf("discount: expected 10.00, got %v", got)
	}
	if total := Total(100.00, coupon, true); total != 90.00 {
		t.Fatalf("total: expected 90.00, got %v", total)
	}
}

func TestCalculateDiscount_FixedAmountClamped(t *testing.T) {
	coupon := &model.Coupon{ID: 2, Name: "BIG", DiscountAmount: 150}

	// Amount exceeds price: discount clamps to the subtotal, total hits zero.
	if got := CalculateDiscount(100.00, coupon, true); got != 100.00 {
		t.Fatalf("discount: expected 100.00, got %v", got)
	}
	if total := Total(100.00, coupon, true); total != 0 {
		t.Fatalf("total: expected 0, got %v", total)
	}

	small := &model.Coupon{ID: 3, Name: "SMALL", DiscountAmount: 25}
	if got := CalculateDiscount(100.00, small, true); got != 25.00 {
		t.Fatalf("discount: expected 25.00, got %v", got)
	}
}

func TestCalculateDiscount_PercentageTakesPrecedence(t *testing.T) {
	coupon := &model.Coupon{ID: 4, Name: "BOTH", DiscountPercent: 20, DiscountAmount: 50}
	if got := CalculateDiscount(200.00, coupon, true); got != 40.00 {
		t.Fatalf("expected percentage to win (40.00), got %v", got)
	}
}

func TestCalculateDiscount_InvalidOrMissingCoupon(t *testing.T) {
	coupon := &model.Coupon{ID: 5, Name: "X", DiscountPercent: 50}

	if got := CalculateDiscount(100.00, coupon, false); got != 0 {
		t.Fatalf("invalid coupon: expected 0, got %v", got)
	}
	if got := CalculateDiscount(100.00, nil, true); got != 0 {
		t.Fatalf("nil coupon: expected 0, got %v", got)
	}
	if got := CalculateDiscount(100.00, &model.Coupon{ID: 6, Name: "EMPTY"}, true); got != 0 {
		t.Fatalf("coupon without terms: expected 0, got %v", got)
	}
}

func TestTotal_NeverNegative(t *testing.T) {
	for _, price := range []float64{0, 0.01, 9.99, 100, 12345.67} {
		for _, c := range []*model.Coupon{
			nil,
			{DiscountPercent: 100},
			{DiscountAmount: price * 2},
			{DiscountAmount: 0.01},
		} {
			if total := Total(price, c, true); total < 0 {
				t.Fatalf("negative total %v for price %v coupon %+v", total, price, c)
			}
		}
	}
}
