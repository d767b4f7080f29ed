// File: internal/usecase/pricing_uc.go
package usecase

import (
	"subscription-checkout/internal/domain/model"
)

// CalculateDiscount computes the discount a coupon grants on a plan price.
// Pure arithmetic, no failure modes: an invalid or absent coupon yields 0,
// a percentage discount takes precedence over a fixed amount, and a fixed
// amount is clamped to the plan price so the total can never go negative.
func CalculateDiscount(planPrice float64, coupon *model.Coupon, couponValid bool) float64 {
	if !couponValid || coupon == nil {
		return 0
	}
	if coupon.DiscountPercent > 0 {
		return planPrice * coupon.DiscountPercent / 100
	}
	if coupon.DiscountAmount > 0 {
		if coupon.DiscountAmount > planPrice {
			return planPrice
		}
		return coupon.DiscountAmount
	}
	return 0
}

// Total returns the price after discount, never below zero.
func Total(planPrice float64, coupon *model.Coupon, couponValid bool) float64 {
	total := planPrice - CalculateDiscount(planPrice, coupon, couponValid)
	if total < 0 {
		return 0
	}
	return total
}
