package model

// Coupon is a discount code scoped to a plan. The discount is either a
// percentage or a fixed amount; when both are set the percentage wins.
// A coupon is only ever fetched after server-side validation succeeded.
type Coupon struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"` // the coupon code
	DiscountPercent float64 `json:"discount_percent,omitempty"`
	DiscountAmount  float64 `json:"discount_amount,omitempty"`
}

// CardFlag is a payment network ("Visa", "Mastercard", ...). Reference data.
type CardFlag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
