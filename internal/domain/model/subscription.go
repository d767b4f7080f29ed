package model

import "time"

// Subscription is the billing API's record of a purchase. The Transactions
// slice carries the authoritative payment outcome: approval or decline is
// decided server-side and only visible after re-fetching the full record.
type Subscription struct {
	ID           int64         `json:"id"`
	PlanID       int64         `json:"plan_id"`
	Plan         *Plan         `json:"plan,omitempty"`
	CouponID     *int64        `json:"coupon_id,omitempty"`
	Email        string        `json:"email"`
	Active       bool          `json:"active"`
	Price        float64       `json:"price"`
	CreatedAt    time.Time     `json:"created_at"`
	Transactions []Transaction `json:"transactions,omitempty"`
}

// Transaction is one payment attempt against a subscription.
type Transaction struct {
	ID             int64     `json:"id"`
	SubscriptionID int64     `json:"subscription_id"`
	CardLastDigits string    `json:"card_last_digits"`
	CardHolder     string    `json:"card_holder"`
	Success        bool      `json:"success"`
	Price          float64   `json:"price"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// LastTransaction returns the most recent payment attempt, or nil when the
// record carries none.
func (s *Subscription) LastTransaction() *Transaction {
	if s == nil || len(s.Transactions) == 0 {
		return nil
	}
	return &s.Transactions[len(s.Transactions)-1]
}
