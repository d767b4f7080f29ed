package model

import (
	"time"

	"subscription-checkout/internal/domain"
)

type Screen string

const (
	ScreenPlans         Screen = "plans"
	ScreenCheckout      Screen = "checkout"
	ScreenConfirmation  Screen = "confirmation"
	ScreenSubscriptions Screen = "subscriptions"
)

func (s Screen) Valid() bool {
	switch s {
	case ScreenPlans, ScreenCheckout, ScreenConfirmation, ScreenSubscriptions:
		return true
	}
	return false
}

// CheckoutResult is the outcome of one subscription submission. Success carries
// the full re-fetched record; failure carries a global message and, for
// unprocessable submissions, a per-field error map.
type CheckoutResult struct {
	Success      bool                `json:"success"`
	Subscription *Subscription       `json:"subscription,omitempty"`
	Message      string              `json:"message,omitempty"`
	FieldErrors  map[string][]string `json:"field_errors,omitempty"`
}

// CheckoutState is the session-scoped flow state. All mutation goes through
// the transition methods so the flow invariants live in one place: the machine
// is cyclic, there is no terminal screen.
type CheckoutState struct {
	ID        string          `json:"id"`
	Screen    Screen          `json:"screen"`
	Plan      *Plan           `json:"plan,omitempty"`
	Result    *CheckoutResult `json:"result,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewCheckoutState starts a fresh session on the plans screen.
func NewCheckoutState(id string) *CheckoutState {
	return &CheckoutState{
		ID:        id,
		Screen:    ScreenPlans,
		CreatedAt: time.Now(),
	}
}

// SelectPlan moves plans -> checkout and stores the plan.
func (c *CheckoutState) SelectPlan(p *Plan) error {
	if p.IsZero() {
		return domain.ErrInvalidArgument
	}
	if c.Screen != ScreenPlans {
		return domain.ErrInvalidTransition
	}
	c.Plan = p
	c.Screen = ScreenCheckout
	return nil
}

// Complete moves checkout -> confirmation and stores the transaction result.
func (c *CheckoutState) Complete(r *CheckoutResult) error {
	if r == nil {
		return domain.ErrInvalidArgument
	}
	if c.Screen != ScreenCheckout || c.Plan.IsZero() {
		return domain.ErrInvalidTransition
	}
	c.Result = r
	c.Screen = ScreenConfirmation
	return nil
}

// Back moves checkout -> plans. The selection persists until a reset.
func (c *CheckoutState) Back() error {
	if c.Screen != ScreenCheckout {
		return domain.ErrInvalidTransition
	}
	c.Screen = ScreenPlans
	return nil
}

// Reset restarts the flow from confirmation, clearing both the selected plan
// and the transaction result.
func (c *CheckoutState) Reset() error {
	if c.Screen != ScreenConfirmation {
		return domain.ErrInvalidTransition
	}
	c.Plan = nil
	c.Result = nil
	c.Screen = ScreenPlans
	return nil
}

// Navigate switches between plans and subscriptions; no state dependency.
func (c *CheckoutState) Navigate(target Screen) error {
	if target != ScreenPlans && target != ScreenSubscriptions {
		return domain.ErrInvalidTransition
	}
	if c.Screen != ScreenPlans && c.Screen != ScreenSubscriptions {
		return domain.ErrInvalidTransition
	}
	c.Screen = target
	return nil
}

// Normalize enforces the render invariants on state loaded from the store:
// checkout without a plan and confirmation without a result both fall back to
// plans. Returns true when a correction was applied.
func (c *CheckoutState) Normalize() bool {
	switch {
	case c.Screen == ScreenCheckout && c.Plan.IsZero():
		c.Screen = ScreenPlans
		return true
	case c.Screen == ScreenConfirmation && c.Result == nil:
		c.Screen = ScreenPlans
		return true
	case !c.Screen.Valid():
		c.Screen = ScreenPlans
		return true
	}
	return false
}
