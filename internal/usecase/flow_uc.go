// File: internal/usecase/flow_uc.go
package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"subscription-checkout/internal/domain"
	"subscription-checkout/internal/domain/model"
	"subscription-checkout/internal/domain/ports/adapter"
	"subscription-checkout/internal/domain/ports/repository"
	"subscription-checkout/internal/infra/metrics"
)

// CheckoutForm is the locally validated payment form. The coupon applied to
// the submission comes from the session's validator state, not the form.
type CheckoutForm struct {
	Email      string
	ClientName string
	CardNumber string
	ExpireDate string
	CVC        string
	CardFlagID int64
}

// PricePreview is the checkout screen's price summary.
type PricePreview struct {
	Subtotal float64 `json:"subtotal"`
	Discount float64 `json:"discount"`
	Total    float64 `json:"total"`
}

// Compile-time check
var _ FlowUseCase = (*flowUC)(nil)

// FlowUseCase owns the per-session checkout flow: the screen state machine,
// the session's coupon validator and its submission orchestrator.
type FlowUseCase interface {
	// Start creates a session after probing billing availability; returns
	// domain.ErrBillingUnavailable when the API cannot be reached at all.
	Start(ctx context.Context) (*model.CheckoutState, error)
	Get(ctx context.Context, id string) (*model.CheckoutState, error)
	SelectPlan(ctx context.Context, id string, planID int64) (*model.CheckoutState, error)
	// ValidateCoupon validates against the session's selected plan and
	// returns the validator snapshot plus the resulting price preview.
	ValidateCoupon(ctx context.Context, id, code string) (CouponState, *PricePreview, error)
	// Submit returns the orchestration result; on success the session moves
	// to confirmation, on failure it stays on checkout.
	Submit(ctx context.Context, id string, form CheckoutForm) (*model.CheckoutState, *model.CheckoutResult, error)
	Back(ctx context.Context, id string) (*model.CheckoutState, error)
	Reset(ctx context.Context, id string) (*model.CheckoutState, error)
	Navigate(ctx context.Context, id string, target model.Screen) (*model.CheckoutState, error)
}

type flowUC struct {
	sessions repository.SessionRepository
	catalog  CatalogUseCase
	billing  adapter.BillingAPI
	log      *zerolog.Logger
	ttl      time.Duration

	mu       sync.Mutex
	runtimes map[string]*flowRuntime
}

// flowRuntime is the in-process half of a session: the stateful coupon
// validator and the orchestrator whose in-flight guard serializes submits.
// lastSeen drives eviction once the session TTL has passed without access.
type flowRuntime struct {
	coupon       *CouponValidator
	orchestrator *Orchestrator
	lastSeen     time.Time
}

func NewFlowUseCase(
	sessions repository.SessionRepository,
	catalog CatalogUseCase,
	billing adapter.BillingAPI,
	logger *zerolog.Logger,
	sessionTTL time.Duration,
) FlowUseCase {
	return &flowUC{
		sessions: sessions,
		catalog:  catalog,
		billing:  billing,
		log:      logger,
		ttl:      sessionTTL,
		runtimes: make(map[string]*flowRuntime),
	}
}

func (f *flowUC) runtime(id string) *flowRuntime {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sweepLocked(time.Now())
	rt, ok := f.runtimes[id]
	if !ok {
		rt = &flowRuntime{
			coupon:       NewCouponValidator(f.billing, f.log),
			orchestrator: NewOrchestrator(f.billing, f.log),
		}
		f.runtimes[id] = rt
	}
	rt.lastSeen = time.Now()
	return rt
}

func (f *flowUC) dropRuntime(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.runtimes, id)
}

// sweepLocked evicts runtimes whose session must have expired from the store:
// anything untouched for longer than the session TTL. The store renews its TTL
// on every save while the runtime is stamped on every access, so a runtime
// older than one TTL belongs to a session Redis has already dropped.
// Caller holds f.mu.
func (f *flowUC) sweepLocked(now time.Time) {
	if f.ttl <= 0 {
		return
	}
	for id, rt := range f.runtimes {
		if now.Sub(rt.lastSeen) > f.ttl {
			delete(f.runtimes, id)
		}
	}
}

func (f *flowUC) Start(ctx context.Context) (*model.CheckoutState, error) {
	if err := f.billing.Health(ctx); err != nil {
		f.log.Error().Err(err).Msg("billing api unreachable at session start")
		return nil, domain.ErrBillingUnavailable
	}

	state := model.NewCheckoutState(ulid.Make().String())
	if err := f.sessions.Save(ctx, state); err != nil {
		return nil, err
	}
	metrics.IncSessionStarted()
	f.log.Info().Str("session_id", state.ID).Msg("checkout session started")
	return state, nil
}

// load fetches a session and enforces the render invariants on it. A session
// that was corrected (e.g. checkout with no plan) is saved back normalized.
func (f *flowUC) load(ctx context.Context, id string) (*model.CheckoutState, error) {
	state, err := f.sessions.Find(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			// The session expired or never existed; its runtime must not
			// outlive it.
			f.dropRuntime(id)
		}
		return nil, err
	}
	if state.Normalize() {
		f.log.Warn().Str("session_id", id).Msg("session state normalized to plans")
		if err := f.sessions.Save(ctx, state); err != nil {
			return nil, err
		}
	}
	return state, nil
}

func (f *flowUC) Get(ctx context.Context, id string) (*model.CheckoutState, error) {
	return f.load(ctx, id)
}

func (f *flowUC) SelectPlan(ctx context.Context, id string, planID int64) (*model.CheckoutState, error) {
	state, err := f.load(ctx, id)
	if err != nil {
		return nil, err
	}
	plan, err := f.catalog.FindPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if err := state.SelectPlan(plan); err != nil {
		return nil, err
	}
	// New plan selection: any previous coupon result no longer applies.
	f.runtime(id).coupon.Reset()
	if err := f.sessions.Save(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

func (f *flowUC) ValidateCoupon(ctx context.Context, id, code string) (CouponState, *PricePreview, error) {
	state, err := f.load(ctx, id)
	if err != nil {
		return CouponState{}, nil, err
	}
	if state.Screen != model.ScreenCheckout || state.Plan.IsZero() {
		return CouponState{}, nil, domain.ErrNoPlanSelected
	}

	cs := f.runtime(id).coupon.Validate(ctx, code, state.Plan.ID)
	return cs, f.preview(state.Plan, cs), nil
}

func (f *flowUC) preview(plan *model.Plan, cs CouponState) *PricePreview {
	valid := cs.Status == CouponValid
	return &PricePreview{
		Subtotal: plan.Price,
		Discount: CalculateDiscount(plan.Price, cs.Coupon, valid),
		Total:    Total(plan.Price, cs.Coupon, valid),
	}
}

func (f *flowUC) Submit(ctx context.Context, id string, form CheckoutForm) (*model.CheckoutState, *model.CheckoutResult, error) {
	state, err := f.load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if state.Screen != model.ScreenCheckout || state.Plan.IsZero() {
		return nil, nil, domain.ErrNoPlanSelected
	}

	rt := f.runtime(id)
	payload := CheckoutPayload{
		PlanID:     state.Plan.ID,
		Email:      form.Email,
		CardNumber: form.CardNumber,
		ClientName: form.ClientName,
		ExpireDate: form.ExpireDate,
		CVC:        form.CVC,
		CardFlagID: form.CardFlagID,
	}
	if cs := rt.coupon.State(); cs.Status == CouponValid {
		code := cs.Code
		payload.Coupon = &code
	}

	result, err := rt.orchestrator.Submit(ctx, payload)
	if err != nil {
		return nil, nil, err
	}

	if result.Success {
		if err := state.Complete(result); err != nil {
			return nil, nil, err
		}
		if err := f.sessions.Save(ctx, state); err != nil {
			return nil, nil, err
		}
	}
	return state, result, nil
}

func (f *flowUC) Back(ctx context.Context, id string) (*model.CheckoutState, error) {
	state, err := f.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := state.Back(); err != nil {
		return nil, err
	}
	if err := f.sessions.Save(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

func (f *flowUC) Reset(ctx context.Context, id string) (*model.CheckoutState, error) {
	state, err := f.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := state.Reset(); err != nil {
		return nil, err
	}
	f.dropRuntime(id)
	if err := f.sessions.Save(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

func (f *flowUC) Navigate(ctx context.Context, id string, target model.Screen) (*model.CheckoutState, error) {
	state, err := f.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := state.Navigate(target); err != nil {
		return nil, err
	}
	if err := f.sessions.Save(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}
