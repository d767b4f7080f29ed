//go:build !integration

package usecase

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"subscription-checkout/internal/domain"
	"subscription-checkout/internal/domain/model"
	"subscription-checkout/internal/domain/ports/adapter"
	"subscription-checkout/internal/domain/ports/repository"
)

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// --- Mock billing API ---

type mockBilling struct {
	mu    sync.Mutex
	calls map[string]int
	keys  []string // idempotency keys in call order

	HealthFunc             func(ctx context.Context) error
	ListPlansFunc          func(ctx context.Context) ([]*model.Plan, error)
	ListCardFlagsFunc      func(ctx context.Context) ([]*model.CardFlag, error)
	ValidateCouponFunc     func(ctx context.Context, code string, planID int64) (bool, string, error)
	GetCouponFunc          func(ctx context.Context, code string) (*model.Coupon, error)
	CreateSubscriptionFunc func(ctx context.Context, req adapter.SubscriptionRequest, key string) (*model.Subscription, error)
	CreatePaymentFunc      func(ctx context.Context, req adapter.PaymentRequest, key string) (*model.Transaction, error)
	GetSubscriptionFunc    func(ctx context.Context, id int64) (*model.Subscription, error)
}

var _ adapter.BillingAPI = (*mockBilling)(nil)

func newMockBilling() *mockBilling {
	return &mockBilling{calls: make(map[string]int)}
}

func (m *mockBilling) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[name]++
}

func (m *mockBilling) recordKey(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys = append(m.keys, key)
}

func (m *mockBilling) callCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

func (m *mockBilling) idempotencyKeys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

func (m *mockBilling) Health(ctx context.Context) error {
	m.record("health")
	if m.HealthFunc != nil {
		return m.HealthFunc(ctx)
	}
	return nil
}

func (m *mockBilling) ListPlans(ctx context.Context) ([]*model.Plan, error) {
	m.record("list_plans")
	if m.ListPlansFunc != nil {
		return m.ListPlansFunc(ctx)
	}
	return nil, nil
}

func (m *mockBilling) ListCardFlags(ctx context.Context) ([]*model.CardFlag, error) {
	m.record("list_card_flags")
	if m.ListCardFlagsFunc != nil {
		return m.ListCardFlagsFunc(ctx)
	}
	return nil, nil
}

func (m *mockBilling) ValidateCoupon(ctx context.Context, code string, planID int64) (bool, string, error) {
	m.record("validate_coupon")
	if m.ValidateCouponFunc != nil {
		return m.ValidateCouponFunc(ctx, code, planID)
	}
	return false, "", nil
}

func (m *mockBilling) GetCoupon(ctx context.Context, code string) (*model.Coupon, error) {
	m.record("get_coupon")
	if m.GetCouponFunc != nil {
		return m.GetCouponFunc(ctx, code)
	}
	return nil, domain.ErrNotFound
}

func (m *mockBilling) CreateSubscription(ctx context.Context, req adapter.SubscriptionRequest, key string) (*model.Subscription, error) {
	m.record("create_subscription")
	m.recordKey(key)
	if m.CreateSubscriptionFunc != nil {
		return m.CreateSubscriptionFunc(ctx, req, key)
	}
	return &model.Subscription{ID: 1, PlanID: req.PlanID, Email: req.Email}, nil
}

func (m *mockBilling) CreatePayment(ctx context.Context, req adapter.PaymentRequest, key string) (*model.Transaction, error) {
	m.record("create_payment")
	m.recordKey(key)
	if m.CreatePaymentFunc != nil {
		return m.CreatePaymentFunc(ctx, req, key)
	}
	return &model.Transaction{ID: 1, SubscriptionID: req.SubscriptionID, Success: true}, nil
}

func (m *mockBilling) GetSubscription(ctx context.Context, id int64) (*model.Subscription, error) {
	m.record("get_subscription")
	if m.GetSubscriptionFunc != nil {
		return m.GetSubscriptionFunc(ctx, id)
	}
	return &model.Subscription{ID: id}, nil
}

// --- Mock session repository ---

type mockSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*model.CheckoutState
	SaveErr  error
}

var _ repository.SessionRepository = (*mockSessionRepo)(nil)

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{sessions: make(map[string]*model.CheckoutState)}
}

func (m *mockSessionRepo) Save(_ context.Context, state *model.CheckoutState) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *state
	m.sessions[state.ID] = &cp
	return nil
}

func (m *mockSessionRepo) Find(_ context.Context, id string) (*model.CheckoutState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	cp := *state
	return &cp, nil
}

func (m *mockSessionRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// --- Mock catalog cache ---

type mockCatalogCache struct {
	mu    sync.Mutex
	plans []*model.Plan
	flags []*model.CardFlag

	planHits, planMisses int
}

var _ repository.CatalogCache = (*mockCatalogCache)(nil)

func (m *mockCatalogCache) GetPlans(_ context.Context) ([]*model.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.plans == nil {
		m.planMisses++
		return nil, domain.ErrNotFound
	}
	m.planHits++
	return m.plans, nil
}

func (m *mockCatalogCache) SetPlans(_ context.Context, plans []*model.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plans = plans
	return nil
}

func (m *mockCatalogCache) GetCardFlags(_ context.Context) ([]*model.CardFlag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.flags == nil {
		return nil, domain.ErrNotFound
	}
	return m.flags, nil
}

func (m *mockCatalogCache) SetCardFlags(_ context.Context, flags []*model.CardFlag) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flags = flags
	return nil
}
