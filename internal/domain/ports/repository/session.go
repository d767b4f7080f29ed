package repository

import (
	"context"

	"subscription-checkout/internal/domain/model"
)

// SessionRepository persists per-session checkout flow state.
type SessionRepository interface {
	Save(ctx context.Context, state *model.CheckoutState) error
	// Find returns domain.ErrSessionNotFound for unknown or expired sessions.
	Find(ctx context.Context, id string) (*model.CheckoutState, error)
	Delete(ctx context.Context, id string) error
}
