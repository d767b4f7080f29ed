package repository

import (
	"context"

	"subscription-checkout/internal/domain/model"
)

// CatalogCache is a short-lived cache for billing reference data. A miss is
// reported as domain.ErrNotFound; callers fall back to the API on any error.
type CatalogCache interface {
	GetPlans(ctx context.Context) ([]*model.Plan, error)
	SetPlans(ctx context.Context, plans []*model.Plan) error
	GetCardFlags(ctx context.Context) ([]*model.CardFlag, error)
	SetCardFlags(ctx context.Context, flags []*model.CardFlag) error
}
