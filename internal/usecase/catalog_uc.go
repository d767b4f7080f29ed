// File: internal/usecase/catalog_uc.go
package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"subscription-checkout/internal/domain"
	"subscription-checkout/internal/domain/model"
	"subscription-checkout/internal/domain/ports/adapter"
	"subscription-checkout/internal/domain/ports/repository"
)

// Compile-time check
var _ CatalogUseCase = (*catalogUC)(nil)

// CatalogUseCase serves billing reference data through a short-lived cache.
type CatalogUseCase interface {
	Plans(ctx context.Context) ([]*model.Plan, error)
	CardFlags(ctx context.Context) ([]*model.CardFlag, error)
	// FindPlan returns domain.ErrNotFound for an unknown plan id.
	FindPlan(ctx context.Context, id int64) (*model.Plan, error)
}

type catalogUC struct {
	billing adapter.BillingAPI
	cache   repository.CatalogCache
	log     *zerolog.Logger
}

func NewCatalogUseCase(billing adapter.BillingAPI, cache repository.CatalogCache, logger *zerolog.Logger) CatalogUseCase {
	return &catalogUC{billing: billing, cache: cache, log: logger}
}

// Plans is a read-through: cache hit wins, otherwise fetch and backfill.
// Cache errors degrade to a direct fetch.
func (c *catalogUC) Plans(ctx context.Context) ([]*model.Plan, error) {
	if plans, err := c.cache.GetPlans(ctx); err == nil {
		return plans, nil
	}
	plans, err := c.billing.ListPlans(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.cache.SetPlans(ctx, plans); err != nil {
		c.log.Warn().Err(err).Msg("plan cache write failed")
	}
	return plans, nil
}

func (c *catalogUC) CardFlags(ctx context.Context) ([]*model.CardFlag, error) {
	if flags, err := c.cache.GetCardFlags(ctx); err == nil {
		return flags, nil
	}
	flags, err := c.billing.ListCardFlags(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.cache.SetCardFlags(ctx, flags); err != nil {
		c.log.Warn().Err(err).Msg("card flag cache write failed")
	}
	return flags, nil
}

func (c *catalogUC) FindPlan(ctx context.Context, id int64) (*model.Plan, error) {
	plans, err := c.Plans(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range plans {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, domain.ErrNotFound
}
