package redis

import (
	"context"
	"encoding/json"
	"time"

	"subscription-checkout/internal/domain/model"
	"subscription-checkout/internal/domain/ports/repository"
)

var _ repository.CatalogCache = (*CatalogCache)(nil)

// CatalogCache caches billing reference data (plans, card flags) with a short
// TTL. Reference data is read-only to this service, so staleness up to the
// TTL is acceptable.
type CatalogCache struct {
	client *redClient
	ttl    time.Duration
}

func NewCatalogCache(client *redClient, ttl time.Duration) *CatalogCache {
	return &CatalogCache{client: client, ttl: ttl}
}

const (
	plansKey     = "catalog:plans"
	cardFlagsKey = "catalog:card_flags"
)

func (c *CatalogCache) GetPlans(ctx context.Context) ([]*model.Plan, error) {
	data, err := c.client.Get(ctx, plansKey)
	if err != nil {
		return nil, err
	}
	var plans []*model.Plan
	if err := json.Unmarshal([]byte(data), &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

func (c *CatalogCache) SetPlans(ctx context.Context, plans []*model.Plan) error {
	data, err := json.Marshal(plans)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, plansKey, data, c.ttl)
}

func (c *CatalogCache) GetCardFlags(ctx context.Context) ([]*model.CardFlag, error) {
	data, err := c.client.Get(ctx, cardFlagsKey)
	if err != nil {
		return nil, err
	}
	var flags []*model.CardFlag
	if err := json.Unmarshal([]byte(data), &flags); err != nil {
		return nil, err
	}
	return flags, nil
}

func (c *CatalogCache) SetCardFlags(ctx context.Context, flags []*model.CardFlag) error {
	data, err := json.Marshal(flags)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cardFlagsKey, data, c.ttl)
}
