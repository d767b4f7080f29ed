package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"subscription-checkout/internal/domain"
	"subscription-checkout/internal/domain/model"
	"subscription-checkout/internal/domain/ports/repository"
)

var _ repository.SessionRepository = (*SessionRepo)(nil)

// SessionRepo keeps checkout flow state in Redis. Each save renews the TTL so
// an active session never expires mid-flow.
type SessionRepo struct {
	client *redClient
	ttl    time.Duration
}

func NewSessionRepo(client *redClient, ttl time.Duration) *SessionRepo {
	return &SessionRepo{client: client, ttl: ttl}
}

func (s *SessionRepo) sessionKey(id string) string {
	return "checkout_session:" + id
}

func (s *SessionRepo) Save(ctx context.Context, state *model.CheckoutState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.sessionKey(state.ID), data, s.ttl)
}

func (s *SessionRepo) Find(ctx context.Context, id string) (*model.CheckoutState, error) {
	data, err := s.client.Get(ctx, s.sessionKey(id))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}

	var state model.CheckoutState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *SessionRepo) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.sessionKey(id))
}
