package services

import (
	"context"

	"github.com/Duly330AI/Matheheftt-sub000/internal/models"
	"github.com/Duly330AI/Matheheftt-sub000/internal/session"
)

// NopCache stands in for Redis when it is disabled
type NopCache struct{}

func (NopCache) Save(ctx context.Context, sessionID string, state session.State) error {
	return nil
}

func (NopCache) Load(ctx context.Context, sessionID string) (session.State, error) {
	return session.State{}, ErrCacheMiss
}

func (NopCache) Delete(ctx context.Context, sessionID string) error {
	return nil
}

// NopSink drops attempt events when the database is disabled
type NopSink struct{}

func (NopSink) Record(ctx context.Context, event models.AttemptEvent) error {
	return nil
}

func (NopSink) ListBySession(ctx context.Context, sessionID string, limit int) ([]models.AttemptEvent, error) {
	return nil, nil
}
