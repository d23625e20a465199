package services

import (
	"context"
	"errors"

	"github.com/Duly330AI/Matheheftt-sub000/internal/models"
	"github.com/Duly330AI/Matheheftt-sub000/internal/session"
)

// ErrCacheMiss is returned by StateCache.Load when nothing is stored
var ErrCacheMiss = errors.New("state not cached")

// Provider is a backing service the API depends on
type Provider interface {
	// Type returns the service type name
	Type() string

	// HealthCheck checks if the service is available
	HealthCheck(ctx context.Context) error

	// Close releases connections
	Close() error
}

// StateCache keeps the latest controller state of live sessions so they
// survive a restart of the service.
type StateCache interface {
	Save(ctx context.Context, sessionID string, state session.State) error
	Load(ctx context.Context, sessionID string) (session.State, error)
	Delete(ctx context.Context, sessionID string) error
}

// EventSink receives one attempt event per validated input
type EventSink interface {
	Record(ctx context.Context, event models.AttemptEvent) error
	ListBySession(ctx context.Context, sessionID string, limit int) ([]models.AttemptEvent, error)
}

// BaseProvider provides common functionality for providers
type BaseProvider struct {
	serviceType string
}

// Type returns the service type
func (p *BaseProvider) Type() string {
	return p.serviceType
}
