package storage

import (
	"context"
	"time"

	"github.com/Duly330AI/Matheheftt-sub000/internal/models"
)

// Repository defines the interface for practice session persistence.
// Getters return nil, nil when the record does not exist.
type Repository interface {
	// Sessions
	CreateSession(ctx context.Context, s *models.Session) error
	GetSession(ctx context.Context, id string) (*models.Session, error)
	UpdateSession(ctx context.Context, s *models.Session) error
	DeleteSession(ctx context.Context, id string) error
	ListSessions(ctx context.Context, filters models.ListFilters) ([]*models.Session, error)
	GetIdleSessions(ctx context.Context, lastActiveBefore time.Time) ([]*models.Session, error)

	// API Clients
	GetClientByApiKey(ctx context.Context, apiKey string) (*models.ApiClient, error)
	UpdateClientLastUsed(ctx context.Context, apiKey string) error

	// Health
	Ping(ctx context.Context) error
	Close() error
}
