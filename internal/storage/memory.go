package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Duly330AI/Matheheftt-sub000/internal/models"
)

// MemoryRepository keeps sessions in process memory. It backs the service
// when the database is disabled and serves as a fake in tests.
type MemoryRepository struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
	clients  map[string]*models.ApiClient
}

// NewMemoryRepository creates an empty repository. clients are keyed by API key.
func NewMemoryRepository(clients ...*models.ApiClient) *MemoryRepository {
	r := &MemoryRepository{
		sessions: make(map[string]*models.Session),
		clients:  make(map[string]*models.ApiClient),
	}
	for _, c := range clients {
		r.clients[c.ApiKey] = c
	}
	return r
}

func copySession(s *models.Session) *models.Session {
	out := *s
	if s.Params != nil {
		out.Params = make(map[string]any, len(s.Params))
		for k, v := range s.Params {
			out.Params[k] = v
		}
	}
	if s.Metadata != nil {
		out.Metadata = make(map[string]string, len(s.Metadata))
		for k, v := range s.Metadata {
			out.Metadata[k] = v
		}
	}
	if s.FinishedAt != nil {
		t := *s.FinishedAt
		out.FinishedAt = &t
	}
	return &out
}

func (r *MemoryRepository) CreateSession(ctx context.Context, s *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[s.ID]; exists {
		return fmt.Errorf("session already exists: %s", s.ID)
	}
	r.sessions[s.ID] = copySession(s)
	return nil
}

func (r *MemoryRepository) GetSession(ctx context.Context, id string) (*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	return copySession(s), nil
}

func (r *MemoryRepository) UpdateSession(ctx context.Context, s *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[s.ID]; !ok {
		return fmt.Errorf("session not found: %s", s.ID)
	}
	r.sessions[s.ID] = copySession(s)
	return nil
}

func (r *MemoryRepository) DeleteSession(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return fmt.Errorf("session not found: %s", id)
	}
	delete(r.sessions, id)
	return nil
}

func (r *MemoryRepository) ListSessions(ctx context.Context, filters models.ListFilters) ([]*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*models.Session
	for _, s := range r.sessions {
		if filters.EngineID != "" && s.EngineID != filters.EngineID {
			continue
		}
		if filters.Status != "" && s.Status != filters.Status {
			continue
		}
		result = append(result, copySession(s))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })

	if filters.Offset > 0 {
		if filters.Offset >= len(result) {
			return nil, nil
		}
		result = result[filters.Offset:]
	}
	if filters.Limit > 0 && filters.Limit < len(result) {
		result = result[:filters.Limit]
	}
	return result, nil
}

func (r *MemoryRepository) GetIdleSessions(ctx context.Context, lastActiveBefore time.Time) ([]*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*models.Session
	for _, s := range r.sessions {
		if s.Status == models.SessionActive && s.LastActiveAt.Before(lastActiveBefore) {
			result = append(result, copySession(s))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].LastActiveAt.Before(result[j].LastActiveAt) })
	return result, nil
}

func (r *MemoryRepository) GetClientByApiKey(ctx context.Context, apiKey string) (*models.ApiClient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.clients[apiKey]
	if !ok {
		return nil, nil
	}
	out := *c
	return &out, nil
}

func (r *MemoryRepository) UpdateClientLastUsed(ctx context.Context, apiKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.clients[apiKey]; ok {
		now := time.Now()
		c.LastUsedAt = &now
	}
	return nil
}

func (r *MemoryRepository) Ping(ctx context.Context) error {
	return nil
}

func (r *MemoryRepository) Close() error {
	return nil
}
