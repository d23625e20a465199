package services

import (
	"context"
	"sync"

	"github.com/Duly330AI/Matheheftt-sub000/internal/models"
)

// MemorySink keeps attempt events in process memory. It backs the attempts
// endpoint when the database is disabled.
type MemorySink struct {
	mu     sync.RWMutex
	events map[string][]models.AttemptEvent
}

// NewMemorySink creates an empty sink
func NewMemorySink() *MemorySink {
	return &MemorySink{events: make(map[string][]models.AttemptEvent)}
}

func (s *MemorySink) Record(ctx context.Context, event models.AttemptEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.SessionID] = append(s.events[event.SessionID], event)
	return nil
}

// ListBySession returns the newest events of a session first
func (s *MemorySink) ListBySession(ctx context.Context, sessionID string, limit int) ([]models.AttemptEvent, error) {
	if limit <= 0 {
		limit = 100
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.events[sessionID]
	out := make([]models.AttemptEvent, 0, min(limit, len(stored)))
	for i := len(stored) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, stored[i])
	}
	return out, nil
}

// Forget drops the events of a deleted session
func (s *MemorySink) Forget(sessionID string) {
	s.mu.Lock()
	delete(s.events, sessionID)
	s.mu.Unlock()
}
