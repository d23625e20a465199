package practice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Duly330AI/Matheheftt-sub000/internal/engine"
	"github.com/Duly330AI/Matheheftt-sub000/internal/metrics"
	"github.com/Duly330AI/Matheheftt-sub000/internal/models"
	"github.com/Duly330AI/Matheheftt-sub000/internal/services"
	"github.com/Duly330AI/Matheheftt-sub000/internal/session"
	"github.com/Duly330AI/Matheheftt-sub000/internal/storage"
	"github.com/Duly330AI/Matheheftt-sub000/internal/templates"
)

// Common errors
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionClosed   = errors.New("session is closed")
)

// Manager defines the interface for practice session management
type Manager interface {
	Create(ctx context.Context, req models.CreateSessionRequest, createdBy string) (*View, error)
	Get(ctx context.Context, id string) (*View, error)
	Input(ctx context.Context, id, cellID, value string) (*View, error)
	Next(ctx context.Context, id string) (*View, error)
	Undo(ctx context.Context, id string) (*View, error)
	Reset(ctx context.Context, id string) (*View, error)
	Clear(ctx context.Context, id string) (*View, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filters models.ListFilters) ([]*models.Session, error)
	Attempts(ctx context.Context, id string, limit int) ([]models.AttemptEvent, error)
	ExpireIdle(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
}

// View is a session record together with the controller state it describes
type View struct {
	Session *models.Session `json:"session"`
	State   session.State   `json:"state"`
}

// Options configures a SessionManager
type Options struct {
	IdleTimeout time.Duration
	Cache       services.StateCache
	Events      services.EventSink
}

// live is one in-memory session. mu serializes every call into ctrl.
type live struct {
	mu     sync.Mutex
	ctrl   *session.Controller
	cfg    engine.Config
	record *models.Session
}

// SessionManager implements Manager on top of the engine registry
type SessionManager struct {
	engines *engine.Registry
	catalog *templates.Loader
	repo    storage.Repository
	cache   services.StateCache
	events  services.EventSink
	idle    time.Duration
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[string]*live
}

// NewManager creates a new SessionManager. Nil cache or event sink fall back to no-ops.
func NewManager(engines *engine.Registry, catalog *templates.Loader, repo storage.Repository, opts Options) *SessionManager {
	if opts.Cache == nil {
		opts.Cache = services.NopCache{}
	}
	if opts.Events == nil {
		opts.Events = services.NopSink{}
	}
	return &SessionManager{
		engines:  engines,
		catalog:  catalog,
		repo:     repo,
		cache:    opts.Cache,
		events:   opts.Events,
		idle:     opts.IdleTimeout,
		now:      time.Now,
		sessions: make(map[string]*live),
	}
}

// Ping checks the repository connection
func (m *SessionManager) Ping(ctx context.Context) error {
	return m.repo.Ping(ctx)
}

// Create generates a new problem and starts a session on it
func (m *SessionManager) Create(ctx context.Context, req models.CreateSessionRequest, createdBy string) (*View, error) {
	engineID, params, err := m.resolve(req)
	if err != nil {
		return nil, err
	}

	eng, cfg, err := m.engines.Build(engineID, params)
	if err != nil {
		return nil, err
	}

	ctrl := session.New(eng)
	started := time.Now()
	if err := ctrl.Start(cfg); err != nil {
		metrics.RecordGeneration(engineID, "error", time.Since(started), 0)
		return nil, err
	}
	state := ctrl.State()
	metrics.RecordGeneration(engineID, "ok", time.Since(started), state.StepCount())

	now := m.now()
	record := &models.Session{
		ID:           uuid.New().String(),
		EngineID:     engineID,
		PresetID:     req.PresetID,
		Params:       params,
		Status:       models.SessionActive,
		StepCount:    state.StepCount(),
		Metadata:     req.Metadata,
		CreatedBy:    createdBy,
		CreatedAt:    now,
		LastActiveAt: now,
	}
	if state.Status == session.StatusFinished {
		record.Status = models.SessionFinished
		record.FinishedAt = &now
	}

	if err := m.repo.CreateSession(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	m.saveState(ctx, record.ID, state)
	metrics.SessionOpened()

	if record.Status.IsTerminal() {
		metrics.SessionClosed(record.Status)
	} else {
		m.mu.Lock()
		m.sessions[record.ID] = &live{ctrl: ctrl, cfg: cfg, record: record}
		m.mu.Unlock()
	}

	slog.Info("session started",
		"id", record.ID,
		"engine", engineID,
		"preset", req.PresetID,
		"steps", record.StepCount,
	)

	return &View{Session: copyRecord(record), State: state}, nil
}

// resolve turns a request into an engine id and parameters. Explicit
// params are merged over the preset's.
func (m *SessionManager) resolve(req models.CreateSessionRequest) (string, map[string]any, error) {
	if req.PresetID == "" {
		return req.EngineID, req.Params, nil
	}
	if m.catalog == nil {
		return "", nil, fmt.Errorf("%w: %s", templates.ErrPresetNotFound, req.PresetID)
	}
	preset, err := m.catalog.GetPreset(req.PresetID)
	if err != nil {
		return "", nil, err
	}
	if req.EngineID != "" && req.EngineID != preset.EngineID {
		return "", nil, fmt.Errorf("%w: preset %s uses engine %s", engine.ErrInvalidConfig, preset.ID, preset.EngineID)
	}

	params := make(map[string]any, len(preset.Params)+len(req.Params))
	maps.Copy(params, preset.Params)
	maps.Copy(params, req.Params)
	return preset.EngineID, params, nil
}

// Get returns the record and current state of a session
func (m *SessionManager) Get(ctx context.Context, id string) (*View, error) {
	if l := m.lookup(id); l != nil {
		l.mu.Lock()
		defer l.mu.Unlock()
		return &View{Session: copyRecord(l.record), State: l.ctrl.State()}, nil
	}

	record, err := m.repo.GetSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if record == nil {
		return nil, ErrSessionNotFound
	}

	if record.Status.IsTerminal() {
		view := &View{Session: record}
		if state, err := m.cache.Load(ctx, id); err == nil {
			view.State = state
		}
		return view, nil
	}

	l, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return &View{Session: copyRecord(l.record), State: l.ctrl.State()}, nil
}

// Input writes one cell and validates the current step
func (m *SessionManager) Input(ctx context.Context, id, cellID, value string) (*View, error) {
	return m.apply(ctx, id, func(l *live) error {
		step, _ := l.ctrl.CurrentStep()
		result, err := l.ctrl.Input(cellID, value)
		if err != nil {
			return err
		}

		metrics.RecordValidation(l.record.EngineID, result)
		if result.Pending {
			return nil
		}
		m.recordAttempt(ctx, l.record, step, result)
		return nil
	})
}

// Next advances past a solved step
func (m *SessionManager) Next(ctx context.Context, id string) (*View, error) {
	return m.apply(ctx, id, func(l *live) error {
		return l.ctrl.Next()
	})
}

// Undo restores the state before the last transition
func (m *SessionManager) Undo(ctx context.Context, id string) (*View, error) {
	return m.apply(ctx, id, func(l *live) error {
		before := l.ctrl.State()
		if !l.ctrl.Undo() {
			return fmt.Errorf("%w: nothing to undo", session.ErrInvalidTransition)
		}
		// The oldest snapshot is the idle controller before Start.
		if l.ctrl.Status() == session.StatusIdle {
			l.ctrl.Restore(before)
			return fmt.Errorf("%w: nothing to undo", session.ErrInvalidTransition)
		}
		return nil
	})
}

// Reset discards all progress and starts the same problem again
func (m *SessionManager) Reset(ctx context.Context, id string) (*View, error) {
	return m.apply(ctx, id, func(l *live) error {
		l.ctrl.Reset()
		return l.ctrl.Start(l.cfg)
	})
}

// Clear blanks every editable cell and keeps the current step
func (m *SessionManager) Clear(ctx context.Context, id string) (*View, error) {
	return m.apply(ctx, id, func(l *live) error {
		return l.ctrl.ClearUserInputs()
	})
}

// apply runs op under the session lock and persists the outcome
func (m *SessionManager) apply(ctx context.Context, id string, op func(l *live) error) (*View, error) {
	l := m.lookup(id)
	if l == nil {
		var err error
		if l, err = m.load(ctx, id); err != nil {
			return nil, err
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.record.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: %s", ErrSessionClosed, l.record.Status)
	}
	if err := op(l); err != nil {
		return nil, err
	}

	state := l.ctrl.State()
	now := m.now()
	l.record.StepIndex = state.StepIndex
	l.record.StepCount = state.StepCount()
	l.record.Mistakes = state.Mistakes
	l.record.LastActiveAt = now
	if state.Status == session.StatusFinished {
		l.record.Status = models.SessionFinished
		l.record.FinishedAt = &now
	}

	if err := m.repo.UpdateSession(ctx, l.record); err != nil {
		slog.Error("failed to update session in database", "error", err, "id", id)
	}
	m.saveState(ctx, id, state)

	if l.record.Status.IsTerminal() {
		m.forget(id)
		metrics.SessionClosed(l.record.Status)
		slog.Info("session finished", "id", id, "mistakes", l.record.Mistakes)
	}

	return &View{Session: copyRecord(l.record), State: state}, nil
}

// recordAttempt emits one attempt event for a definite validation outcome
func (m *SessionManager) recordAttempt(ctx context.Context, record *models.Session, step models.Step, result models.ValidationResult) {
	event := models.AttemptEvent{
		ID:         uuid.New().String(),
		SessionID:  record.ID,
		EngineID:   record.EngineID,
		StepID:     step.ID,
		StepKind:   step.Kind,
		Correct:    result.Correct,
		ErrorType:  result.ErrorType,
		Severity:   models.SeverityNone,
		OccurredAt: m.now(),
	}
	if hint := result.PrimaryHint(); hint != nil {
		event.Severity = hint.Severity
		event.SkillTag = hint.SkillTag
		event.Highlight = hint.Highlight
	}

	if err := m.events.Record(ctx, event); err != nil {
		slog.Warn("failed to record attempt", "error", err, "session", record.ID)
	}
}

// Delete abandons a session and drops its cached state
func (m *SessionManager) Delete(ctx context.Context, id string) error {
	record, err := m.repo.GetSession(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}
	if record == nil {
		return ErrSessionNotFound
	}

	m.forget(id)
	if err := m.cache.Delete(ctx, id); err != nil {
		slog.Warn("failed to drop cached state", "error", err, "id", id)
	}
	// Postgres cascades attempt rows; in-memory sinks need telling.
	if f, ok := m.events.(interface{ Forget(sessionID string) }); ok {
		f.Forget(id)
	}
	if err := m.repo.DeleteSession(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	if !record.Status.IsTerminal() {
		metrics.SessionClosed(models.SessionAbandoned)
	}
	slog.Info("session deleted", "id", id)
	return nil
}

// List returns stored session records
func (m *SessionManager) List(ctx context.Context, filters models.ListFilters) ([]*models.Session, error) {
	return m.repo.ListSessions(ctx, filters)
}

// Attempts returns the recorded attempt events of a session
func (m *SessionManager) Attempts(ctx context.Context, id string, limit int) ([]models.AttemptEvent, error) {
	record, err := m.repo.GetSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if record == nil {
		return nil, ErrSessionNotFound
	}
	return m.events.ListBySession(ctx, id, limit)
}

// ExpireIdle marks every session without activity for longer than the
// idle timeout as expired and returns how many were closed.
func (m *SessionManager) ExpireIdle(ctx context.Context) (int, error) {
	if m.idle <= 0 {
		return 0, nil
	}

	idle, err := m.repo.GetIdleSessions(ctx, m.now().Add(-m.idle))
	if err != nil {
		return 0, fmt.Errorf("failed to get idle sessions: %w", err)
	}

	expired := 0
	for _, record := range idle {
		if !m.expire(ctx, record) {
			continue
		}
		m.forget(record.ID)
		if err := m.cache.Delete(ctx, record.ID); err != nil {
			slog.Warn("failed to drop cached state", "error", err, "id", record.ID)
		}
		metrics.SessionClosed(models.SessionExpired)
		expired++

		slog.Info("session expired",
			"id", record.ID,
			"engine", record.EngineID,
			"last_active_at", record.LastActiveAt,
		)
	}
	return expired, nil
}

// expire marks one idle session as expired. A live session is closed under
// its own lock so a call already waiting on it sees the terminal status.
func (m *SessionManager) expire(ctx context.Context, record *models.Session) bool {
	l := m.lookup(record.ID)
	if l == nil {
		record.Status = models.SessionExpired
		if err := m.repo.UpdateSession(ctx, record); err != nil {
			slog.Error("failed to expire session", "error", err, "id", record.ID)
			return false
		}
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	// Activity may have happened since the query ran.
	if l.record.Status.IsTerminal() || !l.record.IsIdle(m.idle, m.now()) {
		return false
	}

	previous := l.record.Status
	l.record.Status = models.SessionExpired
	if err := m.repo.UpdateSession(ctx, l.record); err != nil {
		l.record.Status = previous
		slog.Error("failed to expire session", "error", err, "id", record.ID)
		return false
	}
	return true
}

func (m *SessionManager) lookup(id string) *live {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id]
}

func (m *SessionManager) forget(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// load rebuilds a live session from its record, restoring the cached
// controller state when there is one and regenerating otherwise.
func (m *SessionManager) load(ctx context.Context, id string) (*live, error) {
	record, err := m.repo.GetSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if record == nil {
		return nil, ErrSessionNotFound
	}
	if record.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: %s", ErrSessionClosed, record.Status)
	}

	eng, cfg, err := m.engines.Build(record.EngineID, record.Params)
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild session %s: %w", id, err)
	}
	ctrl := session.New(eng)

	state, err := m.cache.Load(ctx, id)
	switch {
	case err == nil:
		ctrl.Restore(state)
	default:
		if !errors.Is(err, services.ErrCacheMiss) {
			slog.Warn("failed to load cached state", "error", err, "id", id)
		}
		if err := ctrl.Start(cfg); err != nil {
			return nil, fmt.Errorf("failed to rebuild session %s: %w", id, err)
		}
		slog.Info("session regenerated without cached state", "id", id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another request may have loaded it meanwhile.
	if existing, ok := m.sessions[id]; ok {
		return existing, nil
	}
	l := &live{ctrl: ctrl, cfg: cfg, record: record}
	m.sessions[id] = l
	return l, nil
}

func (m *SessionManager) saveState(ctx context.Context, id string, state session.State) {
	if err := m.cache.Save(ctx, id, state); err != nil {
		slog.Warn("failed to cache session state", "error", err, "id", id)
	}
}

func copyRecord(s *models.Session) *models.Session {
	c := *s
	if s.FinishedAt != nil {
		t := *s.FinishedAt
		c.FinishedAt = &t
	}
	return &c
}
