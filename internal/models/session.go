package models

import (
	"time"
)

// SessionStatus is the lifecycle of a stored practice session
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"    // Student is working on the problem
	SessionFinished  SessionStatus = "finished"  // Every step solved
	SessionExpired   SessionStatus = "expired"   // Idle timeout elapsed
	SessionAbandoned SessionStatus = "abandoned" // Deleted before finishing
)

// IsTerminal returns true if the session can no longer accept input
func (s SessionStatus) IsTerminal() bool {
	return s == SessionFinished || s == SessionExpired || s == SessionAbandoned
}

// Session is the persisted record of one practice session.
// The live grid is owned by the session controller; this record only tracks progress.
type Session struct {
	ID           string            `json:"id"`
	EngineID     string            `json:"engine_id"`
	PresetID     string            `json:"preset_id,omitempty"`
	Params       map[string]any    `json:"params,omitempty"`
	Status       SessionStatus     `json:"status"`
	StepIndex    int               `json:"step_index"`
	StepCount    int               `json:"step_count"`
	Mistakes     int               `json:"mistakes"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	CreatedBy    string            `json:"created_by,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	LastActiveAt time.Time         `json:"last_active_at"`
	FinishedAt   *time.Time        `json:"finished_at,omitempty"`
}

// IsIdle reports whether the session saw no activity for longer than timeout
func (s *Session) IsIdle(timeout time.Duration, now time.Time) bool {
	if timeout <= 0 || s.Status.IsTerminal() {
		return false
	}
	return now.Sub(s.LastActiveAt) > timeout
}

// ListFilters defines filters for listing sessions
type ListFilters struct {
	EngineID string
	Status   SessionStatus
	Limit    int
	Offset   int
}

// CreateSessionRequest starts a session either from a catalog preset or
// from an engine id with explicit parameters.
type CreateSessionRequest struct {
	EngineID string            `json:"engine_id" validate:"required_without=PresetID"`
	PresetID string            `json:"preset_id" validate:"required_without=EngineID"`
	Params   map[string]any    `json:"params,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// InputRequest writes one value into one cell
type InputRequest struct {
	CellID string `json:"cell_id" validate:"required"`
	Value  string `json:"value" validate:"max=8"`
}

// AttemptEvent is emitted for every validated keystroke so an external
// skill model can consume it.
type AttemptEvent struct {
	ID         string     `json:"id"`
	SessionID  string     `json:"session_id"`
	EngineID   string     `json:"engine_id"`
	StepID     string     `json:"step_id"`
	StepKind   StepKind   `json:"step_kind"`
	Correct    bool       `json:"correct"`
	ErrorType  ErrorType  `json:"error_type"`
	Severity   Severity   `json:"severity"`
	SkillTag   string     `json:"skill_tag,omitempty"`
	Highlight  []Position `json:"highlight,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}
