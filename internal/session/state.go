package session

import (
	"github.com/Duly330AI/Matheheftt-sub000/internal/models"
)

// Status is the controller's position in the solving lifecycle
type Status string

const (
	StatusIdle      Status = "idle"
	StatusGenerated Status = "generated"
	StatusSolving   Status = "solving"
	StatusError     Status = "error"
	StatusCorrect   Status = "correct"
	StatusFinished  Status = "finished"
)

// AcceptsInput reports whether cells may be edited in this status
func (s Status) AcceptsInput() bool {
	return s == StatusSolving || s == StatusError
}

// State is everything the controller knows about one session. Result is
// produced once by the engine and never modified, so copies share it.
type State struct {
	Status     Status                   `json:"status"`
	Result     *models.StepResult       `json:"result,omitempty"`
	Grid       models.Grid              `json:"grid,omitempty"`
	StepIndex  int                      `json:"step_index"`
	Highlight  []models.Position        `json:"highlight,omitempty"`
	Hint       *models.Hint             `json:"hint,omitempty"`
	Validation *models.ValidationResult `json:"validation,omitempty"`
	Mistakes   int                      `json:"mistakes"`
}

// Clone returns a deep copy of the mutable parts of the state
func (s State) Clone() State {
	out := s
	out.Grid = s.Grid.Clone()
	out.Highlight = clonePositions(s.Highlight)
	if s.Hint != nil {
		h := *s.Hint
		h.Highlight = clonePositions(s.Hint.Highlight)
		out.Hint = &h
	}
	if s.Validation != nil {
		v := *s.Validation
		v.Mismatches = append([]models.Mismatch(nil), s.Validation.Mismatches...)
		v.Hints = make([]models.Hint, len(s.Validation.Hints))
		for i, h := range s.Validation.Hints {
			h.Highlight = clonePositions(h.Highlight)
			v.Hints[i] = h
		}
		out.Validation = &v
	}
	return out
}

// Step returns the step being worked on, if any
func (s State) Step() (models.Step, bool) {
	if s.Result == nil || s.StepIndex < 0 || s.StepIndex >= len(s.Result.Steps) {
		return models.Step{}, false
	}
	return s.Result.Steps[s.StepIndex], true
}

// StepCount is the number of steps in the current problem
func (s State) StepCount() int {
	if s.Result == nil {
		return 0
	}
	return len(s.Result.Steps)
}

func clonePositions(p []models.Position) []models.Position {
	if p == nil {
		return nil
	}
	return append([]models.Position(nil), p...)
}
