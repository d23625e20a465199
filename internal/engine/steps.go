package engine

import (
	"fmt"

	"github.com/Duly330AI/Matheheftt-sub000/internal/models"
)

// StepList accumulates steps in execution order and numbers them
type StepList struct {
	prefix string
	steps  []models.Step
}

// NewStepList creates a list whose step ids start with prefix
func NewStepList(prefix string) *StepList {
	return &StepList{prefix: prefix}
}

// Add appends a step. targets and expected must have the same length.
func (l *StepList) Add(kind models.StepKind, targets []models.Position, expected []string, key string, deps []models.Position) *models.Step {
	if len(targets) != len(expected) {
		panic(fmt.Sprintf("step %s: %d targets but %d expected values", kind, len(targets), len(expected)))
	}
	l.steps = append(l.steps, models.Step{
		ID:             fmt.Sprintf("%s-%d", l.prefix, len(l.steps)+1),
		Kind:           kind,
		Targets:        targets,
		ExpectedValues: expected,
		ExplanationKey: key,
		Dependencies:   deps,
	})
	return &l.steps[len(l.steps)-1]
}

// Len returns the number of steps added so far
func (l *StepList) Len() int {
	return len(l.steps)
}

// Steps returns the steps with NextFocus pointing at the first target of the
// following step. The last step has no focus hint.
func (l *StepList) Steps() []models.Step {
	out := make([]models.Step, len(l.steps))
	copy(out, l.steps)
	for i := 0; i < len(out)-1; i++ {
		if len(out[i+1].Targets) > 0 {
			focus := out[i+1].Targets[0]
			out[i].NextFocus = &focus
		}
	}
	return out
}
