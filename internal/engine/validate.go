package engine

import (
	"strings"

	"github.com/Duly330AI/Matheheftt-sub000/internal/models"
)

// Classifier names the error of a step whose filled targets are wrong
type Classifier func(step models.Step, grid models.Grid, mismatches []models.Mismatch) (models.ErrorType, models.Hint)

// CheckTargets compares the step's targets against the student grid. It
// returns the wrong filled targets and the targets still empty.
func CheckTargets(step models.Step, grid models.Grid) (wrong, missing []models.Mismatch) {
	for i, p := range step.Targets {
		expected := ""
		if i < len(step.ExpectedValues) {
			expected = step.ExpectedValues[i]
		}
		actual := NormalizeInput(grid.Value(p))
		switch {
		case actual == expected:
		case actual == "":
			missing = append(missing, models.Mismatch{Position: p, Expected: expected})
		default:
			wrong = append(wrong, models.Mismatch{Position: p, Expected: expected, Actual: actual})
		}
	}
	return wrong, missing
}

// ValidateCells is the cell-by-cell check shared by the column methods.
// Any wrong filled target is an error; otherwise empty targets keep the
// step pending.
func ValidateCells(state StepState, classify Classifier) models.ValidationResult {
	wrong, missing := CheckTargets(state.Step, state.Grid)
	if len(wrong) > 0 {
		errType, hint := classify(state.Step, state.Grid, wrong)
		return models.ValidationResult{
			ErrorType:  errType,
			Mismatches: wrong,
			Hints:      []models.Hint{hint},
		}
	}
	if len(missing) > 0 {
		return models.PendingResult(missing)
	}
	return models.CorrectResult()
}

// NormalizeInput trims whitespace a student may type around a value
func NormalizeInput(v string) string {
	return strings.TrimSpace(v)
}
