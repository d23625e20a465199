package arithmetic

import (
	"strconv"

	"github.com/Duly330AI/Matheheftt-sub000/internal/engine"
	"github.com/Duly330AI/Matheheftt-sub000/internal/models"
)

type kindInfo struct {
	errType  models.ErrorType
	severity models.Severity
	skill    string
}

var stepKinds = map[models.StepKind]kindInfo{
	models.StepAddColumn:       {models.ErrorCalculation, models.SeverityMinor, "column_addition"},
	models.StepSubtractColumn:  {models.ErrorCalculation, models.SeverityMinor, "column_subtraction"},
	models.StepMultiplyDigit:   {models.ErrorCalculation, models.SeverityMinor, "multiplication_table"},
	models.StepDivideMultiply:  {models.ErrorCalculation, models.SeverityMinor, "multiplication_table"},
	models.StepDivideSubtract:  {models.ErrorCalculation, models.SeverityMinor, "column_subtraction"},
	models.StepCarry:           {models.ErrorCarry, models.SeverityProcedural, "carrying"},
	models.StepBorrow:          {models.ErrorBorrow, models.SeverityProcedural, "borrowing"},
	models.StepMultiplyZero:    {models.ErrorPlaceValue, models.SeverityConceptual, "place_value"},
	models.StepDivideEstimate:  {models.ErrorEstimation, models.SeverityProcedural, "quotient_estimation"},
	models.StepDivideBringDown: {models.ErrorBringDown, models.SeverityProcedural, "long_division"},
	models.StepDivideRemainder: {models.ErrorRemainder, models.SeverityProcedural, "long_division"},
}

// validateColumns is the Validate shared by all column methods
func validateColumns(state engine.StepState) models.ValidationResult {
	return engine.ValidateCells(state, classify)
}

func classify(step models.Step, _ models.Grid, wrong []models.Mismatch) (models.ErrorType, models.Hint) {
	info, ok := stepKinds[step.Kind]
	if !ok {
		info = kindInfo{models.ErrorCalculation, models.SeverityMinor, "arithmetic"}
	}

	key := "hint." + string(step.Kind)
	if step.Kind == models.StepDivideEstimate {
		key += estimateDirection(wrong[0])
	}

	highlight := step.Dependencies
	if len(highlight) == 0 {
		highlight = step.Targets
	}
	return info.errType, models.Hint{
		MessageKey: key,
		Highlight:  append([]models.Position(nil), highlight...),
		Severity:   info.severity,
		SkillTag:   info.skill,
	}
}

// estimateDirection compares magnitudes, not strings
func estimateDirection(m models.Mismatch) string {
	actual, errA := strconv.Atoi(m.Actual)
	expected, errE := strconv.Atoi(m.Expected)
	switch {
	case errA != nil || errE != nil:
		return ""
	case actual > expected:
		return ".too_large"
	default:
		return ".too_small"
	}
}
