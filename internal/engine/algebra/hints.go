package algebra

import (
	"strings"

	"github.com/Duly330AI/Matheheftt-sub000/internal/models"
)

// MessageKey is the hint text key for an algebra error
func MessageKey(t models.ErrorType) string {
	return "hint.algebra." + strings.ToLower(string(t))
}

var skillTags = map[models.ErrorType]string{
	models.ErrorSignMisapplication:    "sign_rules",
	models.ErrorVariableMismatch:      "variables",
	models.ErrorLikeTermNotCombined:   "combine_like_terms",
	models.ErrorConstantNotCombined:   "combine_like_terms",
	models.ErrorPartialSimplification: "combine_like_terms",
	models.ErrorOrderOfOperations:     "order_of_operations",
	models.ErrorMissingParentheses:    "parentheses",
	models.ErrorRedundantParentheses:  "parentheses",
	models.ErrorOperatorModification:  "parentheses",
	models.ErrorOperatorReorder:       "parentheses",
}

// hintFor builds the primary hint; fallback is the engine's own skill
func hintFor(t models.ErrorType, severity models.Severity, highlight []models.Position, fallback string) models.Hint {
	skill, ok := skillTags[t]
	if !ok {
		skill = fallback
	}
	return models.Hint{
		MessageKey: MessageKey(t),
		Highlight:  highlight,
		Severity:   severity,
		SkillTag:   skill,
	}
}

func failure(t models.ErrorType, severity models.Severity, highlight []models.Position, fallback string) models.ValidationResult {
	return models.ValidationResult{
		ErrorType: t,
		Hints:     []models.Hint{hintFor(t, severity, highlight, fallback)},
	}
}
