package models

// ErrorType is the closed taxonomy of student mistakes
type ErrorType string

const (
	ErrorNone ErrorType = "NONE"

	// Arithmetic
	ErrorCarry       ErrorType = "CARRY_ERROR"
	ErrorBorrow      ErrorType = "BORROW_ERROR"
	ErrorCalculation ErrorType = "CALCULATION_ERROR"
	ErrorEstimation  ErrorType = "ESTIMATION_ERROR"
	ErrorBringDown   ErrorType = "FORGOT_BRING_DOWN"
	ErrorRemainder   ErrorType = "REMAINDER_ERROR"
	ErrorPlaceValue  ErrorType = "PLACE_VALUE_ERROR"

	// Algebra
	ErrorSignMisapplication    ErrorType = "SIGN_MISAPPLICATION"
	ErrorVariableMismatch      ErrorType = "VARIABLE_MISMATCH"
	ErrorLikeTermNotCombined   ErrorType = "LIKE_TERM_NOT_COMBINED"
	ErrorConstantNotCombined   ErrorType = "CONSTANT_NOT_COMBINED"
	ErrorPartialSimplification ErrorType = "PARTIAL_SIMPLIFICATION"
	ErrorOrderOfOperations     ErrorType = "ORDER_OF_OPERATIONS_ERROR"
	ErrorMissingParentheses    ErrorType = "MISSING_PARENTHESES"
	ErrorRedundantParentheses  ErrorType = "REDUNDANT_PARENTHESES"
	ErrorInvalidStructure      ErrorType = "INVALID_STRUCTURE"
	ErrorOperatorModification  ErrorType = "OPERATOR_MODIFICATION_ERROR"
	ErrorOperatorReorder       ErrorType = "OPERATOR_REORDER_ERROR"
	ErrorIncomplete            ErrorType = "INCOMPLETE"
	ErrorConceptual            ErrorType = "CONCEPTUAL"
)

// Severity ranks how fundamental a mistake is
type Severity string

const (
	SeverityNone       Severity = "none"
	SeverityMinor      Severity = "minor"
	SeverityProcedural Severity = "procedural"
	SeverityConceptual Severity = "conceptual"
)

// Hint explains a mistake and points at the cells that matter
type Hint struct {
	MessageKey string     `json:"message_key"`
	Highlight  []Position `json:"highlight,omitempty"`
	Severity   Severity   `json:"severity"`
	SkillTag   string     `json:"skill_tag,omitempty"`
}

// Mismatch records one target cell whose value differs from the expected one
type Mismatch struct {
	Position Position `json:"position"`
	Expected string   `json:"expected"`
	Actual   string   `json:"actual"`
}

// ValidationResult is the outcome of checking one step against student input.
// Pending marks partial input that is neither right nor wrong yet.
type ValidationResult struct {
	Correct    bool       `json:"correct"`
	Pending    bool       `json:"pending,omitempty"`
	ErrorType  ErrorType  `json:"error_type"`
	Mismatches []Mismatch `json:"mismatches,omitempty"`
	Hints      []Hint     `json:"hints,omitempty"`
}

// CorrectResult builds a successful result
func CorrectResult() ValidationResult {
	return ValidationResult{Correct: true, ErrorType: ErrorNone}
}

// PendingResult builds a result for incomplete input
func PendingResult(mismatches []Mismatch) ValidationResult {
	return ValidationResult{Pending: true, ErrorType: ErrorNone, Mismatches: mismatches}
}

// PrimaryHint returns the first hint, or nil
func (v ValidationResult) PrimaryHint() *Hint {
	if len(v.Hints) == 0 {
		return nil
	}
	return &v.Hints[0]
}

// IsError reports whether the result is a definite mistake
func (v ValidationResult) IsError() bool {
	return !v.Correct && !v.Pending
}
