package models

// StepKind is the kind of work a step asks for
type StepKind string

const (
	StepAddColumn         StepKind = "add_column"
	StepCarry             StepKind = "carry"
	StepBorrow            StepKind = "borrow"
	StepSubtractColumn    StepKind = "subtract_column"
	StepMultiplyDigit     StepKind = "multiply_digit"
	StepMultiplyZero      StepKind = "multiply_zero"
	StepDivideEstimate    StepKind = "divide_estimate"
	StepDivideMultiply    StepKind = "divide_multiply"
	StepDivideSubtract    StepKind = "divide_subtract"
	StepDivideBringDown   StepKind = "divide_bring_down"
	StepDivideRemainder   StepKind = "divide_remainder"
	StepAlgebraExpand     StepKind = "algebra_expand"
	StepAlgebraSimplify   StepKind = "algebra_simplify"
	StepInsertParentheses StepKind = "insert_parentheses"
)

// ProblemType tags the engine family that produced a result
type ProblemType string

const (
	ProblemAddition       ProblemType = "addition"
	ProblemSubtraction    ProblemType = "subtraction"
	ProblemMultiplication ProblemType = "multiplication"
	ProblemDivision       ProblemType = "division"
	ProblemAlgebraExpand  ProblemType = "algebra_expand"
	ProblemSimplifyTerms  ProblemType = "simplify_terms"
	ProblemParentheses    ProblemType = "insert_parentheses"
)

// Step is one atomic unit of required student work.
// Targets and ExpectedValues are parallel slices.
type Step struct {
	ID             string     `json:"id"`
	Kind           StepKind   `json:"kind"`
	Targets        []Position `json:"target_cells"`
	ExpectedValues []string   `json:"expected_values"`
	ExplanationKey string     `json:"explanation_key"`
	NextFocus      *Position  `json:"next_focus,omitempty"`
	Dependencies   []Position `json:"dependencies,omitempty"`
}

// StepResult is the output of generating a problem
type StepResult struct {
	Type       ProblemType    `json:"type"`
	Steps      []Step         `json:"steps"`
	Grid       Grid           `json:"grid"`
	Meta       GridMeta       `json:"meta"`
	Difficulty map[string]any `json:"difficulty,omitempty"`
}

// DifficultyString reads a string entry from the difficulty metadata
func (r *StepResult) DifficultyString(key string) string {
	if r == nil || r.Difficulty == nil {
		return ""
	}
	s, _ := r.Difficulty[key].(string)
	return s
}
