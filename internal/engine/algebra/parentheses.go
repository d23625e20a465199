package algebra

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/Duly330AI/Matheheftt-sub000/internal/engine"
	"github.com/Duly330AI/Matheheftt-sub000/internal/models"
)

// ParenthesesConfig is a plain arithmetic expression and the value it must
// reach once one pair of parentheses is inserted.
type ParenthesesConfig struct {
	Expression string `json:"expression" validate:"required,max=40"`
	Target     int64  `json:"target"`
}

func (c *ParenthesesConfig) Validate() error {
	return engine.ValidateStruct(c)
}

// chain splits the expression into numbers and the operators between them
func (c *ParenthesesConfig) chain() ([]string, []string, error) {
	var numbers, ops []string
	expectNumber := true
	for _, r := range strings.ReplaceAll(c.Expression, " ", "") {
		switch {
		case unicode.IsDigit(r) && expectNumber:
			numbers = append(numbers, string(r))
			expectNumber = false
		case unicode.IsDigit(r):
			numbers[len(numbers)-1] += string(r)
		case strings.ContainsRune("+-*/", r) && !expectNumber:
			ops = append(ops, string(r))
			expectNumber = true
		default:
			return nil, nil, fmt.Errorf("%w: unexpected %q in %q", engine.ErrInvalidConfig, r, c.Expression)
		}
	}
	if expectNumber || len(numbers) < 3 {
		return nil, nil, fmt.Errorf("%w: %q needs at least three numbers", engine.ErrInvalidConfig, c.Expression)
	}
	return numbers, ops, nil
}

// ParenthesesInsertionEngine shows an expression with an empty slot before
// and after every number; the student types "(" and ")" into slots so that
// the expression reaches the target.
//
//	_2_+_3_*_4_=20
type ParenthesesInsertionEngine struct{}

func NewParenthesesInsertionEngine() *ParenthesesInsertionEngine {
	return &ParenthesesInsertionEngine{}
}

var opGlyphs = map[string]string{"+": "+", "-": "-", "*": "·", "/": ":"}

func render(numbers, ops []string, openAt, closeAt int) string {
	var b strings.Builder
	for i, n := range numbers {
		if i == openAt {
			b.WriteString("(")
		}
		b.WriteString(n)
		if i == closeAt {
			b.WriteString(")")
		}
		if i < len(ops) {
			b.WriteString(ops[i])
		}
	}
	return b.String()
}

func (e *ParenthesesInsertionEngine) Generate(cfg engine.Config) (*models.StepResult, error) {
	c, err := engine.ConfigAs[*ParenthesesConfig](cfg)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	numbers, ops, err := c.chain()
	if err != nil {
		return nil, err
	}

	if v, err := Evaluate(render(numbers, ops, -1, -1)); err == nil && equalsInt(v, c.Target) {
		return nil, fmt.Errorf("%w: %s already equals %d", engine.ErrInvalidConfig, c.Expression, c.Target)
	}
	openAt, closeAt := -1, -1
search:
	for i := 0; i < len(numbers)-1; i++ {
		for j := i + 1; j < len(numbers); j++ {
			if i == 0 && j == len(numbers)-1 {
				continue
			}
			if v, err := Evaluate(render(numbers, ops, i, j)); err == nil && equalsInt(v, c.Target) {
				openAt, closeAt = i, j
				break search
			}
		}
	}
	if openAt < 0 {
		return nil, fmt.Errorf("%w: no parentheses make %s equal %d", engine.ErrInvalidConfig, c.Expression, c.Target)
	}

	b := engine.NewGridBuilder(1, 0)
	col := 0
	var slots, opCells []models.Position
	var expected []string
	slot := func(value string) {
		p := models.Pos(0, col)
		b.Target(p, value, models.RoleHelper)
		slots = append(slots, p)
		expected = append(expected, value)
		col++
	}
	for i, n := range numbers {
		slot(pick(i == openAt, "("))
		col = b.Text(0, col, n, models.RoleDigit)
		slot(pick(i == closeAt, ")"))
		if i < len(ops) {
			opCells = append(opCells, models.Pos(0, col))
			b.Given(models.Pos(0, col), opGlyphs[ops[i]], models.RoleOperator)
			col++
		}
	}
	b.Given(models.Pos(0, col), "=", models.RoleOperator)
	b.Text(0, col+1, strconv.FormatInt(c.Target, 10), models.RoleDigit)

	steps := engine.NewStepList("par")
	steps.Add(models.StepInsertParentheses, slots, expected, "parentheses.insert", opCells)

	grid := b.Build()
	return &models.StepResult{
		Type:  models.ProblemParentheses,
		Steps: steps.Steps(),
		Grid:  grid,
		Meta:  grid.Meta(0, 0),
		Difficulty: map[string]any{
			"expression": render(numbers, ops, -1, -1),
			"solution":   render(numbers, ops, openAt, closeAt),
			"target":     c.Target,
			"numbers":    len(numbers),
		},
	}, nil
}

func (e *ParenthesesInsertionEngine) Validate(state engine.StepState) models.ValidationResult {
	const skill = "parentheses"
	step := state.Step
	row := 0
	if len(step.Targets) > 0 {
		row = step.Targets[0].Row
	}

	slots := make(map[int]bool, len(step.Targets))
	parens := 0
	for _, p := range step.Targets {
		slots[p.Col] = true
		v := engine.NormalizeInput(state.Grid.Value(p))
		switch {
		case v == "":
		case strings.Trim(v, "()") == "":
			parens += len(v)
		case strings.ContainsAny(v, "+-*/·×:÷"):
			return failure(models.ErrorOperatorModification, models.SeverityProcedural, []models.Position{p}, skill)
		case strings.IndexFunc(v, unicode.IsDigit) >= 0:
			return failure(models.ErrorOperatorReorder, models.SeverityProcedural, []models.Position{p}, skill)
		default:
			return failure(models.ErrorInvalidStructure, models.SeverityProcedural, []models.Position{p}, skill)
		}
	}
	if parens == 0 {
		_, missing := engine.CheckTargets(step, state.Grid)
		return models.PendingResult(missing)
	}

	// rebuild the expression left of "=" from givens and slot entries
	var student, plain strings.Builder
	for col := 0; col < state.Grid.Cols(); col++ {
		cell, _ := state.Grid.At(models.Pos(row, col))
		if !cell.Editable && cell.Value == "=" {
			break
		}
		v := engine.NormalizeInput(cell.Value)
		student.WriteString(v)
		if !slots[col] {
			plain.WriteString(v)
		}
	}

	depth := 0
	for _, r := range student.String() {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		}
		if depth < 0 {
			return failure(models.ErrorInvalidStructure, models.SeverityProcedural, step.Targets, skill)
		}
	}
	if depth > 0 {
		return models.PendingResult(nil)
	}

	value, err := Evaluate(student.String())
	if err != nil {
		return failure(models.ErrorInvalidStructure, models.SeverityProcedural, step.Targets, skill)
	}
	if equalsInt(value, targetOf(state.Result)) {
		return models.CorrectResult()
	}

	var res models.ValidationResult
	plainValue, _ := Evaluate(plain.String())
	switch {
	case onlyTrivialGroups(student.String()):
		res = failure(models.ErrorMissingParentheses, models.SeverityProcedural, step.Dependencies, skill)
	case plainValue != nil && value.Cmp(plainValue) == 0:
		res = failure(models.ErrorRedundantParentheses, models.SeverityMinor, step.Dependencies, skill)
	default:
		res = failure(models.ErrorOrderOfOperations, models.SeverityConceptual, step.Dependencies, skill)
	}
	res.Mismatches, _ = engine.CheckTargets(step, state.Grid)
	return res
}

func pick(ok bool, v string) string {
	if ok {
		return v
	}
	return ""
}

// targetOf reads the target back from the metadata, which may have passed
// through JSON and lost its integer type.
func targetOf(res *models.StepResult) int64 {
	if res == nil {
		return 0
	}
	switch v := res.Difficulty["target"].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

// onlyTrivialGroups reports whether every parenthesized group holds a
// single number, so no operation is actually grouped.
func onlyTrivialGroups(expr string) bool {
	var stack []int
	for i, r := range expr {
		switch r {
		case '(':
			stack = append(stack, i)
		case ')':
			if len(stack) == 0 {
				return false
			}
			start := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if strings.ContainsAny(expr[start+1:i], "+-*/·×:÷") {
				return false
			}
		}
	}
	return true
}
