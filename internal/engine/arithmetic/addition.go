package arithmetic

import (
	"fmt"
	"strconv"

	"github.com/Duly330AI/Matheheftt-sub000/internal/engine"
	"github.com/Duly330AI/Matheheftt-sub000/internal/models"
)

const (
	MinOperands = 2
	MaxOperands = 6
)

// AdditionConfig lists the numbers to add, top to bottom
type AdditionConfig struct {
	Operands []int64 `json:"operands" validate:"dive,min=0,max=999999999"`
}

func (c *AdditionConfig) Validate() error {
	if n := len(c.Operands); n < MinOperands || n > MaxOperands {
		return fmt.Errorf("%w: got %d, want %d..%d", engine.ErrOperandCount, n, MinOperands, MaxOperands)
	}
	return engine.ValidateStruct(c)
}

// Addition is written column addition
type Addition struct{}

func NewAddition() *Addition {
	return &Addition{}
}

// Generate lays out the operands right-aligned with the operator in column 0:
//
//	row 0..n-1  operands ("+" before the last one)
//	row n       carries
//	row n+1     separator
//	row n+2     result
func (a *Addition) Generate(cfg engine.Config) (*models.StepResult, error) {
	c, err := engine.ConfigAs[*AdditionConfig](cfg)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var sum int64
	width := 0
	for _, op := range c.Operands {
		sum += op
		width = max(width, len(strconv.FormatInt(op, 10)))
	}
	result := strconv.FormatInt(sum, 10)
	width = max(width, len(result))

	n := len(c.Operands)
	cols := width + 1
	carryRow, sepRow, resultRow := n, n+1, n+2
	rightCol := cols - 1

	b := engine.NewGridBuilder(n+3, cols)
	operands := make([]digitRow, n)
	for i, op := range c.Operands {
		operands[i] = placeDigits(b, i, rightCol, strconv.FormatInt(op, 10), models.RoleDigit, false)
	}
	b.Given(models.Pos(n-1, 0), "+", models.RoleOperator)
	separatorRow(b, sepRow, 0, rightCol)

	steps := engine.NewStepList("add")
	carries := columnWalk{
		b:         b,
		steps:     steps,
		operands:  operands,
		carryRow:  carryRow,
		resultRow: resultRow,
		rightCol:  rightCol,
		result:    result,
		column:    models.StepAddColumn,
		keyPrefix: "addition",
	}.add()

	return finish(models.ProblemAddition, b, steps, resultRow, map[string]any{
		"operands": n,
		"digits":   width,
		"carries":  carries,
	}), nil
}

func (a *Addition) Validate(state engine.StepState) models.ValidationResult {
	return validateColumns(state)
}
