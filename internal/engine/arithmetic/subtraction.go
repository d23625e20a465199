package arithmetic

import (
	"strconv"

	"github.com/Duly330AI/Matheheftt-sub000/internal/engine"
	"github.com/Duly330AI/Matheheftt-sub000/internal/models"
)

// Subtraction methods
const (
	MethodBorrow     = "borrow"
	MethodComplement = "complement"
)

type SubtractionConfig struct {
	Minuend       int64  `json:"minuend" validate:"min=0,max=999999999"`
	Subtrahend    int64  `json:"subtrahend" validate:"min=0,max=999999999"`
	Method        string `json:"method" validate:"omitempty,oneof=borrow complement"`
	AllowNegative bool   `json:"allow_negative"`
}

func (c *SubtractionConfig) Validate() error {
	return engine.ValidateStruct(c)
}

func (c *SubtractionConfig) method() string {
	if c.Method == "" {
		return MethodBorrow
	}
	return c.Method
}

// Subtraction is written column subtraction with either the borrow
// (Entbündeln) or the complement (Ergänzen) method.
type Subtraction struct{}

func NewSubtraction() *Subtraction {
	return &Subtraction{}
}

func (s *Subtraction) Generate(cfg engine.Config) (*models.StepResult, error) {
	c, err := engine.ConfigAs[*SubtractionConfig](cfg)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	top, bottom := c.Minuend, c.Subtrahend
	negative := false
	if top < bottom {
		if !c.AllowNegative {
			return nil, engine.ErrNegativeResult
		}
		top, bottom = bottom, top
		negative = true
	}

	var (
		result *models.StepResult
		count  int
	)
	if c.method() == MethodComplement {
		result, count = subtractComplement(top, bottom, negative)
	} else {
		result, count = subtractBorrow(top, bottom, negative)
	}
	result.Difficulty = map[string]any{
		"method":   c.method(),
		"negative": negative,
		"digits":   len(strconv.FormatInt(top, 10)),
		"carries":  count,
	}
	return result, nil
}

func (s *Subtraction) Validate(state engine.StepState) models.ValidationResult {
	return validateColumns(state)
}

// subtractBorrow lays out
//
//	row 0  borrow cells
//	row 1  minuend
//	row 2  subtrahend with "-"
//	row 3  separator
//	row 4  result
//
// A column whose top digit is too small borrows from the nearest nonzero
// digit to its left; the ten travels right one column per borrow step.
func subtractBorrow(top, bottom int64, negative bool) (*models.StepResult, int) {
	topStr := strconv.FormatInt(top, 10)
	result := strconv.FormatInt(top-bottom, 10)
	cols := len(topStr) + 1
	rightCol := cols - 1
	const borrowRow, minuendRow, subtrahendRow, sepRow, resultRow = 0, 1, 2, 3, 4

	b := engine.NewGridBuilder(5, cols)
	minuend := placeDigits(b, minuendRow, rightCol, topStr, models.RoleDigit, false)
	subtrahend := placeDigits(b, subtrahendRow, rightCol, strconv.FormatInt(bottom, 10), models.RoleDigit, false)
	b.Given(models.Pos(subtrahendRow, 0), "-", models.RoleOperator)
	separatorRow(b, sepRow, 0, rightCol)
	if negative {
		b.Given(models.Pos(resultRow, 0), "-", models.RoleOperator)
	}

	work := make(map[int]int, len(minuend.digits))
	for col, d := range minuend.digits {
		work[col] = d
	}
	borrowed := make(map[int]bool)

	steps := engine.NewStepList("sub")
	borrows := 0
	leftCol := rightCol - len(result) + 1
	for col := rightCol; col >= 1; col-- {
		sub, hasSub := subtrahend.at(col)
		if work[col] < sub {
			donor := col - 1
			for donor >= 1 && work[donor] == 0 {
				donor--
			}
			for j := donor; j < col; j++ {
				work[j]--
				work[j+1] += 10
				borrowed[j], borrowed[j+1] = true, true

				from, to := models.Pos(borrowRow, j), models.Pos(borrowRow, j+1)
				fromVal, toVal := strconv.Itoa(work[j]), strconv.Itoa(work[j+1])
				b.Target(from, fromVal, models.RoleBorrow)
				b.Target(to, toVal, models.RoleBorrow)
				steps.Add(models.StepBorrow,
					[]models.Position{from, to},
					[]string{fromVal, toVal},
					"subtraction.borrow",
					[]models.Position{models.Pos(minuendRow, j), models.Pos(minuendRow, j+1)})
				borrows++
			}
		}

		if col < leftCol {
			continue
		}
		var deps []models.Position
		if borrowed[col] {
			deps = append(deps, models.Pos(borrowRow, col))
		} else {
			deps = append(deps, models.Pos(minuendRow, col))
		}
		if hasSub {
			deps = append(deps, models.Pos(subtrahendRow, col))
		}
		p := models.Pos(resultRow, col)
		digit := strconv.Itoa(work[col] - sub)
		b.Target(p, digit, models.RoleResult)
		steps.Add(models.StepSubtractColumn, []models.Position{p}, []string{digit}, "subtraction.subtract_column", deps)
	}

	return finish(models.ProblemSubtraction, b, steps, resultRow, nil), borrows
}

// subtractComplement lays out
//
//	row 0  minuend
//	row 1  subtrahend with "-"
//	row 2  carries
//	row 3  separator
//	row 4  result
func subtractComplement(top, bottom int64, negative bool) (*models.StepResult, int) {
	topStr := strconv.FormatInt(top, 10)
	cols := len(topStr) + 1
	rightCol := cols - 1
	const minuendRow, subtrahendRow, carryRow, sepRow, resultRow = 0, 1, 2, 3, 4

	b := engine.NewGridBuilder(5, cols)
	minuend := placeDigits(b, minuendRow, rightCol, topStr, models.RoleDigit, false)
	subtrahend := placeDigits(b, subtrahendRow, rightCol, strconv.FormatInt(bottom, 10), models.RoleDigit, false)
	b.Given(models.Pos(subtrahendRow, 0), "-", models.RoleOperator)
	separatorRow(b, sepRow, 0, rightCol)
	if negative {
		b.Given(models.Pos(resultRow, 0), "-", models.RoleOperator)
	}

	steps := engine.NewStepList("sub")
	carries := columnWalk{
		b:         b,
		steps:     steps,
		operands:  []digitRow{minuend, subtrahend},
		carryRow:  carryRow,
		resultRow: resultRow,
		rightCol:  rightCol,
		result:    strconv.FormatInt(top-bottom, 10),
		column:    models.StepSubtractColumn,
		keyPrefix: "subtraction",
	}.subtract()

	return finish(models.ProblemSubtraction, b, steps, resultRow, nil), carries
}
