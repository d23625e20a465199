package arithmetic

import (
	"strconv"

	"github.com/Duly330AI/Matheheftt-sub000/internal/engine"
	"github.com/Duly330AI/Matheheftt-sub000/internal/models"
)

type DivisionConfig struct {
	Dividend int64 `json:"dividend" validate:"min=0,max=999999999"`
	Divisor  int64 `json:"divisor" validate:"min=0,max=99999"`
}

func (c *DivisionConfig) Validate() error {
	return engine.ValidateStruct(c)
}

// Division is written long division. The number of rows depends on the
// quotient, so the grid grows by one row group per quotient digit.
type Division struct{}

func NewDivision() *Division {
	return &Division{}
}

// Generate writes the equation on row 0, one character per cell:
//
//	85 : 2 = 42 R 1
//
// and then, per quotient digit, a group of four rows: carries, the product
// of quotient digit and divisor, a separator and the difference. Brought
// down digits extend the previous difference row.
func (d *Division) Generate(cfg engine.Config) (*models.StepResult, error) {
	c, err := engine.ConfigAs[*DivisionConfig](cfg)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.Divisor == 0 {
		return nil, engine.ErrDivisionByZero
	}

	dividend := strconv.FormatInt(c.Dividend, 10)
	divisor := strconv.FormatInt(c.Divisor, 10)
	quotient := strconv.FormatInt(c.Dividend/c.Divisor, 10)
	remainder := c.Dividend % c.Divisor

	b := engine.NewGridBuilder(1, 0)
	placeDigits(b, 0, len(dividend)-1, dividend, models.RoleDigit, false)
	col := b.Text(0, len(dividend), " : ", models.RoleOperator)
	divisorStart := col
	col = b.Text(0, col, divisor, models.RoleDigit)
	col = b.Text(0, col, " = ", models.RoleOperator)

	quotientCols := make([]int, len(quotient))
	for i, ch := range quotient {
		quotientCols[i] = col
		b.Target(models.Pos(0, col), string(ch), models.RoleResult)
		col++
	}
	var remainderCols []int
	if remainder != 0 {
		col = b.Text(0, col, " R ", models.RoleOperator)
		for _, ch := range strconv.FormatInt(remainder, 10) {
			remainderCols = append(remainderCols, col)
			b.Target(models.Pos(0, col), string(ch), models.RoleResult)
			col++
		}
	}

	divisorCells := make([]models.Position, len(divisor))
	for i := range divisor {
		divisorCells[i] = models.Pos(0, divisorStart+i)
	}

	steps := engine.NewStepList("div")
	carries := 0

	// the first number accumulates leading digits until it reaches the divisor
	pos := 0
	var current int64
	for pos < len(dividend) {
		current = current*10 + int64(dividend[pos]-'0')
		pos++
		if current >= c.Divisor {
			break
		}
	}
	top := digitRow{row: 0, digits: make(map[int]int)}
	for i := 0; i < pos; i++ {
		top.digits[i] = int(dividend[i] - '0')
	}
	endCol := pos - 1

	for group := 0; ; group++ {
		q := current / c.Divisor
		product := q * c.Divisor
		rest := current - product

		qPos := models.Pos(0, quotientCols[group])
		qVal := strconv.FormatInt(q, 10)
		steps.Add(models.StepDivideEstimate, []models.Position{qPos}, []string{qVal}, "division.estimate",
			append(top.cells(), divisorCells...))

		carryRow := b.AddRow()
		productRow := b.AddRow()
		sepRow := b.AddRow()
		diffRow := b.AddRow()

		productStr := strconv.FormatInt(product, 10)
		productDigits := placeDigits(b, productRow, endCol, productStr, models.RoleDigit, true)
		steps.Add(models.StepDivideMultiply, productDigits.cells(), splitDigits(productStr), "division.multiply",
			append([]models.Position{qPos}, divisorCells...))
		separatorRow(b, sepRow, top.minCol(), endCol)

		carries += columnWalk{
			b:         b,
			steps:     steps,
			operands:  []digitRow{top, productDigits},
			carryRow:  carryRow,
			resultRow: diffRow,
			rightCol:  endCol,
			result:    strconv.FormatInt(rest, 10),
			column:    models.StepDivideSubtract,
			keyPrefix: "division",
		}.subtract()

		restStr := strconv.FormatInt(rest, 10)
		next := digitRow{row: diffRow, digits: make(map[int]int)}
		for i, ch := range restStr {
			next.digits[endCol-len(restStr)+1+i] = int(ch - '0')
		}

		if pos >= len(dividend) {
			if remainder != 0 {
				values := splitDigits(strconv.FormatInt(remainder, 10))
				targets := make([]models.Position, len(remainderCols))
				for i, rc := range remainderCols {
					targets[i] = models.Pos(0, rc)
				}
				steps.Add(models.StepDivideRemainder, targets, values, "division.remainder", next.cells())
			}
			break
		}

		// bring down the next dividend digit beside the difference
		digit := int(dividend[pos] - '0')
		bringPos := models.Pos(diffRow, pos)
		b.Target(bringPos, strconv.Itoa(digit), models.RoleDigit)
		steps.Add(models.StepDivideBringDown, []models.Position{bringPos}, []string{strconv.Itoa(digit)},
			"division.bring_down", []models.Position{models.Pos(0, pos)})
		next.digits[pos] = digit

		current = rest*10 + int64(digit)
		top = next
		endCol = pos
		pos++
	}

	res := finish(models.ProblemDivision, b, steps, 0, map[string]any{
		"dividend_digits": len(dividend),
		"divisor_digits":  len(divisor),
		"quotient_digits": len(quotient),
		"has_remainder":   remainder != 0,
		"carries":         carries,
	})
	// the quotient is filled in on row 0, but the work starts below it
	res.Meta.StartRow = 1
	return res, nil
}

func (d *Division) Validate(state engine.StepState) models.ValidationResult {
	return validateColumns(state)
}

func splitDigits(s string) []string {
	out := make([]string, len(s))
	for i, ch := range s {
		out[i] = string(ch)
	}
	return out
}
