package arithmetic

import (
	"strconv"
	"strings"

	"github.com/Duly330AI/Matheheftt-sub000/internal/engine"
	"github.com/Duly330AI/Matheheftt-sub000/internal/models"
)

type MultiplicationConfig struct {
	Multiplicand int64 `json:"multiplicand" validate:"min=0,max=999999999"`
	Multiplier   int64 `json:"multiplier" validate:"min=0,max=99999"`
}

func (c *MultiplicationConfig) Validate() error {
	return engine.ValidateStruct(c)
}

// Multiplication is written long multiplication: one partial product per
// multiplier digit, right to left, then a column addition of the partials.
type Multiplication struct{}

func NewMultiplication() *Multiplication {
	return &Multiplication{}
}

// Generate lays out
//
//	row 0        multiplicand
//	row 1        multiplier with "×"
//	row 2        separator
//	row 3+2i     carries of partial product i
//	row 4+2i     partial product i
//	then         sum carries, separator, result
//
// With a single multiplier digit the only partial product is the result.
func (m *Multiplication) Generate(cfg engine.Config) (*models.StepResult, error) {
	c, err := engine.ConfigAs[*MultiplicationConfig](cfg)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	aStr := strconv.FormatInt(c.Multiplicand, 10)
	bStr := strconv.FormatInt(c.Multiplier, 10)
	product := strconv.FormatInt(c.Multiplicand*c.Multiplier, 10)

	partials := make([]string, len(bStr))
	width := max(len(aStr), len(bStr), len(product))
	for i := range partials {
		d := int64(bStr[len(bStr)-1-i] - '0')
		partials[i] = strconv.FormatInt(c.Multiplicand*d, 10) + strings.Repeat("0", i)
		width = max(width, len(partials[i]))
	}

	cols := width + 1
	rightCol := cols - 1
	b := engine.NewGridBuilder(3, cols)
	multiplicand := placeDigits(b, 0, rightCol, aStr, models.RoleDigit, false)
	placeDigits(b, 1, rightCol, bStr, models.RoleDigit, false)
	b.Given(models.Pos(1, 0), "×", models.RoleOperator)
	separatorRow(b, 2, 0, rightCol)

	steps := engine.NewStepList("mul")
	carries := 0
	rows := make([]digitRow, len(partials))
	for i := range partials {
		carryRow := b.AddRow()
		partialRow := b.AddRow()
		multCol := rightCol - i
		d := int(bStr[len(bStr)-1-i] - '0')
		rows[i] = digitRow{row: partialRow, digits: make(map[int]int)}

		for z := 0; z < i; z++ {
			p := models.Pos(partialRow, rightCol-z)
			b.Target(p, "0", models.RoleResult)
			rows[i].digits[rightCol-z] = 0
			steps.Add(models.StepMultiplyZero, []models.Position{p}, []string{"0"}, "multiplication.placeholder_zero",
				[]models.Position{models.Pos(1, multCol)})
		}

		if d == 0 {
			p := models.Pos(partialRow, rightCol-i)
			b.Target(p, "0", models.RoleResult)
			rows[i].digits[rightCol-i] = 0
			steps.Add(models.StepMultiplyZero, []models.Position{p}, []string{"0"}, "multiplication.times_zero",
				[]models.Position{models.Pos(1, multCol)})
			continue
		}

		carry := 0
		for j := 0; j < len(aStr); j++ {
			aCol := rightCol - j
			outCol := rightCol - i - j
			prod := multiplicand.digits[aCol]*d + carry
			deps := []models.Position{models.Pos(0, aCol), models.Pos(1, multCol)}
			if carry > 0 {
				deps = append(deps, models.Pos(carryRow, outCol))
			}

			if j == len(aStr)-1 {
				// the leading digit writes its full product
				full := strconv.Itoa(prod)
				targets := make([]models.Position, len(full))
				values := make([]string, len(full))
				for k, ch := range full {
					col := outCol - len(full) + 1 + k
					targets[k] = models.Pos(partialRow, col)
					values[k] = string(ch)
					b.Target(targets[k], values[k], models.RoleResult)
					rows[i].digits[col] = int(ch - '0')
				}
				steps.Add(models.StepMultiplyDigit, targets, values, "multiplication.multiply_digit", deps)
				break
			}

			p := models.Pos(partialRow, outCol)
			digit := strconv.Itoa(prod % 10)
			b.Target(p, digit, models.RoleResult)
			rows[i].digits[outCol] = prod % 10
			steps.Add(models.StepMultiplyDigit, []models.Position{p}, []string{digit}, "multiplication.multiply_digit", deps)

			carry = prod / 10
			if carry > 0 {
				cp := models.Pos(carryRow, outCol-1)
				value := strconv.Itoa(carry)
				b.Target(cp, value, models.RoleCarry)
				steps.Add(models.StepCarry, []models.Position{cp}, []string{value}, "multiplication.carry", []models.Position{p})
				carries++
			}
		}
	}

	resultRow := rows[0].row
	if len(rows) > 1 {
		sumCarryRow := b.AddRow()
		sepRow := b.AddRow()
		resultRow = b.AddRow()
		separatorRow(b, sepRow, 0, rightCol)
		b.Given(models.Pos(rows[len(rows)-1].row, 0), "+", models.RoleOperator)
		carries += columnWalk{
			b:         b,
			steps:     steps,
			operands:  rows,
			carryRow:  sumCarryRow,
			resultRow: resultRow,
			rightCol:  rightCol,
			result:    product,
			column:    models.StepAddColumn,
			keyPrefix: "multiplication",
		}.add()
	}

	return finish(models.ProblemMultiplication, b, steps, resultRow, map[string]any{
		"multiplicand_digits": len(aStr),
		"multiplier_digits":   len(bStr),
		"carries":             carries,
	}), nil
}

func (m *Multiplication) Validate(state engine.StepState) models.ValidationResult {
	return validateColumns(state)
}
