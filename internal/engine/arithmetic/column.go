// Package arithmetic implements the written column methods: addition,
// subtraction (borrow and complement), multiplication and long division.
package arithmetic

import (
	"fmt"
	"strconv"

	"github.com/Duly330AI/Matheheftt-sub000/internal/engine"
	"github.com/Duly330AI/Matheheftt-sub000/internal/models"
)

// digitRow remembers which digit sits in which column of a grid row
type digitRow struct {
	row    int
	digits map[int]int
}

func (d digitRow) at(col int) (int, bool) {
	v, ok := d.digits[col]
	return v, ok
}

// placeDigits writes s right-aligned so that its last character lands in
// rightCol. Editable rows become targets, the rest are givens.
func placeDigits(b *engine.GridBuilder, row, rightCol int, s string, role models.CellRole, editable bool) digitRow {
	d := digitRow{row: row, digits: make(map[int]int, len(s))}
	start := rightCol - len(s) + 1
	for i, ch := range s {
		col := start + i
		p := models.Pos(row, col)
		if editable {
			b.Target(p, string(ch), role)
		} else {
			b.Given(p, string(ch), role)
		}
		d.digits[col] = int(ch - '0')
	}
	return d
}

func separatorRow(b *engine.GridBuilder, row, from, to int) {
	for col := from; col <= to; col++ {
		b.Given(models.Pos(row, col), "", models.RoleSeparator)
	}
}

// columnWalk is the least-significant-first column procedure shared by the
// engines. The result is written right-aligned ending in rightCol; columns
// left of the result's first digit are never written.
type columnWalk struct {
	b         *engine.GridBuilder
	steps     *engine.StepList
	operands  []digitRow
	carryRow  int
	resultRow int
	rightCol  int
	result    string
	column    models.StepKind
	keyPrefix string
}

func (w columnWalk) key(kind models.StepKind) string {
	return fmt.Sprintf("%s.%s", w.keyPrefix, kind)
}

func (w columnWalk) leftCol() int {
	return w.rightCol - len(w.result) + 1
}

// add sums all operand rows column by column. Every sum of ten or more
// produces its own carry step one column to the left. It returns the number
// of carries.
func (w columnWalk) add() int {
	carries := 0
	carry := 0
	for col := w.rightCol; col >= w.leftCol(); col-- {
		sum := carry
		var deps []models.Position
		for _, op := range w.operands {
			if d, ok := op.at(col); ok {
				sum += d
				deps = append(deps, models.Pos(op.row, col))
			}
		}
		if carry > 0 {
			deps = append(deps, models.Pos(w.carryRow, col))
		}

		resultPos := models.Pos(w.resultRow, col)
		digit := strconv.Itoa(sum % 10)
		w.b.Target(resultPos, digit, models.RoleResult)
		w.steps.Add(w.column, []models.Position{resultPos}, []string{digit}, w.key(w.column), deps)

		carry = sum / 10
		if carry > 0 && col-1 >= w.leftCol() {
			carryPos := models.Pos(w.carryRow, col-1)
			value := strconv.Itoa(carry)
			w.b.Target(carryPos, value, models.RoleCarry)
			w.steps.Add(models.StepCarry, []models.Position{carryPos}, []string{value}, w.key(models.StepCarry), []models.Position{resultPos})
			carries++
		}
	}
	return carries
}

// subtract computes operands[0] - operands[1] with the complement method: a
// column that needs ten more carries a one into the next subtrahend column
// instead of changing the minuend. It returns the number of carries.
func (w columnWalk) subtract() int {
	top, bottom := w.operands[0], w.operands[1]
	carries := 0
	borrowIn := 0
	for col := w.rightCol; col >= w.leftCol(); col-- {
		t, _ := top.at(col)
		s, hasBottom := bottom.at(col)
		deps := []models.Position{models.Pos(top.row, col)}
		if hasBottom {
			deps = append(deps, models.Pos(bottom.row, col))
		}
		if borrowIn > 0 {
			deps = append(deps, models.Pos(w.carryRow, col))
		}

		need := s + borrowIn
		borrowOut := 0
		if t < need {
			t += 10
			borrowOut = 1
		}

		resultPos := models.Pos(w.resultRow, col)
		digit := strconv.Itoa(t - need)
		w.b.Target(resultPos, digit, models.RoleResult)
		w.steps.Add(w.column, []models.Position{resultPos}, []string{digit}, w.key(w.column), deps)

		borrowIn = borrowOut
		if borrowOut > 0 && col-1 >= w.leftCol() {
			carryPos := models.Pos(w.carryRow, col-1)
			w.b.Target(carryPos, "1", models.RoleCarry)
			w.steps.Add(models.StepCarry, []models.Position{carryPos}, []string{"1"}, w.key(models.StepCarry), []models.Position{resultPos})
			carries++
		}
	}
	return carries
}

// firstEditableRow is where the interactive working area begins
func firstEditableRow(grid models.Grid) int {
	for r := range grid {
		for _, c := range grid[r] {
			if c.Editable {
				return r
			}
		}
	}
	return 0
}

func finish(kind models.ProblemType, b *engine.GridBuilder, steps *engine.StepList, resultRow int, difficulty map[string]any) *models.StepResult {
	grid := b.Build()
	return &models.StepResult{
		Type:       kind,
		Steps:      steps.Steps(),
		Grid:       grid,
		Meta:       grid.Meta(resultRow, firstEditableRow(grid)),
		Difficulty: difficulty,
	}
}

// cells returns the positions of the row's digits, left to right
func (d digitRow) cells() []models.Position {
	out := make([]models.Position, 0, len(d.digits))
	for col := d.minCol(); col <= d.maxCol(); col++ {
		if _, ok := d.digits[col]; ok {
			out = append(out, models.Pos(d.row, col))
		}
	}
	return out
}

func (d digitRow) minCol() int {
	first := true
	m := 0
	for col := range d.digits {
		if first || col < m {
			m, first = col, false
		}
	}
	return m
}

func (d digitRow) maxCol() int {
	m := 0
	for col := range d.digits {
		m = max(m, col)
	}
	return m
}
