package engine

import (
	"fmt"

	"github.com/Duly330AI/Matheheftt-sub000/internal/models"
)

// GridBuilder assembles a grid cell by cell. Rows may be appended while
// building; Build pads everything to a rectangle and assigns cell ids.
type GridBuilder struct {
	cols int
	rows [][]models.Cell
}

// NewGridBuilder starts a builder with rows x cols empty cells
func NewGridBuilder(rows, cols int) *GridBuilder {
	b := &GridBuilder{cols: cols}
	for i := 0; i < rows; i++ {
		b.AddRow()
	}
	return b
}

// AddRow appends an empty row and returns its index
func (b *GridBuilder) AddRow() int {
	b.rows = append(b.rows, emptyRow(b.cols))
	return len(b.rows) - 1
}

// Rows returns the current row count
func (b *GridBuilder) Rows() int {
	return len(b.rows)
}

// Cols returns the current column count
func (b *GridBuilder) Cols() int {
	return b.cols
}

// Given places a fixed, non-editable value
func (b *GridBuilder) Given(p models.Position, value string, role models.CellRole) {
	c := b.cell(p)
	c.Value = value
	c.Expected = value
	c.Role = role
	c.Editable = false
}

// Target places an editable cell whose worked value is expected.
// Calling it again for the same position overwrites the expectation.
func (b *GridBuilder) Target(p models.Position, expected string, role models.CellRole) {
	c := b.cell(p)
	c.Value = expected
	c.Expected = expected
	c.Role = role
	c.Editable = true
}

// Text writes one character per cell starting at (row, col). Spaces leave
// the cell empty. It returns the column after the last written character.
func (b *GridBuilder) Text(row, col int, text string, role models.CellRole) int {
	for _, ch := range text {
		if ch != ' ' {
			b.Given(models.Pos(row, col), string(ch), role)
		} else {
			b.cell(models.Pos(row, col))
		}
		col++
	}
	return col
}

// Build returns the finished rectangular grid
func (b *GridBuilder) Build() models.Grid {
	grid := make(models.Grid, len(b.rows))
	for r := range b.rows {
		row := b.rows[r]
		if len(row) < b.cols {
			row = append(row, emptyRow(b.cols-len(row))...)
		}
		grid[r] = make([]models.Cell, b.cols)
		copy(grid[r], row)
		for c := range grid[r] {
			grid[r][c].ID = models.CellID(r, c)
		}
	}
	return grid
}

func (b *GridBuilder) cell(p models.Position) *models.Cell {
	if p.Row < 0 || p.Col < 0 {
		panic(fmt.Sprintf("grid builder: negative position %s", p))
	}
	for p.Row >= len(b.rows) {
		b.AddRow()
	}
	if p.Col >= b.cols {
		b.cols = p.Col + 1
	}
	row := b.rows[p.Row]
	if p.Col >= len(row) {
		row = append(row, emptyRow(p.Col+1-len(row))...)
		b.rows[p.Row] = row
	}
	return &row[p.Col]
}

func emptyRow(n int) []models.Cell {
	row := make([]models.Cell, n)
	for i := range row {
		row[i].Role = models.RoleEmpty
	}
	return row
}
