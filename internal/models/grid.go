package models

import (
	"fmt"
	"strings"
)

// Position identifies a grid location
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Pos is shorthand for building a Position
func Pos(row, col int) Position {
	return Position{Row: row, Col: col}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// CellRole describes what a cell represents in the worked layout
type CellRole string

const (
	RoleDigit       CellRole = "digit"
	RoleOperator    CellRole = "operator"
	RoleCarry       CellRole = "carry"
	RoleBorrow      CellRole = "borrow"
	RoleResult      CellRole = "result"
	RoleSeparator   CellRole = "separator"
	RoleEmpty       CellRole = "empty"
	RoleHelper      CellRole = "helper"
	RoleAlgebraTerm CellRole = "algebra_term"
)

// CellStatus is the validation mark a session puts on a cell
type CellStatus string

const (
	CellUnchecked CellStatus = ""
	CellCorrect   CellStatus = "correct"
	CellIncorrect CellStatus = "incorrect"
	CellPending   CellStatus = "pending"
)

// Cell is the atomic grid unit
type Cell struct {
	ID       string     `json:"id"`
	Value    string     `json:"value"`
	Expected string     `json:"expected"`
	Role     CellRole   `json:"role"`
	Editable bool       `json:"editable"`
	Status   CellStatus `json:"status,omitempty"`
}

// Grid is a rectangular matrix of cells. All rows have the same length.
type Grid [][]Cell

// GridMeta describes the shape of a grid and where the work happens
type GridMeta struct {
	Rows      int `json:"rows"`
	Cols      int `json:"cols"`
	ResultRow int `json:"result_row"`
	StartRow  int `json:"start_row"`
}

// Rows returns the number of rows
func (g Grid) Rows() int {
	return len(g)
}

// Cols returns the row length, 0 for an empty grid
func (g Grid) Cols() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// InBounds reports whether p addresses a cell of the grid
func (g Grid) InBounds(p Position) bool {
	return p.Row >= 0 && p.Row < g.Rows() && p.Col >= 0 && p.Col < g.Cols()
}

// At returns a pointer to the cell at p
func (g Grid) At(p Position) (*Cell, bool) {
	if !g.InBounds(p) {
		return nil, false
	}
	return &g[p.Row][p.Col], true
}

// Value returns the current value at p, or "" when p is out of bounds
func (g Grid) Value(p Position) string {
	if c, ok := g.At(p); ok {
		return c.Value
	}
	return ""
}

// Find locates a cell by id
func (g Grid) Find(id string) (Position, bool) {
	for r := range g {
		for c := range g[r] {
			if g[r][c].ID == id {
				return Position{Row: r, Col: c}, true
			}
		}
	}
	return Position{}, false
}

// Clone returns a deep copy of the grid
func (g Grid) Clone() Grid {
	if g == nil {
		return nil
	}
	out := make(Grid, len(g))
	for r := range g {
		out[r] = make([]Cell, len(g[r]))
		copy(out[r], g[r])
	}
	return out
}

// RowString concatenates the values of row r, rendering blank cells as
// spaces and trimming trailing blanks.
func (g Grid) RowString(r int) string {
	if r < 0 || r >= len(g) {
		return ""
	}
	var b strings.Builder
	for _, c := range g[r] {
		if c.Value == "" {
			b.WriteByte(' ')
			continue
		}
		b.WriteString(c.Value)
	}
	return strings.TrimRight(b.String(), " ")
}

// Meta derives GridMeta for the grid with the given result and start rows
func (g Grid) Meta(resultRow, startRow int) GridMeta {
	return GridMeta{
		Rows:      g.Rows(),
		Cols:      g.Cols(),
		ResultRow: resultRow,
		StartRow:  startRow,
	}
}

// CellID builds the canonical id of the cell at (row, col)
func CellID(row, col int) string {
	return fmt.Sprintf("r%d-c%d", row, col)
}
