// Package enginetest provides assertions shared by engine tests.
package enginetest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Duly330AI/Matheheftt-sub000/internal/engine"
	"github.com/Duly330AI/Matheheftt-sub000/internal/models"
)

// AssertWellFormed checks the structural guarantees every generated result
// must satisfy: rectangular grid matching its meta, unique cell ids, parallel
// targets and expected values, and all positions inside the grid.
func AssertWellFormed(t *testing.T, res *models.StepResult) {
	t.Helper()
	require.NotNil(t, res)

	grid := res.Grid
	assert.Equal(t, len(grid), res.Meta.Rows, "rows")
	if len(grid) > 0 {
		assert.Equal(t, len(grid[0]), res.Meta.Cols, "cols")
	}

	ids := make(map[string]bool)
	for r := range grid {
		assert.Len(t, grid[r], res.Meta.Cols, "row %d length", r)
		for _, c := range grid[r] {
			assert.False(t, ids[c.ID], "duplicate cell id %s", c.ID)
			ids[c.ID] = true
		}
	}

	stepIDs := make(map[string]bool)
	for _, s := range res.Steps {
		assert.False(t, stepIDs[s.ID], "duplicate step id %s", s.ID)
		stepIDs[s.ID] = true
		assert.Len(t, s.ExpectedValues, len(s.Targets), "step %s", s.ID)
		for _, p := range s.Targets {
			assert.True(t, grid.InBounds(p), "step %s target %s out of bounds", s.ID, p)
		}
		for _, p := range s.Dependencies {
			assert.True(t, grid.InBounds(p), "step %s dependency %s out of bounds", s.ID, p)
		}
		if s.NextFocus != nil {
			assert.True(t, grid.InBounds(*s.NextFocus), "step %s focus out of bounds", s.ID)
		}
	}
}

// StudentGrid returns the solved grid with every editable cell blanked
func StudentGrid(res *models.StepResult) models.Grid {
	g := res.Grid.Clone()
	for r := range g {
		for c := range g[r] {
			if g[r][c].Editable {
				g[r][c].Value = ""
			}
		}
	}
	return g
}

// Fill writes the step's expected values into g
func Fill(g models.Grid, step models.Step) {
	for i, p := range step.Targets {
		if c, ok := g.At(p); ok {
			c.Value = step.ExpectedValues[i]
		}
	}
}

// Solve validates every step in order with correct input and fails the test
// if any step is not accepted.
func Solve(t *testing.T, eng engine.Engine, res *models.StepResult) {
	t.Helper()
	g := StudentGrid(res)
	for _, step := range res.Steps {
		Fill(g, step)
		v := eng.Validate(engine.StepState{Result: res, Step: step, Grid: g})
		require.True(t, v.Correct, "step %s (%s) rejected: %+v", step.ID, step.Kind, v)
	}
}
