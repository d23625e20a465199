package arithmetic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Duly330AI/Matheheftt-sub000/internal/engine"
	"github.com/Duly330AI/Matheheftt-sub000/internal/engine/enginetest"
	"github.com/Duly330AI/Matheheftt-sub000/internal/models"
)

func TestDivisionWithRemainder(t *testing.T) {
	eng := NewDivision()
	res, err := eng.Generate(&DivisionConfig{Dividend: 85, Divisor: 2})
	require.NoError(t, err)
	enginetest.AssertWellFormed(t, res)

	assert.Equal(t, "85 : 2 = 42 R 1", res.Grid.RowString(0))
	assert.Equal(t, 9, res.Meta.Rows)
	assert.Equal(t, 1, res.Meta.StartRow)

	last := res.Steps[len(res.Steps)-1]
	assert.Equal(t, models.StepDivideRemainder, last.Kind)
	assert.Equal(t, []string{"1"}, last.ExpectedValues)

	kinds := make([]models.StepKind, len(res.Steps))
	for i, s := range res.Steps {
		kinds[i] = s.Kind
	}
	assert.Equal(t, []models.StepKind{
		models.StepDivideEstimate, models.StepDivideMultiply, models.StepDivideSubtract,
		models.StepDivideBringDown,
		models.StepDivideEstimate, models.StepDivideMultiply, models.StepDivideSubtract,
		models.StepDivideRemainder,
	}, kinds)
	enginetest.Solve(t, eng, res)
}

func TestDivisionWithoutRemainder(t *testing.T) {
	eng := NewDivision()
	res, err := eng.Generate(&DivisionConfig{Dividend: 84, Divisor: 2})
	require.NoError(t, err)
	enginetest.AssertWellFormed(t, res)

	assert.Equal(t, "84 : 2 = 42", res.Grid.RowString(0))
	for _, s := range res.Steps {
		assert.NotEqual(t, models.StepDivideRemainder, s.Kind)
	}
	assert.Equal(t, false, res.Difficulty["has_remainder"])
	enginetest.Solve(t, eng, res)
}

func TestDivisionByZero(t *testing.T) {
	_, err := NewDivision().Generate(&DivisionConfig{Dividend: 85, Divisor: 0})
	assert.ErrorIs(t, err, engine.ErrDivisionByZero)
}

func TestDivisionGrowsRows(t *testing.T) {
	cases := []struct {
		dividend, divisor int64
		top               string
	}{
		{1000, 8, "1000 : 8 = 125"},
		{3, 5, "3 : 5 = 0 R 3"},
		{805, 4, "805 : 4 = 201 R 1"},
		{9876, 12, "9876 : 12 = 823"},
		{0, 7, "0 : 7 = 0"},
	}
	for _, tc := range cases {
		t.Run(tc.top, func(t *testing.T) {
			eng := NewDivision()
			res, err := eng.Generate(&DivisionConfig{Dividend: tc.dividend, Divisor: tc.divisor})
			require.NoError(t, err)
			enginetest.AssertWellFormed(t, res)
			assert.Equal(t, tc.top, res.Grid.RowString(0))
			assert.Equal(t, 1+4*res.Difficulty["quotient_digits"].(int), res.Meta.Rows)
			enginetest.Solve(t, eng, res)
		})
	}
}

func TestDivisionEstimateDirection(t *testing.T) {
	eng := NewDivision()
	res, err := eng.Generate(&DivisionConfig{Dividend: 85, Divisor: 2})
	require.NoError(t, err)

	estimate := res.Steps[0]
	require.Equal(t, models.StepDivideEstimate, estimate.Kind)
	grid := enginetest.StudentGrid(res)
	state := engine.StepState{Result: res, Step: estimate, Grid: grid}
	cell := estimate.Targets[0]

	grid[cell.Row][cell.Col].Value = "5"
	v := eng.Validate(state)
	assert.Equal(t, models.ErrorEstimation, v.ErrorType)
	assert.Equal(t, "hint.divide_estimate.too_large", v.PrimaryHint().MessageKey)

	grid[cell.Row][cell.Col].Value = "3"
	v = eng.Validate(state)
	assert.Equal(t, "hint.divide_estimate.too_small", v.PrimaryHint().MessageKey)
	assert.Contains(t, v.PrimaryHint().Highlight, models.Pos(0, 5))
}
