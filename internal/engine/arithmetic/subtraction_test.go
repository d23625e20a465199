package arithmetic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Duly330AI/Matheheftt-sub000/internal/engine"
	"github.com/Duly330AI/Matheheftt-sub000/internal/engine/enginetest"
	"github.com/Duly330AI/Matheheftt-sub000/internal/models"
)

func TestSubtractionBorrow(t *testing.T) {
	eng := NewSubtraction()
	res, err := eng.Generate(&SubtractionConfig{Minuend: 304, Subtrahend: 125, Method: MethodBorrow})
	require.NoError(t, err)
	enginetest.AssertWellFormed(t, res)

	g := res.Grid
	assert.Equal(t, 5, res.Meta.Rows)
	assert.Equal(t, 4, res.Meta.Cols)
	assert.Equal(t, "2", g[0][1].Expected)
	assert.Equal(t, "9", g[0][2].Expected)
	assert.Equal(t, "14", g[0][3].Expected)
	assert.Equal(t, "1", g[4][1].Expected)
	assert.Equal(t, "7", g[4][2].Expected)
	assert.Equal(t, "9", g[4][3].Expected)
	assert.Equal(t, "-", g[2][0].Value)

	require.GreaterOrEqual(t, len(res.Steps), 3)
	assert.Equal(t, models.StepBorrow, res.Steps[0].Kind)
	assert.Equal(t, []models.Position{models.Pos(0, 1), models.Pos(0, 2)}, res.Steps[0].Targets)
	assert.Equal(t, []string{"2", "10"}, res.Steps[0].ExpectedValues)
	assert.Equal(t, models.StepBorrow, res.Steps[1].Kind)
	assert.Equal(t, []string{"9", "14"}, res.Steps[1].ExpectedValues)
	assert.Equal(t, models.StepSubtractColumn, res.Steps[2].Kind)
	assert.Equal(t, []string{"9"}, res.Steps[2].ExpectedValues)
	assert.Equal(t, []models.Position{models.Pos(0, 3), models.Pos(2, 3)}, res.Steps[2].Dependencies)

	assert.Equal(t, "borrow", res.Difficulty["method"])
	assert.Equal(t, false, res.Difficulty["negative"])
	enginetest.Solve(t, eng, res)
}

func TestSubtractionComplement(t *testing.T) {
	eng := NewSubtraction()
	res, err := eng.Generate(&SubtractionConfig{Minuend: 304, Subtrahend: 125, Method: MethodComplement})
	require.NoError(t, err)
	enginetest.AssertWellFormed(t, res)

	g := res.Grid
	assert.Equal(t, "1", g[2][1].Expected)
	assert.Equal(t, "1", g[2][2].Expected)
	assert.Equal(t, "", g[2][3].Expected)
	assert.Equal(t, " 179", g.RowString(4))
	assert.Equal(t, "complement", res.Difficulty["method"])
	enginetest.Solve(t, eng, res)
}

func TestSubtractionLeadingZeroSuppressed(t *testing.T) {
	for _, method := range []string{MethodBorrow, MethodComplement} {
		t.Run(method, func(t *testing.T) {
			eng := NewSubtraction()
			res, err := eng.Generate(&SubtractionConfig{Minuend: 100, Subtrahend: 1, Method: method})
			require.NoError(t, err)
			enginetest.AssertWellFormed(t, res)

			assert.Equal(t, "  99", res.Grid.RowString(4))
			assert.False(t, res.Grid[4][1].Editable)
			enginetest.Solve(t, eng, res)
		})
	}
}

func TestSubtractionNegative(t *testing.T) {
	eng := NewSubtraction()

	_, err := eng.Generate(&SubtractionConfig{Minuend: 125, Subtrahend: 304})
	assert.ErrorIs(t, err, engine.ErrNegativeResult)
	assert.ErrorIs(t, err, engine.ErrInvalidConfig)

	res, err := eng.Generate(&SubtractionConfig{Minuend: 125, Subtrahend: 304, AllowNegative: true})
	require.NoError(t, err)
	enginetest.AssertWellFormed(t, res)
	assert.Equal(t, "-179", res.Grid.RowString(4))
	assert.False(t, res.Grid[4][0].Editable)
	assert.Equal(t, true, res.Difficulty["negative"])
}

func TestSubtractionInvalidMethod(t *testing.T) {
	_, err := NewSubtraction().Generate(&SubtractionConfig{Minuend: 5, Subtrahend: 3, Method: "guess"})
	assert.ErrorIs(t, err, engine.ErrInvalidConfig)
}

func TestSubtractionBorrowValidate(t *testing.T) {
	eng := NewSubtraction()
	res, err := eng.Generate(&SubtractionConfig{Minuend: 304, Subtrahend: 125})
	require.NoError(t, err)

	grid := enginetest.StudentGrid(res)
	grid[0][1].Value = "2"
	state := engine.StepState{Result: res, Step: res.Steps[0], Grid: grid}

	v := eng.Validate(state)
	assert.True(t, v.Pending)
	require.Len(t, v.Mismatches, 1)
	assert.Equal(t, models.Pos(0, 2), v.Mismatches[0].Position)

	grid[0][2].Value = "9"
	v = eng.Validate(state)
	assert.Equal(t, models.ErrorBorrow, v.ErrorType)
	assert.Equal(t, "hint.borrow", v.PrimaryHint().MessageKey)
	assert.Equal(t, "borrowing", v.PrimaryHint().SkillTag)
}
