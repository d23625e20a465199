package builtin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Duly330AI/Matheheftt-sub000/internal/engine"
	"github.com/Duly330AI/Matheheftt-sub000/internal/engine/enginetest"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()

	infos := r.List()
	ids := make([]string, 0, len(infos))
	for _, info := range infos {
		ids = append(ids, info.ID)
		assert.NotEmpty(t, info.Skills, info.ID)
		assert.NotEmpty(t, info.DifficultySchema, info.ID)
	}
	assert.Equal(t, []string{
		Addition, AlgebraExpand, Division, InsertParentheses,
		Multiplication, SimplifyTerms, Subtraction,
	}, ids)

	assert.Panics(t, func() { r.MustRegister(Registrations()[0]) })
}

func TestBuiltinEnginesSolve(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		id     string
		params map[string]any
	}{
		{Addition, map[string]any{"operands": []any{345, 678}}},
		{Subtraction, map[string]any{"minuend": 304, "subtrahend": 125}},
		{Subtraction, map[string]any{"minuend": 304, "subtrahend": 125, "method": "complement"}},
		{Multiplication, map[string]any{"multiplicand": 345, "multiplier": 12}},
		{Division, map[string]any{"dividend": 85, "divisor": 2}},
		{AlgebraExpand, map[string]any{"factor": "3", "terms": []any{"x", "2x"}, "operators": []any{"+"}}},
		{SimplifyTerms, map[string]any{"terms": []any{"3x", "2", "-x", "5"}, "level": 3}},
		{InsertParentheses, map[string]any{"expression": "2+3*4", "target": 20}},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			eng, res, err := r.Generate(tt.id, tt.params)
			require.NoError(t, err)
			enginetest.AssertWellFormed(t, res)
			enginetest.Solve(t, eng, res)

			// same parameters, same result
			_, again, err := r.Generate(tt.id, tt.params)
			require.NoError(t, err)
			assert.Equal(t, res, again)
		})
	}
}

func TestBuiltinConstructionErrors(t *testing.T) {
	r := NewRegistry()

	_, _, err := r.Generate(Division, map[string]any{"dividend": 85, "divisor": 0})
	assert.ErrorIs(t, err, engine.ErrDivisionByZero)

	_, _, err = r.Generate(Subtraction, map[string]any{"minuend": 1, "subtrahend": 2})
	assert.ErrorIs(t, err, engine.ErrNegativeResult)

	_, _, err = r.Generate(Addition, map[string]any{"operands": []any{1}})
	assert.ErrorIs(t, err, engine.ErrOperandCount)

	_, _, err = r.Generate("fractions", nil)
	assert.ErrorIs(t, err, engine.ErrEngineNotFound)
}
