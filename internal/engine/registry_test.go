package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Duly330AI/Matheheftt-sub000/internal/models"
)

type echoConfig struct {
	Value int `json:"value" validate:"min=1,max=9"`
}

func (c *echoConfig) Validate() error {
	return ValidateStruct(c)
}

// echoEngine asks for its configured value in a single cell
type echoEngine struct{}

func (echoEngine) Generate(cfg Config) (*models.StepResult, error) {
	c, err := ConfigAs[*echoConfig](cfg)
	if err != nil {
		return nil, err
	}
	b := NewGridBuilder(1, 1)
	value := string(rune('0' + c.Value))
	b.Target(models.Pos(0, 0), value, models.RoleResult)
	steps := NewStepList("echo")
	steps.Add(models.StepAddColumn, []models.Position{models.Pos(0, 0)}, []string{value}, "echo", nil)
	grid := b.Build()
	return &models.StepResult{Steps: steps.Steps(), Grid: grid, Meta: grid.Meta(0, 0)}, nil
}

func (echoEngine) Validate(state StepState) models.ValidationResult {
	return ValidateCells(state, func(step models.Step, _ models.Grid, _ []models.Mismatch) (models.ErrorType, models.Hint) {
		return models.ErrorCalculation, models.Hint{MessageKey: "echo", Highlight: step.Targets}
	})
}

func echoRegistration(id string) Registration {
	return Registration{
		Info:      Info{ID: id, Name: "Echo"},
		New:       func() Engine { return echoEngine{} },
		NewConfig: func() Config { return &echoConfig{} },
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(echoRegistration("b")))
	require.NoError(t, r.Register(echoRegistration("a")))

	err := r.Register(echoRegistration("a"))
	assert.ErrorIs(t, err, ErrDuplicateEngine)
	assert.Panics(t, func() { r.MustRegister(echoRegistration("b")) })
	assert.Error(t, r.Register(Registration{Info: Info{ID: "c"}}))

	_, err = r.Get("missing")
	assert.ErrorIs(t, err, ErrEngineNotFound)

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, "b", list[1].ID)
}

func TestRegistryGenerate(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(echoRegistration("echo"))

	eng, res, err := r.Generate("echo", map[string]any{"value": 7})
	require.NoError(t, err)
	assert.Equal(t, "7", res.Grid[0][0].Expected)
	assert.Equal(t, "r0-c0", res.Grid[0][0].ID)

	grid := res.Grid.Clone()
	grid[0][0].Value = ""
	assert.True(t, eng.Validate(StepState{Result: res, Step: res.Steps[0], Grid: grid}).Pending)
	grid[0][0].Value = "6"
	v := eng.Validate(StepState{Result: res, Step: res.Steps[0], Grid: grid})
	assert.Equal(t, models.ErrorCalculation, v.ErrorType)

	_, _, err = r.Generate("echo", map[string]any{"value": 12})
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, _, err = r.Generate("echo", map[string]any{"value": "seven"})
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, _, err = r.Generate("nope", nil)
	assert.ErrorIs(t, err, ErrEngineNotFound)
}

func TestGridBuilderGrows(t *testing.T) {
	b := NewGridBuilder(1, 2)
	b.Given(models.Pos(0, 0), "1", models.RoleDigit)
	b.Target(models.Pos(2, 4), "9", models.RoleResult)
	end := b.Text(1, 0, "a b", models.RoleOperator)
	assert.Equal(t, 3, end)

	g := b.Build()
	require.Len(t, g, 3)
	for _, row := range g {
		assert.Len(t, row, 5)
	}
	assert.Equal(t, "a b", g.RowString(1))
	assert.Equal(t, models.RoleEmpty, g[1][1].Role)
	assert.True(t, g[2][4].Editable)
	assert.Equal(t, "r2-c4", g[2][4].ID)
}

func TestStepListFocus(t *testing.T) {
	l := NewStepList("s")
	l.Add(models.StepCarry, []models.Position{models.Pos(0, 1)}, []string{"1"}, "k", nil)
	l.Add(models.StepCarry, []models.Position{models.Pos(0, 0)}, []string{"1"}, "k", nil)

	steps := l.Steps()
	require.Len(t, steps, 2)
	assert.Equal(t, "s-1", steps[0].ID)
	require.NotNil(t, steps[0].NextFocus)
	assert.Equal(t, models.Pos(0, 0), *steps[0].NextFocus)
	assert.Nil(t, steps[1].NextFocus)
	assert.Panics(t, func() { l.Add(models.StepCarry, nil, []string{"1"}, "k", nil) })
}
