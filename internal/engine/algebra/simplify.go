package algebra

import (
	"fmt"
	"strings"

	"github.com/Duly330AI/Matheheftt-sub000/internal/engine"
	"github.com/Duly330AI/Matheheftt-sub000/internal/models"
)

// SimplifyConfig lists the summands of the task in order. A summand
// without a leading sign is added.
type SimplifyConfig struct {
	Terms []string `json:"terms" validate:"min=2,max=8,dive,required,max=8"`
	Level int      `json:"level" validate:"min=0,max=3"`
}

func (c *SimplifyConfig) Validate() error {
	return engine.ValidateStruct(c)
}

func (c *SimplifyConfig) problem() (Node, error) {
	var b strings.Builder
	for i, t := range c.Terms {
		t = strings.TrimSpace(t)
		if i > 0 && !strings.HasPrefix(t, "+") && !strings.HasPrefix(t, "-") {
			b.WriteString("+")
		}
		b.WriteString(t)
	}
	n, err := Parse(b.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", engine.ErrInvalidConfig, err)
	}
	return n, nil
}

// SimplifyTermsEngine asks to combine like terms and constants:
//
//	3x+2-x+5=2x+7
type SimplifyTermsEngine struct{}

func NewSimplifyTermsEngine() *SimplifyTermsEngine {
	return &SimplifyTermsEngine{}
}

func (e *SimplifyTermsEngine) Generate(cfg engine.Config) (*models.StepResult, error) {
	c, err := engine.ConfigAs[*SimplifyConfig](cfg)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	problem, err := c.problem()
	if err != nil {
		return nil, err
	}

	expected := Canonicalize(problem, CanonicalOptions{Combine: true, RemoveZeros: true})
	if Flatten(expected) == Flatten(problem) {
		return nil, fmt.Errorf("%w: %s has nothing to combine", engine.ErrInvalidConfig, Flatten(problem))
	}

	w := newRowWriter()
	problemGlyphs := Layout(problem)
	problemCells := w.given(problemGlyphs)
	w.equals()
	expectedGlyphs := Layout(expected)
	targets, values := w.answer(expectedGlyphs, slackFor(problemGlyphs, expectedGlyphs))
	steps := engine.NewStepList("simp")
	steps.Add(models.StepAlgebraSimplify, targets, values, "algebra.simplify", problemCells)

	counts := countTerms(problem)
	grid := w.b.Build()
	return &models.StepResult{
		Type:  models.ProblemSimplifyTerms,
		Steps: steps.Steps(),
		Grid:  grid,
		Meta:  grid.Meta(0, 0),
		Difficulty: map[string]any{
			"problem":   Flatten(problem),
			"expected":  Flatten(expected),
			"level":     c.Level,
			"terms":     counts.Raw,
			"remaining": counts.Combined,
		},
	}, nil
}

func (e *SimplifyTermsEngine) Validate(state engine.StepState) models.ValidationResult {
	return validateAnswer(state, "combine_like_terms", parseStored(state.Result, "problem"))
}
