package algebra

import (
	"fmt"
	"strings"

	"github.com/Duly330AI/Matheheftt-sub000/internal/engine"
	"github.com/Duly330AI/Matheheftt-sub000/internal/models"
)

// AlgebraConfig describes factor·(term op term ...), e.g. 3(x+2)
type AlgebraConfig struct {
	Factor    string   `json:"factor" validate:"required,max=8"`
	Terms     []string `json:"terms" validate:"min=2,max=4,dive,required,max=8"`
	Operators []string `json:"operators" validate:"dive,oneof=+ -"`
}

func (c *AlgebraConfig) Validate() error {
	if err := engine.ValidateStruct(c); err != nil {
		return err
	}
	if len(c.Operators) != len(c.Terms)-1 {
		return fmt.Errorf("%w: %d terms need %d operators, got %d",
			engine.ErrInvalidConfig, len(c.Terms), len(c.Terms)-1, len(c.Operators))
	}
	return nil
}

// problem builds the factor times the parenthesized sum
func (c *AlgebraConfig) problem() (Node, error) {
	factor, err := Parse(c.Factor)
	if err != nil {
		return nil, fmt.Errorf("%w: factor: %v", engine.ErrInvalidConfig, err)
	}
	var b strings.Builder
	for i, t := range c.Terms {
		if i > 0 {
			b.WriteString(c.Operators[i-1])
		}
		b.WriteString(t)
	}
	sum, err := Parse(b.String())
	if err != nil {
		return nil, fmt.Errorf("%w: terms: %v", engine.ErrInvalidConfig, err)
	}
	if _, ok := asSum(sum); !ok {
		return nil, fmt.Errorf("%w: terms do not form a sum", engine.ErrInvalidConfig)
	}
	return Implicit(factor, sum), nil
}

// AlgebraEngine asks to multiply out a parenthesized sum and, when the
// expansion leaves like terms, to combine them in a second step:
//
//	3(x+2x)=3x+6x=9x
type AlgebraEngine struct{}

func NewAlgebraEngine() *AlgebraEngine {
	return &AlgebraEngine{}
}

func (e *AlgebraEngine) Generate(cfg engine.Config) (*models.StepResult, error) {
	c, err := engine.ConfigAs[*AlgebraConfig](cfg)
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

	expanded := Expand(problem)
	combined := Canonicalize(problem, CanonicalOptions{Combine: true, RemoveZeros: true})
	needsCombine := Flatten(combined) != Flatten(expanded)

	w := newRowWriter()
	problemGlyphs := Layout(problem)
	problemCells := w.given(problemGlyphs)
	w.equals()
	steps := engine.NewStepList("alg")
	expandedGlyphs := Layout(expanded)
	expandTargets, expandValues := w.answer(expandedGlyphs, slackFor(problemGlyphs, expandedGlyphs))
	steps.Add(models.StepAlgebraExpand, expandTargets, expandValues, "algebra.expand", problemCells)
	if needsCombine {
		w.equals()
		combinedGlyphs := Layout(combined)
		targets, values := w.answer(combinedGlyphs, slackFor(expandedGlyphs, combinedGlyphs))
		steps.Add(models.StepAlgebraSimplify, targets, values, "algebra.combine", expandTargets)
	}

	grid := w.b.Build()
	return &models.StepResult{
		Type:  models.ProblemAlgebraExpand,
		Steps: steps.Steps(),
		Grid:  grid,
		Meta:  grid.Meta(0, 0),
		Difficulty: map[string]any{
			"problem":         Flatten(problem),
			"expanded":        Flatten(expanded),
			"combined":        Flatten(combined),
			"terms":           len(c.Terms),
			"negative_factor": strings.HasPrefix(Flatten(problem), "-"),
			"needs_combine":   needsCombine,
		},
	}, nil
}

func (e *AlgebraEngine) Validate(state engine.StepState) models.ValidationResult {
	originals := []Node{parseStored(state.Result, "problem")}
	if state.Step.Kind == models.StepAlgebraSimplify {
		originals = append(originals, parseStored(state.Result, "expanded"))
		return validateAnswer(state, "combine_like_terms", originals...)
	}
	return validateAnswer(state, "distributive_law", originals...)
}
