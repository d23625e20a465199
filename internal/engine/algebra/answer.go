package algebra

import (
	"errors"
	"strings"

	"github.com/Duly330AI/Matheheftt-sub000/internal/engine"
	"github.com/Duly330AI/Matheheftt-sub000/internal/models"
)

// answerSlack is the minimum number of extra answer cells beyond the
// expected length, so an equivalent answer written a little longer still fits.
const answerSlack = 2

// slackFor sizes the answer row so that the source expression copied
// back, or only partly simplified, fits as well as the expected answer.
func slackFor(source, expected []Glyph) int {
	return max(answerSlack, len(source)-len(expected))
}

// rowWriter lays glyphs out left to right on row 0
type rowWriter struct {
	b   *engine.GridBuilder
	col int
}

func newRowWriter() *rowWriter {
	return &rowWriter{b: engine.NewGridBuilder(1, 0)}
}

func roleOf(g Glyph) models.CellRole {
	switch g.Kind {
	case GlyphNumber, GlyphVariable:
		return models.RoleAlgebraTerm
	}
	return models.RoleOperator
}

// given writes fixed glyphs and returns their positions
func (w *rowWriter) given(glyphs []Glyph) []models.Position {
	out := make([]models.Position, 0, len(glyphs))
	for _, g := range glyphs {
		p := models.Pos(0, w.col)
		w.b.Given(p, g.Text, roleOf(g))
		out = append(out, p)
		w.col++
	}
	return out
}

// answer writes editable cells for glyphs plus slack cells expected empty
func (w *rowWriter) answer(glyphs []Glyph, slack int) ([]models.Position, []string) {
	var targets []models.Position
	var values []string
	for _, g := range glyphs {
		p := models.Pos(0, w.col)
		w.b.Target(p, g.Text, models.RoleAlgebraTerm)
		targets = append(targets, p)
		values = append(values, g.Text)
		w.col++
	}
	for i := 0; i < slack; i++ {
		p := models.Pos(0, w.col)
		w.b.Target(p, "", models.RoleAlgebraTerm)
		targets = append(targets, p)
		values = append(values, "")
		w.col++
	}
	return targets, values
}

func (w *rowWriter) equals() {
	w.given([]Glyph{{Text: "=", Kind: GlyphEquals}})
}

// readAnswer joins the student's entries in the target cells
func readAnswer(grid models.Grid, targets []models.Position) string {
	var b strings.Builder
	for _, p := range targets {
		b.WriteString(engine.NormalizeInput(grid.Value(p)))
	}
	return b.String()
}

// validateAnswer checks a free-form answer typed into the step's cells.
// Only input that does not parse as a finished expression yet, such as a
// trailing operator or an open parenthesis, is pending.
func validateAnswer(state engine.StepState, skill string, originals ...Node) models.ValidationResult {
	step := state.Step
	answer := readAnswer(state.Grid, step.Targets)
	expectedText := strings.Join(step.ExpectedValues, "")
	if answer == "" {
		_, missing := engine.CheckTargets(step, state.Grid)
		return models.PendingResult(missing)
	}

	highlight := step.Dependencies
	if len(highlight) == 0 {
		highlight = step.Targets
	}

	student, err := Parse(answer)
	switch {
	case errors.Is(err, ErrIncomplete):
		return models.PendingResult(nil)
	case err != nil:
		return failure(models.ErrorInvalidStructure, models.SeverityProcedural, step.Targets, skill)
	}
	expected, err := Parse(expectedText)
	if err != nil {
		return failure(models.ErrorConceptual, models.SeverityConceptual, highlight, skill)
	}

	d := Diagnose(student, expected, originals...)
	if d.Correct {
		return models.CorrectResult()
	}

	res := failure(d.ErrorType, d.Severity, highlight, skill)
	res.Mismatches, _ = engine.CheckTargets(step, state.Grid)
	return res
}

// parseStored re-reads an expression kept in the result metadata
func parseStored(res *models.StepResult, key string) Node {
	n, err := Parse(res.DifficultyString(key))
	if err != nil {
		return nil
	}
	return n
}
