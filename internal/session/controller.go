// Package session drives one problem through its steps: it keeps the
// student's grid, validates every input against the current step and
// supports undo through snapshots.
//
// A Controller is not safe for concurrent use; callers serialize access.
package session

import (
	"errors"
	"fmt"

	"github.com/Duly330AI/Matheheftt-sub000/internal/engine"
	"github.com/Duly330AI/Matheheftt-sub000/internal/models"
)

var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrCellNotFound      = errors.New("cell not found")
	ErrCellNotEditable   = errors.New("cell not editable")
)

// Controller is the state machine for one practice session
type Controller struct {
	engine  engine.Engine
	state   State
	history []State
}

// New creates an idle controller around eng
func New(eng engine.Engine) *Controller {
	return &Controller{
		engine: eng,
		state:  State{Status: StatusIdle},
	}
}

// Engine returns the wrapped engine
func (c *Controller) Engine() engine.Engine {
	return c.engine
}

// State returns a deep copy of the current state
func (c *Controller) State() State {
	return c.state.Clone()
}

// Status returns the current status
func (c *Controller) Status() Status {
	return c.state.Status
}

// CanUndo reports whether a snapshot is available
func (c *Controller) CanUndo() bool {
	return len(c.history) > 0
}

// CurrentStep returns the step being worked on
func (c *Controller) CurrentStep() (models.Step, bool) {
	return c.state.Step()
}

// Start generates the problem for cfg and begins solving its first step.
// A configuration error leaves the controller unchanged.
func (c *Controller) Start(cfg engine.Config) error {
	result, err := c.engine.Generate(cfg)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	c.snapshot()
	c.state = State{
		Status: StatusGenerated,
		Result: result,
		Grid:   blankGrid(result.Grid),
	}
	if len(result.Steps) == 0 {
		c.state.Status = StatusFinished
		return nil
	}
	c.state.Status = StatusSolving
	return nil
}

// Input writes value into the cell and validates the current step
func (c *Controller) Input(cellID, value string) (models.ValidationResult, error) {
	if !c.state.Status.AcceptsInput() {
		return models.ValidationResult{}, fmt.Errorf("%w: input while %s", ErrInvalidTransition, c.state.Status)
	}
	pos, ok := c.state.Grid.Find(cellID)
	if !ok {
		return models.ValidationResult{}, fmt.Errorf("%w: %s", ErrCellNotFound, cellID)
	}
	cell, _ := c.state.Grid.At(pos)
	if !cell.Editable {
		return models.ValidationResult{}, fmt.Errorf("%w: %s", ErrCellNotEditable, cellID)
	}
	step, ok := c.state.Step()
	if !ok {
		return models.ValidationResult{}, fmt.Errorf("%w: no current step", ErrInvalidTransition)
	}

	c.snapshot()
	cell, _ = c.state.Grid.At(pos)
	cell.Value = engine.NormalizeInput(value)
	cell.Status = models.CellUnchecked

	result := c.engine.Validate(engine.StepState{
		Result: c.state.Result,
		Step:   step,
		Grid:   c.state.Grid,
	})
	c.apply(step, result)
	return result, nil
}

// apply moves the controller according to a validation outcome
func (c *Controller) apply(step models.Step, result models.ValidationResult) {
	c.state.Validation = &result
	c.clearMarks(step.Targets)

	switch {
	case result.Correct:
		c.mark(step.Targets, models.CellCorrect)
		c.state.Highlight = nil
		c.state.Hint = nil
		c.state.Status = StatusCorrect
	case result.Pending:
		for _, p := range step.Targets {
			if c.state.Grid.Value(p) != "" {
				c.mark([]models.Position{p}, models.CellPending)
			}
		}
		c.state.Highlight = nil
		c.state.Hint = nil
		c.state.Status = StatusSolving
	default:
		wrong := make([]models.Position, 0, len(result.Mismatches))
		for _, m := range result.Mismatches {
			wrong = append(wrong, m.Position)
		}
		c.mark(wrong, models.CellIncorrect)
		c.state.Highlight = clonePositions(step.Targets)
		c.state.Hint = nil
		if hint := result.PrimaryHint(); hint != nil {
			h := *hint
			c.state.Hint = &h
			if len(hint.Highlight) > 0 {
				c.state.Highlight = clonePositions(hint.Highlight)
			}
		}
		c.state.Mistakes++
		c.state.Status = StatusError
	}
}

// Next advances past a solved step
func (c *Controller) Next() error {
	if c.state.Status != StatusCorrect {
		return fmt.Errorf("%w: next while %s", ErrInvalidTransition, c.state.Status)
	}

	c.snapshot()
	c.state.StepIndex++
	c.state.Highlight = nil
	c.state.Hint = nil
	c.state.Validation = nil
	if c.state.StepIndex >= c.state.StepCount() {
		c.state.Status = StatusFinished
		return nil
	}
	c.state.Status = StatusSolving
	return nil
}

// ClearUserInputs blanks every editable cell and keeps the current step
func (c *Controller) ClearUserInputs() error {
	if !c.state.Status.AcceptsInput() {
		return fmt.Errorf("%w: clear while %s", ErrInvalidTransition, c.state.Status)
	}

	c.snapshot()
	c.state.Grid = blankGrid(c.state.Grid)
	c.state.Highlight = nil
	c.state.Hint = nil
	c.state.Validation = nil
	c.state.Status = StatusSolving
	return nil
}

// Undo restores the state before the last transition. It reports false
// when there is nothing to undo.
func (c *Controller) Undo() bool {
	if len(c.history) == 0 {
		return false
	}
	last := len(c.history) - 1
	c.state = c.history[last]
	c.history = c.history[:last]
	return true
}

// Reset drops the problem and the undo history
func (c *Controller) Reset() {
	c.state = State{Status: StatusIdle}
	c.history = nil
}

// Restore replaces the state with s, for example one read back from a
// cache. The undo history is discarded.
func (c *Controller) Restore(s State) {
	c.state = s.Clone()
	c.history = nil
}

func (c *Controller) snapshot() {
	c.history = append(c.history, c.state.Clone())
}

func (c *Controller) mark(positions []models.Position, status models.CellStatus) {
	for _, p := range positions {
		if cell, ok := c.state.Grid.At(p); ok {
			cell.Status = status
		}
	}
}

func (c *Controller) clearMarks(positions []models.Position) {
	c.mark(positions, models.CellUnchecked)
}

// blankGrid copies g with every editable cell emptied
func blankGrid(g models.Grid) models.Grid {
	out := g.Clone()
	for r := range out {
		for col := range out[r] {
			if out[r][col].Editable {
				out[r][col].Value = ""
				out[r][col].Status = models.CellUnchecked
			}
		}
	}
	return out
}
