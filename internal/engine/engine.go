// Package engine defines the contract shared by every problem engine: a pure
// Generate that turns a configuration into a worked, step-decomposed grid and
// a pure Validate that checks the student's grid against one step.
package engine

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/Duly330AI/Matheheftt-sub000/internal/models"
)

// Construction errors. Generate returns them for configurations a caller must not pass.
var (
	ErrInvalidConfig  = errors.New("invalid problem configuration")
	ErrDivisionByZero = fmt.Errorf("%w: division by zero", ErrInvalidConfig)
	ErrNegativeResult = fmt.Errorf("%w: negative result not allowed", ErrInvalidConfig)
	ErrOperandCount   = fmt.Errorf("%w: invalid operand count", ErrInvalidConfig)
)

// Engine is implemented by every problem variant
type Engine interface {
	// Generate builds the fully worked grid and its ordered steps
	Generate(cfg Config) (*models.StepResult, error)

	// Validate checks the student's grid against one step. It never fails;
	// malformed input is reported through the result.
	Validate(state StepState) models.ValidationResult
}

// Config is a typed problem configuration
type Config interface {
	Validate() error
}

// StepState is everything Validate needs: the generated result, the step
// under test and the student's current grid.
type StepState struct {
	Result *models.StepResult
	Step   models.Step
	Grid   models.Grid
}

var validate = validator.New()

// ValidateStruct runs struct-tag validation and wraps failures in ErrInvalidConfig
func ValidateStruct(cfg any) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// DecodeParams fills a typed config from loosely typed parameters (JSON body,
// YAML preset) and validates it.
func DecodeParams(params map[string]any, into Config) error {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := json.Unmarshal(data, into); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return into.Validate()
}

// ConfigAs asserts the concrete config type an engine expects
func ConfigAs[T Config](cfg Config) (T, error) {
	typed, ok := cfg.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: unexpected config type %T", ErrInvalidConfig, cfg)
	}
	return typed, nil
}
