// Package builtin wires every engine shipped with the service into a
// registry.
package builtin

import (
	"github.com/Duly330AI/Matheheftt-sub000/internal/engine"
	"github.com/Duly330AI/Matheheftt-sub000/internal/engine/algebra"
	"github.com/Duly330AI/Matheheftt-sub000/internal/engine/arithmetic"
	"github.com/Duly330AI/Matheheftt-sub000/internal/models"
)

// Engine ids
const (
	Addition          = "addition"
	Subtraction       = "subtraction"
	Multiplication    = "multiplication"
	Division          = "division"
	AlgebraExpand     = "algebra_expand"
	SimplifyTerms     = "simplify_terms"
	InsertParentheses = "insert_parentheses"
)

// Registrations returns the built-in engines in display order
func Registrations() []engine.Registration {
	return []engine.Registration{
		{
			Info: engine.Info{
				ID:          Addition,
				Name:        "Written addition",
				Description: "Column addition of up to six numbers with carries",
				Type:        models.ProblemAddition,
				Skills:      []string{"column_addition", "carry"},
				DifficultySchema: map[string]string{
					"operands": "number of summands",
					"digits":   "digits of the longest summand",
					"carries":  "carry steps in the solution",
				},
			},
			New:       func() engine.Engine { return arithmetic.NewAddition() },
			NewConfig: func() engine.Config { return &arithmetic.AdditionConfig{} },
		},
		{
			Info: engine.Info{
				ID:          Subtraction,
				Name:        "Written subtraction",
				Description: "Column subtraction by borrowing or by the complement method",
				Type:        models.ProblemSubtraction,
				Skills:      []string{"column_subtraction", "borrow"},
				DifficultySchema: map[string]string{
					"method":   "borrow or complement",
					"negative": "result is negative",
					"digits":   "digits of the minuend",
					"carries":  "borrow or carry steps in the solution",
				},
			},
			New:       func() engine.Engine { return arithmetic.NewSubtraction() },
			NewConfig: func() engine.Config { return &arithmetic.SubtractionConfig{} },
		},
		{
			Info: engine.Info{
				ID:          Multiplication,
				Name:        "Written multiplication",
				Description: "Long multiplication with partial products",
				Type:        models.ProblemMultiplication,
				Skills:      []string{"column_multiplication", "place_value", "column_addition"},
				DifficultySchema: map[string]string{
					"multiplicand_digits": "digits of the multiplicand",
					"multiplier_digits":   "digits of the multiplier",
					"carries":             "carry steps in the solution",
				},
			},
			New:       func() engine.Engine { return arithmetic.NewMultiplication() },
			NewConfig: func() engine.Config { return &arithmetic.MultiplicationConfig{} },
		},
		{
			Info: engine.Info{
				ID:          Division,
				Name:        "Long division",
				Description: "Written division with bring-down and remainder",
				Type:        models.ProblemDivision,
				Skills:      []string{"long_division", "estimation", "column_subtraction"},
				DifficultySchema: map[string]string{
					"dividend_digits": "digits of the dividend",
					"divisor_digits":  "digits of the divisor",
					"quotient_digits": "digits of the quotient",
					"has_remainder":   "division leaves a remainder",
					"carries":         "borrow steps in the solution",
				},
			},
			New:       func() engine.Engine { return arithmetic.NewDivision() },
			NewConfig: func() engine.Config { return &arithmetic.DivisionConfig{} },
		},
		{
			Info: engine.Info{
				ID:          AlgebraExpand,
				Name:        "Expand brackets",
				Description: "Multiply out a factor and combine the resulting like terms",
				Type:        models.ProblemAlgebraExpand,
				Skills:      []string{"distributive_law", "combine_like_terms"},
				DifficultySchema: map[string]string{
					"terms":           "summands inside the brackets",
					"negative_factor": "the factor is negative",
					"needs_combine":   "a second combining step follows",
				},
			},
			New:       func() engine.Engine { return algebra.NewAlgebraEngine() },
			NewConfig: func() engine.Config { return &algebra.AlgebraConfig{} },
		},
		{
			Info: engine.Info{
				ID:          SimplifyTerms,
				Name:        "Combine like terms",
				Description: "Collect constants and like terms of a sum",
				Type:        models.ProblemSimplifyTerms,
				Skills:      []string{"combine_like_terms"},
				DifficultySchema: map[string]string{
					"level":     "1 constants, 2 like terms, 3 mixed with subtraction",
					"terms":     "summands in the task",
					"remaining": "summands in the answer",
				},
			},
			New:       func() engine.Engine { return algebra.NewSimplifyTermsEngine() },
			NewConfig: func() engine.Config { return &algebra.SimplifyConfig{} },
		},
		{
			Info: engine.Info{
				ID:          InsertParentheses,
				Name:        "Insert parentheses",
				Description: "Place one pair of parentheses so the expression reaches a target",
				Type:        models.ProblemParentheses,
				Skills:      []string{"order_of_operations", "parentheses"},
				DifficultySchema: map[string]string{
					"numbers": "numbers in the expression",
					"target":  "value to reach",
				},
			},
			New:       func() engine.Engine { return algebra.NewParenthesesInsertionEngine() },
			NewConfig: func() engine.Config { return &algebra.ParenthesesConfig{} },
		},
	}
}

// NewRegistry builds a registry holding every built-in engine. It is meant
// to be called once at startup and the result passed to whoever starts
// sessions.
func NewRegistry() *engine.Registry {
	r := engine.NewRegistry()
	for _, reg := range Registrations() {
		r.MustRegister(reg)
	}
	return r
}
