package algebra

import (
	"github.com/Duly330AI/Matheheftt-sub000/internal/models"
)

// Diagnosis explains a student answer
type Diagnosis struct {
	Correct    bool
	ErrorType  models.ErrorType
	Severity   models.Severity
	MessageKey string
}

// Diagnose classifies a parsed student answer against the expected answer.
// originals are the earlier forms of the task; handing one of them back
// unchanged counts as not having started. Checks run from the most
// specific explanation to the most generic.
func Diagnose(student, expected Node, originals ...Node) Diagnosis {
	cmp := Compare(student, expected)
	if cmp.Identical {
		return correct()
	}

	printed := Flatten(student)
	for _, o := range originals {
		if o != nil && printed == Flatten(o) {
			return diagnosis(models.ErrorIncomplete, models.SeverityProcedural)
		}
	}

	if cmp.Equivalent {
		if cmp.Student.Raw > cmp.Expected.Raw {
			constants := cmp.Student.ConstantsUncombined() && !cmp.Expected.ConstantsUncombined()
			likes := cmp.Student.RepeatedLikeVar && !cmp.Expected.RepeatedLikeVar
			switch {
			case constants && likes:
				return diagnosis(models.ErrorPartialSimplification, models.SeverityProcedural)
			case constants:
				return diagnosis(models.ErrorConstantNotCombined, models.SeverityMinor)
			case likes:
				return diagnosis(models.ErrorLikeTermNotCombined, models.SeverityProcedural)
			default:
				return diagnosis(models.ErrorPartialSimplification, models.SeverityProcedural)
			}
		}
		// same terms in another order, or already further combined
		return correct()
	}

	if !sameKeys(variableSet(student), variableSet(expected)) {
		return diagnosis(models.ErrorVariableMismatch, models.SeverityConceptual)
	}
	if signMisapplied(signature(student), signature(expected)) {
		return diagnosis(models.ErrorSignMisapplication, models.SeverityProcedural)
	}
	return diagnosis(models.ErrorConceptual, models.SeverityConceptual)
}

// signMisapplied reports terms that match in magnitude but not all in sign
func signMisapplied(student, expected map[string]int64) bool {
	if len(student) != len(expected) {
		return false
	}
	flipped := false
	for key, want := range expected {
		got, ok := student[key]
		if !ok {
			return false
		}
		switch got {
		case want:
		case -want:
			flipped = true
		default:
			return false
		}
	}
	return flipped
}

func sameKeys(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

func correct() Diagnosis {
	return Diagnosis{Correct: true, ErrorType: models.ErrorNone, Severity: models.SeverityNone}
}

func diagnosis(t models.ErrorType, s models.Severity) Diagnosis {
	return Diagnosis{ErrorType: t, Severity: s, MessageKey: MessageKey(t)}
}
