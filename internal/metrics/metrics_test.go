package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/Duly330AI/Matheheftt-sub000/internal/models"
)

func TestOutcome(t *testing.T) {
	assert.Equal(t, "correct", Outcome(models.CorrectResult()))
	assert.Equal(t, "pending", Outcome(models.PendingResult(nil)))
	assert.Equal(t, "error", Outcome(models.ValidationResult{ErrorType: models.ErrorCarry}))
}

func TestRecordValidation(t *testing.T) {
	counter := validations.WithLabelValues("addition", "error", string(models.ErrorCarry))
	before := testutil.ToFloat64(counter)

	RecordValidation("addition", models.ValidationResult{ErrorType: models.ErrorCarry})
	RecordValidation("addition", models.ValidationResult{ErrorType: models.ErrorCarry})

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
}

func TestSessionGauge(t *testing.T) {
	before := testutil.ToFloat64(activeSessions)
	SessionOpened()
	SessionOpened()
	SessionClosed(models.SessionFinished)
	assert.Equal(t, before+1, testutil.ToFloat64(activeSessions))

	RecordGeneration("division", "ok", time.Millisecond, 9)
	assert.Equal(t, 1.0, testutil.ToFloat64(generations.WithLabelValues("division", "ok")))
}
