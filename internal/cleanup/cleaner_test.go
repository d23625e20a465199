package cleanup

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingExpirer struct {
	calls atomic.Int32
	err   error
}

func (e *countingExpirer) ExpireIdle(ctx context.Context) (int, error) {
	e.calls.Add(1)
	return 1, e.err
}

func TestCleanerRunsImmediatelyAndOnTick(t *testing.T) {
	exp := &countingExpirer{}
	c := NewCleaner(exp, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	c.Start(ctx)

	assert.Eventually(t, func() bool { return exp.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
}

func TestCleanerSurvivesErrors(t *testing.T) {
	exp := &countingExpirer{err: errors.New("database unavailable")}
	c := NewCleaner(exp, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.Start(ctx)

	assert.Eventually(t, func() bool { return exp.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
}

func TestNewCleanerDefaultsInterval(t *testing.T) {
	c := NewCleaner(&countingExpirer{}, 0)
	assert.Equal(t, 5*time.Minute, c.interval)
}
