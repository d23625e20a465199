package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Duly330AI/Matheheftt-sub000/internal/models"
)

var (
	_ StateCache = (*RedisStateCache)(nil)
	_ StateCache = NopCache{}
	_ EventSink  = (*PostgresEventSink)(nil)
	_ EventSink  = NopSink{}
	_ EventSink  = (*MemorySink)(nil)
	_ Provider   = (*RedisStateCache)(nil)
	_ Provider   = (*PostgresEventSink)(nil)
)

type fakeProvider struct {
	BaseProvider
	healthErr error
	closed    bool
}

func (f *fakeProvider) HealthCheck(ctx context.Context) error { return f.healthErr }
func (f *fakeProvider) Close() error                          { f.closed = true; return nil }

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	redis := &fakeProvider{BaseProvider: BaseProvider{serviceType: "redis"}}
	pg := &fakeProvider{BaseProvider: BaseProvider{serviceType: "postgres"}, healthErr: errors.New("down")}
	r.Register("redis", redis)
	r.Register("postgres", pg)

	assert.Equal(t, []string{"postgres", "redis"}, r.Names())
	assert.Equal(t, "redis", redis.Type())

	report := r.Check(context.Background())
	assert.False(t, report.Ready)
	assert.Equal(t, "ok", report.Services["redis"])
	assert.Equal(t, "down", report.Services["postgres"])

	require.NoError(t, r.CloseAll())
	assert.True(t, redis.closed)
	assert.True(t, pg.closed)
	assert.Empty(t, r.Names())
	assert.True(t, r.Check(context.Background()).Ready)
}

func TestPositionsRoundTrip(t *testing.T) {
	ps := []models.Position{models.Pos(0, 4), models.Pos(12, 3)}
	encoded := encodePositions(ps)
	assert.Equal(t, []string{"0,4", "12,3"}, encoded)
	assert.Equal(t, ps, decodePositions(append(encoded, "garbage", "1,x")))
}

func TestNopBackends(t *testing.T) {
	ctx := context.Background()
	_, err := NopCache{}.Load(ctx, "s1")
	assert.ErrorIs(t, err, ErrCacheMiss)

	events, err := NopSink{}.ListBySession(ctx, "s1", 10)
	assert.NoError(t, err)
	assert.Empty(t, events)
}

func TestMemorySink(t *testing.T) {
	ctx := context.Background()
	sink := NewMemorySink()
	for _, id := range []string{"e1", "e2", "e3"} {
		require.NoError(t, sink.Record(ctx, models.AttemptEvent{ID: id, SessionID: "s1"}))
	}
	require.NoError(t, sink.Record(ctx, models.AttemptEvent{ID: "other", SessionID: "s2"}))

	events, err := sink.ListBySession(ctx, "s1", 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "e3", events[0].ID)
	assert.Equal(t, "e2", events[1].ID)

	events, err = sink.ListBySession(ctx, "s1", 0)
	require.NoError(t, err)
	assert.Len(t, events, 3)

	sink.Forget("s1")
	events, err = sink.ListBySession(ctx, "s1", 10)
	require.NoError(t, err)
	assert.Empty(t, events)

	events, err = sink.ListBySession(ctx, "s2", 10)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestStateKey(t *testing.T) {
	assert.Equal(t, "matheheft:session:abc", stateKey("abc"))
}
