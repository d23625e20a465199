package storage

import (
	"context"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Duly330AI/Matheheftt-sub000/internal/models"
)

var _ Repository = (*PostgresRepository)(nil)
var _ Repository = (*MemoryRepository)(nil)

func TestMemoryRepositorySessions(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	now := time.Now()

	for i, engineID := range []string{"addition", "division", "addition"} {
		require.NoError(t, repo.CreateSession(ctx, &models.Session{
			ID:           engineID + string(rune('a'+i)),
			EngineID:     engineID,
			Status:       models.SessionActive,
			Params:       map[string]any{"n": i},
			CreatedAt:    now.Add(time.Duration(i) * time.Minute),
			LastActiveAt: now.Add(time.Duration(i) * time.Minute),
		}))
	}
	assert.Error(t, repo.CreateSession(ctx, &models.Session{ID: "additiona"}))

	s, err := repo.GetSession(ctx, "additiona")
	require.NoError(t, err)
	require.NotNil(t, s)
	s.Params["n"] = 99
	again, _ := repo.GetSession(ctx, "additiona")
	assert.Equal(t, 0, again.Params["n"])

	missing, err := repo.GetSession(ctx, "nope")
	assert.NoError(t, err)
	assert.Nil(t, missing)

	list, err := repo.ListSessions(ctx, models.ListFilters{EngineID: "addition"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "additionc", list[0].ID)

	list, err = repo.ListSessions(ctx, models.ListFilters{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "divisionb", list[0].ID)

	s.Status = models.SessionFinished
	require.NoError(t, repo.UpdateSession(ctx, s))
	idle, err := repo.GetIdleSessions(ctx, now.Add(90*time.Second))
	require.NoError(t, err)
	require.Len(t, idle, 1)
	assert.Equal(t, "divisionb", idle[0].ID)

	require.NoError(t, repo.DeleteSession(ctx, "divisionb"))
	assert.Error(t, repo.DeleteSession(ctx, "divisionb"))
	assert.Error(t, repo.UpdateSession(ctx, &models.Session{ID: "divisionb"}))
}

func TestMemoryRepositoryClients(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository(&models.ApiClient{Name: "tutor-ui", ApiKey: "key-123456789", IsActive: true})

	c, err := repo.GetClientByApiKey(ctx, "key-123456789")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Nil(t, c.LastUsedAt)

	require.NoError(t, repo.UpdateClientLastUsed(ctx, "key-123456789"))
	assert.NotNil(t, c.LastUsedAt)

	c, err = repo.GetClientByApiKey(ctx, "other")
	assert.NoError(t, err)
	assert.Nil(t, c)
}

func TestPendingMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"002_b.sql": {Data: []byte("SELECT 2")},
		"001_a.sql": {Data: []byte("SELECT 1")},
		"003_c.sql": {Data: []byte("SELECT 3")},
		"README.md": {Data: []byte("notes")},
		"old/x.sql": {Data: []byte("SELECT 0")},
	}

	pending, err := pendingMigrations(fsys, map[string]bool{"002_b.sql": true})
	require.NoError(t, err)
	assert.Equal(t, []string{"001_a.sql", "003_c.sql"}, pending)
}

func TestEmbeddedMigrations(t *testing.T) {
	fsys, err := Migrations("")
	require.NoError(t, err)

	pending, err := pendingMigrations(fsys, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_sessions.sql", "002_api_clients.sql", "003_attempt_events.sql"}, pending)

	_, err = Migrations("/does/not/exist")
	assert.Error(t, err)
}
