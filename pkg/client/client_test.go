package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Duly330AI/Matheheftt-sub000/internal/api"
	"github.com/Duly330AI/Matheheftt-sub000/internal/config"
	"github.com/Duly330AI/Matheheftt-sub000/internal/engine/builtin"
	"github.com/Duly330AI/Matheheftt-sub000/internal/models"
	"github.com/Duly330AI/Matheheftt-sub000/internal/practice"
	"github.com/Duly330AI/Matheheftt-sub000/internal/services"
	"github.com/Duly330AI/Matheheftt-sub000/internal/session"
	"github.com/Duly330AI/Matheheftt-sub000/internal/storage"
	"github.com/Duly330AI/Matheheftt-sub000/internal/templates"
)

const testKey = "sk_client_test_key"

func newTestService(t *testing.T) *httptest.Server {
	t.Helper()
	registry := builtin.NewRegistry()
	loader := templates.NewLoader(nil)
	require.NoError(t, loader.LoadFromDir(filepath.Join("..", "..", "catalog")))

	repo := storage.NewMemoryRepository(&models.ApiClient{
		Name:        "sdk",
		ApiKey:      testKey,
		IsActive:    true,
		Permissions: []string{"*"},
	})
	manager := practice.NewManager(registry, loader, repo, practice.Options{Events: services.NewMemorySink()})
	srv := api.NewServer(config.ServerConfig{}, registry, manager, loader, repo, nil, true)

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func TestClientSession(t *testing.T) {
	ts := newTestService(t)
	c := NewClient(ts.URL, testKey)
	ctx := context.Background()

	require.NoError(t, c.Health(ctx))

	engines, err := c.ListEngines(ctx)
	require.NoError(t, err)
	assert.Len(t, engines, 7)

	topics, err := c.ListTopics(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, topics)

	presets, err := c.ListPresets(ctx, "written-addition")
	require.NoError(t, err)
	assert.Len(t, presets, 3)

	view, err := c.CreateSession(ctx, models.CreateSessionRequest{PresetID: "written-addition/no-carry"})
	require.NoError(t, err)
	id := view.Session.ID
	assert.Equal(t, "addition", view.Session.EngineID)
	assert.Equal(t, session.StatusSolving, view.State.Status)

	step, ok := view.State.Step()
	require.True(t, ok)
	p := step.Targets[0]
	view, err = c.Input(ctx, id, models.CellID(p.Row, p.Col), step.ExpectedValues[0])
	require.NoError(t, err)
	assert.Equal(t, session.StatusCorrect, view.State.Status)

	view, err = c.Next(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, view.State.StepIndex)

	view, err = c.Reset(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 0, view.State.StepIndex)

	_, err = c.Undo(ctx, id)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "invalid_transition", apiErr.Code)

	_, err = c.Clear(ctx, id)
	require.NoError(t, err)

	sessions, err := c.ListSessions(ctx, ListOptions{EngineID: "addition", Limit: 10})
	require.NoError(t, err)
	assert.Len(t, sessions, 1)

	attempts, err := c.Attempts(ctx, id, 10)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.True(t, attempts[0].Correct)
	assert.Equal(t, models.StepAddColumn, attempts[0].StepKind)

	require.NoError(t, c.DeleteSession(ctx, id))
	_, err = c.GetSession(ctx, id)
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestClientAuthError(t *testing.T) {
	ts := newTestService(t)
	c := NewClient(ts.URL, "sk_wrong_key_1234")

	_, err := c.ListEngines(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "invalid_api_key", apiErr.Code)
}
