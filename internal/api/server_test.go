package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Duly330AI/Matheheftt-sub000/internal/config"
	"github.com/Duly330AI/Matheheftt-sub000/internal/engine/builtin"
	"github.com/Duly330AI/Matheheftt-sub000/internal/models"
	"github.com/Duly330AI/Matheheftt-sub000/internal/practice"
	"github.com/Duly330AI/Matheheftt-sub000/internal/session"
	"github.com/Duly330AI/Matheheftt-sub000/internal/storage"
	"github.com/Duly330AI/Matheheftt-sub000/internal/templates"
)

const (
	tutorKey  = "sk_tutor_0123456789"
	readerKey = "sk_reader_0123456789"
	frozenKey = "sk_frozen_0123456789"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *apiError       `json:"error"`
}

func newTestServer(t *testing.T, authEnabled bool) *Server {
	t.Helper()
	registry := builtin.NewRegistry()
	loader := templates.NewLoader(func(engineID string, params map[string]any) error {
		_, _, err := registry.Generate(engineID, params)
		return err
	})
	require.NoError(t, loader.LoadFromDir(filepath.Join("..", "..", "catalog")))

	repo := storage.NewMemoryRepository(
		&models.ApiClient{Name: "tutor-ui", ApiKey: tutorKey, IsActive: true, Permissions: []string{"*"}},
		&models.ApiClient{Name: "dashboard", ApiKey: readerKey, IsActive: true, Permissions: []string{models.PermSessionsRead, models.PermCatalogRead}},
		&models.ApiClient{Name: "retired", ApiKey: frozenKey, IsActive: false, Permissions: []string{"*"}},
	)
	manager := practice.NewManager(registry, loader, repo, practice.Options{})
	return NewServer(config.ServerConfig{Host: "127.0.0.1", Port: 8080}, registry, manager, loader, repo, nil, authEnabled)
}

func do(t *testing.T, s *Server, method, path, key string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func decodeView(t *testing.T, env envelope) practice.View {
	t.Helper()
	var view practice.View
	require.NoError(t, json.Unmarshal(env.Data, &view))
	return view
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, true)

	rec, env := do(t, s, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	rec, _ = do(t, s, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, s, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestAuthentication(t *testing.T) {
	s := newTestServer(t, true)

	tests := []struct {
		name   string
		method string
		key    string
		status int
		code   string
	}{
		{"missing key", http.MethodGet, "", http.StatusUnauthorized, "missing_api_key"},
		{"unknown key", http.MethodGet, "sk_unknown_key", http.StatusUnauthorized, "invalid_api_key"},
		{"inactive client", http.MethodGet, frozenKey, http.StatusUnauthorized, "client_inactive"},
		{"read only client writes", http.MethodPost, readerKey, http.StatusForbidden, "permission_denied"},
		{"read only client reads", http.MethodGet, readerKey, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, s, tt.method, "/api/v1/sessions", tt.key, map[string]any{"engine_id": "addition"})
			assert.Equal(t, tt.status, rec.Code)
			if tt.code != "" {
				require.NotNil(t, env.Error)
				assert.Equal(t, tt.code, env.Error.Code)
			}
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/engines", nil)
	req.Header.Set("Authorization", "Bearer "+tutorKey)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthDisabled(t *testing.T) {
	s := newTestServer(t, false)

	rec, _ := do(t, s, http.MethodGet, "/api/v1/engines", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env := do(t, s, http.MethodPost, "/api/v1/sessions", "", map[string]any{
		"engine_id": "addition",
		"params":    map[string]any{"operands": []int{12, 34}},
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Empty(t, decodeView(t, env).Session.CreatedBy)
}

func TestEngineRoutes(t *testing.T) {
	s := newTestServer(t, true)

	rec, env := do(t, s, http.MethodGet, "/api/v1/engines", tutorKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Equal(t, 7, list.Total)

	rec, env = do(t, s, http.MethodGet, "/api/v1/engines/division", tutorKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"id":"division"`)

	rec, _ = do(t, s, http.MethodGet, "/api/v1/engines/fractions", tutorKey, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCatalogRoutes(t *testing.T) {
	s := newTestServer(t, true)

	rec, env := do(t, s, http.MethodGet, "/api/v1/catalog/topics", readerKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var topics struct {
		Topics []models.Topic `json:"topics"`
		Total  int            `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &topics))
	assert.Equal(t, 6, topics.Total)

	rec, env = do(t, s, http.MethodGet, "/api/v1/catalog/topics/written-addition/presets", readerKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var presets struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &presets))
	assert.Equal(t, 3, presets.Total)

	rec, env = do(t, s, http.MethodGet, "/api/v1/catalog/presets/written-addition/no-carry", readerKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var preset models.Preset
	require.NoError(t, json.Unmarshal(env.Data, &preset))
	assert.Equal(t, "addition", preset.EngineID)

	rec, _ = do(t, s, http.MethodGet, "/api/v1/catalog/topics/fractions", readerKey, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec, _ = do(t, s, http.MethodGet, "/api/v1/catalog/topics/fractions/presets", readerKey, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec, _ = do(t, s, http.MethodGet, "/api/v1/catalog/presets/written-addition/missing", readerKey, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateSessionErrors(t *testing.T) {
	s := newTestServer(t, true)

	tests := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{"malformed body", "{", http.StatusBadRequest, "invalid_request"},
		{"neither engine nor preset", map[string]any{}, http.StatusBadRequest, "validation_error"},
		{"unknown engine", map[string]any{"engine_id": "fractions"}, http.StatusNotFound, "engine_not_found"},
		{"unknown preset", map[string]any{"preset_id": "written-addition/missing"}, http.StatusNotFound, "preset_not_found"},
		{"division by zero", map[string]any{
			"engine_id": "division",
			"params":    map[string]any{"dividend": 84, "divisor": 0},
		}, http.StatusUnprocessableEntity, "invalid_config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, s, http.MethodPost, "/api/v1/sessions", tutorKey, tt.body)
			assert.Equal(t, tt.status, rec.Code)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestServer(t, true)

	rec, env := do(t, s, http.MethodPost, "/api/v1/sessions", tutorKey, map[string]any{
		"engine_id": "addition",
		"params":    map[string]any{"operands": []int{345, 678}},
		"metadata":  map[string]string{"student": "s-17"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	view := decodeView(t, env)
	id := view.Session.ID
	assert.Equal(t, "tutor-ui", view.Session.CreatedBy)
	assert.Equal(t, session.StatusSolving, view.State.Status)
	base := "/api/v1/sessions/" + id

	rec, env = do(t, s, http.MethodPost, base+"/input", tutorKey, map[string]any{"cell_id": "r4-c4", "value": "5"})
	require.Equal(t, http.StatusOK, rec.Code)
	view = decodeView(t, env)
	assert.Equal(t, session.StatusError, view.State.Status)
	require.NotNil(t, view.State.Validation)
	assert.Equal(t, models.ErrorCalculation, view.State.Validation.ErrorType)
	assert.Equal(t, 1, view.Session.Mistakes)

	rec, env = do(t, s, http.MethodPost, base+"/next", tutorKey, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "invalid_transition", env.Error.Code)

	rec, env = do(t, s, http.MethodPost, base+"/input", tutorKey, map[string]any{"cell_id": "r0-c2", "value": "1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "cell_not_editable", env.Error.Code)

	rec, env = do(t, s, http.MethodPost, base+"/input", tutorKey, map[string]any{"value": "1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", env.Error.Code)

	rec, env = do(t, s, http.MethodPost, base+"/undo", tutorKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, session.StatusSolving, decodeView(t, env).State.Status)

	rec, env = do(t, s, http.MethodPost, base+"/input", tutorKey, map[string]any{"cell_id": "r4-c4", "value": "3"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, session.StatusCorrect, decodeView(t, env).State.Status)

	rec, env = do(t, s, http.MethodPost, base+"/next", tutorKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decodeView(t, env).State.StepIndex)

	rec, env = do(t, s, http.MethodPost, base+"/clear", tutorKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env = do(t, s, http.MethodPost, base+"/reset", tutorKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decodeView(t, env).State.StepIndex)

	rec, env = do(t, s, http.MethodGet, base, readerKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "s-17", decodeView(t, env).Session.Metadata["student"])

	rec, env = do(t, s, http.MethodGet, "/api/v1/sessions?engine_id=addition", readerKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), id)

	rec, env = do(t, s, http.MethodGet, base+"/attempts", readerKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"total":0`)

	rec, _ = do(t, s, http.MethodDelete, base, tutorKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env = do(t, s, http.MethodGet, base, readerKey, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", env.Error.Code)

	rec, _ = do(t, s, http.MethodDelete, base, tutorKey, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLiveChannel(t *testing.T) {
	s := newTestServer(t, true)
	rec, env := do(t, s, http.MethodPost, "/api/v1/sessions", tutorKey, map[string]any{
		"engine_id": "addition",
		"params":    map[string]any{"operands": []int{345, 678}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeView(t, env).Session.ID

	srv := httptest.NewServer(s.Router())
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/sessions/" + id + "/live?api_key=" + tutorKey

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	var msg LiveMessage
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, "state", msg.Type)
	assert.Equal(t, session.StatusSolving, msg.State.State.Status)

	require.NoError(t, conn.WriteJSON(LiveMessage{Type: "input", CellID: "r4-c4", Value: "7"}))
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, "state", msg.Type)
	assert.Equal(t, session.StatusError, msg.State.State.Status)

	msg = LiveMessage{}
	require.NoError(t, conn.WriteJSON(LiveMessage{Type: "next"}))
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, "error", msg.Type)
	assert.Equal(t, "invalid_transition", msg.Error.Code)

	msg = LiveMessage{}
	require.NoError(t, conn.WriteJSON(LiveMessage{Type: "dance"}))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "invalid_request", msg.Error.Code)

	msg = LiveMessage{}
	require.NoError(t, conn.WriteJSON(LiveMessage{Type: "input", CellID: "r4-c4", Value: "3"}))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, session.StatusCorrect, msg.State.State.Status)

	_, _, err = websocket.DefaultDialer.Dial(strings.Replace(url, id, "missing", 1), nil)
	assert.Error(t, err)
}
