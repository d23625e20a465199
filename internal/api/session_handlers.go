package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Duly330AI/Matheheftt-sub000/internal/models"
	"github.com/Duly330AI/Matheheftt-sub000/internal/practice"
)

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSessionRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	// Identify who created the session
	createdBy := ""
	if client := ClientFromContext(r.Context()); client != nil {
		createdBy = client.Name
	}

	view, err := s.manager.Create(r.Context(), req, createdBy)
	if err != nil {
		respondManagerError(w, err, "create session", "")
		return
	}

	respondJSON(w, http.StatusCreated, view)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := models.ListFilters{
		EngineID: q.Get("engine_id"),
		Status:   models.SessionStatus(q.Get("status")),
		Limit:    queryInt(r, "limit", 50),
		Offset:   queryInt(r, "offset", 0),
	}

	sessions, err := s.manager.List(r.Context(), filters)
	if err != nil {
		slog.Error("failed to list sessions", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list sessions")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"sessions": sessions,
		"total":    len(sessions),
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	view, err := s.manager.Get(r.Context(), id)
	if err != nil {
		respondManagerError(w, err, "get session", id)
		return
	}

	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.manager.Delete(r.Context(), id); err != nil {
		respondManagerError(w, err, "delete session", id)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "session deleted",
	})
}

func (s *Server) handleInput(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.InputRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	view, err := s.manager.Input(r.Context(), id, req.CellID, req.Value)
	if err != nil {
		respondManagerError(w, err, "apply input", id)
		return
	}

	respondJSON(w, http.StatusOK, view)
}

// handleAction serves the body-less controller transitions (next, undo, reset, clear)
func (s *Server) handleAction(action func(ctx context.Context, id string) (*practice.View, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		view, err := action(r.Context(), id)
		if err != nil {
			respondManagerError(w, err, "update session", id)
			return
		}

		respondJSON(w, http.StatusOK, view)
	}
}

func (s *Server) handleListAttempts(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	events, err := s.manager.Attempts(r.Context(), id, queryInt(r, "limit", 100))
	if err != nil {
		respondManagerError(w, err, "list attempts", id)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"attempts": events,
		"total":    len(events),
	})
}

// queryInt reads a non-negative integer query parameter
func queryInt(r *http.Request, name string, def int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}
