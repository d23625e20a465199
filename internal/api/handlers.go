package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/Duly330AI/Matheheftt-sub000/internal/engine"
	"github.com/Duly330AI/Matheheftt-sub000/internal/practice"
	"github.com/Duly330AI/Matheheftt-sub000/internal/session"
	"github.com/Duly330AI/Matheheftt-sub000/internal/templates"
)

// Response helpers

type apiResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: false,
		Error: &apiError{
			Code:    code,
			Message: message,
		},
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// errorStatus maps domain errors to an HTTP status and error code
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, practice.ErrSessionNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, engine.ErrEngineNotFound):
		return http.StatusNotFound, "engine_not_found"
	case errors.Is(err, templates.ErrPresetNotFound):
		return http.StatusNotFound, "preset_not_found"
	case errors.Is(err, practice.ErrSessionClosed):
		return http.StatusConflict, "session_closed"
	case errors.Is(err, session.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition"
	case errors.Is(err, session.ErrCellNotFound):
		return http.StatusBadRequest, "cell_not_found"
	case errors.Is(err, session.ErrCellNotEditable):
		return http.StatusBadRequest, "cell_not_editable"
	case errors.Is(err, engine.ErrInvalidConfig):
		return http.StatusUnprocessableEntity, "invalid_config"
	}
	return http.StatusInternalServerError, "internal_error"
}

// respondManagerError answers with the mapped status; unexpected errors are logged and hidden
func respondManagerError(w http.ResponseWriter, err error, action, id string) {
	status, code := errorStatus(err)
	if status == http.StatusInternalServerError {
		slog.Error("failed to "+action, "error", err, "id", id)
		respondError(w, status, code, "failed to "+action)
		return
	}
	respondError(w, status, code, err.Error())
}

var validate = validator.New()

// decodeRequest reads a JSON body into req and runs its validate tags.
// It writes the error response itself and reports whether to continue.
func decodeRequest(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	if err := validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "validation_error", validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required", "required_without":
			msgs = append(msgs, fmt.Sprintf("%s is required", strings.ToLower(fe.Field())))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

// Health handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.Ping(r.Context()); err != nil {
		slog.Warn("readiness check failed", "error", err)
		respondError(w, http.StatusServiceUnavailable, "not_ready", "service not ready")
		return
	}

	services := map[string]string{}
	if s.backing != nil {
		report := s.backing.Check(r.Context())
		if !report.Ready {
			slog.Warn("backing services unhealthy", "services", report.Services)
			respondError(w, http.StatusServiceUnavailable, "not_ready", "backing services unavailable")
			return
		}
		services = report.Services
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status":   "ready",
		"services": services,
	})
}

// Engine handlers

func (s *Server) handleListEngines(w http.ResponseWriter, r *http.Request) {
	engines := s.engines.List()
	respondJSON(w, http.StatusOK, map[string]any{
		"engines": engines,
		"total":   len(engines),
	})
}

func (s *Server) handleGetEngine(w http.ResponseWriter, r *http.Request) {
	reg, err := s.engines.Get(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusNotFound, "not_found", "engine not found")
		return
	}
	respondJSON(w, http.StatusOK, reg.Info)
}
