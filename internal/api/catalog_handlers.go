package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Catalog handlers: topics and the presets inside them

func (s *Server) handleListTopics(w http.ResponseWriter, r *http.Request) {
	topics := s.catalog.ListTopics()
	respondJSON(w, http.StatusOK, map[string]any{
		"topics": topics,
		"total":  len(topics),
	})
}

func (s *Server) handleGetTopic(w http.ResponseWriter, r *http.Request) {
	topic := s.catalog.GetTopic(chi.URLParam(r, "topicId"))
	if topic == nil {
		respondError(w, http.StatusNotFound, "not_found", "topic not found")
		return
	}
	respondJSON(w, http.StatusOK, topic)
}

func (s *Server) handleListPresets(w http.ResponseWriter, r *http.Request) {
	topicID := chi.URLParam(r, "topicId")
	if s.catalog.GetTopic(topicID) == nil {
		respondError(w, http.StatusNotFound, "not_found", "topic not found")
		return
	}

	presets := s.catalog.ListPresets(topicID)
	respondJSON(w, http.StatusOK, map[string]any{
		"presets": presets,
		"total":   len(presets),
	})
}

func (s *Server) handleGetPreset(w http.ResponseWriter, r *http.Request) {
	presetID := chi.URLParam(r, "topicId") + "/" + chi.URLParam(r, "code")

	preset, err := s.catalog.GetPreset(presetID)
	if err != nil {
		respondError(w, http.StatusNotFound, "not_found", "preset not found")
		return
	}
	respondJSON(w, http.StatusOK, preset)
}
