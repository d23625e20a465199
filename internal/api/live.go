package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/Duly330AI/Matheheftt-sub000/internal/practice"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// LiveMessage is one frame on the live channel. Clients send input, next,
// undo, reset, clear or state; the server answers with state or error.
type LiveMessage struct {
	Type   string         `json:"type"`
	CellID string         `json:"cell_id,omitempty"`
	Value  string         `json:"value,omitempty"`
	State  *practice.View `json:"state,omitempty"`
	Error  *apiError      `json:"error,omitempty"`
}

// handleLiveWS streams keystrokes into a session and pushes the resulting
// state back after every one of them.
func (s *Server) handleLiveWS(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	view, err := s.manager.Get(r.Context(), id)
	if err != nil {
		respondManagerError(w, err, "get session", id)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()

	slog.Info("live websocket connected", "session", id)

	if err := s.sendLiveMessage(conn, LiveMessage{Type: "state", State: view}); err != nil {
		return
	}

	ctx := r.Context()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("websocket read error", "error", err)
			}
			break
		}

		var msg LiveMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Debug("invalid message format", "error", err)
			if s.sendLiveError(conn, "invalid_request", "invalid JSON message") != nil {
				break
			}
			continue
		}

		reply := s.handleLiveMessage(ctx, id, msg)
		if err := s.sendLiveMessage(conn, reply); err != nil {
			break
		}
	}

	slog.Info("live websocket disconnected", "session", id)
}

func (s *Server) handleLiveMessage(ctx context.Context, id string, msg LiveMessage) LiveMessage {
	var (
		view *practice.View
		err  error
	)
	switch msg.Type {
	case "input":
		if msg.CellID == "" {
			return liveError("validation_error", "cell_id is required")
		}
		view, err = s.manager.Input(ctx, id, msg.CellID, msg.Value)
	case "next":
		view, err = s.manager.Next(ctx, id)
	case "undo":
		view, err = s.manager.Undo(ctx, id)
	case "reset":
		view, err = s.manager.Reset(ctx, id)
	case "clear":
		view, err = s.manager.Clear(ctx, id)
	case "state":
		view, err = s.manager.Get(ctx, id)
	default:
		return liveError("invalid_request", fmt.Sprintf("unknown message type %q", msg.Type))
	}

	if err != nil {
		status, code := errorStatus(err)
		if status == http.StatusInternalServerError {
			slog.Error("live action failed", "error", err, "session", id, "type", msg.Type)
			return liveError(code, "failed to update session")
		}
		return liveError(code, err.Error())
	}
	return LiveMessage{Type: "state", State: view}
}

func liveError(code, message string) LiveMessage {
	return LiveMessage{Type: "error", Error: &apiError{Code: code, Message: message}}
}

func (s *Server) sendLiveMessage(conn *websocket.Conn, msg LiveMessage) error {
	if err := conn.WriteJSON(msg); err != nil {
		slog.Debug("failed to send live message", "error", err)
		return err
	}
	return nil
}

func (s *Server) sendLiveError(conn *websocket.Conn, code, message string) error {
	return s.sendLiveMessage(conn, liveError(code, message))
}
