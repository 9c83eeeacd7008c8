package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/solosprint/sprint-engine/internal/sessions"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const timerPushInterval = 1 * time.Second

// handleTimerSocket streams countdown snapshots over a websocket. Strictly
// read-only: expiry is reported, never acted on. The stream ends when the
// client disconnects or the session reaches its terminal state.
func (s *Server) handleTimerSocket(w http.ResponseWriter, r *http.Request) {
	callerID := SessionIDFromContext(r.Context())
	attemptID := chi.URLParam(r, "id")

	// Reject bad sessions before upgrading
	if _, err := s.sessions.TimerStatus(r.Context(), callerID, attemptID); err != nil {
		s.respondSessionError(w, err, "failed to load timer status")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	slog.Debug("timer stream opened", "session", attemptID)

	// Discard client frames; detect disconnects
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(timerPushInterval)
	defer ticker.Stop()

	for {
		status, err := s.sessions.TimerStatus(r.Context(), callerID, attemptID)
		if err != nil {
			if !errors.Is(err, sessions.ErrSessionNotFound) {
				slog.Warn("timer stream read failed", "session", attemptID, "error", err)
			}
			return
		}

		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteJSON(status); err != nil {
			return
		}

		if status.Completed {
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session completed"),
				time.Now().Add(time.Second))
			return
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}
