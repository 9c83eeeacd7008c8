package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/solosprint/sprint-engine/internal/metrics"
)

// sessionHeader carries the opaque visitor identifier. There is no account
// system; the identifier is minted by the client and scopes profiles and
// attempts.
const sessionHeader = "X-Session-ID"

// RequireSession rejects requests without a visitor identifier and stores
// it in the request context for handlers.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.Header.Get(sessionHeader)
		if sessionID == "" {
			respondError(w, http.StatusUnauthorized, "missing_session", "provide an "+sessionHeader+" header")
			return
		}
		if len(sessionID) > 64 {
			respondError(w, http.StatusBadRequest, "invalid_session", "session identifier too long")
			return
		}

		ctx := ContextWithSessionID(r.Context(), sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// loggingMiddleware logs HTTP requests using slog and records the request
// counter.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			slog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
			metrics.HTTPRequests.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(ww.Status())).Inc()
		}()

		next.ServeHTTP(ww, r)
	})
}
