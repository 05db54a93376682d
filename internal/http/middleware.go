package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/groupcal/internal/application"
	"github.com/example/groupcal/internal/logging"
)

// Identity headers forwarded by the authenticating gateway.
const (
	HeaderGroupID    = "X-Group-ID"
	HeaderViewerID   = "X-Viewer-ID"
	HeaderViewerRole = "X-Viewer-Role"
	HeaderRequestID  = "X-Request-ID"
)

// RequireGroupContext turns the gateway identity headers into an
// application.GroupContext. Requests without a group or viewer are rejected.
func RequireGroupContext(logger *slog.Logger) func(http.Handler) http.Handler {
	responder := newResponder(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			group := application.GroupContext{
				GroupID:  strings.TrimSpace(r.Header.Get(HeaderGroupID)),
				ViewerID: strings.TrimSpace(r.Header.Get(HeaderViewerID)),
				Role:     application.ParseRole(strings.ToLower(strings.TrimSpace(r.Header.Get(HeaderViewerRole)))),
			}
			if group.GroupID == "" || group.ViewerID == "" {
				responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingIdentity)
				return
			}

			ctx := ContextWithGroup(r.Context(), group)
			if scoped := LoggerFromContext(ctx); scoped != nil {
				ctx = ContextWithLogger(ctx, scoped.With("group_id", group.GroupID, "viewer_id", group.ViewerID))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// RequestLogger attaches a request scoped logger tagged with a request id.
// An incoming X-Request-ID is reused; otherwise a UUID is generated.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(HeaderRequestID))
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(HeaderRequestID, id)

			logger := base.With(
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
			)

			ctx := logging.ContextWithRequestID(r.Context(), id)
			ctx = ContextWithLogger(ctx, logger)
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			logger.InfoContext(ctx, "request started")
			next.ServeHTTP(recorder, r.WithContext(ctx))
			logger.InfoContext(ctx, "request completed", "status", recorder.status, "duration", time.Since(start))
		})
	}
}
