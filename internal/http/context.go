package http

import (
	"context"
	"log/slog"

	"github.com/example/groupcal/internal/application"
	"github.com/example/groupcal/internal/logging"
)

type contextKey string

const groupContextKey contextKey = "group"

// ContextWithGroup returns a derived context containing the caller's group context.
func ContextWithGroup(ctx context.Context, group application.GroupContext) context.Context {
	return context.WithValue(ctx, groupContextKey, group)
}

// GroupFromContext extracts the caller's group context if available.
func GroupFromContext(ctx context.Context) (application.GroupContext, bool) {
	group, ok := ctx.Value(groupContextKey).(application.GroupContext)
	return group, ok
}

// ContextWithLogger attaches a request scoped logger.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext returns the request scoped logger, if any.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}
