package api

import "context"

type contextKey string

const sessionIDKey contextKey = "session_id"

// ContextWithSessionID stores the caller's visitor identifier in the context
func ContextWithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// SessionIDFromContext retrieves the visitor identifier, or "" if absent
func SessionIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(sessionIDKey).(string); ok {
		return v
	}
	return ""
}
