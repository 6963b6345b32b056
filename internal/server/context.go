package server

import "context"

type contextKey struct{ name string }

var userIDKey = contextKey{"user_id"}

// WithUserID returns a context with the authenticated user id set.
// Handlers read it back via GetUserID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserID returns the user id from context and true if set; otherwise "", false.
func GetUserID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(userIDKey).(string)
	return v, ok
}
