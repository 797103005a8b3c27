package auth

import "context"

type contextKey struct{}

var userIDKey contextKey

// WithUserID stamps the verified caller identity onto the request
// context. Only the auth middleware writes this.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the verified caller identity, if any.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}
