package auth

import "context"

// contextKey is a private type for context keys so values set here cannot
// collide with other packages.
type contextKey string

const usernameContextKey contextKey = "auth_username"

// NewContextWithUsername returns a child context carrying the session's
// username.
func NewContextWithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, usernameContextKey, username)
}

// UsernameFromContext extracts the session username set by the session
// middleware. The bool is false when the request was not authenticated.
func UsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(usernameContextKey).(string)
	return username, ok && username != ""
}
