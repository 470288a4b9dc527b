package session

import "context"

type ctxKey int

const tokenKey ctxKey = iota

// WithToken stores the caller's bearer token in ctx. Every outbound
// API call reads it back; a request with no token goes out anonymous
// and the remote API decides what that means.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

// TokenFrom returns the bearer token carried by ctx, empty when none.
func TokenFrom(ctx context.Context) string {
	if v, ok := ctx.Value(tokenKey).(string); ok {
		return v
	}
	return ""
}
