package goGuard

import "context"

type clientIPContextKey struct{}
type navigationIDContextKey struct{}

// WithClientIP attaches the caller's IP address to ctx. The Engine copies it
// into audit events.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

// WithNavigationID attaches a caller-chosen navigation id to ctx. Without
// one the Engine generates a random id per navigation.
func WithNavigationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, navigationIDContextKey{}, id)
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}

func navigationIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}

	id, _ := ctx.Value(navigationIDContextKey{}).(string)
	return id, id != ""
}
