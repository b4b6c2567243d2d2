package auth

import "context"

type contextKey struct{}

// HostContext carries the authenticated host identity through a request.
type HostContext struct {
	Email     string
	SessionID int64
}

func WithHost(ctx context.Context, hc HostContext) context.Context {
	return context.WithValue(ctx, contextKey{}, hc)
}

func FromContext(ctx context.Context) (HostContext, bool) {
	hc, ok := ctx.Value(contextKey{}).(HostContext)
	return hc, ok
}

// Email returns the authenticated host email, or "" if the request carries
// no host session.
func Email(ctx context.Context) string {
	hc, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return hc.Email
}
