package auth

import "context"

type identityContextKey struct{}

// ContextWithIdentity attaches the resolved identity to the context.
func ContextWithIdentity(ctx context.Context, id AuthContext) context.Context {
	return context.WithValue(ctx, identityContextKey{}, &id)
}

// IdentityFromContext extracts the resolved identity from the context.
func IdentityFromContext(ctx context.Context) (AuthContext, bool) {
	if ctx == nil {
		return AuthContext{}, false
	}
	v, ok := ctx.Value(identityContextKey{}).(*AuthContext)
	if !ok || v == nil {
		return AuthContext{}, false
	}
	return *v, true
}
