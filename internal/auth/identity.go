// Package auth carries the caller's identity through request contexts and issues bearer tokens.
package auth

import "context"

// Identity is who the caller claims to be. It never carries a role: the role is
// looked up fresh from the store on every authorization decision.
type Identity struct {
	ID    string
	Email string
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity stored in ctx, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	id, ok := ctx.Value(ctxKey{}).(Identity)
	if !ok || id.Email == "" {
		return Identity{}, false
	}
	return id, true
}
