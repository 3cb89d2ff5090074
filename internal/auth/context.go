package auth

import "context"

type contextKey struct{}

// WithEmail returns a copy of ctx carrying the authenticated email.
func WithEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, contextKey{}, email)
}

// EmailFrom returns the authenticated email, or "" for an anonymous request.
func EmailFrom(ctx context.Context) string {
	email, _ := ctx.Value(contextKey{}).(string)
	return email
}
