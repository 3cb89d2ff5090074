package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/pkordes/map-collection/internal/auth"
)

// TokenVerifier validates a bearer token and returns the email it was issued to.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// identity is filled in by the authentication middleware so that outer
// middleware (the request logger) can see who made the request.
type identity struct{ email string }

type identityKey struct{}

// callerFrom reports the authenticated caller recorded for r, if any.
func callerFrom(r *http.Request) (string, bool) {
	id, ok := r.Context().Value(identityKey{}).(*identity)
	if !ok || id.email == "" {
		return "", false
	}
	return id.email, true
}

// TrackIdentity makes the caller resolved by RequireAuth or OptionalAuth
// visible to middleware registered before it. Register it ahead of the logger.
func TrackIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if _, ok := ctx.Value(identityKey{}).(*identity); !ok {
			r = r.WithContext(context.WithValue(ctx, identityKey{}, &identity{}))
		}
		next.ServeHTTP(w, r)
	})
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// authenticate verifies the bearer token of r. ok is false when a token was
// presented but is invalid; a request without a token yields ("", true).
func authenticate(v TokenVerifier, r *http.Request) (email string, ok bool) {
	token := bearerToken(r)
	if token == "" {
		return "", true
	}
	email, err := v.Verify(token)
	if err != nil {
		return "", false
	}
	return email, true
}

func withCaller(r *http.Request, email string) *http.Request {
	if id, ok := r.Context().Value(identityKey{}).(*identity); ok {
		id.email = email
	}
	return r.WithContext(auth.WithEmail(r.Context(), email))
}

// RequireAuth rejects requests without a valid bearer token with 401 and
// stores the caller's email in the request context otherwise.
func RequireAuth(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email, ok := authenticate(v, r)
			if !ok || email == "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="map-collection"`)
				writeError(w, http.StatusUnauthorized, "unauthorized", "a valid bearer token is required")
				return
			}
			next.ServeHTTP(w, withCaller(r, email))
		})
	}
}

// OptionalAuth identifies the caller when a token is present. Anonymous
// requests pass through; an invalid token is still rejected with 401.
func OptionalAuth(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email, ok := authenticate(v, r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthorized", "invalid bearer token")
				return
			}
			if email != "" {
				r = withCaller(r, email)
			}
			next.ServeHTTP(w, r)
		})
	}
}
