package auth

import (
	"context"
	"log"
	"net/http"
	"strings"
)

type ctxKey string

const ctxProfileID ctxKey = "profileID"

// ProfileResolver maps a verified identity to a persistent profile ID,
// creating the profile on first sight (get-or-create).
type ProfileResolver func(authKey, email string) (uint, error)

// ProfileID returns the authenticated profile ID stored by the middleware.
func ProfileID(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(ctxProfileID).(uint)
	return id, ok
}

// WithProfileID stores a profile ID in the context. Exposed for tests that
// exercise handlers without the full middleware chain.
func WithProfileID(ctx context.Context, id uint) context.Context {
	return context.WithValue(ctx, ctxProfileID, id)
}

// Middleware authenticates the bearer token and resolves it to a profile,
// storing the profile ID in the request context. Any verification or
// resolution failure yields a plain 401.
func Middleware(resolve ProfileResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			h := r.Header.Get("Authorization")
			if h == "" || !strings.HasPrefix(h, "Bearer ") {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			claims, err := ParseAndValidate(strings.TrimPrefix(h, "Bearer "))
			if err != nil {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			profileID, err := resolve(claims.Subject, claims.Email)
			if err != nil {
				log.Printf("auth: resolving profile for %s: %v", claims.Subject, err)
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithProfileID(r.Context(), profileID)))
		})
	}
}
