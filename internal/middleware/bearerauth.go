// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/atinyakov/IssueKeeper/internal/models"
)

type ctxKey string

const principalKey ctxKey = "principal"

// TokenVerifier checks a bearer credential and returns its caller.
type TokenVerifier interface {
	Verify(token string) (models.Principal, error)
}

// BearerAuth is a middleware that enforces bearer-token authentication.
//
// It reads the "Authorization: Bearer <token>" header, verifies the token,
// and stores the resulting principal in the request context so it can be
// used downstream. Requests without a valid token get 401 with a
// {"message": ...} body.
func BearerAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				unauthorized(w, "No token provided")
				return
			}
			principal, err := verifier.Verify(strings.TrimSpace(token))
			if err != nil {
				unauthorized(w, "Invalid or expired token")
				return
			}
			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// GetPrincipalFromContext returns the caller stored by BearerAuth.
func GetPrincipalFromContext(ctx context.Context) (models.Principal, bool) {
	p, ok := ctx.Value(principalKey).(models.Principal)
	return p, ok
}

// GetUserIDFromContext extracts the authenticated user ID from the request
// context. Returns an empty string if not found.
func GetUserIDFromContext(ctx context.Context) string {
	p, _ := GetPrincipalFromContext(ctx)
	return p.UserID
}

// WithPrincipal returns ctx carrying p, as BearerAuth would.
func WithPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}
