package server

import (
	"net/http"
	"strings"

	"nestling-health/audit/internal/security"
)

const bearerPrefix = "bearer "

// RequireAuth returns a middleware that validates the Bearer (access) token
// from the Authorization header and sets the user id in the request context.
// Requests without a valid token get 401.
func RequireAuth(verifier *security.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearer(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "missing or invalid authorization")
				return
			}
			userID, err := verifier.VerifyAccess(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "missing or invalid authorization")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// extractBearer returns the Bearer token from the Authorization header, or "" if missing or malformed.
func extractBearer(r *http.Request) string {
	v := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
