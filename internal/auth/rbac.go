package auth

import "net/http"

const (
	ScopeTranslate   = "translate"
	ScopeJobs        = "jobs"
	ScopeHistoryRead = "history:read"
	ScopeSpeech      = "speech"
)

// RequireScope rejects requests whose token lacks scope. It must run after
// Authenticate; requests without claims are rejected.
func RequireScope(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if claims == nil {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if !claims.HasScope(scope) {
				writeError(w, http.StatusForbidden, "insufficient scope: "+scope)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
