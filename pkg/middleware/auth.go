package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/taskvine/taskvine/pkg/composables"
	"github.com/taskvine/taskvine/pkg/httpapi"
)

// UserIDHeader carries the authenticated caller's id, set by the identity
// proxy fronting the service.
const UserIDHeader = "X-User-Id"

// RequireUser rejects requests without a valid caller id. Everything behind
// it can rely on composables.UseUserID succeeding.
func RequireUser() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(UserIDHeader)
			if raw == "" {
				_ = httpapi.WriteError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing user identity", nil)
				return
			}
			userID, err := uuid.Parse(raw)
			if err != nil {
				_ = httpapi.WriteError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "invalid user identity", nil)
				return
			}
			next.ServeHTTP(w, r.WithContext(composables.WithUserID(r.Context(), userID)))
		})
	}
}
