package httpx

import (
	"context"
	"net/http"
)

// RoleResolver reports the role ids assigned to a user.
type RoleResolver func(ctx context.Context, userID string) ([]string, error)

// RequireAnyRole the caller must hold at least one of the listed role ids.
// Must run after AuthnMiddleware.
func RequireAnyRole(resolve RoleResolver, required ...string) Middleware {
	want := make(map[string]struct{}, len(required))
	for _, r := range required {
		want[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := UserIDFromContext(r.Context())
			if userID == "" {
				writeBearerError(w, "missing bearer token")
				return
			}

			have, err := resolve(r.Context(), userID)
			if err != nil {
				WriteMessage(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			for _, role := range have {
				if _, ok := want[role]; ok {
					next.ServeHTTP(w, r)
					return
				}
			}

			WriteMessage(w, http.StatusUnauthorized, "insufficient role")
		})
	}
}
