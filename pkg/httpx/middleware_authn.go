package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/copperline/gatehouse/pkg/oauthx"
	"github.com/copperline/gatehouse/pkg/slogx"
)

// Introspector validates a bearer token with the authorization provider.
type Introspector interface {
	Introspect(ctx context.Context, bearer string) (oauthx.Introspection, error)
}

// AuthnMiddleware validates the Authorization bearer token against the
// provider's introspection endpoint and injects the subject into the request
// context. Requests without a bearer token are rejected without any network
// call.
func AuthnMiddleware(introspector Introspector) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing bearer token")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			result, err := introspector.Introspect(ctx, raw)
			if err != nil {
				log.Warn("token introspection failed", "err", err)
				writeBearerError(w, "token verification failed")
				return
			}
			if !result.Active || result.Subject == "" {
				writeBearerError(w, "token is not active")
				return
			}

			ctx = context.WithValue(ctx, CtxKeyUserID, result.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteMessage(w, http.StatusUnauthorized, desc)
}
