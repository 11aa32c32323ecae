// Package http wires the authentication endpoints onto a ServeMux with the
// logging, rate limiting and bearer-token middleware applied per route.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/copperline/gatehouse/internal/auth/domain"
	"github.com/copperline/gatehouse/internal/auth/service"
	"github.com/copperline/gatehouse/internal/auth/store"
	"github.com/copperline/gatehouse/pkg/httpx"
	"github.com/copperline/gatehouse/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	AuthService      *service.AuthService
	TwoFactorService *service.TwoFactorService
	RolesService     *service.RolesService

	// Introspector guards the role administration endpoints.
	Introspector httpx.Introspector
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		store:        st,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerRoles()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	auth := &AuthHandler{Auth: r.AuthService}
	twofactor := &TwoFactorHandler{TwoFactor: r.TwoFactorService}

	// GET /auth - reachability probe, cheap
	r.Mux.Handle("GET /auth",
		httpx.Chain(http.HandlerFunc(auth.HandlePing),
			httpx.RateLimitByIP(httpx.LenientLimit),
		))

	// GET /auth/check - token validation on every page load
	r.Mux.Handle("GET /auth/check",
		httpx.Chain(http.HandlerFunc(auth.HandleCheck),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		))

	// Credential-bearing endpoints get the strict profile.
	r.Mux.Handle("POST /auth/login",
		httpx.Chain(http.HandlerFunc(auth.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		))
	r.Mux.Handle("POST /auth/ga2fa",
		httpx.Chain(http.HandlerFunc(twofactor.HandleGA2FA),
			httpx.RateLimitByIP(httpx.StrictLimit),
		))
	r.Mux.Handle("POST /auth/signup",
		httpx.Chain(http.HandlerFunc(auth.HandleSignup),
			httpx.RateLimitByIP(httpx.StrictLimit),
		))
	r.Mux.Handle("POST /auth/forgot",
		httpx.Chain(http.HandlerFunc(auth.HandleForgot),
			httpx.RateLimitByIP(httpx.StrictLimit),
		))

	// Reset accepts both verbs; some mail clients pre-fetch the link.
	r.Mux.Handle("GET /auth/reset/{token}",
		httpx.Chain(http.HandlerFunc(auth.HandleReset),
			httpx.RateLimitByIP(httpx.StrictLimit),
		))
	r.Mux.Handle("POST /auth/reset/{token}",
		httpx.Chain(http.HandlerFunc(auth.HandleReset),
			httpx.RateLimitByIP(httpx.StrictLimit),
		))

	r.Mux.Handle("POST /auth/logout",
		httpx.Chain(http.HandlerFunc(auth.HandleLogout),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		))
}

func (r *Router) registerRoles() {
	roles := &RolesHandler{Roles: r.RolesService}

	guard := []httpx.Middleware{
		httpx.RateLimitByIP(httpx.ModerateLimit),
		httpx.AuthnMiddleware(r.Introspector),
		httpx.RequireAnyRole(r.resolveRoles, domain.RoleSuperadmin, domain.RoleAdmin),
	}

	r.Mux.Handle("GET /roles",
		httpx.Chain(http.HandlerFunc(roles.HandleList), guard...))
	r.Mux.Handle("POST /roles",
		httpx.Chain(http.HandlerFunc(roles.HandleCreate), guard...))
	r.Mux.Handle("PUT /roles/{id}",
		httpx.Chain(http.HandlerFunc(roles.HandleUpdate), guard...))
	r.Mux.Handle("DELETE /roles/{id}",
		httpx.Chain(http.HandlerFunc(roles.HandleRemove), guard...))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		))
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		))
}

// resolveRoles is the RoleResolver for the authz middleware.
func (r *Router) resolveRoles(ctx context.Context, userID string) ([]string, error) {
	user, err := r.store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.RoleIDs, nil
}
