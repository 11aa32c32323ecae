package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/copperline/gatehouse/internal/auth/domain"
	"github.com/copperline/gatehouse/internal/auth/service"
	"github.com/copperline/gatehouse/pkg/httpx"
)

// bearerToken extracts the raw token from the Authorization header, "" when
// absent or not a bearer scheme.
func bearerToken(r *http.Request) string {
	authz := r.Header.Get("Authorization")
	if !strings.HasPrefix(authz, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))
}

// AuthHandler serves the credential flows. Every failure, whatever the cause,
// is reported as 401 with a message body; the audit trail keeps the detail.
type AuthHandler struct {
	Auth *service.AuthService
}

type userResponse struct {
	User domain.PublicUser `json:"user"`
}

// HandlePing answers the reachability probe.
func (h *AuthHandler) HandlePing(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"ping": "pong"})
}

// HandleCheck resolves the Authorization bearer token to the current user.
func (h *AuthHandler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	bearer := bearerToken(r)

	view, err := h.Auth.Check(r.Context(), bearer)
	if err != nil {
		httpx.WriteMessage(w, http.StatusUnauthorized, err.Error())
		return
	}
	httpx.WriteJSON(w, http.StatusOK, userResponse{User: view})
}

func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteMessage(w, http.StatusUnauthorized, "invalid request body")
		return
	}

	view, err := h.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.WriteMessage(w, http.StatusUnauthorized, err.Error())
		return
	}
	httpx.WriteJSON(w, http.StatusOK, userResponse{User: view})
}

func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Confirm  string `json:"confirm"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteMessage(w, http.StatusUnauthorized, "invalid request body")
		return
	}

	view, err := h.Auth.Signup(r.Context(), service.SignupRequest{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.Confirm,
	})
	if err != nil {
		httpx.WriteMessage(w, http.StatusUnauthorized, err.Error())
		return
	}
	httpx.WriteJSON(w, http.StatusOK, userResponse{User: view})
}

func (h *AuthHandler) HandleForgot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteMessage(w, http.StatusUnauthorized, "invalid request body")
		return
	}

	view, token, err := h.Auth.Forgot(r.Context(), req.Email)
	if err != nil {
		httpx.WriteMessage(w, http.StatusUnauthorized, err.Error())
		return
	}
	httpx.WriteJSON(w, http.StatusOK, struct {
		User  domain.PublicUser `json:"user"`
		Token string            `json:"token"`
	}{User: view, Token: token})
}

// HandleReset serves both verbs; the token rides in the path, the new
// password in the body.
func (h *AuthHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")

	var req struct {
		Password string `json:"password"`
	}
	if r.Body != nil {
		// A GET without a body is still answered, with a token failure or a
		// password-required failure from the orchestrator.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	view, err := h.Auth.Reset(r.Context(), token, req.Password)
	if err != nil {
		httpx.WriteMessage(w, http.StatusUnauthorized, err.Error())
		return
	}
	httpx.WriteJSON(w, http.StatusOK, userResponse{User: view})
}

func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteMessage(w, http.StatusUnauthorized, "invalid request body")
		return
	}

	view, err := h.Auth.Logout(r.Context(), req.ID)
	if err != nil {
		httpx.WriteMessage(w, http.StatusUnauthorized, err.Error())
		return
	}
	httpx.WriteJSON(w, http.StatusOK, userResponse{User: view})
}
