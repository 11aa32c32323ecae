package http

import (
	"encoding/json"
	"net/http"

	"github.com/copperline/gatehouse/internal/auth/service"
	"github.com/copperline/gatehouse/pkg/httpx"
)

// TwoFactorHandler serves the single ga2fa entry point. The response shape
// follows the outcome: enrollment material, a code-required advisory, or the
// completed verification with its token grant.
type TwoFactorHandler struct {
	TwoFactor *service.TwoFactorService
}

func (h *TwoFactorHandler) HandleGA2FA(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID   string `json:"id"`
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteMessage(w, http.StatusUnauthorized, "invalid request body")
		return
	}

	outcome, err := h.TwoFactor.GA2FA(r.Context(), req.ID, req.Code)
	if err != nil {
		httpx.WriteMessage(w, http.StatusUnauthorized, err.Error())
		return
	}

	switch {
	case outcome.Enrollment != nil:
		httpx.WriteJSON(w, http.StatusOK, struct {
			QR     string `json:"qr"`
			Secret string `json:"secret"`
		}{QR: outcome.Enrollment.QR, Secret: outcome.Enrollment.Secret})

	case outcome.CodeRequired:
		// Advisory, not a failure: the client should now prompt for a code.
		httpx.WriteMessage(w, http.StatusOK, "2FA code required")

	default:
		httpx.WriteJSON(w, http.StatusOK, struct {
			Status string `json:"status"`
			Data   any    `json:"data"`
		}{Status: "verified", Data: outcome.Grant})
	}
}
