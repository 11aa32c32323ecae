package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/copperline/gatehouse/internal/auth/domain"
	"github.com/copperline/gatehouse/internal/auth/service"
	"github.com/copperline/gatehouse/pkg/httpx"
	"github.com/copperline/gatehouse/pkg/slogx"
)

// RolesHandler serves role administration. All routes sit behind bearer-token
// introspection plus an admin role check, applied by the router.
type RolesHandler struct {
	Roles *service.RolesService
}

type roleInfo struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Enabled     bool     `json:"enabled"`
	Removed     bool     `json:"removed"`
	Members     []string `json:"members"`
}

func toRoleInfo(r domain.Role) roleInfo {
	return roleInfo{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Enabled:     r.Enabled,
		Removed:     r.State.Deleted(),
		Members:     r.Members,
	}
}

// HandleList returns every role, or only those matching ?enabled=.
func (h *RolesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var (
		roles []domain.Role
		err   error
	)
	switch r.URL.Query().Get("enabled") {
	case "true":
		roles, err = h.Roles.ListEnabled(ctx, true)
	case "false":
		roles, err = h.Roles.ListEnabled(ctx, false)
	default:
		roles, err = h.Roles.List(ctx)
	}
	if err != nil {
		log.Error("failed to list roles", "error", err)
		httpx.WriteMessage(w, http.StatusInternalServerError, "failed to retrieve roles")
		return
	}

	infos := make([]roleInfo, len(roles))
	for i, role := range roles {
		infos[i] = toRoleInfo(role)
	}
	httpx.WriteJSON(w, http.StatusOK, struct {
		Roles []roleInfo `json:"roles"`
	}{Roles: infos})
}

func (h *RolesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" {
		httpx.WriteMessage(w, http.StatusUnauthorized, "role title is required")
		return
	}

	role, err := h.Roles.Create(ctx, req.Title, req.Description)
	if err != nil {
		log.Error("failed to create role", "error", err)
		httpx.WriteMessage(w, http.StatusInternalServerError, "failed to create role")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toRoleInfo(*role))
}

func (h *RolesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	id := r.PathValue("id")

	var req struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Enabled     bool     `json:"enabled"`
		Members     []string `json:"members"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteMessage(w, http.StatusUnauthorized, "invalid request body")
		return
	}

	updated, err := h.Roles.Update(ctx, domain.Role{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Enabled:     req.Enabled,
		State:       domain.Active(),
		Members:     req.Members,
	})
	if errors.Is(err, service.ErrProtectedRole) {
		httpx.WriteMessage(w, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		log.Error("failed to update role", "error", err, "role_id", id)
		httpx.WriteMessage(w, http.StatusInternalServerError, "failed to update role")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toRoleInfo(*updated))
}

func (h *RolesHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	id := r.PathValue("id")

	err := h.Roles.Remove(ctx, id)
	if errors.Is(err, service.ErrProtectedRole) {
		httpx.WriteMessage(w, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		log.Error("failed to remove role", "error", err, "role_id", id)
		httpx.WriteMessage(w, http.StatusInternalServerError, "failed to remove role")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}
