package httpapi

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"ironlog.app/internal/audit"
	"ironlog.app/internal/auth"
)

type grantRoleRequest struct {
	Role string `json:"role"`
}

func (a *API) handleUsersCollection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, ok := a.requireRole(w, r, auth.RoleAdmin); !ok {
		return
	}
	users, err := a.auth.ListUsers(r.Context())
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": users})
}

func (a *API) handleUserResource(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/users/"), "/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	parts := strings.Split(path, "/")
	subject, err := uuid.Parse(parts[0])
	if err != nil {
		writeError(w, r, http.StatusNotFound, "user not found")
		return
	}

	switch {
	case len(parts) == 1:
		a.userByUUID(w, r, subject)
	case len(parts) == 2 && parts[1] == "roles":
		a.userRoles(w, r, subject)
	case len(parts) == 3 && parts[1] == "roles":
		a.revokeUserRole(w, r, subject, parts[2])
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

func (a *API) userByUUID(w http.ResponseWriter, r *http.Request, subject uuid.UUID) {
	switch r.Method {
	case http.MethodGet:
		principal, ok := auth.PrincipalFromContext(r.Context())
		if !ok {
			a.unauthorized(w, r, "missing_token", "authentication required")
			return
		}
		// Self-read is allowed; reading anyone else takes the admin role.
		if principal.User.UUID != subject {
			if _, ok := a.requireRole(w, r, auth.RoleAdmin); !ok {
				return
			}
		}
		user, err := a.auth.FindUser(r.Context(), subject)
		if err != nil {
			handleAuthError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, user)

	case http.MethodDelete:
		if _, ok := a.requireRole(w, r, auth.RoleAdmin); !ok {
			return
		}
		if err := a.auth.DeleteUser(r.Context(), subject); err != nil {
			handleAuthError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "auth.user.deleted", map[string]any{
			"subject": subject.String(),
		})
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodDelete)
	}
}

func (a *API) userRoles(w http.ResponseWriter, r *http.Request, subject uuid.UUID) {
	switch r.Method {
	case http.MethodGet:
		if _, ok := a.requireRole(w, r, auth.RoleAdmin); !ok {
			return
		}
		roles, err := a.auth.Authorize(r.Context(), subject)
		if err != nil {
			handleAuthError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"roles": roles})

	case http.MethodPost:
		if _, ok := a.requireRole(w, r, auth.RoleAdmin); !ok {
			return
		}
		var req grantRoleRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if err := a.auth.GrantRole(r.Context(), subject, req.Role); err != nil {
			handleAuthError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "rbac.role.grant", map[string]any{
			"subject": subject.String(),
			"role":    req.Role,
		})
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) revokeUserRole(w http.ResponseWriter, r *http.Request, subject uuid.UUID, role string) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, r, http.MethodDelete)
		return
	}
	if _, ok := a.requireRole(w, r, auth.RoleAdmin); !ok {
		return
	}
	if err := a.auth.RevokeRole(r.Context(), subject, role); err != nil {
		handleAuthError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "rbac.role.revoke", map[string]any{
		"subject": subject.String(),
		"role":    role,
	})
	w.WriteHeader(http.StatusNoContent)
}
