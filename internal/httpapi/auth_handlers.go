package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"ironlog.app/internal/audit"
	"ironlog.app/internal/auth"
	"ironlog.app/internal/obs"
)

type registerRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type loginRequest struct {
	Username string   `json:"username"`
	Password string   `json:"password"`
	Scopes   []string `json:"scopes"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Username) == "" {
		writeError(w, r, http.StatusBadRequest, "username is required")
		return
	}
	if req.Password == "" {
		writeError(w, r, http.StatusBadRequest, "password is required")
		return
	}

	user, err := a.auth.Register(r.Context(), req.Username, req.Password, req.FirstName, req.LastName)
	if err != nil {
		if errors.Is(err, auth.ErrConflict) {
			writeError(w, r, http.StatusConflict, "username already taken")
			return
		}
		handleAuthError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.user.registered", map[string]any{
		"subject":  user.UUID.String(),
		"username": user.Username,
	})
	w.Header().Set("Location", "/v1/users/"+user.UUID.String())
	writeJSON(w, http.StatusCreated, user)
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	// Tokens carry exactly the scopes the client asked for. An empty
	// request yields a token with no scopes, which scope checks reject.
	token, err := a.auth.Login(r.Context(), req.Username, req.Password, req.Scopes)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			obs.IncLogin("failure")
			_ = audit.LogEvent(r.Context(), "auth.login.failed", map[string]any{
				"username": strings.ToLower(strings.TrimSpace(req.Username)),
			})
			writeError(w, r, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "login failed")
		return
	}

	obs.IncLogin("success")
	_ = audit.LogEvent(r.Context(), "auth.login", map[string]any{
		"username":   strings.ToLower(strings.TrimSpace(req.Username)),
		"scopes":     req.Scopes,
		"expires_at": token.ExpiresAt,
	})
	writeJSON(w, http.StatusOK, token)
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	principal, ok := a.requireScope(w, r, "user")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, principal.User)
}

func (a *API) handlePassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	principal, ok := a.requireScope(w, r, "user")
	if !ok {
		return
	}
	var req changePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.auth.ChangePassword(r.Context(), principal.User.UUID, req.CurrentPassword, req.NewPassword); err != nil {
		handleAuthError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "auth.password.changed", map[string]any{
		"subject": principal.User.UUID.String(),
	})
	w.WriteHeader(http.StatusNoContent)
}
