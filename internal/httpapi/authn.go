package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"ironlog.app/internal/audit"
	"ironlog.app/internal/auth"
	"ironlog.app/internal/obs"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "
)

var publicPaths = []string{
	"/v1/users/login",
	"/v1/users/register",
	"/metrics",
	"/healthz",
	"/readyz",
	"/",
}

// withAuth authenticates every non-public request: it extracts the bearer
// token, verifies it and resolves the live principal. Roles are NOT read
// here; handlers consult the guard per operation.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		if isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token, err := extractBearerToken(r.Header.Get(authHeader))
		if err != nil {
			a.unauthorized(w, r, "missing_token", err.Error())
			return
		}

		principal, err := a.auth.Authenticate(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpired):
				a.unauthorized(w, r, "expired", "token expired")
			case errors.Is(err, auth.ErrInvalidSignature):
				a.unauthorized(w, r, "invalid_signature", "invalid token")
			case errors.Is(err, auth.ErrMalformed):
				a.unauthorized(w, r, "malformed", "invalid token")
			case errors.Is(err, auth.ErrInvalidCredentials):
				a.unauthorized(w, r, "unknown_subject", "invalid token")
			default:
				writeError(w, r, http.StatusInternalServerError, "authentication error")
			}
			return
		}

		ctx := auth.ContextWithPrincipal(r.Context(), principal)
		ctx = auth.ContextWithToken(ctx, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *API) unauthorized(w http.ResponseWriter, r *http.Request, reason, msg string) {
	obs.IncDenial(reason)
	w.Header().Set("WWW-Authenticate", `Bearer realm="ironlog"`)
	writeError(w, r, http.StatusUnauthorized, msg)
}

// requireRole runs the permission guard: the subject's roles are re-read
// from the store on this request, so grants and revocations made after the
// token was issued are already in force. Returns the principal on success.
func (a *API) requireRole(w http.ResponseWriter, r *http.Request, allowed ...string) (auth.Principal, bool) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		a.unauthorized(w, r, "missing_token", "authentication required")
		return auth.Principal{}, false
	}
	if _, err := a.auth.Authorize(r.Context(), principal.User.UUID, allowed...); err != nil {
		if errors.Is(err, auth.ErrForbidden) {
			obs.IncDenial("forbidden")
			_ = audit.LogEvent(r.Context(), "auth.denied", map[string]any{
				"path":     r.URL.Path,
				"required": allowed,
			})
			writeError(w, r, http.StatusForbidden, "insufficient role")
			return auth.Principal{}, false
		}
		writeError(w, r, http.StatusInternalServerError, "authorization error")
		return auth.Principal{}, false
	}
	return principal, true
}

// requireScope checks a scope frozen into the token at login time.
func (a *API) requireScope(w http.ResponseWriter, r *http.Request, scope string) (auth.Principal, bool) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		a.unauthorized(w, r, "missing_token", "authentication required")
		return auth.Principal{}, false
	}
	if !principal.HasScope(scope) {
		obs.IncDenial("missing_scope")
		writeError(w, r, http.StatusForbidden, "token lacks required scope")
		return auth.Principal{}, false
	}
	return principal, true
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	return false
}
