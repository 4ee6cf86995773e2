package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"bookstore.org/internal/auth"
)

const (
	authHeader   = "Authorization"
	bearerPrefix = "Bearer "

	// authCookieName carries the session token; its lifetime always
	// matches the token expiry so neither outlives the other.
	authCookieName = "authToken"
)

var publicPaths = []string{
	"/users/add",
	"/users/login",
	"/healthz",
	"/readyz",
	"/metrics",
	"/v1/info",
	"/",
}

// withAuth authenticates every non-public request: token from the bearer
// header or the auth cookie, verified claims into the context. Missing or
// invalid tokens answer 401 before any handler runs.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions || isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token, err := extractToken(r)
		if err != nil {
			writeError(w, r, http.StatusUnauthorized, err.Error())
			return
		}

		claims, err := a.auth.VerifyToken(token)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidToken) {
				writeError(w, r, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			writeError(w, r, http.StatusInternalServerError, "authentication error")
			return
		}

		ctx := auth.ContextWithClaims(r.Context(), claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requirePermission is the second gate: the verified claims must carry the
// route's declared permission. Authenticated but unpermitted answers 403.
func (a *API) requirePermission(w http.ResponseWriter, r *http.Request, perm string) bool {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return false
	}
	if !claims.HasPermission(perm) {
		writeError(w, r, http.StatusForbidden, "insufficient permissions")
		return false
	}
	return true
}

// issueAuthCookie sets the httpOnly session cookie with the same lifetime
// as the token itself.
func (a *API) issueAuthCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(a.auth.TokenTTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func extractToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get(authHeader))
	if header != "" {
		if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearerPrefix)) {
			return "", errors.New("invalid authorization scheme")
		}
		token := strings.TrimSpace(header[len(bearerPrefix):])
		if token == "" {
			return "", errors.New("missing bearer token")
		}
		return token, nil
	}
	if c, err := r.Cookie(authCookieName); err == nil && strings.TrimSpace(c.Value) != "" {
		return strings.TrimSpace(c.Value), nil
	}
	return "", errors.New("missing credentials")
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	return false
}
