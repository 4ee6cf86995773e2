package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"bookstore.org/internal/audit"
	"bookstore.org/internal/auth"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleUserList serves the account listing to any authenticated user;
// the auth middleware is the only gate on this route.
func (a *API) handleUserList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	users, err := a.auth.ListUsers(r.Context())
	if err != nil {
		a.handleAuthError(w, r, err)
		return
	}
	if users == nil {
		users = []auth.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

// handleUserAdd registers a new account. Public: this is how accounts come
// to exist. The response carries the session token and also sets the auth
// cookie so browser clients are signed in immediately.
func (a *API) handleUserAdd(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var in auth.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	user, token, _, err := a.auth.Register(r.Context(), in)
	if err != nil {
		a.handleAuthError(w, r, err)
		return
	}

	a.issueAuthCookie(w, token)
	_ = audit.LogEvent(r.Context(), "auth.user.register", map[string]any{
		"user_id": user.ID,
		"email":   user.Email,
	})
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("User %s added with an id of %s", user.FullName, user.ID),
		"token":   token,
	})
}

func (a *API) handleUserLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var in loginRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	user, token, _, err := a.auth.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			writeError(w, r, http.StatusUnauthorized, "email or password incorrect")
			return
		}
		a.handleAuthError(w, r, err)
		return
	}

	a.issueAuthCookie(w, token)
	_ = audit.LogEvent(r.Context(), "auth.user.login", map[string]any{
		"user_id": user.ID,
		"email":   user.Email,
	})
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Welcome back %s", user.FullName),
		"token":   token,
	})
}

// handleUserUpdate dispatches /users/update/me (self-service) and
// /users/update/{id} (admin). The admin branch demands the user-edit
// permission; the self branch only needs authentication.
func (a *API) handleUserUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := resourceID(w, r, "/users/update/")
	if !ok {
		return
	}
	if r.Method != http.MethodPut {
		methodNotAllowed(w, r, http.MethodPut)
		return
	}

	var upd auth.ProfileUpdate
	if err := decodeJSON(w, r, &upd); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var (
		modified int64
		err      error
		target   = id
	)
	if id == "me" {
		claims, hasClaims := auth.ClaimsFromContext(r.Context())
		if !hasClaims {
			writeError(w, r, http.StatusUnauthorized, "authentication required")
			return
		}
		target = claims.Subject
		modified, err = a.auth.UpdateSelf(r.Context(), upd)
	} else {
		if !a.requirePermission(w, r, auth.PermEditUsers) {
			return
		}
		modified, err = a.auth.UpdateUser(r.Context(), id, upd)
	}
	if err != nil {
		a.handleAuthError(w, r, err)
		return
	}
	if modified == 0 {
		writeMessage(w, http.StatusBadRequest, fmt.Sprintf("User %s not updated", target))
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.user.update", map[string]any{"target": target})
	writeMessage(w, http.StatusOK, fmt.Sprintf("User %s updated", target))
}

// handleAuthError maps auth failures onto the response taxonomy.
func (a *API) handleAuthError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrAlreadyExists):
		writeError(w, r, http.StatusConflict, "email is already registered")
	case errors.Is(err, auth.ErrUnauthorized):
		writeError(w, r, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, auth.ErrForbidden):
		writeError(w, r, http.StatusForbidden, "insufficient permissions")
	case errors.Is(err, auth.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "not found")
	default:
		logInternalError(r, err)
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
