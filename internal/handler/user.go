package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/messagely/messagely-go/internal/apperr"
	"github.com/messagely/messagely-go/internal/middleware"
	"github.com/messagely/messagely-go/internal/service"
)

var errNotSelf = apperr.New(apperr.ErrUnauthorized, "unauthorized")

// UserHandler handles HTTP requests for the user directory and mailboxes.
type UserHandler struct {
	users    *service.UserService
	messages *service.MessageService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *service.UserService, messages *service.MessageService) *UserHandler {
	return &UserHandler{users: users, messages: messages}
}

// HandleList handles GET /api/v1/users requests.
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

// HandleGet handles GET /api/v1/users/{username} requests. Only the user
// themselves may read the full profile.
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	username, ok := ensureCorrectUser(w, r)
	if !ok {
		return
	}

	profile, err := h.users.Get(r.Context(), username)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": profile})
}

// HandleListFrom handles GET /api/v1/users/{username}/from requests.
func (h *UserHandler) HandleListFrom(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	msgs, err := h.messages.ListFrom(r.Context(), identity, chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

// HandleListTo handles GET /api/v1/users/{username}/to requests.
func (h *UserHandler) HandleListTo(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	msgs, err := h.messages.ListTo(r.Context(), identity, chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

// ensureCorrectUser returns the {username} path parameter when it names the
// caller. Otherwise it writes the rejection and returns false.
func ensureCorrectUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return "", false
	}

	username := chi.URLParam(r, "username")
	if username != identity {
		writeError(w, r, errNotSelf)
		return "", false
	}
	return username, true
}
