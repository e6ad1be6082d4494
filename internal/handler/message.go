package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/messagely/messagely-go/internal/middleware"
	"github.com/messagely/messagely-go/internal/model"
	"github.com/messagely/messagely-go/internal/service"
)

// MessageHandler handles HTTP requests for message operations.
type MessageHandler struct {
	service *service.MessageService
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(svc *service.MessageService) *MessageHandler {
	return &MessageHandler{service: svc}
}

// HandleGet handles GET /api/v1/messages/{id} requests.
func (h *MessageHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	identity, id, ok := identityAndMessageID(w, r)
	if !ok {
		return
	}

	msg, err := h.service.Get(r.Context(), identity, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": msg})
}

// HandleCreate handles POST /api/v1/messages requests.
func (h *MessageHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	var req model.SendMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	msg, err := h.service.Send(r.Context(), identity, req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"message": msg})
}

// HandleMarkRead handles POST /api/v1/messages/{id}/read requests.
func (h *MessageHandler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	identity, id, ok := identityAndMessageID(w, r)
	if !ok {
		return
	}

	receipt, err := h.service.MarkRead(r.Context(), identity, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": receipt})
}

// identityAndMessageID resolves the caller and the {id} path parameter. An id
// that is not a UUID cannot name a message and is reported as not found.
func identityAndMessageID(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return "", "", false
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, service.ErrMessageNotFound)
		return "", "", false
	}
	return identity, id.String(), true
}
