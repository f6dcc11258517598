package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campuscart/backend/internal/middleware"
	"github.com/campuscart/backend/internal/models"
	"github.com/campuscart/backend/internal/services"
)

type MessageHandler struct {
	messageService *services.MessageService
}

func NewMessageHandler(messageService *services.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req models.SendMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validated(w, req.Validate()) {
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), requestTimeout)
	defer cancel()

	m, err := h.messageService.Send(ctx, middleware.GetUsername(r.Context()), &req)
	if err != nil {
		writeError(w, "SendMessage", err, "Failed to send message")
		return
	}
	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(m))
}

// Conversation returns the thread between u1 and u2, oldest first,
// optionally narrowed to one listing.
func (h *MessageHandler) Conversation(w http.ResponseWriter, r *http.Request) {
	u1, u2 := chi.URLParam(r, "u1"), chi.URLParam(r, "u2")
	v := viewer(r)
	if v.Username != u1 && v.Username != u2 && !v.IsAdmin() {
		writeJSON(w, http.StatusForbidden, models.NewErrorResponse("Not a participant of this conversation"))
		return
	}

	var productCode *int
	if chi.URLParam(r, "code") != "" {
		code, ok := intParam(w, r, "code")
		if !ok {
			return
		}
		productCode = &code
	}

	ctx, cancel := contextWithTimeout(r.Context(), requestTimeout)
	defer cancel()

	list, err := h.messageService.Conversation(ctx, u1, u2, productCode)
	if err != nil {
		writeError(w, "Conversation", err, "Failed to load conversation")
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(list))
}

func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.messageService.MarkRead(ctx, chi.URLParam(r, "id"), middleware.GetUsername(r.Context())); err != nil {
		writeError(w, "MarkMessageRead", err, "Failed to mark message as read")
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(models.MessageResponse{Message: "Message marked as read"}))
}

func (h *MessageHandler) Unread(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if !selfOrAdmin(w, r, username) {
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), requestTimeout)
	defer cancel()

	list, err := h.messageService.Unread(ctx, username)
	if err != nil {
		writeError(w, "UnreadMessages", err, "Failed to load messages")
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(list))
}

func (h *MessageHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if !selfOrAdmin(w, r, username) {
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), requestTimeout)
	defer cancel()

	n, err := h.messageService.UnreadCount(ctx, username)
	if err != nil {
		writeError(w, "UnreadMessageCount", err, "Failed to count messages")
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(models.UnreadCount{Count: n}))
}

func (h *MessageHandler) Conversations(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if !selfOrAdmin(w, r, username) {
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), requestTimeout)
	defer cancel()

	list, err := h.messageService.Conversations(ctx, username)
	if err != nil {
		writeError(w, "Conversations", err, "Failed to load conversations")
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(list))
}

// Partners lists the usernames the user has exchanged messages with.
func (h *MessageHandler) Partners(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if !selfOrAdmin(w, r, username) {
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), requestTimeout)
	defer cancel()

	list, err := h.messageService.Partners(ctx, username)
	if err != nil {
		writeError(w, "ChatPartners", err, "Failed to load chat partners")
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(list))
}
