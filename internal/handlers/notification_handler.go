package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campuscart/backend/internal/middleware"
	"github.com/campuscart/backend/internal/models"
	"github.com/campuscart/backend/internal/services"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if !selfOrAdmin(w, r, username) {
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), requestTimeout)
	defer cancel()

	list, err := h.notificationService.List(ctx, username)
	if err != nil {
		writeError(w, "ListNotifications", err, "Failed to load notifications")
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(list))
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if !selfOrAdmin(w, r, username) {
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), requestTimeout)
	defer cancel()

	n, err := h.notificationService.UnreadCount(ctx, username)
	if err != nil {
		writeError(w, "UnreadNotifications", err, "Failed to count notifications")
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(models.UnreadCount{Count: n}))
}

// MarkRead marks one of the caller's notifications as read.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.notificationService.MarkRead(ctx, chi.URLParam(r, "id"), middleware.GetUsername(r.Context())); err != nil {
		writeError(w, "MarkNotificationRead", err, "Failed to mark notification as read")
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(models.MessageResponse{Message: "Notification marked as read"}))
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if !selfOrAdmin(w, r, username) {
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), requestTimeout)
	defer cancel()

	n, err := h.notificationService.MarkAllRead(ctx, username)
	if err != nil {
		writeError(w, "MarkAllNotificationsRead", err, "Failed to mark notifications as read")
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(models.UnreadCount{Count: n}))
}
