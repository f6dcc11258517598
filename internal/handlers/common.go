package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/campuscart/backend/internal/lifecycle"
	"github.com/campuscart/backend/internal/middleware"
	"github.com/campuscart/backend/internal/models"
	"github.com/campuscart/backend/internal/services"
)

const requestTimeout = 10 * time.Second

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func contextWithTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, d)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return false
	}
	return true
}

// validated writes a 400 with the field errors when errs is non-empty.
func validated(w http.ResponseWriter, errs map[string]string) bool {
	if len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errs))
		return false
	}
	return true
}

func intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid "+name))
		return 0, false
	}
	return v, true
}

func viewer(r *http.Request) services.Viewer {
	return services.Viewer{
		Username: middleware.GetUsername(r.Context()),
		Role:     middleware.GetRole(r.Context()),
	}
}

// selfOrAdmin allows the request when it acts on the caller's own username
// or comes from an admin.
func selfOrAdmin(w http.ResponseWriter, r *http.Request, username string) bool {
	v := viewer(r)
	if v.Username == username || v.IsAdmin() {
		return true
	}
	writeJSON(w, http.StatusForbidden, models.NewErrorResponse("Not allowed to access another user's data"))
	return false
}

// errorStatus maps service and lifecycle errors to HTTP statuses.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, lifecycle.ErrPreconditionFailed):
		return http.StatusPreconditionFailed, "Sold listings can no longer be changed"
	case errors.Is(err, lifecycle.ErrUnknownStatus), errors.Is(err, lifecycle.ErrUnknownAction):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrProductNotFound):
		return http.StatusNotFound, "Product not found"
	case errors.Is(err, services.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, services.ErrMessageNotFound):
		return http.StatusNotFound, "Message not found"
	case errors.Is(err, services.ErrNotificationNotFound):
		return http.StatusNotFound, "Notification not found"
	case errors.Is(err, services.ErrBookmarkNotFound):
		return http.StatusNotFound, "Bookmark not found"
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden, "Not allowed to modify this resource"
	case errors.Is(err, services.ErrUsernameExists):
		return http.StatusConflict, "Username already taken"
	case errors.Is(err, services.ErrEmailExists):
		return http.StatusConflict, "Email already registered"
	case errors.Is(err, services.ErrAlreadyBookmarked):
		return http.StatusConflict, "Product already bookmarked"
	case errors.Is(err, services.ErrStatusConflict):
		return http.StatusConflict, "Product was changed by someone else, reload and try again"
	case errors.Is(err, services.ErrInvalidPassword):
		return http.StatusBadRequest, "Current password is incorrect"
	case errors.Is(err, services.ErrInvalidRecipient):
		return http.StatusBadRequest, "Cannot send a message to yourself"
	case errors.Is(err, services.ErrInvalidImage):
		return http.StatusBadRequest, "Invalid image file"
	case errors.Is(err, services.ErrCaptchaFailed):
		return http.StatusBadRequest, "Captcha verification failed"
	case errors.Is(err, services.ErrImageRejected):
		return http.StatusUnprocessableEntity, "Image rejected: violates community guidelines"
	case errors.Is(err, services.ErrGoogleDisabled):
		return http.StatusServiceUnavailable, "Google sign-in is not available"
	default:
		return http.StatusInternalServerError, ""
	}
}

// writeError logs unexpected failures under op and answers with fallback.
func writeError(w http.ResponseWriter, op string, err error, fallback string) {
	status, msg := errorStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("[%s] error=%v", op, err)
		msg = fallback
	}
	writeJSON(w, status, models.NewErrorResponse(msg))
}
