package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campuscart/backend/internal/middleware"
	"github.com/campuscart/backend/internal/models"
	"github.com/campuscart/backend/internal/services"
)

// UserHandler serves account records. The same handlers back the student
// routes and the admin routes; role picks which kind of account a route
// may touch.
type UserHandler struct {
	userService    *services.UserService
	accountService *services.AccountService
	maxUploadBytes int64
}

func NewUserHandler(userService *services.UserService, accountService *services.AccountService, maxUploadBytes int64) *UserHandler {
	return &UserHandler{
		userService:    userService,
		accountService: accountService,
		maxUploadBytes: maxUploadBytes,
	}
}

// Get returns the full record to its owner or an admin, and the public
// seller view to anybody else.
func (h *UserHandler) Get(role models.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := chi.URLParam(r, "username")

		ctx, cancel := contextWithTimeout(r.Context(), requestTimeout)
		defer cancel()

		u, err := h.userService.GetWithRole(ctx, username, role)
		if err != nil {
			writeError(w, "GetUser", err, "Failed to get user")
			return
		}
		v := viewer(r)
		if v.Username != username && !v.IsAdmin() {
			writeJSON(w, http.StatusOK, models.NewSuccessResponse(u.Seller()))
			return
		}
		writeJSON(w, http.StatusOK, models.NewSuccessResponse(u))
	}
}

func (h *UserHandler) List(role models.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := contextWithTimeout(r.Context(), requestTimeout)
		defer cancel()

		list, err := h.userService.List(ctx, role)
		if err != nil {
			writeError(w, "ListUsers", err, "Failed to list users")
			return
		}
		writeJSON(w, http.StatusOK, models.NewSuccessResponse(list))
	}
}

func (h *UserHandler) Update(role models.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := chi.URLParam(r, "username")
		if !selfOrAdmin(w, r, username) {
			return
		}
		var req models.UpdateUserRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if !validated(w, req.Validate()) {
			return
		}

		ctx, cancel := contextWithTimeout(r.Context(), requestTimeout)
		defer cancel()

		if _, err := h.userService.GetWithRole(ctx, username, role); err != nil {
			writeError(w, "UpdateUser", err, "Failed to update user")
			return
		}
		u, err := h.userService.Update(ctx, username, &req)
		if err != nil {
			writeError(w, "UpdateUser", err, "Failed to update user")
			return
		}
		writeJSON(w, http.StatusOK, models.NewSuccessResponse(u))
	}
}

func (h *UserHandler) ChangePassword(role models.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := chi.URLParam(r, "username")
		if !selfOrAdmin(w, r, username) {
			return
		}
		var req models.ChangePasswordRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if !validated(w, req.Validate()) {
			return
		}

		ctx, cancel := contextWithTimeout(r.Context(), requestTimeout)
		defer cancel()

		if _, err := h.userService.GetWithRole(ctx, username, role); err != nil {
			writeError(w, "ChangePassword", err, "Failed to change password")
			return
		}
		if err := h.userService.ChangePassword(ctx, username, &req); err != nil {
			writeError(w, "ChangePassword", err, "Failed to change password")
			return
		}
		writeJSON(w, http.StatusOK, models.NewSuccessResponse(models.MessageResponse{Message: "Password updated"}))
	}
}

// Delete removes the account and everything it owns.
func (h *UserHandler) Delete(role models.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := chi.URLParam(r, "username")
		if !selfOrAdmin(w, r, username) {
			return
		}

		ctx, cancel := contextWithTimeout(r.Context(), services.DefaultAccountTimeout())
		defer cancel()

		if _, err := h.userService.GetWithRole(ctx, username, role); err != nil {
			writeError(w, "DeleteUser", err, "Failed to delete user")
			return
		}
		res, err := h.accountService.DeleteAccount(ctx, username)
		if err != nil {
			writeError(w, "DeleteUser", err, "Failed to delete user")
			return
		}
		writeJSON(w, http.StatusOK, models.NewSuccessResponse(res))
	}
}

// UploadPhoto replaces the profile photo with the "file" part of a
// multipart body.
func (h *UserHandler) UploadPhoto(role models.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := chi.URLParam(r, "username")
		if !selfOrAdmin(w, r, username) {
			return
		}
		if !parseMultipart(w, r, h.maxUploadBytes) {
			return
		}
		img, file, err := formImage(r, "file")
		if err != nil {
			if errors.Is(err, errNoFile) {
				writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("No image file provided"))
				return
			}
			writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid image file"))
			return
		}
		defer file.Close()

		ctx, cancel := contextWithTimeout(r.Context(), requestTimeout)
		defer cancel()

		if _, err := h.userService.GetWithRole(ctx, username, role); err != nil {
			writeError(w, "UploadPhoto", err, "Failed to upload photo")
			return
		}
		u, err := h.userService.SetPhoto(ctx, username, img)
		if err != nil {
			writeError(w, "UploadPhoto", err, "Failed to upload photo")
			return
		}
		writeJSON(w, http.StatusOK, models.NewSuccessResponse(models.PhotoResponse{ProfilePhoto: u.ProfilePhoto}))
	}
}

// AddAdmin lets an admin create another admin account.
func (h *UserHandler) AddAdmin(w http.ResponseWriter, r *http.Request) {
	var form models.AdminForm
	if !decodeJSON(w, r, &form) {
		return
	}
	form.Normalize()
	if !validated(w, form.Validate()) {
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), requestTimeout)
	defer cancel()

	u, err := h.userService.CreateAdmin(ctx, &form)
	if err != nil {
		writeError(w, "AddAdmin", err, "Failed to create admin")
		return
	}
	log.Printf("[AddAdmin] username=%s by=%s", u.Username, middleware.GetUsername(r.Context()))
	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(u))
}
