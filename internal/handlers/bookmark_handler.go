package handlers

import (
	"net/http"

	"github.com/campuscart/backend/internal/middleware"
	"github.com/campuscart/backend/internal/models"
	"github.com/campuscart/backend/internal/services"
)

type BookmarkHandler struct {
	bookmarkService *services.BookmarkService
}

func NewBookmarkHandler(bookmarkService *services.BookmarkService) *BookmarkHandler {
	return &BookmarkHandler{bookmarkService: bookmarkService}
}

func (h *BookmarkHandler) Add(w http.ResponseWriter, r *http.Request) {
	code, ok := intParam(w, r, "code")
	if !ok {
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), requestTimeout)
	defer cancel()

	b, err := h.bookmarkService.Add(ctx, middleware.GetUsername(r.Context()), code)
	if err != nil {
		writeError(w, "AddBookmark", err, "Failed to bookmark product")
		return
	}
	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(b))
}

func (h *BookmarkHandler) Remove(w http.ResponseWriter, r *http.Request) {
	code, ok := intParam(w, r, "code")
	if !ok {
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.bookmarkService.Remove(ctx, middleware.GetUsername(r.Context()), code); err != nil {
		writeError(w, "RemoveBookmark", err, "Failed to remove bookmark")
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(models.MessageResponse{Message: "Bookmark removed"}))
}

// List returns the caller's bookmarked listings that are still visible.
func (h *BookmarkHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r.Context(), requestTimeout)
	defer cancel()

	list, err := h.bookmarkService.List(ctx, middleware.GetUsername(r.Context()))
	if err != nil {
		writeError(w, "ListBookmarks", err, "Failed to load bookmarks")
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(list))
}
