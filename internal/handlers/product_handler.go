package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campuscart/backend/internal/middleware"
	"github.com/campuscart/backend/internal/models"
	"github.com/campuscart/backend/internal/services"
)

type ProductHandler struct {
	productService *services.ProductService
	maxUploadBytes int64
}

func NewProductHandler(productService *services.ProductService, maxUploadBytes int64) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		maxUploadBytes: maxUploadBytes,
	}
}

// Create posts a new listing for the caller. It always starts Pending.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	form, img, cleanup, ok := productRequest(w, r, h.maxUploadBytes)
	defer cleanup()
	if !ok {
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), requestTimeout)
	defer cancel()

	p, err := h.productService.Create(ctx, middleware.GetUsername(r.Context()), form, img)
	if err != nil {
		writeError(w, "CreateProduct", err, "Failed to create product")
		return
	}
	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(p))
}

// ListAll is the home feed for {username}.
func (h *ProductHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r.Context(), requestTimeout)
	defer cancel()

	list, err := h.productService.ListForViewer(ctx, chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, "ListProducts", err, "Failed to list products")
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(list))
}

func (h *ProductHandler) ListFiltered(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.ProductFilter{
		Category:  models.Category(q.Get("category")),
		Condition: models.Condition(q.Get("condition")),
	}
	if filter.Category != "" && !filter.Category.Valid() {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Unknown category"))
		return
	}
	if filter.Condition != "" && !filter.Condition.Valid() {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Unknown condition"))
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), requestTimeout)
	defer cancel()

	list, err := h.productService.Browse(ctx, chi.URLParam(r, "username"), filter)
	if err != nil {
		writeError(w, "FilterProducts", err, "Failed to list products")
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(list))
}

// ListBySeller backs the profile page; the owner sees every status.
func (h *ProductHandler) ListBySeller(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r.Context(), requestTimeout)
	defer cancel()

	list, err := h.productService.ListBySeller(ctx, chi.URLParam(r, "username"), middleware.GetUsername(r.Context()))
	if err != nil {
		writeError(w, "ListSellerProducts", err, "Failed to list products")
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(list))
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	code, ok := intParam(w, r, "code")
	if !ok {
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), requestTimeout)
	defer cancel()

	p, err := h.productService.Get(ctx, code, viewer(r))
	if err != nil {
		writeError(w, "GetProduct", err, "Failed to get product")
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(p))
}

func (h *ProductHandler) Seller(w http.ResponseWriter, r *http.Request) {
	code, ok := intParam(w, r, "code")
	if !ok {
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), requestTimeout)
	defer cancel()

	seller, err := h.productService.Seller(ctx, code, viewer(r))
	if err != nil {
		writeError(w, "GetSeller", err, "Failed to get seller")
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(seller))
}

// Update applies an owner edit. Edits of sold listings answer 412.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	code, ok := intParam(w, r, "code")
	if !ok {
		return
	}
	form, img, cleanup, ok := productRequest(w, r, h.maxUploadBytes)
	defer cleanup()
	if !ok {
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), requestTimeout)
	defer cancel()

	res, err := h.productService.Update(ctx, code, middleware.GetUsername(r.Context()), form, img)
	if err != nil {
		writeError(w, "UpdateProduct", err, "Failed to update product")
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(res))
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	code, ok := intParam(w, r, "code")
	if !ok {
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.productService.Delete(ctx, code, viewer(r)); err != nil {
		writeError(w, "DeleteProduct", err, "Failed to delete product")
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(models.MessageResponse{Message: "Product deleted"}))
}

// ReviewQueue lists every listing, whatever its status, for the admin table.
func (h *ProductHandler) ReviewQueue(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r.Context(), requestTimeout)
	defer cancel()

	list, err := h.productService.ReviewQueue(ctx)
	if err != nil {
		writeError(w, "ReviewQueue", err, "Failed to list products")
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(list))
}

func (h *ProductHandler) Approve(w http.ResponseWriter, r *http.Request) {
	var req models.ReviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validated(w, req.Validate()) {
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), requestTimeout)
	defer cancel()

	p, err := h.productService.Approve(ctx, req.ProductCode)
	if err != nil {
		writeError(w, "ApproveProduct", err, "Failed to approve product")
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(p))
}

func (h *ProductHandler) Reject(w http.ResponseWriter, r *http.Request) {
	var req models.RejectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validated(w, req.Validate()) {
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), requestTimeout)
	defer cancel()

	p, err := h.productService.Reject(ctx, req.ProductCode, req.Feedback)
	if err != nil {
		writeError(w, "RejectProduct", err, "Failed to reject product")
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(p))
}

// BulkDelete takes a JSON array of product codes.
func (h *ProductHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var codes []int
	if !decodeJSON(w, r, &codes) {
		return
	}
	if len(codes) == 0 {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("No product codes given"))
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), requestTimeout)
	defer cancel()

	n, err := h.productService.BulkDelete(ctx, codes)
	if err != nil {
		writeError(w, "BulkDeleteProducts", err, "Failed to delete products")
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(models.BulkDeleteResponse{DeletedCount: n}))
}
