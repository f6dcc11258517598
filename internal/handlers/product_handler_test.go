package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/campuscart/backend/internal/lifecycle"
	"github.com/campuscart/backend/internal/models"
)

func codes(list []models.Product) []int {
	out := make([]int, 0, len(list))
	for _, p := range list {
		out = append(out, p.Code)
	}
	return out
}

func TestProductLifecycle(t *testing.T) {
	s := newTestServer(t, nil)
	seller := s.register("seller")
	buyer := s.register("buyer")
	admin := s.admin()

	rec := s.multipartProduct(http.MethodPost, "/api/product/postproduct", seller, bookForm(100), true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var p models.Product
	decodeData(t, rec, &p)
	require.Equal(t, lifecycle.StatusPending, p.Status)
	require.NotEmpty(t, p.ImagePath)
	path := func(f string) string { return fmt.Sprintf(f, p.Code) }

	t.Run("Create_PendingHiddenFromFeed", func(t *testing.T) {
		var list []models.Product
		decodeData(t, s.do(http.MethodGet, "/api/product/getAllProducts/buyer", buyer, nil), &list)
		require.NotContains(t, codes(list), p.Code)

		rec := s.do(http.MethodGet, path("/api/product/getProductByCode/%d"), buyer, nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("ListBySeller_OwnerSeesPending", func(t *testing.T) {
		var list []models.Product
		decodeData(t, s.do(http.MethodGet, "/api/product/getProductsByUser/seller", seller, nil), &list)
		require.Contains(t, codes(list), p.Code)

		decodeData(t, s.do(http.MethodGet, "/api/product/getProductsByUser/seller", buyer, nil), &list)
		require.NotContains(t, codes(list), p.Code)
	})

	t.Run("Approve_RequiresAdmin", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/api/product/approve", seller, models.ReviewRequest{ProductCode: p.Code})
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("Approve_MakesVisible", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/api/product/approve", admin, models.ReviewRequest{ProductCode: p.Code})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var list []models.Product
		decodeData(t, s.do(http.MethodGet, "/api/product/getAllProducts/buyer", buyer, nil), &list)
		require.Contains(t, codes(list), p.Code)

		decodeData(t, s.do(http.MethodGet, "/api/product/getFilteredProducts/buyer?category=Books", buyer, nil), &list)
		require.Contains(t, codes(list), p.Code)
		decodeData(t, s.do(http.MethodGet, "/api/product/getFilteredProducts/buyer?category=Food", buyer, nil), &list)
		require.NotContains(t, codes(list), p.Code)
	})

	t.Run("Approve_Idempotent", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/api/product/approve", admin, models.ReviewRequest{ProductCode: p.Code})
		require.Equal(t, http.StatusOK, rec.Code)

		var notes []models.Notification
		decodeData(t, s.do(http.MethodGet, "/api/notifications/user/seller", seller, nil), &notes)
		require.Len(t, notes, 1)
		require.Equal(t, models.NotificationInfo, notes[0].Type)
	})

	t.Run("Update_UnchangedStaysApproved", func(t *testing.T) {
		rec := s.multipartProduct(http.MethodPut, path("/api/product/putProductDetails/%d"), seller, bookForm(100), false)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var res models.ProductUpdateResult
		decodeData(t, rec, &res)
		require.Equal(t, lifecycle.StatusApproved, res.Product.Status)
		require.False(t, res.StatusChanged)
	})

	t.Run("Update_ByOtherUserForbidden", func(t *testing.T) {
		rec := s.multipartProduct(http.MethodPut, path("/api/product/putProductDetails/%d"), buyer, bookForm(150), false)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("Update_PriceChangeGoesPending", func(t *testing.T) {
		rec := s.multipartProduct(http.MethodPut, path("/api/product/putProductDetails/%d"), seller, bookForm(150), false)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var res models.ProductUpdateResult
		decodeData(t, rec, &res)
		require.Equal(t, lifecycle.StatusPending, res.Product.Status)
		require.True(t, res.StatusChanged)
		require.NotEmpty(t, res.Message)
	})

	t.Run("Update_RequestSold", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/api/product/approve", admin, models.ReviewRequest{ProductCode: p.Code})
		require.Equal(t, http.StatusOK, rec.Code)

		form := bookForm(175)
		form.Status = lifecycle.StatusSold
		rec = s.do(http.MethodPut, path("/api/product/putProductDetails/%d"), seller, form)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var res models.ProductUpdateResult
		decodeData(t, rec, &res)
		require.Equal(t, lifecycle.StatusSold, res.Product.Status)
	})

	t.Run("Sold_RejectsFurtherChanges", func(t *testing.T) {
		rec := s.multipartProduct(http.MethodPut, path("/api/product/putProductDetails/%d"), seller, bookForm(175), false)
		require.Equal(t, http.StatusPreconditionFailed, rec.Code)

		rec = s.do(http.MethodPost, "/api/product/approve", admin, models.ReviewRequest{ProductCode: p.Code})
		require.Equal(t, http.StatusPreconditionFailed, rec.Code)

		rec = s.do(http.MethodPost, "/api/product/reject", admin, models.RejectRequest{ProductCode: p.Code, Feedback: "late"})
		require.Equal(t, http.StatusPreconditionFailed, rec.Code)

		var got models.Product
		decodeData(t, s.do(http.MethodGet, path("/api/product/getProductByCode/%d"), seller, nil), &got)
		require.Equal(t, lifecycle.StatusSold, got.Status)
	})
}

func TestRejectFlow(t *testing.T) {
	s := newTestServer(t, nil)
	seller := s.register("seller")
	admin := s.admin()

	var p models.Product
	decodeData(t, s.do(http.MethodPost, "/api/product/postproduct", seller, bookForm(20)), &p)

	t.Run("Reject_NotifiesSeller", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/api/product/reject", admin, models.RejectRequest{ProductCode: p.Code, Feedback: "blurry photo"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got models.Product
		decodeData(t, rec, &got)
		require.Equal(t, lifecycle.StatusRejected, got.Status)
		require.Equal(t, "blurry photo", got.Feedback)

		var notes []models.Notification
		decodeData(t, s.do(http.MethodGet, "/api/notifications/user/seller", seller, nil), &notes)
		require.Len(t, notes, 1)
		require.Equal(t, models.NotificationRejection, notes[0].Type)
		require.Contains(t, notes[0].Message, "blurry photo")
	})

	t.Run("Update_RejectedResubmits", func(t *testing.T) {
		form := bookForm(20)
		form.Name = "Calculus textbook, 2nd ed"
		rec := s.do(http.MethodPut, fmt.Sprintf("/api/product/putProductDetails/%d", p.Code), seller, form)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var res models.ProductUpdateResult
		decodeData(t, rec, &res)
		require.Equal(t, lifecycle.StatusPending, res.Product.Status)
	})

	t.Run("Create_ValidationErrors", func(t *testing.T) {
		form := bookForm(0)
		form.Category = "Furniture"
		rec := s.do(http.MethodPost, "/api/product/postproduct", seller, form)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		env := decodeEnvelope(t, rec)
		require.Contains(t, env.Errors, "price")
		require.Contains(t, env.Errors, "category")
	})

	t.Run("ReviewQueue_ListsAllStatuses", func(t *testing.T) {
		var list []models.Product
		decodeData(t, s.do(http.MethodGet, "/api/product/pendingApproval", admin, nil), &list)
		require.Contains(t, codes(list), p.Code)
	})

	t.Run("BulkDelete_SkipsMissing", func(t *testing.T) {
		rec := s.do(http.MethodDelete, "/api/admin/delete-products", admin, []int{p.Code, 9999})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var res models.BulkDeleteResponse
		decodeData(t, rec, &res)
		require.Equal(t, 1, res.DeletedCount)

		rec = s.do(http.MethodGet, fmt.Sprintf("/api/product/getProductByCode/%d", p.Code), admin, nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}
