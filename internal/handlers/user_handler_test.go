package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/campuscart/backend/internal/models"
)

func TestUserHandler(t *testing.T) {
	s := newTestServer(t, nil)
	alice := s.register("alice")
	bob := s.register("bob")
	admin := s.admin()

	t.Run("Get_OwnerSeesFullRecord", func(t *testing.T) {
		var u models.User
		decodeData(t, s.do(http.MethodGet, "/api/user/getUserRecord/alice", alice, nil), &u)
		require.Equal(t, "alice@campus.test", u.Email)
		require.Equal(t, models.RoleUser, u.Role)
	})

	t.Run("Get_OtherSeesSellerView", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/api/user/getUserRecord/alice", bob, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotContains(t, rec.Body.String(), `"role"`)
	})

	t.Run("Update_OtherUserForbidden", func(t *testing.T) {
		rec := s.do(http.MethodPut, "/api/user/putUserRecord/alice", bob, models.UpdateUserRequest{
			FirstName: "X", LastName: "Y", Email: "x@campus.test",
		})
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("Update_Self", func(t *testing.T) {
		rec := s.do(http.MethodPut, "/api/user/putUserRecord/alice", alice, models.UpdateUserRequest{
			FirstName: "Alice", LastName: "Smith", Email: "alice@campus.test", Address: "Dorm 4",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var u models.User
		decodeData(t, rec, &u)
		require.Equal(t, "Dorm 4", u.Address)
	})

	t.Run("ChangePassword_WrongCurrent", func(t *testing.T) {
		rec := s.do(http.MethodPut, "/api/user/changePassword/alice", alice, models.ChangePasswordRequest{
			CurrentPassword: "wrong", NewPassword: "another123",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("ChangePassword_ThenLogin", func(t *testing.T) {
		rec := s.do(http.MethodPut, "/api/user/changePassword/alice", alice, models.ChangePasswordRequest{
			CurrentPassword: "secret123", NewPassword: "another123",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec = s.do(http.MethodPost, "/api/user/login", "", models.LoginRequest{Username: "alice", Password: "another123"})
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("UploadPhoto_Self", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("file", "me.jpg")
		require.NoError(t, err)
		_, err = fw.Write([]byte("\xff\xd8\xff\xe0fake"))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/user/uploadProfilePhoto/alice", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := s.send(req, alice)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var res models.PhotoResponse
		decodeData(t, rec, &res)
		require.Contains(t, res.ProfilePhoto, "/uploads/")
	})

	t.Run("Admin_ListUsers", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/api/admin/users", alice, nil)
		require.Equal(t, http.StatusForbidden, rec.Code)

		var users []models.User
		decodeData(t, s.do(http.MethodGet, "/api/admin/users", admin, nil), &users)
		require.Len(t, users, 2)
	})

	t.Run("Admin_AddAdmin", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/api/admin/addAdmin", admin, models.AdminForm{
			Username: "second", FirstName: "Second", LastName: "Admin", Email: "second@campus.test", Password: "secret123",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var admins []models.User
		decodeData(t, s.do(http.MethodGet, "/api/admin/getAllAdmins", admin, nil), &admins)
		require.Len(t, admins, 2)

		rec = s.do(http.MethodGet, "/api/admin/getAdminRecord/alice", admin, nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Delete_CascadesListings", func(t *testing.T) {
		var p models.Product
		decodeData(t, s.do(http.MethodPost, "/api/product/postproduct", bob, bookForm(5)), &p)

		rec := s.do(http.MethodDelete, "/api/admin/users/bob", admin, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var res struct {
			DeletedProducts []int `json:"deletedProducts"`
		}
		decodeData(t, rec, &res)
		require.Equal(t, []int{p.Code}, res.DeletedProducts)

		rec = s.do(http.MethodGet, "/api/admin/users/bob", admin, nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}
