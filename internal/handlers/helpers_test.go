package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/campuscart/backend/internal/models"
	"github.com/campuscart/backend/internal/services"
	"github.com/campuscart/backend/internal/storage"
)

const testSecret = "test-secret"

type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Error   string            `json:"error"`
	Errors  map[string]string `json:"errors"`
}

type testServer struct {
	t       *testing.T
	handler http.Handler
	stores  *services.Stores
	users   *services.UserService
}

func newTestServer(t *testing.T, captcha services.CaptchaVerifier) *testServer {
	t.Helper()
	stores, err := services.NewMemoryStores("")
	require.NoError(t, err)

	images := services.NewImageService(storage.NewLocal(t.TempDir(), "/uploads"), nil, 1<<20)
	notes := services.NewNotificationService(stores.Notifications, stores.Users, nil)
	users := services.NewUserService(stores.Users, images, nil)

	h := NewRouter(Deps{
		Products:       services.NewProductService(stores.Products, stores.Users, stores.Bookmarks, images, notes),
		Users:          users,
		Accounts:       services.NewAccountService(stores.Users, stores.Products, stores.Bookmarks, stores.Notifications, stores.Messages, images),
		Messages:       services.NewMessageService(stores.Messages, stores.Users, stores.Products),
		Notifications:  notes,
		Bookmarks:      services.NewBookmarkService(stores.Bookmarks, stores.Products),
		Captcha:        captcha,
		JWTSecret:      testSecret,
		JWTExpiration:  time.Hour,
		MaxUploadBytes: 1 << 20,
	})
	return &testServer{t: t, handler: h, stores: stores, users: users}
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return s.send(req, token)
}

func (s *testServer) send(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

// multipartProduct builds a putProductDetails/postproduct body with the
// form as the "product" part and, if image is set, an "imagePath" file.
func (s *testServer) multipartProduct(method, path, token string, form models.ProductForm, image bool) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	raw, err := json.Marshal(form)
	require.NoError(s.t, err)
	require.NoError(s.t, mw.WriteField("product", string(raw)))
	if image {
		fw, err := mw.CreateFormFile("imagePath", "item.png")
		require.NoError(s.t, err)
		_, err = fw.Write([]byte("\x89PNG\r\n\x1a\nfake"))
		require.NoError(s.t, err)
	}
	require.NoError(s.t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return s.send(req, token)
}

func (s *testServer) register(username string) string {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/user/postUserRecord", "", models.UserForm{
		Username:  username,
		FirstName: "First",
		LastName:  "Last",
		Email:     username + "@campus.test",
		Password:  "secret123",
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	var auth models.AuthResponse
	decodeData(s.t, rec, &auth)
	return auth.Token
}

func (s *testServer) admin() string {
	s.t.Helper()
	require.NoError(s.t, s.users.EnsureAdmin(context.Background(), "root", "rootpass1"))
	rec := s.do(http.MethodPost, "/api/admin/login", "", models.LoginRequest{Username: "root", Password: "rootpass1"})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	var auth models.AuthResponse
	decodeData(s.t, rec, &auth)
	return auth.Token
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	env := decodeEnvelope(t, rec)
	require.True(t, env.Success, rec.Body.String())
	if len(env.Data) == 0 {
		return
	}
	require.NoError(t, json.Unmarshal(env.Data, v))
}

func bookForm(price float64) models.ProductForm {
	return models.ProductForm{
		Name:        "Calculus textbook",
		Description: "Lightly used",
		Price:       price,
		Quantity:    1,
		Category:    models.CategoryBooks,
		Condition:   models.ConditionPreLoved,
	}
}
