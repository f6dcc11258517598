package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/campuscart/backend/internal/lifecycle"
	"github.com/campuscart/backend/internal/models"
)

var ErrNotAuthenticated = errors.New("client: not signed in")

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("campuscart: HTTP %d", e.Status)
	}
	return fmt.Sprintf("campuscart: HTTP %d: %s", e.Status, e.Message)
}

// Unwrap lets errors.Is(err, lifecycle.ErrPreconditionFailed) match the
// server's refusal to touch a sold listing.
func (e *APIError) Unwrap() error {
	if e.Status == http.StatusPreconditionFailed {
		return lifecycle.ErrPreconditionFailed
	}
	return nil
}

type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Error   string            `json:"error"`
	Errors  map[string]string `json:"errors"`
}

// Image is a file to upload with a listing.
type Image struct {
	Filename string
	Data     io.Reader
}

type Client struct {
	baseURL string
	http    *http.Client
	session *SessionStore
}

// New returns a client for the API rooted at baseURL (".../api").
// session may be shared with the rest of the application; nil creates a
// private one.
func New(baseURL string, session *SessionStore) *Client {
	if session == nil {
		session = NewSessionStore()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		session: session,
	}
}

func (c *Client) Session() *SessionStore { return c.session }

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string, auth bool) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if auth {
		s, ok := c.session.Current()
		if !ok {
			return nil, ErrNotAuthenticated
		}
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}
	return req, nil
}

func (c *Client) send(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && resp.StatusCode < 300 {
		return fmt.Errorf("campuscart: decode response: %w", err)
	}
	if resp.StatusCode >= 300 || !env.Success {
		return &APIError{Status: resp.StatusCode, Message: env.Error, Fields: env.Errors}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}, auth bool) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
		contentType = "application/json"
	}
	req, err := c.newRequest(ctx, method, path, body, contentType, auth)
	if err != nil {
		return err
	}
	return c.send(req, out)
}

func (c *Client) productMultipart(ctx context.Context, method, path string, form *models.ProductForm, img *Image, out interface{}) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	raw, err := json.Marshal(form)
	if err != nil {
		return err
	}
	if err := mw.WriteField("product", string(raw)); err != nil {
		return err
	}
	if img != nil {
		fw, err := mw.CreateFormFile("imagePath", img.Filename)
		if err != nil {
			return err
		}
		if _, err := io.Copy(fw, img.Data); err != nil {
			return err
		}
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := c.newRequest(ctx, method, path, &buf, mw.FormDataContentType(), true)
	if err != nil {
		return err
	}
	return c.send(req, out)
}

func (c *Client) login(ctx context.Context, path string, username, password string) (Session, error) {
	var auth models.AuthResponse
	req := models.LoginRequest{Username: username, Password: password}
	if err := c.do(ctx, http.MethodPost, path, req, &auth, false); err != nil {
		return Session{}, err
	}
	return c.session.Login(auth), nil
}

// Login signs a student in and stores the session.
func (c *Client) Login(ctx context.Context, username, password string) (Session, error) {
	return c.login(ctx, "/user/login", username, password)
}

func (c *Client) AdminLogin(ctx context.Context, username, password string) (Session, error) {
	return c.login(ctx, "/admin/login", username, password)
}

// Register creates a student account and signs it in. Field errors come
// back in APIError.Fields.
func (c *Client) Register(ctx context.Context, form *models.UserForm) (Session, error) {
	if errs := form.Validate(); len(errs) > 0 {
		return Session{}, &APIError{Status: http.StatusBadRequest, Message: "Validation failed", Fields: errs}
	}
	var auth models.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/user/postUserRecord", form, &auth, false); err != nil {
		return Session{}, err
	}
	return c.session.Login(auth), nil
}

func (c *Client) Logout() { c.session.Logout() }

// Products returns the home feed for the signed-in user. The server already
// filters by status; the client applies the same rule again.
func (c *Client) Products(ctx context.Context) ([]*models.Product, error) {
	s, ok := c.session.Current()
	if !ok {
		return nil, ErrNotAuthenticated
	}
	var list []*models.Product
	if err := c.do(ctx, http.MethodGet, "/product/getAllProducts/"+url.PathEscape(s.Username), nil, &list, true); err != nil {
		return nil, err
	}
	return lifecycle.FilterVisible(list, func(p *models.Product) lifecycle.Status { return p.Status }), nil
}

// ProductsBySeller lists a profile's listings. For the signed-in user's own
// profile this includes every status.
func (c *Client) ProductsBySeller(ctx context.Context, seller string) ([]*models.Product, error) {
	var list []*models.Product
	err := c.do(ctx, http.MethodGet, "/product/getProductsByUser/"+url.PathEscape(seller), nil, &list, true)
	return list, err
}

func (c *Client) Product(ctx context.Context, code int) (*models.Product, error) {
	var p models.Product
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/product/getProductByCode/%d", code), nil, &p, true); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) CreateProduct(ctx context.Context, form *models.ProductForm, img *Image) (*models.Product, error) {
	form.Normalize()
	if errs := form.Validate(); len(errs) > 0 {
		return nil, &APIError{Status: http.StatusBadRequest, Message: "Validation failed", Fields: errs}
	}
	var p models.Product
	if err := c.productMultipart(ctx, http.MethodPost, "/product/postproduct", form, img, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProduct edits a listing the caller owns. The status rules run
// locally first: a sold listing is refused without a request, and the
// returned result carries the outcome message. The server decides again
// and its answer wins.
func (c *Client) UpdateProduct(ctx context.Context, current *models.Product, form *models.ProductForm, img *Image) (*models.ProductUpdateResult, error) {
	form.Normalize()
	if errs := form.Validate(); len(errs) > 0 {
		return nil, &APIError{Status: http.StatusBadRequest, Message: "Validation failed", Fields: errs}
	}
	local, err := lifecycle.Resolve(lifecycle.Edit{
		Current:   current.Status,
		Original:  current.Fields(),
		Proposed:  form.Fields(img != nil),
		Requested: form.Status,
	})
	if err != nil {
		return nil, err
	}

	var res models.ProductUpdateResult
	if err := c.productMultipart(ctx, http.MethodPut, fmt.Sprintf("/product/putProductDetails/%d", current.Code), form, img, &res); err != nil {
		return nil, err
	}
	if res.Message == "" {
		res.Message = local.Message()
	}
	return &res, nil
}

func (c *Client) DeleteProduct(ctx context.Context, code int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/product/deleteProduct/%d", code), nil, nil, true)
}

// ReviewQueue is the admin table of every listing.
func (c *Client) ReviewQueue(ctx context.Context) ([]*models.Product, error) {
	var list []*models.Product
	err := c.do(ctx, http.MethodGet, "/product/pendingApproval", nil, &list, true)
	return list, err
}

// Approve asks the server to approve a listing. Sold listings are refused
// locally.
func (c *Client) Approve(ctx context.Context, p *models.Product) (*models.Product, error) {
	if _, err := lifecycle.Review(p.Status, lifecycle.ActionApprove); err != nil {
		return nil, err
	}
	var out models.Product
	if err := c.do(ctx, http.MethodPost, "/product/approve", models.ReviewRequest{ProductCode: p.Code}, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Reject(ctx context.Context, p *models.Product, feedback string) (*models.Product, error) {
	if _, err := lifecycle.Review(p.Status, lifecycle.ActionReject); err != nil {
		return nil, err
	}
	var out models.Product
	req := models.RejectRequest{ProductCode: p.Code, Feedback: feedback}
	if err := c.do(ctx, http.MethodPost, "/product/reject", req, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) BulkDelete(ctx context.Context, codes []int) (int, error) {
	var res models.BulkDeleteResponse
	if err := c.do(ctx, http.MethodDelete, "/admin/delete-products", codes, &res, true); err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// UpdateProfile saves the signed-in user's record and refreshes the session.
func (c *Client) UpdateProfile(ctx context.Context, req *models.UpdateUserRequest) (*models.User, error) {
	s, ok := c.session.Current()
	if !ok {
		return nil, ErrNotAuthenticated
	}
	prefix := "/user/putUserRecord/"
	if s.Role == models.RoleAdmin {
		prefix = "/admin/putAdminRecord/"
	}
	var u models.User
	if err := c.do(ctx, http.MethodPut, prefix+url.PathEscape(s.Username), req, &u, true); err != nil {
		return nil, err
	}
	c.session.Update(&u)
	return &u, nil
}

func (c *Client) SendMessage(ctx context.Context, req *models.SendMessageRequest) (*models.Message, error) {
	var m models.Message
	if err := c.do(ctx, http.MethodPost, "/messages", req, &m, true); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) Conversations(ctx context.Context) ([]models.Conversation, error) {
	s, ok := c.session.Current()
	if !ok {
		return nil, ErrNotAuthenticated
	}
	var list []models.Conversation
	err := c.do(ctx, http.MethodGet, "/messages/conversations/"+url.PathEscape(s.Username), nil, &list, true)
	return list, err
}

func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	s, ok := c.session.Current()
	if !ok {
		return 0, ErrNotAuthenticated
	}
	var n models.UnreadCount
	if err := c.do(ctx, http.MethodGet, "/messages/unread/count/"+url.PathEscape(s.Username), nil, &n, true); err != nil {
		return 0, err
	}
	return n.Count, nil
}

func (c *Client) Notifications(ctx context.Context) ([]*models.Notification, error) {
	s, ok := c.session.Current()
	if !ok {
		return nil, ErrNotAuthenticated
	}
	var list []*models.Notification
	err := c.do(ctx, http.MethodGet, "/notifications/user/"+url.PathEscape(s.Username), nil, &list, true)
	return list, err
}
