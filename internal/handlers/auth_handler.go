package handlers

import (
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/campuscart/backend/internal/models"
	"github.com/campuscart/backend/internal/services"
)

type AuthHandler struct {
	userService   *services.UserService
	captcha       services.CaptchaVerifier
	jwtSecret     string
	jwtExpiration time.Duration
}

// NewAuthHandler builds the login and registration endpoints. captcha may be
// nil, in which case registrations are not checked.
func NewAuthHandler(userService *services.UserService, captcha services.CaptchaVerifier, jwtSecret string, jwtExpiration time.Duration) *AuthHandler {
	return &AuthHandler{
		userService:   userService,
		captcha:       captcha,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var form models.UserForm
	if !decodeJSON(w, r, &form) {
		return
	}
	form.Normalize()
	if !validated(w, form.Validate()) {
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if h.captcha != nil {
		if err := h.captcha.Verify(ctx, form.CaptchaToken, remoteIP(r)); err != nil {
			writeError(w, "Register", err, "Captcha verification failed")
			return
		}
	}

	user, err := h.userService.Register(ctx, &form)
	if err != nil {
		writeError(w, "Register", err, "Failed to create user")
		return
	}
	h.respondWithToken(w, http.StatusCreated, user)
}

// Login authenticates a student account.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, models.RoleUser)
}

// AdminLogin authenticates an admin account.
func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, models.RoleAdmin)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request, role models.Role) {
	var req models.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validated(w, req.Validate()) {
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), requestTimeout)
	defer cancel()

	user, err := h.userService.Login(ctx, &req, role)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) || errors.Is(err, services.ErrInvalidPassword) || errors.Is(err, services.ErrWrongRole) {
			writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Invalid username or password"))
			return
		}
		writeError(w, "Login", err, "Login failed")
		return
	}
	h.respondWithToken(w, http.StatusOK, user)
}

// Google exchanges a Firebase ID token for a session, creating the account
// on first sign-in.
func (h *AuthHandler) Google(w http.ResponseWriter, r *http.Request) {
	var req models.GoogleAuthRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validated(w, req.Validate()) {
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), requestTimeout)
	defer cancel()

	user, created, err := h.userService.GoogleSignIn(ctx, req.IDToken)
	if err != nil {
		if status, _ := errorStatus(err); status == http.StatusInternalServerError {
			writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Invalid Google token"))
			return
		}
		writeError(w, "GoogleSignIn", err, "Google sign-in failed")
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	h.respondWithToken(w, status, user)
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, status int, user *models.User) {
	token, err := h.generateToken(user)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to generate token"))
		return
	}
	writeJSON(w, status, models.NewSuccessResponse(models.NewAuthResponse(token, user)))
}

func (h *AuthHandler) generateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  user.Username,
		"role": string(user.Role),
		"exp":  now.Add(h.jwtExpiration).Unix(),
		"iat":  now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.jwtSecret))
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
