package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/campuscart/backend/internal/validation"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

func init() {
	validation.RegisterString("username", usernamePattern.MatchString)
}

type User struct {
	Username     string    `json:"username"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	ContactNo    string    `json:"contactNo,omitempty"`
	Address      string    `json:"address,omitempty"`
	ProfilePhoto string    `json:"profilePhoto,omitempty"`
	PhotoKey     string    `json:"-"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

func (u *User) Seller() Seller {
	return Seller{
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		ContactNo:    u.ContactNo,
		ProfilePhoto: u.ProfilePhoto,
	}
}

// UserForm is the student registration form.
type UserForm struct {
	Username  string `json:"username" validate:"required,min=3,max=30,username"`
	FirstName string `json:"firstName" validate:"required,max=60"`
	LastName  string `json:"lastName" validate:"required,max=60"`
	Email     string `json:"email" validate:"required,email"`
	ContactNo string `json:"contactNo" validate:"max=20"`
	Address   string `json:"address" validate:"max=255"`
	Password  string `json:"password" validate:"required,min=6"`

	// CaptchaToken is checked only when the server has a captcha secret.
	CaptchaToken string `json:"captchaToken,omitempty"`
}

func (f *UserForm) Normalize() {
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.ToLower(strings.TrimSpace(f.Email))
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
}

func (f *UserForm) Validate() map[string]string {
	return validation.Struct(f)
}

// AdminForm creates an admin account. Admins carry no address.
type AdminForm struct {
	Username  string `json:"username" validate:"required,min=3,max=30,username"`
	FirstName string `json:"firstName" validate:"required,max=60"`
	LastName  string `json:"lastName" validate:"required,max=60"`
	Email     string `json:"email" validate:"required,email"`
	ContactNo string `json:"contactNo" validate:"max=20"`
	Password  string `json:"password" validate:"required,min=6"`
}

func (f *AdminForm) Normalize() {
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.ToLower(strings.TrimSpace(f.Email))
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
}

func (f *AdminForm) Validate() map[string]string {
	return validation.Struct(f)
}

// UpdateUserRequest replaces the editable profile fields of an account.
type UpdateUserRequest struct {
	FirstName string `json:"firstName" validate:"required,max=60"`
	LastName  string `json:"lastName" validate:"required,max=60"`
	Email     string `json:"email" validate:"required,email"`
	ContactNo string `json:"contactNo" validate:"max=20"`
	Address   string `json:"address" validate:"max=255"`
}

func (r *UpdateUserRequest) Validate() map[string]string {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	return validation.Struct(r)
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,nefield=CurrentPassword"`
}

func (r *ChangePasswordRequest) Validate() map[string]string {
	return validation.Struct(r)
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Validate() map[string]string {
	r.Username = strings.TrimSpace(r.Username)
	return validation.Struct(r)
}

type GoogleAuthRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

func (r *GoogleAuthRequest) Validate() map[string]string {
	return validation.Struct(r)
}

// AuthResponse is what a client stores in its session after login.
type AuthResponse struct {
	Token        string `json:"token"`
	Username     string `json:"username"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	Address      string `json:"address,omitempty"`
	ContactNo    string `json:"contactNo,omitempty"`
	ProfilePhoto string `json:"profilePhoto,omitempty"`
	Role         Role   `json:"role"`
}

func NewAuthResponse(token string, u *User) AuthResponse {
	return AuthResponse{
		Token:        token,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		Address:      u.Address,
		ContactNo:    u.ContactNo,
		ProfilePhoto: u.ProfilePhoto,
		Role:         u.Role,
	}
}
