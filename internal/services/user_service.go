package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/campuscart/backend/internal/models"
)

// GoogleIdentity is what a verified Google ID token tells us about a user.
type GoogleIdentity struct {
	Email   string
	Name    string
	Picture string
}

// IdentityVerifier checks a Google ID token.
type IdentityVerifier interface {
	VerifyGoogle(ctx context.Context, idToken string) (*GoogleIdentity, error)
}

type UserService struct {
	users    UserStore
	images   *ImageService
	verifier IdentityVerifier
}

// NewUserService builds the account service. images and verifier may be nil,
// which disables photo upload and Google sign-in respectively.
func NewUserService(users UserStore, images *ImageService, verifier IdentityVerifier) *UserService {
	return &UserService{users: users, images: images, verifier: verifier}
}

func hashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (s *UserService) Register(ctx context.Context, form *models.UserForm) (*models.User, error) {
	hash, err := hashPassword(form.Password)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		Username:     form.Username,
		FirstName:    form.FirstName,
		LastName:     form.LastName,
		Email:        form.Email,
		ContactNo:    form.ContactNo,
		Address:      form.Address,
		Role:         models.RoleUser,
		PasswordHash: hash,
		CreatedAt:    nowUTC(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	log.Printf("[Register] username=%s", u.Username)
	return u, nil
}

func (s *UserService) CreateAdmin(ctx context.Context, form *models.AdminForm) (*models.User, error) {
	hash, err := hashPassword(form.Password)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		Username:     form.Username,
		FirstName:    form.FirstName,
		LastName:     form.LastName,
		Email:        form.Email,
		ContactNo:    form.ContactNo,
		Role:         models.RoleAdmin,
		PasswordHash: hash,
		CreatedAt:    nowUTC(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	log.Printf("[CreateAdmin] username=%s", u.Username)
	return u, nil
}

// EnsureAdmin creates the bootstrap admin if no account holds username yet.
func (s *UserService) EnsureAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return nil
	}
	_, err := s.users.Get(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return err
	}
	_, err = s.CreateAdmin(ctx, &models.AdminForm{
		Username:  username,
		FirstName: "Campus",
		LastName:  "Admin",
		Email:     username + "@admin.campuscart.local",
		Password:  password,
	})
	return err
}

// Login checks the credentials and that the account has role.
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest, role models.Role) (*models.User, error) {
	u, err := s.users.Get(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if u.PasswordHash == "" {
		return nil, ErrInvalidPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidPassword
	}
	if u.Role != role {
		return nil, ErrWrongRole
	}
	return u, nil
}

// GoogleSignIn returns the account behind a Google ID token, creating a user
// account on first sign-in. created reports whether a new account was made.
func (s *UserService) GoogleSignIn(ctx context.Context, idToken string) (u *models.User, created bool, err error) {
	if s.verifier == nil {
		return nil, false, ErrGoogleDisabled
	}
	id, err := s.verifier.VerifyGoogle(ctx, idToken)
	if err != nil {
		return nil, false, fmt.Errorf("verify google token: %w", err)
	}
	if id.Email == "" {
		return nil, false, errors.New("google token carries no email")
	}

	existing, err := s.users.GetByEmail(ctx, id.Email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, false, err
	}

	first, last := SplitFullName(id.Name)
	username, err := s.GenerateUsername(ctx, first)
	if err != nil {
		return nil, false, err
	}
	u = &models.User{
		Username:     username,
		FirstName:    first,
		LastName:     last,
		Email:        strings.ToLower(id.Email),
		ProfilePhoto: id.Picture,
		Role:         models.RoleUser,
		CreatedAt:    nowUTC(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, false, err
	}
	log.Printf("[GoogleSignIn] created username=%s", username)
	return u, true, nil
}

// SplitFullName treats every part but the last as first names when a name
// has more than two parts. Otherwise the first part is the first name.
func SplitFullName(full string) (first, last string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], parts[0]
	case 2:
		return parts[0], parts[1]
	default:
		return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
	}
}

var usernameStrip = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// UsernameBase turns a display name into username characters: accents are
// dropped, spaces become underscores and everything else outside
// [a-zA-Z0-9_] is removed.
func UsernameBase(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	cleaned, _, err := transform.String(t, strings.TrimSpace(name))
	if err != nil {
		cleaned = name
	}
	cleaned = strings.ReplaceAll(cleaned, " ", "_")
	cleaned = usernameStrip.ReplaceAllString(cleaned, "")
	return strings.ToLower(cleaned)
}

// GenerateUsername appends 1, 2, ... to the base of name until the username
// is free.
func (s *UserService) GenerateUsername(ctx context.Context, name string) (string, error) {
	base := UsernameBase(name)
	if base == "" {
		base = "user"
	}
	candidate := base
	for i := 1; ; i++ {
		_, err := s.users.Get(ctx, candidate)
		if errors.Is(err, ErrUserNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		candidate = base + strconv.Itoa(i)
	}
}

func (s *UserService) Get(ctx context.Context, username string) (*models.User, error) {
	return s.users.Get(ctx, username)
}

// GetWithRole returns the account only if it has role.
func (s *UserService) GetWithRole(ctx context.Context, username string, role models.Role) (*models.User, error) {
	u, err := s.users.Get(ctx, username)
	if err != nil {
		return nil, err
	}
	if u.Role != role {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *UserService) List(ctx context.Context, role models.Role) ([]*models.User, error) {
	return s.users.List(ctx, role)
}

func (s *UserService) Update(ctx context.Context, username string, req *models.UpdateUserRequest) (*models.User, error) {
	u, err := s.users.Get(ctx, username)
	if err != nil {
		return nil, err
	}
	u.FirstName = strings.TrimSpace(req.FirstName)
	u.LastName = strings.TrimSpace(req.LastName)
	u.Email = req.Email
	u.ContactNo = req.ContactNo
	if !u.IsAdmin() {
		u.Address = req.Address
	}
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) ChangePassword(ctx context.Context, username string, req *models.ChangePasswordRequest) error {
	u, err := s.users.Get(ctx, username)
	if err != nil {
		return err
	}
	if u.PasswordHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.CurrentPassword)); err != nil {
			return ErrInvalidPassword
		}
	}
	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return s.users.Update(ctx, u)
}

// SetPhoto stores a new profile photo and drops the previous one.
func (s *UserService) SetPhoto(ctx context.Context, username string, img *ImageUpload) (*models.User, error) {
	if s.images == nil {
		return nil, ErrInvalidImage
	}
	u, err := s.users.Get(ctx, username)
	if err != nil {
		return nil, err
	}
	res, err := s.images.Upload(ctx, img, username, ImageKindProfile)
	if err != nil {
		return nil, err
	}

	oldKey := u.PhotoKey
	u.ProfilePhoto, u.PhotoKey = res.URL, res.Key
	if err := s.users.Update(ctx, u); err != nil {
		s.images.Remove(ctx, res.Key)
		return nil, err
	}
	if oldKey != "" && oldKey != res.Key {
		s.images.Remove(ctx, oldKey)
	}
	return u, nil
}
