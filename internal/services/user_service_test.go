package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/campuscart/backend/internal/models"
)

type fakeVerifier struct {
	id  *GoogleIdentity
	err error
}

func (f fakeVerifier) VerifyGoogle(ctx context.Context, idToken string) (*GoogleIdentity, error) {
	return f.id, f.err
}

func userForm(username, email string) *models.UserForm {
	return &models.UserForm{
		Username:  username,
		FirstName: "Karen",
		LastName:  "Cabarrubias",
		Email:     email,
		Password:  "secret123",
	}
}

func TestUserService_Accounts(t *testing.T) {
	ctx := context.Background()

	t.Run("Register_ThenLogin", func(t *testing.T) {
		f := newFixture(t)
		u, err := f.users.Register(ctx, userForm("karen", "karen@campus.edu"))
		require.NoError(t, err)
		require.Equal(t, models.RoleUser, u.Role)
		require.NotEqual(t, "secret123", u.PasswordHash)

		got, err := f.users.Login(ctx, &models.LoginRequest{Username: "karen", Password: "secret123"}, models.RoleUser)
		require.NoError(t, err)
		require.Equal(t, "karen", got.Username)
	})

	t.Run("Register_Duplicates", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.users.Register(ctx, userForm("karen", "karen@campus.edu"))
		require.NoError(t, err)

		_, err = f.users.Register(ctx, userForm("karen", "other@campus.edu"))
		require.ErrorIs(t, err, ErrUsernameExists)
		_, err = f.users.Register(ctx, userForm("karen2", "karen@campus.edu"))
		require.ErrorIs(t, err, ErrEmailExists)
	})

	t.Run("Login_WrongPasswordOrRole", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.users.Register(ctx, userForm("karen", "karen@campus.edu"))
		require.NoError(t, err)

		_, err = f.users.Login(ctx, &models.LoginRequest{Username: "karen", Password: "nope"}, models.RoleUser)
		require.ErrorIs(t, err, ErrInvalidPassword)
		_, err = f.users.Login(ctx, &models.LoginRequest{Username: "karen", Password: "secret123"}, models.RoleAdmin)
		require.ErrorIs(t, err, ErrWrongRole)
		_, err = f.users.Login(ctx, &models.LoginRequest{Username: "nobody", Password: "x"}, models.RoleUser)
		require.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("EnsureAdmin_Idempotent", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.users.EnsureAdmin(ctx, "root", "rootpass"))
		require.NoError(t, f.users.EnsureAdmin(ctx, "root", "other"))

		admins, err := f.users.List(ctx, models.RoleAdmin)
		require.NoError(t, err)
		require.Len(t, admins, 1)

		_, err = f.users.Login(ctx, &models.LoginRequest{Username: "root", Password: "rootpass"}, models.RoleAdmin)
		require.NoError(t, err)
	})

	t.Run("ChangePassword_RequiresCurrent", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.users.Register(ctx, userForm("karen", "karen@campus.edu"))
		require.NoError(t, err)

		err = f.users.ChangePassword(ctx, "karen", &models.ChangePasswordRequest{CurrentPassword: "bad", NewPassword: "fresh123"})
		require.ErrorIs(t, err, ErrInvalidPassword)

		err = f.users.ChangePassword(ctx, "karen", &models.ChangePasswordRequest{CurrentPassword: "secret123", NewPassword: "fresh123"})
		require.NoError(t, err)
		_, err = f.users.Login(ctx, &models.LoginRequest{Username: "karen", Password: "fresh123"}, models.RoleUser)
		require.NoError(t, err)
	})

	t.Run("Update_AdminKeepsNoAddress", func(t *testing.T) {
		f := newFixture(t)
		f.addUser(t, "root", models.RoleAdmin)
		u, err := f.users.Update(ctx, "root", &models.UpdateUserRequest{
			FirstName: "Ada", LastName: "Admin", Email: "ada@campus.edu", Address: "Dorm 4",
		})
		require.NoError(t, err)
		require.Equal(t, "Ada", u.FirstName)
		require.Empty(t, u.Address)
	})

	t.Run("SetPhoto_ReplacesOld", func(t *testing.T) {
		f := newFixture(t)
		f.addUser(t, "karen", models.RoleUser)
		first, err := f.users.SetPhoto(ctx, "karen", pngUpload("me.png"))
		require.NoError(t, err)
		second, err := f.users.SetPhoto(ctx, "karen", pngUpload("me2.png"))
		require.NoError(t, err)
		require.NotEqual(t, first.ProfilePhoto, second.ProfilePhoto)
		require.Contains(t, f.storage.deleted, first.PhotoKey)
	})
}

func TestUserService_Google(t *testing.T) {
	ctx := context.Background()

	t.Run("SplitFullName_Parts", func(t *testing.T) {
		first, last := SplitFullName("Karen Lean Kay Cabarrubias")
		require.Equal(t, "Karen Lean Kay", first)
		require.Equal(t, "Cabarrubias", last)

		first, last = SplitFullName("John Smith")
		require.Equal(t, "John", first)
		require.Equal(t, "Smith", last)
	})

	t.Run("UsernameBase_Cleans", func(t *testing.T) {
		require.Equal(t, "jose_maria", UsernameBase("José María"))
		require.Equal(t, "karen_lean_kay", UsernameBase("Karen Lean Kay"))
		require.Equal(t, "obrien", UsernameBase("O'Brien"))
	})

	t.Run("GenerateUsername_AppendsCounter", func(t *testing.T) {
		f := newFixture(t)
		f.addUser(t, "john", models.RoleUser)
		f.addUser(t, "john1", models.RoleUser)

		name, err := f.users.GenerateUsername(ctx, "John")
		require.NoError(t, err)
		require.Equal(t, "john2", name)
	})

	t.Run("GoogleSignIn_CreatesThenReuses", func(t *testing.T) {
		f := newFixture(t)
		f.users = NewUserService(f.stores.Users, nil, fakeVerifier{id: &GoogleIdentity{
			Email: "Karen@Campus.edu", Name: "Karen Lean Kay Cabarrubias",
		}})

		u, created, err := f.users.GoogleSignIn(ctx, "token")
		require.NoError(t, err)
		require.True(t, created)
		require.Equal(t, "karen_lean_kay", u.Username)
		require.Equal(t, "Cabarrubias", u.LastName)

		again, created, err := f.users.GoogleSignIn(ctx, "token")
		require.NoError(t, err)
		require.False(t, created)
		require.Equal(t, u.Username, again.Username)
	})

	t.Run("GoogleSignIn_Disabled", func(t *testing.T) {
		f := newFixture(t)
		_, _, err := f.users.GoogleSignIn(ctx, "token")
		require.ErrorIs(t, err, ErrGoogleDisabled)
	})

	t.Run("GoogleSignIn_BadToken", func(t *testing.T) {
		f := newFixture(t)
		f.users = NewUserService(f.stores.Users, nil, fakeVerifier{err: errors.New("expired")})
		_, _, err := f.users.GoogleSignIn(ctx, "token")
		require.Error(t, err)
	})
}
