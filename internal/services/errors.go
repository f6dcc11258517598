package services

import "errors"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrForbidden       = errors.New("not allowed to modify this resource")
	ErrStatusConflict  = errors.New("product was changed by someone else")

	ErrUserNotFound    = errors.New("user not found")
	ErrUsernameExists  = errors.New("username already taken")
	ErrEmailExists     = errors.New("email already registered")
	ErrInvalidPassword = errors.New("invalid password")
	ErrWrongRole       = errors.New("account does not have the required role")
	ErrGoogleDisabled  = errors.New("google sign-in is not configured")
	ErrCaptchaFailed   = errors.New("captcha verification failed")

	ErrMessageNotFound      = errors.New("message not found")
	ErrInvalidRecipient     = errors.New("cannot send a message to yourself")
	ErrNotificationNotFound = errors.New("notification not found")

	ErrAlreadyBookmarked = errors.New("product already bookmarked")
	ErrBookmarkNotFound  = errors.New("bookmark not found")

	ErrImageRejected = errors.New("image rejected: violates community guidelines")
	ErrInvalidImage  = errors.New("invalid image file")
)
