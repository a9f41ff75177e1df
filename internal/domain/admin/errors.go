package admin

import "errors"

// Admin domain errors
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("admin user not found")
	ErrEmailExists        = errors.New("email already registered")
)
