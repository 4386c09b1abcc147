package user

import "errors"

// Repository-level errors
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already exists")
)

// Service-level (business logic) errors
var (
	ErrInvalidCredentials = errors.New("wrong credentials")
	ErrAccountLocked      = errors.New("account temporarily locked after repeated failed logins")
	ErrInvalidToken       = errors.New("invalid or expired token")
)
