// Package common defines shared constants and sentinel errors used across
// the repository, service and transport layers. Callers should use errors.Is
// to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Registration errors.
	ErrUserAlreadyExists    = errors.New("user with this email already exists")
	ErrCompanyNotFound      = errors.New("company not found")
	ErrCompanyAlreadyExists = errors.New("company with this domain already exists")
	ErrInvalidRole          = errors.New("invalid role")
	ErrPasswordTooLong      = errors.New("password exceeds 72 bytes")

	// Login errors. Unknown email and wrong password share one value.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDeactivated = errors.New("account is deactivated")
	ErrCompanyDeactivated = errors.New("company is deactivated")

	// Token errors.
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token expired")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrUserNotFound is returned when tokens are requested for a user id
	// that does not exist. Callers always pass a freshly validated id, so
	// seeing it means a bug.
	ErrUserNotFound = errors.New("user not found")
)
