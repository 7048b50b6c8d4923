package service

import (
	"errors"

	"hrms-api/repository"
)

var (
	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidRefreshToken covers unknown, expired, revoked and orphaned tokens.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrTokenVerification is the single failure returned for a bad access token.
	ErrTokenVerification = errors.New("invalid or expired token")

	ErrTooManyAttempts   = errors.New("too many failed login attempts")
	ErrRoleNotAssignable = errors.New("role cannot be self-assigned")
	ErrSelfDemotion      = errors.New("admins cannot remove their own Admin role")
	ErrSignerConfig      = errors.New("token signer is misconfigured")
	ErrPasswordTooLong   = errors.New("password exceeds 72 bytes")
	ErrNotHRUser         = errors.New("user is not an HR user")

	ErrEmailTaken    = repository.ErrEmailTaken
	ErrUserNotFound  = repository.ErrUserNotFound
	ErrTokenNotFound = repository.ErrTokenNotFound
)
