package errors

import (
	"errors"
	"fmt"
)

// Common error types for the marketplace API client
var (
	// Session errors
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrSessionExpired   = errors.New("session expired")
	ErrSessionCorrupt   = errors.New("session corrupt")
	ErrInvalidUserType  = errors.New("invalid user type")

	// Refresh errors
	ErrNoRefreshToken     = errors.New("no refresh token")
	ErrRefreshFailed      = errors.New("refresh failed")
	ErrInvalidTokenPair   = errors.New("invalid token pair")
	ErrRefreshUnavailable = errors.New("refresh unavailable")

	// Request outcome errors
	ErrClientError  = errors.New("client error")
	ErrServerError  = errors.New("server error")
	ErrNetwork      = errors.New("network error")
	ErrInvalidInput = errors.New("invalid input")

	// Storage errors
	ErrStorage = errors.New("storage failure")

	// General errors
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
