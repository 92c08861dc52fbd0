package errors

import (
	"errors"
	"fmt"
)

// Common error types for the edge gateway
var (
	// Validation errors
	ErrInvalidFormat   = errors.New("invalid format")
	ErrMissingField    = errors.New("missing required field")
	ErrSuspiciousInput = errors.New("suspicious input detected")

	// Session errors
	ErrMalformedToken   = errors.New("malformed session token")
	ErrInvalidSignature = errors.New("invalid session signature")
	ErrSessionExpired   = errors.New("session expired")
	ErrNoSession        = errors.New("no session")

	// Rate limiting errors
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// Upstream errors
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")
	ErrUpstreamRejected    = errors.New("upstream request rejected")

	// General errors
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
