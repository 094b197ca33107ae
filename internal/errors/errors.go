package errors

import (
	"errors"
	"fmt"
)

// Error taxonomy for the GitHub authentication service
var (
	// Authorization flow errors
	ErrInvalidState       = errors.New("invalid state")
	ErrInvalidRedirectURI = errors.New("invalid redirect URI")
	ErrInvalidRequest     = errors.New("invalid request")

	// Upstream (GitHub) errors
	ErrUpstreamRejected = errors.New("upstream rejected")

	// Token errors
	ErrMalformedToken = errors.New("malformed token")
	ErrBadSignature   = errors.New("bad signature")
	ErrTokenExpired   = errors.New("token expired")

	// Session errors
	ErrSessionExpired = errors.New("session expired")
	ErrUnauthorized   = errors.New("unauthorized")

	// Client handshake errors
	ErrPopupBlocked         = errors.New("popup blocked")
	ErrAuthenticationFailed = errors.New("authentication failed")
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

// IsTokenError reports whether err is one of the token-level failures that
// collapse to 401 for whoami and logout.
func IsTokenError(err error) bool {
	return errors.Is(err, ErrMalformedToken) ||
		errors.Is(err, ErrBadSignature) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrUnauthorized)
}
