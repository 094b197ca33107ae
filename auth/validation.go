package auth

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-github-auth/internal/config"
	autherrors "github.com/jrsteele09/go-github-auth/internal/errors"
)

// Validator holds the checks applied to inputs arriving from the browser
type Validator struct {
	origins config.AllowedOrigins
}

// NewValidator creates a Validator for the given origin allowlist
func NewValidator(origins config.AllowedOrigins) *Validator {
	return &Validator{origins: origins}
}

// ValidateRedirectURI checks that the post-login redirect is an absolute
// http(s) URL on an allowlisted origin, so the callback can never be used as
// an open redirect
func (v *Validator) ValidateRedirectURI(redirectURI string) (*url.URL, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return nil, fmt.Errorf("[ValidateRedirectURI] %v: %w", err, autherrors.ErrInvalidRedirectURI)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("[ValidateRedirectURI] scheme %q not allowed: %w", u.Scheme, autherrors.ErrInvalidRedirectURI)
	}
	if u.Host == "" || u.User != nil {
		return nil, fmt.Errorf("[ValidateRedirectURI] host required: %w", autherrors.ErrInvalidRedirectURI)
	}
	origin := strings.ToLower(u.Scheme + "://" + u.Host)
	if !v.origins.IsAllowedOrigin(origin) {
		return nil, fmt.Errorf("[ValidateRedirectURI] origin %q not allowlisted: %w", origin, autherrors.ErrInvalidRedirectURI)
	}
	return u, nil
}

// ValidateCallbackParameters checks the query GitHub returns to the callback
func (v *Validator) ValidateCallbackParameters(code, state string) error {
	if state == "" {
		return fmt.Errorf("[ValidateCallbackParameters] missing state: %w", autherrors.ErrInvalidRequest)
	}
	if code == "" {
		return fmt.Errorf("[ValidateCallbackParameters] missing code: %w", autherrors.ErrInvalidRequest)
	}
	return nil
}
