package auth_test

import (
	"testing"

	"github.com/jrsteele09/go-github-auth/auth"
	"github.com/jrsteele09/go-github-auth/internal/config"
	autherrors "github.com/jrsteele09/go-github-auth/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestValidator_ValidateRedirectURI(t *testing.T) {
	v := auth.NewValidator(config.ParseAllowedOrigins("https://app.example,http://localhost:3000"))

	valid := []string{
		"https://app.example/done",
		"https://app.example/blog/auth/callback/",
		"http://localhost:3000/auth/callback",
		"HTTPS://APP.EXAMPLE/done",
	}
	for _, uri := range valid {
		t.Run("valid "+uri, func(t *testing.T) {
			u, err := v.ValidateRedirectURI(uri)
			require.NoError(t, err)
			require.NotNil(t, u)
		})
	}

	invalid := []string{
		"https://evil.example/done",
		"https://app.example.evil.example/done",
		"javascript:alert(1)",
		"/relative/path",
		"//app.example/done",
		"https://user@app.example/done",
		"http://app.example/done",
		"%zz",
	}
	for _, uri := range invalid {
		t.Run("invalid "+uri, func(t *testing.T) {
			_, err := v.ValidateRedirectURI(uri)
			require.ErrorIs(t, err, autherrors.ErrInvalidRedirectURI)
		})
	}
}

func TestValidator_ValidateCallbackParameters(t *testing.T) {
	v := auth.NewValidator(nil)

	require.NoError(t, v.ValidateCallbackParameters("code", "state"))
	require.ErrorIs(t, v.ValidateCallbackParameters("", "state"), autherrors.ErrInvalidRequest)
	require.ErrorIs(t, v.ValidateCallbackParameters("code", ""), autherrors.ErrInvalidRequest)
}

func TestValidator_MixedCaseAllowlist(t *testing.T) {
	v := auth.NewValidator(config.AllowedOrigins{"https://App.example"})
	_, err := v.ValidateRedirectURI("https://App.example/done")
	require.NoError(t, err)
	_, err = v.ValidateRedirectURI("https://app.example/done")
	require.NoError(t, err)
}
