package errors_test

import (
	"errors"
	"testing"

	autherrors "github.com/jrsteele09/go-github-auth/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestWrapf(t *testing.T) {
	require.NoError(t, autherrors.Wrapf(nil, "[op]"))

	err := autherrors.Wrapf(autherrors.ErrInvalidState, "[op %s]", "take")
	require.EqualError(t, err, "[op take]: invalid state")
	require.True(t, autherrors.Is(err, autherrors.ErrInvalidState))
}

func TestIsTokenError(t *testing.T) {
	for _, err := range []error{
		autherrors.ErrMalformedToken,
		autherrors.ErrBadSignature,
		autherrors.ErrTokenExpired,
		autherrors.ErrUnauthorized,
		autherrors.Wrapf(autherrors.ErrBadSignature, "[decode]"),
	} {
		require.True(t, autherrors.IsTokenError(err), err.Error())
	}
	require.False(t, autherrors.IsTokenError(autherrors.ErrSessionExpired))
	require.False(t, autherrors.IsTokenError(errors.New("boom")))
}
