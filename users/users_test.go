package users_test

import (
	"encoding/json"
	"testing"

	"github.com/jrsteele09/go-github-auth/token/jwt"
	"github.com/jrsteele09/go-github-auth/users"
	"github.com/stretchr/testify/require"
)

func TestFromClaims(t *testing.T) {
	u := users.FromClaims(jwt.Claims{
		Sub:       "1",
		Login:     "alice",
		Name:      "Alice",
		Email:     "alice@example.com",
		AvatarURL: "https://avatars.example.com/u/1",
		Iat:       100,
		Exp:       200,
	})

	require.Equal(t, users.User{
		ID:        "1",
		Login:     "alice",
		Name:      "Alice",
		Email:     "alice@example.com",
		AvatarURL: "https://avatars.example.com/u/1",
	}, u)

	data, err := json.Marshal(u)
	require.NoError(t, err)
	require.JSONEq(t, `{"id":"1","login":"alice","name":"Alice","email":"alice@example.com","avatar_url":"https://avatars.example.com/u/1"}`, string(data))
}
