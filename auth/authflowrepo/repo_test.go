package authflowrepo_test

import (
	"context"
	"testing"
	"time"

	autherrors "github.com/jrsteele09/go-github-auth/internal/errors"
	"github.com/jrsteele09/go-github-auth/kv"
	"github.com/jrsteele09/go-github-auth/auth/authflowrepo"
	"github.com/stretchr/testify/require"
)

func TestKVRepo_TakeOnce(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := authflowrepo.NewKVRepo(kv.NewMemory(kv.WithMemoryClock(func() time.Time { return now })))

	state, err := authflowrepo.NewStateToken()
	require.NoError(t, err)

	want := &authflowrepo.AuthFlowState{RedirectURI: "https://app.example/done", CreatedAt: now}
	require.NoError(t, repo.Put(ctx, state, want, authflowrepo.DefaultTTL))

	got, err := repo.TakeOnce(ctx, state)
	require.NoError(t, err)
	require.Equal(t, want.RedirectURI, got.RedirectURI)
	require.True(t, want.CreatedAt.Equal(got.CreatedAt))

	_, err = repo.TakeOnce(ctx, state)
	require.ErrorIs(t, err, autherrors.ErrInvalidState)
}

func TestKVRepo_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := authflowrepo.NewKVRepo(kv.NewMemory(kv.WithMemoryClock(func() time.Time { return now })))

	require.NoError(t, repo.Put(ctx, "s", &authflowrepo.AuthFlowState{RedirectURI: "https://app.example/done"}, 0))
	now = now.Add(authflowrepo.DefaultTTL + time.Second)

	_, err := repo.TakeOnce(ctx, "s")
	require.ErrorIs(t, err, autherrors.ErrInvalidState)
}

func TestKVRepo_Validation(t *testing.T) {
	ctx := context.Background()
	repo := authflowrepo.NewKVRepo(kv.NewMemory())

	require.Error(t, repo.Put(ctx, "", &authflowrepo.AuthFlowState{}, time.Minute))
	require.Error(t, repo.Put(ctx, "s", nil, time.Minute))

	_, err := repo.TakeOnce(ctx, "")
	require.ErrorIs(t, err, autherrors.ErrInvalidState)
	_, err = repo.TakeOnce(ctx, "unknown")
	require.ErrorIs(t, err, autherrors.ErrInvalidState)
}

func TestNewStateToken(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 64; i++ {
		token, err := authflowrepo.NewStateToken()
		require.NoError(t, err)
		require.Len(t, token, 43) // 32 bytes, unpadded base64url
		_, dup := seen[token]
		require.False(t, dup)
		seen[token] = struct{}{}
	}
}
