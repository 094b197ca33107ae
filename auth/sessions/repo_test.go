package sessions_test

import (
	"context"
	"testing"
	"time"

	"github.com/jrsteele09/go-github-auth/auth/sessions"
	"github.com/jrsteele09/go-github-auth/kv"
	"github.com/stretchr/testify/require"
)

func TestKVRepo(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ns := kv.NewMemory(kv.WithMemoryClock(func() time.Time { return now }))
	repo := sessions.NewKVRepo(ns)

	t.Run("missing", func(t *testing.T) {
		s, err := repo.Get(ctx, "1")
		require.NoError(t, err)
		require.Nil(t, s)
	})

	t.Run("last login wins", func(t *testing.T) {
		require.NoError(t, repo.Put(ctx, &sessions.Session{SubjectID: "1", Token: "token-a", AppURL: "https://a.example/"}, sessions.DefaultTTL))
		require.NoError(t, repo.Put(ctx, &sessions.Session{SubjectID: "1", Token: "token-b", AppURL: "https://u.github.io/blog/"}, sessions.DefaultTTL))

		s, err := repo.Get(ctx, "1")
		require.NoError(t, err)
		require.Equal(t, &sessions.Session{SubjectID: "1", Token: "token-b", AppURL: "https://u.github.io/blog/"}, s)
	})

	t.Run("keys are namespaced", func(t *testing.T) {
		value, found, err := ns.Get(ctx, "session:1")
		require.NoError(t, err)
		require.True(t, found)
		require.JSONEq(t, `{"token":"token-b","app_url":"https://u.github.io/blog/"}`, value)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, "1"))
		s, err := repo.Get(ctx, "1")
		require.NoError(t, err)
		require.Nil(t, s)
	})

	t.Run("expiry", func(t *testing.T) {
		require.NoError(t, repo.Put(ctx, &sessions.Session{SubjectID: "2", Token: "token"}, sessions.DefaultTTL))
		now = now.Add(sessions.DefaultTTL)
		s, err := repo.Get(ctx, "2")
		require.NoError(t, err)
		require.Nil(t, s)
	})

	t.Run("corrupt record", func(t *testing.T) {
		require.NoError(t, ns.Put(ctx, "session:4", "not-json", time.Minute))
		_, err := repo.Get(ctx, "4")
		require.Error(t, err)
	})

	t.Run("validation", func(t *testing.T) {
		require.Error(t, repo.Put(ctx, nil, time.Minute))
		require.Error(t, repo.Put(ctx, &sessions.Session{Token: "token"}, time.Minute))
		require.Error(t, repo.Put(ctx, &sessions.Session{SubjectID: "3"}, time.Minute))
		_, err := repo.Get(ctx, "")
		require.Error(t, err)
		require.Error(t, repo.Delete(ctx, ""))
	})
}
