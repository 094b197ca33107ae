package kv_test

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/go-github-auth/kv"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type namespaceUnderTest interface {
	kv.Namespace
	kv.Taker
	kv.Sweeper
}

func backends(t *testing.T, clock *testClock) map[string]namespaceUnderTest {
	t.Helper()

	db, err := kv.OpenBolt(filepath.Join(t.TempDir(), "kv", "test.db"), kv.WithBoltClock(clock.Now))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	boltNS, err := db.Namespace("AUTH_TEST")
	require.NoError(t, err)

	return map[string]namespaceUnderTest{
		"memory": kv.NewMemory(kv.WithMemoryClock(clock.Now)),
		"bolt":   boltNS,
	}
}

func TestNamespace_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	for name, ns := range backends(t, newTestClock()) {
		t.Run(name, func(t *testing.T) {
			_, found, err := ns.Get(ctx, "missing")
			require.NoError(t, err)
			require.False(t, found)

			require.NoError(t, ns.Put(ctx, "k", "v1", time.Minute))
			require.NoError(t, ns.Put(ctx, "k", "v2", time.Minute))

			value, found, err := ns.Get(ctx, "k")
			require.NoError(t, err)
			require.True(t, found)
			require.Equal(t, "v2", value)

			require.NoError(t, ns.Delete(ctx, "k"))
			require.NoError(t, ns.Delete(ctx, "k"))
			_, found, err = ns.Get(ctx, "k")
			require.NoError(t, err)
			require.False(t, found)

			require.Error(t, ns.Put(ctx, "", "v", time.Minute))
		})
	}
}

func TestNamespace_Expiry(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	for name, ns := range backends(t, clock) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, ns.Put(ctx, "short", "v", 300*time.Second))
			require.NoError(t, ns.Put(ctx, "forever", "v", 0))

			clock.Advance(299 * time.Second)
			_, found, err := ns.Get(ctx, "short")
			require.NoError(t, err)
			require.True(t, found)

			clock.Advance(time.Second)
			_, found, err = ns.Get(ctx, "short")
			require.NoError(t, err)
			require.False(t, found)

			_, found, err = ns.Get(ctx, "forever")
			require.NoError(t, err)
			require.True(t, found)

			require.NoError(t, ns.Delete(ctx, "forever"))
		})
	}
}

func TestNamespace_Take(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	for name, ns := range backends(t, clock) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, ns.Put(ctx, "state", "https://app.example/done", time.Minute))

			value, found, err := ns.Take(ctx, "state")
			require.NoError(t, err)
			require.True(t, found)
			require.Equal(t, "https://app.example/done", value)

			_, found, err = ns.Take(ctx, "state")
			require.NoError(t, err)
			require.False(t, found)

			require.NoError(t, ns.Put(ctx, "stale", "v", time.Second))
			clock.Advance(2 * time.Second)
			_, found, err = ns.Take(ctx, "stale")
			require.NoError(t, err)
			require.False(t, found)
		})
	}
}

func TestNamespace_TakeConcurrent(t *testing.T) {
	ctx := context.Background()
	for name, ns := range backends(t, newTestClock()) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, ns.Put(ctx, "once", "v", time.Minute))

			var wins atomic.Int32
			var wg sync.WaitGroup
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if _, found, err := ns.Take(ctx, "once"); err == nil && found {
						wins.Add(1)
					}
				}()
			}
			wg.Wait()
			require.Equal(t, int32(1), wins.Load())
		})
	}
}

func TestNamespace_Sweep(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	for name, ns := range backends(t, clock) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, ns.Put(ctx, "a", "v", time.Second))
			require.NoError(t, ns.Put(ctx, "b", "v", time.Second))
			require.NoError(t, ns.Put(ctx, "c", "v", time.Hour))

			clock.Advance(time.Minute)
			removed, err := ns.Sweep()
			require.NoError(t, err)
			require.Equal(t, 2, removed)

			_, found, err := ns.Get(ctx, "c")
			require.NoError(t, err)
			require.True(t, found)
			require.NoError(t, ns.Delete(ctx, "c"))
		})
	}
}

// plainNamespace hides the Taker implementation so the fallback path runs
type plainNamespace struct {
	kv.Namespace
}

func TestTake_FallsBackToGetThenDelete(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	ns := plainNamespace{Namespace: mem}

	require.NoError(t, ns.Put(ctx, "k", "v", time.Minute))
	value, found, err := kv.Take(ctx, ns, "k")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "v", value)
	require.Equal(t, 0, mem.Len())

	_, found, err = kv.Take(ctx, ns, "k")
	require.NoError(t, err)
	require.False(t, found)
}

func TestRunJanitor_StopsOnCancel(t *testing.T) {
	clock := newTestClock()
	mem := kv.NewMemory(kv.WithMemoryClock(clock.Now))
	require.NoError(t, mem.Put(context.Background(), "k", "v", time.Millisecond))
	clock.Advance(time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	swept := make(chan int, 16)
	done := make(chan error, 1)
	go func() {
		done <- kv.RunJanitor(ctx, 5*time.Millisecond, func(_ string, removed int, _ error) {
			swept <- removed
		}, map[string]kv.Sweeper{"mem": mem})
	}()

	require.Equal(t, 1, <-swept)
	cancel()
	require.NoError(t, <-done)
	require.Equal(t, 0, mem.Len())
}
