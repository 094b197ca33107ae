// Package kv provides the expiring key-value namespaces that hold all
// cross-request state: login sessions and pending authorization states.
package kv

import (
	"context"
	"time"
)

// Namespace is a map with expiring entries. Writes are last-write-wins.
type Namespace interface {
	// Put stores value under key. A ttl <= 0 stores the value without expiry.
	Put(ctx context.Context, key, value string, ttl time.Duration) error
	// Get returns the value for key. found is false for missing or expired keys.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Taker is implemented by namespaces that can read and remove a key
// atomically.
type Taker interface {
	Take(ctx context.Context, key string) (value string, found bool, err error)
}

// Sweeper is implemented by namespaces that need expired entries removed
// periodically.
type Sweeper interface {
	Sweep() (removed int, err error)
}

// Take reads and removes key, atomically when ns supports it and with a
// get-then-delete otherwise.
func Take(ctx context.Context, ns Namespace, key string) (string, bool, error) {
	if taker, ok := ns.(Taker); ok {
		return taker.Take(ctx, key)
	}
	value, found, err := ns.Get(ctx, key)
	if err != nil || !found {
		return "", false, err
	}
	if err := ns.Delete(ctx, key); err != nil {
		return "", false, err
	}
	return value, true, nil
}

// RunJanitor sweeps each namespace every interval until ctx is done.
func RunJanitor(ctx context.Context, interval time.Duration, onSweep func(name string, removed int, err error), namespaces map[string]Sweeper) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			for name, ns := range namespaces {
				removed, err := ns.Sweep()
				if onSweep != nil {
					onSweep(name, removed, err)
				}
			}
		}
	}
}
