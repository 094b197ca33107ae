package kv

import (
	"context"
	"errors"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// Memory is a thread-safe in-memory namespace
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	nowFunc func() time.Time
}

var (
	_ Namespace = (*Memory)(nil)
	_ Taker     = (*Memory)(nil)
	_ Sweeper   = (*Memory)(nil)
)

type MemoryOption func(*Memory)

// WithMemoryClock overrides the clock used for expiry
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		m.nowFunc = now
	}
}

// NewMemory creates an empty in-memory namespace
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		entries: make(map[string]memoryEntry),
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) Put(_ context.Context, key, value string, ttl time.Duration) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}

	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = m.nowFunc().Add(ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry
	return nil
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lookupLocked(key)
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// Take reads and deletes key under a single lock
func (m *Memory) Take(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, found, err := m.lookupLocked(key)
	delete(m.entries, key)
	return value, found, err
}

// Sweep removes expired entries
func (m *Memory) Sweep() (int, error) {
	now := m.nowFunc()
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, entry := range m.entries {
		if entry.expired(now) {
			delete(m.entries, key)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored entries, including expired ones not yet swept
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory) lookupLocked(key string) (string, bool, error) {
	entry, ok := m.entries[key]
	if !ok {
		return "", false, nil
	}
	if entry.expired(m.nowFunc()) {
		delete(m.entries, key)
		return "", false, nil
	}
	return entry.value, true, nil
}
