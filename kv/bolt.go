package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	boltDirPerm     = fs.FileMode(0o700)
	boltFilePerm    = fs.FileMode(0o600)
	boltOpenTimeout = 5 * time.Second
)

// boltRecord is the stored envelope for a value
type boltRecord struct {
	Value     string `json:"value"`
	ExpiresAt int64  `json:"expires_at,omitempty"` // unix nanoseconds, 0 means no expiry
}

func (r boltRecord) expired(now time.Time) bool {
	return r.ExpiresAt != 0 && now.UnixNano() >= r.ExpiresAt
}

// BoltDB is a bbolt database holding one bucket per namespace
type BoltDB struct {
	db      *bolt.DB
	nowFunc func() time.Time
}

type BoltOption func(*BoltDB)

// WithBoltClock overrides the clock used for expiry
func WithBoltClock(now func() time.Time) BoltOption {
	return func(b *BoltDB) {
		b.nowFunc = now
	}
}

// OpenBolt opens (or creates) the database file at path
func OpenBolt(path string, opts ...BoltOption) (*BoltDB, error) {
	if err := os.MkdirAll(filepath.Dir(path), boltDirPerm); err != nil {
		return nil, fmt.Errorf("creating kv directory: %w", err)
	}

	db, err := bolt.Open(path, boltFilePerm, &bolt.Options{Timeout: boltOpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("opening kv db: %w", err)
	}

	b := &BoltDB{db: db, nowFunc: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Close closes the underlying database
func (b *BoltDB) Close() error {
	return b.db.Close()
}

// Namespace returns the namespace stored in bucket name, creating the bucket
// if needed
func (b *BoltDB) Namespace(name string) (*Bolt, error) {
	if name == "" {
		return nil, errors.New("namespace name cannot be empty")
	}
	err := b.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(name))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("creating namespace %q: %w", name, err)
	}
	return &Bolt{db: b, bucket: []byte(name)}, nil
}

// Bolt is a namespace backed by a single bbolt bucket
type Bolt struct {
	db     *BoltDB
	bucket []byte
}

var (
	_ Namespace = (*Bolt)(nil)
	_ Taker     = (*Bolt)(nil)
	_ Sweeper   = (*Bolt)(nil)
)

func (n *Bolt) Put(_ context.Context, key, value string, ttl time.Duration) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}

	record := boltRecord{Value: value}
	if ttl > 0 {
		record.ExpiresAt = n.db.nowFunc().Add(ttl).UnixNano()
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshalling record: %w", err)
	}

	return n.db.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(n.bucket).Put([]byte(key), data)
	})
}

func (n *Bolt) Get(_ context.Context, key string) (string, bool, error) {
	var (
		record  boltRecord
		found   bool
		expired bool
	)
	err := n.db.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(n.bucket).Get([]byte(key))
		if data == nil {
			return nil
		}
		if err := json.Unmarshal(data, &record); err != nil {
			return fmt.Errorf("unmarshalling record %q: %w", key, err)
		}
		expired = record.expired(n.db.nowFunc())
		found = !expired
		return nil
	})
	if err != nil {
		return "", false, err
	}

	if expired {
		// Lazily drop the stale record. A failure here only delays cleanup.
		_ = n.Delete(context.Background(), key)
	}
	if !found {
		return "", false, nil
	}
	return record.Value, true, nil
}

func (n *Bolt) Delete(_ context.Context, key string) error {
	return n.db.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(n.bucket).Delete([]byte(key))
	})
}

// Take reads and deletes key in one write transaction
func (n *Bolt) Take(_ context.Context, key string) (string, bool, error) {
	var (
		record boltRecord
		found  bool
	)
	err := n.db.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(n.bucket)
		data := bucket.Get([]byte(key))
		if data == nil {
			return nil
		}
		if err := json.Unmarshal(data, &record); err != nil {
			return fmt.Errorf("unmarshalling record %q: %w", key, err)
		}
		found = !record.expired(n.db.nowFunc())
		return bucket.Delete([]byte(key))
	})
	if err != nil || !found {
		return "", false, err
	}
	return record.Value, true, nil
}

// Sweep removes expired records from the bucket
func (n *Bolt) Sweep() (int, error) {
	now := n.db.nowFunc()
	removed := 0
	err := n.db.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(n.bucket)
		var stale [][]byte
		err := bucket.ForEach(func(k, v []byte) error {
			var record boltRecord
			if err := json.Unmarshal(v, &record); err != nil || record.expired(now) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}
		removed = len(stale)
		return nil
	})
	return removed, err
}
