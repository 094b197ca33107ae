package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	autherrors "github.com/jrsteele09/go-github-auth/internal/errors"
	"github.com/jrsteele09/go-github-auth/kv"
)

// Repo defines the session storage operations. Deleting a session is the
// authoritative revocation of its token.
type Repo interface {
	// Put creates or replaces the session for session.SubjectID
	Put(ctx context.Context, session *Session, ttl time.Duration) error

	// Get returns the current session for subjectID, or nil when none exists
	Get(ctx context.Context, subjectID string) (*Session, error)

	// Delete removes the session for subjectID
	Delete(ctx context.Context, subjectID string) error
}

// KVRepo stores sessions in a kv namespace
type KVRepo struct {
	ns kv.Namespace
}

var _ Repo = (*KVRepo)(nil)

// NewKVRepo creates a session repo over ns
func NewKVRepo(ns kv.Namespace) *KVRepo {
	return &KVRepo{ns: ns}
}

func (r *KVRepo) Put(ctx context.Context, session *Session, ttl time.Duration) error {
	if session == nil {
		return errors.New("session is required")
	}
	if session.SubjectID == "" {
		return errors.New("subjectID is required")
	}
	if session.Token == "" {
		return errors.New("token is required")
	}
	value, err := json.Marshal(record{Token: session.Token, AppURL: session.AppURL})
	if err != nil {
		return autherrors.Wrapf(err, "[sessions Put] marshal")
	}
	if err := r.ns.Put(ctx, key(session.SubjectID), string(value), ttl); err != nil {
		return autherrors.Wrapf(err, "[sessions Put]")
	}
	return nil
}

func (r *KVRepo) Get(ctx context.Context, subjectID string) (*Session, error) {
	if subjectID == "" {
		return nil, errors.New("subjectID is required")
	}
	value, found, err := r.ns.Get(ctx, key(subjectID))
	if err != nil {
		return nil, autherrors.Wrapf(err, "[sessions Get]")
	}
	if !found {
		return nil, nil
	}
	var rec record
	if err := json.Unmarshal([]byte(value), &rec); err != nil {
		return nil, autherrors.Wrapf(err, "[sessions Get] corrupt session %s", subjectID)
	}
	return &Session{SubjectID: subjectID, Token: rec.Token, AppURL: rec.AppURL}, nil
}

func (r *KVRepo) Delete(ctx context.Context, subjectID string) error {
	if subjectID == "" {
		return errors.New("subjectID is required")
	}
	if err := r.ns.Delete(ctx, key(subjectID)); err != nil {
		return autherrors.Wrapf(err, "[sessions Delete]")
	}
	return nil
}
