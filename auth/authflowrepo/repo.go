package authflowrepo

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	autherrors "github.com/jrsteele09/go-github-auth/internal/errors"
	"github.com/jrsteele09/go-github-auth/kv"
)

const (
	// DefaultTTL bounds how long a login attempt may take before its state expires
	DefaultTTL = 300 * time.Second

	// stateTokenBytes is the entropy of a state token (256 bits)
	stateTokenBytes = 32

	keyPrefix = "state:"
)

// AuthFlowState binds one authorization attempt to where the browser goes
// when it completes
type AuthFlowState struct {
	RedirectURI string    `json:"redirect_uri"`
	CreatedAt   time.Time `json:"created_at"`
}

type Repo interface {
	Put(ctx context.Context, state string, authState *AuthFlowState, ttl time.Duration) error
	// TakeOnce returns and removes the state. Unknown, expired or already
	// consumed states return ErrInvalidState.
	TakeOnce(ctx context.Context, state string) (*AuthFlowState, error)
}

// KVRepo stores authorization states in a kv namespace
type KVRepo struct {
	ns kv.Namespace
}

var _ Repo = (*KVRepo)(nil)

// NewKVRepo creates a state repo over ns
func NewKVRepo(ns kv.Namespace) *KVRepo {
	return &KVRepo{ns: ns}
}

func (r *KVRepo) Put(ctx context.Context, state string, authState *AuthFlowState, ttl time.Duration) error {
	if state == "" {
		return errors.New("state cannot be empty")
	}
	if authState == nil {
		return errors.New("authState cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	data, err := json.Marshal(authState)
	if err != nil {
		return autherrors.Wrapf(err, "[authflowrepo Put] marshal")
	}
	if err := r.ns.Put(ctx, keyPrefix+state, string(data), ttl); err != nil {
		return autherrors.Wrapf(err, "[authflowrepo Put]")
	}
	return nil
}

// TakeOnce uses an atomic take when the namespace supports one, otherwise a
// get followed by delete. Two concurrent callbacks with the same state can
// then both read it; state tokens are single use per attempt so that is
// tolerated.
func (r *KVRepo) TakeOnce(ctx context.Context, state string) (*AuthFlowState, error) {
	if state == "" {
		return nil, autherrors.ErrInvalidState
	}

	data, found, err := kv.Take(ctx, r.ns, keyPrefix+state)
	if err != nil {
		return nil, autherrors.Wrapf(err, "[authflowrepo TakeOnce]")
	}
	if !found {
		return nil, autherrors.ErrInvalidState
	}

	var authState AuthFlowState
	if err := json.Unmarshal([]byte(data), &authState); err != nil {
		return nil, fmt.Errorf("[authflowrepo TakeOnce] corrupt state: %w", autherrors.ErrInvalidState)
	}
	return &authState, nil
}

// NewStateToken returns a random base64url state token
func NewStateToken() (string, error) {
	b := make([]byte, stateTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("[authflowrepo NewStateToken] %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
