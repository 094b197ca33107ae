// Package jwt implements the compact HS256 JSON Web Token used as the session
// credential. Only HS256 is accepted; the header is checked on decode so a
// token claiming any other algorithm is rejected before the signature is
// computed.
package jwt

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	autherrors "github.com/jrsteele09/go-github-auth/internal/errors"
)

const (
	AlgorithmHS256 = "HS256"
	TypeJWT        = "JWT"
)

var encoding = base64.RawURLEncoding

// Header is the JOSE header of a token
type Header struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
}

// Claims is the session payload. Field order is fixed so that encoding is
// deterministic.
type Claims struct {
	Sub       string `json:"sub"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
	Iat       int64  `json:"iat"`
	Exp       int64  `json:"exp"`
}

// ExpiresAt returns the exp claim as a time
func (c Claims) ExpiresAt() time.Time {
	return time.Unix(c.Exp, 0)
}

// Codec signs and verifies tokens with a single shared secret
type Codec struct {
	secret  []byte
	nowFunc func() time.Time
}

type CodecOption func(*Codec)

func WithNowFunc(now func() time.Time) CodecOption {
	return func(c *Codec) {
		c.nowFunc = now
	}
}

// NewCodec creates a codec bound to secret
func NewCodec(secret []byte, opts ...CodecOption) *Codec {
	c := &Codec{
		secret:  secret,
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Encode signs claims and returns the compact serialisation
func (c *Codec) Encode(claims Claims) (string, error) {
	return Encode(claims, c.secret)
}

// Decode verifies token and returns its claims, using the codec clock for
// the expiry check
func (c *Codec) Decode(token string) (Claims, error) {
	return decode(token, c.secret, c.nowFunc())
}

// Encode builds header.payload.signature for claims signed with secret
func Encode(claims Claims, secret []byte) (string, error) {
	headerJSON, err := json.Marshal(Header{Alg: AlgorithmHS256, Typ: TypeJWT})
	if err != nil {
		return "", fmt.Errorf("[jwt Encode] marshal header: %w", err)
	}
	payloadJSON, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("[jwt Encode] marshal payload: %w", err)
	}

	signingInput := encoding.EncodeToString(headerJSON) + "." + encoding.EncodeToString(payloadJSON)
	return signingInput + "." + encoding.EncodeToString(sign(signingInput, secret)), nil
}

func decode(token string, secret []byte, now time.Time) (Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return Claims{}, fmt.Errorf("[jwt Decode] expected 3 segments, got %d: %w", len(parts), autherrors.ErrMalformedToken)
	}

	var header Header
	if err := unmarshalSegment(parts[0], &header); err != nil {
		return Claims{}, fmt.Errorf("[jwt Decode] header: %w", err)
	}
	if header.Alg != AlgorithmHS256 {
		return Claims{}, fmt.Errorf("[jwt Decode] unsupported alg %q: %w", header.Alg, autherrors.ErrMalformedToken)
	}

	signature, err := encoding.DecodeString(parts[2])
	if err != nil {
		return Claims{}, fmt.Errorf("[jwt Decode] signature encoding: %w", autherrors.ErrMalformedToken)
	}
	if !hmac.Equal(signature, sign(parts[0]+"."+parts[1], secret)) {
		return Claims{}, autherrors.ErrBadSignature
	}

	var claims Claims
	if err := unmarshalSegment(parts[1], &claims); err != nil {
		return Claims{}, fmt.Errorf("[jwt Decode] payload: %w", err)
	}
	if claims.Exp < now.Unix() {
		return Claims{}, autherrors.ErrTokenExpired
	}
	return claims, nil
}

func sign(signingInput string, secret []byte) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(signingInput))
	return mac.Sum(nil)
}

func unmarshalSegment(segment string, v any) error {
	raw, err := encoding.DecodeString(segment)
	if err != nil {
		return autherrors.ErrMalformedToken
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return autherrors.ErrMalformedToken
	}
	return nil
}
