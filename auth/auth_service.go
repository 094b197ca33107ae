package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/jrsteele09/go-github-auth/auth/authflowrepo"
	"github.com/jrsteele09/go-github-auth/auth/sessions"
	"github.com/jrsteele09/go-github-auth/github"
	"github.com/jrsteele09/go-github-auth/internal/config"
	autherrors "github.com/jrsteele09/go-github-auth/internal/errors"
	"github.com/jrsteele09/go-github-auth/token/jwt"
	"github.com/jrsteele09/go-github-auth/users"
)

// Repos holds the two stores that carry state between requests
type Repos struct {
	Sessions sessions.Repo     // subject id -> current session token
	States   authflowrepo.Repo // state token -> post-login redirect
}

// LoginResult is the outcome of a successful callback
type LoginResult struct {
	RedirectURI string
	Token       string
	User        users.User
	ExpiresAt   time.Time
}

// AuthorizationService runs the GitHub authorization-code flow and validates
// the session tokens it issues
type AuthorizationService struct {
	repos        Repos
	exchanger    github.Exchanger
	codec        *jwt.Codec
	validator    *Validator
	origins      config.AllowedOrigins
	stateTimeout time.Duration
	sessionTTL   time.Duration
	nowTime      func() time.Time
}

// AuthorizationServiceOption defines a function type to modify the AuthorizationService instance.
type AuthorizationServiceOption func(*AuthorizationService)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) AuthorizationServiceOption {
	return func(as *AuthorizationService) {
		as.nowTime = nowFunc
	}
}

// WithExpiry overrides the state and session lifetimes
func WithExpiry(stateTimeout, sessionTTL time.Duration) AuthorizationServiceOption {
	return func(as *AuthorizationService) {
		as.stateTimeout = stateTimeout
		as.sessionTTL = sessionTTL
	}
}

// NewAuthorizationService initializes a new AuthorizationService with required dependencies.
// The codec should share the service clock when WithNowTime is used.
func NewAuthorizationService(
	repos Repos,
	exchanger github.Exchanger,
	codec *jwt.Codec,
	origins config.AllowedOrigins,
	options ...AuthorizationServiceOption,
) (*AuthorizationService, error) {
	if repos.Sessions == nil {
		return nil, errors.New("[NewAuthorizationService] Sessions repo is required")
	}
	if repos.States == nil {
		return nil, errors.New("[NewAuthorizationService] States repo is required")
	}
	if exchanger == nil {
		return nil, errors.New("[NewAuthorizationService] exchanger is required")
	}
	if codec == nil {
		return nil, errors.New("[NewAuthorizationService] codec is required")
	}
	if len(origins) == 0 {
		return nil, errors.New("[NewAuthorizationService] at least one allowed origin is required")
	}

	as := &AuthorizationService{
		repos:        repos,
		exchanger:    exchanger,
		codec:        codec,
		validator:    NewValidator(origins),
		origins:      origins,
		stateTimeout: authflowrepo.DefaultTTL,
		sessionTTL:   sessions.DefaultTTL,
		nowTime:      time.Now,
	}
	for _, opt := range options {
		opt(as)
	}
	return as, nil
}

// Start records a new authorization attempt and returns the GitHub
// authorize URL. callbackURL is this service's own callback endpoint;
// redirectURI is where the browser lands once login completes and defaults to
// the first allowed origin.
func (as *AuthorizationService) Start(ctx context.Context, redirectURI, callbackURL string) (string, error) {
	if redirectURI == "" {
		redirectURI = as.origins[0]
	}
	if _, err := as.validator.ValidateRedirectURI(redirectURI); err != nil {
		return "", err
	}

	state, err := authflowrepo.NewStateToken()
	if err != nil {
		return "", fmt.Errorf("[Start] %w", err)
	}
	authState := &authflowrepo.AuthFlowState{
		RedirectURI: redirectURI,
		CreatedAt:   as.nowTime(),
	}
	if err := as.repos.States.Put(ctx, state, authState, as.stateTimeout); err != nil {
		return "", fmt.Errorf("[Start] storing state: %w", err)
	}

	return as.exchanger.AuthCodeURL(state, callbackURL), nil
}

// Callback consumes state, exchanges code with GitHub, and issues a session
// token for the GitHub user. Upstream failures are wrapped in
// ErrUpstreamRejected.
func (as *AuthorizationService) Callback(ctx context.Context, code, state string) (*LoginResult, error) {
	if err := as.validator.ValidateCallbackParameters(code, state); err != nil {
		return nil, err
	}

	authState, err := as.repos.States.TakeOnce(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("[Callback] %w", err)
	}

	accessToken, err := as.exchanger.ExchangeCodeForAccessToken(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("[Callback] %w", err)
	}
	profile, err := as.exchanger.FetchProfile(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("[Callback] %w", err)
	}

	now := as.nowTime()
	expiresAt := now.Add(as.sessionTTL)
	claims := jwt.Claims{
		Sub:       profile.ID,
		Login:     profile.Login,
		Name:      profile.Name,
		Email:     profile.Email,
		AvatarURL: profile.AvatarURL,
		Iat:       now.Unix(),
		Exp:       expiresAt.Unix(),
	}
	token, err := as.codec.Encode(claims)
	if err != nil {
		return nil, fmt.Errorf("[Callback] %w", err)
	}
	session := &sessions.Session{
		SubjectID: claims.Sub,
		Token:     token,
		AppURL:    authState.RedirectURI,
	}
	if err := as.repos.Sessions.Put(ctx, session, as.sessionTTL); err != nil {
		return nil, fmt.Errorf("[Callback] storing session: %w", err)
	}

	return &LoginResult{
		RedirectURI: authState.RedirectURI,
		Token:       token,
		User:        users.FromClaims(claims),
		ExpiresAt:   expiresAt,
	}, nil
}

// Abort consumes state for an attempt GitHub refused (for example the user
// denied access) and returns the redirect URI with the error code attached,
// so the completion page can report it to the opener
func (as *AuthorizationService) Abort(ctx context.Context, state, errorCode string) (string, error) {
	authState, err := as.repos.States.TakeOnce(ctx, state)
	if err != nil {
		return "", fmt.Errorf("[Abort] %w", err)
	}

	u, err := url.Parse(authState.RedirectURI)
	if err != nil {
		return "", fmt.Errorf("[Abort] stored redirect: %v: %w", err, autherrors.ErrInvalidRedirectURI)
	}
	q := u.Query()
	q.Set("error", errorCode)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Authenticate verifies token and checks that it is the subject's current
// session. Token failures return ErrMalformedToken, ErrBadSignature or
// ErrTokenExpired; a valid token without a matching session returns
// ErrSessionExpired.
func (as *AuthorizationService) Authenticate(ctx context.Context, token string) (*users.User, error) {
	claims, _, err := as.verify(ctx, token)
	if err != nil {
		return nil, err
	}
	user := users.FromClaims(claims)
	return &user, nil
}

// LogoutResult identifies the revoked session. AppURL is the page the login
// returned to, so the cookie can be cleared with the attributes it was set
// with.
type LogoutResult struct {
	User   users.User
	AppURL string
}

// Logout revokes the session that token belongs to
func (as *AuthorizationService) Logout(ctx context.Context, token string) (*LogoutResult, error) {
	claims, session, err := as.verify(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := as.repos.Sessions.Delete(ctx, claims.Sub); err != nil {
		return nil, fmt.Errorf("[Logout] %w", err)
	}
	return &LogoutResult{
		User:   users.FromClaims(claims),
		AppURL: session.AppURL,
	}, nil
}

func (as *AuthorizationService) verify(ctx context.Context, token string) (jwt.Claims, *sessions.Session, error) {
	if token == "" {
		return jwt.Claims{}, nil, autherrors.ErrUnauthorized
	}
	claims, err := as.codec.Decode(token)
	if err != nil {
		return jwt.Claims{}, nil, err
	}

	session, err := as.repos.Sessions.Get(ctx, claims.Sub)
	if err != nil {
		return jwt.Claims{}, nil, fmt.Errorf("[verify] %w", err)
	}
	if session == nil {
		return jwt.Claims{}, nil, autherrors.ErrSessionExpired
	}
	// A token replaced by a later login is no longer the subject's session
	if subtle.ConstantTimeCompare([]byte(session.Token), []byte(token)) != 1 {
		return jwt.Claims{}, nil, fmt.Errorf("[verify] superseded token: %w", autherrors.ErrSessionExpired)
	}
	return claims, session, nil
}
