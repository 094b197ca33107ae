// Package github talks to the GitHub OAuth endpoints: it trades an
// authorization code for an access token and the access token for the
// user's profile. Neither call is retried; authorization codes are single use.
package github

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	autherrors "github.com/jrsteele09/go-github-auth/internal/errors"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
	oauth2github "golang.org/x/oauth2/github"
)

//go:generate mockgen -destination=mocks/exchanger.go -package=mocks . Exchanger

const (
	DefaultAPIURL    = "https://api.github.com"
	DefaultUserAgent = "go-github-auth"
	DefaultScope     = "user:email"

	defaultTimeout = 10 * time.Second
)

// Profile is the part of GET /user the service keeps
type Profile struct {
	ID        string // decimal user id
	Login     string
	Name      string
	Email     string
	AvatarURL string
}

// Exchanger is the upstream half of the authorization-code flow
type Exchanger interface {
	// AuthCodeURL returns the provider authorize URL for state, sending the
	// browser back to callbackURL
	AuthCodeURL(state, callbackURL string) string
	ExchangeCodeForAccessToken(ctx context.Context, code string) (string, error)
	FetchProfile(ctx context.Context, accessToken string) (Profile, error)
}

// Config holds the OAuth app credentials and endpoints
type Config struct {
	ClientID     string
	ClientSecret string
	Scope        string
	AuthURL      string // defaults to github.com
	TokenURL     string // defaults to github.com
	APIURL       string // defaults to api.github.com
	UserAgent    string
	HTTPClient   *http.Client
}

// Client implements Exchanger against GitHub
type Client struct {
	oauth      *oauth2.Config
	httpClient *http.Client
	api        *resty.Client
}

var _ Exchanger = (*Client)(nil)

// New creates a GitHub client from cfg, filling in defaults for anything unset
func New(cfg Config) *Client {
	endpoint := oauth2github.Endpoint
	if cfg.AuthURL != "" {
		endpoint.AuthURL = cfg.AuthURL
	}
	if cfg.TokenURL != "" {
		endpoint.TokenURL = cfg.TokenURL
	}
	// client_id and client_secret travel in the POST body
	endpoint.AuthStyle = oauth2.AuthStyleInParams

	scope := cfg.Scope
	if scope == "" {
		scope = DefaultScope
	}
	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	api := resty.NewWithClient(httpClient).
		SetBaseURL(strings.TrimRight(apiURL, "/")).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/vnd.github+json")
	api.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		log.Debug().
			Str("destination", "github").
			Str("method", resp.Request.Method).
			Str("url", resp.Request.URL).
			Int("status", resp.StatusCode()).
			Dur("duration", resp.Time()).
			Msg("http call completed")
		return nil
	})

	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     endpoint,
			Scopes:       []string{scope},
		},
		httpClient: httpClient,
		api:        api,
	}
}

func (c *Client) AuthCodeURL(state, callbackURL string) string {
	return c.oauth.AuthCodeURL(state, oauth2.SetAuthURLParam("redirect_uri", callbackURL))
}

// ExchangeCodeForAccessToken POSTs the code to the token endpoint
func (c *Client) ExchangeCodeForAccessToken(ctx context.Context, code string) (string, error) {
	if code == "" {
		return "", fmt.Errorf("[github Exchange] empty code: %w", autherrors.ErrUpstreamRejected)
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("[github Exchange] %v: %w", err, autherrors.ErrUpstreamRejected)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("[github Exchange] response has no access token: %w", autherrors.ErrUpstreamRejected)
	}
	return token.AccessToken, nil
}

// FetchProfile GETs /user with the access token
func (c *Client) FetchProfile(ctx context.Context, accessToken string) (Profile, error) {
	resp, err := c.api.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		Get("/user")
	if err != nil {
		return Profile{}, fmt.Errorf("[github FetchProfile] %v: %w", err, autherrors.ErrUpstreamRejected)
	}
	if resp.IsError() {
		return Profile{}, fmt.Errorf("[github FetchProfile] status %d: %w", resp.StatusCode(), autherrors.ErrUpstreamRejected)
	}

	return parseProfile(resp.Body())
}

func parseProfile(body []byte) (Profile, error) {
	if !gjson.ValidBytes(body) {
		return Profile{}, fmt.Errorf("[github FetchProfile] invalid JSON: %w", autherrors.ErrUpstreamRejected)
	}
	result := gjson.ParseBytes(body)

	// Raw keeps the id's decimal text so large ids are not rounded through float64
	id := result.Get("id")
	if id.Type != gjson.Number || id.Raw == "0" {
		return Profile{}, fmt.Errorf("[github FetchProfile] missing user id: %w", autherrors.ErrUpstreamRejected)
	}
	login := result.Get("login").String()
	if login == "" {
		return Profile{}, fmt.Errorf("[github FetchProfile] missing login: %w", autherrors.ErrUpstreamRejected)
	}

	return Profile{
		ID:        id.Raw,
		Login:     login,
		Name:      result.Get("name").String(),
		Email:     result.Get("email").String(),
		AvatarURL: result.Get("avatar_url").String(),
	}, nil
}
