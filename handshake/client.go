package handshake

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/jrsteele09/go-github-auth/users"
	"golang.org/x/net/publicsuffix"
)

const defaultTimeout = 10 * time.Second

// HTTPClient implements API over HTTP. Its cookie jar plays the part of the
// browser's credentialed fetch, so the auth_token cookie set during login is
// sent on every call.
type HTTPClient struct {
	client *resty.Client
}

var _ API = (*HTTPClient)(nil)

// NewHTTPClient creates a client for the auth service at authBase. A nil
// httpClient uses a default client with a fresh cookie jar; a supplied client
// without a jar gets one.
func NewHTTPClient(authBase string, httpClient *http.Client) (*HTTPClient, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if httpClient.Jar == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("[NewHTTPClient] cookie jar: %w", err)
		}
		httpClient.Jar = jar
	}

	client := resty.NewWithClient(httpClient).
		SetBaseURL(strings.TrimRight(authBase, "/")).
		SetHeader("Accept", "application/json")
	return &HTTPClient{client: client}, nil
}

// Client returns the underlying http.Client, whose jar holds the session
func (c *HTTPClient) Client() *http.Client {
	return c.client.GetClient()
}

func (c *HTTPClient) WhoAmI(ctx context.Context) (*users.User, int, error) {
	var user users.User
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&user).
		Get("/auth/user")
	if err != nil {
		return nil, 0, fmt.Errorf("[HTTPClient WhoAmI] %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, resp.StatusCode(), nil
	}
	return &user, resp.StatusCode(), nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	resp, err := c.client.R().
		SetContext(ctx).
		Post("/auth/logout")
	if err != nil {
		return fmt.Errorf("[HTTPClient Logout] %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("[HTTPClient Logout] unexpected status %d", resp.StatusCode())
	}
	return nil
}
