package server_test

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/go-github-auth/server"
	"github.com/stretchr/testify/require"
)

func request(host string, https bool) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/auth/callback", nil)
	r.Host = host
	if https {
		r.TLS = &tls.ConnectionState{}
	}
	return r
}

func TestCookiePolicy(t *testing.T) {
	tests := []struct {
		name         string
		policy       server.CookiePolicy
		req          *http.Request
		appURL       string
		wantSecure   bool
		wantSameSite http.SameSite
		wantDomain   string
	}{
		{
			name:         "plain http localhost",
			req:          request("localhost:8787", false),
			appURL:       "http://localhost:3000/auth/callback/",
			wantSecure:   false,
			wantSameSite: http.SameSiteLaxMode,
		},
		{
			name:         "plain http loopback ip",
			req:          request("127.0.0.1:8787", false),
			appURL:       "http://127.0.0.1:3000/",
			wantSecure:   false,
			wantSameSite: http.SameSiteLaxMode,
		},
		{
			name:         "https host",
			req:          request("auth.example", true),
			appURL:       "https://app.example/",
			wantSecure:   true,
			wantSameSite: http.SameSiteLaxMode,
		},
		{
			name:         "plain http public host stays secure",
			req:          request("auth.example", false),
			appURL:       "https://app.example/",
			wantSecure:   true,
			wantSameSite: http.SameSiteLaxMode,
		},
		{
			name:         "cross site forces secure",
			policy:       server.CookiePolicy{CrossSite: true},
			req:          request("localhost:8787", false),
			appURL:       "http://localhost:3000/",
			wantSecure:   true,
			wantSameSite: http.SameSiteNoneMode,
		},
		{
			name:         "github pages domain",
			req:          request("auth.example", true),
			appURL:       "https://jook1356.github.io/blog/auth/callback/",
			wantSecure:   true,
			wantSameSite: http.SameSiteLaxMode,
			wantDomain:   "jook1356.github.io",
		},
		{
			name:         "explicit domain wins",
			policy:       server.CookiePolicy{Domain: "example.com"},
			req:          request("auth.example.com", true),
			appURL:       "https://jook1356.github.io/",
			wantSecure:   true,
			wantSameSite: http.SameSiteLaxMode,
			wantDomain:   "example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := tt.policy.SessionCookie(tt.req, tt.appURL, "a.b.c")
			require.Equal(t, "auth_token", set.Name)
			require.Equal(t, "a.b.c", set.Value)
			require.Equal(t, 86400, set.MaxAge)
			require.True(t, set.HttpOnly)
			require.Equal(t, "/", set.Path)
			require.Equal(t, tt.wantSecure, set.Secure)
			require.Equal(t, tt.wantSameSite, set.SameSite)
			require.Equal(t, tt.wantDomain, set.Domain)

			cleared := tt.policy.ClearCookie(tt.req, tt.appURL)
			require.Empty(t, cleared.Value)
			require.Negative(t, cleared.MaxAge)

			// Clearing only works when every scoping attribute matches
			cleared.Value, cleared.MaxAge = set.Value, set.MaxAge
			require.Equal(t, set, cleared)
		})
	}
}
