package config_test

import (
	"testing"

	"github.com/jrsteele09/go-github-auth/internal/config"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("GITHUB_CLIENT_ID", "client")
	t.Setenv("GITHUB_CLIENT_SECRET", "secret")
	t.Setenv("JWT_SECRET", "0123456789abcdef")
	t.Setenv("ALLOWED_ORIGINS", "https://app.example, https://other.example/ ,")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.GetPort())
	require.Equal(t, "DEV", cfg.GetEnv())
	require.Equal(t, "user:email", cfg.GetScope())
	require.Equal(t, config.KVBackendMemory, cfg.GetKVBackend())
	require.Equal(t, "AUTH_SESSIONS", cfg.GetSessionsNamespace())
	require.Equal(t, "AUTH_STATES", cfg.GetStatesNamespace())
	require.False(t, cfg.GetCookieCrossSite())
	require.Equal(t, []byte("0123456789abcdef"), cfg.GetJWTSecret())
	require.Equal(t, config.AllowedOrigins{"https://app.example", "https://other.example"}, cfg.GetAllowedOrigins())
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9000")
	t.Setenv("PUBLIC_URL", "https://auth.example/")
	t.Setenv("COOKIE_CROSS_SITE", "true")
	t.Setenv("KV_BACKEND", "bolt")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.GetPort())
	require.Equal(t, "https://auth.example", cfg.GetPublicURL())
	require.True(t, cfg.GetCookieCrossSite())
	require.Equal(t, config.KVBackendBolt, cfg.GetKVBackend())
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"missing client id", "GITHUB_CLIENT_ID", "", "GITHUB_CLIENT_ID"},
		{"missing client secret", "GITHUB_CLIENT_SECRET", "", "GITHUB_CLIENT_SECRET"},
		{"short jwt secret", "JWT_SECRET", "short", "JWT_SECRET"},
		{"no origins", "ALLOWED_ORIGINS", " , ", "ALLOWED_ORIGINS"},
		{"multiple scopes", "GITHUB_SCOPE", "repo user", "GITHUB_SCOPE"},
		{"unknown backend", "KV_BACKEND", "redis", "KV_BACKEND"},
		{"same namespaces", "STATES_NAMESPACE", "AUTH_SESSIONS", "NAMESPACE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.value)

			_, err := config.Load()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAllowedOrigins_Resolve(t *testing.T) {
	origins := config.ParseAllowedOrigins("https://app.example,https://other.example")

	require.Equal(t, "https://other.example", origins.Resolve("https://other.example"))
	require.Equal(t, "https://app.example", origins.Resolve("https://evil.example"))
	require.Equal(t, "https://app.example", origins.Resolve(""))
	require.False(t, origins.IsAllowedOrigin(""))
	require.Equal(t, "", config.AllowedOrigins(nil).Resolve("https://evil.example"))
}

func TestAllowedOrigins_CaseInsensitive(t *testing.T) {
	origins := config.ParseAllowedOrigins(" https://App.Example/ ,https://other.example")

	require.Equal(t, config.AllowedOrigins{"https://app.example", "https://other.example"}, origins)
	require.True(t, origins.IsAllowedOrigin("https://app.example"))
	require.True(t, origins.IsAllowedOrigin("HTTPS://APP.EXAMPLE"))
	require.Equal(t, "https://app.example", origins.Resolve("https://APP.example"))

	literal := config.AllowedOrigins{"https://App.example"}
	require.True(t, literal.IsAllowedOrigin("https://app.example"))
}
