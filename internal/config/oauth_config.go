package config

import "time"

type OAuthConfig interface {
	GetClientID() string
	GetClientSecret() string
	GetScope() string
	GetAuthURL() string
	GetTokenURL() string
	GetAPIURL() string
	GetStateTimeout() time.Duration
	GetSessionExpiry() time.Duration
}

type OAuth struct {
	ClientID     string `env:"GITHUB_CLIENT_ID"`
	ClientSecret string `env:"GITHUB_CLIENT_SECRET"`
	Scope        string `env:"GITHUB_SCOPE" envDefault:"user:email"`
	AuthURL      string `env:"GITHUB_AUTH_URL"`
	TokenURL     string `env:"GITHUB_TOKEN_URL"`
	APIURL       string `env:"GITHUB_API_URL"`
}

var _ OAuthConfig = OAuth{}

func (o OAuth) GetClientID() string     { return o.ClientID }
func (o OAuth) GetClientSecret() string { return o.ClientSecret }
func (o OAuth) GetScope() string        { return o.Scope }
func (o OAuth) GetAuthURL() string      { return o.AuthURL }
func (o OAuth) GetTokenURL() string     { return o.TokenURL }
func (o OAuth) GetAPIURL() string       { return o.APIURL }

func (OAuth) GetStateTimeout() time.Duration {
	return 300 * time.Second
}

func (OAuth) GetSessionExpiry() time.Duration {
	return 24 * time.Hour
}
