package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	CorsConfig
	OAuthConfig
	SecurityConfig
	StoreConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetPublicURL() string
	GetAutocertDomain() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type StoreConfig interface {
	GetKVBackend() string
	GetKVPath() string
	GetSessionsNamespace() string
	GetStatesNamespace() string
}

// Settings is the environment-backed configuration. It is built once at
// startup and passed explicitly to the components that need it.
type Settings struct {
	EnvVars
	Cors
	OAuth
	Security
	Store
}

var _ Config = (*Settings)(nil)

const (
	KVBackendMemory = "memory"
	KVBackendBolt   = "bolt"
)

// Load reads an optional .env file and then the process environment
func Load() (*Settings, error) {
	_ = godotenv.Load()

	s := &Settings{}
	if err := env.Parse(s); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return s, nil
}

// Validate checks the settings required to run the service
func (s *Settings) Validate() error {
	if s.ClientID == "" {
		return fmt.Errorf("GITHUB_CLIENT_ID is required")
	}
	if s.ClientSecret == "" {
		return fmt.Errorf("GITHUB_CLIENT_SECRET is required")
	}
	if len(s.JWTSecret) < jwtSecretMinLen {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", jwtSecretMinLen)
	}
	if len(s.GetAllowedOrigins()) == 0 {
		return fmt.Errorf("ALLOWED_ORIGINS must list at least one origin")
	}
	if strings.Contains(s.Scope, " ") || strings.Contains(s.Scope, ",") {
		return fmt.Errorf("GITHUB_SCOPE must be a single scope, got %q", s.Scope)
	}
	switch s.KVBackend {
	case KVBackendMemory, KVBackendBolt:
	default:
		return fmt.Errorf("KV_BACKEND must be %q or %q, got %q", KVBackendMemory, KVBackendBolt, s.KVBackend)
	}
	if s.SessionsNamespace == s.StatesNamespace {
		return fmt.Errorf("SESSIONS_NAMESPACE and STATES_NAMESPACE must differ")
	}
	return nil
}
