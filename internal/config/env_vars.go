package config

import (
	"fmt"
	"strings"
)

type EnvVars struct {
	Port           string `env:"PORT" envDefault:"8080"`
	AppName        string `env:"APP_NAME" envDefault:"GitHub Auth"`
	Env            string `env:"ENV" envDefault:"DEV"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	PublicURL      string `env:"PUBLIC_URL"`
	AutocertDomain string `env:"AUTOCERT_DOMAIN"`
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	port := e.Port
	if port == "" {
		port = "8080"
	}
	if port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

func (e EnvVars) GetEnv() string {
	if e.Env == "" {
		return "DEV"
	}
	return e.Env
}

func (e EnvVars) GetLogLevel() string {
	return e.LogLevel
}

// GetPublicURL returns the externally visible base URL of this service
// (e.g. "https://auth.example.com"). Empty means derive it from the request.
func (e EnvVars) GetPublicURL() string {
	return strings.TrimRight(e.PublicURL, "/")
}

func (e EnvVars) GetAutocertDomain() string {
	return e.AutocertDomain
}
