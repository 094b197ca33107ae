package config

const jwtSecretMinLen = 16

type SecurityConfig interface {
	GetJWTSecret() []byte
	GetCookieDomain() string
	GetCookieCrossSite() bool
}

type Security struct {
	JWTSecret       string `env:"JWT_SECRET"`
	CookieDomain    string `env:"COOKIE_DOMAIN"`
	CookieCrossSite bool   `env:"COOKIE_CROSS_SITE" envDefault:"false"`
}

var _ SecurityConfig = Security{}

func (s Security) GetJWTSecret() []byte {
	return []byte(s.JWTSecret)
}

// GetCookieDomain returns the Domain attribute for the session cookie. Empty
// means a host-only cookie.
func (s Security) GetCookieDomain() string {
	return s.CookieDomain
}

// GetCookieCrossSite reports whether the completion page and this service
// are on different sites, which requires SameSite=None
func (s Security) GetCookieCrossSite() bool {
	return s.CookieCrossSite
}
