package config

import "strings"

type Cors struct {
	Origins string `env:"ALLOWED_ORIGINS"`
}

var _ CorsConfig = Cors{}

// AllowedOrigins is the ordered origin allowlist. The first entry is the
// fallback origin for requests from anywhere else.
type AllowedOrigins []string

// ParseAllowedOrigins splits a comma-separated list, dropping blanks and
// trailing slashes. Origins are lowercased; scheme and host compare without
// case.
func ParseAllowedOrigins(list string) AllowedOrigins {
	var origins AllowedOrigins
	for _, o := range strings.Split(list, ",") {
		o = strings.ToLower(strings.TrimRight(strings.TrimSpace(o), "/"))
		if o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func (a AllowedOrigins) IsAllowedOrigin(origin string) bool {
	_, ok := a.match(origin)
	return ok
}

// Resolve returns the allowlist entry matching origin, otherwise the first
// allowlisted origin. An arbitrary origin is never returned.
func (a AllowedOrigins) Resolve(origin string) string {
	if o, ok := a.match(origin); ok {
		return o
	}
	if len(a) == 0 {
		return ""
	}
	return a[0]
}

func (a AllowedOrigins) match(origin string) (string, bool) {
	if origin == "" {
		return "", false
	}
	for _, o := range a {
		if strings.EqualFold(o, origin) {
			return o, true
		}
	}
	return "", false
}

func (a AllowedOrigins) String() string {
	return strings.Join(a, ", ")
}

func (c Cors) GetAllowedOrigins() AllowedOrigins {
	return ParseAllowedOrigins(c.Origins)
}

func (Cors) GetAllowedMethods() string {
	return "GET, POST, OPTIONS"
}

func (Cors) GetAllowedHeaders() string {
	return "Content-Type, Authorization"
}
