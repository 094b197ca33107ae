package server

import (
	"net"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

const (
	// authTokenCookieName carries the session JWT
	authTokenCookieName = "auth_token"

	sessionCookieMaxAge = 24 * 60 * 60
)

// CookiePolicy decides the attributes of the session cookie. The same policy
// value builds both the cookie set at callback and the one that clears it at
// logout; browsers ignore a clear whose Domain, Path or SameSite differ.
type CookiePolicy struct {
	Domain    string // explicit Domain attribute; empty derives one for github.io hosts
	CrossSite bool   // SameSite=None for a completion page on another site
}

// SessionCookie returns the cookie holding token. appURL is the page the
// browser returns to and decides the derived Domain.
func (p CookiePolicy) SessionCookie(r *http.Request, appURL, token string) *http.Cookie {
	c := p.base(r, appURL)
	c.Value = token
	c.MaxAge = sessionCookieMaxAge
	return c
}

// ClearCookie returns the cookie that deletes the session cookie
func (p CookiePolicy) ClearCookie(r *http.Request, appURL string) *http.Cookie {
	c := p.base(r, appURL)
	c.MaxAge = -1 // serialised as Max-Age=0
	return c
}

func (p CookiePolicy) base(r *http.Request, appURL string) *http.Cookie {
	c := &http.Cookie{
		Name:     authTokenCookieName,
		Path:     "/",
		Domain:   p.domain(appURL),
		HttpOnly: true,
		Secure:   !isPlainLocalhost(r),
		SameSite: http.SameSiteLaxMode,
	}
	if p.CrossSite {
		c.SameSite = http.SameSiteNoneMode
		c.Secure = true
	}
	return c
}

// domain returns the configured Domain, or the registrable domain of a
// github.io app host (e.g. "user.github.io") so project pages share it
func (p CookiePolicy) domain(appURL string) string {
	if p.Domain != "" {
		return p.Domain
	}
	u, err := url.Parse(appURL)
	if err != nil {
		return ""
	}
	host := u.Hostname()
	if !strings.HasSuffix(host, ".github.io") {
		return ""
	}
	registrable, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return ""
	}
	return registrable
}

// isPlainLocalhost reports whether r arrived over plain HTTP on a loopback host
func isPlainLocalhost(r *http.Request) bool {
	if getScheme(r) != "http" {
		return false
	}
	host := r.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// tokenFromRequest returns the session token from the auth_token cookie,
// falling back to an Authorization: Bearer header
func tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(authTokenCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return ""
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}

// selfURL is the externally visible base URL of this service
func (s *Server) selfURL(r *http.Request) string {
	if public := s.config.GetPublicURL(); public != "" {
		return public
	}
	return getScheme(r) + "://" + r.Host
}
