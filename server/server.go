package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-github-auth/auth"
	"github.com/jrsteele09/go-github-auth/internal/config"
	"github.com/rs/zerolog/log"
)

type Server struct {
	env     string // Environment (e.g., "DEV", "PROD")
	mux     *http.ServeMux
	handler http.HandlerFunc
	routes  []string
	config  config.Config
	auth    *auth.AuthorizationService
	cookies CookiePolicy
}

func New(config config.Config, authService *auth.AuthorizationService) (*Server, error) {
	if config == nil {
		return nil, errors.New("[Server New] config is required")
	}
	if authService == nil {
		return nil, errors.New("[Server New] authorization service is required")
	}

	s := &Server{
		env:    config.GetEnv(),
		mux:    http.NewServeMux(),
		config: config,
		auth:   authService,
		cookies: CookiePolicy{
			Domain:    config.GetCookieDomain(),
			CrossSite: config.GetCookieCrossSite(),
		},
	}

	s.initRoutes()
	s.handler = ChainMiddleware(s.mux.ServeHTTP, s.StdMiddleware()...)
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// Routes returns the registered route patterns
func (s *Server) Routes() []string {
	return append([]string(nil), s.routes...)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Info().Msgf("[%-19s] %s", displayMethod, path)
}
