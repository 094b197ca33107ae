package server

func (s *Server) initRoutes() {
	// Browser navigations (popup)
	s.RegisterRouteFunc("GET "+RouteAuthStart, s.StartHandler())
	s.RegisterRouteFunc("GET "+RouteAuthCallback, s.CallbackHandler())

	// Credentialed API calls from the app
	s.RegisterRouteFunc("GET "+RouteAuthUser, ChainMiddleware(s.UserHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))

	s.RegisterRouteFunc("/", s.NotFoundHandler())
}
