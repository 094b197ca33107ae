package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	RouteAuthStart    = "/auth/start"
	RouteAuthCallback = "/auth/callback"
	RouteAuthUser     = "/auth/user"
	RouteAuthLogout   = "/auth/logout"
)
