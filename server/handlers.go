package server

import (
	"encoding/json"
	"net/http"

	autherrors "github.com/jrsteele09/go-github-auth/internal/errors"
	"github.com/rs/zerolog"
)

const contentTypeJSON = "application/json; charset=utf-8"

// StartHandler records the attempt and sends the popup to GitHub
func (s *Server) StartHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		redirectURI := r.URL.Query().Get("redirect_uri")
		callbackURL := s.selfURL(r) + RouteAuthCallback

		authorizeURL, err := s.auth.Start(r.Context(), redirectURI, callbackURL)
		if err != nil {
			if autherrors.Is(err, autherrors.ErrInvalidRedirectURI) {
				zerolog.Ctx(r.Context()).Warn().Err(err).Str("redirect_uri", redirectURI).Msg("Start: rejected redirect")
				writeJSONError(w, "invalid_redirect_uri", "redirect_uri is not an allowed origin", http.StatusBadRequest)
				return
			}
			zerolog.Ctx(r.Context()).Err(err).Msg("Start: failed")
			writeJSONError(w, "server_error", "Failed to start authentication", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, authorizeURL, http.StatusFound)
	}
}

// CallbackHandler completes the GitHub flow, sets the session cookie and
// returns the browser to the page recorded at start
func (s *Server) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := zerolog.Ctx(ctx)
		q := r.URL.Query()

		if providerErr := q.Get("error"); providerErr != "" {
			redirect, err := s.auth.Abort(ctx, q.Get("state"), providerErr)
			if err != nil {
				logger.Warn().Err(err).Str("provider_error", providerErr).Msg("Callback: abort with unknown state")
				writeJSONError(w, "invalid_state", "Invalid or expired state", http.StatusBadRequest)
				return
			}
			logger.Info().Str("provider_error", providerErr).Msg("Callback: authorization refused")
			http.Redirect(w, r, redirect, http.StatusFound)
			return
		}

		result, err := s.auth.Callback(ctx, q.Get("code"), q.Get("state"))
		switch {
		case err == nil:
		case autherrors.Is(err, autherrors.ErrInvalidRequest):
			writeJSONError(w, "invalid_request", "Missing code or state", http.StatusBadRequest)
			return
		case autherrors.Is(err, autherrors.ErrInvalidState):
			logger.Warn().Err(err).Msg("Callback: invalid state")
			writeJSONError(w, "invalid_state", "Invalid or expired state", http.StatusBadRequest)
			return
		default:
			logger.Err(err).Msg("Callback: authentication failed")
			writeJSONError(w, "authentication_failed", "Authentication failed", http.StatusInternalServerError)
			return
		}

		http.SetCookie(w, s.cookies.SessionCookie(r, result.RedirectURI, result.Token))
		logger.Info().Str("sub", result.User.ID).Str("login", result.User.Login).Msg("Callback: signed in")
		http.Redirect(w, r, result.RedirectURI, http.StatusFound)
	}
}

// UserHandler returns the signed-in user
func (s *Server) UserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := s.auth.Authenticate(r.Context(), tokenFromRequest(r))
		if err != nil {
			s.writeAuthError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

// LogoutHandler revokes the session and clears the cookie
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := s.auth.Logout(r.Context(), tokenFromRequest(r))
		if err != nil {
			s.writeAuthError(w, r, err)
			return
		}

		// Clear with the app URL the cookie was set for, not the caller's Origin
		appURL := result.AppURL
		if appURL == "" {
			appURL = s.config.GetAllowedOrigins().Resolve(r.Header.Get("Origin"))
		}
		http.SetCookie(w, s.cookies.ClearCookie(r, appURL))
		zerolog.Ctx(r.Context()).Info().Str("sub", result.User.ID).Msg("Logout: session revoked")
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

func (s *Server) NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, "not_found", "Not found", http.StatusNotFound)
	}
}

// writeAuthError collapses token and session failures to one 401. The
// reason is only logged.
func (s *Server) writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	logger := zerolog.Ctx(r.Context())
	switch {
	case autherrors.Is(err, autherrors.ErrSessionExpired):
		logger.Info().Err(err).Str("reason", "session_expired").Msg("Rejected token")
	case autherrors.IsTokenError(err):
		logger.Info().Err(err).Str("reason", "unauthorized").Msg("Rejected token")
	default:
		logger.Err(err).Msg("Session lookup failed")
		writeJSONError(w, "server_error", "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSONError(w, "unauthorized", "Unauthorized", http.StatusUnauthorized)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, errorCode, description string, statusCode int) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             errorCode,
		"error_description": description,
	})
}
