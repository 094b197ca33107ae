// Package githubtest runs a fake GitHub OAuth provider for tests.
package githubtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

const (
	ClientID     = "test-client-id"
	ClientSecret = "test-client-secret"
	AccessToken  = "t"
)

// Server is a fake provider exposing the authorize, token and user endpoints
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	codes       map[string]string // code -> access token
	profile     map[string]any
	tokenStatus int
	userStatus  int
	tokenCalls  int
	userCalls   int
	lastAuth    string
}

// New starts a fake provider that accepts code "good-code" and returns a
// profile for alice. The server is closed when the test ends.
func New(t *testing.T) *Server {
	t.Helper()

	s := &Server{
		codes: map[string]string{"good-code": AccessToken},
		profile: map[string]any{
			"id":         1,
			"login":      "alice",
			"name":       "Alice",
			"email":      "alice@example.com",
			"avatar_url": "https://avatars.example.com/u/1",
		},
		tokenStatus: http.StatusOK,
		userStatus:  http.StatusOK,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /login/oauth/authorize", s.authorize)
	mux.HandleFunc("POST /login/oauth/access_token", s.token)
	mux.HandleFunc("GET /user", s.user)
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func (s *Server) AuthURL() string  { return s.URL + "/login/oauth/authorize" }
func (s *Server) TokenURL() string { return s.URL + "/login/oauth/access_token" }
func (s *Server) APIURL() string   { return s.URL }

// SetProfile replaces the profile returned by GET /user
func (s *Server) SetProfile(profile map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = profile
}

// FailToken makes the token endpoint answer with status
func (s *Server) FailToken(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokenStatus = status
}

// FailUser makes the user endpoint answer with status
func (s *Server) FailUser(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userStatus = status
}

func (s *Server) TokenCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokenCalls
}

func (s *Server) UserCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userCalls
}

// LastAuthorization returns the Authorization header of the last /user call
func (s *Server) LastAuthorization() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAuth
}

// authorize approves immediately and sends the browser back with a code
func (s *Server) authorize(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	redirect := q.Get("redirect_uri") + "?code=good-code&state=" + q.Get("state")
	http.Redirect(w, r, redirect, http.StatusFound)
}

func (s *Server) token(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokenCalls++

	if s.tokenStatus != http.StatusOK {
		w.WriteHeader(s.tokenStatus)
		return
	}
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if r.PostForm.Get("client_id") != ClientID || r.PostForm.Get("client_secret") != ClientSecret {
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "incorrect_client_credentials"})
		return
	}
	accessToken, ok := s.codes[r.PostForm.Get("code")]
	if !ok {
		// GitHub reports a bad code with 200 and an error body
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "bad_verification_code"})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{
		"access_token": accessToken,
		"token_type":   "bearer",
		"scope":        "user:email",
	})
}

func (s *Server) user(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userCalls++
	s.lastAuth = r.Header.Get("Authorization")

	if s.userStatus != http.StatusOK {
		w.WriteHeader(s.userStatus)
		return
	}
	fields := strings.Fields(s.lastAuth)
	if len(fields) != 2 || fields[1] != AccessToken {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.profile)
}
