// Package handshake drives the popup login against the auth service from
// the app side. Browser primitives are interfaces so the state machine runs
// against any host.
package handshake

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	autherrors "github.com/jrsteele09/go-github-auth/internal/errors"
	"github.com/jrsteele09/go-github-auth/users"
	"github.com/rs/zerolog/log"
)

const (
	DefaultPollInterval = time.Second

	popupName   = "github_oauth"
	popupWidth  = 600
	popupHeight = 700
)

// Phase is the login state
type Phase int

const (
	Idle Phase = iota
	AwaitingPopup
	AwaitingMessage
	Resolved
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case AwaitingPopup:
		return "awaiting_popup"
	case AwaitingMessage:
		return "awaiting_message"
	case Resolved:
		return "resolved"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Outcome qualifies the Resolved phase
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeSuccess
	OutcomeError
)

// API is the auth service as seen by the app
type API interface {
	// WhoAmI returns the signed-in user and the response status. A non-200
	// status with a nil error means not signed in.
	WhoAmI(ctx context.Context) (*users.User, int, error)
	Logout(ctx context.Context) error
}

// State is a snapshot of the handshake
type State struct {
	Phase   Phase
	Outcome Outcome
	User    *users.User
	Loading bool
	Err     error
}

// Config locates the auth service and the app deployment
type Config struct {
	AuthBase string // auth service base URL, e.g. "https://auth.example"
	BasePath string // app base path, e.g. "/blog" for a github.io project site
}

// Handshake is the client login state machine. It keeps at most one login
// attempt alive; every attempt ends through teardown, which stops the poll
// ticker and removes the message listener.
type Handshake struct {
	window       Window
	api          API
	cfg          Config
	newTicker    TickerFactory
	pollInterval time.Duration
	onChange     func(State)

	mu      sync.Mutex
	state   State
	attempt *attempt
}

type attempt struct {
	ctx            context.Context
	popup          Popup
	ticker         Ticker
	removeListener func()
	done           chan struct{}
}

type Option func(*Handshake)

// WithTicker replaces the closed-popup poll ticker (primarily for testing)
func WithTicker(factory TickerFactory) Option {
	return func(h *Handshake) {
		h.newTicker = factory
	}
}

func WithPollInterval(d time.Duration) Option {
	return func(h *Handshake) {
		h.pollInterval = d
	}
}

// WithOnChange registers fn to receive every state change
func WithOnChange(fn func(State)) Option {
	return func(h *Handshake) {
		h.onChange = fn
	}
}

func New(window Window, api API, cfg Config, opts ...Option) (*Handshake, error) {
	if window == nil {
		return nil, errors.New("[handshake New] window is required")
	}
	if api == nil {
		return nil, errors.New("[handshake New] api is required")
	}
	if cfg.AuthBase == "" {
		return nil, errors.New("[handshake New] auth base URL is required")
	}
	cfg.AuthBase = strings.TrimRight(cfg.AuthBase, "/")
	cfg.BasePath = strings.TrimRight(cfg.BasePath, "/")

	h := &Handshake{
		window:       window,
		api:          api,
		cfg:          cfg,
		newTicker:    NewTimeTicker,
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// State returns the current snapshot
func (h *Handshake) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// CallbackURL is the completion page the popup lands on after login
func (h *Handshake) CallbackURL() string {
	return h.window.Origin() + h.cfg.BasePath + "/auth/callback/"
}

// StartURL is the auth service URL the popup opens
func (h *Handshake) StartURL() string {
	return h.cfg.AuthBase + "/auth/start?redirect_uri=" + url.QueryEscape(h.CallbackURL())
}

// Login opens the popup and waits for the completion page to report back.
// It returns once the popup is open; the result arrives through State and
// the OnChange callback. ctx is used for the CheckAuth that follows success.
func (h *Handshake) Login(ctx context.Context) error {
	h.mu.Lock()
	prev := h.attempt
	if prev != nil {
		h.teardownLocked(prev)
	}
	h.state.Phase = AwaitingPopup
	h.state.Outcome = OutcomeNone
	h.state.Err = nil
	h.mu.Unlock()
	if prev != nil {
		closePopup(prev.popup)
	}
	h.notify()

	g := h.window.Geometry()
	left := g.ScreenX + (g.OuterWidth-popupWidth)/2
	top := g.ScreenY + (g.OuterHeight-popupHeight)/2
	features := fmt.Sprintf("width=%d,height=%d,left=%d,top=%d", popupWidth, popupHeight, left, top)

	popup, err := h.window.Open(h.StartURL(), popupName, features)
	if err == nil && popup == nil {
		err = autherrors.ErrPopupBlocked
	}
	if err != nil {
		h.mu.Lock()
		h.state.Phase = Resolved
		h.state.Outcome = OutcomeError
		h.state.Err = fmt.Errorf("[handshake Login] %w", err)
		h.mu.Unlock()
		h.notify()
		return err
	}

	att := &attempt{
		ctx:    ctx,
		popup:  popup,
		ticker: h.newTicker(h.pollInterval),
		done:   make(chan struct{}),
	}

	h.mu.Lock()
	h.attempt = att
	h.state.Phase = AwaitingMessage
	h.mu.Unlock()
	h.notify()

	remove := h.window.AddMessageListener(func(msg Message) {
		h.handleMessage(att, msg)
	})
	h.mu.Lock()
	current := h.attempt == att
	if current {
		att.removeListener = remove
	}
	h.mu.Unlock()
	if !current {
		// Resolved or replaced while registering
		remove()
		return nil
	}

	go h.pollClosed(att)
	return nil
}

func (h *Handshake) handleMessage(att *attempt, msg Message) {
	if msg.Origin != h.window.Origin() {
		return
	}
	if msg.Data.Type != MessageAuthSuccess && msg.Data.Type != MessageAuthError {
		return
	}

	h.mu.Lock()
	if !h.teardownLocked(att) {
		h.mu.Unlock()
		return
	}
	h.state.Phase = Resolved
	if msg.Data.Type == MessageAuthSuccess {
		h.state.Outcome = OutcomeSuccess
	} else {
		h.state.Outcome = OutcomeError
		h.state.Err = fmt.Errorf("%w: %s", autherrors.ErrAuthenticationFailed, msg.Data.Error)
	}
	h.mu.Unlock()
	h.notify()

	closePopup(att.popup)
	if msg.Data.Type == MessageAuthSuccess {
		_ = h.CheckAuth(att.ctx)
	}
}

// pollClosed ends the attempt when the user closes the popup by hand
func (h *Handshake) pollClosed(att *attempt) {
	for {
		select {
		case <-att.done:
			return
		case <-att.ticker.C():
			if !att.popup.Closed() {
				continue
			}
			h.mu.Lock()
			ended := h.teardownLocked(att)
			if ended {
				h.state.Phase = Idle
			}
			h.mu.Unlock()
			if ended {
				h.notify()
			}
			return
		}
	}
}

// teardownLocked is the single exit for an attempt. It reports false when
// att is no longer the current attempt.
func (h *Handshake) teardownLocked(att *attempt) bool {
	if h.attempt != att {
		return false
	}
	h.attempt = nil
	close(att.done)
	att.ticker.Stop()
	if att.removeListener != nil {
		att.removeListener()
	}
	return true
}

// CheckAuth refreshes the signed-in user. Not being signed in is not an
// error; a transport failure clears the user and is recorded.
func (h *Handshake) CheckAuth(ctx context.Context) error {
	h.mu.Lock()
	h.state.Loading = true
	h.state.Err = nil
	h.mu.Unlock()
	h.notify()

	user, status, err := h.api.WhoAmI(ctx)

	h.mu.Lock()
	h.state.Loading = false
	switch {
	case err != nil:
		h.state.User = nil
		h.state.Err = fmt.Errorf("[handshake CheckAuth] %w", err)
	case status != http.StatusOK:
		h.state.User = nil
	default:
		h.state.User = user
	}
	h.mu.Unlock()
	h.notify()
	return err
}

// Logout signs out on the server and always clears the local user
func (h *Handshake) Logout(ctx context.Context) error {
	h.setLoading(true)
	err := h.api.Logout(ctx)

	h.mu.Lock()
	h.state.Loading = false
	h.state.User = nil
	h.mu.Unlock()
	h.notify()

	if err != nil {
		return fmt.Errorf("[handshake Logout] %w", err)
	}
	return nil
}

// Close ends any attempt in flight
func (h *Handshake) Close() {
	h.mu.Lock()
	att := h.attempt
	ended := att != nil && h.teardownLocked(att)
	if ended {
		h.state.Phase = Idle
	}
	h.mu.Unlock()
	if ended {
		closePopup(att.popup)
		h.notify()
	}
}

func (h *Handshake) setLoading(loading bool) {
	h.mu.Lock()
	h.state.Loading = loading
	h.mu.Unlock()
	h.notify()
}

func (h *Handshake) notify() {
	if h.onChange == nil {
		return
	}
	h.onChange(h.State())
}

// closePopup is best effort; the popup may already be gone
func closePopup(p Popup) {
	if err := p.Close(); err != nil {
		log.Debug().Err(err).Msg("handshake: popup close failed")
	}
}
