package handshake

import (
	"net/url"
	"strings"
	"time"
)

// Message types posted by the completion page to its opener
const (
	MessageAuthSuccess = "AUTH_SUCCESS"
	MessageAuthError   = "AUTH_ERROR"
)

// MessageData is the payload of a completion message
type MessageData struct {
	Type  string `json:"type"`
	Error string `json:"error,omitempty"`
}

// Message is a cross-window message as delivered to a listener
type Message struct {
	Origin string // origin of the sending document
	Data   MessageData
}

// Geometry is the opener window position and size in screen pixels
type Geometry struct {
	ScreenX     int
	ScreenY     int
	OuterWidth  int
	OuterHeight int
}

// Window is the opener page
type Window interface {
	Origin() string
	Geometry() Geometry
	Open(url, name, features string) (Popup, error)
	// AddMessageListener registers fn for incoming messages and returns the
	// function that removes it
	AddMessageListener(fn func(Message)) (remove func())
}

// Popup is a window opened by Window.Open
type Popup interface {
	Close() error
	Closed() bool
}

// Ticker delivers poll ticks until stopped
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory creates a Ticker firing every d
type TickerFactory func(d time.Duration) Ticker

type timeTicker struct {
	t *time.Ticker
}

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// NewTimeTicker is the TickerFactory backed by time.Ticker
func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

// CompletionMessage returns the message the completion page posts for the
// query string it was loaded with. The session cookie is already set when
// the page loads, so success carries no data.
func CompletionMessage(query url.Values) MessageData {
	if errCode := query.Get("error"); errCode != "" {
		return MessageData{Type: MessageAuthError, Error: errCode}
	}
	return MessageData{Type: MessageAuthSuccess}
}

// DetectBasePath returns the deployment base path for a page URL. Project
// sites on github.io are served under their first path segment.
func DetectBasePath(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil || !strings.HasSuffix(u.Hostname(), "github.io") {
		return ""
	}
	for _, segment := range strings.Split(u.Path, "/") {
		if segment != "" {
			return "/" + segment
		}
	}
	return ""
}
