package sessions

import "time"

// DefaultTTL is how long a login session stays valid without a new login
const DefaultTTL = 24 * time.Hour

const keyPrefix = "session:"

// Session authorises one previously issued token for a subject. There is at
// most one per subject; a later login replaces it.
type Session struct {
	SubjectID string // GitHub user id
	Token     string // the session JWT currently allowed for SubjectID
	AppURL    string // page the login returned to; decides the cookie Domain
}

// record is the stored form of a Session; the subject id is the key
type record struct {
	Token  string `json:"token"`
	AppURL string `json:"app_url,omitempty"`
}

func key(subjectID string) string {
	return keyPrefix + subjectID
}
