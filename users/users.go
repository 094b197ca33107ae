package users

import "github.com/jrsteele09/go-github-auth/token/jwt"

// User is the authenticated identity returned to the client. It is derived
// from the session token payload and never persisted on its own.
type User struct {
	ID        string `json:"id"`         // GitHub numeric user id, as a decimal string
	Login     string `json:"login"`      // GitHub username
	Name      string `json:"name"`       // Display name, may be empty
	Email     string `json:"email"`      // Public email, empty if hidden
	AvatarURL string `json:"avatar_url"` // Profile picture URL
}

// FromClaims projects a verified token payload onto a User
func FromClaims(c jwt.Claims) User {
	return User{
		ID:        c.Sub,
		Login:     c.Login,
		Name:      c.Name,
		Email:     c.Email,
		AvatarURL: c.AvatarURL,
	}
}
