package model

import "time"

// User is the identity part of a session.
type User struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Image string `json:"image,omitempty"`
}

// Session is owned by the auth provider; this program only reads it and
// asks the provider to update it.
type Session struct {
	User         User      `json:"user"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	Expires      time.Time `json:"expires,omitzero"`
}

// WithName returns a copy of s whose user name is replaced.
func (s Session) WithName(name string) Session {
	s.User.Name = name
	return s
}
