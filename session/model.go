package session

import (
	"encoding/json"

	"github.com/MrEthical07/goGuard/route"
)

// User is the identity record persisted alongside the token.
//
// Fields not modelled here are kept in Extra so that a load/save cycle does
// not drop data written by the login flow.
type User struct {
	ID        string     `json:"user_id,omitempty"`
	Username  string     `json:"username,omitempty"`
	Role      route.Role `json:"role"`
	FullName  string     `json:"full_name,omitempty"`
	Name      string     `json:"name,omitempty"`
	Email     string     `json:"email,omitempty"`
	CreatedAt string     `json:"created_at,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Session is a snapshot of the persisted session state.
//
// The zero value is an unauthenticated session.
type Session struct {
	Token string
	User  *User
}

// Authenticated reports whether the session carries a token and a
// well-formed user record.
func (s Session) Authenticated() bool {
	return s.Token != "" && s.User != nil && s.User.Role != ""
}

// Role returns the user's role, or "" for unauthenticated sessions.
func (s Session) Role() route.Role {
	if !s.Authenticated() {
		return ""
	}
	return s.User.Role
}

// FromRaw builds a session from the raw contents of the two persisted slots.
// A record that fails to parse yields a session without a user.
func FromRaw(token, rawUser string) Session {
	s := Session{Token: token}
	if rawUser == "" {
		return s
	}
	if u, err := ParseUser(rawUser); err == nil {
		s.User = u
	}
	return s
}
