package route

import (
	"fmt"
	"strings"
)

// Role is an application role carried by an authenticated user.
//
// Roles read from persisted user records are kept verbatim so that an
// unrecognized value still identifies an authenticated user. Role values
// declared in route configuration go through [ParseRole] and must be known.
type Role string

const (
	// RolePatient is the role of patient accounts.
	RolePatient Role = "patient"
	// RoleDoctor is the role of doctor accounts.
	RoleDoctor Role = "doctor"
)

var knownRoles = []Role{RolePatient, RoleDoctor}

// KnownRoles returns every role the application declares.
func KnownRoles() []Role {
	out := make([]Role, len(knownRoles))
	copy(out, knownRoles)
	return out
}

// Known reports whether r is one of the declared roles.
func (r Role) Known() bool {
	for _, k := range knownRoles {
		if r == k {
			return true
		}
	}
	return false
}

func (r Role) String() string { return string(r) }

// ParseRole converts configuration text into a known role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Known() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return r, nil
}
