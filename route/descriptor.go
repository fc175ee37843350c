package route

// Descriptor is the static access metadata of one navigable destination.
//
// AllowedRoles == nil means any authenticated role is permitted. A non-nil
// empty list is rejected by [Table.Validate]. Redirect, when set, marks the
// descriptor as a router-level alias that hosts resolve before the guard runs.
type Descriptor struct {
	Name         string
	Path         string
	RequiresAuth bool
	AllowedRoles []Role
	Redirect     string
}

// Restricted reports whether the descriptor declares a role fence.
func (d Descriptor) Restricted() bool {
	return d.AllowedRoles != nil
}

// Allows reports whether role passes the descriptor's role fence. Unrestricted
// descriptors allow every role.
func (d Descriptor) Allows(role Role) bool {
	if d.AllowedRoles == nil {
		return true
	}
	for _, r := range d.AllowedRoles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAlias reports whether the descriptor only redirects to another route.
func (d Descriptor) IsAlias() bool {
	return d.Redirect != ""
}

// Public reports whether the descriptor is reachable regardless of session state.
func (d Descriptor) Public() bool {
	return !d.RequiresAuth && d.AllowedRoles == nil
}

func (d Descriptor) clone() Descriptor {
	if d.AllowedRoles != nil {
		roles := make([]Role, len(d.AllowedRoles))
		copy(roles, d.AllowedRoles)
		d.AllowedRoles = roles
	}
	return d
}
