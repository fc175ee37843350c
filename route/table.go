package route

import (
	"fmt"
)

const (
	// DefaultLogin is the login route name used when a Definition leaves it blank.
	DefaultLogin = "login"
	// DefaultPatientHome is the landing route for patients, and for unrecognized
	// roles when a Definition leaves DefaultHome blank.
	DefaultPatientHome = "patient"
	// DefaultDoctorHome is the landing route for doctors.
	DefaultDoctorHome = "doctor"
)

// Definition is the raw input to [NewTable].
type Definition struct {
	Routes      []Descriptor
	Login       string
	Homes       map[Role]string
	DefaultHome string
	CatchAll    string
}

// Table is an immutable, validated route table.
//
// Table values are safe for concurrent use.
type Table struct {
	routes      []Descriptor
	index       map[string]int
	login       string
	homes       map[Role]string
	defaultHome string
	catchAll    string
}

// NewTable copies def, fills defaults, and validates the result.
func NewTable(def Definition) (*Table, error) {
	t := &Table{
		routes:      make([]Descriptor, 0, len(def.Routes)),
		index:       make(map[string]int, len(def.Routes)),
		login:       def.Login,
		homes:       make(map[Role]string, len(def.Homes)),
		defaultHome: def.DefaultHome,
		catchAll:    def.CatchAll,
	}
	if t.login == "" {
		t.login = DefaultLogin
	}
	if t.defaultHome == "" {
		t.defaultHome = DefaultPatientHome
	}
	if def.Homes == nil {
		t.homes[RoleDoctor] = DefaultDoctorHome
		t.homes[RolePatient] = DefaultPatientHome
	} else {
		for role, name := range def.Homes {
			t.homes[role] = name
		}
	}

	for _, d := range def.Routes {
		if _, dup := t.index[d.Name]; !dup && d.Name != "" {
			t.index[d.Name] = len(t.routes)
		}
		t.routes = append(t.routes, d.clone())
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// MustNewTable is like NewTable but panics on an invalid definition. It is
// intended for package-level tables declared in code.
func MustNewTable(def Definition) *Table {
	t, err := NewTable(def)
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup returns the descriptor registered under name.
func (t *Table) Lookup(name string) (Descriptor, bool) {
	if t == nil {
		return Descriptor{}, false
	}
	i, ok := t.index[name]
	if !ok {
		return Descriptor{}, false
	}
	return t.routes[i].clone(), true
}

// Routes returns the descriptors in declaration order.
func (t *Table) Routes() []Descriptor {
	if t == nil {
		return nil
	}
	out := make([]Descriptor, len(t.routes))
	for i, d := range t.routes {
		out[i] = d.clone()
	}
	return out
}

// LoginRoute returns the name of the login route.
func (t *Table) LoginRoute() string {
	if t == nil {
		return DefaultLogin
	}
	return t.login
}

// CatchAll returns the name of the route unmatched paths resolve to, or "".
func (t *Table) CatchAll() string {
	if t == nil {
		return ""
	}
	return t.catchAll
}

// DefaultHome returns the landing route for roles without an explicit home.
func (t *Table) DefaultHome() string {
	if t == nil {
		return DefaultPatientHome
	}
	return t.defaultHome
}

// Home maps an authenticated role to its landing route. The mapping is total:
// roles without an explicit entry, including unrecognized ones, land on the
// default home.
func (t *Table) Home(role Role) string {
	if t == nil {
		return DefaultPatientHome
	}
	if name, ok := t.homes[role]; ok {
		return name
	}
	return t.defaultHome
}

// ResolveAlias follows redirect aliases starting at name and returns the
// first non-alias descriptor.
func (t *Table) ResolveAlias(name string) (Descriptor, error) {
	seen := make(map[string]struct{}, 2)
	current := name
	for {
		d, ok := t.Lookup(current)
		if !ok {
			return Descriptor{}, fmt.Errorf("%w: %q", ErrUnknownRoute, current)
		}
		if !d.IsAlias() {
			return d, nil
		}
		if _, loop := seen[current]; loop {
			return Descriptor{}, fmt.Errorf("%w: %q", ErrAliasLoop, name)
		}
		seen[current] = struct{}{}
		current = d.Redirect
	}
}
