package route

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Validate checks the invariants the guard relies on. All problems are
// reported together, wrapped in [ErrInvalidTable].
func (t *Table) Validate() error {
	if t == nil {
		return fmt.Errorf("%w: nil table", ErrInvalidTable)
	}

	var problems []error
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Errorf(format, args...))
	}

	names := make(map[string]struct{}, len(t.routes))
	paths := make(map[string]string, len(t.routes))
	for i, d := range t.routes {
		label := d.Name
		if label == "" {
			add("route #%d: name is empty", i)
			label = fmt.Sprintf("#%d", i)
		} else if _, dup := names[d.Name]; dup {
			add("route %q: duplicate name", d.Name)
		}
		names[d.Name] = struct{}{}

		switch {
		case d.Path == "" && d.Name != t.catchAll:
			add("route %q: path is empty", label)
		case d.Path != "" && !strings.HasPrefix(d.Path, "/"):
			add("route %q: path %q must start with /", label, d.Path)
		case d.Path != "":
			if other, dup := paths[d.Path]; dup {
				add("route %q: path %q already used by %q", label, d.Path, other)
			} else {
				paths[d.Path] = label
			}
		}

		if d.AllowedRoles != nil && len(d.AllowedRoles) == 0 {
			add("route %q: allowed roles declared but empty", label)
		}
		for _, r := range d.AllowedRoles {
			if !r.Known() {
				add("route %q: %w %q", label, ErrUnknownRole, r)
			}
		}

		if d.IsAlias() {
			if d.RequiresAuth || d.AllowedRoles != nil {
				add("route %q: alias routes cannot declare access metadata", label)
			}
			if _, ok := t.index[d.Redirect]; !ok {
				add("route %q: redirect target %q does not exist", label, d.Redirect)
			}
		}
	}

	for _, d := range t.routes {
		if !d.IsAlias() || d.Name == "" {
			continue
		}
		if _, err := t.ResolveAlias(d.Name); errors.Is(err, ErrAliasLoop) {
			add("route %q: redirect aliases form a cycle", d.Name)
		}
	}

	if login, ok := t.Lookup(t.login); !ok {
		add("login route %q does not exist", t.login)
	} else {
		if login.IsAlias() {
			add("login route %q cannot be an alias", t.login)
		}
		if login.RequiresAuth {
			add("login route %q requires authentication; unauthenticated users would loop", t.login)
		}
		if login.Restricted() {
			add("login route %q declares allowed roles", t.login)
		}
	}

	roles := make([]Role, 0, len(t.homes))
	for r := range t.homes {
		roles = append(roles, r)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
	for _, r := range roles {
		if !r.Known() {
			add("home for %w %q", ErrUnknownRole, r)
			continue
		}
		t.validateHome(string(r), t.homes[r], r, add)
	}
	t.validateHome("default", t.defaultHome, "", add)

	if t.catchAll != "" {
		if _, ok := t.index[t.catchAll]; !ok {
			add("catch-all route %q does not exist", t.catchAll)
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidTable, errors.Join(problems...))
}

func (t *Table) validateHome(label, name string, role Role, add func(string, ...any)) {
	d, ok := t.Lookup(name)
	if !ok {
		add("%s home %q does not exist", label, name)
		return
	}
	if d.IsAlias() {
		add("%s home %q cannot be an alias", label, name)
	}
	if d.Name == t.login {
		add("%s home %q is the login route; authenticated users would loop", label, name)
	}
	if role != "" && !d.Allows(role) {
		add("%s home %q does not admit role %q", label, name, role)
	}
}

// Lint reports configurations that are valid but likely unintended.
func (t *Table) Lint() []string {
	if t == nil {
		return nil
	}

	var warnings []string
	guarded := false
	for _, d := range t.routes {
		if d.RequiresAuth || d.Restricted() {
			guarded = true
		}
		if d.Restricted() && !d.RequiresAuth {
			warnings = append(warnings, fmt.Sprintf(
				"route %q restricts roles but does not require authentication; anonymous visitors proceed", d.Name))
		}
		if d.Restricted() {
			reachable := false
			for _, r := range knownRoles {
				if d.Allows(r) {
					reachable = true
					break
				}
			}
			if !reachable {
				warnings = append(warnings, fmt.Sprintf("route %q admits no known role", d.Name))
			}
		}
	}
	if !guarded {
		warnings = append(warnings, "table declares no access metadata; every route is public")
	}
	if d, ok := t.Lookup(t.defaultHome); ok && d.Restricted() {
		warnings = append(warnings, fmt.Sprintf(
			"default home %q restricts roles; users with unrecognized roles cannot land anywhere", d.Name))
	}
	return warnings
}
