package goGuard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MrEthical07/goGuard/route"
	"github.com/MrEthical07/goGuard/session"
)

// DefaultMaxRedirects bounds Resolve when no budget is given.
const DefaultMaxRedirects = 4

// Guard decides navigation outcomes against one route table. It holds no
// session state; callers pass a snapshot on every call.
//
// The zero Guard uses [route.Default]. Guard values are safe for concurrent use.
type Guard struct {
	table *route.Table
}

// NewGuard returns a Guard over table, or over [route.Default] when table is nil.
func NewGuard(table *route.Table) *Guard {
	if table == nil {
		table = route.Default()
	}
	return &Guard{table: table}
}

// Table returns the route table the guard decides against.
func (g *Guard) Table() *route.Table {
	if g == nil || g.table == nil {
		return route.Default()
	}
	return g.table
}

// Decide evaluates one navigation attempt. It is total: every session,
// including one without a user or with an unrecognized role, and every
// descriptor yields exactly one decision.
func (g *Guard) Decide(s session.Session, target route.Descriptor) Decision {
	table := g.Table()
	authenticated := s.Authenticated()

	if target.RequiresAuth && !authenticated {
		return Decision{Kind: RedirectLogin, Target: table.LoginRoute()}
	}

	if !authenticated {
		return Decision{Kind: Proceed, Target: target.Name}
	}

	role := s.Role()
	if target.Name == table.LoginRoute() {
		return roleHome(table, role)
	}
	if target.Restricted() && !target.Allows(role) {
		return roleHome(table, role)
	}

	return Decision{Kind: Proceed, Target: target.Name}
}

// roleHome is the single place both authenticated redirects are built.
func roleHome(table *route.Table, role route.Role) Decision {
	return Decision{Kind: RedirectRoleHome, Target: table.Home(role)}
}

// Lookup resolves a navigation target the way the hosting router does before
// the guard runs: aliases are followed and unknown names fall back to the
// table's catch-all route.
func (g *Guard) Lookup(name string) (route.Descriptor, error) {
	table := g.Table()
	d, err := table.ResolveAlias(name)
	if err == nil {
		return d, nil
	}
	if errors.Is(err, route.ErrUnknownRoute) && table.CatchAll() != "" {
		if _, known := table.Lookup(name); !known {
			return table.ResolveAlias(table.CatchAll())
		}
	}
	if errors.Is(err, route.ErrUnknownRoute) {
		return route.Descriptor{}, fmt.Errorf("%w: %q", ErrUnknownRoute, name)
	}
	return route.Descriptor{}, err
}

// DecideName looks up name and decides it.
func (g *Guard) DecideName(s session.Session, name string) (Decision, error) {
	d, err := g.Lookup(name)
	if err != nil {
		return Decision{}, err
	}
	return g.Decide(s, d), nil
}

// Resolve follows decisions from name until one proceeds. Each redirect is
// evaluated as a new, subsequent decision against the same session snapshot.
// Revisiting a route or exceeding maxRedirects returns [ErrRedirectLoop]
// together with the hops evaluated so far.
func (g *Guard) Resolve(s session.Session, name string, maxRedirects int) (Navigation, error) {
	if maxRedirects <= 0 {
		maxRedirects = DefaultMaxRedirects
	}

	nav := Navigation{Requested: name}
	visited := make(map[string]struct{}, maxRedirects+1)
	current := name

	for {
		d, err := g.Lookup(current)
		if err != nil {
			return nav, err
		}
		if _, seen := visited[d.Name]; seen {
			return nav, loopError(nav, d.Name)
		}
		visited[d.Name] = struct{}{}

		decision := g.Decide(s, d)
		nav.Hops = append(nav.Hops, Hop{Route: d.Name, Decision: decision})

		target, redirect := decision.Redirect()
		if !redirect {
			nav.Final = d.Name
			return nav, nil
		}
		if len(nav.Hops) > maxRedirects {
			return nav, loopError(nav, target)
		}
		current = target
	}
}

func loopError(nav Navigation, next string) error {
	chain := make([]string, 0, len(nav.Hops)+1)
	for _, h := range nav.Hops {
		chain = append(chain, h.Route)
	}
	chain = append(chain, next)
	return fmt.Errorf("%w: %s", ErrRedirectLoop, strings.Join(chain, " -> "))
}
