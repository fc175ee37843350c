package goGuard

// DecisionKind enumerates the three navigation outcomes.
type DecisionKind uint8

const (
	// Proceed lets the navigation continue to the requested route.
	Proceed DecisionKind = iota
	// RedirectLogin substitutes the login route.
	RedirectLogin
	// RedirectRoleHome substitutes the landing route of the user's role.
	RedirectRoleHome
)

func (k DecisionKind) String() string {
	switch k {
	case Proceed:
		return "proceed"
	case RedirectLogin:
		return "redirect_login"
	case RedirectRoleHome:
		return "redirect_role_home"
	default:
		return "unknown"
	}
}

// Decision is the guard's verdict for one navigation attempt. Target names
// the route the router should show: the requested route for Proceed, the
// substitute otherwise.
type Decision struct {
	Kind   DecisionKind
	Target string
}

// Redirect returns the substitute route name when the decision redirects.
func (d Decision) Redirect() (string, bool) {
	if d.Kind == Proceed {
		return "", false
	}
	return d.Target, true
}

func (d Decision) String() string {
	return d.Kind.String() + "(" + d.Target + ")"
}

// Hop is one evaluated step of a navigation.
type Hop struct {
	Route    string
	Decision Decision
}

// Navigation is the resolved outcome of a navigation request, following
// every redirect to the route that finally proceeds.
type Navigation struct {
	Requested string
	Final     string
	Hops      []Hop
}

// Redirected reports whether the navigation lands somewhere other than the
// requested route, through an alias or a guard redirect.
func (n Navigation) Redirected() bool {
	return n.Final != n.Requested
}

// First returns the decision made for the requested route.
func (n Navigation) First() Decision {
	if len(n.Hops) == 0 {
		return Decision{}
	}
	return n.Hops[0].Decision
}
