package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	goGuard "github.com/MrEthical07/goGuard"
	"github.com/MrEthical07/goGuard/route"
	"github.com/MrEthical07/goGuard/session"
	"go.uber.org/zap"
)

// Options configures the HTTP guard.
type Options struct {
	Cookie  CookieOptions
	Session session.Options
	// MaxRedirects bounds guard redirects per request. Zero selects
	// goGuard.DefaultMaxRedirects.
	MaxRedirects int
	Logger       *zap.Logger
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

type sessionContextKey struct{}
type navigationContextKey struct{}

// SessionFromContext returns the session a guarded handler was admitted with.
func SessionFromContext(ctx context.Context) (session.Session, bool) {
	s, ok := ctx.Value(sessionContextKey{}).(session.Session)
	return s, ok
}

// NavigationFromContext returns the resolved navigation of a guarded request.
func NavigationFromContext(ctx context.Context) (goGuard.Navigation, bool) {
	n, ok := ctx.Value(navigationContextKey{}).(goGuard.Navigation)
	return n, ok
}

// Guard returns middleware that admits requests for the route named name
// only when the guard proceeds on it. Redirects are answered with 303 See
// Other to the final route's path; a redirect loop answers 500.
func Guard(g *goGuard.Guard, name string, opts Options) func(http.Handler) http.Handler {
	log := opts.logger()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if g == nil {
				http.Error(w, "guard not configured", http.StatusInternalServerError)
				return
			}

			store := session.NewStore(NewCookieStorage(w, r, opts.Cookie), opts.Session)
			res, err := store.LoadDetailed(r.Context())
			if err != nil {
				log.Error("session load failed", zap.String("route", name), zap.Error(err))
			}
			if res.Corrupt {
				log.Warn("corrupt session cookie cleared",
					zap.String("route", name),
					zap.NamedError("reason", res.CorruptErr),
				)
			}

			nav, err := g.Resolve(res.Session, name, opts.MaxRedirects)
			if err != nil {
				log.Error("navigation failed",
					zap.String("route", name),
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
				if errors.Is(err, goGuard.ErrUnknownRoute) {
					http.NotFound(w, r)
					return
				}
				http.Error(w, "navigation failed", http.StatusInternalServerError)
				return
			}

			if nav.Final == name && next != nil {
				ctx := context.WithValue(r.Context(), sessionContextKey{}, res.Session)
				ctx = context.WithValue(ctx, navigationContextKey{}, nav)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			final, ok := g.Table().Lookup(nav.Final)
			if !ok || final.Path == "" {
				log.Error("redirect target has no path", zap.String("route", nav.Final))
				http.Error(w, "navigation failed", http.StatusInternalServerError)
				return
			}
			if final.Path == r.URL.Path {
				// Final route is this exact path but no handler was mounted.
				http.NotFound(w, r)
				return
			}
			http.Redirect(w, r, final.Path, http.StatusSeeOther)
		})
	}
}

// Mount registers a guarded GET handler for every route of g's table.
// Alias routes only redirect and need no handler. When the table declares a
// catch-all route, every unmatched path is guarded as that route.
//
// Mount returns an error when a routable, non-alias route has no handler.
func Mount(mux *http.ServeMux, g *goGuard.Guard, handlers map[string]http.Handler, opts Options) error {
	if mux == nil || g == nil {
		return errors.New("middleware: mux and guard are required")
	}
	table := g.Table()

	for _, d := range table.Routes() {
		if d.Path == "" {
			continue
		}
		var h http.Handler
		if !d.IsAlias() {
			var ok bool
			h, ok = handlers[d.Name]
			if !ok {
				return fmt.Errorf("middleware: no handler for route %q", d.Name)
			}
		}
		mux.Handle("GET "+pattern(d.Path), Guard(g, d.Name, opts)(h))
	}

	if name := table.CatchAll(); name != "" {
		var h http.Handler
		if d, ok := table.Lookup(name); ok && !d.IsAlias() {
			h = handlers[name]
		}
		mux.Handle("/", Guard(g, name, opts)(h))
	}
	return nil
}

func pattern(path string) string {
	if path == "/" {
		return "/{$}"
	}
	return path
}

// SaveSession writes token and user into the response's session cookies.
func SaveSession(w http.ResponseWriter, r *http.Request, opts Options, token string, user *session.User) error {
	store := session.NewStore(NewCookieStorage(w, r, opts.Cookie), opts.Session)
	return store.Save(r.Context(), token, user)
}

// ClearSession expires the session cookies.
func ClearSession(w http.ResponseWriter, r *http.Request, opts Options) error {
	store := session.NewStore(NewCookieStorage(w, r, opts.Cookie), opts.Session)
	return store.Clear(r.Context())
}

// Home returns the path of the landing route for the authenticated session,
// or the login path when s is not authenticated.
func Home(table *route.Table, s session.Session) string {
	name := table.LoginRoute()
	if s.Authenticated() {
		name = table.Home(s.Role())
	}
	d, _ := table.Lookup(name)
	return d.Path
}
