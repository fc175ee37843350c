// Package middleware hosts a [goGuard.Guard] behind net/http.
//
// The browser keeps the session in two cookies, one per session slot. Every
// guarded request reads them through [CookieStorage], resolves the navigation
// with [goGuard.Guard.Resolve], and either serves the route's handler or
// answers 303 See Other to the path of the route the guard settled on.
//
// # Entry points
//
//   - [Mount] registers every route of a table on an http.ServeMux.
//   - [Guard] wraps a single handler for one named route.
//   - [SaveSession] and [ClearSession] write or expire the session cookies.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into guard calls. Every navigation
// decision is delegated to the Guard; redirects become Location headers.
//
// # What this package must NOT do
//
//   - Issue or verify tokens (the token is opaque to goGuard).
//   - Decide access on its own beyond applying the Guard's decision.
//   - Keep session state between requests outside the cookies.
package middleware
