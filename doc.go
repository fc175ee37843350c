// Package goGuard provides the navigation guard for the patient/doctor
// application: a pure decision function evaluated before every route
// transition, and an [Engine] that owns the persisted session and applies
// decisions on behalf of a router.
//
// # Decisions
//
// [Guard.Decide] maps a session snapshot and a target route to exactly one of
// [Proceed], [RedirectLogin], or [RedirectRoleHome]. Rules are evaluated in a
// fixed order: missing authentication on a protected route, an authenticated
// user revisiting login, then role fences. Role mismatches never send a user
// to login; they land on the role's home route.
//
// # Architecture boundaries
//
// goGuard is the public surface. It exposes [Guard], [Engine], [Builder],
// [Config], and value types (Decision, Navigation, MetricsSnapshot). Route
// metadata lives in route/, session persistence in session/, and the HTTP host
// in middleware/.
//
// # What this package must NOT do
//
//   - Mutate session state while deciding.
//   - Perform I/O inside [Guard.Decide]; the Engine loads the session once per navigation.
//   - Treat the client guard as a security boundary; servers enforce access independently.
package goGuard
