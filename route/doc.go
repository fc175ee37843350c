// Package route defines the static navigation table consumed by the guard:
// strongly typed route descriptors, the closed role enumeration, and the
// role-home mapping.
//
// # Loading
//
// Tables are built once at startup, either from [Default] or from YAML via
// [Load] / [LoadFile]. Every constructor runs [Table.Validate]; a table that
// would produce an infinite redirect (for example a login route that itself
// requires authentication) is rejected here rather than at navigation time.
//
// # Architecture boundaries
//
// This package owns route metadata only. It does NOT read sessions, make
// navigation decisions, or match URL paths against requests.
//
// # What this package must NOT do
//
//   - Import goGuard, session, or middleware (no upward imports).
//   - Mutate a [Table] after construction.
package route
