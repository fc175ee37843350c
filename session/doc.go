// Package session provides the client-side session store: the token and user
// record that represent who the application believes is signed in, persisted
// in two independently addressable string slots.
//
// # Persisted format
//
// One slot holds the raw token string, the other a JSON user record as
// returned by the login endpoint. A user record is well-formed when it is a
// JSON object with a non-empty string "role". Corrupt records never surface as
// errors: [Store.Load] reports the session as unauthenticated and, unless
// configured otherwise, deletes the corrupt slot so the next load does not
// parse it again.
//
// # Storage backends
//
//   - [MemoryStorage]: process-local map, atomic batch writes.
//   - [FileStorage]: one file per slot, written via temp file and rename.
//   - [RedisStorage]: Redis keys, batch writes in a MULTI transaction.
//
// # Architecture boundaries
//
// This package owns persistence and parsing of session state. It does NOT
// interpret route metadata or decide navigation outcomes.
//
// # What this package must NOT do
//
//   - Import goGuard or middleware (no upward imports).
//   - Return an error from [Store.Load] because a persisted record is malformed.
package session
