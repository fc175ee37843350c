package session

import "errors"

var (
	// ErrMalformedUser is returned by [ParseUser] for records that are not a
	// JSON object with a non-empty string role.
	ErrMalformedUser = errors.New("malformed user record")
	// ErrInvalidSession is returned by [Store.Save] when token or user is missing.
	ErrInvalidSession = errors.New("invalid session")
	// ErrStorageUnavailable wraps backend failures reported by a [Storage].
	ErrStorageUnavailable = errors.New("session storage unavailable")
)
