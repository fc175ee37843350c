package session

import (
	"context"
	"errors"
	"fmt"
)

const (
	// DefaultTokenKey is the slot holding the raw token.
	DefaultTokenKey = "token"
	// DefaultUserKey is the slot holding the serialized user record.
	DefaultUserKey = "user"
)

// Options configures a [Store].
type Options struct {
	TokenKey string
	UserKey  string
	// KeepCorrupt disables deletion of a user slot that fails to parse.
	KeepCorrupt bool
}

// LoadResult is the detailed outcome of [Store.LoadDetailed].
type LoadResult struct {
	Session Session
	// Corrupt is set when a user record was present but malformed.
	Corrupt bool
	// CorruptErr describes why the record was rejected.
	CorruptErr error
	// ClearErr is set when deleting the corrupt slot failed. The session is
	// still reported as unauthenticated.
	ClearErr error
}

// Store reads and writes the session slots of one [Storage].
//
// Store does not serialize callers; hosts that navigate concurrently must do
// their own ordering.
type Store struct {
	storage  Storage
	tokenKey string
	userKey  string
	clear    bool
}

// NewStore returns a Store over storage.
func NewStore(storage Storage, opts Options) *Store {
	if opts.TokenKey == "" {
		opts.TokenKey = DefaultTokenKey
	}
	if opts.UserKey == "" {
		opts.UserKey = DefaultUserKey
	}
	return &Store{
		storage:  storage,
		tokenKey: opts.TokenKey,
		userKey:  opts.UserKey,
		clear:    !opts.KeepCorrupt,
	}
}

// Load returns the persisted session. A malformed user record yields an
// unauthenticated session and no error; only storage failures are returned.
func (s *Store) Load(ctx context.Context) (Session, error) {
	res, err := s.LoadDetailed(ctx)
	return res.Session, err
}

// LoadDetailed is like Load but also reports whether a corrupt record was
// found and cleared.
func (s *Store) LoadDetailed(ctx context.Context) (LoadResult, error) {
	var res LoadResult
	if s == nil || s.storage == nil {
		return res, fmt.Errorf("%w: no storage configured", ErrStorageUnavailable)
	}

	token, _, err := s.storage.Get(ctx, s.tokenKey)
	if err != nil {
		return res, fmt.Errorf("%w: read %s: %w", ErrStorageUnavailable, s.tokenKey, err)
	}
	rawUser, hasUser, err := s.storage.Get(ctx, s.userKey)
	if err != nil {
		return res, fmt.Errorf("%w: read %s: %w", ErrStorageUnavailable, s.userKey, err)
	}

	res.Session.Token = token
	if !hasUser {
		return res, nil
	}

	user, err := ParseUser(rawUser)
	if err != nil {
		res.Corrupt = true
		res.CorruptErr = err
		if s.clear {
			if delErr := s.storage.Delete(ctx, s.userKey); delErr != nil {
				res.ClearErr = delErr
			}
		}
		return res, nil
	}

	res.Session.User = user
	return res, nil
}

// Save persists token and user together.
//
// With a [BatchStorage] both slots are written atomically. Otherwise any
// previous token is removed, the user slot is written, and the token last, so an interrupted save leaves at
// most a user without a token, which loads as unauthenticated; a failed token
// write removes the user slot again.
func (s *Store) Save(ctx context.Context, token string, user *User) error {
	if s == nil || s.storage == nil {
		return fmt.Errorf("%w: no storage configured", ErrStorageUnavailable)
	}
	if token == "" {
		return fmt.Errorf("%w: token empty", ErrInvalidSession)
	}
	if user == nil {
		return fmt.Errorf("%w: user missing", ErrInvalidSession)
	}
	rawUser, err := EncodeUser(user)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}

	if batch, ok := s.storage.(BatchStorage); ok {
		if err := batch.SetMany(ctx, map[string]string{
			s.tokenKey: token,
			s.userKey:  rawUser,
		}); err != nil {
			return fmt.Errorf("%w: save: %w", ErrStorageUnavailable, err)
		}
		return nil
	}

	if err := s.storage.Delete(ctx, s.tokenKey); err != nil {
		return fmt.Errorf("%w: save: %w", ErrStorageUnavailable, err)
	}
	if err := s.storage.Set(ctx, s.userKey, rawUser); err != nil {
		return fmt.Errorf("%w: save %s: %w", ErrStorageUnavailable, s.userKey, err)
	}
	if err := s.storage.Set(ctx, s.tokenKey, token); err != nil {
		rollbackErr := s.storage.Delete(ctx, s.userKey)
		return fmt.Errorf("%w: save %s: %w", ErrStorageUnavailable, s.tokenKey, errors.Join(err, rollbackErr))
	}
	return nil
}

// Clear removes both slots, token first.
func (s *Store) Clear(ctx context.Context) error {
	if s == nil || s.storage == nil {
		return fmt.Errorf("%w: no storage configured", ErrStorageUnavailable)
	}
	if err := s.storage.Delete(ctx, s.tokenKey, s.userKey); err != nil {
		return fmt.Errorf("%w: clear: %w", ErrStorageUnavailable, err)
	}
	return nil
}
