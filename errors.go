package goGuard

import "errors"

var (
	// ErrUnknownRoute is returned when a navigation target is not declared and
	// the table has no catch-all route.
	ErrUnknownRoute = errors.New("unknown route")
	// ErrRedirectLoop is returned when resolving a navigation revisits a route
	// or exceeds the configured redirect budget.
	ErrRedirectLoop = errors.New("redirect loop")
	// ErrEngineClosed is returned by Engine methods after Close.
	ErrEngineClosed = errors.New("engine closed")
	// ErrEngineConfigInvalid wraps Config.Validate failures reported by Build.
	ErrEngineConfigInvalid = errors.New("invalid engine configuration")
	// ErrStorageMissing is returned by Build when no session storage was configured.
	ErrStorageMissing = errors.New("session storage not configured")
	// ErrBuilderReused is returned when Build is called twice on one Builder.
	ErrBuilderReused = errors.New("builder already used")
	// ErrNilContinuation is returned by BeforeEach when next is nil.
	ErrNilContinuation = errors.New("nil navigation continuation")
)
