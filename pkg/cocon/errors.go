package cocon

import "errors"

// Client lifecycle errors.
var (
	// ErrAlreadyStarted is returned by Start on a client that is already
	// running or has been stopped. Lifecycle transitions are monotonic; a
	// stopped client cannot be restarted.
	ErrAlreadyStarted = errors.New("client already started")

	// ErrNotStarted is returned by Wait on a client that was never started.
	ErrNotStarted = errors.New("client not started")

	// ErrClosed is returned by Send when the client is shutting down or
	// its supervisor has terminated.
	ErrClosed = errors.New("client closed")
)
