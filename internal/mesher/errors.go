package mesher

import "errors"

var (
	// ErrResourceExhausted is returned when a chunk needs more vertices than
	// the configured budget. The chunk is skipped; the pass continues.
	ErrResourceExhausted = errors.New("chunk vertex budget exhausted")

	// ErrInvariantViolation reports corrupted tree or scratch state. It aborts the pass.
	ErrInvariantViolation = errors.New("mesher invariant violated")

	// ErrNotInitialized is returned by operations on a Mesher that was never initialized.
	ErrNotInitialized = errors.New("mesher not initialized")

	// ErrShutdown is returned by operations on a Mesher after Shutdown.
	ErrShutdown = errors.New("mesher shut down")
)
