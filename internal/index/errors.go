package index

import "errors"

var (
	// ErrNotInitialised is returned when the index is used before it has
	// been opened, or after it has been closed.
	ErrNotInitialised = errors.New("engine not initialised")

	// ErrLocked is returned when another process owns the index directory.
	ErrLocked = errors.New("index directory is locked by another process")

	// ErrClosed is returned by writer operations after Close.
	ErrClosed = errors.New("index writer is closed")
)
