package state

import "time"

// Interface defines the state manager contract for dependency injection and testing.
type Interface interface {
	Expired() bool
	IsNewVersion() bool
	LastIndexed() (time.Time, error)
	SetLastIndexed(t time.Time) error
	Close() error
}

// Verify Manager implements Interface at compile time.
var _ Interface = (*Manager)(nil)
