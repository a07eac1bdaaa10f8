// Package library owns the track index for the lifetime of the process: it
// opens it, rebuilds it from a record source when needed, and serves reads.
package library

import (
	"context"
	"errors"
	"iter"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/llehouerou/tracksearch/internal/index"
	"github.com/llehouerou/tracksearch/internal/search"
	"github.com/llehouerou/tracksearch/internal/track"
)

var (
	// ErrAlreadyInitialised is reported when Initialise is called twice.
	ErrAlreadyInitialised = errors.New("library already initialised")
	// ErrRebuild wraps every failure that aborts a rebuild.
	ErrRebuild = errors.New("rebuild failed")
)

// Source produces the records of a rebuild.
type Source interface {
	Records(ctx context.Context) iter.Seq2[track.Record, error]
}

// Persistence remembers when the index was last rebuilt.
type Persistence interface {
	// Expired reports whether the indexed data is stale.
	Expired() bool
	// IsNewVersion reports whether the index was built by another version.
	IsNewVersion() bool
	SetLastIndexed(t time.Time) error
}

// Notifier is told when a rebuild completed.
type Notifier interface {
	DataIndexed(tracks uint64)
}

// Options configures the index and its readers.
type Options struct {
	IndexDir       string
	BatchSize      int
	MaxHits        int
	ShuffleTimeout time.Duration
	ForceRebuild   bool
}

// Option configures a Library.
type Option func(*Library)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(l *Library) {
		if log != nil {
			l.log = log
		}
	}
}

// WithFatalHandler sets the hook called on errors the process cannot
// continue from: a second Initialise or an index held by another process.
// The host is expected to shut down in response.
func WithFatalHandler(fn func(error)) Option {
	return func(l *Library) {
		if fn != nil {
			l.fatal = fn
		}
	}
}

// Library serves searches over an index it keeps up to date.
//
// Initialise, Rebuild and Shutdown are serialised. Read methods never wait
// for them: they use the state published by the last completed one.
type Library struct {
	cfg      Options
	src      Source
	store    Persistence
	notifier Notifier
	log      *zap.Logger
	fatal    func(error)
	now      func() time.Time

	mu          sync.Mutex
	initialised bool
	writer      *index.Writer
	pool        *index.Pool
	engine      *search.Engine

	ready atomic.Pointer[readState]
}

// readState is what read methods need, swapped as a whole after each
// rebuild.
type readState struct {
	engine *search.Engine
	genres []string
	years  []int
}

func New(cfg Options, src Source, store Persistence, n Notifier, opts ...Option) *Library {
	l := &Library{
		cfg:      cfg,
		src:      src,
		store:    store,
		notifier: n,
		log:      zap.NewNop(),
		fatal:    func(error) {},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.log = l.log.With(zap.String("component", "library"))
	return l
}

func (l *Library) state() (*readState, error) {
	s := l.ready.Load()
	if s == nil {
		return nil, index.ErrNotInitialised
	}
	return s, nil
}
