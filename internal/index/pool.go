package index

import (
	"sync"
	"sync/atomic"

	"github.com/blevesearch/bleve/v2"
	"go.uber.org/zap"
)

// Snapshot is a read-only view of one committed generation. Its documents
// never change, and it stays valid until released even if newer generations
// are published meanwhile.
type Snapshot struct {
	gen      *generation
	released atomic.Bool
}

// Index returns the bleve index of the snapshot. It must not be used after
// the snapshot is released.
func (s *Snapshot) Index() bleve.Index {
	return s.gen.idx
}

// Generation returns the generation number the snapshot reads from.
func (s *Snapshot) Generation() uint64 {
	return s.gen.id
}

// DocCount returns the number of documents in the snapshot.
func (s *Snapshot) DocCount() (uint64, error) {
	return s.gen.idx.DocCount()
}

// Pool hands out snapshots of the writer's committed generation.
// Acquire never blocks on the writer: the current generation is published
// through an atomic pointer and swapped by MaybeRefresh.
type Pool struct {
	w   *Writer
	log *zap.Logger

	current atomic.Pointer[generation]
	mu      sync.Mutex // serialises MaybeRefresh and Close
}

// NewPool returns a pool reading from w. It serves nothing until Open.
func NewPool(w *Writer, opts ...Option) *Pool {
	o := newOptions(opts)
	return &Pool{
		w:   w,
		log: o.log.With(zap.String("component", "reader-pool")),
	}
}

// Open publishes the writer's committed generation.
func (p *Pool) Open() error {
	_, err := p.MaybeRefresh()
	return err
}

// Acquire returns a snapshot of the current generation. It fails with
// ErrNotInitialised before Open and after Close.
func (p *Pool) Acquire() (*Snapshot, error) {
	for {
		g := p.current.Load()
		if g == nil {
			return nil, ErrNotInitialised
		}
		// The pool keeps its own reference on the current generation, so
		// this only fails if a refresh swapped it out in between.
		if g.tryRetain() {
			return &Snapshot{gen: g}, nil
		}
	}
}

// Release returns a snapshot to the pool. Releasing twice is logged and
// ignored.
func (p *Pool) Release(s *Snapshot) {
	if s == nil {
		return
	}
	if !s.released.CompareAndSwap(false, true) {
		p.log.Warn("snapshot released twice", zap.Uint64("generation", s.gen.id))
		return
	}
	s.gen.release()
}

// MaybeRefresh publishes the writer's committed generation if it differs
// from the current one. It reports whether a swap happened.
func (p *Pool) MaybeRefresh() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	g, err := p.w.acquireCommitted()
	if err != nil {
		return false, err
	}
	old := p.current.Load()
	if old == g {
		g.release()
		return false, nil
	}

	p.current.Store(g)
	if old != nil {
		old.release()
	}
	p.log.Debug("reader pool refreshed", zap.Uint64("generation", g.id))
	return true, nil
}

// Close stops serving snapshots. Outstanding snapshots remain valid until
// released.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if old := p.current.Swap(nil); old != nil {
		old.release()
	}
	return nil
}
