// Package index stores track documents in generations of on-disk bleve
// indexes. A Writer builds generations; a Pool hands out read snapshots.
package index

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/index/scorch"
	"github.com/blevesearch/bleve/v2/mapping"
	"go.uber.org/zap"

	"github.com/llehouerou/tracksearch/internal/track"
)

const (
	currentFileName = "CURRENT"
	lockFileName    = "LOCK"
)

// Writer is the single writer of an index directory.
//
// A rebuild writes into a fresh staging generation which only becomes
// visible to readers when Commit publishes it. Tracks added outside a
// rebuild go to a staging generation seeded with a copy of the committed
// documents, so a generation is never written once readers can see it.
type Writer struct {
	dir       string
	log       *zap.Logger
	batchSize int
	mapping   mapping.IndexMapping

	mu         sync.Mutex
	lock       *dirLock
	committed  *generation
	staging    *generation
	batch      *bleve.Batch
	lastID     uint64
	rebuildErr error
	closed     bool
}

// OpenWriter opens the index in dir, creating it if needed. It fails with
// ErrLocked when another process holds the directory.
func OpenWriter(dir string, opts ...Option) (*Writer, error) {
	o := newOptions(opts)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	lock, err := lockDir(dir)
	if err != nil {
		return nil, err
	}

	m, err := Mapping()
	if err != nil {
		_ = lock.release()
		return nil, err
	}

	w := &Writer{
		dir:       dir,
		log:       o.log.With(zap.String("component", "index-writer")),
		batchSize: o.batchSize,
		mapping:   m,
		lock:      lock,
	}
	if err := w.openCommitted(); err != nil {
		_ = lock.release()
		return nil, err
	}
	return w, nil
}

// openCommitted loads the generation named by CURRENT, removes leftovers
// from interrupted rebuilds, and falls back to a new empty generation when
// the current one is missing or unreadable.
func (w *Writer) openCommitted() error {
	current, err := w.readCurrent()
	if err != nil {
		return err
	}

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		id, ok := parseGenerationName(e.Name())
		if !ok || !e.IsDir() {
			continue
		}
		w.lastID = max(w.lastID, id)
		if e.Name() == current {
			continue
		}
		w.log.Info("removing stale index generation", zap.String("name", e.Name()))
		if err := os.RemoveAll(filepath.Join(w.dir, e.Name())); err != nil {
			w.log.Warn("removing stale index generation", zap.String("name", e.Name()), zap.Error(err))
		}
	}

	if id, ok := parseGenerationName(current); ok {
		path := filepath.Join(w.dir, current)
		idx, err := bleve.Open(path)
		if err == nil {
			w.committed = newGeneration(id, path, idx, w.log)
			w.log.Debug("opened index generation", zap.Uint64("generation", id))
			return nil
		}
		w.log.Warn("index generation unreadable, starting empty",
			zap.Uint64("generation", id), zap.Error(err))
		if err := os.RemoveAll(path); err != nil {
			w.log.Warn("removing unreadable index generation", zap.Error(err))
		}
	}

	g, err := w.createGeneration()
	if err != nil {
		return err
	}
	if err := w.writeCurrent(g.id); err != nil {
		g.retire()
		return err
	}
	w.committed = g
	return nil
}

func (w *Writer) createGeneration() (*generation, error) {
	id := w.lastID + 1
	path := filepath.Join(w.dir, generationName(id))
	if err := os.RemoveAll(path); err != nil {
		return nil, err
	}
	idx, err := bleve.NewUsing(path, w.mapping, scorch.Name, scorch.Name, nil)
	if err != nil {
		return nil, fmt.Errorf("creating index generation %d: %w", id, err)
	}
	w.lastID = id
	return newGeneration(id, path, idx, w.log), nil
}

func (w *Writer) readCurrent() (string, error) {
	data, err := os.ReadFile(filepath.Join(w.dir, currentFileName))
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// writeCurrent atomically points CURRENT at generation id.
func (w *Writer) writeCurrent(id uint64) error {
	tmp := filepath.Join(w.dir, currentFileName+".tmp")
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(generationName(id) + "\n"); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, filepath.Join(w.dir, currentFileName))
}

// DeleteAll starts a rebuild: subsequent tracks go to a new, empty
// generation. A failure is logged here and reported by the next Commit.
func (w *Writer) DeleteAll() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		w.log.Error("delete all on closed writer")
		return
	}

	w.discardStagingLocked()
	w.rebuildErr = nil

	g, err := w.createGeneration()
	if err != nil {
		w.log.Error("starting rebuild", zap.Error(err))
		w.rebuildErr = err
		return
	}
	w.staging = g
	w.batch = g.idx.NewBatch()
	w.log.Debug("rebuild started", zap.Uint64("generation", g.id))
}

// AddTrack encodes r and appends it. A record that cannot be indexed is
// logged and skipped. A batch that cannot be written fails the next Commit.
func (w *Writer) AddTrack(r track.Record) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		w.log.Error("add track on closed writer", zap.String("track", r.ID))
		return
	}
	if w.rebuildErr != nil {
		return
	}
	if r.ID == "" {
		w.log.Warn("skipping track without id", zap.String("location", r.Location))
		return
	}

	if w.staging == nil {
		if err := w.startAppendLocked(); err != nil {
			w.log.Error("starting append", zap.Error(err))
			w.rebuildErr = err
			return
		}
	}
	if err := w.batch.Index(r.ID, Encode(r)); err != nil {
		w.log.Warn("skipping track", zap.String("track", r.ID), zap.Error(err))
		return
	}
	if w.batch.Size() >= w.batchSize {
		w.flushLocked()
	}
}

// startAppendLocked opens a staging generation holding the committed
// documents.
func (w *Writer) startAppendLocked() error {
	g, err := w.createGeneration()
	if err != nil {
		return err
	}
	n, err := copyDocuments(g.idx, w.committed.idx, w.batchSize)
	if err != nil {
		g.retire()
		return fmt.Errorf("copying generation %d: %w", w.committed.id, err)
	}
	w.staging = g
	w.batch = g.idx.NewBatch()
	w.log.Debug("append started",
		zap.Uint64("generation", g.id), zap.Uint64("copied", n))
	return nil
}

// flushLocked writes the pending batch to the staging generation, which
// readers cannot see yet.
func (w *Writer) flushLocked() {
	if err := w.staging.idx.Batch(w.batch); err != nil {
		w.log.Error("flushing batch", zap.Int("tracks", w.batch.Size()), zap.Error(err))
		w.rebuildErr = fmt.Errorf("flushing %d tracks: %w", w.batch.Size(), err)
	}
	w.batch.Reset()
}

// copyDocuments re-indexes every document of src into dst, in pages of
// pageSize ordered by id.
func copyDocuments(dst, src bleve.Index, pageSize int) (uint64, error) {
	var (
		copied uint64
		after  []string
	)
	for {
		req := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), pageSize, 0, false)
		req.Fields = []string{"*"}
		req.SortBy([]string{"_id"})
		req.SearchAfter = after
		res, err := src.Search(req)
		if err != nil {
			return copied, err
		}
		if len(res.Hits) == 0 {
			return copied, nil
		}

		b := dst.NewBatch()
		for _, hit := range res.Hits {
			r, err := Decode(hit.ID, hit.Fields)
			if err != nil {
				return copied, fmt.Errorf("document %s: %w", hit.ID, err)
			}
			if err := b.Index(r.ID, Encode(r)); err != nil {
				return copied, fmt.Errorf("document %s: %w", hit.ID, err)
			}
		}
		if err := dst.Batch(b); err != nil {
			return copied, err
		}
		copied += uint64(len(res.Hits))
		after = []string{res.Hits[len(res.Hits)-1].ID}
	}
}

// Commit durably persists everything added since the last commit and
// atomically publishes the new generation. Readers pick it up on the pool's
// next MaybeRefresh.
func (w *Writer) Commit() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	if err := w.rebuildErr; err != nil {
		w.rebuildErr = nil
		w.discardStagingLocked()
		return fmt.Errorf("commit: %w", err)
	}

	if w.staging == nil {
		return nil
	}
	if w.batch != nil && w.batch.Size() > 0 {
		if err := w.staging.idx.Batch(w.batch); err != nil {
			w.discardStagingLocked()
			return fmt.Errorf("commit: %w", err)
		}
	}
	w.batch = nil

	if err := w.writeCurrent(w.staging.id); err != nil {
		w.discardStagingLocked()
		return fmt.Errorf("commit: publishing generation: %w", err)
	}

	old := w.committed
	w.committed = w.staging
	w.staging = nil
	old.retire()

	w.log.Debug("generation committed", zap.Uint64("generation", w.committed.id))
	return nil
}

// Rollback drops everything added since the last commit, abandoning an
// in-progress rebuild. The committed generation is left untouched.
func (w *Writer) Rollback() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.rebuildErr = nil
	w.discardStagingLocked()
	w.batch = nil
}

// Close discards uncommitted rebuild data and releases the directory.
// Generations still referenced by snapshots stay open until released.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	w.discardStagingLocked()
	w.batch = nil
	if w.committed != nil {
		w.committed.release()
		w.committed = nil
	}
	return w.lock.release()
}

// Dir returns the index root directory.
func (w *Writer) Dir() string {
	return w.dir
}

// acquireCommitted returns the committed generation with a reference taken
// for the caller.
func (w *Writer) acquireCommitted() (*generation, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || w.committed == nil || !w.committed.tryRetain() {
		return nil, ErrNotInitialised
	}
	return w.committed, nil
}

func (w *Writer) discardStagingLocked() {
	if w.staging == nil {
		return
	}
	w.log.Debug("discarding uncommitted generation", zap.Uint64("generation", w.staging.id))
	w.staging.retire()
	w.staging = nil
	w.batch = nil
}
