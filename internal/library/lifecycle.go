package library

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/dustin/go-humanize"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/llehouerou/tracksearch/internal/index"
	"github.com/llehouerou/tracksearch/internal/search"
	"github.com/llehouerou/tracksearch/internal/track"
)

// warmUpKeywords are searched once before Initialise returns so the first
// real query does not pay for loading the index.
var warmUpKeywords = []string{"t", "th", "the", index.Wildcard}

// Initialise opens the index, rebuilds it if it is stale, outdated, empty
// or unreadable, then publishes facet lists and warms the index up.
//
// A second call, or an index directory locked by another process, is
// passed to the fatal handler. A failed rebuild closes the index again so
// Initialise may be retried.
func (l *Library) Initialise(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.initialised {
		l.log.Error("initialise called twice")
		l.fatal(ErrAlreadyInitialised)
		return ErrAlreadyInitialised
	}

	w, err := index.OpenWriter(l.cfg.IndexDir,
		index.WithLogger(l.log), index.WithBatchSize(l.cfg.BatchSize))
	if err != nil {
		if errors.Is(err, index.ErrLocked) {
			l.log.Error("index directory in use", zap.String("dir", l.cfg.IndexDir), zap.Error(err))
			l.fatal(err)
		}
		return fmt.Errorf("opening index: %w", err)
	}
	pool := index.NewPool(w, index.WithLogger(l.log))
	if err := pool.Open(); err != nil {
		return multierr.Append(fmt.Errorf("opening reader pool: %w", err), w.Close())
	}

	l.writer, l.pool = w, pool
	l.engine = search.NewEngine(pool,
		search.WithMaxHits(l.cfg.MaxHits),
		search.WithShuffleTimeout(l.cfg.ShuffleTimeout),
		search.WithLogger(l.log))
	l.initialised = true

	if l.needsRebuild(ctx) {
		if err := l.rebuildLocked(ctx); err != nil {
			return multierr.Append(err, l.closeLocked())
		}
	}
	return l.publishLocked(ctx)
}

// Rebuild re-indexes the source on an initialised library. On failure the
// previous generation keeps serving reads.
func (l *Library) Rebuild(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.initialised {
		return index.ErrNotInitialised
	}
	if err := l.rebuildLocked(ctx); err != nil {
		return err
	}
	return l.publishLocked(ctx)
}

// Shutdown closes the index. Reads fail with index.ErrNotInitialised
// afterwards.
func (l *Library) Shutdown() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.initialised {
		return nil
	}
	err := l.closeLocked()
	l.log.Info("library shut down")
	return err
}

func (l *Library) closeLocked() error {
	l.ready.Store(nil)
	err := multierr.Combine(l.pool.Close(), l.writer.Close())
	l.writer, l.pool, l.engine = nil, nil, nil
	l.initialised = false
	return err
}

func (l *Library) needsRebuild(ctx context.Context) bool {
	switch {
	case l.cfg.ForceRebuild:
		l.log.Info("rebuild forced")
		return true
	case l.store.Expired():
		l.log.Info("indexed data expired")
		return true
	case l.store.IsNewVersion():
		l.log.Info("index built by another version")
		return true
	}

	n, err := l.engine.Count(ctx)
	if err != nil {
		l.log.Warn("index self-check failed", zap.Error(err))
		return true
	}
	if n == 0 {
		l.log.Info("index is empty")
		return true
	}
	l.log.Debug("index self-check passed", zap.String("tracks", humanize.Comma(int64(n))))
	return false
}

func (l *Library) rebuildLocked(ctx context.Context) error {
	start := l.now()
	l.log.Info("rebuilding index")

	l.writer.DeleteAll()
	var added uint64
	for r, err := range l.src.Records(ctx) {
		if err != nil {
			l.writer.Rollback()
			return fmt.Errorf("%w: reading records: %w", ErrRebuild, err)
		}
		l.writer.AddTrack(r)
		added++
	}

	if err := l.writer.Commit(); err != nil {
		return fmt.Errorf("%w: %w", ErrRebuild, err)
	}
	if _, err := l.pool.MaybeRefresh(); err != nil {
		return fmt.Errorf("%w: refreshing readers: %w", ErrRebuild, err)
	}

	indexed, err := l.engine.Count(ctx)
	if err != nil {
		l.log.Warn("counting rebuilt index", zap.Error(err))
		indexed = added
	}
	if err := l.store.SetLastIndexed(l.now()); err != nil {
		l.log.Error("saving index state", zap.Error(err))
	}

	l.log.Info("index rebuilt",
		zap.String("tracks", humanize.Comma(int64(indexed))),
		zap.Uint64("records", added),
		zap.Duration("elapsed", l.now().Sub(start)))
	if l.notifier != nil {
		l.notifier.DataIndexed(indexed)
	}
	return nil
}

// publishLocked computes the facet lists and warms up the index, then makes
// them visible to readers.
func (l *Library) publishLocked(ctx context.Context) error {
	genres, err := l.genres()
	if err != nil {
		return err
	}
	years, err := l.years()
	if err != nil {
		return err
	}
	if err := l.warmUp(ctx); err != nil {
		return err
	}

	l.ready.Store(&readState{engine: l.engine, genres: genres, years: years})
	l.log.Debug("library ready", zap.Int("genres", len(genres)), zap.Int("years", len(years)))
	return nil
}

func (l *Library) genres() ([]string, error) {
	values, err := l.engine.DistinctValues(index.FieldGenres)
	if err != nil {
		return nil, err
	}
	genres := append(values, track.UnspecifiedGenre)
	slices.Sort(genres)
	return slices.Compact(genres), nil
}

func (l *Library) years() ([]int, error) {
	values, err := l.engine.DistinctValues(index.FieldYear)
	if err != nil {
		return nil, err
	}
	years := make([]int, 0, len(values))
	for _, v := range values {
		y, err := strconv.Atoi(v)
		if err != nil {
			l.log.Warn("ignoring malformed year", zap.String("year", v))
			continue
		}
		years = append(years, y)
	}
	slices.Sort(years)
	return slices.Compact(years), nil
}

func (l *Library) warmUp(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, kw := range warmUpKeywords {
		g.Go(func() error {
			_, err := l.engine.Search(gctx, &search.Search{Keywords: kw})
			return err
		})
	}
	return g.Wait()
}
