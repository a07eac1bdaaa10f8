// Package ingest produces track records by scanning music directories and
// reading their tags.
package ingest

import (
	"context"
	"iter"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/llehouerou/tracksearch/internal/track"
)

const numWorkers = 8

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(s *Scanner) {
		if log != nil {
			s.log = log
		}
	}
}

// WithWorkers sets how many files are read concurrently.
func WithWorkers(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

// Scanner walks library source directories and yields one record per
// readable music file.
type Scanner struct {
	sources []string
	workers int
	log     *zap.Logger
}

func NewScanner(sources []string, opts ...Option) *Scanner {
	s := &Scanner{
		sources: sources,
		workers: numWorkers,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(zap.String("component", "scanner"))
	return s
}

// Records yields the records of every music file under the sources, in no
// particular order. Unreadable or untagged files are logged and skipped.
// The only error yielded is a canceled context.
func (s *Scanner) Records(ctx context.Context) iter.Seq2[track.Record, error] {
	return func(yield func(track.Record, error) bool) {
		files, err := discoverFiles(ctx, s.sources, s.log)
		if err != nil {
			yield(track.Record{}, err)
			return
		}
		s.log.Debug("discovered music files", zap.Int("files", len(files)))

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.workers)
		covers := newCoverCache()
		results := make(chan track.Record, s.workers)

		var waitErr error
		var done sync.WaitGroup
		done.Go(func() {
			defer close(results)
			for _, f := range files {
				if gctx.Err() != nil {
					break
				}
				g.Go(func() error {
					r, ok := s.read(f, covers)
					if !ok {
						return nil
					}
					select {
					case results <- r:
						return nil
					case <-gctx.Done():
						return gctx.Err()
					}
				})
			}
			waitErr = g.Wait()
		})

		for r := range results {
			if !yield(r, nil) {
				cancel()
				for range results {
				}
				done.Wait()
				return
			}
		}
		done.Wait()

		if err := ctx.Err(); err != nil {
			yield(track.Record{}, err)
			return
		}
		if waitErr != nil {
			yield(track.Record{}, waitErr)
		}
	}
}

func (s *Scanner) read(f fileInfo, covers *coverCache) (track.Record, bool) {
	t, err := readTags(f.path)
	if err != nil {
		s.log.Warn("skipping file without readable tags", zap.String("path", f.path), zap.Error(err))
		return track.Record{}, false
	}

	r, ok := newRecord(f.path, t, covers.find(f.path))
	if !ok {
		s.log.Debug("skipping file without artist or album", zap.String("path", f.path))
	}
	return r, ok
}
