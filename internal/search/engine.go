package search

import (
	"context"
	"time"

	"github.com/blevesearch/bleve/v2"
	blevesearch "github.com/blevesearch/bleve/v2/search"
	"github.com/blevesearch/bleve/v2/search/query"
	"go.uber.org/zap"

	"github.com/llehouerou/tracksearch/internal/index"
	"github.com/llehouerou/tracksearch/internal/track"
)

const (
	DefaultMaxHits        = 1000
	DefaultShuffleTimeout = time.Second

	idField = "_id"
)

// Option configures an Engine.
type Option func(*Engine)

// WithMaxHits caps the number of results of a keyword search.
func WithMaxHits(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxHits = n
		}
	}
}

// WithShuffleTimeout bounds how long ShuffledPlaylist keeps sampling.
func WithShuffleTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.shuffleTimeout = d
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// Engine answers read queries from snapshots of a reader pool. It is safe
// for concurrent use.
//
// Apart from index.ErrNotInitialised, failures on the read paths are logged
// and reported as empty results.
type Engine struct {
	pool           *index.Pool
	maxHits        int
	shuffleTimeout time.Duration
	log            *zap.Logger
}

// NewEngine returns an engine reading from pool.
func NewEngine(pool *index.Pool, opts ...Option) *Engine {
	e := &Engine{
		pool:           pool,
		maxHits:        DefaultMaxHits,
		shuffleTimeout: DefaultShuffleTimeout,
		log:            zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.With(zap.String("component", "search"))
	return e
}

// acquire returns a snapshot, failing fast when there is no pool.
func (e *Engine) acquire() (*index.Snapshot, error) {
	if e.pool == nil {
		return nil, index.ErrNotInitialised
	}
	return e.pool.Acquire()
}

// Search returns the tracks matching s, ordered by its sort key and capped
// at the engine's max hits. Blank keywords yield no results.
func (e *Engine) Search(ctx context.Context, s *Search) ([]track.Record, error) {
	if e.pool == nil {
		return nil, index.ErrNotInitialised
	}
	// Keywords made only of punctuation are blank too, with or without a
	// filter.
	if s == nil || index.NormalizeKeywords(s.Keywords) == "" {
		return []track.Record{}, nil
	}

	snap, err := e.acquire()
	if err != nil {
		return nil, err
	}
	defer e.pool.Release(snap)

	sortField := s.Sort.Field()
	if s.Descending {
		sortField = "-" + sortField
	}

	req := bleve.NewSearchRequestOptions(Compile(s.Keywords, s.Filter), e.maxHits, 0, false)
	req.Fields = []string{"*"}
	req.SortBy([]string{sortField, idField})

	res, err := snap.Index().SearchInContext(ctx, req)
	if err != nil {
		e.log.Warn("search failed", zap.String("keywords", s.Keywords), zap.Error(err))
		return []track.Record{}, nil
	}
	return e.decodeHits(res.Hits), nil
}

// TrackByID returns the track with the given id.
func (e *Engine) TrackByID(ctx context.Context, id string) (track.Record, bool, error) {
	snap, err := e.acquire()
	if err != nil {
		return track.Record{}, false, err
	}
	defer e.pool.Release(snap)

	r, ok, err := e.lookup(ctx, snap, id)
	if err != nil {
		e.log.Warn("track lookup failed", zap.String("track", id), zap.Error(err))
		return track.Record{}, false, nil
	}
	return r, ok, nil
}

// AlbumTracks returns every track of an album in default order.
func (e *Engine) AlbumTracks(ctx context.Context, albumID string) ([]track.Record, error) {
	snap, err := e.acquire()
	if err != nil {
		return nil, err
	}
	defer e.pool.Release(snap)

	q := filterQuery(&Filter{Field: index.FieldAlbumID, Value: albumID})
	tracks, err := e.all(ctx, snap, q, index.FieldSortDefault)
	if err != nil {
		e.log.Warn("album lookup failed", zap.String("album", albumID), zap.Error(err))
		return []track.Record{}, nil
	}
	return tracks, nil
}

// Count returns the number of indexed tracks. Unlike the other read paths
// it reports query failures, so callers can detect an unusable index.
func (e *Engine) Count(ctx context.Context) (uint64, error) {
	snap, err := e.acquire()
	if err != nil {
		return 0, err
	}
	defer e.pool.Release(snap)

	return e.count(ctx, snap, bleve.NewMatchAllQuery())
}

func (e *Engine) count(ctx context.Context, snap *index.Snapshot, q query.Query) (uint64, error) {
	req := bleve.NewSearchRequestOptions(q, 0, 0, false)
	res, err := snap.Index().SearchInContext(ctx, req)
	if err != nil {
		return 0, err
	}
	return res.Total, nil
}

// all returns every match of q sorted by sortField.
func (e *Engine) all(ctx context.Context, snap *index.Snapshot, q query.Query, sortField string) ([]track.Record, error) {
	total, err := e.count(ctx, snap, q)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return []track.Record{}, nil
	}

	req := bleve.NewSearchRequestOptions(q, int(total), 0, false)
	req.Fields = []string{"*"}
	req.SortBy([]string{sortField, idField})
	res, err := snap.Index().SearchInContext(ctx, req)
	if err != nil {
		return nil, err
	}
	return e.decodeHits(res.Hits), nil
}

func (e *Engine) lookup(ctx context.Context, snap *index.Snapshot, id string) (track.Record, bool, error) {
	req := bleve.NewSearchRequestOptions(bleve.NewDocIDQuery([]string{id}), 1, 0, false)
	req.Fields = []string{"*"}
	res, err := snap.Index().SearchInContext(ctx, req)
	if err != nil {
		return track.Record{}, false, err
	}
	if len(res.Hits) == 0 {
		return track.Record{}, false, nil
	}
	r, err := index.Decode(res.Hits[0].ID, res.Hits[0].Fields)
	if err != nil {
		return track.Record{}, false, err
	}
	return r, true, nil
}

func (e *Engine) decodeHits(hits blevesearch.DocumentMatchCollection) []track.Record {
	out := make([]track.Record, 0, len(hits))
	for _, hit := range hits {
		r, err := index.Decode(hit.ID, hit.Fields)
		if err != nil {
			e.log.Warn("skipping undecodable document", zap.String("id", hit.ID), zap.Error(err))
			continue
		}
		out = append(out, r)
	}
	return out
}
