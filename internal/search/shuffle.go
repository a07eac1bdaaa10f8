package search

import (
	"context"
	"math/rand/v2"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
	"go.uber.org/zap"

	"github.com/llehouerou/tracksearch/internal/index"
	"github.com/llehouerou/tracksearch/internal/track"
)

// ShuffledPlaylist returns up to size distinct random tracks, optionally
// restricted by filter.
//
// When the candidate set is no larger than size, all candidates are
// returned shuffled. Otherwise tracks are drawn at random until size unique
// ones are found or the shuffle timeout expires, in which case the tracks
// found so far are returned.
func (e *Engine) ShuffledPlaylist(ctx context.Context, size int, filter *Filter) ([]track.Record, error) {
	snap, err := e.acquire()
	if err != nil {
		return nil, err
	}
	defer e.pool.Release(snap)

	if size <= 0 {
		return []track.Record{}, nil
	}

	var q query.Query = bleve.NewMatchAllQuery()
	if filter != nil {
		q = filterQuery(filter)
	}

	total, err := e.count(ctx, snap, q)
	if err != nil {
		e.log.Warn("shuffle: counting candidates", zap.Error(err))
		return []track.Record{}, nil
	}
	if total == 0 {
		return []track.Record{}, nil
	}

	if uint64(size) >= total {
		tracks, err := e.all(ctx, snap, q, idField)
		if err != nil {
			e.log.Warn("shuffle: loading candidates", zap.Error(err))
			return []track.Record{}, nil
		}
		rand.Shuffle(len(tracks), func(i, j int) {
			tracks[i], tracks[j] = tracks[j], tracks[i]
		})
		return tracks, nil
	}

	ids, err := e.candidateIDs(ctx, snap, q, total)
	if err != nil {
		e.log.Warn("shuffle: listing candidates", zap.Error(err))
		return []track.Record{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, e.shuffleTimeout)
	defer cancel()

	done := make(chan []track.Record, 1)
	go func() {
		done <- e.sample(ctx, snap, ids, size)
	}()

	select {
	case tracks := <-done:
		return tracks, nil
	case <-ctx.Done():
		// The sampler polls ctx on every draw; wait for it so the snapshot
		// is not released under it.
		tracks := <-done
		e.log.Debug("shuffle deadline reached",
			zap.Int("requested", size), zap.Int("found", len(tracks)))
		return tracks, nil
	}
}

func (e *Engine) candidateIDs(ctx context.Context, snap *index.Snapshot, q query.Query, total uint64) ([]string, error) {
	req := bleve.NewSearchRequestOptions(q, int(total), 0, false)
	req.SortBy([]string{idField})
	res, err := snap.Index().SearchInContext(ctx, req)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(res.Hits))
	for i, hit := range res.Hits {
		ids[i] = hit.ID
	}
	return ids, nil
}

// sample draws random candidates until size distinct tracks are collected
// or ctx is done.
func (e *Engine) sample(ctx context.Context, snap *index.Snapshot, ids []string, size int) []track.Record {
	seen := make(map[string]struct{}, size)
	out := make([]track.Record, 0, size)

	for len(out) < size && len(ids) > 0 {
		if ctx.Err() != nil {
			break
		}

		id := ids[rand.IntN(len(ids))]
		if _, dup := seen[id]; dup {
			continue
		}
		r, ok, err := e.lookup(ctx, snap, id)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			e.log.Debug("shuffle: resolving candidate", zap.String("id", id), zap.Error(err))
			continue
		}
		if !ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, r)
	}
	return out
}
