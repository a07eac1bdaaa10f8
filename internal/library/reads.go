package library

import (
	"context"
	"slices"

	"github.com/llehouerou/tracksearch/internal/search"
	"github.com/llehouerou/tracksearch/internal/track"
)

// Album is an album with its tracks in default order.
type Album struct {
	ID         string
	Name       string
	ArtistID   string
	ArtistName string
	Image      string
	Year       int
	Tracks     []track.Record
}

func (l *Library) Search(ctx context.Context, s *search.Search) ([]track.Record, error) {
	st, err := l.state()
	if err != nil {
		return nil, err
	}
	return st.engine.Search(ctx, s)
}

// Count returns the number of indexed tracks.
func (l *Library) Count(ctx context.Context) (uint64, error) {
	st, err := l.state()
	if err != nil {
		return 0, err
	}
	return st.engine.Count(ctx)
}

func (l *Library) TrackByID(ctx context.Context, id string) (track.Record, bool, error) {
	st, err := l.state()
	if err != nil {
		return track.Record{}, false, err
	}
	return st.engine.TrackByID(ctx, id)
}

// AlbumByID returns the album and its tracks. ok is false when no track
// belongs to it.
func (l *Library) AlbumByID(ctx context.Context, id string) (Album, bool, error) {
	st, err := l.state()
	if err != nil {
		return Album{}, false, err
	}
	tracks, err := st.engine.AlbumTracks(ctx, id)
	if err != nil || len(tracks) == 0 {
		return Album{}, false, err
	}
	first := tracks[0]
	return Album{
		ID:         first.AlbumID,
		Name:       first.AlbumName,
		ArtistID:   first.ArtistID,
		ArtistName: first.ArtistName,
		Image:      first.AlbumImage,
		Year:       first.Year,
		Tracks:     tracks,
	}, true, nil
}

func (l *Library) ShuffledPlaylist(ctx context.Context, size int, filter *search.Filter) ([]track.Record, error) {
	st, err := l.state()
	if err != nil {
		return nil, err
	}
	return st.engine.ShuffledPlaylist(ctx, size, filter)
}

// Genres returns every indexed genre plus track.UnspecifiedGenre, sorted.
func (l *Library) Genres() ([]string, error) {
	st, err := l.state()
	if err != nil {
		return nil, err
	}
	return slices.Clone(st.genres), nil
}

// Years returns every indexed year, ascending.
func (l *Library) Years() ([]int, error) {
	st, err := l.state()
	if err != nil {
		return nil, err
	}
	return slices.Clone(st.years), nil
}

// SortOrders returns the supported sort orders.
func (l *Library) SortOrders() []search.SortOrder {
	return slices.Clone(search.SortOrders)
}
