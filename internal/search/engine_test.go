package search

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/tracksearch/internal/index"
	"github.com/llehouerou/tracksearch/internal/track"
)

func scenarioTracks() []track.Record {
	return []track.Record{
		{
			ArtistID: "a", ArtistName: "Artist A", AlbumID: "x", AlbumName: "Album X",
			Year: 2001, ID: "t1", Name: "Song 1", Index: 1,
			Location: "file:///a/x/1.flac", IsPreferred: true, Genres: []string{"Rock", "Indie"},
		},
		{
			ArtistID: "a", ArtistName: "Artist A", AlbumID: "x", AlbumName: "Album X",
			Year: 2001, ID: "t2", Name: "Song 2", Index: 2,
			Location: "file:///a/x/2.flac", Genres: []string{"Rock"},
		},
		{
			ArtistID: "b", ArtistName: "Artist B", AlbumID: "y", AlbumName: "Album Y",
			AlbumImage: "file:///b/y/cover.jpg",
			Year:       1999, ID: "t3", Name: "Song 3", Index: 1,
			Location: "file:///b/y/1.mp3", Genres: []string{"Jazz"},
		},
	}
}

func newTestEngine(t *testing.T, tracks []track.Record, opts ...Option) *Engine {
	t.Helper()

	w, err := index.OpenWriter(t.TempDir())
	require.NoError(t, err)
	p := index.NewPool(w)
	require.NoError(t, p.Open())
	t.Cleanup(func() {
		_ = p.Close()
		_ = w.Close()
	})

	w.DeleteAll()
	for _, r := range tracks {
		w.AddTrack(r)
	}
	require.NoError(t, w.Commit())
	_, err = p.MaybeRefresh()
	require.NoError(t, err)

	return NewEngine(p, opts...)
}

func ids(tracks []track.Record) []string {
	out := make([]string, len(tracks))
	for i, r := range tracks {
		out[i] = r.ID
	}
	return out
}

func TestSearchScenario(t *testing.T) {
	e := newTestEngine(t, scenarioTracks())
	ctx := context.Background()

	got, err := e.Search(ctx, &Search{Keywords: "song"})
	require.NoError(t, err)
	assert.Equal(t, []string{"t3", "t1", "t2"}, ids(got))

	got, err = e.Search(ctx, &Search{Keywords: "song", Descending: true})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 2001, got[0].Year)
	assert.Equal(t, 2001, got[1].Year)
	assert.Equal(t, 1999, got[2].Year)
}

func TestSearchKeywords(t *testing.T) {
	e := newTestEngine(t, scenarioTracks())
	ctx := context.Background()

	tests := []struct {
		keywords string
		want     []string
	}{
		{"*", []string{"t3", "t1", "t2"}},
		{"art", []string{"t3", "t1", "t2"}},
		{"artist b", []string{"t3"}},
		{"song 1", []string{"t1"}},
		{"SONG 2", []string{"t2"}},
		{"album x so", []string{"t1", "t2"}},
		{"ong", nil},
		{"artis b", nil},
		{"?!", nil},
	}

	for _, tt := range tests {
		t.Run(tt.keywords, func(t *testing.T) {
			got, err := e.Search(ctx, &Search{Keywords: tt.keywords})
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestSearchFilter(t *testing.T) {
	e := newTestEngine(t, scenarioTracks())
	ctx := context.Background()

	got, err := e.Search(ctx, &Search{Keywords: "*", Filter: &Filter{Field: index.FieldYear, Value: "2001"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2"}, ids(got))

	got, err = e.Search(ctx, &Search{Keywords: "song", Filter: &Filter{Field: index.FieldGenres, Value: "Rock"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2"}, ids(got))

	got, err = e.Search(ctx, &Search{Keywords: "*", Filter: &Filter{Field: index.FieldGenres, Value: "Metal"}})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSearchSortOrders(t *testing.T) {
	tracks := []track.Record{
		{ArtistName: "Beta", AlbumName: "Zed", Name: "Alpha", Year: 2000, ID: "1", Index: 1, Genres: []string{"x"}},
		{ArtistName: "Alpha", AlbumName: "Yon", Name: "Gamma", Year: 2000, ID: "2", Index: 1, Genres: []string{"x"}},
		{ArtistName: "Gamma", AlbumName: "Xi", Name: "Beta", Year: 2000, ID: "3", Index: 1, Genres: []string{"x"}},
	}
	e := newTestEngine(t, tracks)
	ctx := context.Background()

	tests := []struct {
		sort SortOrder
		want []string
	}{
		{SortDefault, []string{"2", "1", "3"}},
		{SortArtist, []string{"2", "1", "3"}},
		{SortAlbum, []string{"3", "2", "1"}},
		{SortTrack, []string{"1", "3", "2"}},
	}
	for _, tt := range tests {
		t.Run(tt.sort.String(), func(t *testing.T) {
			got, err := e.Search(ctx, &Search{Keywords: "*", Sort: tt.sort})
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestSearchMaxHits(t *testing.T) {
	e := newTestEngine(t, scenarioTracks(), WithMaxHits(2))

	got, err := e.Search(context.Background(), &Search{Keywords: "*"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSearchBlankKeywords(t *testing.T) {
	e := newTestEngine(t, scenarioTracks())
	ctx := context.Background()

	year := &Filter{Field: index.FieldYear, Value: "2001"}
	for _, s := range []*Search{
		nil,
		{Keywords: ""},
		{Keywords: " "},
		{Keywords: "!!!"},
		{Keywords: " ", Filter: year},
		{Keywords: "!!!", Filter: year},
	} {
		got, err := e.Search(ctx, s)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	}
}

func TestNotInitialised(t *testing.T) {
	ctx := context.Background()
	e := NewEngine(nil)

	_, err := e.Search(ctx, &Search{Keywords: "song"})
	assert.ErrorIs(t, err, index.ErrNotInitialised)
	_, _, err = e.TrackByID(ctx, "t1")
	assert.ErrorIs(t, err, index.ErrNotInitialised)
	_, err = e.AlbumTracks(ctx, "x")
	assert.ErrorIs(t, err, index.ErrNotInitialised)
	_, err = e.ShuffledPlaylist(ctx, 3, nil)
	assert.ErrorIs(t, err, index.ErrNotInitialised)
	_, err = e.DistinctValues(index.FieldYear)
	assert.ErrorIs(t, err, index.ErrNotInitialised)
	_, err = e.Count(ctx)
	assert.ErrorIs(t, err, index.ErrNotInitialised)
}

func TestUnopenedPool(t *testing.T) {
	w, err := index.OpenWriter(t.TempDir())
	require.NoError(t, err)
	defer w.Close()
	e := NewEngine(index.NewPool(w))
	ctx := context.Background()

	got, err := e.Search(ctx, &Search{Keywords: ""})
	require.NoError(t, err, "blank keywords never touch the pool")
	assert.Empty(t, got)

	_, err = e.Search(ctx, &Search{Keywords: "song"})
	assert.ErrorIs(t, err, index.ErrNotInitialised)
}

func TestTrackByIDRoundTrip(t *testing.T) {
	tracks := scenarioTracks()
	e := newTestEngine(t, tracks)
	ctx := context.Background()

	for _, want := range tracks {
		got, ok, err := e.TrackByID(ctx, want.ID)
		require.NoError(t, err)
		require.True(t, ok)
		assert.True(t, want.Equal(got), "round trip mismatch:\n got %+v\nwant %+v", got, want)
	}

	_, ok, err := e.TrackByID(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAlbumTracks(t *testing.T) {
	e := newTestEngine(t, scenarioTracks())
	ctx := context.Background()

	got, err := e.AlbumTracks(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2"}, ids(got))

	got, err = e.AlbumTracks(ctx, "nope")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCount(t *testing.T) {
	e := newTestEngine(t, scenarioTracks())
	n, err := e.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(3), n)
}

func TestDistinctValues(t *testing.T) {
	e := newTestEngine(t, scenarioTracks())

	years, err := e.DistinctValues(index.FieldYear)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1999", "2001"}, years)

	genres, err := e.DistinctValues(index.FieldGenres)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Indie", "Jazz", "Rock"}, genres)

	none, err := e.DistinctValues("no_such_field")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func manyTracks(n int) []track.Record {
	out := make([]track.Record, n)
	for i := range out {
		genre := "Rock"
		if i%4 == 0 {
			genre = "Jazz"
		}
		out[i] = track.Record{
			ArtistName: fmt.Sprintf("Artist %d", i%5),
			AlbumName:  fmt.Sprintf("Album %d", i%7),
			Name:       fmt.Sprintf("Track %d", i),
			Year:       1990 + i%10,
			ID:         fmt.Sprintf("id-%03d", i),
			Index:      i%12 + 1,
			Genres:     []string{genre},
		}
	}
	return out
}
