package ingest

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"

	"github.com/llehouerou/tracksearch/internal/track"
)

// FileURI returns the file:// URI of an absolute path.
func FileURI(path string) string {
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}

// splitGenres splits a multi-valued genre tag on ';' and '/'.
func splitGenres(genre string) []string {
	parts := strings.FieldsFunc(genre, func(r rune) bool {
		return r == ';' || r == '/'
	})
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// fileTags is the subset of a file's tags a record is built from.
type fileTags struct {
	Title       string
	Artist      string
	AlbumArtist string
	Album       string
	Genre       string
	Year        int
	TrackNumber int
}

func fromMetadata(m tag.Metadata) fileTags {
	number, _ := m.Track()
	return fileTags{
		Title:       m.Title(),
		Artist:      m.Artist(),
		AlbumArtist: m.AlbumArtist(),
		Album:       m.Album(),
		Genre:       m.Genre(),
		Year:        m.Year(),
		TrackNumber: number,
	}
}

// newRecord builds the track record of the file at path from its tags.
// Files without an artist or album are rejected.
func newRecord(path string, t fileTags, cover string) (track.Record, bool) {
	artist := strings.TrimSpace(t.AlbumArtist)
	if artist == "" {
		artist = strings.TrimSpace(t.Artist)
	}
	album := strings.TrimSpace(t.Album)
	if artist == "" || album == "" {
		return track.Record{}, false
	}

	title := strings.TrimSpace(t.Title)
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	var image string
	if cover != "" {
		image = FileURI(cover)
	}

	r := track.Record{
		ArtistID:    track.HashID(artist),
		ArtistName:  artist,
		AlbumID:     track.HashID(artist, album),
		AlbumName:   album,
		AlbumImage:  image,
		Year:        t.Year,
		ID:          track.HashID(path),
		Name:        title,
		Index:       t.TrackNumber,
		Location:    FileURI(path),
		IsPreferred: strings.EqualFold(filepath.Ext(path), ExtFLAC),
		Genres:      splitGenres(t.Genre),
	}
	return r.Normalized(), true
}
