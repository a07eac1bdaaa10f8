// Package track defines the track metadata record shared by the ingestion,
// indexing and query layers.
package track

import (
	"slices"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// UnspecifiedGenre is the genre assigned to tracks whose source has none.
const UnspecifiedGenre = "Unspecified"

// Record is the immutable metadata of one track.
type Record struct {
	ArtistID    string
	ArtistName  string
	AlbumID     string
	AlbumName   string
	AlbumImage  string // URI
	Year        int
	ID          string // content hash, stable across re-ingestion
	Name        string
	Index       int    // position within the album, 1-based
	Location    string // URI
	IsPreferred bool
	Genres      []string
}

// Normalized returns a copy of r with the genre list cloned and the
// UnspecifiedGenre sentinel applied when the record has no genres.
func (r Record) Normalized() Record {
	genres := make([]string, 0, len(r.Genres))
	for _, g := range r.Genres {
		if g = strings.TrimSpace(g); g != "" {
			genres = append(genres, g)
		}
	}
	if len(genres) == 0 {
		genres = append(genres, UnspecifiedGenre)
	}
	r.Genres = genres
	return r
}

// Equal reports whether two records are identical in every field.
func (r Record) Equal(o Record) bool {
	return r.ArtistID == o.ArtistID &&
		r.ArtistName == o.ArtistName &&
		r.AlbumID == o.AlbumID &&
		r.AlbumName == o.AlbumName &&
		r.AlbumImage == o.AlbumImage &&
		r.Year == o.Year &&
		r.ID == o.ID &&
		r.Name == o.Name &&
		r.Index == o.Index &&
		r.Location == o.Location &&
		r.IsPreferred == o.IsPreferred &&
		slices.Equal(r.Genres, o.Genres)
}

// HashID returns a stable content hash of the given parts.
// Parts are length-prefixed so ("ab", "c") and ("a", "bc") differ.
func HashID(parts ...string) string {
	d := xxhash.New()
	for _, p := range parts {
		_, _ = d.WriteString(strconv.Itoa(len(p)))
		_, _ = d.WriteString(":")
		_, _ = d.WriteString(p)
	}
	return strconv.FormatUint(d.Sum64(), 16)
}
