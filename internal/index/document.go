package index

import (
	"fmt"
	"strconv"

	"github.com/llehouerou/tracksearch/internal/track"
)

// Field names of an indexed track document.
const (
	FieldArtistID    = "artist_id"
	FieldArtistName  = "artist_name"
	FieldAlbumID     = "album_id"
	FieldAlbumName   = "album_name"
	FieldAlbumImage  = "album_image"
	FieldYear        = "year"
	FieldTrackID     = "track_id"
	FieldTrackName   = "track_name"
	FieldIndex       = "index"
	FieldLocation    = "location"
	FieldIsPreferred = "is_preferred"
	FieldGenres      = "genres"
	FieldKeywords    = "keywords"

	FieldSortDefault = "sort_default"
	FieldSortArtist  = "sort_artist"
	FieldSortAlbum   = "sort_album"
	FieldSortTrack   = "sort_track"
)

// ExactFields lists the stored fields that accept exact-match filters.
var ExactFields = []string{
	FieldArtistID, FieldArtistName, FieldAlbumID, FieldAlbumName, FieldAlbumImage,
	FieldYear, FieldTrackID, FieldTrackName, FieldIndex, FieldLocation,
	FieldIsPreferred, FieldGenres,
}

var sortFields = []string{FieldSortDefault, FieldSortArtist, FieldSortAlbum, FieldSortTrack}

// Document is the indexed form of a track.Record.
type Document struct {
	ArtistID    string   `json:"artist_id"`
	ArtistName  string   `json:"artist_name"`
	AlbumID     string   `json:"album_id"`
	AlbumName   string   `json:"album_name"`
	AlbumImage  string   `json:"album_image"`
	Year        string   `json:"year"`
	TrackID     string   `json:"track_id"`
	TrackName   string   `json:"track_name"`
	Index       string   `json:"index"`
	Location    string   `json:"location"`
	IsPreferred string   `json:"is_preferred"`
	Genres      []string `json:"genres"`
	Keywords    string   `json:"keywords"`

	SortDefault string `json:"sort_default"`
	SortArtist  string `json:"sort_artist"`
	SortAlbum   string `json:"sort_album"`
	SortTrack   string `json:"sort_track"`
}

// Encode maps a record to its document. It is deterministic.
func Encode(r track.Record) Document {
	r = r.Normalized()
	return Document{
		ArtistID:    r.ArtistID,
		ArtistName:  r.ArtistName,
		AlbumID:     r.AlbumID,
		AlbumName:   r.AlbumName,
		AlbumImage:  r.AlbumImage,
		Year:        strconv.Itoa(r.Year),
		TrackID:     r.ID,
		TrackName:   r.Name,
		Index:       strconv.Itoa(r.Index),
		Location:    r.Location,
		IsPreferred: strconv.FormatBool(r.IsPreferred),
		Genres:      r.Genres,
		Keywords:    NormalizeKeywords(r.ArtistName + " " + r.AlbumName + " " + r.Name),

		SortDefault: BuildSortKey(r.Year, r.ArtistName+r.AlbumName, r.Index),
		SortArtist:  BuildSortKey(r.Year, r.ArtistName+r.Name),
		SortAlbum:   BuildSortKey(r.Year, r.AlbumName+r.Name),
		SortTrack:   BuildSortKey(r.Year, r.Name+r.ArtistName),
	}
}

// Decode rebuilds a record from the stored fields of a search hit.
func Decode(id string, fields map[string]any) (track.Record, error) {
	year, err := strconv.Atoi(stringField(fields, FieldYear))
	if err != nil {
		return track.Record{}, fmt.Errorf("document %s: year: %w", id, err)
	}
	idx, err := strconv.Atoi(stringField(fields, FieldIndex))
	if err != nil {
		return track.Record{}, fmt.Errorf("document %s: index: %w", id, err)
	}
	preferred, err := strconv.ParseBool(stringField(fields, FieldIsPreferred))
	if err != nil {
		return track.Record{}, fmt.Errorf("document %s: is_preferred: %w", id, err)
	}

	trackID := stringField(fields, FieldTrackID)
	if trackID == "" {
		trackID = id
	}

	return track.Record{
		ArtistID:    stringField(fields, FieldArtistID),
		ArtistName:  stringField(fields, FieldArtistName),
		AlbumID:     stringField(fields, FieldAlbumID),
		AlbumName:   stringField(fields, FieldAlbumName),
		AlbumImage:  stringField(fields, FieldAlbumImage),
		Year:        year,
		ID:          trackID,
		Name:        stringField(fields, FieldTrackName),
		Index:       idx,
		Location:    stringField(fields, FieldLocation),
		IsPreferred: preferred,
		Genres:      stringsField(fields, FieldGenres),
	}, nil
}

func stringField(fields map[string]any, name string) string {
	switch v := fields[name].(type) {
	case string:
		return v
	case []any:
		// Repeated values of a scalar field; the first one wins.
		if len(v) > 0 {
			if s, ok := v[0].(string); ok {
				return s
			}
		}
	}
	return ""
}

// stringsField reads a repeated field. Bleve returns a single value as a
// plain string and several values as a slice.
func stringsField(fields map[string]any, name string) []string {
	switch v := fields[name].(type) {
	case string:
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return append([]string(nil), v...)
	}
	return nil
}
