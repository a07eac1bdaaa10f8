package ingest

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/dhowden/tag"
	"go.senan.xyz/taglib"
)

// readTags reads the tags of a music file with dhowden/tag, falling back to
// format-specific readers for files it cannot parse.
func readTags(path string) (fileTags, error) {
	f, err := os.Open(path)
	if err != nil {
		return fileTags{}, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err == nil {
		return fromMetadata(m), nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ExtMP3:
		// dhowden/tag has issues with some UTF-16 encoded ID3 tags
		if t, fbErr := readID3v2(path); fbErr == nil {
			return t, nil
		}
	case ExtFLAC, ExtM4A, ExtMP4, ExtOPUS, ExtOGG:
		if t, fbErr := readTaglib(path); fbErr == nil {
			return t, nil
		}
	}
	return fileTags{}, err
}

func readID3v2(path string) (fileTags, error) {
	id3tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fileTags{}, err
	}
	defer id3tag.Close()

	number, _ := parseNumberPair(id3TextFrame(id3tag, "TRCK"))
	return fileTags{
		Title:       id3tag.Title(),
		Artist:      id3tag.Artist(),
		AlbumArtist: id3TextFrame(id3tag, "TPE2"),
		Album:       id3tag.Album(),
		Genre:       id3tag.Genre(),
		Year:        parseYear(id3tag.Year()),
		TrackNumber: number,
	}, nil
}

// id3TextFrame reads a text frame value from an ID3v2 tag.
func id3TextFrame(id3tag *id3v2.Tag, frameID string) string {
	frames := id3tag.GetFrames(frameID)
	if len(frames) == 0 {
		return ""
	}
	if tf, ok := frames[0].(id3v2.TextFrame); ok {
		return tf.Text
	}
	return ""
}

func readTaglib(path string) (fileTags, error) {
	raw, err := taglib.ReadTags(path)
	if err != nil {
		return fileTags{}, err
	}
	get := func(key string) string {
		if v := raw[key]; len(v) > 0 {
			return v[0]
		}
		return ""
	}

	number, _ := parseNumberPair(get(taglib.TrackNumber))
	return fileTags{
		Title:       get(taglib.Title),
		Artist:      get(taglib.Artist),
		AlbumArtist: get(taglib.AlbumArtist),
		Album:       get(taglib.Album),
		Genre:       strings.Join(raw[taglib.Genre], ";"),
		Year:        parseYear(get(taglib.Date)),
		TrackNumber: number,
	}, nil
}

// parseNumberPair parses a number string like "5" or "5/10".
func parseNumberPair(s string) (num, total int) {
	if s == "" {
		return 0, 0
	}
	first, rest, found := strings.Cut(s, "/")
	num, _ = strconv.Atoi(strings.TrimSpace(first))
	if found {
		total, _ = strconv.Atoi(strings.TrimSpace(rest))
	}
	return num, total
}

// parseYear extracts the year of dates like "2001" or "2001-05-12".
func parseYear(date string) int {
	date = strings.TrimSpace(date)
	if len(date) < 4 {
		return 0
	}
	y, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return y
}
