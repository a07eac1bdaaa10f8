// Package search compiles track queries and runs them against snapshots of
// the track index.
package search

import (
	"fmt"
	"strings"

	"github.com/llehouerou/tracksearch/internal/index"
)

// SortOrder selects the precomputed sort key results are ordered by.
type SortOrder int

const (
	SortDefault SortOrder = iota
	SortArtist
	SortAlbum
	SortTrack
)

// SortOrders lists every supported order.
var SortOrders = []SortOrder{SortDefault, SortArtist, SortAlbum, SortTrack}

func (s SortOrder) String() string {
	switch s {
	case SortArtist:
		return "artist"
	case SortAlbum:
		return "album"
	case SortTrack:
		return "track"
	default:
		return "default"
	}
}

// Field returns the index field holding the sort key.
func (s SortOrder) Field() string {
	switch s {
	case SortArtist:
		return index.FieldSortArtist
	case SortAlbum:
		return index.FieldSortAlbum
	case SortTrack:
		return index.FieldSortTrack
	default:
		return index.FieldSortDefault
	}
}

// ParseSortOrder parses the name returned by SortOrder.String.
func ParseSortOrder(name string) (SortOrder, error) {
	for _, s := range SortOrders {
		if strings.EqualFold(name, s.String()) {
			return s, nil
		}
	}
	return SortDefault, fmt.Errorf("unknown sort order %q", name)
}

// Filter is an exact-match predicate on a single field, e.g. year = 2001.
type Filter struct {
	Field string
	Value string
}

// Search is a track query.
type Search struct {
	Keywords   string
	Filter     *Filter
	Sort       SortOrder
	Descending bool
}
