package index

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Wildcard is the keyword string that matches every track.
const Wildcard = "*"

const (
	yearWidth     = 4
	maxYear       = 9999
	tiebreakWidth = 5
)

// NormalizeKeywords lower-cases text, strips diacritics and keeps only
// letters, digits and single spaces. Wildcard is returned unchanged.
func NormalizeKeywords(text string) string {
	if strings.TrimSpace(text) == Wildcard {
		return Wildcard
	}

	// Transformers are stateful, so build one per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, text)
	if err != nil {
		stripped = text
	}
	stripped = strings.ToLower(stripped)

	var b strings.Builder
	b.Grow(len(stripped))
	pendingSpace := false
	for _, r := range stripped {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		case unicode.IsSpace(r):
			pendingSpace = true
		}
	}
	return b.String()
}

// BuildSortKey encodes year and text so that byte-wise comparison orders by
// year first, then text. The optional tiebreak is appended zero-padded.
func BuildSortKey(year int, text string, tiebreak ...int) string {
	year = max(0, min(year, maxYear))

	var b strings.Builder
	fmt.Fprintf(&b, "%0*d", yearWidth, year)
	for _, r := range text {
		if !unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	for _, t := range tiebreak {
		fmt.Fprintf(&b, "%0*d", tiebreakWidth, max(0, t))
	}
	return b.String()
}
