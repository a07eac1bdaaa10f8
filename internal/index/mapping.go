package index

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/whitespace"
	"github.com/blevesearch/bleve/v2/mapping"
)

// keywordsAnalyzer splits pre-normalized keyword text on whitespace and
// applies no further filtering.
const keywordsAnalyzer = "track_keywords"

// Mapping returns the bleve mapping for track documents. Only the fields of
// Document are indexed.
func Mapping() (mapping.IndexMapping, error) {
	im := bleve.NewIndexMapping()
	err := im.AddCustomAnalyzer(keywordsAnalyzer, map[string]any{
		"type":      custom.Name,
		"tokenizer": whitespace.Name,
	})
	if err != nil {
		return nil, err
	}
	im.DefaultAnalyzer = keyword.Name
	im.IndexDynamic = false
	im.StoreDynamic = false
	im.DocValuesDynamic = false

	dm := bleve.NewDocumentStaticMapping()
	for _, name := range ExactFields {
		fm := bleve.NewKeywordFieldMapping()
		fm.Store = true
		fm.IncludeInAll = false
		fm.DocValues = false
		dm.AddFieldMappingsAt(name, fm)
	}

	kw := bleve.NewTextFieldMapping()
	kw.Analyzer = keywordsAnalyzer
	kw.Store = false
	kw.IncludeInAll = false
	kw.DocValues = false
	dm.AddFieldMappingsAt(FieldKeywords, kw)

	for _, name := range sortFields {
		fm := bleve.NewKeywordFieldMapping()
		fm.Store = false
		fm.IncludeInAll = false
		fm.DocValues = true
		dm.AddFieldMappingsAt(name, fm)
	}

	im.DefaultMapping = dm
	return im, nil
}
