package search

import (
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/llehouerou/tracksearch/internal/index"
)

// Compile turns free-text keywords and an optional filter into a pure
// conjunction. Every keyword but the last must match exactly; the last
// matches as a prefix so results follow the user while typing.
func Compile(keywords string, filter *Filter) query.Query {
	var conjuncts []query.Query

	normalized := index.NormalizeKeywords(keywords)
	if normalized == index.Wildcard {
		conjuncts = append(conjuncts, bleve.NewMatchAllQuery())
	} else {
		tokens := strings.Split(normalized, " ")
		for i, tok := range tokens {
			if tok == "" {
				continue
			}
			if i == len(tokens)-1 {
				q := bleve.NewPrefixQuery(tok)
				q.SetField(index.FieldKeywords)
				conjuncts = append(conjuncts, q)
				continue
			}
			q := bleve.NewTermQuery(tok)
			q.SetField(index.FieldKeywords)
			conjuncts = append(conjuncts, q)
		}
	}

	if filter != nil {
		conjuncts = append(conjuncts, filterQuery(filter))
	}
	return bleve.NewConjunctionQuery(conjuncts...)
}

func filterQuery(f *Filter) query.Query {
	q := bleve.NewTermQuery(f.Value)
	q.SetField(f.Field)
	return q
}
