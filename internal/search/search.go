package search

import (
	"cmp"
	"slices"

	"github.com/nao1215/webscour/internal/index"
	"github.com/nao1215/webscour/internal/model"
	"github.com/nao1215/webscour/internal/token"
)

// Search returns at most topK results for query, best first.
// Query tokens that are not indexed contribute nothing. A query matching
// nothing, or a topK of zero or less, yields an empty, non-nil slice.
func Search(idx *index.Index, query string, topK int) []model.SearchResult {
	results := []model.SearchResult{}
	if idx == nil || topK <= 0 {
		return results
	}

	scores := make(map[string]float64)
	for _, term := range token.Tokenize(query) {
		weight := idx.IDFOf(term)
		for _, p := range idx.PostingsFor(term) {
			scores[p.DocumentID] += float64(p.TF) * weight
		}
	}

	for id, score := range scores {
		results = append(results, model.SearchResult{DocumentID: id, Score: score})
	}

	slices.SortFunc(results, compareResults)

	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

// compareResults orders by score descending, then document id ascending.
func compareResults(a, b model.SearchResult) int {
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	return cmp.Compare(a.DocumentID, b.DocumentID)
}
