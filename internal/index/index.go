package index

import (
	"math"
	"slices"

	"github.com/google/uuid"

	"github.com/nao1215/webscour/internal/model"
	"github.com/nao1215/webscour/internal/token"
)

// Posting records that a document contains a term TF times.
type Posting struct {
	DocumentID string
	TF         int
}

// Index is an inverted index together with its IDF table.
// It is built once and never mutated afterwards.
type Index struct {
	// BuildID identifies the build that produced the pair.
	BuildID string

	// DocumentCount is N, the number of documents indexed.
	DocumentCount int

	// Postings maps a term to one posting per document containing it.
	Postings map[string][]Posting

	// IDF maps a term to log10(N / (1 + df)). Same keys as Postings.
	IDF map[string]float64
}

// Build indexes docs. A document's TF map is used when present; otherwise
// it is computed from its Text with the shared tokenizer.
func Build(docs []model.Document) *Index {
	idx := &Index{
		BuildID:       uuid.NewString(),
		DocumentCount: len(docs),
		Postings:      make(map[string][]Posting),
		IDF:           make(map[string]float64),
	}

	for _, doc := range docs {
		tf := doc.TF
		if tf == nil {
			tf = token.TermFrequencies(doc.Text)
		}

		for term, n := range tf {
			if n <= 0 {
				continue
			}
			idx.Postings[term] = append(idx.Postings[term], Posting{DocumentID: doc.ID, TF: n})
		}
	}

	for term, postings := range idx.Postings {
		idx.IDF[term] = IDF(idx.DocumentCount, len(postings))
	}

	return idx
}

// IDF returns log10(n / (1 + df)).
func IDF(n, df int) float64 {
	return math.Log10(float64(n) / float64(1+df))
}

// DocumentFrequency returns the number of documents containing term.
func (idx *Index) DocumentFrequency(term string) int {
	return len(idx.Postings[term])
}

// IDFOf returns the IDF weight of term, or 0 if the term is not indexed.
func (idx *Index) IDFOf(term string) float64 {
	return idx.IDF[term]
}

// PostingsFor returns the postings of term in document processing order.
func (idx *Index) PostingsFor(term string) []Posting {
	return idx.Postings[term]
}

// Terms returns every indexed term in lexical order.
func (idx *Index) Terms() []string {
	terms := make([]string, 0, len(idx.Postings))
	for term := range idx.Postings {
		terms = append(terms, term)
	}
	slices.Sort(terms)
	return terms
}
