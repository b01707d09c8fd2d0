// Package search ranks indexed documents against free-text queries.
//
// A query is tokenized with the same tokenizer as the index. Every posting
// of every query token adds tf * idf to its document's score; a token
// repeated in the query adds again. Results are ordered by score
// descending, ties by document id ascending, and truncated to top-K.
//
// Service holds the published index behind an atomic pointer: an index is
// built or loaded completely and then swapped in, so readers never observe
// a partial index.
package search
