// Package index builds the inverted index and IDF table over a document
// snapshot and persists them as a version-matched pair.
//
// Build is a pure function of its input. For each document, every distinct
// term gets one (document id, term frequency) posting appended to the term's
// list, so postings are in document processing order. The IDF of a term is
// log10(N / (1 + df)); terms absent from the index have no entry and read as
// zero.
//
// Design decision: the pair is written as two JSON files, each replaced
// atomically, and both carry the same build id and document count. Load
// refuses to return anything unless both files exist, parse under a strict
// schema and agree with each other, so a query engine never serves a
// partial or mixed index.
package index
