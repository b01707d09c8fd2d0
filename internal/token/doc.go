// Package token is the one tokenizer shared by index construction and query
// evaluation.
//
// A token is a maximal run of ASCII letters and digits, lowercased. Every
// other character is a separator and produces nothing. There is no stemming
// and no stop-word list.
//
// Design decision: Both the index builder and the query engine import this
// package instead of carrying their own tokenizers, because any difference
// between the two silently destroys recall.
package token
