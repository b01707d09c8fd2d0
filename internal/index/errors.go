package index

import "errors"

var (
	// ErrIndexNotFound is returned by Load when either file of the pair is missing.
	ErrIndexNotFound = errors.New("index: index files not found")

	// ErrInvalidIndex is returned by Load when a file does not match its schema
	// or the two files do not describe the same term universe.
	ErrInvalidIndex = errors.New("index: invalid index file")

	// ErrMismatchedBuild is returned by Load when the two files come from
	// different builds.
	ErrMismatchedBuild = errors.New("index: inverted index and IDF table are from different builds")
)
