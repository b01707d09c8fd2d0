package index

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/renameio/v2"
)

// File names of the persisted pair.
const (
	InvertedIndexFile = "inverted_index.json"
	IDFFile           = "idf.json"
)

// idfTolerance bounds the difference between a stored weight and the one
// recomputed from the postings.
const idfTolerance = 1e-9

// invertedIndexFile is the schema of inverted_index.json.
type invertedIndexFile struct {
	BuildID       string               `json:"build_id"`
	DocumentCount int                  `json:"document_count"`
	Postings      map[string][]Posting `json:"postings"`
}

// idfFile is the schema of idf.json.
type idfFile struct {
	BuildID       string             `json:"build_id"`
	DocumentCount int                `json:"document_count"`
	IDF           map[string]float64 `json:"idf"`
}

// MarshalJSON encodes a posting as a [documentId, frequency] pair.
func (p Posting) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{p.DocumentID, p.TF})
}

// UnmarshalJSON decodes a [documentId, frequency] pair. The id must be a
// non-empty string and the frequency a positive integer.
func (p *Posting) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("posting is not an array: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("posting must have 2 elements, got %d", len(pair))
	}

	var id string
	if err := json.Unmarshal(pair[0], &id); err != nil {
		return fmt.Errorf("posting document id is not a string: %w", err)
	}
	if id == "" {
		return errors.New("posting document id is empty")
	}

	tf, err := strconv.Atoi(string(bytes.TrimSpace(pair[1])))
	if err != nil {
		return fmt.Errorf("posting frequency %s is not an integer", pair[1])
	}
	if tf <= 0 {
		return fmt.Errorf("posting frequency %d is not positive", tf)
	}

	p.DocumentID = id
	p.TF = tf
	return nil
}

// Save writes the pair into dir, creating it if needed. Each file is
// replaced atomically; a crash between the two writes leaves files with
// different build ids, which Load rejects.
func Save(dir string, idx *Index) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	inv, err := json.Marshal(invertedIndexFile{
		BuildID:       idx.BuildID,
		DocumentCount: idx.DocumentCount,
		Postings:      idx.Postings,
	})
	if err != nil {
		return fmt.Errorf("failed to encode inverted index: %w", err)
	}

	idf, err := json.Marshal(idfFile{
		BuildID:       idx.BuildID,
		DocumentCount: idx.DocumentCount,
		IDF:           idx.IDF,
	})
	if err != nil {
		return fmt.Errorf("failed to encode IDF table: %w", err)
	}

	if err := renameio.WriteFile(filepath.Join(dir, InvertedIndexFile), inv, 0o600); err != nil {
		return fmt.Errorf("failed to write inverted index: %w", err)
	}
	if err := renameio.WriteFile(filepath.Join(dir, IDFFile), idf, 0o600); err != nil {
		return fmt.Errorf("failed to write IDF table: %w", err)
	}
	return nil
}

// Load reads and validates the pair in dir. It fails closed: any missing
// file, schema violation or disagreement between the files is an error.
func Load(dir string) (*Index, error) {
	var inv invertedIndexFile
	if err := decodeFile(filepath.Join(dir, InvertedIndexFile), &inv); err != nil {
		return nil, err
	}

	var idf idfFile
	if err := decodeFile(filepath.Join(dir, IDFFile), &idf); err != nil {
		return nil, err
	}

	if err := validate(&inv, &idf); err != nil {
		return nil, err
	}

	return &Index{
		BuildID:       inv.BuildID,
		DocumentCount: inv.DocumentCount,
		Postings:      inv.Postings,
		IDF:           idf.IDF,
	}, nil
}

func decodeFile(path string, v any) error {
	f, err := os.Open(path) //nolint:gosec // index directory is user-configured
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrIndexNotFound, path)
	}
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidIndex, filepath.Base(path), err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %s: trailing data", ErrInvalidIndex, filepath.Base(path))
	}
	return nil
}

func validate(inv *invertedIndexFile, idf *idfFile) error {
	if inv.BuildID == "" || idf.BuildID == "" {
		return fmt.Errorf("%w: missing build_id", ErrInvalidIndex)
	}
	if inv.BuildID != idf.BuildID || inv.DocumentCount != idf.DocumentCount {
		return fmt.Errorf("%w: %s (%d docs) vs %s (%d docs)", ErrMismatchedBuild,
			inv.BuildID, inv.DocumentCount, idf.BuildID, idf.DocumentCount)
	}
	if inv.DocumentCount < 0 {
		return fmt.Errorf("%w: negative document_count", ErrInvalidIndex)
	}
	if inv.Postings == nil || idf.IDF == nil {
		return fmt.Errorf("%w: missing postings or idf table", ErrInvalidIndex)
	}
	if len(inv.Postings) != len(idf.IDF) {
		return fmt.Errorf("%w: %d indexed terms but %d IDF weights", ErrInvalidIndex, len(inv.Postings), len(idf.IDF))
	}

	n := inv.DocumentCount
	for term, postings := range inv.Postings {
		if term == "" {
			return fmt.Errorf("%w: empty term", ErrInvalidIndex)
		}

		df := len(postings)
		if df == 0 || df > n {
			return fmt.Errorf("%w: term %q has %d postings for %d documents", ErrInvalidIndex, term, df, n)
		}

		seen := make(map[string]struct{}, df)
		for _, p := range postings {
			if _, dup := seen[p.DocumentID]; dup {
				return fmt.Errorf("%w: term %q lists document %s twice", ErrInvalidIndex, term, p.DocumentID)
			}
			seen[p.DocumentID] = struct{}{}
		}

		weight, ok := idf.IDF[term]
		if !ok {
			return fmt.Errorf("%w: term %q has no IDF weight", ErrInvalidIndex, term)
		}
		if math.IsNaN(weight) || math.IsInf(weight, 0) || math.Abs(weight-IDF(n, df)) > idfTolerance {
			return fmt.Errorf("%w: term %q has IDF %v, want %v", ErrInvalidIndex, term, weight, IDF(n, df))
		}
	}

	return nil
}
