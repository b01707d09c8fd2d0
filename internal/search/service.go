package search

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/nao1215/webscour/internal/index"
	"github.com/nao1215/webscour/internal/model"
)

// ErrNoIndex is returned by Service.Search before any index is published.
// It is distinct from an empty result so callers can tell "not started"
// from "no matches".
var ErrNoIndex = errors.New("search: no index loaded")

// Service serves queries against the most recently published index.
// It is safe for concurrent use.
type Service struct {
	current atomic.Pointer[index.Index]
}

// NewService returns a Service with nothing published.
func NewService() *Service {
	return &Service{}
}

// Publish makes idx the index served to subsequent queries.
// idx must not be modified afterwards.
func (s *Service) Publish(idx *index.Index) {
	s.current.Store(idx)
}

// Load reads the pair from dir and publishes it. On error the previously
// published index, if any, stays in place.
func (s *Service) Load(dir string) error {
	idx, err := index.Load(dir)
	if err != nil {
		return fmt.Errorf("failed to load index: %w", err)
	}
	s.Publish(idx)
	return nil
}

// Current returns the published index, or nil.
func (s *Service) Current() *index.Index {
	return s.current.Load()
}

// Search ranks query against the published index.
func (s *Service) Search(query string, topK int) (*model.SearchResponse, error) {
	idx := s.current.Load()
	if idx == nil {
		return nil, ErrNoIndex
	}

	return &model.SearchResponse{
		Query:   query,
		TopK:    topK,
		Results: Search(idx, query, topK),
	}, nil
}
