package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nao1215/webscour/internal/extract"
	"github.com/nao1215/webscour/internal/index"
	"github.com/nao1215/webscour/internal/model"
	"github.com/nao1215/webscour/internal/token"
)

// ErrNoDocuments is returned by the build step when nothing survived
// extraction. Saving an index over zero documents would replace a good
// index with an empty one.
var ErrNoDocuments = errors.New("pipeline: no documents to index")

// DocumentSource lists the stored corpus. *store.DocumentStore implements it.
type DocumentSource interface {
	ListAll(ctx context.Context) ([]model.Document, error)
}

// LoadDocumentsStep reads the full document snapshot.
type LoadDocumentsStep struct {
	source DocumentSource
}

// NewLoadDocumentsStep creates a LoadDocumentsStep.
func NewLoadDocumentsStep(source DocumentSource) *LoadDocumentsStep {
	return &LoadDocumentsStep{source: source}
}

// Name returns the step name.
func (s *LoadDocumentsStep) Name() string {
	return "load"
}

// Do implements Step.
func (s *LoadDocumentsStep) Do(ctx context.Context, run *IndexRun) error {
	docs, err := s.source.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load documents: %w", err)
	}
	run.Documents = docs
	run.Loaded = len(docs)
	return nil
}

// ExtractTextStep fills in Text and TF from each document's raw content.
// Documents whose content cannot be parsed are dropped and counted.
type ExtractTextStep struct {
	parser extract.Parser
	logger *slog.Logger
}

// ExtractTextStepOption configures an ExtractTextStep.
type ExtractTextStepOption func(*ExtractTextStep)

// WithExtractLogger sets the logger.
func WithExtractLogger(logger *slog.Logger) ExtractTextStepOption {
	return func(s *ExtractTextStep) {
		s.logger = logger
	}
}

// NewExtractTextStep creates an ExtractTextStep. A nil parser means the
// x/net/html parser.
func NewExtractTextStep(parser extract.Parser, opts ...ExtractTextStepOption) *ExtractTextStep {
	if parser == nil {
		parser = extract.HTMLParser{}
	}
	s := &ExtractTextStep{parser: parser, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *ExtractTextStep) Name() string {
	return "extract"
}

// Do implements Step.
func (s *ExtractTextStep) Do(ctx context.Context, run *IndexRun) error {
	kept := run.Documents[:0]
	for _, doc := range run.Documents {
		if err := ctx.Err(); err != nil {
			return err
		}

		page, err := s.parser.Parse(bytes.NewReader(doc.Raw))
		if err != nil {
			run.Skipped++
			s.logger.Warn("skipping unreadable document", "doc_id", doc.ID, "url", doc.URL, "error", err)
			continue
		}

		doc.Text = page.VisibleText()
		doc.TF = token.TermFrequencies(doc.Text)
		doc.Raw = nil
		kept = append(kept, doc)
	}
	run.Documents = kept
	return nil
}

// BuildIndexStep builds the inverted index and IDF table.
type BuildIndexStep struct{}

// NewBuildIndexStep creates a BuildIndexStep.
func NewBuildIndexStep() *BuildIndexStep {
	return &BuildIndexStep{}
}

// Name returns the step name.
func (s *BuildIndexStep) Name() string {
	return "build"
}

// Do implements Step.
func (s *BuildIndexStep) Do(_ context.Context, run *IndexRun) error {
	if len(run.Documents) == 0 {
		return ErrNoDocuments
	}
	run.Index = index.Build(run.Documents)
	return nil
}

// SaveIndexStep writes the index pair to run.IndexDir.
type SaveIndexStep struct{}

// NewSaveIndexStep creates a SaveIndexStep.
func NewSaveIndexStep() *SaveIndexStep {
	return &SaveIndexStep{}
}

// Name returns the step name.
func (s *SaveIndexStep) Name() string {
	return "save"
}

// Do implements Step.
func (s *SaveIndexStep) Do(_ context.Context, run *IndexRun) error {
	if run.Index == nil {
		return errors.New("pipeline: nothing to save, index was not built")
	}
	return index.Save(run.IndexDir, run.Index)
}

// IndexPipeline returns the standard load, extract, build, save pipeline.
func IndexPipeline(source DocumentSource, parser extract.Parser, pipelineOpts ...Option) *Pipeline {
	p := New(pipelineOpts...)
	p.AddSteps(
		NewLoadDocumentsStep(source),
		NewExtractTextStep(parser, WithExtractLogger(p.logger)),
		NewBuildIndexStep(),
		NewSaveIndexStep(),
	)
	return p
}
