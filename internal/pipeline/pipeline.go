package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/webscour/internal/index"
	"github.com/nao1215/webscour/internal/model"
)

// IndexRun is the state threaded through the index pipeline.
type IndexRun struct {
	// IndexDir is where the index pair is written.
	IndexDir string

	// Documents holds the snapshot being indexed. After text extraction it
	// only contains documents with Text and TF filled in.
	Documents []model.Document

	// Loaded is the number of documents read from the store.
	Loaded int

	// Skipped counts documents dropped because their content was unreadable.
	Skipped int

	// Index is set by the build step.
	Index *index.Index

	// PerformedSteps lists the steps that ran, in order.
	PerformedSteps []string

	// Error is the last step error, if any.
	Error error

	// StartedAt is when Execute began.
	StartedAt time.Time

	// Elapsed is how long Execute took.
	Elapsed time.Duration
}

// NewIndexRun creates a run that writes to indexDir.
func NewIndexRun(indexDir string) *IndexRun {
	return &IndexRun{IndexDir: indexDir}
}

// Step defines the interface that all pipeline steps must implement.
//
// Design decision: an interface rather than function types, so steps can
// carry their collaborators and report a Name for logging.
type Step interface {
	// Do executes the step. Non-critical problems are recorded in run and
	// reported as nil; a returned error stops the pipeline unless it was
	// built with WithContinueOnError.
	Do(ctx context.Context, run *IndexRun) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger

	// continueOnError determines whether to continue executing steps
	// after one fails. If false, the pipeline stops on first error.
	continueOnError bool
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to keep going after a step
// fails. The default is to stop, because every index step depends on the
// one before it.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a new Pipeline with the given options.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all steps in sequence, checking ctx before each one.
// It returns the first step error unless continueOnError is set.
func (p *Pipeline) Execute(ctx context.Context, run *IndexRun) error {
	run.StartedAt = time.Now()
	defer func() {
		run.Elapsed = time.Since(run.StartedAt)
	}()

	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", ctx.Err(),
			)
			run.Error = ctx.Err()
			return ctx.Err()
		default:
		}

		p.logger.Info("executing step", "step", step.Name())

		if err := step.Do(ctx, run); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"error", err,
			)

			run.Error = err
			if !p.continueOnError {
				return err
			}
		} else {
			p.logger.Debug("step completed", "step", step.Name())
		}

		run.PerformedSteps = append(run.PerformedSteps, step.Name())
	}

	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
