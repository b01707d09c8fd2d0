package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
)

// mockStep is a test helper that implements the Step interface.
type mockStep struct {
	name      string
	doFunc    func(ctx context.Context, run *IndexRun) error
	callCount int
}

// Do implements Step.Do.
func (m *mockStep) Do(ctx context.Context, run *IndexRun) error {
	m.callCount++
	if m.doFunc != nil {
		return m.doFunc(ctx, run)
	}
	return nil
}

// Name implements Step.Name.
func (m *mockStep) Name() string {
	return m.name
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPipelineNew(t *testing.T) {
	t.Parallel()

	t.Run("creates pipeline with default settings", func(t *testing.T) {
		t.Parallel()

		p := New()
		if p == nil {
			t.Fatal("expected non-nil pipeline")
		}
		if p.StepCount() != 0 {
			t.Errorf("expected 0 steps, got %d", p.StepCount())
		}
		if p.continueOnError {
			t.Error("expected continueOnError to default to false")
		}
	})

	t.Run("applies WithContinueOnError option", func(t *testing.T) {
		t.Parallel()

		p := New(WithContinueOnError(true))
		if !p.continueOnError {
			t.Error("expected continueOnError to be true")
		}
	})

	t.Run("applies WithLogger option", func(t *testing.T) {
		t.Parallel()

		logger := discardLogger()
		p := New(WithLogger(logger))
		if p.logger != logger {
			t.Error("expected custom logger to be set")
		}
	})
}

func TestPipelineAddStep(t *testing.T) {
	t.Parallel()

	t.Run("adds single step", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddStep(&mockStep{name: "one"})
		if p.StepCount() != 1 {
			t.Errorf("expected 1 step, got %d", p.StepCount())
		}
	})

	t.Run("maintains step order", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddSteps(&mockStep{name: "a"}, &mockStep{name: "b"})
		p.AddStep(&mockStep{name: "c"})

		names := p.StepNames()
		want := []string{"a", "b", "c"}
		if len(names) != len(want) {
			t.Fatalf("expected %d names, got %d", len(want), len(names))
		}
		for i := range want {
			if names[i] != want[i] {
				t.Errorf("step %d: expected %q, got %q", i, want[i], names[i])
			}
		}
	})
}

func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("executes all steps in order", func(t *testing.T) {
		t.Parallel()

		var order []string
		record := func(name string) *mockStep {
			return &mockStep{name: name, doFunc: func(context.Context, *IndexRun) error {
				order = append(order, name)
				return nil
			}}
		}

		p := New(WithLogger(discardLogger()))
		p.AddSteps(record("load"), record("extract"), record("build"))

		run := NewIndexRun(t.TempDir())
		if err := p.Execute(t.Context(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(order) != 3 || order[0] != "load" || order[2] != "build" {
			t.Errorf("unexpected order: %v", order)
		}
		if len(run.PerformedSteps) != 3 {
			t.Errorf("expected 3 performed steps, got %v", run.PerformedSteps)
		}
		if run.StartedAt.IsZero() {
			t.Error("expected StartedAt to be set")
		}
	})

	t.Run("stops on first error by default", func(t *testing.T) {
		t.Parallel()

		errBoom := errors.New("boom")
		first := &mockStep{name: "first", doFunc: func(context.Context, *IndexRun) error { return errBoom }}
		second := &mockStep{name: "second"}

		p := New(WithLogger(discardLogger()))
		p.AddSteps(first, second)

		run := NewIndexRun(t.TempDir())
		err := p.Execute(t.Context(), run)
		if !errors.Is(err, errBoom) {
			t.Fatalf("expected errBoom, got %v", err)
		}
		if second.callCount != 0 {
			t.Error("second step should not run after a failure")
		}
		if !errors.Is(run.Error, errBoom) {
			t.Errorf("expected run.Error to be errBoom, got %v", run.Error)
		}
	})

	t.Run("continues on error when configured", func(t *testing.T) {
		t.Parallel()

		first := &mockStep{name: "first", doFunc: func(context.Context, *IndexRun) error { return errors.New("boom") }}
		second := &mockStep{name: "second"}

		p := New(WithLogger(discardLogger()), WithContinueOnError(true))
		p.AddSteps(first, second)

		if err := p.Execute(t.Context(), NewIndexRun(t.TempDir())); err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if second.callCount != 1 {
			t.Error("second step should run")
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(t.Context())
		first := &mockStep{name: "first", doFunc: func(context.Context, *IndexRun) error {
			cancel()
			return nil
		}}
		second := &mockStep{name: "second"}

		p := New(WithLogger(discardLogger()))
		p.AddSteps(first, second)

		err := p.Execute(ctx, NewIndexRun(t.TempDir()))
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if second.callCount != 0 {
			t.Error("second step should not run after cancellation")
		}
	})
}

func TestPipelineStepNames(t *testing.T) {
	t.Parallel()

	p := New()
	if names := p.StepNames(); len(names) != 0 {
		t.Errorf("expected empty names, got %v", names)
	}
}
