package pipeline

import (
	"context"
	"errors"
	"io"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nao1215/webscour/internal/extract"
	"github.com/nao1215/webscour/internal/index"
	"github.com/nao1215/webscour/internal/model"
)

type memSource struct {
	docs []model.Document
	err  error
}

func (m *memSource) ListAll(context.Context) ([]model.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]model.Document, len(m.docs))
	copy(out, m.docs)
	return out, nil
}

// pickyParser refuses documents whose raw content is "broken".
type pickyParser struct{}

type textPage string

func (p textPage) VisibleText() string { return string(p) }
func (p textPage) Hyperlinks(*url.URL) []string { return nil }

func (pickyParser) Parse(r io.Reader) (extract.Page, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if string(b) == "broken" {
		return nil, errors.New("unreadable")
	}
	return textPage(b), nil
}

func doc(id, raw string) model.Document {
	return model.Document{ID: id, URL: "https://site.test/" + id, Raw: []byte(raw), FetchedAt: time.Now()}
}

func TestIndexPipeline(t *testing.T) {
	t.Parallel()

	t.Run("builds and saves an index from stored documents", func(t *testing.T) {
		t.Parallel()

		source := &memSource{docs: []model.Document{
			doc("a", "<html><body><p>go concurrency patterns</p></body></html>"),
			doc("b", "<html><body><p>go channels</p><script>var hidden</script></body></html>"),
			doc("c", "<html><body><p>python asyncio</p></body></html>"),
		}}

		dir := t.TempDir()
		run := NewIndexRun(dir)
		p := IndexPipeline(source, nil, WithLogger(discardLogger()))
		require.NoError(t, p.Execute(t.Context(), run))

		assert.Equal(t, []string{"load", "extract", "build", "save"}, run.PerformedSteps)
		assert.Equal(t, 3, run.Loaded)
		assert.Equal(t, 0, run.Skipped)
		require.NotNil(t, run.Index)
		assert.Equal(t, 3, run.Index.DocumentCount)
		assert.Empty(t, run.Index.PostingsFor("hidden"))
		assert.Equal(t, 2, run.Index.DocumentFrequency("go"))

		loaded, err := index.Load(dir)
		require.NoError(t, err)
		assert.Equal(t, run.Index.BuildID, loaded.BuildID)
	})

	t.Run("skips unreadable documents and keeps going", func(t *testing.T) {
		t.Parallel()

		source := &memSource{docs: []model.Document{
			doc("a", "alpha beta"),
			doc("b", "broken"),
			doc("c", "beta gamma"),
		}}

		run := NewIndexRun(t.TempDir())
		p := IndexPipeline(source, pickyParser{}, WithLogger(discardLogger()))
		require.NoError(t, p.Execute(t.Context(), run))

		assert.Equal(t, 3, run.Loaded)
		assert.Equal(t, 1, run.Skipped)
		assert.Equal(t, 2, run.Index.DocumentCount)
		for _, d := range run.Documents {
			assert.NotEqual(t, "b", d.ID)
			assert.Nil(t, d.Raw)
		}
	})

	t.Run("empty corpus does not write an index", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		run := NewIndexRun(dir)
		p := IndexPipeline(&memSource{}, nil, WithLogger(discardLogger()))

		err := p.Execute(t.Context(), run)
		require.ErrorIs(t, err, ErrNoDocuments)
		assert.Equal(t, []string{"load", "extract"}, run.PerformedSteps)

		_, err = index.Load(dir)
		assert.ErrorIs(t, err, index.ErrIndexNotFound)
	})

	t.Run("load failure stops the pipeline", func(t *testing.T) {
		t.Parallel()

		errDB := errors.New("database is locked")
		run := NewIndexRun(t.TempDir())
		p := IndexPipeline(&memSource{err: errDB}, nil, WithLogger(discardLogger()))

		err := p.Execute(t.Context(), run)
		require.ErrorIs(t, err, errDB)
		assert.Empty(t, run.PerformedSteps)
	})
}

func TestSaveIndexStepWithoutIndex(t *testing.T) {
	t.Parallel()

	err := NewSaveIndexStep().Do(t.Context(), NewIndexRun(t.TempDir()))
	assert.Error(t, err)
}
