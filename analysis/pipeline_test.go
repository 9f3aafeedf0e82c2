package analysis

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Winter-Soldier02/FreQ/ai/mock"
	"github.com/Winter-Soldier02/FreQ/cluster"
	"github.com/Winter-Soldier02/FreQ/core"
	"github.com/Winter-Soldier02/FreQ/questions"
	"github.com/Winter-Soldier02/FreQ/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testExtractor returns canned text per path.
type testExtractor struct {
	texts  map[string]string
	errs   map[string]error
	delays map[string]time.Duration

	mu    sync.Mutex
	calls int
}

func (e *testExtractor) Extract(ctx context.Context, doc core.Document) (string, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()

	if d := e.delays[doc.Path]; d > 0 {
		time.Sleep(d)
	}
	if err := e.errs[doc.Path]; err != nil {
		return "", &core.DocumentError{Path: doc.Path, Err: err}
	}
	return e.texts[doc.Path], nil
}

// lineSegmenter treats each line as a sentence.
type lineSegmenter struct{}

func (lineSegmenter) Segment(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

const (
	quicksort  = "what is the time complexity of quicksort?"
	quickSort2 = "explain the time complexity of quick sort?"
	stack      = "define a stack with an example?"
)

// embedder puts both quicksort phrasings close together and the stack
// question far away.
func testEmbedder() *mock.TableEmbedder {
	return mock.NewTableEmbedder(map[string][]float32{
		quicksort:  {1, 0, 0},
		quickSort2: {0.95, 0.1, 0},
		stack:      {0, 0, 1},
	})
}

func newTestPipeline(t *testing.T, ex *testExtractor, results store.ResultStore, opts ...Option) *Pipeline {
	t.Helper()
	filter, err := questions.NewFilter(lineSegmenter{})
	require.NoError(t, err)
	clusterer, err := cluster.NewClusterer(testEmbedder(), cluster.WithRetry(1, time.Millisecond))
	require.NoError(t, err)

	all := append([]Option{WithPoolSize(2), WithRetry(2, time.Millisecond)}, opts...)
	p, err := NewPipeline(ex, filter, clusterer, results, all...)
	require.NoError(t, err)
	t.Cleanup(p.Release)
	return p
}

func docs(paths ...string) []core.Document {
	out := make([]core.Document, len(paths))
	for i, p := range paths {
		out[i] = core.NewDocument(p)
	}
	return out
}

func TestNewPipeline_Required(t *testing.T) {
	filter, err := questions.NewFilter(lineSegmenter{})
	require.NoError(t, err)
	clusterer, err := cluster.NewClusterer(testEmbedder())
	require.NoError(t, err)
	ex := &testExtractor{}
	results := store.NewMemoryStore()

	_, err = NewPipeline(nil, filter, clusterer, results)
	assert.ErrorIs(t, err, ErrExtractorRequired)
	_, err = NewPipeline(ex, nil, clusterer, results)
	assert.ErrorIs(t, err, ErrFilterRequired)
	_, err = NewPipeline(ex, filter, nil, results)
	assert.ErrorIs(t, err, ErrClustererRequired)
	_, err = NewPipeline(ex, filter, clusterer, nil)
	assert.ErrorIs(t, err, ErrStoreRequired)
	_, err = NewPipeline(ex, filter, clusterer, results, WithRetry(0, 0))
	assert.Error(t, err)
}

func TestAnalyze(t *testing.T) {
	ex := &testExtractor{texts: map[string]string{
		"2019.pdf": "What is the time complexity of QuickSort?\nDefine a stack, with an example?\nAnswer any five.",
		"2020.docx": "Explain the time complexity of Quick Sort?\nWhat is the time complexity of quicksort?\n" +
			"What is the time complexity of quicksort!!?",
	}}
	results := store.NewMemoryStore()
	p := newTestPipeline(t, ex, results)

	rs, report, err := p.Analyze(context.Background(), docs("2019.pdf", "2020.docx"))
	require.NoError(t, err)

	want := core.ResultSet{
		{Question: quicksort, Variants: []string{quicksort, quickSort2}, Frequency: 4},
		{Question: stack, Variants: []string{stack}, Frequency: 1},
	}
	assert.Equal(t, want, rs)

	t.Run("report", func(t *testing.T) {
		require.Len(t, report.Documents, 2)
		assert.Equal(t, "2019.pdf", report.Documents[0].Document.Path)
		assert.Equal(t, 2, report.Documents[0].Candidates)
		assert.Equal(t, 3, report.Documents[1].Candidates)
		assert.Equal(t, 5, report.Candidates)
		assert.Equal(t, 3, report.Distinct)
		assert.Empty(t, report.Failed())
	})

	t.Run("total frequency equals qualifying sentences", func(t *testing.T) {
		assert.Equal(t, report.Candidates, rs.TotalFrequency())
	})

	t.Run("persisted", func(t *testing.T) {
		loaded, err := results.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want, loaded)
		assert.Equal(t, 1, results.PersistCount())
	})
}

func TestAnalyze_NoQuestionsFound(t *testing.T) {
	ex := &testExtractor{texts: map[string]string{
		"a.pdf":  "Answer all questions.\nWhat is it?",
		"b.docx": "",
	}}
	results := store.NewMemoryStore()
	previous := core.ResultSet{{Question: stack, Variants: []string{stack}, Frequency: 7}}
	require.NoError(t, results.Persist(context.Background(), previous))

	p := newTestPipeline(t, ex, results)
	rs, report, err := p.Analyze(context.Background(), docs("a.pdf", "b.docx"))

	assert.ErrorIs(t, err, core.ErrNoQuestionsFound)
	assert.Nil(t, rs)
	require.NotNil(t, report)
	assert.Equal(t, 0, report.Candidates)

	assert.Equal(t, 1, results.PersistCount(), "store left untouched")
	loaded, err := results.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, previous, loaded)
}

func TestAnalyze_NoDocuments(t *testing.T) {
	results := store.NewMemoryStore()
	p := newTestPipeline(t, &testExtractor{}, results)

	_, _, err := p.Analyze(context.Background(), nil)
	assert.ErrorIs(t, err, core.ErrNoQuestionsFound)
	assert.Equal(t, 0, results.PersistCount())
}

func TestAnalyze_DocumentFailureIsolated(t *testing.T) {
	ex := &testExtractor{
		texts: map[string]string{"good.pdf": "Define a stack with an example?"},
		errs:  map[string]error{"bad.pdf": core.ErrExtractionFailure},
	}
	results := store.NewMemoryStore()
	p := newTestPipeline(t, ex, results)

	rs, report, err := p.Analyze(context.Background(), docs("bad.pdf", "good.pdf"))
	require.NoError(t, err)
	require.Len(t, rs, 1)
	assert.Equal(t, stack, rs[0].Question)

	failed := report.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "bad.pdf", failed[0].Document.Path)
	assert.ErrorIs(t, failed[0].Err, core.ErrExtractionFailure)
}

func TestAnalyze_AllDocumentsFail(t *testing.T) {
	ex := &testExtractor{errs: map[string]error{
		"a.pdf":  core.ErrExtractionFailure,
		"b.odt":  core.ErrUnsupportedFormat,
		"c.docx": core.ErrExtractionFailure,
	}}
	results := store.NewMemoryStore()
	p := newTestPipeline(t, ex, results)

	_, report, err := p.Analyze(context.Background(), docs("a.pdf", "b.odt", "c.docx"))
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrExtractionFailure)
	assert.ErrorIs(t, err, core.ErrUnsupportedFormat)

	var docErr *core.DocumentError
	require.ErrorAs(t, err, &docErr)
	assert.Equal(t, "a.pdf", docErr.Path)

	assert.Len(t, report.Failed(), 3)
	assert.Equal(t, 0, results.PersistCount())
}

func TestAnalyze_PersistenceFailure(t *testing.T) {
	ex := &testExtractor{texts: map[string]string{"a.pdf": "Define a stack with an example?"}}
	results := store.NewMemoryStore()
	results.PersistFunc = func(core.ResultSet) error { return errors.New("disk full") }
	p := newTestPipeline(t, ex, results)

	rs, report, err := p.Analyze(context.Background(), docs("a.pdf"))
	assert.ErrorIs(t, err, core.ErrPersistenceFailure)
	assert.ErrorContains(t, err, "disk full")
	require.Len(t, rs, 1, "caller keeps the in-memory result")
	assert.NotNil(t, report)
	assert.Equal(t, 2, results.PersistCount(), "persist is retried")

	loaded, err := results.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestAnalyze_PersistRecovers(t *testing.T) {
	ex := &testExtractor{texts: map[string]string{"a.pdf": "Define a stack with an example?"}}
	results := store.NewMemoryStore()
	attempts := 0
	results.PersistFunc = func(core.ResultSet) error {
		attempts++
		if attempts == 1 {
			return errors.New("database is locked")
		}
		return nil
	}
	p := newTestPipeline(t, ex, results)

	_, _, err := p.Analyze(context.Background(), docs("a.pdf"))
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestAnalyze_KeepsDocumentOrder(t *testing.T) {
	// The first document finishes last; first-seen order must still follow
	// document order.
	ex := &testExtractor{
		texts: map[string]string{
			"slow.pdf": "Define a stack with an example?",
			"fast.pdf": "What is the time complexity of quicksort?",
		},
		delays: map[string]time.Duration{"slow.pdf": 30 * time.Millisecond},
	}
	p := newTestPipeline(t, ex, store.NewMemoryStore(), WithPoolSize(2))

	for range 3 {
		rs, _, err := p.Analyze(context.Background(), docs("slow.pdf", "fast.pdf"))
		require.NoError(t, err)
		require.Len(t, rs, 2)
		assert.Equal(t, stack, rs[0].Question)
		assert.Equal(t, quicksort, rs[1].Question)
	}
}

func TestAnalyze_Progress(t *testing.T) {
	ex := &testExtractor{
		texts: map[string]string{
			"a.pdf": "Define a stack with an example?",
			"b.pdf": "What is the time complexity of quicksort?",
		},
		errs: map[string]error{"c.pdf": core.ErrExtractionFailure},
	}
	var buf bytes.Buffer
	p := newTestPipeline(t, ex, store.NewMemoryStore(), WithProgress(&buf))

	_, _, err := p.Analyze(context.Background(), docs("a.pdf", "b.pdf", "c.pdf"))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "3/3 (100.0%), 1 failed")
	assert.Contains(t, buf.String(), "docs/s")
}

func TestAnalyze_Canceled(t *testing.T) {
	ex := &testExtractor{texts: map[string]string{"a.pdf": "Define a stack with an example?"}}
	results := store.NewMemoryStore()
	p := newTestPipeline(t, ex, results)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := p.Analyze(ctx, docs("a.pdf"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, results.PersistCount())
}
