package freq

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Winter-Soldier02/FreQ/ai"
	"github.com/Winter-Soldier02/FreQ/ai/mock"
	"github.com/Winter-Soldier02/FreQ/config"
	"github.com/Winter-Soldier02/FreQ/core"
	"github.com/Winter-Soldier02/FreQ/store"
)

const (
	quicksort = "what is quicksort and how does it work?"
	explain   = "explain how quicksort works in detail?"
	stack     = "what is a stack data structure?"
)

func testProvider() ai.AIProvider {
	return mock.NewMockProviderWithEmbedder(mock.NewTableEmbedder(map[string][]float32{
		quicksort: {1, 0, 0},
		explain:   {0.95, 0.1, 0},
		stack:     {0, 0, 1},
	}))
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Store.Backend = config.BackendMemory
	cfg.Pipeline.PoolSize = 2
	cfg.Pipeline.RetryDelay = 0
	return cfg
}

func writeDOCX(t *testing.T, dir, name string, paragraphs ...string) string {
	t.Helper()
	var body bytes.Buffer
	body.WriteString(`<?xml version="1.0" encoding="UTF-8"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		fmt.Fprintf(&body, `<w:p><w:r><w:t>%s</w:t></w:r></w:p>`, p)
	}
	body.WriteString(`</w:body></w:document>`)

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("word/document.xml")
	require.NoError(t, err)
	_, err = f.Write(body.Bytes())
	require.NoError(t, err)
	require.NoError(t, w.Close())

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func newTestAnalyzer(t *testing.T, opts ...AnalyzerOption) *Analyzer {
	t.Helper()
	opts = append([]AnalyzerOption{WithProvider(testProvider())}, opts...)
	a, err := NewAnalyzer(context.Background(), testConfig(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestNewAnalyzer(t *testing.T) {
	t.Run("memory backend", func(t *testing.T) {
		a := newTestAnalyzer(t)
		assert.NotNil(t, a.pipeline)
		assert.NotNil(t, a.results)
		assert.NotNil(t, a.logger)
	})

	t.Run("file backend", func(t *testing.T) {
		cfg := testConfig()
		cfg.Store.Backend = config.BackendFile
		cfg.Store.Path = t.TempDir()

		a, err := NewAnalyzer(context.Background(), cfg, WithProvider(testProvider()))
		require.NoError(t, err)
		assert.NoError(t, a.Close())
	})

	t.Run("badger backend", func(t *testing.T) {
		cfg := testConfig()
		cfg.Store.Backend = config.BackendBadger
		cfg.Store.Path = filepath.Join(t.TempDir(), "freq-data")

		a, err := NewAnalyzer(context.Background(), cfg, WithProvider(testProvider()))
		require.NoError(t, err)
		assert.NoError(t, a.Close())
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := testConfig()
		cfg.Clustering.Threshold = 2

		a, err := NewAnalyzer(context.Background(), cfg, WithProvider(testProvider()))
		assert.ErrorIs(t, err, config.ErrInvalidConfig)
		assert.Nil(t, a)
	})

	t.Run("badger path is a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "not_a_dir")
		require.NoError(t, os.WriteFile(path, []byte("test"), 0o644))

		cfg := testConfig()
		cfg.Store.Backend = config.BackendBadger
		cfg.Store.Path = path

		a, err := NewAnalyzer(context.Background(), cfg, WithProvider(testProvider()))
		assert.Error(t, err)
		assert.Nil(t, a)
	})
}

func TestAnalyzer_Analyze(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeDOCX(t, dir, "2021.docx",
			"Answer all questions.",
			"What is quicksort and how does it work?",
			"What is a stack data structure?"),
		writeDOCX(t, dir, "2022.DOCX",
			"What is Quicksort, and how does it work?",
			"Explain how quicksort works in detail?"),
	}

	a := newTestAnalyzer(t)
	ctx := context.Background()

	results, report, err := a.Analyze(ctx, paths)
	require.NoError(t, err)

	expected := core.ResultSet{
		{Question: quicksort, Variants: []string{quicksort, explain}, Frequency: 3},
		{Question: stack, Variants: []string{stack}, Frequency: 1},
	}
	assert.Equal(t, expected, results)
	require.Len(t, report.Documents, 2)
	assert.Equal(t, 2, report.Documents[0].Candidates)
	assert.Equal(t, 2, report.Documents[1].Candidates)
	assert.Equal(t, 4, report.Candidates)
	assert.Equal(t, 3, report.Distinct)

	ranked, err := a.Results(ctx)
	require.NoError(t, err)
	assert.Equal(t, expected, ranked)

	info, err := a.Info(ctx)
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, 2, info.Groups)
	assert.Equal(t, 4, info.Frequency)
}

func TestAnalyzer_AnalyzeRejectsUnsupported(t *testing.T) {
	dir := t.TempDir()
	good := writeDOCX(t, dir, "2021.docx", "What is quicksort and how does it work?")

	a := newTestAnalyzer(t)
	_, report, err := a.Analyze(context.Background(), []string{good, filepath.Join(dir, "notes.txt")})

	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrUnsupportedFormat)
	assert.Contains(t, err.Error(), "notes.txt")
	assert.Nil(t, report)

	rs, err := a.Results(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rs)
}

func TestAnalyzer_NoQuestions(t *testing.T) {
	dir := t.TempDir()
	path := writeDOCX(t, dir, "syllabus.docx", "Sorting algorithms.", "Data structures.")

	a := newTestAnalyzer(t)
	_, _, err := a.Analyze(context.Background(), []string{path})
	assert.ErrorIs(t, err, core.ErrNoQuestionsFound)

	info, err := a.Info(context.Background())
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestAnalyzer_AnalyzeDocumentsInMemory(t *testing.T) {
	dir := t.TempDir()
	data, err := os.ReadFile(writeDOCX(t, dir, "paper.docx", "What is a stack data structure?"))
	require.NoError(t, err)

	a := newTestAnalyzer(t)
	results, _, err := a.AnalyzeDocuments(context.Background(), []core.Document{
		{Format: core.FormatDOCX, Data: data},
	})
	require.NoError(t, err)
	assert.Equal(t, core.ResultSet{{Question: stack, Variants: []string{stack}, Frequency: 1}}, results)
}

func TestAnalyzer_WithResultStore(t *testing.T) {
	results := store.NewMemoryStore()
	dir := t.TempDir()
	path := writeDOCX(t, dir, "paper.docx", "What is a stack data structure?")

	a := newTestAnalyzer(t, WithResultStore(results))
	_, _, err := a.Analyze(context.Background(), []string{path})
	require.NoError(t, err)
	assert.Equal(t, 1, results.PersistCount())
}

func TestAnalyzer_Close(t *testing.T) {
	provider := testProvider()
	a, err := NewAnalyzer(context.Background(), testConfig(), WithProvider(provider))
	require.NoError(t, err)

	require.NoError(t, a.Close())
	assert.True(t, provider.(*mock.MockProvider).Closed())
}

func TestDocuments(t *testing.T) {
	docs, err := Documents([]string{"a.pdf", "b.DOCX"})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, core.FormatPDF, docs[0].Format)
	assert.Equal(t, core.FormatDOCX, docs[1].Format)

	_, err = Documents([]string{"a.pdf", "b.odt", "c"})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrUnsupportedFormat)
	assert.Contains(t, err.Error(), "b.odt")
	assert.Contains(t, err.Error(), "document c")
}
