package mock

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"sync"
)

// MockEmbedder is a test double for ai.Embedder.
// It allows custom behavior injection via function fields.
type MockEmbedder struct {
	// EmbedTextFunc is called by EmbedText if set.
	// If nil, uses default deterministic behavior.
	EmbedTextFunc func(ctx context.Context, text string) ([]float32, error)

	// EmbedTextsFunc is called by EmbedTexts if set.
	// If nil, uses default deterministic behavior.
	EmbedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)

	mu        sync.Mutex
	callCount int
	lastBatch []string
}

// NewMockEmbedder creates a mock embedder with default deterministic behavior.
// Note: Returns concrete type to allow test assertions via GetMockEmbedder().
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{}
}

// EmbedText generates a deterministic embedding based on text hash.
func (m *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	m.record([]string{text})

	if m.EmbedTextFunc != nil {
		return m.EmbedTextFunc(ctx, text)
	}

	return generateDeterministicVector(text, 384), nil
}

// EmbedTexts generates deterministic embeddings for multiple texts.
func (m *MockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	m.record(texts)

	if m.EmbedTextsFunc != nil {
		return m.EmbedTextsFunc(ctx, texts)
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = generateDeterministicVector(text, 384)
	}
	return vectors, nil
}

func (m *MockEmbedder) record(texts []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount++
	m.lastBatch = append([]string(nil), texts...)
}

// CallCount returns the number of times any method was called.
func (m *MockEmbedder) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastBatch returns the texts passed to the most recent call.
func (m *MockEmbedder) LastBatch() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastBatch
}

// Reset clears the call count and injected behavior.
func (m *MockEmbedder) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.lastBatch = nil
	m.EmbedTextFunc = nil
	m.EmbedTextsFunc = nil
}

// TableEmbedder returns fixed vectors looked up by exact text.
// Unknown texts are an error so tests notice unexpected candidates.
type TableEmbedder struct {
	Vectors map[string][]float32
	calls   int
	mu      sync.Mutex
}

// NewTableEmbedder creates an embedder backed by the given vector table.
func NewTableEmbedder(vectors map[string][]float32) *TableEmbedder {
	return &TableEmbedder{Vectors: vectors}
}

// EmbedText returns the table vector for text.
func (t *TableEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := t.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedTexts returns the table vectors for texts, in order.
func (t *TableEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	t.mu.Lock()
	t.calls++
	t.mu.Unlock()

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		v, ok := t.Vectors[text]
		if !ok {
			return nil, fmt.Errorf("no vector for %q", text)
		}
		vectors[i] = v
	}
	return vectors, nil
}

// CallCount returns the number of embedding calls.
func (t *TableEmbedder) CallCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}

// generateDeterministicVector creates a deterministic embedding vector from text.
// It uses FNV hash to ensure the same text always produces the same vector.
func generateDeterministicVector(text string, dim int) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	vector := make([]float32, dim)
	for i := 0; i < dim; i++ {
		seed = seed*1664525 + 1013904223 // LCG constants
		vector[i] = float32(seed%1000) / 1000.0
	}

	var sumSquares float64
	for _, v := range vector {
		sumSquares += float64(v) * float64(v)
	}
	if sumSquares > 0 {
		norm := float32(1.0 / math.Sqrt(sumSquares))
		for i := range vector {
			vector[i] *= norm
		}
	}

	return vector
}
