// Package mock provides test double implementations of AI service interfaces.
//
// # Usage in Tests
//
//	// Deterministic hash-based vectors
//	mockProvider := mock.NewMockProvider()
//	vectors, err := mockProvider.Embedder().EmbedTexts(ctx, []string{"test"})
//
//	// Hand-picked vectors for exact similarity values
//	table := mock.NewTableEmbedder(map[string][]float32{
//	    "what is a stack?":  {1, 0},
//	    "define a stack?":   {0.9, 0.1},
//	})
//
//	// Custom behavior injection
//	m := mock.NewMockEmbedder()
//	m.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
//	    return nil, errors.New("service unavailable")
//	}
//
// # Default Behavior
//
//   - MockEmbedder: Returns deterministic unit vectors based on text hash
//   - TableEmbedder: Returns table vectors, errors on unknown text
//   - MockProvider: Wraps either embedder
package mock
