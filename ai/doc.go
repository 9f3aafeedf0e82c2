// Package ai provides abstractions for the sentence-embedding service FreQ
// uses to compare candidate questions.
//
// The embedding model is an external, frozen dependency. The core only ever
// calls Embedder.EmbedTexts once per analysis run with every distinct
// candidate question, and treats the result as a pure mapping from string to
// vector.
//
// # Implementation Packages
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewProvider, openai.NewEmbedder) return
// INTERFACE types to prevent accidental coupling to concrete implementations.
//
//	provider, err := openai.NewProvider(config)  // returns ai.AIProvider
//
// Test utility constructors (mock.NewMockEmbedder, mock.NewTableEmbedder)
// return CONCRETE types to enable test assertions such as CallCount.
//
// # Usage Example
//
//	config := ai.NewConfig(ai.WithEmbeddingModel("all-minilm"))
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vectors, err := provider.Embedder().EmbedTexts(ctx, []string{"define a stack?"})
package ai
