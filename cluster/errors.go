package cluster

import "errors"

var (
	// ErrEmbedderRequired is returned when no embedder is provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrInvalidThreshold is returned when the similarity threshold is outside [-1, 1].
	ErrInvalidThreshold = errors.New("threshold must be between -1 and 1")

	// ErrEmbeddingMismatch is returned when the embedder returns a different
	// number of vectors than candidates it was given.
	ErrEmbeddingMismatch = errors.New("embedding count does not match candidate count")

	// ErrDimensionMismatch is returned when two embeddings differ in length.
	ErrDimensionMismatch = errors.New("embedding dimensions differ")
)
