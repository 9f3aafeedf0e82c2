package analysis

import "errors"

var (
	// ErrExtractorRequired is returned when no extractor is provided.
	ErrExtractorRequired = errors.New("extractor required")

	// ErrFilterRequired is returned when no question filter is provided.
	ErrFilterRequired = errors.New("question filter required")

	// ErrClustererRequired is returned when no clusterer is provided.
	ErrClustererRequired = errors.New("clusterer required")

	// ErrStoreRequired is returned when no result store is provided.
	ErrStoreRequired = errors.New("result store required")
)
