package core

import (
	"errors"
	"fmt"
)

// Pipeline error taxonomy
var (
	// ErrUnsupportedFormat indicates a document format no extractor handles.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrExtractionFailure indicates the decoder could not open or parse a document.
	ErrExtractionFailure = errors.New("extraction failed")

	// ErrRecognitionFailure indicates optical recognition failed for a page.
	// It is never fatal; the page degrades to empty text.
	ErrRecognitionFailure = errors.New("recognition failed")

	// ErrNoQuestionsFound indicates the batch produced zero candidate questions.
	ErrNoQuestionsFound = errors.New("no questions found")

	// ErrPersistenceFailure indicates the result store could not be written.
	// The previously persisted snapshot stays authoritative.
	ErrPersistenceFailure = errors.New("persistence failed")
)

// Domain validation errors
var (
	// ErrInvalidQuestionGroup indicates a QuestionGroup failed validation.
	ErrInvalidQuestionGroup = errors.New("invalid question group")

	// ErrInvalidResultSet indicates a ResultSet failed validation.
	ErrInvalidResultSet = errors.New("invalid result set")

	// ErrEmptyVariants indicates a group has no variants.
	ErrEmptyVariants = errors.New("group must have at least one variant")

	// ErrRepresentativeMismatch indicates Question is not the first variant.
	ErrRepresentativeMismatch = errors.New("representative must be the first variant")

	// ErrFrequencyTooLow indicates frequency is below the number of variants.
	ErrFrequencyTooLow = errors.New("frequency must be at least the number of variants")

	// ErrDuplicateVariant indicates a variant appears in more than one place.
	ErrDuplicateVariant = errors.New("variant appears more than once")
)

// DocumentError names the document a failure belongs to.
type DocumentError struct {
	Path string
	Err  error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("document %s: %v", e.Path, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}
