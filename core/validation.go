package core

import (
	"fmt"
	"slices"
)

// ValidateQuestionGroup validates a QuestionGroup according to domain rules.
//
// Validation rules:
//   - Variants must not be empty
//   - Question must equal Variants[0]
//   - Frequency must be >= len(Variants)
//   - Variants must be distinct
func ValidateQuestionGroup(group *QuestionGroup) error {
	if group == nil {
		return fmt.Errorf("%w: group is nil", ErrInvalidQuestionGroup)
	}

	if len(group.Variants) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidQuestionGroup, ErrEmptyVariants)
	}

	if group.Question != group.Variants[0] {
		return fmt.Errorf("%w: %w", ErrInvalidQuestionGroup, ErrRepresentativeMismatch)
	}

	if group.Frequency < len(group.Variants) {
		return fmt.Errorf("%w: %w: %d < %d", ErrInvalidQuestionGroup, ErrFrequencyTooLow,
			group.Frequency, len(group.Variants))
	}

	seen := make(map[string]struct{}, len(group.Variants))
	for _, v := range group.Variants {
		if _, ok := seen[v]; ok {
			return fmt.Errorf("%w: %w: %q", ErrInvalidQuestionGroup, ErrDuplicateVariant, v)
		}
		seen[v] = struct{}{}
	}

	return nil
}

// ValidateResultSet validates every group and checks that variant lists are
// pairwise disjoint across groups.
func ValidateResultSet(rs ResultSet) error {
	seen := make(map[string]int)
	for i := range rs {
		if err := ValidateQuestionGroup(&rs[i]); err != nil {
			return fmt.Errorf("%w: group %d: %w", ErrInvalidResultSet, i, err)
		}
		for _, v := range rs[i].Variants {
			if prev, ok := seen[v]; ok {
				return fmt.Errorf("%w: %w: %q in groups %d and %d",
					ErrInvalidResultSet, ErrDuplicateVariant, v, prev, i)
			}
			seen[v] = i
		}
	}
	return nil
}

// ValidateDocument checks that a document declares a supported format and
// has something to read.
func ValidateDocument(doc Document) error {
	if !slices.Contains(SupportedFormats, doc.Format) {
		return &DocumentError{Path: doc.Path, Err: fmt.Errorf("%w: %q", ErrUnsupportedFormat, doc.Format)}
	}
	if doc.Path == "" && len(doc.Data) == 0 {
		return &DocumentError{Path: doc.Path, Err: fmt.Errorf("%w: no path or data", ErrExtractionFailure)}
	}
	return nil
}
