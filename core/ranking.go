package core

import (
	"slices"
)

// Ranked returns a copy of the result set ordered by frequency, highest first.
// Groups with equal frequency keep their persisted order.
func (rs ResultSet) Ranked() ResultSet {
	ranked := slices.Clone(rs)
	slices.SortStableFunc(ranked, func(a, b QuestionGroup) int {
		return b.Frequency - a.Frequency
	})
	return ranked
}
