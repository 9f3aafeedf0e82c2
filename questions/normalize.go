package questions

import (
	"strings"
	"unicode"
)

// MinTokens is the token count a candidate must exceed.
const MinTokens = 3

// Normalize keeps ASCII letters, digits, whitespace and '?', lowercases the
// result and collapses whitespace runs to a single space. Sentences that
// differ only in case, punctuation or symbols normalize identically.
func Normalize(sentence string) string {
	var b strings.Builder
	b.Grow(len(sentence))
	space := false
	for _, r := range sentence {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '?':
		case r >= 'A' && r <= 'Z':
			r = unicode.ToLower(r)
		case unicode.IsSpace(r):
			space = true
			continue
		default:
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}

// IsCandidate reports whether a normalized sentence looks like a question:
// it ends with '?', has more than MinTokens whitespace-delimited tokens and
// contains at least one letter.
func IsCandidate(normalized string) bool {
	if !strings.HasSuffix(normalized, "?") {
		return false
	}
	if len(strings.Fields(normalized)) <= MinTokens {
		return false
	}
	return strings.IndexFunc(normalized, unicode.IsLetter) >= 0
}
