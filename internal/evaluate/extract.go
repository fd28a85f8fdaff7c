// Package evaluate scores persisted output records against ground
// truth with task-specific checkers and aggregates accuracy.
package evaluate

import (
	"regexp"
	"strings"
)

// DefaultAnswerMarker is the final-answer indicator used when the
// caller does not override it.
const DefaultAnswerMarker = ">> FINAL ANSWER:"

const tripleQuotes = `"""`

// ExtractAnswer returns the answer text from a raw output: the text
// after the last occurrence of the marker (or the whole text when the
// marker is absent), unwrapped from an optional triple-quote fence and
// trimmed.
func ExtractAnswer(text string, marker string) string {
	if idx := strings.LastIndex(text, marker); idx >= 0 {
		text = text[idx+len(marker):]
	}
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, tripleQuotes) {
		text = text[len(tripleQuotes):]
		if end := strings.Index(text, tripleQuotes); end >= 0 {
			text = text[:end]
		}
	}
	return strings.TrimSpace(text)
}

var multiSpaceRE = regexp.MustCompile(" +")

// removePunctuation strips the punctuation marks that models sprinkle
// around otherwise correct answers.
func removePunctuation(s string) string {
	for _, marker := range []string{",", ";", ":", ".", `"`} {
		s = strings.ReplaceAll(s, marker, "")
	}
	return s
}

// newlineToSpace folds a multi-line answer onto one line.
func newlineToSpace(s string) string {
	return strings.ReplaceAll(s, "\n", " ")
}

// normalizeExact is the normalizer for exact-match tasks. It is
// idempotent: applying it twice yields the same string.
func normalizeExact(s string) string {
	return newlineToSpace(removePunctuation(s))
}

// cleanArithmeticTail strips "= 24", "is 24", "equals 24" style tails
// from an arithmetic expression, keeping the expression itself.
func cleanArithmeticTail(s string) string {
	if strings.Contains(s, "=") {
		s = strings.TrimSpace(strings.SplitN(s, "=", 2)[0])
	}
	if strings.Contains(s, "is") {
		s = strings.TrimSpace(strings.SplitN(s, "is", 2)[1])
	}
	if strings.Contains(s, "equals") {
		s = strings.TrimSpace(strings.SplitN(s, "equals", 2)[0])
	}
	if strings.Contains(s, "evaluates to") {
		s = strings.TrimSpace(strings.SplitN(s, "evaluates to", 2)[0])
	}
	return s
}
