// Package textproc normalises clinical free text into a token sequence for
// the relevance engine. It lower-cases input, strips punctuation while
// keeping hyphen and slash (dose and lab notations like "mg/dl" or
// "follow-up"), removes stop-words, and classifies tokens against a static
// medical vocabulary.
package textproc

import (
	"strings"
	"unicode"
)

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "of": {},
	"with": {}, "by": {},
}

// minTokenLen is the shortest token kept after normalisation. Two-letter
// fragments carry no retrieval signal in clinical notes.
const minTokenLen = 3

// Normalize lower-cases text, replaces every character that is not a letter,
// digit, underscore, hyphen, or slash with a space, and collapses whitespace
// runs to single spaces. It is idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' || r == '/' {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Tokenize splits normalised text on whitespace and drops stop-words and
// tokens shorter than three characters. Order is preserved so callers can
// count term occurrences.
func Tokenize(normalized string) []string {
	words := strings.Fields(normalized)
	terms := make([]string, 0, len(words))
	for _, w := range words {
		if len(w) < minTokenLen {
			continue
		}
		if _, isStop := stopWords[w]; isStop {
			continue
		}
		terms = append(terms, w)
	}
	return terms
}

// IsMedicalTerm reports whether term belongs to the flattened medical
// vocabulary.
func IsMedicalTerm(term string) bool {
	_, ok := medicalVocabulary[term]
	return ok
}

// VocabularySize returns the number of entries in the flattened vocabulary.
func VocabularySize() int {
	return len(medicalVocabulary)
}
