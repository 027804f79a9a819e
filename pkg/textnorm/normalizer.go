package textnorm

import (
	"regexp"
	"strings"
)

var (
	punctuationRegex = regexp.MustCompile(`[^\w\s]`)
	extraSpacesRegex = regexp.MustCompile(`\s+`)
)

// stopWords is a small set of common English stop words that carry no
// retrieval signal. Kept lowercase; input is lowercased before lookup.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "but": {},
	"to": {}, "of": {}, "for": {}, "in": {}, "on": {}, "with": {},
	"as": {}, "at": {}, "by": {}, "from": {}, "could": {}, "would": {},
	"please": {}, "some": {},
}

// Normalize canonicalizes free text for use as an embedding/lookup key:
// lowercase, punctuation stripped, stop words removed, whitespace collapsed.
// It is deterministic and never fails; empty or whitespace-only input yields "".
func Normalize(input string) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}

	normalized := strings.ToLower(input)
	normalized = punctuationRegex.ReplaceAllString(normalized, "")
	normalized = removeStopWords(normalized)
	normalized = extraSpacesRegex.ReplaceAllString(normalized, " ")

	return strings.TrimSpace(normalized)
}

func removeStopWords(text string) string {
	words := strings.Fields(text)
	filtered := make([]string, 0, len(words))
	for _, word := range words {
		if _, ok := stopWords[word]; ok {
			continue
		}
		filtered = append(filtered, word)
	}
	return strings.Join(filtered, " ")
}
