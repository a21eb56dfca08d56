package search

import (
	"strings"
	"unicode"
)

// stopWords are too common to count as a verbatim signal.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "be": {}, "is": {}, "are": {},
	"was": {}, "to": {}, "of": {}, "and": {}, "in": {}, "that": {},
	"have": {}, "it": {}, "for": {}, "not": {}, "on": {}, "with": {},
	"as": {}, "you": {}, "do": {}, "at": {}, "this": {}, "but": {},
	"by": {}, "from": {},
}

// tokenizeAndFilter lowercases text, splits on any non-alphanumeric run,
// and drops stop words.
func tokenizeAndFilter(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := fields[:0]
	for _, f := range fields {
		if _, stop := stopWords[f]; !stop {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// containsAllQueryWords reports whether every significant query token
// occurs somewhere in the document. A query with no significant tokens
// never matches.
func containsAllQueryWords(document, query string) bool {
	queryTokens := tokenizeAndFilter(query)
	if len(queryTokens) == 0 {
		return false
	}

	seen := make(map[string]struct{})
	for _, tok := range tokenizeAndFilter(document) {
		seen[tok] = struct{}{}
	}

	for _, tok := range queryTokens {
		if _, ok := seen[tok]; !ok {
			return false
		}
	}
	return true
}
