package search

import (
	"strings"
	"unicode"
)

// stopWords never decide a verbatim match. Lyric filler ("oh", "yeah",
// "la") is included because nearly every song contains it.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"but": {}, "by": {}, "do": {}, "for": {}, "from": {}, "have": {}, "in": {},
	"is": {}, "it": {}, "not": {}, "of": {}, "on": {}, "that": {}, "the": {},
	"this": {}, "to": {}, "was": {}, "with": {}, "you": {},
	"oh": {}, "ooh": {}, "ah": {}, "yeah": {}, "hey": {}, "la": {}, "na": {},
	"da": {}, "whoa": {},
}

// words lowercases text and splits it on anything that is not a letter,
// digit or apostrophe. Stop words and bare apostrophes are dropped.
func words(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\'' && r != '’'
	})

	out := fields[:0]
	for _, field := range fields {
		field = strings.Trim(field, "'’")
		if field == "" {
			continue
		}
		if _, stop := stopWords[field]; stop {
			continue
		}
		out = append(out, field)
	}
	return out
}

// containsAllQueryWords reports whether every significant query word occurs
// in text. A query made only of stop words never matches.
func containsAllQueryWords(text, query string) bool {
	queryWords := words(query)
	if len(queryWords) == 0 {
		return false
	}

	present := make(map[string]struct{})
	for _, word := range words(text) {
		present[word] = struct{}{}
	}
	for _, word := range queryWords {
		if _, ok := present[word]; !ok {
			return false
		}
	}
	return true
}
