package search

import (
	"strings"
	"unicode"
)

// Stop words dropped before indexing and query matching
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true,
}

// tokenizeAndFilter lowercases text and breaks it into alphanumeric terms.
// Measurements like "25ft" stay whole, and hyphenated part numbers like
// "DRL-100" are indexed both joined and split so a query matches either
// form. Stop words and empty terms are dropped.
func tokenizeAndFilter(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	terms := make([]string, 0, len(fields))

	for _, field := range fields {
		field = strings.Trim(field, ".,!?;:'\"()[]{}")
		if field == "" {
			continue
		}

		parts := strings.FieldsFunc(field, isTermSeparator)
		for _, part := range parts {
			if !stopWords[part] {
				terms = append(terms, part)
			}
		}
		if len(parts) > 1 && isPartNumber(field) {
			terms = append(terms, field)
		}
	}

	return terms
}

func isTermSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// isPartNumber reports whether a field is an alphanumeric compound joined
// only by hyphens, like a SKU.
func isPartNumber(field string) bool {
	hyphens := 0
	for _, r := range field {
		if r == '-' {
			hyphens++
			continue
		}
		if isTermSeparator(r) {
			return false
		}
	}
	return hyphens > 0
}

// containsAllQueryWords reports whether every query term appears in the
// document. Used for the verbatim-match boost in hybrid search.
func containsAllQueryWords(document, query string) bool {
	queryTerms := tokenizeAndFilter(query)
	if len(queryTerms) == 0 {
		return false
	}

	docTerms := make(map[string]bool)
	for _, term := range tokenizeAndFilter(document) {
		docTerms[term] = true
	}

	for _, term := range queryTerms {
		if !docTerms[term] {
			return false
		}
	}
	return true
}
