package missav

import (
	"regexp"
	"strings"
)

// Word tokenization includes non-ASCII letters; most titles here are
// Japanese.
var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

func tokenize(s string) []string {
	return wordPattern.FindAllString(strings.ToLower(s), -1)
}

// IsRelevant reports whether a candidate title is close enough to the search
// title to keep: either the search title appears verbatim inside the
// candidate, or at least half of the search title's tokens do.
func IsRelevant(candidateTitle, searchTitle string) bool {
	if candidateTitle == "" || searchTitle == "" {
		return false
	}
	candidate := strings.ToLower(candidateTitle)
	search := strings.ToLower(searchTitle)
	if strings.Contains(candidate, search) {
		return true
	}

	searchWords := tokenize(search)
	if len(searchWords) == 0 {
		return false
	}
	candidateWords := map[string]struct{}{}
	for _, w := range tokenize(candidate) {
		candidateWords[w] = struct{}{}
	}
	matches := 0
	for _, w := range searchWords {
		if _, ok := candidateWords[w]; ok {
			matches++
		}
	}
	return float64(matches)/float64(len(searchWords)) >= 0.5
}

// Relevance scores how well a candidate title matches the search title:
// 1.0 for case-insensitive equality, 0.8 for substring containment, else
// the Jaccard similarity of the two token sets.
func Relevance(candidateTitle, searchTitle string) float64 {
	if candidateTitle == "" || searchTitle == "" {
		return 0
	}
	candidate := strings.ToLower(candidateTitle)
	search := strings.ToLower(searchTitle)

	if candidate == search {
		return 1.0
	}
	if strings.Contains(candidate, search) {
		return 0.8
	}

	searchWords := tokenSet(search)
	if len(searchWords) == 0 {
		return 0
	}
	candidateWords := tokenSet(candidate)

	intersection := 0
	for w := range searchWords {
		if _, ok := candidateWords[w]; ok {
			intersection++
		}
	}
	union := len(searchWords) + len(candidateWords) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, w := range wordPattern.FindAllString(s, -1) {
		set[w] = struct{}{}
	}
	return set
}
