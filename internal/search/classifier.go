// Package search routes free-text product queries either to a deterministic
// catalog filter or to an external natural-language interpreter, and
// normalizes both into one result shape.
package search

import "strings"

// Mode is the routing decision for a query.
type Mode string

const (
	ModeKeyword Mode = "keyword"
	ModeNatural Mode = "natural-language"
)

// Classifier decides how a query should be routed. The dispatch logic never
// depends on a specific detection strategy, so implementations are
// swappable.
type Classifier interface {
	Classify(text string) Mode
}

// naturalWords are single tokens that signal a natural-language query:
// comparatives, rating vocabulary and boolean connectors.
var naturalWords = map[string]bool{
	"under":   true,
	"below":   true,
	"above":   true,
	"over":    true,
	"between": true,
	"less":    true,
	"more":    true,
	"cheap":   true,
	"best":    true,
	"star":    true,
	"stars":   true,
	"rating":  true,
	"rated":   true,
	"and":     true,
	"or":      true,
}

// naturalPhrases are multi-word intent markers matched as substrings.
var naturalPhrases = []string{
	"show me",
	"i want",
	"i need",
	"looking for",
}

// HeuristicClassifier is the default token-based classifier. A query is
// natural-language when it is at least five characters long and contains
// any marker word or phrase; everything else is a plain keyword lookup.
type HeuristicClassifier struct{}

// NewHeuristicClassifier creates the default classifier.
func NewHeuristicClassifier() *HeuristicClassifier {
	return &HeuristicClassifier{}
}

// Classify routes the given text.
func (*HeuristicClassifier) Classify(text string) Mode {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < 5 {
		return ModeKeyword
	}

	lower := strings.ToLower(trimmed)
	for _, phrase := range naturalPhrases {
		if strings.Contains(lower, phrase) {
			return ModeNatural
		}
	}
	for _, word := range strings.Fields(lower) {
		if naturalWords[strings.Trim(word, ".,!?")] {
			return ModeNatural
		}
	}
	return ModeKeyword
}
