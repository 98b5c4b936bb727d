package search

import "unicode/utf8"

const (
	maxSemanticSuggestions = 3
	maxCategorySuggestions = 2
	maxSuggestions         = 5
	// suggestionWindow is how many top services feed category suggestions.
	suggestionWindow = 5
	// minSuggestionLen drops expanded terms too short to be useful queries.
	minSuggestionLen = 3
)

// suggest derives follow-up queries: up to three expanded terms, then up to
// two categories seen among the top-ranked services.
func suggest(q *query, ranked []ScoredCandidate, categories []Candidate) []Suggestion {
	out := make([]Suggestion, 0, maxSuggestions)

	semantic := 0
	for _, term := range q.expandedSorted {
		if semantic == maxSemanticSuggestions {
			break
		}
		if term == q.normalized || utf8.RuneCountInString(term) < minSuggestionLen {
			continue
		}
		out = append(out, Suggestion{Type: SuggestSemantic, Text: term})
		semantic++
	}

	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Title
	}

	seen := make(map[string]bool)
	for i := 0; i < len(ranked) && i < suggestionWindow; i++ {
		if len(seen) == maxCategorySuggestions {
			break
		}
		id := ranked[i].Candidate.CategoryID
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		name := names[id]
		if name == "" {
			name = id
		}
		out = append(out, Suggestion{Type: SuggestCategory, Text: name, CategoryID: id})
	}

	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}
