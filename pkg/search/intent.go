package search

import (
	"sort"
	"strings"

	"github.com/hazyhaar/souk-search/pkg/dict"
)

// MaxHints caps GetSuggestions output.
const MaxHints = 8

// Intent is a best-effort single classification of a query: either a
// catalog category, or a concept from the lexicon.
type Intent struct {
	Category *Candidate `json:"category,omitempty"`
	Concept  string     `json:"concept,omitempty"`
	Related  []string   `json:"related,omitempty"`
}

// DetectIntent classifies query. Categories from the engine catalog win over
// lexicon concepts; nil means nothing matched.
func (e *Engine) DetectIntent(query string) *Intent {
	_, normalized, ok := e.prepare(query)
	if !ok {
		return nil
	}

	for i := range e.categories {
		c := e.categories[i]
		name := dict.Normalize(c.Title)
		if (name != "" && (strings.Contains(name, normalized) || strings.Contains(normalized, name))) ||
			dict.Normalize(c.ID) == normalized {
			return &Intent{Category: &c}
		}
	}

	if concept, ok := e.lex.Intents.Match(normalized); ok {
		return &Intent{Concept: concept.Key, Related: concept.Related}
	}
	return nil
}

// GetSuggestions returns autocomplete hints for a partial query: related
// terms from the lexicon, those starting with the query first, then
// matching category names.
func (e *Engine) GetSuggestions(partial string) []string {
	_, normalized, ok := e.prepare(partial)
	if !ok {
		return nil
	}

	var prefixed, rest []string
	for _, term := range e.lex.Intents.ExpandQuery(normalized).Sorted() {
		switch {
		case term == normalized:
			// the query itself is not a hint
		case strings.HasPrefix(term, normalized):
			prefixed = append(prefixed, term)
		default:
			rest = append(rest, term)
		}
	}

	hints := make([]string, 0, MaxHints)
	seen := make(map[string]bool)
	for _, group := range [][]string{prefixed, rest} {
		for _, term := range group {
			if len(hints) == MaxHints {
				return hints
			}
			hints = append(hints, term)
			seen[term] = true
		}
	}

	names := make([]string, 0, len(e.categories))
	for _, c := range e.categories {
		if name := dict.Normalize(c.Title); name != "" && strings.Contains(name, normalized) && !seen[name] {
			names = append(names, name)
			seen[name] = true
		}
	}
	sort.Strings(names)
	for _, name := range names {
		if len(hints) == MaxHints {
			break
		}
		hints = append(hints, name)
	}
	return hints
}
