package search

import "time"

// Candidate is a record supplied by the caller: a service, or a category when
// passed as a category. The engine never modifies it.
type Candidate struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Tags       []string `json:"tags,omitempty"`
	CategoryID string   `json:"category_id,omitempty"`
}

// MatchType names the signal that produced a MatchedTerm.
type MatchType string

const (
	MatchExact       MatchType = "exact"
	MatchPartial     MatchType = "partial"
	MatchSemantic    MatchType = "semantic"
	MatchSemanticTag MatchType = "semantic-tag"
	MatchFuzzy       MatchType = "fuzzy"
	MatchTag         MatchType = "tag"
)

// MatchedTerm records one signal that contributed to a score.
type MatchedTerm struct {
	Type     MatchType `json:"type"`
	Term     string    `json:"term"`
	Strength float64   `json:"strength,omitempty"`
}

// Kind buckets a total score for display.
type Kind string

const (
	KindExact  Kind = "exact"
	KindHigh   Kind = "high"
	KindMedium Kind = "medium"
	KindLow    Kind = "low"
)

// ScoredCandidate wraps a candidate with its score and match trace.
type ScoredCandidate struct {
	Candidate Candidate     `json:"candidate"`
	Score     int           `json:"score"`
	Kind      Kind          `json:"kind"`
	Matched   []MatchedTerm `json:"matched"`
}

// SuggestionType distinguishes suggestion sources.
type SuggestionType string

const (
	SuggestSemantic SuggestionType = "semantic"
	SuggestCategory SuggestionType = "category"
)

// Suggestion is a follow-up query the UI may offer.
type Suggestion struct {
	Type       SuggestionType `json:"type"`
	Text       string         `json:"text"`
	CategoryID string         `json:"category_id,omitempty"`
}

// Meta describes how a query was processed.
type Meta struct {
	Query      string        `json:"query"`
	Corrected  string        `json:"corrected,omitempty"`
	Normalized string        `json:"normalized"`
	Expanded   []string      `json:"expanded"`
	Took       time.Duration `json:"took_ns"`
	Count      int           `json:"count"`
}

// Result is the output of Engine.Search.
type Result struct {
	Services    []ScoredCandidate `json:"services"`
	Categories  []ScoredCandidate `json:"categories"`
	Suggestions []Suggestion      `json:"suggestions"`
	Meta        Meta              `json:"meta"`
}

// Options tune a single search. Nil slices fall back to the engine catalog;
// zero limits fall back to the defaults.
type Options struct {
	Candidates    []Candidate
	Categories    []Candidate
	Limit         int
	CategoryLimit int
}

func emptyResult(query string) *Result {
	return &Result{
		Services:    []ScoredCandidate{},
		Categories:  []ScoredCandidate{},
		Suggestions: []Suggestion{},
		Meta:        Meta{Query: query, Expanded: []string{}},
	}
}
