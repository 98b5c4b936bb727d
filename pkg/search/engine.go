package search

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hazyhaar/souk-search/pkg/dict"
)

const (
	DefaultLimit         = 8
	DefaultCategoryLimit = 3
	// MinQueryLength is the shortest trimmed query, in runes, that is searched.
	MinQueryLength = 2
	// maxExpandedInMeta caps the expanded terms echoed back in Meta.
	maxExpandedInMeta = 10
)

// Engine ranks candidates against queries using an immutable lexicon.
type Engine struct {
	lex        *dict.Lexicon
	services   []Candidate
	categories []Candidate
	now        func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithCatalog sets the default candidates used when a search passes none.
// The slices are copied.
func WithCatalog(services, categories []Candidate) Option {
	return func(e *Engine) {
		e.services = append([]Candidate(nil), services...)
		e.categories = append([]Candidate(nil), categories...)
	}
}

// WithClock replaces the clock used for Meta.Took.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates an engine over lex. A nil lexicon means the built-in default.
func New(lex *dict.Lexicon, opts ...Option) *Engine {
	if lex == nil {
		lex = dict.DefaultLexicon()
	}
	e := &Engine{lex: lex, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Lexicon returns the engine's lexicon.
func (e *Engine) Lexicon() *dict.Lexicon {
	return e.lex
}

// prepare corrects and normalizes a raw query. ok is false when the query is
// too short to search.
func (e *Engine) prepare(raw string) (corrected, normalized string, ok bool) {
	trimmed := strings.TrimSpace(raw)
	if utf8.RuneCountInString(trimmed) < MinQueryLength {
		return "", "", false
	}
	corrected = e.lex.Typos.Correct(trimmed)
	normalized = dict.Normalize(corrected)
	if normalized == "" {
		return corrected, "", false
	}
	return corrected, normalized, true
}

// Search ranks services and categories against raw. It never fails: a query
// shorter than MinQueryLength runes yields an empty result.
func (e *Engine) Search(raw string, opts *Options) *Result {
	start := e.now()
	corrected, normalized, ok := e.prepare(raw)
	if !ok {
		return emptyResult(raw)
	}

	var o Options
	if opts != nil {
		o = *opts
	}
	services := o.Candidates
	if services == nil {
		services = e.services
	}
	categories := o.Categories
	if categories == nil {
		categories = e.categories
	}
	limit := o.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	catLimit := o.CategoryLimit
	if catLimit <= 0 {
		catLimit = DefaultCategoryLimit
	}

	q := newQuery(normalized, e.lex.Intents.ExpandQuery(normalized))

	rankedServices := rank(services, q, scoreService)
	rankedCategories := rank(categories, q, scoreCategory)
	count := len(rankedServices) + len(rankedCategories)

	res := &Result{
		Services:    truncate(rankedServices, limit),
		Categories:  truncate(rankedCategories, catLimit),
		Suggestions: suggest(q, rankedServices, categories),
		Meta: Meta{
			Query:      raw,
			Normalized: normalized,
			Expanded:   truncateStrings(q.expandedSorted, maxExpandedInMeta),
			Count:      count,
		},
	}
	if corrected != strings.TrimSpace(raw) {
		res.Meta.Corrected = corrected
	}
	res.Meta.Took = e.now().Sub(start)
	return res
}

// rank scores every candidate, drops non-positive scores and sorts by score
// descending. Equal scores keep input order.
func rank(candidates []Candidate, q *query, score func(*query, Candidate) ScoredCandidate) []ScoredCandidate {
	out := make([]ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		sc := score(q, c)
		if sc.Score > 0 {
			out = append(out, sc)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func truncate(s []ScoredCandidate, n int) []ScoredCandidate {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func truncateStrings(s []string, n int) []string {
	if len(s) > n {
		return append([]string(nil), s[:n]...)
	}
	return append([]string{}, s...)
}
