package search

import (
	"strings"

	"github.com/hazyhaar/souk-search/pkg/dict"
)

// Signal weights. Scores are unbounded sums so that candidates matching on
// several signals at once rise above single-signal matches.
const (
	WeightExact            = 100
	WeightPartial          = 30
	WeightSemantic         = 80
	WeightFuzzyHigh        = 60
	WeightFuzzyMedium      = 40
	WeightTagExact         = 50
	WeightTagSemantic      = WeightSemantic / 2
	WeightTagFuzzy         = WeightFuzzyMedium / 2
	WeightCategoryExact    = 70
	WeightCategorySemantic = 80
)

// Similarity thresholds for the fuzzy signals. The high threshold is
// inclusive; the medium and tag thresholds must be exceeded.
const (
	FuzzyHighThreshold   = 0.8
	FuzzyMediumThreshold = 0.6
	TagFuzzyThreshold    = 0.7
)

// query is the per-search working form of the caller's query.
type query struct {
	normalized string
	words      []string
	wordSet    map[string]bool
	expanded   dict.TermSet
	// expandedSorted fixes iteration order so traces are reproducible.
	expandedSorted []string
}

func newQuery(normalized string, expanded dict.TermSet) *query {
	q := &query{
		normalized:     normalized,
		words:          strings.Fields(normalized),
		expanded:       expanded,
		expandedSorted: expanded.Sorted(),
	}
	q.wordSet = make(map[string]bool, len(q.words))
	for _, w := range q.words {
		q.wordSet[w] = true
	}
	return q
}

// isQueryTerm reports whether term is the query itself or one of its words;
// those are already covered by the exact and partial signals.
func (q *query) isQueryTerm(term string) bool {
	return term == q.normalized || q.wordSet[term]
}

type scorer struct {
	score   int
	matched []MatchedTerm
}

func (s *scorer) add(weight int, t MatchType, term string, strength float64) {
	s.score += weight
	s.matched = append(s.matched, MatchedTerm{Type: t, Term: term, Strength: strength})
}

// scoreService computes the score of one service candidate.
func scoreService(q *query, c Candidate) ScoredCandidate {
	var s scorer
	title := dict.Normalize(c.Title)
	titleWords := strings.Fields(title)

	if title != "" {
		if strings.Contains(title, q.normalized) {
			s.add(WeightExact, MatchExact, q.normalized, 0)
		}

		for _, w := range q.words {
			if strings.Contains(title, w) {
				s.add(WeightPartial, MatchPartial, w, 0)
			}
		}

		for _, term := range q.expandedSorted {
			if q.isQueryTerm(term) {
				continue
			}
			if strings.Contains(title, term) {
				s.add(WeightSemantic, MatchSemantic, term, 0)
			}
		}

		// Fuzzy covers near misses: words the title does not already contain.
		for _, w := range q.words {
			if strings.Contains(title, w) {
				continue
			}
			best := bestSimilarity(w, titleWords)
			switch {
			case atLeast(best, FuzzyHighThreshold):
				s.add(WeightFuzzyHigh, MatchFuzzy, w, best)
			case above(best, FuzzyMediumThreshold):
				s.add(WeightFuzzyMedium, MatchFuzzy, w, best)
			}
		}
	}

	for _, raw := range c.Tags {
		tag := dict.Normalize(raw)
		if tag == "" {
			continue
		}
		switch {
		case tag == q.normalized || q.wordSet[tag]:
			s.add(WeightTagExact, MatchTag, tag, 0)
		case q.expanded.Has(tag):
			s.add(WeightTagSemantic, MatchSemanticTag, tag, 0)
		default:
			if best := bestSimilarity(tag, q.words); above(best, TagFuzzyThreshold) {
				s.add(WeightTagFuzzy, MatchFuzzy, tag, best)
			}
		}
	}

	return s.result(c)
}

// scoreCategory computes the score of one category candidate. Only the
// category-specific signals apply.
func scoreCategory(q *query, c Candidate) ScoredCandidate {
	var s scorer
	name := dict.Normalize(c.Title)
	id := dict.Normalize(c.ID)

	if name != "" && strings.Contains(name, q.normalized) {
		s.add(WeightCategoryExact, MatchExact, q.normalized, 0)
	}

	aliases := make([]string, 0, len(c.Tags))
	for _, a := range c.Tags {
		if na := dict.Normalize(a); na != "" {
			aliases = append(aliases, na)
		}
	}
	for _, term := range q.expandedSorted {
		if (name != "" && strings.Contains(name, term)) || term == id || contains(aliases, term) {
			s.add(WeightCategorySemantic, MatchSemantic, term, 0)
			break
		}
	}

	return s.result(c)
}

func (s *scorer) result(c Candidate) ScoredCandidate {
	matched := s.matched
	if matched == nil {
		matched = []MatchedTerm{}
	}
	return ScoredCandidate{
		Candidate: c,
		Score:     s.score,
		Kind:      classify(s.score),
		Matched:   matched,
	}
}

func bestSimilarity(word string, others []string) float64 {
	best := 0.0
	for _, o := range others {
		if sim := similarity(word, o); sim > best {
			best = sim
		}
	}
	return best
}

// classify buckets a score for display.
func classify(score int) Kind {
	switch {
	case score >= 100:
		return KindExact
	case score >= 70:
		return KindHigh
	case score >= 40:
		return KindMedium
	default:
		return KindLow
	}
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
