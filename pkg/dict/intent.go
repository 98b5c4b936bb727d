package dict

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// ConceptEntry links a canonical concept key to related terms: synonyms,
// transliterations and sub-concepts.
type ConceptEntry struct {
	Key     string   `yaml:"key" json:"key"`
	Related []string `yaml:"related" json:"related"`
}

// concept is a ConceptEntry with every form pre-normalized.
type concept struct {
	entry   ConceptEntry
	key     string
	related []string
}

// IntentMap is the concept graph used for query expansion. Entries are stored
// directionally but looked up as an undirected graph, one hop deep.
// An IntentMap is immutable after construction and safe for concurrent use.
type IntentMap struct {
	concepts      []concept
	minExpandLen  int
	duplicateKeys int
}

// TermSet is a set of normalized terms.
type TermSet map[string]struct{}

// Add inserts a non-empty term.
func (s TermSet) Add(term string) {
	if term != "" {
		s[term] = struct{}{}
	}
}

// Has reports whether term is in the set.
func (s TermSet) Has(term string) bool {
	_, ok := s[term]
	return ok
}

// Sorted returns the members in lexicographic order.
func (s TermSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// NewIntentMap normalizes entries and builds the map. Entries with an empty
// key are dropped. minExpandLen is the minimum rune length a term needs
// before it is looked up at all; 0 disables the guard.
func NewIntentMap(entries []ConceptEntry, minExpandLen int) *IntentMap {
	m := &IntentMap{
		concepts:     make([]concept, 0, len(entries)),
		minExpandLen: minExpandLen,
	}
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		key := Normalize(e.Key)
		if key == "" {
			continue
		}
		if seen[key] {
			m.duplicateKeys++
		}
		seen[key] = true

		c := concept{entry: e, key: key, related: make([]string, 0, len(e.Related))}
		for _, r := range e.Related {
			if nr := Normalize(r); nr != "" {
				c.related = append(c.related, nr)
			}
		}
		m.concepts = append(m.concepts, c)
	}
	return m
}

// Len returns the number of concept entries.
func (m *IntentMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.concepts)
}

// DuplicateKeys returns how many entries shared a key with an earlier entry
// after normalization.
func (m *IntentMap) DuplicateKeys() int {
	if m == nil {
		return 0
	}
	return m.duplicateKeys
}

// Entries returns the original entries in stored order.
func (m *IntentMap) Entries() []ConceptEntry {
	if m == nil {
		return nil
	}
	out := make([]ConceptEntry, len(m.concepts))
	for i, c := range m.concepts {
		out[i] = c.entry
	}
	return out
}

func overlaps(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// matches reports whether term hits concept c: either term and the key
// contain one another, or term and one of the related terms do.
func (c *concept) matches(term string) bool {
	if overlaps(c.key, term) {
		return true
	}
	for _, r := range c.related {
		if overlaps(r, term) {
			return true
		}
	}
	return false
}

func (m *IntentMap) eligible(term string) bool {
	if term == "" {
		return false
	}
	return m.minExpandLen <= 0 || utf8.RuneCountInString(term) >= m.minExpandLen
}

// Expand returns the key and related terms of every concept that term hits.
// term must already be normalized. Expansion is a single hop: terms found
// through one concept are not expanded again.
func (m *IntentMap) Expand(term string) TermSet {
	out := make(TermSet)
	m.expandInto(out, term)
	return out
}

func (m *IntentMap) expandInto(out TermSet, term string) {
	if m == nil || !m.eligible(term) {
		return
	}
	for i := range m.concepts {
		c := &m.concepts[i]
		if !c.matches(term) {
			continue
		}
		out.Add(c.key)
		for _, r := range c.related {
			out.Add(r)
		}
	}
}

// ExpandQuery expands the whole normalized query and each of its words,
// returning the union.
func (m *IntentMap) ExpandQuery(normalizedQuery string) TermSet {
	out := make(TermSet)
	m.expandInto(out, normalizedQuery)
	words := strings.Fields(normalizedQuery)
	if len(words) > 1 {
		for _, w := range words {
			m.expandInto(out, w)
		}
	}
	return out
}

// Concept is a matched entry in normalized form.
type Concept struct {
	Key     string   `json:"key"`
	Related []string `json:"related"`
}

// Match returns the first concept, in stored order, that term hits.
func (m *IntentMap) Match(term string) (Concept, bool) {
	if m == nil || !m.eligible(term) {
		return Concept{}, false
	}
	for i := range m.concepts {
		c := &m.concepts[i]
		if c.matches(term) {
			return Concept{Key: c.key, Related: append([]string(nil), c.related...)}, true
		}
	}
	return Concept{}, false
}
