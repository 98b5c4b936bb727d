package dict

import (
	"regexp"
)

// TypoRule rewrites a known misspelling to its canonical form.
type TypoRule struct {
	From string `yaml:"from" json:"from"`
	To   string `yaml:"to" json:"to"`
}

type compiledTypo struct {
	rule TypoRule
	re   *regexp.Regexp
}

// TypoTable applies literal, case-insensitive substring replacements before
// normalization. It is immutable and safe for concurrent use.
type TypoTable struct {
	rules []compiledTypo
}

// NewTypoTable compiles rules in order. Rules with an empty From are skipped.
func NewTypoTable(rules []TypoRule) *TypoTable {
	t := &TypoTable{rules: make([]compiledTypo, 0, len(rules))}
	for _, r := range rules {
		if r.From == "" {
			continue
		}
		t.rules = append(t.rules, compiledTypo{
			rule: r,
			re:   regexp.MustCompile("(?i)" + regexp.QuoteMeta(r.From)),
		})
	}
	return t
}

// Correct runs each rule once, in table order, over s. Unknown misspellings
// are left as they are; input containing no known misspelling is returned
// unchanged.
func (t *TypoTable) Correct(s string) string {
	if t == nil {
		return s
	}
	for _, c := range t.rules {
		if !c.re.MatchString(s) {
			continue
		}
		s = c.re.ReplaceAllLiteralString(s, c.rule.To)
	}
	return s
}

// Rules returns a copy of the table's rules.
func (t *TypoTable) Rules() []TypoRule {
	if t == nil {
		return nil
	}
	out := make([]TypoRule, len(t.rules))
	for i, c := range t.rules {
		out[i] = c.rule
	}
	return out
}

// Len returns the number of active rules.
func (t *TypoTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rules)
}
