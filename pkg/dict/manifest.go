package dict

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Manifest is the on-disk form of a lexicon: the concept table and the typo
// rules, plus identification.
type Manifest struct {
	ID              string         `yaml:"id" json:"id"`
	Version         string         `yaml:"version" json:"version"`
	Description     string         `yaml:"description" json:"description,omitempty"`
	MinExpandLength int            `yaml:"min_expand_length" json:"min_expand_length,omitempty"`
	Concepts        []ConceptEntry `yaml:"concepts" json:"-"`
	Typos           []TypoRule     `yaml:"typos" json:"-"`
}

// Lexicon bundles the immutable lookup tables the search engine runs on.
type Lexicon struct {
	Manifest *Manifest
	Intents  *IntentMap
	Typos    *TypoTable
}

// LexiconOptions tune a programmatically built lexicon.
type LexiconOptions struct {
	MinExpandLength int
}

// NewLexicon builds a lexicon from in-memory tables.
func NewLexicon(concepts []ConceptEntry, typos []TypoRule, opts *LexiconOptions) *Lexicon {
	m := &Manifest{ID: "inline", Concepts: concepts, Typos: typos}
	if opts != nil {
		m.MinExpandLength = opts.MinExpandLength
	}
	return m.build()
}

func (m *Manifest) build() *Lexicon {
	return &Lexicon{
		Manifest: m,
		Intents:  NewIntentMap(m.Concepts, m.MinExpandLength),
		Typos:    NewTypoTable(m.Typos),
	}
}

// ParseLexicon parses a YAML lexicon manifest.
func ParseLexicon(data []byte) (*Lexicon, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse lexicon: %w", err)
	}
	if m.ID == "" {
		return nil, fmt.Errorf("lexicon: missing id")
	}
	if m.MinExpandLength < 0 {
		return nil, fmt.Errorf("lexicon %s: min_expand_length must be >= 0", m.ID)
	}
	lex := m.build()
	if n := lex.Intents.DuplicateKeys(); n > 0 {
		slog.Warn("concept key collisions after normalization", "lexicon", m.ID, "collisions", n)
	}
	return lex, nil
}

// LoadLexicon reads and parses a lexicon manifest file.
func LoadLexicon(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon %s: %w", path, err)
	}
	lex, err := ParseLexicon(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lex, nil
}

//go:embed lexicon.yaml
var defaultLexiconData []byte

var (
	defaultOnce    sync.Once
	defaultLexicon *Lexicon
)

// DefaultLexicon returns the built-in marketplace lexicon. It panics if the
// embedded manifest does not parse.
func DefaultLexicon() *Lexicon {
	defaultOnce.Do(func() {
		lex, err := ParseLexicon(defaultLexiconData)
		if err != nil {
			panic(fmt.Sprintf("dict: embedded lexicon: %v", err))
		}
		defaultLexicon = lex
	})
	return defaultLexicon
}
