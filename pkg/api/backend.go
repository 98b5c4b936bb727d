package api

import (
	"sync"

	"github.com/hazyhaar/souk-search/pkg/catalog"
	"github.com/hazyhaar/souk-search/pkg/dict"
	"github.com/hazyhaar/souk-search/pkg/search"
)

// Limits are the result caps applied when a request does not set its own.
type Limits struct {
	Services   int
	Categories int
}

// Backend pairs the lexicon with the live catalog. The engine is rebuilt
// lazily whenever the holder publishes a new snapshot.
type Backend struct {
	lex    *dict.Lexicon
	holder *catalog.Holder
	limits Limits

	mu   sync.Mutex
	snap *catalog.Snapshot
	eng  *search.Engine
}

// NewBackend creates a backend. A nil lexicon means the built-in default.
func NewBackend(lex *dict.Lexicon, holder *catalog.Holder, limits Limits) *Backend {
	if lex == nil {
		lex = dict.DefaultLexicon()
	}
	if limits.Services <= 0 {
		limits.Services = search.DefaultLimit
	}
	if limits.Categories <= 0 {
		limits.Categories = search.DefaultCategoryLimit
	}
	return &Backend{lex: lex, holder: holder, limits: limits}
}

// Engine returns an engine bound to the current catalog snapshot.
func (b *Backend) Engine() (*search.Engine, *catalog.Snapshot) {
	snap := b.holder.Current()

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.eng == nil || b.snap != snap {
		b.eng = search.New(b.lex, search.WithCatalog(snap.Services, snap.Categories))
		b.snap = snap
	}
	return b.eng, snap
}

// Lexicon returns the lexicon shared by every engine.
func (b *Backend) Lexicon() *dict.Lexicon {
	return b.lex
}
