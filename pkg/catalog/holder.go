package catalog

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/hazyhaar/souk-search/pkg/search"
)

// Snapshot is an immutable, in-memory copy of the catalog.
type Snapshot struct {
	Services    []search.Candidate
	Categories  []search.Candidate
	Fingerprint uint64
	LoadedAt    time.Time
}

// Source supplies catalog contents. *Store implements it.
type Source interface {
	Services(ctx context.Context) ([]search.Candidate, error)
	Categories(ctx context.Context) ([]search.Candidate, error)
}

// Holder keeps the current Snapshot and swaps it atomically on reload.
type Holder struct {
	mu     sync.RWMutex
	snap   *Snapshot
	src    Source
	logger *slog.Logger
}

// NewHolder creates a holder with an empty snapshot.
func NewHolder(src Source, logger *slog.Logger) *Holder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Holder{
		snap:   &Snapshot{Fingerprint: Fingerprint(nil, nil)},
		src:    src,
		logger: logger,
	}
}

// Load reads the full catalog from the source and replaces the snapshot.
// On error the previous snapshot stays in place.
func (h *Holder) Load(ctx context.Context) error {
	categories, err := h.src.Categories(ctx)
	if err != nil {
		return err
	}
	services, err := h.src.Services(ctx)
	if err != nil {
		return err
	}
	snap := &Snapshot{
		Services:    services,
		Categories:  categories,
		Fingerprint: Fingerprint(services, categories),
		LoadedAt:    time.Now(),
	}

	h.mu.Lock()
	prev := h.snap
	h.snap = snap
	h.mu.Unlock()

	h.logger.Info("catalog loaded",
		"services", len(services),
		"categories", len(categories),
		"fingerprint", snap.Fingerprint,
		"changed", prev.Fingerprint != snap.Fingerprint,
	)
	return nil
}

// Reload is Load under the name used by the SIGHUP handler.
func (h *Holder) Reload(ctx context.Context) error {
	return h.Load(ctx)
}

// Current returns the active snapshot. Callers must not modify it.
func (h *Holder) Current() *Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.snap
}

// Fingerprint hashes the searchable content of a catalog. Equal catalogs,
// in the same order, hash equal.
func Fingerprint(services, categories []search.Candidate) uint64 {
	d := xxhash.New()
	write := func(prefix string, cs []search.Candidate) {
		for _, c := range cs {
			d.WriteString(prefix)
			d.WriteString(c.ID)
			d.WriteString("\x1f")
			d.WriteString(c.Title)
			d.WriteString("\x1f")
			d.WriteString(strings.Join(c.Tags, "\x1e"))
			d.WriteString("\x1f")
			d.WriteString(c.CategoryID)
			d.WriteString("\x1d")
		}
	}
	write("c:", categories)
	write("s:", services)
	return d.Sum64()
}
