package catalog

import (
	"context"
	"fmt"
	"os"

	"github.com/hazyhaar/souk-search/pkg/search"
	"gopkg.in/yaml.v3"
)

// Seed is the YAML import format for a catalog.
type Seed struct {
	Categories []SeedCategory `yaml:"categories"`
	Services   []SeedService  `yaml:"services"`
}

// SeedCategory is one category in a seed file.
type SeedCategory struct {
	ID      string   `yaml:"id"`
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
}

// SeedService is one service in a seed file.
type SeedService struct {
	ID       string   `yaml:"id"`
	Title    string   `yaml:"title"`
	Tags     []string `yaml:"tags"`
	Category string   `yaml:"category"`
}

// LoadSeed reads and parses a seed file.
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed %s: %w", path, err)
	}
	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse seed %s: %w", path, err)
	}
	return &s, nil
}

// Candidates converts the seed to search candidates, in file order.
func (s *Seed) Candidates() (services, categories []search.Candidate) {
	categories = make([]search.Candidate, 0, len(s.Categories))
	for _, c := range s.Categories {
		categories = append(categories, search.Candidate{ID: c.ID, Title: c.Name, Tags: c.Aliases})
	}
	services = make([]search.Candidate, 0, len(s.Services))
	for _, sv := range s.Services {
		services = append(services, search.Candidate{ID: sv.ID, Title: sv.Title, Tags: sv.Tags, CategoryID: sv.Category})
	}
	return services, categories
}

// ImportStats counts what an import wrote.
type ImportStats struct {
	Categories int
	Services   int
}

// Import upserts every category and service in one transaction. File order
// becomes the stored position, so snapshots list candidates in seed order.
// Services that refer to a category missing from both the seed and the
// store are rejected.
func (s *Store) Import(ctx context.Context, seed *Seed) (ImportStats, error) {
	var stats ImportStats
	services, categories := seed.Candidates()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	known := make(map[string]bool, len(categories))
	for i, c := range categories {
		if err := putCategory(ctx, tx, c, i); err != nil {
			return stats, err
		}
		known[c.ID] = true
		stats.Categories++
	}

	for i, sv := range services {
		if sv.CategoryID != "" && !known[sv.CategoryID] {
			var n int
			if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories WHERE id = ?`, sv.CategoryID).Scan(&n); err != nil {
				return stats, fmt.Errorf("check category %s: %w", sv.CategoryID, err)
			}
			if n == 0 {
				return stats, fmt.Errorf("service %s: unknown category %q", sv.ID, sv.CategoryID)
			}
			known[sv.CategoryID] = true
		}
		if err := putService(ctx, tx, sv, i); err != nil {
			return stats, err
		}
		stats.Services++
	}

	if err := tx.Commit(); err != nil {
		return ImportStats{}, fmt.Errorf("commit import: %w", err)
	}
	return stats, nil
}
