package api

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hazyhaar/souk-search/pkg/kit"
	"github.com/hazyhaar/souk-search/pkg/search"
	"golang.org/x/sync/errgroup"
)

// MaxBatchQueries caps a batch search request.
const MaxBatchQueries = 50

// batchWorkers bounds how many queries of one batch run at once.
const batchWorkers = 8

// Shared request/response types used by both HTTP and MCP transports.

type searchReq struct {
	Query         string
	Limit         int
	CategoryLimit int
}

type batchReq struct {
	Queries []string
	Limit   int
}

type queryReq struct {
	Query string
}

type highlightReq struct {
	Text  string
	Query string
}

type batchResponse struct {
	Results []*search.Result `json:"results"`
}

type suggestResponse struct {
	Query       string   `json:"query"`
	Suggestions []string `json:"suggestions"`
}

type intentResponse struct {
	Query  string         `json:"query"`
	Intent *search.Intent `json:"intent"`
}

type highlightResponse struct {
	HTML string `json:"html"`
}

type healthResponse struct {
	Status      string `json:"status"`
	Services    int    `json:"services"`
	Categories  int    `json:"categories"`
	Fingerprint string `json:"fingerprint"`
	Concepts    int    `json:"concepts"`
}

// endpoints holds every kit.Endpoint backed by one Backend.
type endpoints struct {
	search    kit.Endpoint
	batch     kit.Endpoint
	suggest   kit.Endpoint
	intent    kit.Endpoint
	highlight kit.Endpoint
	health    kit.Endpoint
}

func newEndpoints(b *Backend, logger *slog.Logger) *endpoints {
	wrap := func(name string, ep kit.Endpoint) kit.Endpoint {
		return kit.Chain(kit.RequestID(), kit.Logging(logger, name))(ep)
	}
	return &endpoints{
		search:    wrap("search", searchEndpoint(b)),
		batch:     wrap("search_batch", batchEndpoint(b)),
		suggest:   wrap("suggest", suggestEndpoint(b)),
		intent:    wrap("detect_intent", intentEndpoint(b)),
		highlight: wrap("highlight", highlightEndpoint()),
		health:    wrap("health", healthEndpoint(b)),
	}
}

func (b *Backend) options(limit, categoryLimit int) *search.Options {
	if limit <= 0 {
		limit = b.limits.Services
	}
	if categoryLimit <= 0 {
		categoryLimit = b.limits.Categories
	}
	return &search.Options{Limit: limit, CategoryLimit: categoryLimit}
}

func searchEndpoint(b *Backend) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*searchReq)
		eng, _ := b.Engine()
		return eng.Search(req.Query, b.options(req.Limit, req.CategoryLimit)), nil
	}
}

func batchEndpoint(b *Backend) kit.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(*batchReq)
		if len(req.Queries) == 0 {
			return nil, fmt.Errorf("queries array is empty")
		}
		if len(req.Queries) > MaxBatchQueries {
			return nil, fmt.Errorf("too many queries (max %d, got %d)", MaxBatchQueries, len(req.Queries))
		}

		// One engine for the whole batch so every query sees the same catalog.
		eng, _ := b.Engine()
		opts := b.options(req.Limit, 0)
		results := make([]*search.Result, len(req.Queries))

		g, ctx := errgroup.WithContext(ctx)
		g.SetLimit(batchWorkers)
		for i, q := range req.Queries {
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				results[i] = eng.Search(q, opts)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("batch search: %w", err)
		}
		return batchResponse{Results: results}, nil
	}
}

func suggestEndpoint(b *Backend) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*queryReq)
		eng, _ := b.Engine()
		hints := eng.GetSuggestions(req.Query)
		if hints == nil {
			hints = []string{}
		}
		return suggestResponse{Query: req.Query, Suggestions: hints}, nil
	}
}

func intentEndpoint(b *Backend) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*queryReq)
		eng, _ := b.Engine()
		return intentResponse{Query: req.Query, Intent: eng.DetectIntent(req.Query)}, nil
	}
}

func highlightEndpoint() kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*highlightReq)
		return highlightResponse{HTML: search.HighlightMatches(req.Text, req.Query)}, nil
	}
}

func healthEndpoint(b *Backend) kit.Endpoint {
	return func(_ context.Context, _ any) (any, error) {
		_, snap := b.Engine()
		return healthResponse{
			Status:      "ok",
			Services:    len(snap.Services),
			Categories:  len(snap.Categories),
			Fingerprint: fmt.Sprintf("%016x", snap.Fingerprint),
			Concepts:    b.lex.Intents.Len(),
		}, nil
	}
}
