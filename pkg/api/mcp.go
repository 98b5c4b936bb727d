package api

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/hazyhaar/souk-search/pkg/kit"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterMCPTools registers the search MCP tools on the server.
func RegisterMCPTools(srv *server.MCPServer, b *Backend, logger *slog.Logger) {
	ep := newEndpoints(b, logger)
	for _, t := range mcpTools(ep) {
		kit.RegisterMCPTool(srv, t.tool, t.endpoint, t.decode)
	}
}

type mcpTool struct {
	tool     mcp.Tool
	endpoint kit.Endpoint
	decode   func(mcp.CallToolRequest) (*kit.MCPDecodeResult, error)
}

func mcpTools(ep *endpoints) []mcpTool {
	return []mcpTool{
		{
			tool: mcp.NewTool("search",
				mcp.WithDescription("Rank marketplace services and categories for a free-text query in Arabic or English. Handles typos, diacritics and related concepts."),
				mcp.WithString("query", mcp.Required(), mcp.Description("The search query")),
				requestIDParam,
				mcp.WithNumber("limit", mcp.Description("Maximum services to return (default 8)")),
				mcp.WithNumber("category_limit", mcp.Description("Maximum categories to return (default 3)")),
			),
			endpoint: ep.search,
			decode:   decodeSearch,
		},
		{
			tool: mcp.NewTool("search_batch",
				mcp.WithDescription("Run up to 50 searches in one call."),
				mcp.WithString("queries", mcp.Required(), mcp.Description("Comma-separated list of queries")),
				requestIDParam,
				mcp.WithNumber("limit", mcp.Description("Maximum services per query")),
			),
			endpoint: ep.batch,
			decode:   decodeBatch,
		},
		{
			tool: mcp.NewTool("suggest",
				mcp.WithDescription("Autocomplete hints for a partial query."),
				mcp.WithString("query", mcp.Required(), mcp.Description("The partial query")),
				requestIDParam,
			),
			endpoint: ep.suggest,
			decode:   decodeQuery,
		},
		{
			tool: mcp.NewTool("detect_intent",
				mcp.WithDescription("Classify a query as a catalog category or a known concept."),
				mcp.WithString("query", mcp.Required(), mcp.Description("The query to classify")),
				requestIDParam,
			),
			endpoint: ep.intent,
			decode:   decodeQuery,
		},
		{
			tool: mcp.NewTool("highlight",
				mcp.WithDescription("Wrap occurrences of the query words in text with <mark> tags, diacritic and case insensitive."),
				mcp.WithString("text", mcp.Required(), mcp.Description("The text to mark up")),
				mcp.WithString("query", mcp.Required(), mcp.Description("The words to highlight")),
				requestIDParam,
			),
			endpoint: ep.highlight,
			decode:   decodeHighlight,
		},
	}
}

// requestIDParam lets MCP callers correlate tool calls with server logs.
var requestIDParam = mcp.WithString("request_id", mcp.Description("Optional ID logged with this call"))

// decoded wraps request and, when the caller passed request_id, carries it
// into the endpoint context.
func decoded(args map[string]any, request any) *kit.MCPDecodeResult {
	res := &kit.MCPDecodeResult{Request: request}
	if id := strings.TrimSpace(argString(args, "request_id")); id != "" {
		res.EnrichCtx = func(ctx context.Context) context.Context {
			return kit.WithRequestID(ctx, id)
		}
	}
	return res
}

func argString(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

// argInt accepts JSON numbers; anything else reads as 0, the default.
func argInt(args map[string]any, key string) int {
	if v, ok := args[key].(float64); ok && v > 0 {
		return min(int(v), MaxLimit)
	}
	return 0
}

func decodeSearch(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
	args := req.GetArguments()
	return decoded(args, &searchReq{
		Query:         argString(args, "query"),
		Limit:         argInt(args, "limit"),
		CategoryLimit: argInt(args, "category_limit"),
	}), nil
}

func decodeBatch(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
	args := req.GetArguments()
	raw := argString(args, "queries")
	if strings.TrimSpace(raw) == "" {
		return nil, errors.New("queries is required")
	}
	queries := strings.Split(raw, ",")
	for i := range queries {
		queries[i] = strings.TrimSpace(queries[i])
	}
	return decoded(args, &batchReq{Queries: queries, Limit: argInt(args, "limit")}), nil
}

func decodeQuery(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
	args := req.GetArguments()
	return decoded(args, &queryReq{Query: argString(args, "query")}), nil
}

func decodeHighlight(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
	args := req.GetArguments()
	return decoded(args, &highlightReq{
		Text:  argString(args, "text"),
		Query: argString(args, "query"),
	}), nil
}
