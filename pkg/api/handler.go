package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/hazyhaar/souk-search/pkg/kit"
)

// MaxLimit caps the limit and category_limit query parameters.
const MaxLimit = 100

// NewRouter returns an http.Handler with all search API routes.
func NewRouter(b *Backend, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	h := &handler{ep: newEndpoints(b, logger)}

	mux.HandleFunc("GET /v1/search/batch", methodNotAllowed) // prevent GET on batch
	mux.HandleFunc("POST /v1/search/batch", h.handleSearchBatch)
	mux.HandleFunc("GET /v1/search", h.handleSearch)
	mux.HandleFunc("GET /v1/suggest", h.handleSuggest)
	mux.HandleFunc("GET /v1/intent", h.handleIntent)
	mux.HandleFunc("GET /v1/highlight", h.handleHighlight)
	mux.HandleFunc("GET /v1/health", h.handleHealth)

	return securityHeaders(cors(requestID(mux)))
}

type handler struct {
	ep *endpoints
}

// --- search ---

func (h *handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, "limit")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	catLimit, err := parseLimit(r, "category_limit")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.ep.search(r.Context(), &searchReq{
		Query:         r.URL.Query().Get("q"),
		Limit:         limit,
		CategoryLimit: catLimit,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- search batch ---

type httpBatchRequest struct {
	Queries []string `json:"queries"`
	Limit   int      `json:"limit,omitempty"`
}

func (h *handler) handleSearchBatch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 64*1024) // 64 KiB max
	var req httpBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Limit < 0 || req.Limit > MaxLimit {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}

	resp, err := h.ep.batch(r.Context(), &batchReq{Queries: req.Queries, Limit: req.Limit})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- suggest, intent, highlight ---

func (h *handler) handleSuggest(w http.ResponseWriter, r *http.Request) {
	resp, err := h.ep.suggest(r.Context(), &queryReq{Query: r.URL.Query().Get("q")})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleIntent(w http.ResponseWriter, r *http.Request) {
	resp, err := h.ep.intent(r.Context(), &queryReq{Query: r.URL.Query().Get("q")})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleHighlight(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp, err := h.ep.highlight(r.Context(), &highlightReq{Text: q.Get("text"), Query: q.Get("q")})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- health ---

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp, err := h.ep.health(r.Context(), nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- helpers ---

// parseLimit reads an optional positive integer parameter. Missing means 0,
// which the endpoints replace with the configured default.
func parseLimit(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > MaxLimit {
		return 0, &paramError{name: name}
	}
	return n, nil
}

type paramError struct{ name string }

func (e *paramError) Error() string { return "invalid " + e.name }

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// requestID propagates X-Request-ID into the context and echoes the ID the
// endpoints will log under.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if id := r.Header.Get("X-Request-ID"); id != "" {
			ctx = kit.WithRequestID(ctx, id)
		}
		ctx = kit.EnsureRequestID(kit.WithTransport(ctx, "http"))
		w.Header().Set("X-Request-ID", kit.GetRequestID(ctx))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// securityHeaders adds the standard security headers for a JSON API.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}

// cors is a simple CORS middleware for browser-based clients.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		w.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
