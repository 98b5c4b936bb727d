package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/hazyhaar/souk-search/pkg/catalog"
	"github.com/hazyhaar/souk-search/pkg/search"
)

type staticSource struct {
	services   []search.Candidate
	categories []search.Candidate
}

func (s *staticSource) Services(context.Context) ([]search.Candidate, error) {
	return s.services, nil
}

func (s *staticSource) Categories(context.Context) ([]search.Candidate, error) {
	return s.categories, nil
}

func testSource() *staticSource {
	return &staticSource{
		services: []search.Candidate{
			{ID: "s1", Title: "تصميم شعار احترافي", Tags: []string{"logo", "شعار"}, CategoryID: "design"},
			{ID: "s2", Title: "مونتاج فيديو", Tags: []string{"video"}, CategoryID: "video"},
			{ID: "s3", Title: "كتابة مقالات", Tags: []string{"writing"}, CategoryID: "writing"},
		},
		categories: []search.Candidate{
			{ID: "design", Title: "تصميم وجرافيك"},
			{ID: "video", Title: "فيديو وانيميشن"},
			{ID: "writing", Title: "كتابة وترجمة"},
		},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupBackend(t *testing.T, src catalog.Source) (*Backend, *catalog.Holder) {
	t.Helper()
	holder := catalog.NewHolder(src, discardLogger())
	if err := holder.Load(context.Background()); err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return NewBackend(nil, holder, Limits{}), holder
}

func setupRouter(t *testing.T) http.Handler {
	t.Helper()
	b, _ := setupBackend(t, testSource())
	return NewRouter(b, discardLogger())
}

func get(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestSearchEndpoint(t *testing.T) {
	router := setupRouter(t)

	w := get(t, router, "/v1/search?q="+url.QueryEscape("شعار"))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("content-type = %q", ct)
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing security headers")
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}

	res := decode[search.Result](t, w)
	if len(res.Services) == 0 || res.Services[0].Candidate.ID != "s1" {
		t.Fatalf("services = %+v, want s1 first", res.Services)
	}
	if res.Meta.Normalized != "شعار" {
		t.Errorf("normalized = %q", res.Meta.Normalized)
	}
}

func TestSearchEndpoint_ShortQuery(t *testing.T) {
	router := setupRouter(t)
	w := get(t, router, "/v1/search?q=a")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	res := decode[search.Result](t, w)
	if res.Services == nil || len(res.Services) != 0 || res.Meta.Count != 0 {
		t.Errorf("short query result = %+v, want empty lists", res)
	}
}

func TestSearchEndpoint_Limits(t *testing.T) {
	router := setupRouter(t)

	w := get(t, router, "/v1/search?q=design&limit=1")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if res := decode[search.Result](t, w); len(res.Services) > 1 {
		t.Errorf("limit=1 returned %d services", len(res.Services))
	}

	for _, bad := range []string{"limit=zero", "limit=0", "limit=-3", "category_limit=1000"} {
		w := get(t, router, "/v1/search?q=design&"+bad)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", bad, w.Code)
		}
	}
}

func TestSearchBatch(t *testing.T) {
	router := setupRouter(t)

	body := `{"queries": ["شعار", "فيديو", "x"]}`
	req := httptest.NewRequest("POST", "/v1/search/batch", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	resp := decode[struct {
		Results []search.Result `json:"results"`
	}](t, w)
	if len(resp.Results) != 3 {
		t.Fatalf("results = %d, want 3", len(resp.Results))
	}
	if resp.Results[0].Meta.Query != "شعار" || resp.Results[1].Meta.Query != "فيديو" {
		t.Error("results must keep query order")
	}
	if len(resp.Results[1].Services) == 0 || resp.Results[1].Services[0].Candidate.ID != "s2" {
		t.Errorf("second query services = %+v", resp.Results[1].Services)
	}
	if len(resp.Results[2].Services) != 0 {
		t.Error("short query in batch should be empty")
	}
}

func TestSearchBatch_Errors(t *testing.T) {
	router := setupRouter(t)

	many := make([]string, MaxBatchQueries+1)
	for i := range many {
		many[i] = fmt.Sprintf("%q", "design")
	}
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", "{"},
		{"empty", `{"queries": []}`},
		{"too many", `{"queries": [` + strings.Join(many, ",") + `]}`},
		{"bad limit", `{"queries": ["design"], "limit": -1}`},
	}
	for _, tt := range tests {
		req := httptest.NewRequest("POST", "/v1/search/batch", strings.NewReader(tt.body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", tt.name, w.Code)
		}
		if e := decode[map[string]string](t, w); e["error"] == "" {
			t.Errorf("%s: missing error message", tt.name)
		}
	}

	w := get(t, router, "/v1/search/batch")
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET batch: status = %d, want 405", w.Code)
	}
}

func TestSuggestEndpoint(t *testing.T) {
	router := setupRouter(t)

	w := get(t, router, "/v1/suggest?q="+url.QueryEscape("تصميم"))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	resp := decode[suggestResponse](t, w)
	if resp.Query != "تصميم" {
		t.Errorf("query = %q", resp.Query)
	}
	has := func(s string) bool {
		for _, v := range resp.Suggestions {
			if v == s {
				return true
			}
		}
		return false
	}
	if !has("design") || !has("تصميم وجرافيك") {
		t.Errorf("suggestions = %v, want design and the category name", resp.Suggestions)
	}
	if has("تصميم") {
		t.Error("the query itself must not be suggested")
	}

	w = get(t, router, "/v1/suggest?q=a")
	if !strings.Contains(w.Body.String(), `"suggestions":[]`) {
		t.Errorf("short query should return an empty array, got %s", w.Body.String())
	}
}

func TestIntentEndpoint(t *testing.T) {
	router := setupRouter(t)

	resp := decode[intentResponse](t, get(t, router, "/v1/intent?q="+url.QueryEscape("فيديو")))
	if resp.Intent == nil || resp.Intent.Category == nil || resp.Intent.Category.ID != "video" {
		t.Errorf("intent = %+v, want video category", resp.Intent)
	}

	resp = decode[intentResponse](t, get(t, router, "/v1/intent?q=photoshop"))
	if resp.Intent == nil || resp.Intent.Concept != "photography" {
		t.Errorf("intent = %+v, want photography concept", resp.Intent)
	}

	w := get(t, router, "/v1/intent?q=zzzzqqq")
	if !strings.Contains(w.Body.String(), `"intent":null`) {
		t.Errorf("unmatched intent should be null, got %s", w.Body.String())
	}
}

func TestHighlightEndpoint(t *testing.T) {
	router := setupRouter(t)
	w := get(t, router, "/v1/highlight?text="+url.QueryEscape("تصميم شعار")+"&q="+url.QueryEscape("شعار"))
	resp := decode[highlightResponse](t, w)
	if resp.HTML != "تصميم <mark>شعار</mark>" {
		t.Errorf("html = %q", resp.HTML)
	}
}

func TestHighlightEndpoint_InvalidUTF8(t *testing.T) {
	router := setupRouter(t)
	w := get(t, router, "/v1/highlight?text=%FF%FF&q=%FF%FF")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	resp := decode[highlightResponse](t, w)
	if !strings.HasPrefix(resp.HTML, "<mark>") || !strings.HasSuffix(resp.HTML, "</mark>") {
		t.Errorf("html = %q, want the invalid bytes marked", resp.HTML)
	}

	w = get(t, router, "/v1/search?q=%FF%FF")
	if w.Code != http.StatusOK {
		t.Errorf("search with invalid utf-8: status = %d", w.Code)
	}
}

func TestHealthAndReload(t *testing.T) {
	src := testSource()
	b, holder := setupBackend(t, src)
	router := NewRouter(b, discardLogger())

	before := decode[healthResponse](t, get(t, router, "/v1/health"))
	if before.Status != "ok" || before.Services != 3 || before.Categories != 3 {
		t.Errorf("health = %+v", before)
	}
	if before.Concepts != b.Lexicon().Intents.Len() || before.Concepts == 0 {
		t.Errorf("concepts = %d", before.Concepts)
	}
	if len(before.Fingerprint) != 16 {
		t.Errorf("fingerprint = %q, want 16 hex digits", before.Fingerprint)
	}

	src.services = append(src.services, search.Candidate{ID: "s4", Title: "ترجمة مستندات", CategoryID: "writing"})
	if err := holder.Reload(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}

	after := decode[healthResponse](t, get(t, router, "/v1/health"))
	if after.Services != 4 || after.Fingerprint == before.Fingerprint {
		t.Errorf("health after reload = %+v", after)
	}
	res := decode[search.Result](t, get(t, router, "/v1/search?q="+url.QueryEscape("ترجمة مستندات")))
	if len(res.Services) == 0 || res.Services[0].Candidate.ID != "s4" {
		t.Errorf("reloaded service not searchable: %+v", res.Services)
	}
}

func TestCORS(t *testing.T) {
	router := setupRouter(t)
	req := httptest.NewRequest("OPTIONS", "/v1/search", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}
}

func TestRequestIDPropagated(t *testing.T) {
	router := setupRouter(t)
	req := httptest.NewRequest("GET", "/v1/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("X-Request-ID = %q, want abc-123", got)
	}
}
