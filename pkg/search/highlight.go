package search

import (
	"html"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/hazyhaar/souk-search/pkg/dict"
)

const (
	markOpen  = "<mark>"
	markClose = "</mark>"
)

type span struct{ start, end int }

// foldedText is a normalized copy of a string with, for every normalized
// byte, the byte range of the original rune it came from.
type foldedText struct {
	folded string
	origin []span
}

func foldText(s string) foldedText {
	var b strings.Builder
	origin := make([]span, 0, len(s))
	for i, r := range s {
		f := dict.FoldRune(r)
		// Invalid bytes decode as U+FFFD but span only one byte of s.
		_, size := utf8.DecodeRuneInString(s[i:])
		for range len(f) {
			origin = append(origin, span{i, i + size})
		}
		b.WriteString(f)
	}
	return foldedText{folded: b.String(), origin: origin}
}

// HighlightMatches wraps every occurrence of each query word (two runes or
// longer) in <mark> tags. Matching is done on normalized text, so diacritics
// and letter variants in text still highlight. The rest of text is HTML
// escaped.
func HighlightMatches(text, query string) string {
	words := strings.Fields(dict.Normalize(query))
	if text == "" || len(words) == 0 {
		return html.EscapeString(text)
	}

	ft := foldText(text)
	var spans []span
	for _, w := range words {
		if utf8.RuneCountInString(w) < MinQueryLength {
			continue
		}
		for from := 0; from < len(ft.folded); {
			idx := strings.Index(ft.folded[from:], w)
			if idx < 0 {
				break
			}
			start := from + idx
			end := start + len(w)
			spans = append(spans, span{ft.origin[start].start, ft.origin[end-1].end})
			from = end
		}
	}
	if len(spans) == 0 {
		return html.EscapeString(text)
	}

	var b strings.Builder
	pos := 0
	for _, sp := range merge(spans) {
		b.WriteString(html.EscapeString(text[pos:sp.start]))
		b.WriteString(markOpen)
		b.WriteString(html.EscapeString(text[sp.start:sp.end]))
		b.WriteString(markClose)
		pos = sp.end
	}
	b.WriteString(html.EscapeString(text[pos:]))
	return b.String()
}

func merge(spans []span) []span {
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	out := spans[:1]
	for _, sp := range spans[1:] {
		last := &out[len(out)-1]
		if sp.start <= last.end {
			last.end = max(last.end, sp.end)
			continue
		}
		out = append(out, sp)
	}
	return out
}
