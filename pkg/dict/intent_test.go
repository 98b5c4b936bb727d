package dict

import (
	"reflect"
	"testing"
)

func testIntents() *IntentMap {
	return NewIntentMap([]ConceptEntry{
		{Key: "design", Related: []string{"تصميم", "designer"}},
		{Key: "logo", Related: []string{"شعار", "brand"}},
		{Key: "video", Related: []string{"فيديو", "مونتاج"}},
		{Key: "", Related: []string{"dropped"}},
	}, 0)
}

func TestIntentMap_ExpandByKey(t *testing.T) {
	m := testIntents()
	got := m.Expand("design").Sorted()
	want := []string{"design", "designer", "تصميم"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expand(design) = %v, want %v", got, want)
	}
}

func TestIntentMap_ExpandIsUndirected(t *testing.T) {
	m := testIntents()
	// The Arabic term is only stored as a related term of "design".
	got := m.Expand("تصميم")
	for _, want := range []string{"design", "designer", "تصميم"} {
		if !got.Has(want) {
			t.Errorf("Expand(تصميم) missing %q: %v", want, got.Sorted())
		}
	}
	if got.Has("logo") {
		t.Errorf("Expand(تصميم) should not reach unrelated concept: %v", got.Sorted())
	}
}

func TestIntentMap_ExpandSubstring(t *testing.T) {
	m := testIntents()
	// Query contains a key.
	if !m.Expand("logodesign").Has("شعار") {
		t.Error("expected key-in-query containment to expand")
	}
	// Query is contained in a key.
	if !m.Expand("vid").Has("فيديو") {
		t.Error("expected query-in-key containment to expand")
	}
}

func TestIntentMap_ExpandDepthOne(t *testing.T) {
	m := NewIntentMap([]ConceptEntry{
		{Key: "alpha", Related: []string{"beta"}},
		{Key: "beta2", Related: []string{"gamma"}},
	}, 0)
	// "alpha" reaches "beta"; "beta" would reach beta2/gamma, but only one hop runs.
	got := m.Expand("alpha")
	if got.Has("gamma") {
		t.Errorf("expansion must not be transitive: %v", got.Sorted())
	}
}

func TestIntentMap_ExpandEmpty(t *testing.T) {
	m := testIntents()
	if n := len(m.Expand("")); n != 0 {
		t.Errorf("Expand(\"\") returned %d terms, want 0", n)
	}
	if n := len(m.Expand("zzz")); n != 0 {
		t.Errorf("Expand(zzz) returned %d terms, want 0", n)
	}
	var nilMap *IntentMap
	if n := len(nilMap.Expand("design")); n != 0 {
		t.Errorf("nil map Expand returned %d terms", n)
	}
}

func TestIntentMap_ExpandQueryUnionsWords(t *testing.T) {
	m := testIntents()
	got := m.ExpandQuery("logo video")
	for _, want := range []string{"logo", "شعار", "video", "فيديو"} {
		if !got.Has(want) {
			t.Errorf("ExpandQuery missing %q: %v", want, got.Sorted())
		}
	}
}

func TestIntentMap_ShortTermOverExpands(t *testing.T) {
	// Substring lookup lets a short term reach every concept containing it.
	m := testIntents()
	got := m.Expand("o")
	if !got.Has("logo") || !got.Has("video") {
		t.Errorf("Expand(o) = %v, want both logo and video concepts", got.Sorted())
	}

	guarded := NewIntentMap(m.Entries(), 3)
	if n := len(guarded.Expand("o")); n != 0 {
		t.Errorf("guarded Expand(o) returned %d terms, want 0", n)
	}
	if !guarded.Expand("logo").Has("شعار") {
		t.Error("guard must not block terms at or above the minimum length")
	}
}

func TestIntentMap_Match(t *testing.T) {
	m := testIntents()
	c, ok := m.Match("شعار")
	if !ok {
		t.Fatal("Match(شعار) found nothing")
	}
	if c.Key != "logo" {
		t.Errorf("Key = %q, want logo", c.Key)
	}
	if !reflect.DeepEqual(c.Related, []string{"شعار", "brand"}) {
		t.Errorf("Related = %v", c.Related)
	}
	if _, ok := m.Match("plumbing"); ok {
		t.Error("Match(plumbing) should not match")
	}
}

func TestIntentMap_NormalizesEntries(t *testing.T) {
	m := NewIntentMap([]ConceptEntry{
		{Key: "Programming", Related: []string{"بَرْمَجَة"}},
		{Key: "PROGRAMMING"},
	}, 0)
	if m.Len() != 2 {
		t.Errorf("Len = %d, want 2", m.Len())
	}
	if m.DuplicateKeys() != 1 {
		t.Errorf("DuplicateKeys = %d, want 1", m.DuplicateKeys())
	}
	if !m.Expand("برمجه").Has("programming") {
		t.Error("normalized related term should reach its key")
	}
}
