package tree

import "testing"

func buildSearchable(t *testing.T) *Tree {
	t.Helper()
	return Build(doc(
		Field{Key: "name", Value: "Platform"},
		Field{Key: "children", Value: []any{
			doc(
				Field{Key: "name", Value: "Auth-Service"},
				Field{Key: "protocol", Value: "JWT"},
			),
			doc(
				Field{Key: "name", Value: "Billing"},
				Field{Key: "currency", Value: "EUR"},
			),
		}},
	))
}

func TestSearchNameBeforeProperties(t *testing.T) {
	tr := buildSearchable(t)

	idx := NewIndex(tr, "auth", false)
	if idx.Len() != 1 {
		t.Fatalf("matches = %d, want 1", idx.Len())
	}
	m, _ := idx.Current()
	if m.Type != MatchName || m.Text != "Auth-Service" {
		t.Errorf("match = %+v, want name match on Auth-Service", m)
	}
}

func TestSearchPropertyFallback(t *testing.T) {
	tr := buildSearchable(t)

	idx := NewIndex(tr, "jwt", false)
	if idx.Len() != 1 {
		t.Fatalf("matches = %d, want 1", idx.Len())
	}
	m, _ := idx.Current()
	if m.Type != MatchProperty {
		t.Errorf("match type = %q, want property", m.Type)
	}
	if m.Text != "protocol: JWT" {
		t.Errorf("match text = %q", m.Text)
	}
}

func TestSearchOneMatchPerNode(t *testing.T) {
	tr := Build(doc(
		Field{Key: "name", Value: "redis"},
		Field{Key: "image", Value: "redis:7"},
		Field{Key: "note", Value: "redis cache"},
	))

	idx := NewIndex(tr, "redis", false)
	if idx.Len() != 1 {
		t.Errorf("matches = %d, want 1 (name wins, properties not double-counted)", idx.Len())
	}
}

func TestSearchCircularNavigation(t *testing.T) {
	tr := buildSearchable(t)

	// Both children match "i" is too broad; use node names.
	idx := NewIndex(tr, "service", false)
	if idx.Len() != 1 {
		t.Fatalf("matches = %d, want 1", idx.Len())
	}

	// Single-result set: next stays at index 0.
	if _, ok := idx.Next(); !ok {
		t.Fatal("Next on non-empty index should succeed")
	}
	if idx.CurrentIndex() != 0 {
		t.Errorf("current = %d, want 0", idx.CurrentIndex())
	}

	// Multi-result wrap-around in both directions.
	multi := NewIndex(tr, "i", false)
	if multi.Len() < 2 {
		t.Fatalf("expected multiple matches, got %d", multi.Len())
	}
	n := multi.Len()
	for range n {
		multi.Next()
	}
	if multi.CurrentIndex() != 0 {
		t.Errorf("full cycle should wrap to 0, got %d", multi.CurrentIndex())
	}
	multi.Prev()
	if multi.CurrentIndex() != n-1 {
		t.Errorf("Prev from 0 should wrap to %d, got %d", n-1, multi.CurrentIndex())
	}
}

func TestSearchEmptyTermClearsResults(t *testing.T) {
	tr := buildSearchable(t)

	for _, term := range []string{"", "   "} {
		idx := NewIndex(tr, term, false)
		if idx.Len() != 0 {
			t.Errorf("term %q: matches = %d, want 0", term, idx.Len())
		}
		if _, ok := idx.Current(); ok {
			t.Errorf("term %q: Current should report no match", term)
		}
	}
}

func TestSearchHiddenNodes(t *testing.T) {
	tr := buildSearchable(t)
	tr.Root.SetCollapsed(true)

	if got := NewIndex(tr, "auth", false).Len(); got != 0 {
		t.Errorf("visible-only scan found %d matches, want 0", got)
	}
	if got := NewIndex(tr, "auth", true).Len(); got != 1 {
		t.Errorf("all-nodes scan found %d matches, want 1", got)
	}
}

func TestSearchCaseInsensitive(t *testing.T) {
	tr := buildSearchable(t)
	for _, term := range []string{"AUTH", "Auth", "aUtH"} {
		if got := NewIndex(tr, term, false).Len(); got != 1 {
			t.Errorf("term %q: matches = %d, want 1", term, got)
		}
	}
}
