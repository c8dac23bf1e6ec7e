package tree

import "testing"

func buildSample(t *testing.T) *Tree {
	t.Helper()
	return Build(doc(
		Field{Key: "name", Value: "Root"},
		Field{Key: "children", Value: []any{
			doc(
				Field{Key: "name", Value: "A"},
				Field{Key: "children", Value: []any{
					doc(Field{Key: "name", Value: "A1"}),
					doc(Field{Key: "name", Value: "A2"}),
				}},
			),
			doc(Field{Key: "name", Value: "B"}),
		}},
	))
}

func TestCollapseStateInvariant(t *testing.T) {
	tr := buildSample(t)
	a := tr.Root.Children[0]

	// Expanded: visible children present, hidden absent.
	if a.VisibleChildren() == nil || a.HiddenChildren() != nil {
		t.Fatal("expanded node should expose visible children only")
	}

	a.SetCollapsed(true)
	if a.VisibleChildren() != nil || a.HiddenChildren() == nil {
		t.Fatal("collapsed node should expose hidden children only")
	}

	// The two views are never simultaneously present, for any node.
	tr.Root.Walk(func(n *Node) bool {
		if n.VisibleChildren() != nil && n.HiddenChildren() != nil {
			t.Errorf("node %q exposes both visible and hidden children", n.Name)
		}
		return true
	})
}

func TestCollapseRoundTrip(t *testing.T) {
	tr := buildSample(t)
	a := tr.Root.Children[0]
	before := a.Children

	a.SetCollapsed(true)
	a.SetCollapsed(false)

	after := a.Children
	if len(before) != len(after) {
		t.Fatalf("child count changed: %d vs %d", len(before), len(after))
	}
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("child %d is a different node after round trip", i)
		}
	}
}

func TestCollapseLeafIsNoop(t *testing.T) {
	tr := buildSample(t)
	b := tr.Root.Children[1]

	b.SetCollapsed(true)
	if b.IsCollapsed() {
		t.Error("permanent leaf must never report collapsed")
	}
	if b.HasChildren() {
		t.Error("leaf should have no children")
	}
}

func TestVisibleCount(t *testing.T) {
	tr := buildSample(t)
	if got := tr.VisibleCount(); got != 5 {
		t.Fatalf("visible = %d, want 5", got)
	}
	if got := tr.TotalCount(); got != 5 {
		t.Fatalf("total = %d, want 5", got)
	}

	tr.Root.Children[0].SetCollapsed(true)
	if got := tr.VisibleCount(); got != 3 {
		t.Errorf("visible after collapse = %d, want 3", got)
	}
	if got := tr.TotalCount(); got != 5 {
		t.Errorf("total after collapse = %d, want 5 (hidden nodes still counted)", got)
	}
}

func TestPathTo(t *testing.T) {
	tr := buildSample(t)
	a1 := tr.Root.Children[0].Children[0]

	path := PathTo(a1)
	names := make([]string, len(path))
	for i, n := range path {
		names[i] = n.Name
	}

	want := []string{"Root", "A", "A1"}
	if len(names) != len(want) {
		t.Fatalf("path = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("path[%d] = %q, want %q", i, names[i], want[i])
		}
	}

	if PathTo(nil) != nil {
		t.Error("PathTo(nil) should be nil")
	}
}

func TestWalkVisibleSkipsCollapsed(t *testing.T) {
	tr := buildSample(t)
	tr.Root.Children[0].SetCollapsed(true)

	var names []string
	tr.Root.WalkVisible(func(n *Node) bool {
		names = append(names, n.Name)
		return true
	})

	if len(names) != 3 {
		t.Fatalf("visible walk = %v, want 3 nodes", names)
	}
	for _, name := range names {
		if name == "A1" || name == "A2" {
			t.Errorf("collapsed descendant %q visited by visible walk", name)
		}
	}
}

func TestDescendants(t *testing.T) {
	tr := buildSample(t)
	if got := tr.Root.Descendants(); got != 4 {
		t.Errorf("root descendants = %d, want 4", got)
	}

	// Collapse does not change structural descendant counts.
	tr.Root.Children[0].SetCollapsed(true)
	if got := tr.Root.Descendants(); got != 4 {
		t.Errorf("root descendants after collapse = %d, want 4", got)
	}
}
