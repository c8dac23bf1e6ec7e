package layout

import (
	"math"
	"testing"

	"github.com/treescope/treescope/pkg/tree"
)

func named(name string, fields ...tree.Field) tree.Mapping {
	m := tree.Mapping{{Key: "name", Value: name}}
	return append(m, fields...)
}

func kids(items ...any) tree.Field {
	return tree.Field{Key: "children", Value: items}
}

func TestLayoutHorizontalPositionFromLevel(t *testing.T) {
	tr := tree.Build(named("Root",
		kids(
			named("A", kids(named("A1"))),
			named("B"),
		),
	))

	e := New(DefaultConfig())
	res := e.Layout(tr)
	if len(res.Nodes) != 4 {
		t.Fatalf("visible = %d, want 4", len(res.Nodes))
	}

	cfg := e.Config()
	for _, n := range res.Nodes {
		want := float64(n.Level)*cfg.HorizontalSpacing + cfg.OffsetX
		if n.Box.X != want {
			t.Errorf("%s: x = %v, want %v", n.Name, n.Box.X, want)
		}
	}
}

func TestLayoutBoxSizing(t *testing.T) {
	tr := tree.Build(named("Svc",
		tree.Field{Key: "port", Value: 8080},
		tree.Field{Key: "proto", Value: "http"},
	))

	e := New(DefaultConfig())
	e.Layout(tr)

	cfg := e.Config()
	root := tr.Root
	wantH := cfg.BaseBoxHeight + 2*cfg.PropertyLineHeight
	if root.Box.Height != wantH {
		t.Errorf("height = %v, want %v", root.Box.Height, wantH)
	}
	if root.Box.Width < cfg.MinBoxWidth || root.Box.Width > cfg.MaxBoxWidth {
		t.Errorf("width %v outside [%v, %v]", root.Box.Width, cfg.MinBoxWidth, cfg.MaxBoxWidth)
	}
}

func TestLayoutWidthClamp(t *testing.T) {
	long := named("X", tree.Field{Key: "description", Value: string(make([]byte, 400))})
	tr := tree.Build(long)

	e := New(DefaultConfig())
	e.Layout(tr)
	if got := tr.Root.Box.Width; got != e.Config().MaxBoxWidth {
		t.Errorf("width = %v, want clamped to %v", got, e.Config().MaxBoxWidth)
	}

	short := tree.Build(named("Y"))
	e.Layout(short)
	if got := short.Root.Box.Width; got != e.Config().MinBoxWidth {
		t.Errorf("width = %v, want clamped to %v", got, e.Config().MinBoxWidth)
	}
}

func TestLayoutSkipsHiddenSubtrees(t *testing.T) {
	tr := tree.Build(named("Root",
		kids(
			named("A", kids(named("A1"), named("A2"))),
			named("B"),
		),
	))
	tr.Root.Children[0].SetCollapsed(true)

	res := New(DefaultConfig()).Layout(tr)
	if len(res.Nodes) != 3 {
		t.Fatalf("visible = %d, want 3", len(res.Nodes))
	}
	for _, n := range res.Nodes {
		if n.Name == "A1" || n.Name == "A2" {
			t.Errorf("hidden node %q present in layout", n.Name)
		}
	}
}

func TestLayoutSiblingSeparation(t *testing.T) {
	tr := tree.Build(named("Root",
		kids(
			named("A", kids(named("A1"), named("A2"))),
			named("B", kids(named("B1"))),
		),
	))

	New(DefaultConfig()).Layout(tr)

	a := tr.Root.Children[0]
	b := tr.Root.Children[1]
	a1, a2 := a.Children[0], a.Children[1]
	b1 := b.Children[0]

	sameParent := gapBetween(a1, a2)
	differentParent := gapBetween(a2, b1)
	if differentParent <= sameParent {
		t.Errorf("cousin gap %v must exceed sibling gap %v", differentParent, sameParent)
	}

	// No overlap anywhere on the level.
	if sameParent <= 0 || differentParent <= 0 {
		t.Errorf("boxes overlap: sibling gap %v, cousin gap %v", sameParent, differentParent)
	}
}

// gapBetween returns the free space between two vertically adjacent boxes.
func gapBetween(top, bottom *tree.Node) float64 {
	return (bottom.Box.Y - bottom.Box.Height/2) - (top.Box.Y + top.Box.Height/2)
}

func TestLayoutAsymmetricSiblingsDoNotOverlap(t *testing.T) {
	// A leaf followed by a deeper sibling: the deeper subtree starts its
	// level at the top of the canvas, so centering its root must not pull
	// it back onto the leaf.
	tr := tree.Build(named("Root",
		kids(
			named("L"),
			named("A", kids(named("A1"))),
		),
	))

	New(DefaultConfig()).Layout(tr)

	l := tr.Root.Children[0]
	a := tr.Root.Children[1]
	a1 := a.Children[0]

	if gap := gapBetween(l, a); gap <= 0 {
		t.Errorf("siblings L and A overlap: gap %v", gap)
	}
	// The displaced subtree moves as one unit: A stays centered over A1.
	if a.Box.Y != a1.Box.Y {
		t.Errorf("A at y=%v not centered over A1 at y=%v", a.Box.Y, a1.Box.Y)
	}
}

func TestLayoutDisplacedSubtreeStaysClearOfEarlierCousins(t *testing.T) {
	// Two asymmetric subtrees in a row: B's displacement must not land B1
	// on A1, and every level stays free of overlap.
	tr := tree.Build(named("Root",
		kids(
			named("A", kids(named("A1"))),
			named("L"),
			named("B", kids(named("B1"), named("B2"))),
		),
	))

	res := New(DefaultConfig()).Layout(tr)

	byLevel := make(map[int][]*tree.Node)
	for _, n := range res.Nodes {
		byLevel[n.Level] = append(byLevel[n.Level], n)
	}
	for level, nodes := range byLevel {
		for i := 1; i < len(nodes); i++ {
			if gap := gapBetween(nodes[i-1], nodes[i]); gap <= 0 {
				t.Errorf("level %d: %s and %s overlap: gap %v",
					level, nodes[i-1].Name, nodes[i].Name, gap)
			}
		}
	}
}

func TestLayoutSymmetricSubtreesBalanced(t *testing.T) {
	tr := tree.Build(named("Root",
		kids(
			named("A", kids(named("A1"), named("A2"))),
			named("B", kids(named("B1"), named("B2"))),
		),
	))

	New(DefaultConfig()).Layout(tr)

	a := tr.Root.Children[0]
	b := tr.Root.Children[1]

	// Each symmetric subtree root sits centered over its own children.
	for _, sub := range []*tree.Node{a, b} {
		mid := (sub.Children[0].Box.Y + sub.Children[1].Box.Y) / 2
		if diff := math.Abs(sub.Box.Y - mid); diff > sub.Box.Height {
			t.Errorf("%s center off by %v, want within one box height", sub.Name, diff)
		}
	}

	// The root lands between the two subtree centers.
	mid := (a.Box.Y + b.Box.Y) / 2
	if diff := math.Abs(tr.Root.Box.Y - mid); diff > tr.Root.Box.Height {
		t.Errorf("root center off subtree midpoint by %v", diff)
	}
}

func TestLayoutToggleRoundTrip(t *testing.T) {
	tr := tree.Build(named("Root",
		kids(
			named("A", kids(named("A1"))),
			named("B"),
		),
	))

	e := New(DefaultConfig())
	e.Layout(tr)

	before := make(map[int]tree.Box)
	for _, n := range tr.VisibleNodes() {
		before[n.ID] = n.Box
	}

	a := tr.Root.Children[0]
	a.SetCollapsed(true)
	e.Layout(tr)
	a.SetCollapsed(false)
	res := e.Layout(tr)

	if len(res.Nodes) != len(before) {
		t.Fatalf("visible = %d, want %d", len(res.Nodes), len(before))
	}
	for _, n := range res.Nodes {
		want := before[n.ID]
		if n.Box.X != want.X || n.Box.Y != want.Y || n.Box.Width != want.Width || n.Box.Height != want.Height {
			t.Errorf("%s: box %+v, want %+v after toggle round trip", n.Name, n.Box, want)
		}
	}
}

func TestLayoutEmptyTree(t *testing.T) {
	res := New(DefaultConfig()).Layout(tree.Build(nil))
	if len(res.Nodes) != 0 || res.Width != 0 || res.Height != 0 {
		t.Errorf("empty layout = %+v, want zero result", res)
	}
}

func TestConfigNormalization(t *testing.T) {
	e := New(Config{HorizontalSpacing: 100})
	cfg := e.Config()
	if cfg.HorizontalSpacing != 100 {
		t.Errorf("explicit value overridden: %v", cfg.HorizontalSpacing)
	}
	if cfg.BaseBoxHeight != DefaultConfig().BaseBoxHeight {
		t.Errorf("zero field not defaulted: %v", cfg.BaseBoxHeight)
	}
	if cfg.CousinGapRatio <= cfg.SiblingGapRatio {
		t.Errorf("cousin ratio %v must exceed sibling ratio %v", cfg.CousinGapRatio, cfg.SiblingGapRatio)
	}
}
