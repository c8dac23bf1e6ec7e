package viewer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/treescope/treescope/pkg/tree"
)

// recorder captures listener notifications for assertions.
type recorder struct {
	NoopListener
	frames   []Frame
	results  [][]tree.Match
	currents []int
	counts   [][2]int
}

func (r *recorder) LayoutUpdated(f Frame) { r.frames = append(r.frames, f) }
func (r *recorder) SearchResultsChanged(m []tree.Match, cur int) {
	r.results = append(r.results, m)
	r.currents = append(r.currents, cur)
}
func (r *recorder) NodeCountChanged(visible, total int) {
	r.counts = append(r.counts, [2]int{visible, total})
}

func sampleDoc() map[string]any {
	return map[string]any{
		"name": "Platform",
		"children": []any{
			map[string]any{
				"name":     "API",
				"protocol": "JWT",
				"children": []any{
					map[string]any{"name": "Auth"},
					map[string]any{"name": "Billing"},
				},
			},
			map[string]any{"name": "Worker"},
		},
	}
}

func newViewer(t *testing.T, l Listener) *Viewer {
	t.Helper()
	v := New(Options{Listener: l})
	if err := v.Rebuild(context.Background(), sampleDoc()); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	return v
}

func findByName(t *testing.T, v *Viewer, name string) *tree.Node {
	t.Helper()
	var found *tree.Node
	v.Tree().Root.Walk(func(n *tree.Node) bool {
		if n.Name == name {
			found = n
			return false
		}
		return true
	})
	if found == nil {
		t.Fatalf("node %q not found", name)
	}
	return found
}

func TestRebuildEmitsFrameAndCounts(t *testing.T) {
	rec := &recorder{}
	v := newViewer(t, rec)

	if len(rec.frames) == 0 {
		t.Fatal("expected a frame after rebuild")
	}
	frame := rec.frames[len(rec.frames)-1]
	if len(frame.Transition.Entered) != 5 {
		t.Errorf("expected 5 entering nodes, got %d", len(frame.Transition.Entered))
	}
	if len(rec.counts) == 0 {
		t.Fatal("expected a node count notification")
	}
	last := rec.counts[len(rec.counts)-1]
	if last != [2]int{5, 5} {
		t.Errorf("expected counts [5 5], got %v", last)
	}
	if v.VisibleNodeCount() != 5 || v.TotalNodeCount() != 5 {
		t.Errorf("counts: visible=%d total=%d", v.VisibleNodeCount(), v.TotalNodeCount())
	}
}

func TestToggleNodeCollapsesSubtree(t *testing.T) {
	rec := &recorder{}
	v := newViewer(t, rec)
	api := findByName(t, v, "API")

	if err := v.ToggleNode(context.Background(), api.ID); err != nil {
		t.Fatalf("ToggleNode: %v", err)
	}
	if v.VisibleNodeCount() != 3 {
		t.Errorf("expected 3 visible after collapse, got %d", v.VisibleNodeCount())
	}
	if v.TotalNodeCount() != 5 {
		t.Errorf("total count must not change on collapse, got %d", v.TotalNodeCount())
	}

	frame := v.Frame()
	if len(frame.Transition.Exited) != 2 {
		t.Errorf("expected 2 exiting nodes, got %d", len(frame.Transition.Exited))
	}
	// Exiting nodes converge on the toggled node's position.
	for _, m := range frame.Transition.Exited {
		if m.To.X != api.Box.X || m.To.Y != api.Box.Y {
			t.Errorf("exit target %+v, expected anchor (%v,%v)", m.To, api.Box.X, api.Box.Y)
		}
	}
}

func TestToggleRoundTripRestoresChildren(t *testing.T) {
	v := newViewer(t, nil)
	api := findByName(t, v, "API")
	before := api.Children

	ctx := context.Background()
	if err := v.ToggleNode(ctx, api.ID); err != nil {
		t.Fatal(err)
	}
	if err := v.ToggleNode(ctx, api.ID); err != nil {
		t.Fatal(err)
	}
	if v.VisibleNodeCount() != 5 {
		t.Errorf("expected 5 visible after round trip, got %d", v.VisibleNodeCount())
	}
	after := findByName(t, v, "API").Children
	if len(before) != len(after) {
		t.Fatalf("child count changed: %d != %d", len(before), len(after))
	}
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("child %d identity changed across round trip", i)
		}
	}
}

func TestToggleLeafIsNoop(t *testing.T) {
	rec := &recorder{}
	v := newViewer(t, rec)
	worker := findByName(t, v, "Worker")
	framesBefore := len(rec.frames)

	if err := v.ToggleNode(context.Background(), worker.ID); err != nil {
		t.Fatalf("ToggleNode on leaf: %v", err)
	}
	if len(rec.frames) != framesBefore {
		t.Error("toggling a leaf must not produce a frame")
	}
}

func TestToggleUnknownNode(t *testing.T) {
	v := newViewer(t, nil)
	if err := v.ToggleNode(context.Background(), 999); err == nil {
		t.Error("expected error for unknown node id")
	}
}

func TestToggleAllIdempotent(t *testing.T) {
	v := newViewer(t, nil)
	ctx := context.Background()

	v.ToggleAll(ctx, true)
	if v.VisibleNodeCount() != 1 {
		t.Fatalf("expected only root visible, got %d", v.VisibleNodeCount())
	}
	v.ToggleAll(ctx, true) // second collapse is a no-op
	if v.VisibleNodeCount() != 1 {
		t.Errorf("repeat collapse changed visibility: %d", v.VisibleNodeCount())
	}

	v.ToggleAll(ctx, false)
	if v.VisibleNodeCount() != 5 {
		t.Errorf("expected all visible after expand, got %d", v.VisibleNodeCount())
	}
	v.ToggleAll(ctx, false)
	if v.VisibleNodeCount() != 5 {
		t.Errorf("repeat expand changed visibility: %d", v.VisibleNodeCount())
	}
}

func TestSearchFocusesFirstMatch(t *testing.T) {
	rec := &recorder{}
	v := newViewer(t, rec)

	n := v.Search(context.Background(), "auth")
	if n != 1 {
		t.Fatalf("expected 1 match, got %d", n)
	}
	auth := findByName(t, v, "Auth")
	// Camera centered on the match: projecting its box center lands at the
	// viewport center.
	vx, vy := v.Camera().Project(auth.Box.X+auth.Box.Width/2, auth.Box.Y)
	w, h := v.Camera().Viewport()
	if vx != w/2 || vy != h/2 {
		t.Errorf("match not centered: projected to (%v,%v)", vx, vy)
	}
	if len(rec.results) == 0 {
		t.Fatal("expected a search notification")
	}
}

func TestSearchRevealsHiddenMatch(t *testing.T) {
	v := New(Options{IncludeHidden: true})
	ctx := context.Background()
	if err := v.Rebuild(ctx, sampleDoc()); err != nil {
		t.Fatal(err)
	}
	api := findByName(t, v, "API")
	if err := v.ToggleNode(ctx, api.ID); err != nil {
		t.Fatal(err)
	}
	if v.VisibleNodeCount() != 3 {
		t.Fatalf("setup: expected 3 visible, got %d", v.VisibleNodeCount())
	}

	if n := v.Search(ctx, "Billing"); n != 1 {
		t.Fatalf("expected hidden node to match, got %d", n)
	}
	// Focusing the match expands its collapsed ancestors.
	if v.VisibleNodeCount() != 5 {
		t.Errorf("expected match revealed, visible=%d", v.VisibleNodeCount())
	}
}

func TestNavigateWrapsAround(t *testing.T) {
	v := newViewer(t, nil)
	ctx := context.Background()
	// "i" matches API (name), Billing (name); Platform, Worker, Auth have no i.
	if n := v.Search(ctx, "i"); n != 2 {
		t.Fatalf("expected 2 matches, got %d", n)
	}
	first := v.SearchMatches()[0]
	m, ok := v.Navigate(ctx, Forward)
	if !ok || m.NodeID == first.NodeID {
		t.Errorf("expected second match, got %+v", m)
	}
	m, ok = v.Navigate(ctx, Forward)
	if !ok || m.NodeID != first.NodeID {
		t.Errorf("expected wrap back to first match, got %+v", m)
	}
	m, ok = v.Navigate(ctx, Backward)
	if !ok || m.NodeID == first.NodeID {
		t.Errorf("expected backward wrap to last match, got %+v", m)
	}
}

func TestNavigateWithoutSearch(t *testing.T) {
	v := newViewer(t, nil)
	if _, ok := v.Navigate(context.Background(), Forward); ok {
		t.Error("navigate with no active search must report false")
	}
}

func TestClearSearch(t *testing.T) {
	v := newViewer(t, nil)
	ctx := context.Background()
	v.Search(ctx, "auth")
	if n := v.Search(ctx, "   "); n != 0 {
		t.Errorf("whitespace term should clear search, got %d matches", n)
	}
}

func TestSearchReportsCurrentIndex(t *testing.T) {
	rec := &recorder{}
	v := newViewer(t, rec)
	ctx := context.Background()

	if n := v.Search(ctx, "auth"); n != 1 {
		t.Fatalf("matches = %d, want 1", n)
	}
	if cur := rec.currents[len(rec.currents)-1]; cur != 0 {
		t.Errorf("current = %d, want 0 for a populated result set", cur)
	}

	if n := v.Search(ctx, "nomatch"); n != 0 {
		t.Fatalf("matches = %d, want 0", n)
	}
	if cur := rec.currents[len(rec.currents)-1]; cur != -1 {
		t.Errorf("current = %d, want -1 for an empty result set", cur)
	}
}

func TestHighlightPath(t *testing.T) {
	v := newViewer(t, nil)
	auth := findByName(t, v, "Auth")
	api := findByName(t, v, "API")
	root := v.Tree().Root

	ids, err := v.HighlightPath(auth.ID)
	if err != nil {
		t.Fatalf("HighlightPath: %v", err)
	}
	want := []int{root.ID, api.ID, auth.ID}
	if len(ids) != len(want) {
		t.Fatalf("path length %d, want %d", len(ids), len(want))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("path[%d] = %d, want %d", i, ids[i], want[i])
		}
	}
	for _, id := range want {
		if !v.Highlighted(id) {
			t.Errorf("node %d should be highlighted", id)
		}
	}
	worker := findByName(t, v, "Worker")
	if v.Highlighted(worker.ID) {
		t.Error("off-path node must not be highlighted")
	}

	v.ClearHighlight()
	for _, id := range want {
		if v.Highlighted(id) {
			t.Errorf("node %d still highlighted after clear", id)
		}
	}
}

func TestRebuildSupersedesTransitions(t *testing.T) {
	v := newViewer(t, nil)
	ctx := context.Background()
	api := findByName(t, v, "API")
	if err := v.ToggleNode(ctx, api.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := v.HighlightPath(api.ID); err != nil {
		t.Fatal(err)
	}

	if err := v.Rebuild(ctx, sampleDoc()); err != nil {
		t.Fatal(err)
	}
	if v.Highlighted(api.ID) {
		t.Error("rebuild must clear the path highlight")
	}
	frame := v.Frame()
	// After a rebuild every node of the new generation enters fresh.
	if len(frame.Transition.Entered) != 5 {
		t.Errorf("expected 5 entering nodes, got %d", len(frame.Transition.Entered))
	}
	if len(frame.Transition.Exited) != 0 {
		t.Errorf("expected no exits after reset, got %d", len(frame.Transition.Exited))
	}
}

func TestRebuildRerunsActiveSearch(t *testing.T) {
	rec := &recorder{}
	v := newViewer(t, rec)
	ctx := context.Background()
	v.Search(ctx, "auth")
	before := len(rec.results)

	if err := v.Rebuild(ctx, sampleDoc()); err != nil {
		t.Fatal(err)
	}
	if len(rec.results) <= before {
		t.Error("expected search results re-emitted after rebuild")
	}
	if got := rec.results[len(rec.results)-1]; len(got) != 1 {
		t.Errorf("expected 1 match against new tree, got %d", len(got))
	}
}

func TestDebouncerCoalesces(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	d := NewDebouncer(20 * time.Millisecond)
	for i := 0; i < 5; i++ {
		d.Trigger(func() {
			mu.Lock()
			calls++
			mu.Unlock()
		})
	}
	time.Sleep(80 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Errorf("expected exactly 1 call, got %d", calls)
	}
}

func TestDebouncerStop(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	d := NewDebouncer(10 * time.Millisecond)
	d.Trigger(func() {
		mu.Lock()
		calls++
		mu.Unlock()
	})
	d.Stop()
	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if calls != 0 {
		t.Errorf("expected no calls after Stop, got %d", calls)
	}
}
