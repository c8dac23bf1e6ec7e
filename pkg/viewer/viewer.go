// Package viewer is the interaction layer over the tree engine.
//
// A Viewer owns one tree plus the machinery around it (layout engine,
// transition reconciler, search index, camera, path highlight) and exposes
// the command surface a frontend drives: rebuild, toggle, search, navigate,
// highlight. Every command that changes what is visible produces a new
// Frame and delivers it to the Listener registered at construction.
//
// A Viewer is safe for concurrent use; commands serialize on an internal
// mutex.
package viewer

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/treescope/treescope/pkg/camera"
	"github.com/treescope/treescope/pkg/errors"
	"github.com/treescope/treescope/pkg/observability"
	"github.com/treescope/treescope/pkg/tree"
	"github.com/treescope/treescope/pkg/tree/layout"
	"github.com/treescope/treescope/pkg/tree/reconcile"
)

// ============================================================================
// Frames and listeners
// ============================================================================

// Frame is one renderable state of the viewer: the laid-out geometry, the
// transition that led to it, and the link groups connecting visible nodes.
type Frame struct {
	Layout     layout.Result
	Transition reconcile.Transition
	Links      []reconcile.LinkGroup
}

// Direction selects which way Navigate moves through search results.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// Listener receives viewer state changes. Implementations must not call back
// into the Viewer from a notification; they run while the command holds the
// viewer lock.
type Listener interface {
	// LayoutUpdated fires after every command that produced a new frame.
	LayoutUpdated(Frame)

	// SearchResultsChanged fires when the active search term or its result
	// set changes. current is the index of the focused match, -1 when the
	// result set is empty.
	SearchResultsChanged(matches []tree.Match, current int)

	// NodeCountChanged fires when the visible or total node count moves.
	NodeCountChanged(visible, total int)
}

// NoopListener implements Listener with empty methods. Embed it to receive
// only the notifications you care about.
type NoopListener struct{}

func (NoopListener) LayoutUpdated(Frame)                    {}
func (NoopListener) SearchResultsChanged([]tree.Match, int) {}
func (NoopListener) NodeCountChanged(int, int)              {}

var _ Listener = NoopListener{}

// ============================================================================
// Viewer
// ============================================================================

// Options configures a Viewer.
type Options struct {
	// Layout overrides the default layout configuration.
	Layout layout.Config

	// Viewport is the initial camera viewport in screen units. Zero values
	// fall back to a 1280x800 viewport.
	ViewportW float64
	ViewportH float64

	// IncludeHidden makes search consider nodes inside collapsed subtrees.
	IncludeHidden bool

	// Listener receives state-change notifications. Nil means no listener.
	Listener Listener

	// Logger receives structured command logs. Nil uses the default logger.
	Logger *log.Logger
}

// Viewer binds a tree to the layout, reconciliation, search, and camera
// machinery and exposes the interactive command surface.
type Viewer struct {
	mu sync.Mutex

	tree      *tree.Tree
	engine    *layout.Engine
	rec       *reconcile.Reconciler
	cam       *camera.Camera
	index     *tree.Index
	highlight map[int]bool

	includeHidden bool
	listener      Listener
	logger        *log.Logger
	frame         Frame
}

// New creates a Viewer with an empty tree. Call Rebuild to load a document.
func New(opts Options) *Viewer {
	w, h := opts.ViewportW, opts.ViewportH
	if w <= 0 {
		w = 1280
	}
	if h <= 0 {
		h = 800
	}
	listener := opts.Listener
	if listener == nil {
		listener = NoopListener{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Viewer{
		tree:          tree.Build(nil),
		engine:        layout.New(opts.Layout),
		rec:           reconcile.New(),
		cam:           camera.New(w, h),
		highlight:     map[int]bool{},
		includeHidden: opts.IncludeHidden,
		listener:      listener,
		logger:        logger,
	}
}

// Camera returns the viewer's camera. The camera has its own locking story:
// it is owned by the render loop and not guarded by the viewer mutex.
func (v *Viewer) Camera() *camera.Camera { return v.cam }

// Tree returns the current tree. Callers must treat it as read-only.
func (v *Viewer) Tree() *tree.Tree {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.tree
}

// Frame returns the most recent frame.
func (v *Viewer) Frame() Frame {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.frame
}

// VisibleNodeCount reports how many nodes are currently shown.
func (v *Viewer) VisibleNodeCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.tree.VisibleCount()
}

// TotalNodeCount reports the full node count regardless of collapse state.
func (v *Viewer) TotalNodeCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.tree.TotalCount()
}

// Stats computes structural statistics for the current tree.
func (v *Viewer) Stats() tree.Stats {
	v.mu.Lock()
	defer v.mu.Unlock()
	return tree.ComputeStats(v.tree)
}

// ============================================================================
// Commands
// ============================================================================

// Rebuild replaces the tree with one built from doc. The reconciler is reset
// so every node of the new tree enters fresh, superseding any in-flight
// transition from the previous generation. An active search term is re-run
// against the new tree.
func (v *Viewer) Rebuild(ctx context.Context, doc any) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	hooks := observability.Engine()
	hooks.OnBuildStart(ctx)
	start := time.Now()

	v.tree = tree.Build(doc)
	v.rec.Reset()
	v.highlight = map[int]bool{}

	hooks.OnBuildComplete(ctx, v.tree.TotalCount(), time.Since(start))
	v.logger.Debug("tree rebuilt",
		"generation", v.tree.Generation,
		"nodes", v.tree.TotalCount())

	v.relayout(ctx, v.tree.Root)
	v.notifyCounts()

	if v.index != nil && v.index.Term() != "" {
		v.runSearch(ctx, v.index.Term())
	}
	return nil
}

// ToggleNode flips the collapse state of the node with the given id and
// relayouts with that node as the transition anchor: its descendants enter
// from or exit toward its new position.
func (v *Viewer) ToggleNode(ctx context.Context, id int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	n := v.tree.NodeByID(id)
	if n == nil {
		return errors.New(errors.ErrCodeNodeNotFound, "node %d not found", id)
	}
	if !n.HasChildren() {
		return nil
	}
	n.SetCollapsed(!n.IsCollapsed())
	observability.Engine().OnToggle(ctx, id, n.IsCollapsed())
	v.logger.Debug("node toggled", "id", id, "collapsed", n.IsCollapsed())

	v.relayout(ctx, n)
	v.notifyCounts()
	return nil
}

// ToggleAll collapses or expands every internal node at once, the root
// included: collapsing leaves only the root visible, which reads as the
// fully folded state in the TUI. Callers that want a one-level overview
// instead re-expand the root afterwards (see the view command's --collapsed
// flag). The operation is idempotent: collapsing an already fully collapsed
// tree (or expanding a fully expanded one) changes nothing beyond
// re-emitting the current frame.
func (v *Viewer) ToggleAll(ctx context.Context, collapse bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.tree.IsEmpty() {
		return
	}
	v.tree.Root.Walk(func(n *tree.Node) bool {
		n.SetCollapsed(collapse)
		return true
	})
	// The root itself always stays visible; collapsing it hides level 1+.
	v.logger.Debug("toggled all", "collapse", collapse)

	v.relayout(ctx, v.tree.Root)
	v.notifyCounts()
}

// Search builds a fresh result set for term and focuses the first match.
// An empty or whitespace-only term clears the active search. Returns the
// number of matches.
func (v *Viewer) Search(ctx context.Context, term string) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.runSearch(ctx, term)
}

// Navigate moves the search cursor forward or backward, wrapping at either
// end, and focuses the camera on the new current match. Returns false when
// no search is active or it has no results.
func (v *Viewer) Navigate(ctx context.Context, dir Direction) (tree.Match, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.index == nil || v.index.Len() == 0 {
		return tree.Match{}, false
	}
	var m tree.Match
	if dir == Backward {
		m, _ = v.index.Prev()
	} else {
		m, _ = v.index.Next()
	}
	v.focusMatch(ctx, m)
	v.notifySearch()
	return m, true
}

// HighlightPath marks the root-to-node path of the given node and returns the
// node ids on it, root first.
func (v *Viewer) HighlightPath(id int) ([]int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	n := v.tree.NodeByID(id)
	if n == nil {
		return nil, errors.New(errors.ErrCodeNodeNotFound, "node %d not found", id)
	}
	path := tree.PathTo(n)
	v.highlight = make(map[int]bool, len(path))
	ids := make([]int, len(path))
	for i, p := range path {
		v.highlight[p.ID] = true
		ids[i] = p.ID
	}
	return ids, nil
}

// ClearHighlight removes any active path highlight.
func (v *Viewer) ClearHighlight() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.highlight = map[int]bool{}
}

// Highlighted reports whether the node with the given id is on the
// highlighted path.
func (v *Viewer) Highlighted(id int) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.highlight[id]
}

// SearchMatches returns the active result set, nil when no search is active.
func (v *Viewer) SearchMatches() []tree.Match {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.index == nil {
		return nil
	}
	return v.index.Matches()
}

// ============================================================================
// Internals
// ============================================================================

// relayout recomputes geometry and runs a reconciliation pass anchored at the
// post-layout position of anchor. Callers hold the viewer lock.
func (v *Viewer) relayout(ctx context.Context, anchor *tree.Node) {
	hooks := observability.Engine()
	hooks.OnLayoutStart(ctx, v.tree.VisibleCount())
	start := time.Now()

	result := v.engine.Layout(v.tree)
	visible := v.tree.VisibleNodes()

	var at reconcile.Point
	if anchor != nil {
		at = reconcile.Point{X: anchor.Box.X, Y: anchor.Box.Y}
	}
	v.frame = Frame{
		Layout:     result,
		Transition: v.rec.Pass(visible, at),
		Links:      reconcile.Groups(visible),
	}
	hooks.OnLayoutComplete(ctx, time.Since(start))
	v.listener.LayoutUpdated(v.frame)
}

func (v *Viewer) runSearch(ctx context.Context, term string) int {
	v.index = tree.NewIndex(v.tree, term, v.includeHidden)
	observability.Engine().OnSearch(ctx, v.index.Term(), v.index.Len())
	v.logger.Debug("search", "term", v.index.Term(), "matches", v.index.Len())

	if m, ok := v.index.Current(); ok {
		v.focusMatch(ctx, m)
	}
	v.notifySearch()
	return v.index.Len()
}

// notifySearch reports the result set to the listener. current is -1 for an
// empty set, where the index itself parks its cursor at 0.
func (v *Viewer) notifySearch() {
	current := v.index.CurrentIndex()
	if v.index.Len() == 0 {
		current = -1
	}
	v.listener.SearchResultsChanged(v.index.Matches(), current)
}

// focusMatch reveals the matched node (expanding collapsed ancestors when the
// index was built over hidden nodes) and centers the camera on it.
func (v *Viewer) focusMatch(ctx context.Context, m tree.Match) {
	n := v.tree.NodeByID(m.NodeID)
	if n == nil {
		return
	}
	expanded := false
	for p := n.Parent; p != nil; p = p.Parent {
		if p.IsCollapsed() {
			p.SetCollapsed(false)
			expanded = true
		}
	}
	if expanded {
		v.relayout(ctx, n)
		v.notifyCounts()
	}
	v.cam.FocusOn(n.Box)
}

func (v *Viewer) notifyCounts() {
	v.listener.NodeCountChanged(v.tree.VisibleCount(), v.tree.TotalCount())
}
