// Package reconcile classifies the differences between two consecutive
// layout passes so the rendering layer can animate transitions.
//
// The classification is purely positional: given the previous generation's
// rendered positions (keyed by node ID) and the freshly computed visible
// set, nodes fall into three buckets - entering (new IDs), persisting
// (both), exiting (old IDs only). Entering and exiting nodes animate
// from/toward an anchor point, typically the node whose toggle triggered
// the pass, so subtrees appear to grow out of and fold back into their
// parent instead of jumping.
//
// Edges are grouped by parent into one shared vertical spine plus one
// horizontal connector per child, keyed by the parent's ID, and follow the
// same enter/update/exit classification. Grouping keeps wide fan-outs
// readable where one path per edge would clutter.
package reconcile

import (
	"sort"

	"github.com/treescope/treescope/pkg/tree"
)

// Point is a position on the layout canvas.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Motion describes one node's animation between two passes.
type Motion struct {
	ID   int   `json:"id" bson:"id"`
	From Point `json:"from" bson:"from"`
	To   Point `json:"to" bson:"to"`
}

// Connector is the horizontal segment from a link group's spine to one
// child box.
type Connector struct {
	ChildID int     `json:"child_id" bson:"child_id"`
	Y       float64 `json:"y" bson:"y"`
	FromX   float64 `json:"from_x" bson:"from_x"`
	ToX     float64 `json:"to_x" bson:"to_x"`
}

// LinkGroup is the edge bundle for one parent: a stub from the parent box
// to a shared vertical spine, plus one connector per visible child.
type LinkGroup struct {
	ParentID    int         `json:"parent_id" bson:"parent_id"`
	ParentY     float64     `json:"parent_y" bson:"parent_y"`
	StubFromX   float64     `json:"stub_from_x" bson:"stub_from_x"`
	SpineX      float64     `json:"spine_x" bson:"spine_x"`
	SpineTop    float64     `json:"spine_top" bson:"spine_top"`
	SpineBottom float64     `json:"spine_bottom" bson:"spine_bottom"`
	Connectors  []Connector `json:"connectors" bson:"connectors"`
}

// Transition is the full classification of one layout pass against the
// previous one.
type Transition struct {
	Entered []Motion `json:"entered" bson:"entered"`
	Updated []Motion `json:"updated" bson:"updated"`
	Exited  []Motion `json:"exited" bson:"exited"`

	LinksEntered []LinkGroup `json:"links_entered" bson:"links_entered"`
	LinksUpdated []LinkGroup `json:"links_updated" bson:"links_updated"`
	LinksExited  []int       `json:"links_exited" bson:"links_exited"`
}

// Reconciler tracks rendered positions across layout passes. It is bound to
// one generation at a time; Reset discards all carried state when a rebuild
// supersedes the current generation. Not safe for concurrent use.
type Reconciler struct {
	prev      map[int]Point
	prevLinks map[int]bool
}

// New creates a reconciler with no carried state: the first pass reports
// every visible node as entering.
func New() *Reconciler {
	return &Reconciler{
		prev:      make(map[int]Point),
		prevLinks: make(map[int]bool),
	}
}

// Reset drops all carried positions. Call on rebuild: node IDs from a
// superseded generation must never be compared against the new namespace,
// and pending enter/exit animations of the old generation are abandoned
// wholesale.
func (r *Reconciler) Reset() {
	r.prev = make(map[int]Point)
	r.prevLinks = make(map[int]bool)
}

// Pass classifies the given visible set against the previous pass and then
// snapshots current positions as the baseline for the next one. The anchor
// is the animation origin for entering nodes and the destination for
// exiting ones. Each visible node's previous position is also written to
// its Box (PrevX, PrevY).
func (r *Reconciler) Pass(visible []*tree.Node, anchor Point) Transition {
	var tr Transition

	next := make(map[int]Point, len(visible))
	for _, n := range visible {
		to := Point{X: n.Box.X, Y: n.Box.Y}
		next[n.ID] = to

		if from, ok := r.prev[n.ID]; ok {
			n.Box.PrevX, n.Box.PrevY = from.X, from.Y
			tr.Updated = append(tr.Updated, Motion{ID: n.ID, From: from, To: to})
		} else {
			n.Box.PrevX, n.Box.PrevY = anchor.X, anchor.Y
			tr.Entered = append(tr.Entered, Motion{ID: n.ID, From: anchor, To: to})
		}
	}

	exitedIDs := make([]int, 0)
	for id := range r.prev {
		if _, ok := next[id]; !ok {
			exitedIDs = append(exitedIDs, id)
		}
	}
	sort.Ints(exitedIDs)
	for _, id := range exitedIDs {
		tr.Exited = append(tr.Exited, Motion{ID: id, From: r.prev[id], To: anchor})
	}

	groups := Groups(visible)
	nextLinks := make(map[int]bool, len(groups))
	for _, g := range groups {
		nextLinks[g.ParentID] = true
		if r.prevLinks[g.ParentID] {
			tr.LinksUpdated = append(tr.LinksUpdated, g)
		} else {
			tr.LinksEntered = append(tr.LinksEntered, g)
		}
	}
	exitedLinks := make([]int, 0)
	for id := range r.prevLinks {
		if !nextLinks[id] {
			exitedLinks = append(exitedLinks, id)
		}
	}
	sort.Ints(exitedLinks)
	tr.LinksExited = exitedLinks

	r.prev = next
	r.prevLinks = nextLinks
	return tr
}

// Groups bundles the visible edges by parent. The spine sits halfway
// between the parent's right edge and the children's left edge; each child
// gets one horizontal connector at its vertical center.
func Groups(visible []*tree.Node) []LinkGroup {
	var groups []LinkGroup
	for _, n := range visible {
		kids := n.VisibleChildren()
		if len(kids) == 0 {
			continue
		}

		parentRight := n.Box.X + n.Box.Width
		childLeft := kids[0].Box.X
		spineX := parentRight + (childLeft-parentRight)/2

		g := LinkGroup{
			ParentID:    n.ID,
			ParentY:     n.Box.Y,
			StubFromX:   parentRight,
			SpineX:      spineX,
			SpineTop:    kids[0].Box.Y,
			SpineBottom: kids[0].Box.Y,
		}
		for _, c := range kids {
			if c.Box.Y < g.SpineTop {
				g.SpineTop = c.Box.Y
			}
			if c.Box.Y > g.SpineBottom {
				g.SpineBottom = c.Box.Y
			}
			g.Connectors = append(g.Connectors, Connector{
				ChildID: c.ID,
				Y:       c.Box.Y,
				FromX:   spineX,
				ToX:     c.Box.X,
			})
		}
		groups = append(groups, g)
	}
	return groups
}
