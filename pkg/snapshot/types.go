package snapshot

import (
	"github.com/treescope/treescope/pkg/tree"
	"github.com/treescope/treescope/pkg/tree/layout"
	"github.com/treescope/treescope/pkg/tree/reconcile"
)

// =============================================================================
// Snapshot - Laid-Out Tree Serialization
// =============================================================================

// Snapshot is the canonical serialization format for a laid-out tree. It is
// the unit of storage, caching, and API responses: everything a frontend
// needs to draw one frame without re-running the engine.
type Snapshot struct {
	Generation string  `json:"generation" bson:"generation"`
	Unit       float64 `json:"unit" bson:"unit"`
	Width      float64 `json:"width" bson:"width"`
	Height     float64 `json:"height" bson:"height"`

	Nodes []Node      `json:"nodes" bson:"nodes"`
	Edges []Edge      `json:"edges,omitempty" bson:"edges,omitempty"`
	Links []LinkGroup `json:"links,omitempty" bson:"links,omitempty"`

	Stats Stats `json:"stats" bson:"stats"`
}

// Node is one visible node with its resolved geometry. X/Y follow the
// engine's convention: X is the left edge, Y the vertical center.
type Node struct {
	ID         int        `json:"id" bson:"id"`
	Name       string     `json:"name" bson:"name"`
	Level      int        `json:"level" bson:"level"`
	Properties []Property `json:"properties,omitempty" bson:"properties,omitempty"`

	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`

	HasChildren bool `json:"has_children,omitempty" bson:"has_children,omitempty"`
	Expanded    bool `json:"expanded,omitempty" bson:"expanded,omitempty"`
}

// Property is a display key/value pair, order-preserving.
type Property struct {
	Key   string `json:"key" bson:"key"`
	Value string `json:"value" bson:"value"`
}

// Edge is a visible parent-to-child relation by node id.
type Edge struct {
	From int `json:"from" bson:"from"`
	To   int `json:"to" bson:"to"`
}

// LinkGroup is the drawable connector geometry for one parent: a stub from
// the parent's right edge to a shared vertical spine, and one horizontal
// connector per child.
type LinkGroup struct {
	ParentID    int         `json:"parent_id" bson:"parent_id"`
	ParentY     float64     `json:"parent_y" bson:"parent_y"`
	StubFromX   float64     `json:"stub_from_x" bson:"stub_from_x"`
	SpineX      float64     `json:"spine_x" bson:"spine_x"`
	SpineTop    float64     `json:"spine_top" bson:"spine_top"`
	SpineBottom float64     `json:"spine_bottom" bson:"spine_bottom"`
	Connectors  []Connector `json:"connectors" bson:"connectors"`
}

// Connector is one horizontal run from the spine to a child's left edge.
type Connector struct {
	ChildID int     `json:"child_id" bson:"child_id"`
	Y       float64 `json:"y" bson:"y"`
	FromX   float64 `json:"from_x" bson:"from_x"`
	ToX     float64 `json:"to_x" bson:"to_x"`
}

// Stats mirrors the engine's structural statistics in wire form.
type Stats struct {
	TotalNodes    int   `json:"total_nodes" bson:"total_nodes"`
	VisibleNodes  int   `json:"visible_nodes" bson:"visible_nodes"`
	TotalEdges    int   `json:"total_edges" bson:"total_edges"`
	MaxDepth      int   `json:"max_depth" bson:"max_depth"`
	NodesPerLevel []int `json:"nodes_per_level,omitempty" bson:"nodes_per_level,omitempty"`
}

// =============================================================================
// Tree → Snapshot Conversion
// =============================================================================

// Capture converts a laid-out tree into its serialization format. The tree
// must already carry layout geometry; pass the engine's most recent result
// for the canvas extents.
func Capture(t *tree.Tree, res layout.Result) Snapshot {
	s := Snapshot{
		Unit:   res.Unit,
		Width:  res.Width,
		Height: res.Height,
	}
	if t.IsEmpty() {
		return s
	}
	s.Generation = t.Generation

	visible := t.VisibleNodes()
	s.Nodes = make([]Node, len(visible))
	for i, n := range visible {
		s.Nodes[i] = captureNode(n)
		for _, c := range n.VisibleChildren() {
			s.Edges = append(s.Edges, Edge{From: n.ID, To: c.ID})
		}
	}

	for _, g := range reconcile.Groups(visible) {
		s.Links = append(s.Links, captureGroup(g))
	}

	st := tree.ComputeStats(t)
	s.Stats = Stats{
		TotalNodes:   st.TotalNodes,
		VisibleNodes: t.VisibleCount(),
		TotalEdges:   st.TotalEdges,
		MaxDepth:     st.MaxDepth,
	}
	for _, lvl := range st.NodesPerLevel {
		s.Stats.NodesPerLevel = append(s.Stats.NodesPerLevel, lvl.Count)
	}
	return s
}

func captureNode(n *tree.Node) Node {
	out := Node{
		ID:          n.ID,
		Name:        n.Name,
		Level:       n.Level,
		X:           n.Box.X,
		Y:           n.Box.Y,
		Width:       n.Box.Width,
		Height:      n.Box.Height,
		HasChildren: n.HasChildren(),
		Expanded:    n.IsExpanded(),
	}
	for _, p := range n.Properties {
		out.Properties = append(out.Properties, Property{Key: p.Key, Value: p.Value})
	}
	return out
}

func captureGroup(g reconcile.LinkGroup) LinkGroup {
	out := LinkGroup{
		ParentID:    g.ParentID,
		ParentY:     g.ParentY,
		StubFromX:   g.StubFromX,
		SpineX:      g.SpineX,
		SpineTop:    g.SpineTop,
		SpineBottom: g.SpineBottom,
	}
	for _, c := range g.Connectors {
		out.Connectors = append(out.Connectors, Connector{
			ChildID: c.ChildID,
			Y:       c.Y,
			FromX:   c.FromX,
			ToX:     c.ToX,
		})
	}
	return out
}
