package tree

import "slices"

// Property is a single display key/value pair attached to a node.
// Property order follows the field order of the source document.
type Property struct {
	Key   string `json:"key" bson:"key"`
	Value string `json:"value" bson:"value"`
}

// Box is the cached geometry for a node, written by the layout engine.
// PrevX and PrevY hold the position from the previous layout pass and feed
// the enter/update/exit classification for animated transitions.
type Box struct {
	X      float64
	Y      float64
	Width  float64
	Height float64

	PrevX float64
	PrevY float64
}

// Center returns the vertical center of the box.
func (b Box) Center() float64 { return b.Y }

// Node is one element of the canonical tree: a labeled box with ordered
// properties and an optional child list.
//
// Visibility is modeled as a tagged state rather than two nullable child
// lists: Children always holds the full child set (nil for a permanent leaf),
// and the collapsed flag decides whether those children are currently
// visible. Re-expanding a collapsed node is therefore a flag flip - the
// hidden subtree is never rebuilt.
//
// Nodes are created wholesale by [Build], mutated in place only by collapse
// state changes, and discarded when the whole tree is rebuilt. A Node is not
// safe for concurrent use without external synchronization.
type Node struct {
	// ID is unique within one generation and never reused for a different
	// logical node within that generation.
	ID int

	// Name is the display label.
	Name string

	// Properties holds scalar fields in document order.
	Properties []Property

	// Parent is a back-reference for ancestor walks; nil for the root.
	Parent *Node

	// Level is the depth from the root (root = 0).
	Level int

	// Children is the complete child list regardless of collapse state.
	// Nil means the node is a permanent leaf.
	Children []*Node

	// Box is the cached layout geometry. Only meaningful for nodes that
	// were visible during the most recent layout pass.
	Box Box

	collapsed bool
}

// HasChildren reports whether the node has any children, visible or hidden.
func (n *Node) HasChildren() bool { return len(n.Children) > 0 }

// IsCollapsed reports whether the node's children are currently hidden.
// A permanent leaf is never considered collapsed.
func (n *Node) IsCollapsed() bool { return n.collapsed && n.HasChildren() }

// IsExpanded reports whether the node has children and they are visible.
func (n *Node) IsExpanded() bool { return n.HasChildren() && !n.collapsed }

// SetCollapsed updates the collapse state. Collapsing a permanent leaf is a
// no-op, so the call is idempotent in both directions.
func (n *Node) SetCollapsed(collapsed bool) {
	if !n.HasChildren() {
		return
	}
	n.collapsed = collapsed
}

// VisibleChildren returns the child list when the node is expanded, or nil
// when it is collapsed or a leaf.
func (n *Node) VisibleChildren() []*Node {
	if n.collapsed {
		return nil
	}
	return n.Children
}

// HiddenChildren returns the child list held back by a collapse, or nil when
// the node is expanded or a leaf.
func (n *Node) HiddenChildren() []*Node {
	if n.collapsed {
		return n.Children
	}
	return nil
}

// PropertyValue returns the value for the given property key and whether the
// key exists.
func (n *Node) PropertyValue(key string) (string, bool) {
	for _, p := range n.Properties {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Walk visits the node and every descendant in pre-order, including children
// hidden by a collapse. Traversal stops early if fn returns false.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// WalkVisible visits the node and every currently visible descendant in
// pre-order. Subtrees below a collapsed node are skipped entirely.
// Traversal stops early if fn returns false.
func (n *Node) WalkVisible(fn func(*Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for _, c := range n.VisibleChildren() {
		if !c.WalkVisible(fn) {
			return false
		}
	}
	return true
}

// Descendants returns the number of nodes in the subtree rooted at n,
// excluding n itself, regardless of collapse state.
func (n *Node) Descendants() int {
	count := 0
	n.Walk(func(m *Node) bool {
		count++
		return true
	})
	return count - 1
}

// PathTo walks parent references from n to the root and returns the ordered
// ancestor chain [root, ..., n]. Returns nil for a nil node.
func PathTo(n *Node) []*Node {
	if n == nil {
		return nil
	}
	var path []*Node
	for cur := n; cur != nil; cur = cur.Parent {
		path = append(path, cur)
	}
	slices.Reverse(path)
	return path
}
