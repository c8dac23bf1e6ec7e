package tree

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Reserved mapping keys that introduce tree structure. The two are
// semantically interchangeable; any other array-valued field is scalar data.
const (
	KeyChildren = "children"
	KeyNodes    = "nodes"
	KeyName     = "name"
)

// FallbackRootName is the label used when a document has no usable root name.
const FallbackRootName = "Root"

// Field is one key/value entry of an ordered document mapping.
type Field struct {
	Key   string
	Value any
}

// Mapping is a document mapping with preserved field order. The document
// boundary (YAML decoding) produces Mapping values so that property order
// survives into the canonical tree. Plain map[string]any is also accepted by
// [Build]; its fields are visited in sorted key order for determinism.
type Mapping []Field

// Get returns the value for key and whether the key exists.
func (m Mapping) Get(key string) (any, bool) {
	for _, f := range m {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// MarshalJSON serializes the mapping as a JSON object in field order.
func (m Mapping) MarshalJSON() ([]byte, error) {
	var buf strings.Builder
	buf.WriteByte('{')
	for i, f := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return []byte(buf.String()), nil
}

// Edge is a parent→child connection in the canonical tree, identified by
// generation-local node IDs.
type Edge struct {
	From int `json:"from" bson:"from"`
	To   int `json:"to" bson:"to"`
}

// Tree is one generation of the canonical tree: the root node plus flat
// derivations used by layout, search, and reconciliation.
//
// A Tree is immutable in structure after Build; only collapse state is
// mutated in place. A new document load starts a new generation with a fresh
// ID namespace, identified by Generation.
type Tree struct {
	// Generation uniquely identifies this build. Node IDs are only
	// comparable within the same generation.
	Generation string

	// Root is the single top-level node, or nil for an absent document.
	Root *Node

	// Nodes lists every node in pre-order, including eventual hidden ones.
	Nodes []*Node

	// Edges lists every parent→child connection over the full structure.
	Edges []Edge

	// Levels maps depth to the ordered nodes at that depth.
	Levels map[int][]*Node
}

// IsEmpty reports whether the tree is the sentinel for an absent document.
func (t *Tree) IsEmpty() bool { return t == nil || t.Root == nil }

// NodeByID returns the node with the given ID, or nil if it does not exist
// in this generation.
func (t *Tree) NodeByID(id int) *Node {
	if t.IsEmpty() || id < 0 || id >= len(t.Nodes) {
		return nil
	}
	return t.Nodes[id]
}

// TotalCount returns the number of nodes reachable through the full
// structure, regardless of collapse state.
func (t *Tree) TotalCount() int {
	if t.IsEmpty() {
		return 0
	}
	return len(t.Nodes)
}

// VisibleCount returns the number of currently visible nodes.
func (t *Tree) VisibleCount() int {
	if t.IsEmpty() {
		return 0
	}
	count := 0
	t.Root.WalkVisible(func(*Node) bool {
		count++
		return true
	})
	return count
}

// VisibleNodes returns the currently visible nodes in pre-order.
func (t *Tree) VisibleNodes() []*Node {
	if t.IsEmpty() {
		return nil
	}
	nodes := make([]*Node, 0, len(t.Nodes))
	t.Root.WalkVisible(func(n *Node) bool {
		nodes = append(nodes, n)
		return true
	})
	return nodes
}

// idAllocator hands out generation-local node IDs. It is created per Build
// call and threaded through the construction explicitly, so IDs are
// deterministic and never shared across generations.
type idAllocator struct {
	next int
}

func (a *idAllocator) alloc() int {
	id := a.next
	a.next++
	return id
}

// Build converts a raw hierarchical document value into a canonical tree.
//
// The document value may be a [Mapping] (ordered), a map[string]any, a
// sequence ([]any), or a scalar. Root shape is resolved in priority order:
//
//  1. A top-level mapping with a "name" field plus at least one more field
//     builds the root directly from that mapping.
//  2. A single-key mapping is unwrapped: the key becomes the root name and
//     the value contributes the root's fields.
//  3. Anything else is wrapped under a synthetic root named "Root".
//
// Build never fails on malformed input; unrecognized shapes degrade to
// best-effort leaf nodes. A nil document yields the sentinel empty tree.
func Build(doc any) *Tree {
	t := &Tree{
		Generation: uuid.NewString(),
		Levels:     make(map[int][]*Node),
	}
	if doc == nil {
		return t
	}

	ids := &idAllocator{}
	b := &builder{tree: t, ids: ids}
	t.Root = b.buildRoot(doc)
	b.index(t.Root)
	return t
}

type builder struct {
	tree *Tree
	ids  *idAllocator
}

// buildRoot applies the root-shape resolution rules.
func (b *builder) buildRoot(doc any) *Node {
	m, ok := asMapping(doc)
	if !ok {
		return b.wrapRaw(doc)
	}

	if _, hasName := m.Get(KeyName); hasName && len(m) > 1 {
		return b.buildNode("", m, nil, 0)
	}

	if len(m) == 1 {
		key, value := m[0].Key, m[0].Value
		if inner, ok := asMapping(value); ok {
			return b.buildNode(key, inner, nil, 0)
		}
		if seq, ok := value.([]any); ok {
			root := b.newNode(key, nil, 0)
			b.appendItems(root, seq)
			return root
		}
		root := b.newNode(key, nil, 0)
		root.Properties = append(root.Properties, Property{Key: "value", Value: stringify(value)})
		return root
	}

	return b.buildNode(FallbackRootName, m, nil, 0)
}

// wrapRaw handles top-level values that are not mappings: sequences become
// children of a synthetic root, scalars degrade to a single leaf with a
// value property.
func (b *builder) wrapRaw(doc any) *Node {
	root := b.newNode(FallbackRootName, nil, 0)
	if seq, ok := doc.([]any); ok {
		b.appendItems(root, seq)
		return root
	}
	root.Properties = append(root.Properties, Property{Key: "value", Value: stringify(doc)})
	return root
}

// buildNode constructs a node from a mapping. An explicit scalar "name"
// field wins over the fallback name (usually the field key the mapping was
// found under).
func (b *builder) buildNode(fallback string, m Mapping, parent *Node, level int) *Node {
	name := fallback
	if v, ok := m.Get(KeyName); ok {
		if s, isScalar := scalarString(v); isScalar {
			name = s
		}
	}
	if name == "" {
		name = FallbackRootName
	}

	n := b.newNode(name, parent, level)
	b.partition(n, m)
	return n
}

// partition classifies each mapping field as structure (reserved child keys,
// nested mappings) or scalar display data.
func (b *builder) partition(n *Node, m Mapping) {
	for _, f := range m {
		switch {
		case f.Key == KeyName:
			// Consumed as the display label.
		case f.Key == KeyChildren || f.Key == KeyNodes:
			if seq, ok := f.Value.([]any); ok {
				b.appendItems(n, seq)
			} else if child, ok := asMapping(f.Value); ok {
				// A mapping under a reserved key is treated as a single child.
				n.Children = append(n.Children, b.buildNode(f.Key, child, n, n.Level+1))
			} else if f.Value != nil {
				n.Properties = append(n.Properties, Property{Key: f.Key, Value: stringify(f.Value)})
			}
		default:
			if child, ok := asMapping(f.Value); ok {
				n.Children = append(n.Children, b.buildNode(f.Key, child, n, n.Level+1))
				continue
			}
			n.Properties = append(n.Properties, Property{Key: f.Key, Value: stringify(f.Value)})
		}
	}
}

// appendItems converts the items of a children/nodes array into child nodes.
// A bare scalar item is coerced into a synthetic leaf named "Item-N" with a
// single value property.
func (b *builder) appendItems(parent *Node, items []any) {
	for i, item := range items {
		if m, ok := asMapping(item); ok {
			fallback := fmt.Sprintf("Item-%d", i+1)
			parent.Children = append(parent.Children, b.buildNode(fallback, m, parent, parent.Level+1))
			continue
		}
		leaf := b.newNode(fmt.Sprintf("Item-%d", i+1), parent, parent.Level+1)
		leaf.Properties = append(leaf.Properties, Property{Key: "value", Value: stringify(item)})
		parent.Children = append(parent.Children, leaf)
	}
}

func (b *builder) newNode(name string, parent *Node, level int) *Node {
	return &Node{
		ID:     b.ids.alloc(),
		Name:   name,
		Parent: parent,
		Level:  level,
	}
}

// index populates the flat derivations (node list, edge list, level map)
// from the finished structure.
func (b *builder) index(root *Node) {
	root.Walk(func(n *Node) bool {
		b.tree.Nodes = append(b.tree.Nodes, n)
		b.tree.Levels[n.Level] = append(b.tree.Levels[n.Level], n)
		if n.Parent != nil {
			b.tree.Edges = append(b.tree.Edges, Edge{From: n.Parent.ID, To: n.ID})
		}
		return true
	})
}

// asMapping normalizes mapping representations. Ordered [Mapping] values
// pass through; plain map[string]any (the yaml.v3 default for untyped
// decoding) is converted with sorted keys so builds stay deterministic.
func asMapping(v any) (Mapping, bool) {
	switch m := v.(type) {
	case Mapping:
		return m, true
	case map[string]any:
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(Mapping, 0, len(m))
		for _, k := range keys {
			out = append(out, Field{Key: k, Value: m[k]})
		}
		return out, true
	default:
		return nil, false
	}
}

// scalarString returns the string form of v when v is a scalar.
func scalarString(v any) (string, bool) {
	switch v.(type) {
	case nil, Mapping, map[string]any, []any:
		return "", false
	default:
		return fmt.Sprint(v), true
	}
}

// stringify renders a field value for display: scalars verbatim, sequences
// comma-joined, mappings as compact JSON.
func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = stringify(item)
		}
		return strings.Join(parts, ", ")
	case Mapping:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	case map[string]any:
		m, _ := asMapping(val)
		data, err := json.Marshal(m)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	default:
		return fmt.Sprint(v)
	}
}
