// Package layout computes box sizes and positions for the visible subset of
// a canonical tree.
//
// The engine is a pure function of the tree's current visibility state:
// subtrees hidden by a collapse contribute nothing. Every structural change
// (toggle, rebuild) recomputes the whole visible layout; incrementality is
// deliberately left to the transition layer, which only animates the
// differences between two full passes.
//
// Placement works in two steps:
//
//  1. Size every visible node from its content (name, property lines).
//  2. Place subtrees in post-order. Leaves stack top-down per level,
//     spacing adjacent nodes proportionally to the taller of the two boxes,
//     with strictly wider gaps between nodes under different parents. Each
//     parent settles on the vertical midpoint of its visible children —
//     unless that midpoint would collide with an earlier node on the
//     parent's own level, in which case the parent takes the first free
//     position and its whole subtree shifts down with it.
//
// Horizontal position is fully determined by depth: x = level × spacing.
package layout

import (
	"math"

	"github.com/treescope/treescope/pkg/tree"
)

// Config holds the spacing and sizing constants of the engine. All values
// are in abstract canvas units; the renderer decides what a unit means.
// Fields carry TOML tags so a config file can override individual constants.
type Config struct {
	// HorizontalSpacing is the x distance between consecutive depth levels.
	HorizontalSpacing float64 `toml:"horizontal_spacing"`

	// OffsetX shifts the whole tree right of the canvas origin.
	OffsetX float64 `toml:"offset_x"`

	// BaseBoxHeight is the height of a box with no properties.
	BaseBoxHeight float64 `toml:"base_box_height"`

	// PropertyLineHeight is the extra height per property line.
	PropertyLineHeight float64 `toml:"property_line_height"`

	// CharWidth approximates the rendered width of one character.
	CharWidth float64 `toml:"char_width"`

	// BoxPadding is the horizontal padding added to the longest text line.
	BoxPadding float64 `toml:"box_padding"`

	// MinBoxWidth and MaxBoxWidth clamp the content-derived box width.
	MinBoxWidth float64 `toml:"min_box_width"`
	MaxBoxWidth float64 `toml:"max_box_width"`

	// SiblingGapRatio scales the gap between adjacent nodes that share a
	// parent, relative to the taller of the two boxes.
	SiblingGapRatio float64 `toml:"sibling_gap_ratio"`

	// CousinGapRatio scales the gap between adjacent nodes under different
	// parents. It must exceed SiblingGapRatio so unrelated branches read
	// as separate groups.
	CousinGapRatio float64 `toml:"cousin_gap_ratio"`
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		HorizontalSpacing:  260,
		OffsetX:            40,
		BaseBoxHeight:      40,
		PropertyLineHeight: 18,
		CharWidth:          7.2,
		BoxPadding:         24,
		MinBoxWidth:        120,
		MaxBoxWidth:        360,
		SiblingGapRatio:    0.35,
		CousinGapRatio:     0.8,
	}
}

// normalized returns a copy with zero fields replaced by defaults, so a
// partially filled TOML override still yields a usable configuration.
func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.HorizontalSpacing <= 0 {
		c.HorizontalSpacing = d.HorizontalSpacing
	}
	if c.OffsetX < 0 {
		c.OffsetX = d.OffsetX
	}
	if c.BaseBoxHeight <= 0 {
		c.BaseBoxHeight = d.BaseBoxHeight
	}
	if c.PropertyLineHeight <= 0 {
		c.PropertyLineHeight = d.PropertyLineHeight
	}
	if c.CharWidth <= 0 {
		c.CharWidth = d.CharWidth
	}
	if c.BoxPadding <= 0 {
		c.BoxPadding = d.BoxPadding
	}
	if c.MinBoxWidth <= 0 {
		c.MinBoxWidth = d.MinBoxWidth
	}
	if c.MaxBoxWidth < c.MinBoxWidth {
		c.MaxBoxWidth = math.Max(d.MaxBoxWidth, c.MinBoxWidth)
	}
	if c.SiblingGapRatio <= 0 {
		c.SiblingGapRatio = d.SiblingGapRatio
	}
	if c.CousinGapRatio <= c.SiblingGapRatio {
		c.CousinGapRatio = c.SiblingGapRatio * 2
	}
	return c
}

// Result is the outcome of one layout pass.
type Result struct {
	// Nodes lists the visible nodes in pre-order. Their Box fields have
	// been updated in place.
	Nodes []*tree.Node

	// Unit is the vertical spacing unit derived from the densest level.
	Unit float64

	// Width and Height are the extents of the occupied canvas area.
	Width  float64
	Height float64
}

// Engine computes layouts for canonical trees. The zero value is not usable;
// construct with New.
type Engine struct {
	cfg Config
}

// New creates an engine. Zero-valued config fields fall back to defaults.
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg.normalized()}
}

// Config returns the effective configuration after default substitution.
func (e *Engine) Config() Config { return e.cfg }

// Layout computes geometry for every visible node of the tree, writing the
// results onto the nodes' Box fields and returning the visible set.
// An empty tree yields an empty result.
func (e *Engine) Layout(t *tree.Tree) Result {
	if t.IsEmpty() {
		return Result{}
	}

	visible := t.VisibleNodes()
	for _, n := range visible {
		e.size(n)
	}

	unit := e.spacingUnit(visible)
	e.place(t.Root, make(map[int]*tree.Node), unit)

	res := Result{Nodes: visible, Unit: unit}
	for _, n := range visible {
		res.Width = math.Max(res.Width, n.Box.X+n.Box.Width)
		res.Height = math.Max(res.Height, n.Box.Y+n.Box.Height/2)
	}
	return res
}

// size computes a node's box dimensions from its content. Height grows
// linearly with the property count; width follows the longest text line,
// clamped to the configured bounds.
func (e *Engine) size(n *tree.Node) {
	h := e.cfg.BaseBoxHeight + float64(len(n.Properties))*e.cfg.PropertyLineHeight

	longest := len(n.Name)
	for _, p := range n.Properties {
		if l := len(p.Key) + 2 + len(p.Value); l > longest {
			longest = l
		}
	}
	w := float64(longest)*e.cfg.CharWidth + e.cfg.BoxPadding
	w = math.Min(math.Max(w, e.cfg.MinBoxWidth), e.cfg.MaxBoxWidth)

	n.Box.Width = w
	n.Box.Height = h
	n.Box.X = float64(n.Level)*e.cfg.HorizontalSpacing + e.cfg.OffsetX
}

// spacingUnit derives one uniform vertical unit for the whole pass. The
// level with the highest aggregate property load (node count × mean
// properties per node) sets the pace: the unit must clear that level's
// tallest box. Applying a single unit everywhere avoids visually uneven
// density between sparse and dense levels.
func (e *Engine) spacingUnit(visible []*tree.Node) float64 {
	type levelLoad struct {
		count     int
		props     int
		maxHeight float64
	}
	loads := make(map[int]*levelLoad)
	for _, n := range visible {
		l, ok := loads[n.Level]
		if !ok {
			l = &levelLoad{}
			loads[n.Level] = l
		}
		l.count++
		l.props += len(n.Properties)
		l.maxHeight = math.Max(l.maxHeight, n.Box.Height)
	}

	best := e.cfg.BaseBoxHeight
	bestLoad := -1.0
	for _, l := range loads {
		load := float64(l.count) * (float64(l.props)/float64(l.count) + 1)
		if load > bestLoad {
			bestLoad = load
			best = l.maxHeight
		}
	}
	return best + e.cfg.BaseBoxHeight/2
}

// place assigns vertical centers in post-order. prev tracks the last node
// placed on each level; a node may never rise above the slot its level
// predecessor dictates. Leaves take that slot directly. A parent prefers
// the midpoint of its children's vertical extent, and when the midpoint
// sits above the slot the parent drops to the slot and drags its entire
// subtree down by the same amount, so earlier subtrees stay clear.
func (e *Engine) place(n *tree.Node, prev map[int]*tree.Node, unit float64) {
	kids := n.VisibleChildren()
	for _, c := range kids {
		e.place(c, prev, unit)
	}

	floor := 0.0
	if p := prev[n.Level]; p != nil {
		ratio := e.cfg.SiblingGapRatio
		if p.Parent != n.Parent {
			ratio = e.cfg.CousinGapRatio
		}
		gap := ratio * math.Max(p.Box.Height, n.Box.Height)
		step := p.Box.Height/2 + gap + n.Box.Height/2
		floor = p.Box.Y + math.Max(step, unit)
	}

	if len(kids) == 0 {
		n.Box.Y = floor
	} else {
		top := kids[0].Box.Y - kids[0].Box.Height/2
		bottom := kids[len(kids)-1].Box.Y + kids[len(kids)-1].Box.Height/2
		mid := (top + bottom) / 2
		n.Box.Y = math.Max(mid, floor)
		if mid < floor {
			e.shiftSubtree(n, floor-mid)
		}
	}
	prev[n.Level] = n
}

// shiftSubtree moves every visible descendant of n down by d. Nothing has
// been placed below the subtree yet, so shifting down cannot introduce a
// new collision.
func (e *Engine) shiftSubtree(n *tree.Node, d float64) {
	for _, c := range n.VisibleChildren() {
		c.Box.Y += d
		e.shiftSubtree(c, d)
	}
}
