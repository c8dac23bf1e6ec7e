// Package camera provides the pan/zoom transform between layout coordinates
// and the viewport. The camera consumes node positions but owns no tree
// state; it can be repositioned freely without touching the layout.
package camera

import "github.com/treescope/treescope/pkg/tree"

// Zoom bounds. Values outside this range make boxes either unreadable or
// larger than the viewport, so ZoomAt clamps to them.
const (
	MinScale = 0.1
	MaxScale = 4.0
)

// Camera maps layout-space coordinates to viewport coordinates:
//
//	view = (world - offset) * scale
//
// The zero value is not usable; construct with New.
type Camera struct {
	offsetX float64
	offsetY float64
	scale   float64

	viewportW float64
	viewportH float64
}

// New creates a camera at the origin with scale 1 for the given viewport
// size.
func New(viewportW, viewportH float64) *Camera {
	return &Camera{
		scale:     1,
		viewportW: viewportW,
		viewportH: viewportH,
	}
}

// Scale returns the current zoom factor.
func (c *Camera) Scale() float64 { return c.scale }

// Offset returns the current world-space offset of the viewport origin.
func (c *Camera) Offset() (x, y float64) { return c.offsetX, c.offsetY }

// Viewport returns the viewport dimensions.
func (c *Camera) Viewport() (w, h float64) { return c.viewportW, c.viewportH }

// Resize updates the viewport dimensions, keeping offset and scale.
func (c *Camera) Resize(w, h float64) {
	c.viewportW = w
	c.viewportH = h
}

// Pan shifts the viewport by the given view-space delta.
func (c *Camera) Pan(dx, dy float64) {
	c.offsetX += dx / c.scale
	c.offsetY += dy / c.scale
}

// ZoomAt multiplies the scale by factor while keeping the view-space point
// (vx, vy) fixed, so zooming feels anchored under the cursor. The resulting
// scale is clamped to [MinScale, MaxScale].
func (c *Camera) ZoomAt(factor, vx, vy float64) {
	next := c.scale * factor
	if next < MinScale {
		next = MinScale
	}
	if next > MaxScale {
		next = MaxScale
	}
	if next == c.scale {
		return
	}

	// World point under the cursor must stay under the cursor.
	wx := c.offsetX + vx/c.scale
	wy := c.offsetY + vy/c.scale
	c.scale = next
	c.offsetX = wx - vx/c.scale
	c.offsetY = wy - vy/c.scale
}

// Reset returns the camera to the origin at scale 1.
func (c *Camera) Reset() {
	c.offsetX, c.offsetY = 0, 0
	c.scale = 1
}

// FocusOn centers the viewport on the given box at the current scale.
// Selecting a search match is exactly this: a camera move, never a layout
// change.
func (c *Camera) FocusOn(b tree.Box) {
	cx := b.X + b.Width/2
	cy := b.Y
	c.offsetX = cx - c.viewportW/2/c.scale
	c.offsetY = cy - c.viewportH/2/c.scale
}

// Project converts a world-space point to view space.
func (c *Camera) Project(wx, wy float64) (vx, vy float64) {
	return (wx - c.offsetX) * c.scale, (wy - c.offsetY) * c.scale
}

// Visible reports whether any part of the box intersects the viewport.
func (c *Camera) Visible(b tree.Box) bool {
	left, top := c.Project(b.X, b.Y-b.Height/2)
	right, bottom := c.Project(b.X+b.Width, b.Y+b.Height/2)
	return right >= 0 && left <= c.viewportW && bottom >= 0 && top <= c.viewportH
}
