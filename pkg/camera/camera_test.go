package camera

import (
	"math"
	"testing"

	"github.com/treescope/treescope/pkg/tree"
)

func TestPanShiftsProjection(t *testing.T) {
	c := New(800, 600)
	c.Pan(100, 50)

	vx, vy := c.Project(100, 50)
	if vx != 0 || vy != 0 {
		t.Errorf("projected = (%v, %v), want origin after matching pan", vx, vy)
	}
}

func TestZoomAtKeepsAnchorFixed(t *testing.T) {
	c := New(800, 600)
	c.Pan(40, 20)

	// World point currently under view point (400, 300).
	wx := 40 + 400.0
	wy := 20 + 300.0

	c.ZoomAt(2, 400, 300)
	vx, vy := c.Project(wx, wy)
	if math.Abs(vx-400) > 1e-9 || math.Abs(vy-300) > 1e-9 {
		t.Errorf("anchor drifted to (%v, %v), want (400, 300)", vx, vy)
	}
	if c.Scale() != 2 {
		t.Errorf("scale = %v, want 2", c.Scale())
	}
}

func TestZoomClamped(t *testing.T) {
	c := New(800, 600)

	c.ZoomAt(1e-6, 0, 0)
	if c.Scale() != MinScale {
		t.Errorf("scale = %v, want clamped to %v", c.Scale(), MinScale)
	}

	c.ZoomAt(1e6, 0, 0)
	if c.Scale() != MaxScale {
		t.Errorf("scale = %v, want clamped to %v", c.Scale(), MaxScale)
	}
}

func TestFocusOnCentersBox(t *testing.T) {
	c := New(800, 600)
	b := tree.Box{X: 1000, Y: 500, Width: 200, Height: 60}

	c.FocusOn(b)
	vx, vy := c.Project(b.X+b.Width/2, b.Y)
	if vx != 400 || vy != 300 {
		t.Errorf("box center projected to (%v, %v), want viewport center (400, 300)", vx, vy)
	}
}

func TestReset(t *testing.T) {
	c := New(800, 600)
	c.Pan(10, 10)
	c.ZoomAt(2, 100, 100)

	c.Reset()
	if c.Scale() != 1 {
		t.Errorf("scale = %v, want 1", c.Scale())
	}
	if x, y := c.Offset(); x != 0 || y != 0 {
		t.Errorf("offset = (%v, %v), want origin", x, y)
	}
}

func TestVisible(t *testing.T) {
	c := New(800, 600)

	tests := []struct {
		name string
		box  tree.Box
		want bool
	}{
		{"Inside", tree.Box{X: 100, Y: 100, Width: 50, Height: 20}, true},
		{"FarRight", tree.Box{X: 5000, Y: 100, Width: 50, Height: 20}, false},
		{"Above", tree.Box{X: 100, Y: -500, Width: 50, Height: 20}, false},
		{"Straddling", tree.Box{X: -20, Y: 0, Width: 100, Height: 100}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Visible(tt.box); got != tt.want {
				t.Errorf("Visible(%+v) = %v, want %v", tt.box, got, tt.want)
			}
		})
	}
}
