package render

import "github.com/taigrr/scanline/pkg/math3d"

// Segment is a screen-space triangle edge.
//
// Endpoints are stored lowest Y first (then lowest X), so two triangles
// sharing an edge compute bit-identical row intersections for it.
type Segment struct {
	P1, P2 math3d.Vec2
	slope  float64 // dy/dx, unset for vertical edges
}

// NewSegment creates the edge between the screen positions of a and b.
// Only X and Y are used.
func NewSegment(a, b math3d.Vec4) Segment {
	p1, p2 := math3d.V2(a.X, a.Y), math3d.V2(b.X, b.Y)
	if p1.Y > p2.Y || (p1.Y == p2.Y && p1.X > p2.X) {
		p1, p2 = p2, p1
	}
	s := Segment{P1: p1, P2: p2}
	if dx := p2.X - p1.X; dx != 0 {
		s.slope = (p2.Y - p1.Y) / dx
	}
	return s
}

// Horizontal reports whether both endpoints share a Y coordinate.
func (s Segment) Horizontal() bool {
	return s.P1.Y == s.P2.Y
}

// Vertical reports whether both endpoints share an X coordinate.
func (s Segment) Vertical() bool {
	return s.P1.X == s.P2.X
}

// Intersection returns the X coordinate where the edge crosses row y.
// It reports false for horizontal edges and rows outside the edge's
// vertical extent.
func (s Segment) Intersection(y int) (float64, bool) {
	fy := float64(y)
	if s.Horizontal() || fy < s.P1.Y || fy > s.P2.Y {
		return 0, false
	}
	if s.Vertical() {
		return s.P1.X, true
	}
	return (fy-s.P1.Y)/s.slope + s.P1.X, true
}
