package math3d

import (
	"math"
	"testing"
)

const eps = 1e-9

func near(a, b float64) bool {
	return math.Abs(a-b) < eps
}

func nearVec4(a, b Vec4) bool {
	return near(a.X, b.X) && near(a.Y, b.Y) && near(a.Z, b.Z) && near(a.W, b.W)
}

func TestPerspectiveDepthRange(t *testing.T) {
	const n, f = 0.5, 50.0
	proj := Perspective(math.Pi/2, 1, n, f)

	tests := []struct {
		name  string
		z     float64
		depth float64
	}{
		{"near plane", n, 0},
		{"far plane", f, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clip := proj.MulVec4(Point(0, 0, tt.z))
			if !near(clip.W, tt.z) {
				t.Errorf("clip w = %v, want %v", clip.W, tt.z)
			}
			if got := clip.PerspectiveDivide().Z; !near(got, tt.depth) {
				t.Errorf("ndc z = %v, want %v", got, tt.depth)
			}
		})
	}
}

func TestPerspectiveFieldOfView(t *testing.T) {
	// A point on the top edge of a 90° frustum lands on ndc y = 1.
	proj := Perspective(math.Pi/2, 2, 0.1, 10)
	ndc := proj.MulVec4(Point(0, 3, 3)).PerspectiveDivide()
	if !near(ndc.Y, 1) {
		t.Errorf("ndc y = %v, want 1", ndc.Y)
	}
	ndc = proj.MulVec4(Point(6, 0, 3)).PerspectiveDivide()
	if !near(ndc.X, 1) {
		t.Errorf("ndc x = %v, want 1 with aspect 2", ndc.X)
	}
}

func TestRotate(t *testing.T) {
	tests := []struct {
		name  string
		axis  Vec3
		angle float64
		in    Vec4
		want  Vec4
	}{
		{"quarter turn about y", V3(0, 1, 0), math.Pi / 2, Direction(0, 0, -1), Direction(-1, 0, 0)},
		{"half turn about y", V3(0, 1, 0), math.Pi, Direction(0, 0, -1), Direction(0, 0, 1)},
		{"quarter turn about z", V3(0, 0, 1), math.Pi / 2, Direction(1, 0, 0), Direction(0, 1, 0)},
		{"axis is fixed", V3(1, 0, 0), 1.234, Direction(1, 0, 0), Direction(1, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Rotate(tt.axis, tt.angle).MulVec4(tt.in)
			if !nearVec4(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFromRows(t *testing.T) {
	m := FromRows(V4(1, 2, 3, 4), V4(5, 6, 7, 8), V4(9, 10, 11, 12), V4(13, 14, 15, 16))
	if m[12] != 4 || m[6] != 10 || m[3] != 13 {
		t.Errorf("unexpected layout: %v", m)
	}
	got := m.MulVec4(V4(1, 0, 0, 0))
	if got != V4(1, 5, 9, 13) {
		t.Errorf("first column = %v", got)
	}
}

func TestMulTranslate(t *testing.T) {
	m := Rotate(V3(0, 0, 1), math.Pi/2).Mul(Translate(V3(1, 0, 0)))
	got := m.MulVec4(Point(0, 0, 0))
	if !nearVec4(got, Point(0, 1, 0)) {
		t.Errorf("got %v, want (0,1,0,1)", got)
	}
	if got := m.MulVec4(Direction(1, 0, 0)); !nearVec4(got, Direction(0, 1, 0)) {
		t.Errorf("directions must ignore translation, got %v", got)
	}
}
