package render

import (
	"math"
	"testing"

	"github.com/taigrr/scanline/pkg/math3d"
)

func TestSegmentIntersection(t *testing.T) {
	tests := []struct {
		name   string
		a, b   math3d.Vec4
		y      int
		wantX  float64
		wantOK bool
	}{
		{"diagonal", math3d.V4(0, 0, 0, 1), math3d.V4(10, 10, 0, 1), 5, 5, true},
		{"diagonal reversed", math3d.V4(10, 10, 0, 1), math3d.V4(0, 0, 0, 1), 5, 5, true},
		{"shallow slope", math3d.V4(0, 0, 0, 1), math3d.V4(8, 2, 0, 1), 1, 4, true},
		{"negative slope", math3d.V4(0, 10, 0, 1), math3d.V4(10, 0, 0, 1), 3, 7, true},
		{"top endpoint", math3d.V4(2, 1, 0, 1), math3d.V4(6, 5, 0, 1), 1, 2, true},
		{"bottom endpoint", math3d.V4(2, 1, 0, 1), math3d.V4(6, 5, 0, 1), 5, 6, true},
		{"vertical", math3d.V4(3, 0, 0, 1), math3d.V4(3, 10, 0, 1), 4, 3, true},
		{"vertical outside", math3d.V4(3, 0, 0, 1), math3d.V4(3, 10, 0, 1), 11, 0, false},
		{"horizontal on row", math3d.V4(0, 4, 0, 1), math3d.V4(9, 4, 0, 1), 4, 0, false},
		{"horizontal off row", math3d.V4(0, 4, 0, 1), math3d.V4(9, 4, 0, 1), 2, 0, false},
		{"above", math3d.V4(0, 2, 0, 1), math3d.V4(4, 6, 0, 1), 1, 0, false},
		{"below", math3d.V4(0, 2, 0, 1), math3d.V4(4, 6, 0, 1), 7, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, ok := NewSegment(tt.a, tt.b).Intersection(tt.y)
			if ok != tt.wantOK {
				t.Fatalf("Intersection(%d) ok = %v, want %v", tt.y, ok, tt.wantOK)
			}
			if ok && math.Abs(x-tt.wantX) > 1e-9 {
				t.Errorf("Intersection(%d) = %v, want %v", tt.y, x, tt.wantX)
			}
		})
	}
}

func TestSegmentSharedEdgeIsSymmetric(t *testing.T) {
	a := math3d.V4(1.37, 2.11, 0, 1)
	b := math3d.V4(40.93, 33.71, 0, 1)
	ab, ba := NewSegment(a, b), NewSegment(b, a)

	for y := 3; y <= 33; y++ {
		x1, ok1 := ab.Intersection(y)
		x2, ok2 := ba.Intersection(y)
		if ok1 != ok2 || x1 != x2 {
			t.Fatalf("row %d: %v,%v vs %v,%v", y, x1, ok1, x2, ok2)
		}
	}
}
