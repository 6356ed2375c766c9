package render

import (
	"image/color"
	"math"

	"github.com/taigrr/scanline/pkg/math3d"
)

// areaEpsilon is the smallest doubled screen area treated as a triangle.
const areaEpsilon = 1e-9

// Barycentric returns the weights of p relative to the screen triangle
// p1 p2 p3. Each weight is the area of the sub-triangle opposite its
// vertex, normalized so the three sum to 1. It reports false when the
// triangle has no area.
func Barycentric(p1, p2, p3, p math3d.Vec2) (math3d.Vec3, bool) {
	if math.Abs(p2.Sub(p1).Cross(p3.Sub(p1))) < areaEpsilon {
		return math3d.Vec3{}, false
	}
	a1 := math.Abs(p2.Sub(p).Cross(p3.Sub(p)))
	a2 := math.Abs(p3.Sub(p).Cross(p1.Sub(p)))
	a3 := math.Abs(p1.Sub(p).Cross(p2.Sub(p)))
	sum := a1 + a2 + a3
	return math3d.V3(a1/sum, a2/sum, a3/sum), true
}

// PerspectiveCorrect turns screen-space weights into weights that are
// linear in world space, given the clip W of each vertex. The result is
// (b_i / w_i) / Σ(b_j / w_j), which equals bc when all W are equal.
func PerspectiveCorrect(bc, w math3d.Vec3) (math3d.Vec3, bool) {
	if !(w.X > minClipW && w.Y > minClipW && w.Z > minClipW) {
		return math3d.Vec3{}, false
	}
	c := math3d.V3(bc.X/w.X, bc.Y/w.Y, bc.Z/w.Z)
	sum := c.Sum()
	if !(sum > 0) || math.IsInf(sum, 0) {
		return math3d.Vec3{}, false
	}
	return c.Scale(1 / sum), true
}

// PerspectiveBarycentric combines Barycentric and PerspectiveCorrect.
func PerspectiveBarycentric(p1, p2, p3, p math3d.Vec2, w math3d.Vec3) (math3d.Vec3, bool) {
	bc, ok := Barycentric(p1, p2, p3, p)
	if !ok {
		return math3d.Vec3{}, false
	}
	return PerspectiveCorrect(bc, w)
}

// InterpolateFloat blends three scalars.
func InterpolateFloat(a, b, c float64, bc math3d.Vec3) float64 {
	return a*bc.X + b*bc.Y + c*bc.Z
}

// InterpolateColor blends three colors channel by channel.
func InterpolateColor(c1, c2, c3 color.RGBA, bc math3d.Vec3) color.RGBA {
	mix := func(a, b, c uint8) uint8 {
		return clamp255(InterpolateFloat(float64(a), float64(b), float64(c), bc))
	}
	return color.RGBA{
		R: mix(c1.R, c2.R, c3.R),
		G: mix(c1.G, c2.G, c3.G),
		B: mix(c1.B, c2.B, c3.B),
		A: mix(c1.A, c2.A, c3.A),
	}
}

// InterpolateUV blends three texture coordinates.
func InterpolateUV(t1, t2, t3 math3d.Vec2, bc math3d.Vec3) math3d.Vec2 {
	return t1.Scale(bc.X).Add(t2.Scale(bc.Y)).Add(t3.Scale(bc.Z))
}

// InterpolateNormal blends three normals. The result is not normalized.
func InterpolateNormal(n1, n2, n3 math3d.Vec4, bc math3d.Vec3) math3d.Vec4 {
	return n1.Scale(bc.X).Add(n2.Scale(bc.Y)).Add(n3.Scale(bc.Z))
}

func clamp255(v float64) uint8 {
	if !(v > 0) {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
