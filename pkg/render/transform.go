package render

import (
	"math"

	"github.com/taigrr/scanline/pkg/math3d"
)

// minClipW is the smallest clip-space W treated as in front of the eye.
const minClipW = 1e-9

// WorldToScreen projects a world-space point to pixel coordinates.
//
// The result holds the pixel X and Y (origin top-left, Y down), the
// normalized depth in Z (0 at the near plane, 1 at the far plane) and
// W = 1. No bounds checks are applied; points off screen or behind the
// camera produce coordinates outside the image or meaningless values.
func WorldToScreen(pos math3d.Vec4, view, proj math3d.Mat4, width, height int) math3d.Vec4 {
	clip := proj.MulVec4(view.MulVec4(pos))
	return ndcToScreen(clip.PerspectiveDivide(), width, height)
}

func ndcToScreen(ndc math3d.Vec4, width, height int) math3d.Vec4 {
	return math3d.V4(
		float64(width)*(ndc.X+1)/2,
		float64(height)*(1-ndc.Y)/2,
		ndc.Z,
		1,
	)
}

// screenVertex is a projected vertex. Pos holds the WorldToScreen result
// and W the clip-space W (camera depth) used for perspective correction.
type screenVertex struct {
	Pos math3d.Vec4
	W   float64
}

// projectVertex is WorldToScreen with a precomputed view-projection that
// keeps the clip W. It reports false for points at or behind the eye and
// for positions that do not project to finite coordinates.
func projectVertex(pos math3d.Vec4, viewProj math3d.Mat4, width, height int) (screenVertex, bool) {
	clip := viewProj.MulVec4(pos)
	if !(clip.W > minClipW) {
		return screenVertex{}, false
	}
	p := ndcToScreen(clip.PerspectiveDivide(), width, height)
	if !finite(p.X) || !finite(p.Y) || !finite(p.Z) {
		return screenVertex{}, false
	}
	return screenVertex{Pos: p, W: clip.W}, true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
