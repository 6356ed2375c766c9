package render

import (
	"image/color"

	"github.com/taigrr/scanline/pkg/math3d"
)

// AmbientTerm is the light every fragment receives regardless of its
// orientation.
const AmbientTerm = 0.3

// Lambert returns the light intensity for a surface normal. The light
// shines from the eye along the camera's forward axis, so surfaces facing
// the camera receive AmbientTerm + 1 and surfaces facing away receive
// AmbientTerm.
func Lambert(cam *Camera, normal math3d.Vec4) float64 {
	light := cam.Forward().Scale(-1).Vec3().Normalize()
	n := normal.Vec3().Normalize()
	return AmbientTerm + clamp01(light.Dot(n))
}

// Shade scales a base color by intensity. Channels saturate at 255 and
// the result is opaque.
func Shade(base color.RGBA, intensity float64) color.RGBA {
	return color.RGBA{
		R: clamp255(float64(base.R) * intensity),
		G: clamp255(float64(base.G) * intensity),
		B: clamp255(float64(base.B) * intensity),
		A: 255,
	}
}

func clamp01(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
