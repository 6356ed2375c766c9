package render

import (
	"image/color"
	"math"

	"github.com/taigrr/scanline/pkg/math3d"
	"github.com/taigrr/scanline/pkg/scene"
)

// ColorWire is the default edge overlay color.
var ColorWire = color.RGBA{0, 255, 0, 255}

// Wireframe draws the projected edges of scene triangles over a
// framebuffer. It ignores depth and is meant as a debugging overlay.
type Wireframe struct {
	camera *Camera
	fb     *Framebuffer
}

// NewWireframe creates an edge overlay for fb as seen by camera.
func NewWireframe(camera *Camera, fb *Framebuffer) *Wireframe {
	return &Wireframe{
		camera: camera,
		fb:     fb,
	}
}

// DrawScene draws every valid triangle of s.
func (w *Wireframe) DrawScene(s *scene.Scene, c color.RGBA) {
	viewProj := w.camera.ProjectionMatrix().Mul(w.camera.ViewMatrix())
	for _, p := range s.Polygons() {
		for i := range p.Triangles {
			if p.CheckTriangle(i) != nil {
				continue
			}
			v0, v1, v2 := p.Corners(i)
			w.drawEdge(v0.Position, v1.Position, viewProj, c)
			w.drawEdge(v1.Position, v2.Position, viewProj, c)
			w.drawEdge(v2.Position, v0.Position, viewProj, c)
		}
	}
}

// drawEdge draws a world-space segment when both ends are in front of the
// eye and reasonably close to the screen.
func (w *Wireframe) drawEdge(a, b math3d.Vec4, viewProj math3d.Mat4, c color.RGBA) {
	sa, okA := projectVertex(a, viewProj, w.fb.Width, w.fb.Height)
	sb, okB := projectVertex(b, viewProj, w.fb.Width, w.fb.Height)
	if !okA || !okB || !w.nearScreen(sa.Pos) || !w.nearScreen(sb.Pos) {
		return
	}
	w.fb.DrawLine(
		int(math.Round(sa.Pos.X)), int(math.Round(sa.Pos.Y)),
		int(math.Round(sb.Pos.X)), int(math.Round(sb.Pos.Y)),
		c,
	)
}

func (w *Wireframe) nearScreen(p math3d.Vec4) bool {
	mx, my := float64(4*w.fb.Width), float64(4*w.fb.Height)
	return p.X > -mx && p.X < mx && p.Y > -my && p.Y < my
}
