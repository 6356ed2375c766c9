// Package render turns a scene of textured polygons into an image with a
// CPU scanline rasterizer, and draws images to a terminal.
package render

import (
	"errors"
	"image/color"
	"math"

	"github.com/taigrr/scanline/pkg/math3d"
	"github.com/taigrr/scanline/pkg/scene"
	"github.com/taigrr/scanline/pkg/texture"
)

// Rasterizer errors.
var (
	ErrInvalidSize = errors.New("render: image size must be positive")
	ErrNilCamera   = errors.New("render: camera is nil")
)

// Default output size.
const (
	DefaultWidth  = 512
	DefaultHeight = 512
)

// ColorBackground is the color of pixels no triangle covers.
var ColorBackground = color.RGBA{0, 0, 0, 255}

// Options configures a Rasterizer.
type Options struct {
	Width  int
	Height int
	Filter texture.FilterMode

	// ClipDepth discards fragments whose NDC depth falls outside [0,1].
	// When false only the depth test decides visibility.
	ClipDepth bool
}

// DefaultOptions returns a 512x512 nearest-texel configuration.
func DefaultOptions() Options {
	return Options{
		Width:  DefaultWidth,
		Height: DefaultHeight,
		Filter: texture.FilterNearest,
	}
}

// Stats counts what happened during the last render.
type Stats struct {
	Polygons      int // Polygons visited
	Triangles     int // Triangles submitted
	Drawn         int // Triangles that reached scan conversion
	Culled        int // Behind the eye, off screen or zero area
	Malformed     int // Skipped for out of range indices
	Fragments     int // Pixels written
	DepthRejected int // Fragments hidden by a nearer one
	DepthClipped  int // Fragments outside the near/far range, with ClipDepth set
}

// Rasterizer renders scenes into a framebuffer it owns. It is not safe for
// concurrent use; each RenderScene call is one sequential sweep.
type Rasterizer struct {
	opts  Options
	fb    *Framebuffer
	depth *DepthBuffer
	stats Stats
}

// NewRasterizer creates a rasterizer for the given options.
func NewRasterizer(opts Options) (*Rasterizer, error) {
	r := &Rasterizer{opts: opts}
	if err := r.Resize(opts.Width, opts.Height); err != nil {
		return nil, err
	}
	return r, nil
}

// Resize changes the output resolution.
func (r *Rasterizer) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return ErrInvalidSize
	}
	r.opts.Width = width
	r.opts.Height = height
	r.fb = NewFramebuffer(width, height)
	r.depth = NewDepthBuffer(width, height)
	return nil
}

// SetFilter selects nearest or bilinear texture sampling.
func (r *Rasterizer) SetFilter(f texture.FilterMode) {
	r.opts.Filter = f
}

// Options returns the current configuration.
func (r *Rasterizer) Options() Options {
	return r.opts
}

// Width returns the output width in pixels.
func (r *Rasterizer) Width() int {
	return r.opts.Width
}

// Height returns the output height in pixels.
func (r *Rasterizer) Height() int {
	return r.opts.Height
}

// Stats returns the counters of the last render.
func (r *Rasterizer) Stats() Stats {
	return r.stats
}

// Depth returns the depth buffer of the last render.
func (r *Rasterizer) Depth() *DepthBuffer {
	return r.depth
}

// RenderScene draws every triangle of s as seen by cam.
//
// The returned framebuffer is owned by the rasterizer and overwritten by
// the next call; Clone it to keep it. The image is always fully rendered:
// triangles with out of range indices are skipped and reported through
// the returned error, which wraps scene.ErrIndexOutOfRange.
func (r *Rasterizer) RenderScene(s *scene.Scene, cam *Camera) (*Framebuffer, error) {
	r.fb.Clear(ColorBackground)
	r.depth.Clear()
	r.stats = Stats{}

	if cam == nil {
		return r.fb, ErrNilCamera
	}
	if s == nil {
		return r.fb, nil
	}

	viewProj := cam.ProjectionMatrix().Mul(cam.ViewMatrix())

	var errs []error
	for _, p := range s.Polygons() {
		r.stats.Polygons++
		for i := range p.Triangles {
			r.stats.Triangles++
			if err := p.CheckTriangle(i); err != nil {
				r.stats.Malformed++
				Logger().Warn("skipping malformed triangle", "polygon", p.Name, "triangle", i, "error", err)
				errs = append(errs, err)
				continue
			}
			r.drawTriangle(p, i, viewProj, cam)
		}
	}

	Logger().Debug("frame rendered",
		"width", r.opts.Width,
		"height", r.opts.Height,
		"triangles", r.stats.Triangles,
		"drawn", r.stats.Drawn,
		"culled", r.stats.Culled,
		"fragments", r.stats.Fragments,
	)

	return r.fb, errors.Join(errs...)
}

// triangleSetup holds everything per-pixel shading needs from one
// projected triangle.
type triangleSetup struct {
	verts  [3]scene.Vertex
	screen [3]math3d.Vec2
	depth  math3d.Vec3 // NDC depth per vertex
	w      math3d.Vec3 // Clip W per vertex
	tex    *texture.Texture
	cam    *Camera
}

func (r *Rasterizer) drawTriangle(p *scene.Polygon, i int, viewProj math3d.Mat4, cam *Camera) {
	v0, v1, v2 := p.Corners(i)
	width, height := r.opts.Width, r.opts.Height

	s0, ok0 := projectVertex(v0.Position, viewProj, width, height)
	s1, ok1 := projectVertex(v1.Position, viewProj, width, height)
	s2, ok2 := projectVertex(v2.Position, viewProj, width, height)
	if !ok0 || !ok1 || !ok2 {
		r.stats.Culled++
		return
	}

	t := triangleSetup{
		verts: [3]scene.Vertex{v0, v1, v2},
		screen: [3]math3d.Vec2{
			math3d.V2(s0.Pos.X, s0.Pos.Y),
			math3d.V2(s1.Pos.X, s1.Pos.Y),
			math3d.V2(s2.Pos.X, s2.Pos.Y),
		},
		depth: math3d.V3(s0.Pos.Z, s1.Pos.Z, s2.Pos.Z),
		w:     math3d.V3(s0.W, s1.W, s2.W),
		tex:   p.Texture,
		cam:   cam,
	}

	if math.Abs(t.screen[1].Sub(t.screen[0]).Cross(t.screen[2].Sub(t.screen[0]))) < areaEpsilon {
		r.stats.Culled++
		return
	}

	// Bounding box clamped to the screen
	minX := max(0, ceilPixel(min3(s0.Pos.X, s1.Pos.X, s2.Pos.X)))
	maxX := min(width-1, floorPixel(max3(s0.Pos.X, s1.Pos.X, s2.Pos.X)))
	minY := max(0, ceilPixel(min3(s0.Pos.Y, s1.Pos.Y, s2.Pos.Y)))
	maxY := min(height-1, floorPixel(max3(s0.Pos.Y, s1.Pos.Y, s2.Pos.Y)))
	if minX > maxX || minY > maxY {
		r.stats.Culled++
		return
	}

	edges := [3]Segment{
		NewSegment(s0.Pos, s1.Pos),
		NewSegment(s1.Pos, s2.Pos),
		NewSegment(s2.Pos, s0.Pos),
	}

	r.stats.Drawn++
	for y := minY; y <= maxY; y++ {
		xLeft, xRight := math.Inf(1), math.Inf(-1)
		for _, e := range edges {
			if x, ok := e.Intersection(y); ok {
				xLeft = math.Min(xLeft, x)
				xRight = math.Max(xRight, x)
			}
		}
		if xLeft > xRight {
			continue
		}

		start := max(minX, ceilPixel(xLeft))
		end := min(maxX, floorPixel(xRight))
		for x := start; x <= end; x++ {
			r.shadeFragment(x, y, &t)
		}
	}
}

func (r *Rasterizer) shadeFragment(x, y int, t *triangleSetup) {
	bc, ok := Barycentric(t.screen[0], t.screen[1], t.screen[2], math3d.V2(float64(x), float64(y)))
	if !ok {
		return
	}

	// Depth is affine in screen space.
	z := InterpolateFloat(t.depth.X, t.depth.Y, t.depth.Z, bc)
	if r.opts.ClipDepth && !(z >= 0 && z <= 1) {
		r.stats.DepthClipped++
		return
	}

	idx := y*r.opts.Width + x
	if !(z < r.depth.Depth[idx]) {
		r.stats.DepthRejected++
		return
	}

	pc, ok := PerspectiveCorrect(bc, t.w)
	if !ok {
		return
	}

	v0, v1, v2 := &t.verts[0], &t.verts[1], &t.verts[2]
	var base color.RGBA
	if t.tex != nil {
		uv := InterpolateUV(v0.UV, v1.UV, v2.UV, pc)
		base = t.tex.Sample(uv.X, uv.Y, r.opts.Filter)
	} else {
		base = InterpolateColor(v0.Color, v1.Color, v2.Color, pc)
	}
	normal := InterpolateNormal(v0.Normal, v1.Normal, v2.Normal, pc)

	r.depth.Depth[idx] = z
	r.fb.Pixels[idx] = Shade(base, Lambert(t.cam, normal))
	r.stats.Fragments++
}

// pixelLimit keeps coordinates of vertices close to the eye plane inside
// the int range.
const pixelLimit = 1 << 30

func ceilPixel(v float64) int {
	return int(math.Ceil(math.Max(-pixelLimit, math.Min(pixelLimit, v))))
}

func floorPixel(v float64) int {
	return int(math.Floor(math.Max(-pixelLimit, math.Min(pixelLimit, v))))
}

func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}
