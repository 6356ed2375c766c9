// Package scene describes the retained geometry handed to the rasterizer:
// vertices, index triangles, textured polygons and the scene that owns them.
package scene

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/taigrr/scanline/pkg/math3d"
	"github.com/taigrr/scanline/pkg/texture"
)

// ErrIndexOutOfRange is returned when a triangle references a vertex the
// polygon does not have.
var ErrIndexOutOfRange = errors.New("scene: vertex index out of range")

// Vertex holds all per-vertex attributes in world space.
type Vertex struct {
	Position math3d.Vec4 // W = 1
	Color    color.RGBA
	UV       math3d.Vec2 // Unit square, V = 0 at the bottom of the texture
	Normal   math3d.Vec4 // W = 0
}

// Triangle indexes three vertices of its owning polygon.
type Triangle [3]int

// Polygon is an indexed triangle list with an optional texture. The texture
// is owned elsewhere and only read during rendering; a nil texture shades
// with the interpolated vertex color.
type Polygon struct {
	Name      string
	Vertices  []Vertex
	Triangles []Triangle
	Texture   *texture.Texture
}

// NewPolygon creates a polygon after checking every triangle index.
func NewPolygon(name string, vertices []Vertex, triangles []Triangle, tex *texture.Texture) (*Polygon, error) {
	p := &Polygon{
		Name:      name,
		Vertices:  vertices,
		Triangles: triangles,
		Texture:   tex,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate reports the first triangle that references a missing vertex.
func (p *Polygon) Validate() error {
	for i := range p.Triangles {
		if err := p.CheckTriangle(i); err != nil {
			return err
		}
	}
	return nil
}

// CheckTriangle validates the indices of triangle i.
func (p *Polygon) CheckTriangle(i int) error {
	for corner, idx := range p.Triangles[i] {
		if idx < 0 || idx >= len(p.Vertices) {
			return fmt.Errorf("polygon %q triangle %d corner %d: index %d of %d vertices: %w",
				p.Name, i, corner, idx, len(p.Vertices), ErrIndexOutOfRange)
		}
	}
	return nil
}

// Corners returns the three vertices of triangle i. The triangle must be
// valid.
func (p *Polygon) Corners(i int) (v0, v1, v2 Vertex) {
	t := p.Triangles[i]
	return p.Vertices[t[0]], p.Vertices[t[1]], p.Vertices[t[2]]
}

// Bounds returns the axis-aligned bounding box of the vertex positions.
func (p *Polygon) Bounds() (lo, hi math3d.Vec3) {
	if len(p.Vertices) == 0 {
		return math3d.Vec3{}, math3d.Vec3{}
	}
	lo = p.Vertices[0].Position.Vec3()
	hi = lo
	for _, v := range p.Vertices[1:] {
		lo = lo.Min(v.Position.Vec3())
		hi = hi.Max(v.Position.Vec3())
	}
	return lo, hi
}

// HasNormals reports whether any vertex carries a non-zero normal.
func (p *Polygon) HasNormals() bool {
	for _, v := range p.Vertices {
		if v.Normal.Len() > 0.001 {
			return true
		}
	}
	return false
}

// CalculateNormals assigns each triangle's face normal to its vertices.
// Shared vertices keep the normal of the last triangle that touches them.
func (p *Polygon) CalculateNormals() {
	for i := range p.Triangles {
		if p.CheckTriangle(i) != nil {
			continue
		}
		t := p.Triangles[i]
		n := faceNormal(p.Vertices[t[0]], p.Vertices[t[1]], p.Vertices[t[2]]).Normalize()
		for _, idx := range t {
			p.Vertices[idx].Normal = n
		}
	}
}

// CalculateSmoothNormals averages area-weighted face normals per vertex.
func (p *Polygon) CalculateSmoothNormals() {
	for i := range p.Vertices {
		p.Vertices[i].Normal = math3d.Vec4{}
	}
	for i := range p.Triangles {
		if p.CheckTriangle(i) != nil {
			continue
		}
		t := p.Triangles[i]
		n := faceNormal(p.Vertices[t[0]], p.Vertices[t[1]], p.Vertices[t[2]])
		for _, idx := range t {
			p.Vertices[idx].Normal = p.Vertices[idx].Normal.Add(n)
		}
	}
	for i := range p.Vertices {
		p.Vertices[i].Normal = p.Vertices[i].Normal.Normalize()
	}
}

// faceNormal is the unnormalized normal of a counter-clockwise triangle.
func faceNormal(v0, v1, v2 Vertex) math3d.Vec4 {
	e1 := v1.Position.Sub(v0.Position)
	e2 := v2.Position.Sub(v0.Position)
	return e1.Cross(e2)
}

// Transform applies a matrix to positions and normals. Normals use the
// linear part only, so non-uniform scales skew them.
func (p *Polygon) Transform(m math3d.Mat4) {
	for i := range p.Vertices {
		v := &p.Vertices[i]
		v.Position = m.MulVec4(v.Position)
		v.Normal = math3d.V4FromV3(m.MulVec3Dir(v.Normal.Vec3()).Normalize(), 0)
	}
}
