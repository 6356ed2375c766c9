package main

import (
	"image/color"

	"github.com/taigrr/scanline/pkg/loader"
	"github.com/taigrr/scanline/pkg/math3d"
	"github.com/taigrr/scanline/pkg/render"
	"github.com/taigrr/scanline/pkg/scene"
	"github.com/taigrr/scanline/pkg/texture"
)

// demoScene builds a checkered floor, a textured cube and a vertex-colored
// triangle behind it.
func demoScene() (*loader.Loaded, error) {
	checker, err := texture.NewChecker(64, 64, 8,
		color.RGBA{220, 220, 220, 255}, color.RGBA{60, 60, 90, 255})
	if err != nil {
		return nil, err
	}
	gradient, err := texture.NewGradient(64, 64,
		color.RGBA{255, 120, 0, 255}, color.RGBA{40, 90, 255, 255})
	if err != nil {
		return nil, err
	}

	floor, err := quad("floor", [4]math3d.Vec3{
		math3d.V3(-6, -1.5, 6),
		math3d.V3(6, -1.5, 6),
		math3d.V3(6, -1.5, -6),
		math3d.V3(-6, -1.5, -6),
	}, checker)
	if err != nil {
		return nil, err
	}

	box, err := cube("cube", gradient)
	if err != nil {
		return nil, err
	}
	box.Transform(math3d.Rotate(math3d.V3(0, 1, 0), 0.6).Mul(math3d.Rotate(math3d.V3(1, 0, 0), 0.3)))

	tri, err := scene.NewPolygon("triangle", []scene.Vertex{
		{Position: math3d.Point(-3, -1, -4), Color: color.RGBA{255, 0, 0, 255}},
		{Position: math3d.Point(3, -1, -4), Color: color.RGBA{0, 255, 0, 255}},
		{Position: math3d.Point(0, 3, -4), Color: color.RGBA{0, 0, 255, 255}},
	}, []scene.Triangle{{0, 1, 2}}, nil)
	if err != nil {
		return nil, err
	}
	tri.CalculateNormals()

	cam := render.NewCamera()
	cam.SetPosition(math3d.V3(0, 1.5, 7))
	if err := cam.LookAt(math3d.V3(0, 0, 0)); err != nil {
		return nil, err
	}

	return &loader.Loaded{Scene: scene.New(floor, tri, box), Camera: cam}, nil
}

// quad builds a two-triangle polygon from counter-clockwise corners, with
// UVs running from the first corner.
func quad(name string, c [4]math3d.Vec3, tex *texture.Texture) (*scene.Polygon, error) {
	uvs := [4]math3d.Vec2{math3d.V2(0, 0), math3d.V2(1, 0), math3d.V2(1, 1), math3d.V2(0, 1)}
	verts := make([]scene.Vertex, 4)
	for i := range verts {
		verts[i] = scene.Vertex{
			Position: math3d.V4FromV3(c[i], 1),
			Color:    color.RGBA{255, 255, 255, 255},
			UV:       uvs[i],
		}
	}
	p, err := scene.NewPolygon(name, verts, []scene.Triangle{{0, 1, 2}, {0, 2, 3}}, tex)
	if err != nil {
		return nil, err
	}
	p.CalculateNormals()
	return p, nil
}

// cube builds a 2x2x2 cube centered on the origin with each face mapping
// the full texture. Faces do not share vertices so normals stay flat.
func cube(name string, tex *texture.Texture) (*scene.Polygon, error) {
	faces := [6][4]math3d.Vec3{
		{math3d.V3(-1, -1, 1), math3d.V3(1, -1, 1), math3d.V3(1, 1, 1), math3d.V3(-1, 1, 1)},     // front
		{math3d.V3(1, -1, -1), math3d.V3(-1, -1, -1), math3d.V3(-1, 1, -1), math3d.V3(1, 1, -1)}, // back
		{math3d.V3(1, -1, 1), math3d.V3(1, -1, -1), math3d.V3(1, 1, -1), math3d.V3(1, 1, 1)},     // right
		{math3d.V3(-1, -1, -1), math3d.V3(-1, -1, 1), math3d.V3(-1, 1, 1), math3d.V3(-1, 1, -1)}, // left
		{math3d.V3(-1, 1, 1), math3d.V3(1, 1, 1), math3d.V3(1, 1, -1), math3d.V3(-1, 1, -1)},     // top
		{math3d.V3(-1, -1, -1), math3d.V3(1, -1, -1), math3d.V3(1, -1, 1), math3d.V3(-1, -1, 1)}, // bottom
	}
	uvs := [4]math3d.Vec2{math3d.V2(0, 0), math3d.V2(1, 0), math3d.V2(1, 1), math3d.V2(0, 1)}

	var (
		verts []scene.Vertex
		tris  []scene.Triangle
	)
	for _, f := range faces {
		base := len(verts)
		for i, c := range f {
			verts = append(verts, scene.Vertex{
				Position: math3d.V4FromV3(c, 1),
				Color:    color.RGBA{255, 255, 255, 255},
				UV:       uvs[i],
			})
		}
		tris = append(tris,
			scene.Triangle{base, base + 1, base + 2},
			scene.Triangle{base, base + 2, base + 3})
	}

	p, err := scene.NewPolygon(name, verts, tris, tex)
	if err != nil {
		return nil, err
	}
	p.CalculateNormals()
	return p, nil
}
