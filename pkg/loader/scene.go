// Package loader reads scene descriptions and models from disk.
package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/taigrr/scanline/pkg/math3d"
	"github.com/taigrr/scanline/pkg/render"
	"github.com/taigrr/scanline/pkg/scene"
	"github.com/taigrr/scanline/pkg/texture"
)

// ErrUnknownFormat is returned by LoadFile for unrecognized extensions.
var ErrUnknownFormat = errors.New("unknown scene format")

// SceneFile is the JSON layout of a scene description.
type SceneFile struct {
	Camera   *SceneCamera   `json:"camera,omitempty"`
	Polygons []ScenePolygon `json:"polygons"`
}

// SceneCamera overrides camera defaults. Absent fields keep the default.
type SceneCamera struct {
	Position *[3]float64 `json:"position,omitempty"`
	Forward  *[3]float64 `json:"forward,omitempty"`
	Up       *[3]float64 `json:"up,omitempty"`
	Target   *[3]float64 `json:"target,omitempty"`
	FOV      *float64    `json:"fov,omitempty"`
	Near     *float64    `json:"near,omitempty"`
	Far      *float64    `json:"far,omitempty"`
	Aspect   *float64    `json:"aspect,omitempty"`
}

// ScenePolygon is either inline geometry or a reference to a model file.
type ScenePolygon struct {
	Name      string        `json:"name,omitempty"`
	Texture   string        `json:"texture,omitempty"`
	Model     string        `json:"model,omitempty"`
	Vertices  []SceneVertex `json:"vertices,omitempty"`
	Triangles [][3]int      `json:"triangles,omitempty"`
}

// SceneVertex is one inline vertex. Color channels are 0-255 and default
// to white.
type SceneVertex struct {
	Pos    [3]float64  `json:"pos"`
	Color  *[3]int     `json:"color,omitempty"`
	UV     [2]float64  `json:"uv"`
	Normal *[3]float64 `json:"normal,omitempty"`
}

// Loaded is the result of reading a scene.
type Loaded struct {
	Scene  *scene.Scene
	Camera *render.Camera
}

// LoadFile reads a JSON scene or a glTF/GLB model. Models get a camera
// framed around their bounds.
func LoadFile(path string) (*Loaded, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return LoadScene(path)
	case ".gltf", ".glb":
		polys, err := LoadGLTF(path)
		if err != nil {
			return nil, err
		}
		s := scene.New(polys...)
		cam := render.NewCamera()
		FrameCamera(cam, s)
		return &Loaded{Scene: s, Camera: cam}, nil
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}
}

// LoadScene reads a JSON scene file. Texture and model paths are relative
// to the file.
func LoadScene(path string) (*Loaded, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scene: %w", err)
	}
	defer f.Close()

	loaded, err := ParseScene(f, filepath.Dir(path), texture.NewCache())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	render.Logger().Debug("loaded scene", "path", path,
		"polygons", loaded.Scene.Len(), "triangles", loaded.Scene.TriangleCount())
	return loaded, nil
}

// ParseScene decodes a JSON scene from r. dir resolves relative paths and
// cache shares decoded textures between polygons.
func ParseScene(r io.Reader, dir string, cache *texture.Cache) (*Loaded, error) {
	var file SceneFile
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}

	cam := render.NewCamera()
	if file.Camera != nil {
		if err := applyCamera(cam, file.Camera); err != nil {
			return nil, fmt.Errorf("camera: %w", err)
		}
	}

	s := scene.New()
	for i, def := range file.Polygons {
		polys, err := buildPolygons(def, dir, cache)
		if err != nil {
			return nil, fmt.Errorf("polygon %d: %w", i, err)
		}
		s.Add(polys...)
	}
	return &Loaded{Scene: s, Camera: cam}, nil
}

func applyCamera(cam *render.Camera, def *SceneCamera) error {
	if def.Position != nil {
		cam.SetPosition(vec3(*def.Position))
	}
	if def.Forward != nil || def.Up != nil {
		forward, up := cam.Forward().Vec3(), cam.Up().Vec3()
		if def.Forward != nil {
			forward = vec3(*def.Forward)
		}
		if def.Up != nil {
			up = vec3(*def.Up)
		}
		if err := cam.SetOrientation(forward, up); err != nil {
			return err
		}
	}
	if def.Target != nil {
		if err := cam.LookAt(vec3(*def.Target)); err != nil {
			return err
		}
	}

	fov := cam.FOV()
	aspect := cam.AspectRatio()
	near, far := cam.ClipPlanes()
	if def.FOV != nil {
		fov = *def.FOV
	}
	if def.Aspect != nil {
		aspect = *def.Aspect
	}
	if def.Near != nil {
		near = *def.Near
	}
	if def.Far != nil {
		far = *def.Far
	}
	return cam.SetPerspective(fov, aspect, near, far)
}

func buildPolygons(def ScenePolygon, dir string, cache *texture.Cache) ([]*scene.Polygon, error) {
	var tex *texture.Texture
	if def.Texture != "" {
		var err error
		if tex, err = cache.Get(resolve(dir, def.Texture)); err != nil {
			return nil, err
		}
	}

	if def.Model != "" {
		if len(def.Vertices) > 0 {
			return nil, errors.New("model and inline vertices are exclusive")
		}
		polys, err := LoadGLTF(resolve(dir, def.Model))
		if err != nil {
			return nil, err
		}
		for _, p := range polys {
			if def.Name != "" {
				p.Name = def.Name + "/" + p.Name
			}
			if tex != nil {
				p.Texture = tex
			}
		}
		return polys, nil
	}

	verts := make([]scene.Vertex, len(def.Vertices))
	normals := false
	for i, v := range def.Vertices {
		verts[i] = scene.Vertex{
			Position: math3d.V4FromV3(vec3(v.Pos), 1),
			Color:    color.RGBA{255, 255, 255, 255},
			UV:       math3d.V2(v.UV[0], v.UV[1]),
		}
		if v.Color != nil {
			verts[i].Color = color.RGBA{channel(v.Color[0]), channel(v.Color[1]), channel(v.Color[2]), 255}
		}
		if v.Normal != nil {
			verts[i].Normal = math3d.V4FromV3(vec3(*v.Normal), 0)
			normals = true
		}
	}
	tris := make([]scene.Triangle, len(def.Triangles))
	for i, t := range def.Triangles {
		tris[i] = scene.Triangle(t)
	}

	p, err := scene.NewPolygon(def.Name, verts, tris, tex)
	if err != nil {
		return nil, err
	}
	if !normals {
		p.CalculateSmoothNormals()
	}
	return []*scene.Polygon{p}, nil
}

// FrameCamera places cam on the +z side of the scene bounds, looking at
// their center from far enough to fit them in the field of view.
func FrameCamera(cam *render.Camera, s *scene.Scene) {
	polys := s.Polygons()
	if len(polys) == 0 {
		return
	}
	lo, hi := polys[0].Bounds()
	for _, p := range polys[1:] {
		plo, phi := p.Bounds()
		lo, hi = lo.Min(plo), hi.Max(phi)
	}

	center := lo.Add(hi).Scale(0.5)
	radius := hi.Sub(lo).Len() / 2
	if radius == 0 {
		radius = 1
	}
	dist := radius / math.Tan(cam.FOV()*math.Pi/360)

	cam.SetPosition(center.Add(math3d.V3(0, 0, dist+radius)))
	_ = cam.SetOrientation(math3d.V3(0, 0, -1), math3d.V3(0, 1, 0))
	near, far := cam.ClipPlanes()
	if need := dist + 3*radius; need > far {
		_ = cam.SetClipPlanes(near, need)
	}
}

func resolve(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

func vec3(v [3]float64) math3d.Vec3 {
	return math3d.V3(v[0], v[1], v[2])
}

func channel(v int) uint8 {
	return uint8(max(0, min(255, v)))
}
