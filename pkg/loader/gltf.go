package loader

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/taigrr/scanline/pkg/math3d"
	"github.com/taigrr/scanline/pkg/render"
	"github.com/taigrr/scanline/pkg/scene"
	"github.com/taigrr/scanline/pkg/texture"
)

// GLTFLoader loads glTF and GLB files into polygons, one per triangle
// primitive.
type GLTFLoader struct {
	CalculateNormals bool       // Fill in normals when the file has none
	SmoothNormals    bool       // Average normals across shared vertices
	Color            color.RGBA // Vertex color when the material has no base color
}

// NewGLTFLoader creates a loader that computes smooth normals and uses
// white vertices.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{
		CalculateNormals: true,
		SmoothNormals:    true,
		Color:            color.RGBA{255, 255, 255, 255},
	}
}

// LoadGLTF loads a .gltf or .glb file with the default loader.
func LoadGLTF(path string) ([]*scene.Polygon, error) {
	return NewGLTFLoader().Load(path)
}

// Load opens path and converts every mesh primitive.
func (l *GLTFLoader) Load(path string) ([]*scene.Polygon, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	polys, err := l.Convert(doc, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	render.Logger().Debug("loaded model", "path", path, "polygons", len(polys))
	return polys, nil
}

// Convert turns the meshes of an opened document into polygons. dir
// resolves image URIs.
func (l *GLTFLoader) Convert(doc *gltf.Document, dir string) ([]*scene.Polygon, error) {
	images := newImageSet(doc, dir)

	var polys []*scene.Polygon
	for mi, m := range doc.Meshes {
		for pi, prim := range m.Primitives {
			name := m.Name
			if name == "" {
				name = fmt.Sprintf("mesh%d", mi)
			}
			if len(m.Primitives) > 1 {
				name = fmt.Sprintf("%s.%d", name, pi)
			}

			p, err := l.convertPrimitive(doc, prim, name, images)
			if err != nil {
				return nil, fmt.Errorf("process mesh %q: %w", name, err)
			}
			if p != nil {
				polys = append(polys, p)
			}
		}
	}
	return polys, nil
}

// convertPrimitive extracts one triangle primitive. Other primitive
// modes yield nil.
func (l *GLTFLoader) convertPrimitive(doc *gltf.Document, prim *gltf.Primitive, name string, images *imageSet) (*scene.Polygon, error) {
	if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
		return nil, nil
	}

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, nil
	}
	positions, err := readVec3Accessor(doc, posIdx)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}

	var normals []math3d.Vec3
	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		if normals, err = readVec3Accessor(doc, idx); err != nil {
			return nil, fmt.Errorf("read normals: %w", err)
		}
	}

	var uvs []math3d.Vec2
	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		if uvs, err = readVec2Accessor(doc, idx); err != nil {
			return nil, fmt.Errorf("read uvs: %w", err)
		}
	}

	base, tex := l.material(doc, prim, images)

	verts := make([]scene.Vertex, len(positions))
	for i, p := range positions {
		v := scene.Vertex{
			Position: math3d.V4FromV3(p, 1),
			Color:    base,
		}
		if i < len(normals) {
			v.Normal = math3d.V4FromV3(normals[i], 0)
		}
		if i < len(uvs) {
			// glTF puts V = 0 at the top of the image
			v.UV = math3d.V2(uvs[i].X, 1.0-uvs[i].Y)
		}
		verts[i] = v
	}

	var tris []scene.Triangle
	if prim.Indices != nil {
		indices, err := readIndices(doc, *prim.Indices)
		if err != nil {
			return nil, fmt.Errorf("read indices: %w", err)
		}
		for i := 0; i+2 < len(indices); i += 3 {
			tris = append(tris, scene.Triangle{indices[i], indices[i+1], indices[i+2]})
		}
	} else {
		for i := 0; i+2 < len(positions); i += 3 {
			tris = append(tris, scene.Triangle{i, i + 1, i + 2})
		}
	}

	poly, err := scene.NewPolygon(name, verts, tris, tex)
	if err != nil {
		return nil, err
	}
	if l.CalculateNormals && !poly.HasNormals() {
		if l.SmoothNormals {
			poly.CalculateSmoothNormals()
		} else {
			poly.CalculateNormals()
		}
	}
	return poly, nil
}

// material resolves the base color and base color texture of a primitive.
func (l *GLTFLoader) material(doc *gltf.Document, prim *gltf.Primitive, images *imageSet) (color.RGBA, *texture.Texture) {
	base := l.Color
	if prim.Material == nil || *prim.Material >= len(doc.Materials) {
		return base, nil
	}
	pbr := doc.Materials[*prim.Material].PBRMetallicRoughness
	if pbr == nil {
		return base, nil
	}
	if f := pbr.BaseColorFactor; f != nil {
		base = color.RGBA{
			R: uint8(math.Round(clampUnit(f[0]) * 255)),
			G: uint8(math.Round(clampUnit(f[1]) * 255)),
			B: uint8(math.Round(clampUnit(f[2]) * 255)),
			A: uint8(math.Round(clampUnit(f[3]) * 255)),
		}
	}
	if pbr.BaseColorTexture == nil || pbr.BaseColorTexture.Index >= len(doc.Textures) {
		return base, nil
	}
	src := doc.Textures[pbr.BaseColorTexture.Index].Source
	if src == nil {
		return base, nil
	}
	return base, images.get(*src)
}

func clampUnit(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// imageSet decodes document images lazily, once each.
type imageSet struct {
	doc    *gltf.Document
	dir    string
	loaded map[int]*texture.Texture
}

func newImageSet(doc *gltf.Document, dir string) *imageSet {
	return &imageSet{doc: doc, dir: dir, loaded: make(map[int]*texture.Texture)}
}

// get returns the decoded image i, or nil when it cannot be read.
func (s *imageSet) get(i int) *texture.Texture {
	if tex, ok := s.loaded[i]; ok {
		return tex
	}
	tex, err := s.decode(i)
	if err != nil {
		render.Logger().Warn("skipping model texture", "image", i, "error", err)
	}
	s.loaded[i] = tex
	return tex
}

func (s *imageSet) decode(i int) (*texture.Texture, error) {
	if i < 0 || i >= len(s.doc.Images) {
		return nil, fmt.Errorf("image %d out of range", i)
	}
	img := s.doc.Images[i]

	var data []byte
	switch {
	case img.BufferView != nil:
		if *img.BufferView >= len(s.doc.BufferViews) {
			return nil, fmt.Errorf("image %d: buffer view %d out of range", i, *img.BufferView)
		}
		bv := s.doc.BufferViews[*img.BufferView]
		if bv.Buffer >= len(s.doc.Buffers) {
			return nil, fmt.Errorf("image %d: buffer %d out of range", i, bv.Buffer)
		}
		buf := s.doc.Buffers[bv.Buffer]
		if bv.ByteOffset+bv.ByteLength > len(buf.Data) {
			return nil, fmt.Errorf("image %d: buffer view out of range", i)
		}
		data = buf.Data[bv.ByteOffset : bv.ByteOffset+bv.ByteLength]
	case img.URI != "":
		var err error
		if data, err = os.ReadFile(filepath.Join(s.dir, img.URI)); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("image %d has no data", i)
	}

	return texture.Decode(bytes.NewReader(data))
}

// readVec3Accessor reads Vec3 data from a glTF accessor.
func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec3, error) {
	floats, err := readFloats(doc, accessorIdx, gltf.AccessorVec3, 3)
	if err != nil {
		return nil, err
	}
	result := make([]math3d.Vec3, len(floats)/3)
	for i := range result {
		result[i] = math3d.V3(floats[3*i], floats[3*i+1], floats[3*i+2])
	}
	return result, nil
}

// readVec2Accessor reads Vec2 data from a glTF accessor.
func readVec2Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec2, error) {
	floats, err := readFloats(doc, accessorIdx, gltf.AccessorVec2, 2)
	if err != nil {
		return nil, err
	}
	result := make([]math3d.Vec2, len(floats)/2)
	for i := range result {
		result[i] = math3d.V2(floats[2*i], floats[2*i+1])
	}
	return result, nil
}

// readFloats reads a float accessor of n components per element.
func readFloats(doc *gltf.Document, accessorIdx int, typ gltf.AccessorType, n int) ([]float64, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", accessorIdx)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != typ {
		return nil, fmt.Errorf("expected %v, got %v", typ, accessor.Type)
	}
	if accessor.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("unsupported component type %v", accessor.ComponentType)
	}

	data, start, stride, err := accessorBytes(doc, accessor, 4*n)
	if err != nil {
		return nil, err
	}

	result := make([]float64, 0, accessor.Count*n)
	for i := range accessor.Count {
		offset := start + i*stride
		for j := range n {
			bits := binary.LittleEndian.Uint32(data[offset+j*4:])
			result = append(result, float64(math.Float32frombits(bits)))
		}
	}
	return result, nil
}

// readIndices reads index data from a glTF accessor.
func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", accessorIdx)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("expected SCALAR indices, got %v", accessor.Type)
	}

	var size int
	switch accessor.ComponentType {
	case gltf.ComponentUbyte:
		size = 1
	case gltf.ComponentUshort:
		size = 2
	case gltf.ComponentUint:
		size = 4
	default:
		return nil, fmt.Errorf("unexpected index type: %v", accessor.ComponentType)
	}

	data, start, stride, err := accessorBytes(doc, accessor, size)
	if err != nil {
		return nil, err
	}

	result := make([]int, accessor.Count)
	for i := range accessor.Count {
		offset := start + i*stride
		switch size {
		case 1:
			result[i] = int(data[offset])
		case 2:
			result[i] = int(binary.LittleEndian.Uint16(data[offset:]))
		default:
			result[i] = int(binary.LittleEndian.Uint32(data[offset:]))
		}
	}
	return result, nil
}

// accessorBytes returns the buffer behind an accessor with the byte
// offset of its first element and the element stride, after checking
// that every element lies inside the buffer.
func accessorBytes(doc *gltf.Document, accessor *gltf.Accessor, elemSize int) ([]byte, int, int, error) {
	if accessor.BufferView == nil {
		return nil, 0, 0, fmt.Errorf("accessor has no buffer view")
	}
	if *accessor.BufferView >= len(doc.BufferViews) {
		return nil, 0, 0, fmt.Errorf("buffer view %d out of range", *accessor.BufferView)
	}
	bufferView := doc.BufferViews[*accessor.BufferView]
	if bufferView.Buffer >= len(doc.Buffers) {
		return nil, 0, 0, fmt.Errorf("buffer %d out of range", bufferView.Buffer)
	}
	data := doc.Buffers[bufferView.Buffer].Data
	if data == nil {
		return nil, 0, 0, fmt.Errorf("buffer has no data")
	}

	start := bufferView.ByteOffset + accessor.ByteOffset
	stride := bufferView.ByteStride
	if stride == 0 {
		stride = elemSize
	}
	if accessor.Count > 0 && start+(accessor.Count-1)*stride+elemSize > len(data) {
		return nil, 0, 0, fmt.Errorf("accessor reads past the end of its buffer")
	}
	return data, start, stride, nil
}
