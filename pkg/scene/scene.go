package scene

// Scene is the retained list of polygons to draw. It is owned by the
// caller and passed to the rasterizer on every render.
type Scene struct {
	polygons []*Polygon
}

// New creates a scene holding the given polygons.
func New(polys ...*Polygon) *Scene {
	s := &Scene{}
	s.Add(polys...)
	return s
}

// Add appends polygons in draw order. Nil polygons are ignored.
func (s *Scene) Add(polys ...*Polygon) {
	for _, p := range polys {
		if p != nil {
			s.polygons = append(s.polygons, p)
		}
	}
}

// Clear removes every polygon.
func (s *Scene) Clear() {
	clear(s.polygons)
	s.polygons = s.polygons[:0]
}

// Polygons returns the polygons in draw order. The slice must not be
// modified.
func (s *Scene) Polygons() []*Polygon {
	return s.polygons
}

// Len returns the number of polygons.
func (s *Scene) Len() int {
	return len(s.polygons)
}

// TriangleCount returns the number of triangles across all polygons.
func (s *Scene) TriangleCount() int {
	n := 0
	for _, p := range s.polygons {
		n += len(p.Triangles)
	}
	return n
}
