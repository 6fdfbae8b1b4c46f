package scene

import (
	"errors"

	"github.com/chewxy/math32"
)

// Mesh is a triangle mesh. Positions and UVs are parallel slices,
// every three consecutive Indices define one triangle.
type Mesh struct {
	Positions []Vec3
	UVs       []Vec2
	Indices   []int
}

// Quad returns a unit square in the XY plane centered at the origin,
// facing +Z, with UV (0,0) in the bottom-left and (1,1) in the top-right corner.
func Quad() *Mesh {
	return &Mesh{
		Positions: []Vec3{
			V3(-0.5, -0.5, 0),
			V3(0.5, -0.5, 0),
			V3(0.5, 0.5, 0),
			V3(-0.5, 0.5, 0),
		},
		UVs: []Vec2{
			V2(0, 0),
			V2(1, 0),
			V2(1, 1),
			V2(0, 1),
		},
		Indices: []int{0, 1, 2, 0, 2, 3},
	}
}

// Validate checks that the mesh is made of complete triangles referencing existing vertices.
func (m *Mesh) Validate() error {
	if len(m.Positions) != len(m.UVs) {
		return errors.New("mesh positions and texture coordinates differ in length")
	}
	if len(m.Indices) == 0 || len(m.Indices)%3 != 0 {
		return errors.New("mesh indices should define complete triangles")
	}
	for _, i := range m.Indices {
		if i < 0 || i >= len(m.Positions) {
			return errors.New("mesh index out of range")
		}
	}
	return nil
}

// Bounds returns the axis aligned bounding box of the mesh.
func (m *Mesh) Bounds() (min, max Vec3) {
	if len(m.Positions) == 0 {
		return
	}
	min, max = m.Positions[0], m.Positions[0]
	for _, p := range m.Positions[1:] {
		min = min.Min(p)
		max = max.Max(p)
	}
	return min, max
}

// Intersect returns the closest triangle hit of the ray with a distance below maxDist.
// The returned texture coordinate is interpolated from the triangle's vertex UVs.
func (m *Mesh) Intersect(r Ray, maxDist float32) (dist float32, uv Vec2, ok bool) {
	dist = maxDist
	for i := 0; i+2 < len(m.Indices); i += 3 {
		i0, i1, i2 := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		t, u, v, hit := intersectTriangle(r, m.Positions[i0], m.Positions[i1], m.Positions[i2])
		if !hit || t > dist {
			continue
		}
		w := 1 - u - v
		dist = t
		uv = m.UVs[i0].Scale(w).Add(m.UVs[i1].Scale(u)).Add(m.UVs[i2].Scale(v))
		ok = true
	}
	return dist, uv, ok
}

const epsilon = 1e-7

// intersectTriangle implements the Möller-Trumbore ray/triangle intersection.
// It returns the distance along the ray and the barycentric coordinates of the hit.
// Both triangle faces are hit.
func intersectTriangle(r Ray, v0, v1, v2 Vec3) (t, u, v float32, ok bool) {
	e1 := v1.Sub(v0)
	e2 := v2.Sub(v0)
	p := r.Dir.Cross(e2)
	det := e1.Dot(p)
	if math32.Abs(det) < epsilon {
		return 0, 0, 0, false
	}
	inv := 1 / det

	s := r.Origin.Sub(v0)
	u = s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, 0, 0, false
	}
	q := s.Cross(e1)
	v = r.Dir.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, 0, 0, false
	}
	t = e2.Dot(q) * inv
	if t <= epsilon {
		return 0, 0, 0, false
	}
	return t, u, v, true
}
