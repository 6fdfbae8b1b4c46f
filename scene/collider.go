package scene

import "github.com/chewxy/math32"

// ColliderKind tells how a collider is shaped.
type ColliderKind int

// The supported collider shapes.
const (
	MeshCollider ColliderKind = iota
	BoxCollider
)

// String returns the name of the collider kind.
func (k ColliderKind) String() string {
	switch k {
	case MeshCollider:
		return "mesh"
	case BoxCollider:
		return "box"
	}
	return "unknown"
}

// Collider is a raycast target. A box collider and a mesh collider without
// mesh data are only tested against their bounds and produce hits without
// texture coordinates.
type Collider struct {
	Name string
	Kind ColliderKind
	Mesh *Mesh
	Min  Vec3
	Max  Vec3
}

// NewMeshCollider wraps the mesh into a collider with matching bounds.
func NewMeshCollider(name string, m *Mesh) *Collider {
	c := &Collider{Name: name, Kind: MeshCollider, Mesh: m}
	if m != nil {
		c.Min, c.Max = m.Bounds()
	}
	return c
}

// NewBoxCollider returns an axis aligned box collider.
func NewBoxCollider(name string, min, max Vec3) *Collider {
	return &Collider{Name: name, Kind: BoxCollider, Min: min.Min(max), Max: max.Max(min)}
}

// intersect returns the ray distance and texture coordinate of the hit, if any.
func (c *Collider) intersect(r Ray, maxDist float32) (float32, Vec2, bool) {
	t, ok := c.intersectBounds(r, maxDist)
	if !ok {
		return 0, Vec2{}, false
	}
	if c.Kind == MeshCollider && c.Mesh != nil {
		return c.Mesh.Intersect(r, maxDist)
	}
	return t, Vec2{}, true
}

// intersectBounds is the slab test against the collider's bounding box.
// Flat boxes, such as the bounds of a planar mesh, are handled.
func (c *Collider) intersectBounds(r Ray, maxDist float32) (float32, bool) {
	tmin, tmax := float32(0), maxDist
	o := [3]float32{r.Origin.X, r.Origin.Y, r.Origin.Z}
	d := [3]float32{r.Dir.X, r.Dir.Y, r.Dir.Z}
	lo := [3]float32{c.Min.X, c.Min.Y, c.Min.Z}
	hi := [3]float32{c.Max.X, c.Max.Y, c.Max.Z}

	for i := 0; i < 3; i++ {
		if math32.Abs(d[i]) < epsilon {
			if o[i] < lo[i] || o[i] > hi[i] {
				return 0, false
			}
			continue
		}
		inv := 1 / d[i]
		t0 := (lo[i] - o[i]) * inv
		t1 := (hi[i] - o[i]) * inv
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		tmin = math32.Max(tmin, t0)
		tmax = math32.Min(tmax, t1)
		if tmin > tmax {
			return 0, false
		}
	}
	return tmin, true
}
