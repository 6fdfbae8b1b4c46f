package scene

// Hit describes where a ray touched a collider.
type Hit struct {
	Point    Vec3
	Distance float32
	TexCoord Vec2
	Collider *Collider
}

// World is a camera and the colliders it can see.
// It answers raycast queries issued in screen space.
type World struct {
	Camera    Camera
	Colliders []*Collider
}

// Add appends colliders to the world.
func (w *World) Add(c ...*Collider) {
	w.Colliders = append(w.Colliders, c...)
}

// Raycast casts a ray from the camera through the screen point and returns
// the closest hit not farther than maxDistance.
func (w *World) Raycast(screen Vec2, maxDistance float32) (Hit, bool) {
	ray := w.Camera.ScreenPointToRay(screen)

	var (
		best  Hit
		found bool
	)
	limit := maxDistance
	for _, c := range w.Colliders {
		if c == nil {
			continue
		}
		t, uv, ok := c.intersect(ray, limit)
		if !ok {
			continue
		}
		limit = t
		best = Hit{
			Point:    ray.At(t),
			Distance: t,
			TexCoord: uv,
			Collider: c,
		}
		found = true
	}
	return best, found
}
