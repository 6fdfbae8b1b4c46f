package uvpaint

import "github.com/uvpaint/uvpaint/scene"

// MaxRayDistance is the farthest a pointer ray can reach a surface.
const MaxRayDistance = 200

// Raycaster casts a ray from the viewing camera through a screen position.
// It is supplied by the hosting environment, scene.World is an implementation.
type Raycaster interface {
	Raycast(screen scene.Vec2, maxDistance float32) (scene.Hit, bool)
}

// Projector converts screen positions into canvas local paint coordinates.
type Projector struct {
	Raycaster Raycaster
	// HalfExtent is the orthographic half-size of the canvas camera.
	// Texture coordinates are shifted by it to center the canvas on the origin.
	HalfExtent float32
}

// Project returns the canvas local position under the screen point.
// It fails when nothing is hit, or when the hit collider is not a mesh
// collider carrying its mesh.
func (p *Projector) Project(screen scene.Vec2) (scene.Vec3, bool) {
	if p.Raycaster == nil {
		return scene.Vec3{}, false
	}
	hit, ok := p.Raycaster.Raycast(screen, MaxRayDistance)
	if !ok {
		return scene.Vec3{}, false
	}
	if hit.Collider == nil || hit.Collider.Kind != scene.MeshCollider || hit.Collider.Mesh == nil {
		return scene.Vec3{}, false
	}
	return scene.V3(
		hit.TexCoord.X-p.HalfExtent,
		hit.TexCoord.Y-p.HalfExtent,
		0,
	), true
}
