package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWorld() *World {
	return &World{
		Camera: Camera{
			Position: V3(0, 0, 1),
			Target:   V3(0, 0, 0),
			Up:       V3(0, 1, 0),
			FOV:      90,
			Width:    100,
			Height:   100,
		},
	}
}

func TestCamera_ScreenPointToRay(t *testing.T) {
	assert := assert.New(t)
	w := newTestWorld()

	r := w.Camera.ScreenPointToRay(V2(50, 50))
	assert.InDelta(0, r.Dir.X, 1e-6)
	assert.InDelta(0, r.Dir.Y, 1e-6)
	assert.InDelta(-1, r.Dir.Z, 1e-6)

	// Screen origin is in the bottom-left corner.
	r = w.Camera.ScreenPointToRay(V2(0, 0))
	assert.Less(r.Dir.X, float32(0))
	assert.Less(r.Dir.Y, float32(0))
}

func TestWorld_RaycastMeshTexCoord(t *testing.T) {
	w := newTestWorld()
	quad := NewMeshCollider("canvas", Quad())
	w.Add(quad)

	testCases := []struct {
		name   string
		screen Vec2
		uv     Vec2
	}{
		{"center", V2(50, 50), V2(0.5, 0.5)},
		{"upper right", V2(62.5, 62.5), V2(0.75, 0.75)},
		{"lower left", V2(37.5, 37.5), V2(0.25, 0.25)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			hit, ok := w.Raycast(tc.screen, 200)
			require.True(t, ok)
			assert.Same(t, quad, hit.Collider)
			assert.InDelta(t, 0, hit.Point.Z, 1e-5)
			assert.InDelta(t, tc.uv.X, hit.TexCoord.X, 1e-5)
			assert.InDelta(t, tc.uv.Y, hit.TexCoord.Y, 1e-5)
		})
	}
}

func TestWorld_RaycastMiss(t *testing.T) {
	assert := assert.New(t)
	w := newTestWorld()
	w.Add(NewMeshCollider("canvas", Quad()))

	_, ok := w.Raycast(V2(5, 5), 200)
	assert.False(ok, "the ray should pass next to the quad")

	_, ok = w.Raycast(V2(50, 50), 0.5)
	assert.False(ok, "the quad is farther than the maximum distance")
}

func TestWorld_RaycastClosestCollider(t *testing.T) {
	assert := assert.New(t)
	w := newTestWorld()
	quad := NewMeshCollider("canvas", Quad())
	box := NewBoxCollider("blocker", V3(-0.1, -0.1, 0.4), V3(0.1, 0.1, 0.5))
	w.Add(quad, box)

	hit, ok := w.Raycast(V2(50, 50), 200)
	assert.True(ok)
	assert.Same(box, hit.Collider)
	assert.Equal(BoxCollider, hit.Collider.Kind)
	assert.InDelta(0.5, hit.Distance, 1e-5)

	// Outside of the box the quad is visible again.
	hit, ok = w.Raycast(V2(62.5, 62.5), 200)
	assert.True(ok)
	assert.Same(quad, hit.Collider)
}

func TestWorld_MeshColliderWithoutMesh(t *testing.T) {
	w := newTestWorld()
	c := NewMeshCollider("broken", nil)
	c.Min, c.Max = V3(-0.5, -0.5, 0), V3(0.5, 0.5, 0)
	w.Add(c)

	hit, ok := w.Raycast(V2(50, 50), 200)
	assert.True(t, ok)
	assert.Nil(t, hit.Collider.Mesh)
}
