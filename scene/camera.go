package scene

import "github.com/chewxy/math32"

// Camera is a perspective camera looking from Position towards Target.
// Screen coordinates are in pixels with the origin in the bottom-left corner.
type Camera struct {
	Position Vec3
	Target   Vec3
	Up       Vec3
	FOV      float32 // vertical field of view, in degrees
	Width    float32 // screen width in pixels
	Height   float32 // screen height in pixels
}

// ScreenPointToRay returns the ray leaving the camera through the screen point p.
func (c *Camera) ScreenPointToRay(p Vec2) Ray {
	forward := c.Target.Sub(c.Position).Normalize()
	up := c.Up
	if up == (Vec3{}) {
		up = V3(0, 1, 0)
	}
	right := forward.Cross(up).Normalize()
	camUp := right.Cross(forward)

	aspect := float32(1)
	if c.Height > 0 {
		aspect = c.Width / c.Height
	}
	tanHalf := math32.Tan(c.FOV * math32.Pi / 360)

	var ndcX, ndcY float32
	if c.Width > 0 {
		ndcX = 2*p.X/c.Width - 1
	}
	if c.Height > 0 {
		ndcY = 2*p.Y/c.Height - 1
	}

	dir := forward.
		Add(right.Scale(ndcX * tanHalf * aspect)).
		Add(camUp.Scale(ndcY * tanHalf))

	return Ray{Origin: c.Position, Dir: dir.Normalize()}
}
