package uvpaint

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/uvpaint/uvpaint/scene"
	"github.com/uvpaint/uvpaint/utils"
)

// BrushMode decides what a paint action leaves on the canvas.
type BrushMode int

// The supported brush modes, in the order of the UI selector.
const (
	Paint BrushMode = iota
	Decal
	Erase
)

var brushModes = []string{"paint", "decal", "erase"}

// String returns the lower case name of the mode.
func (m BrushMode) String() string {
	if m < 0 || int(m) >= len(brushModes) {
		return fmt.Sprintf("BrushMode(%d)", int(m))
	}
	return brushModes[m]
}

// Valid reports whether m is one of the supported modes.
func (m BrushMode) Valid() bool {
	return m >= Paint && m <= Erase
}

// ParseBrushMode converts a selector index into a BrushMode.
func ParseBrushMode(index int) (BrushMode, error) {
	m := BrushMode(index)
	if !m.Valid() {
		return Paint, fmt.Errorf("unsupported brush mode index: %d", index)
	}
	return m, nil
}

// ParseBrushModeName converts a mode name ("paint", "decal", "erase") into a BrushMode.
func ParseBrushModeName(name string) (BrushMode, error) {
	for i, n := range brushModes {
		if strings.EqualFold(strings.TrimSpace(name), n) {
			return BrushMode(i), nil
		}
	}
	return Paint, fmt.Errorf("unsupported brush mode: %q", name)
}

// StampKind is the kind of entity a stamp represents.
type StampKind int

// Brush stamps are sprites tinted with the stamp color, decals are fixed images.
const (
	KindBrush StampKind = iota
	KindDecal
)

// Stamp is a single brush or decal mark placed in the canvas local space.
type Stamp struct {
	Pos    scene.Vec3 // canvas local position, Z is always 0
	Scale  float64
	Color  Color // alpha is the stamp opacity, derived from Scale
	Kind   StampKind
	Sprite image.Image
}

// Opacity returns the stamp alpha clamped to the range an image can hold.
func (s Stamp) Opacity() float64 {
	return utils.Clamp(s.Color.A, 0, 1)
}

// StampAlpha is the alpha given to a stamp of the provided size.
// Bigger brushes are more opaque, so overlapping strokes merge together.
func StampAlpha(size float64) float64 {
	return size * 2.0
}

// Brush holds the visual assets used by the session.
type Brush struct {
	Sprite        image.Image // brush tip, tinted for paint and erase stamps
	Cursor        image.Image // cursor shown on the surface in paint and erase mode
	Decal         image.Image // decal stamped untinted in decal mode
	DecalCursor   image.Image // cursor shown on the surface in decal mode
	PixelsPerUnit float64     // sprite pixels covering one canvas unit at scale 1
}

// DefaultBrush returns a soft round brush, a ring cursor and a target shaped decal.
func DefaultBrush() Brush {
	return Brush{
		Sprite:        NewRoundSprite(64, 4),
		Cursor:        NewRingSprite(64, 4, color.NRGBA{R: 255, G: 255, B: 255, A: 255}),
		Decal:         NewDecalSprite(64),
		DecalCursor:   NewRingSprite(64, 2, color.NRGBA{R: 255, G: 136, A: 255}),
		PixelsPerUnit: 640,
	}
}

// NewRoundSprite returns a white disc of the given diameter on a transparent background.
// The softness is the sigma of the gaussian blur applied to the disc's edge.
func NewRoundSprite(diameter int, softness float64) *image.NRGBA {
	img := imaging.New(diameter, diameter, color.NRGBA{})
	r := float64(diameter) / 2
	inner := r - softness*2
	if inner < 1 {
		inner = r
	}
	fillCircle(img, r, func(d float64) (color.NRGBA, bool) {
		return color.NRGBA{R: 255, G: 255, B: 255, A: 255}, d <= inner
	})
	if softness > 0 {
		img = imaging.Blur(img, softness)
	}
	return img
}

// NewRingSprite returns a circle outline of the given thickness.
func NewRingSprite(diameter int, thickness float64, c color.NRGBA) *image.NRGBA {
	img := imaging.New(diameter, diameter, color.NRGBA{})
	r := float64(diameter) / 2
	fillCircle(img, r, func(d float64) (color.NRGBA, bool) {
		return c, d <= r && d >= r-thickness
	})
	return img
}

// NewDecalSprite returns concentric orange and white rings.
func NewDecalSprite(diameter int) *image.NRGBA {
	img := imaging.New(diameter, diameter, color.NRGBA{})
	r := float64(diameter) / 2
	band := math.Max(1, r/4)
	orange := color.NRGBA{R: 255, G: 136, B: 0, A: 255}
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	fillCircle(img, r, func(d float64) (color.NRGBA, bool) {
		if int(d/band)%2 == 0 {
			return orange, d <= r
		}
		return white, d <= r
	})
	return img
}

// fillCircle sets every pixel for which fn returns true, passing the
// distance between the pixel center and the image center.
func fillCircle(img *image.NRGBA, r float64, fn func(d float64) (color.NRGBA, bool)) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dx := float64(x-b.Min.X) + 0.5 - r
			dy := float64(y-b.Min.Y) + 0.5 - r
			if c, ok := fn(math.Hypot(dx, dy)); ok {
				img.SetNRGBA(x, y, c)
			}
		}
	}
}
