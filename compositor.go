package uvpaint

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/uvpaint/uvpaint/imop"
	"github.com/uvpaint/uvpaint/scene"
)

// CanvasConfig describes the canvas render target.
type CanvasConfig struct {
	Width  int
	Height int
	// HalfExtent is the orthographic half-size of the canvas camera,
	// the canvas covers [-HalfExtent, HalfExtent] on both axes.
	HalfExtent float64
	// PixelsPerUnit is the sprite pixel density: a sprite of PixelsPerUnit
	// pixels spans one canvas unit at scale 1.
	PixelsPerUnit float64
}

// DefaultCanvasConfig returns a 1024x1024 canvas mapping the whole UV square.
func DefaultCanvasConfig() CanvasConfig {
	return CanvasConfig{
		Width:         1024,
		Height:        1024,
		HalfExtent:    0.5,
		PixelsPerUnit: 640,
	}
}

// maxCachedSprites bounds the resized sprite cache, it is emptied when full.
const maxCachedSprites = 64

type spriteKey struct {
	src  image.Image
	w, h int
}

// Compositor renders the live stamps over the base canvas image.
// Rendering is incremental: the stamps added since the last call are blended
// onto a cached working image, which is rebuilt only after a clear or a base change.
type Compositor struct {
	cfg   CanvasConfig
	acc   *Accumulator
	op    *imop.Composite
	blend *imop.Blend

	base    *image.NRGBA
	work    *image.NRGBA
	applied int
	gen     uint64

	sprites map[spriteKey]*image.NRGBA
}

// NewCompositor returns a compositor drawing the stamps of acc over base.
// The base is resized when it does not match the configured resolution.
func NewCompositor(cfg CanvasConfig, base image.Image, acc *Accumulator) *Compositor {
	if cfg.HalfExtent <= 0 {
		cfg.HalfExtent = 0.5
	}
	if cfg.PixelsPerUnit <= 0 {
		cfg.PixelsPerUnit = 100
	}
	c := &Compositor{
		cfg:     cfg,
		acc:     acc,
		op:      imop.InitOp(),
		sprites: make(map[spriteKey]*image.NRGBA),
	}
	c.SetBase(base)
	return c
}

// SetBlend mixes the stamp colors with the backdrop using one of the imop blend modes.
// An empty mode restores plain source-over composition.
func (c *Compositor) SetBlend(mode string) error {
	if mode == "" {
		c.blend = nil
	} else {
		b := imop.NewBlend()
		if err := b.Set(mode); err != nil {
			return err
		}
		c.blend = b
	}
	c.work = nil
	return nil
}

// SetOp selects the imop Porter-Duff operator laying the stamps on the canvas.
// An empty operator restores source-over.
func (c *Compositor) SetOp(op string) error {
	if op == "" {
		op = imop.SrcOver
	}
	if err := c.op.Set(op); err != nil {
		return err
	}
	c.work = nil
	return nil
}

// Op returns the active composition operator.
func (c *Compositor) Op() string {
	return c.op.Get()
}

// DropSprites empties the resized sprite cache.
func (c *Compositor) DropSprites() {
	clear(c.sprites)
}

// Bounds returns the canvas rectangle.
func (c *Compositor) Bounds() image.Rectangle {
	return image.Rect(0, 0, c.cfg.Width, c.cfg.Height)
}

// Base returns a copy of the base canvas image.
func (c *Compositor) Base() *image.NRGBA {
	return imaging.Clone(c.base)
}

// SetBase replaces the base canvas image.
func (c *Compositor) SetBase(img image.Image) {
	w, h := c.cfg.Width, c.cfg.Height
	switch {
	case img == nil:
		c.base = imaging.New(w, h, White.NRGBA())
	case w <= 0 || h <= 0:
		c.base = imgToNRGBA(img, true)
		c.cfg.Width, c.cfg.Height = c.base.Bounds().Dx(), c.base.Bounds().Dy()
	case img.Bounds().Dx() != w || img.Bounds().Dy() != h:
		c.base = imaging.Resize(img, w, h, imaging.Lanczos)
	default:
		c.base = imgToNRGBA(img, true)
	}
	c.work = nil
}

// Composite returns the base image with every live stamp blended over it in add order.
func (c *Compositor) Composite() *image.NRGBA {
	c.render()
	return imaging.Clone(c.work)
}

// Flatten bakes the live stamps into the base image and clears them.
// It returns the new base image.
func (c *Compositor) Flatten() *image.NRGBA {
	c.render()
	c.base = c.work
	c.work = nil
	c.acc.Clear()
	return imaging.Clone(c.base)
}

func (c *Compositor) render() {
	stamps := c.acc.Stamps()
	if c.work == nil || c.gen != c.acc.Generation() || c.applied > len(stamps) {
		c.work = imaging.Clone(c.base)
		c.applied = 0
		c.gen = c.acc.Generation()
	}
	for _, s := range stamps[c.applied:] {
		c.drawStamp(c.work, s)
	}
	c.applied = len(stamps)
}

// PixelAt maps a canvas local position to the pixel holding it.
// The texture space origin is the bottom-left corner, the image origin the top-left one.
func (c *Compositor) PixelAt(p scene.Vec3) image.Point {
	h := c.cfg.HalfExtent
	x := (float64(p.X) + h) / (2 * h) * float64(c.cfg.Width)
	y := (1 - (float64(p.Y)+h)/(2*h)) * float64(c.cfg.Height)
	return image.Pt(int(math.Floor(x)), int(math.Floor(y)))
}

// footprint returns the size in canvas pixels of the sprite drawn at the given scale.
func (c *Compositor) footprint(sprite image.Image, scale float64) (int, int) {
	k := scale / c.cfg.PixelsPerUnit / (2 * c.cfg.HalfExtent)
	sb := sprite.Bounds()
	w := int(math.Round(float64(sb.Dx()) * k * float64(c.cfg.Width)))
	h := int(math.Round(float64(sb.Dy()) * k * float64(c.cfg.Height)))
	return max(w, 1), max(h, 1)
}

func (c *Compositor) drawStamp(dst *image.NRGBA, s Stamp) {
	if s.Sprite == nil || s.Scale <= 0 {
		return
	}
	sprite := c.tint(c.sprite(s.Sprite, s.Scale), s)

	center := c.PixelAt(s.Pos)
	sb := sprite.Bounds()
	pt := center.Sub(image.Pt(sb.Dx()/2, sb.Dy()/2))

	c.op.Draw(dst, sprite, pt, s.Opacity(), c.blend)
}

// sprite returns the sprite resized to its footprint, resized sprites are cached.
func (c *Compositor) sprite(src image.Image, scale float64) *image.NRGBA {
	w, h := c.footprint(src, scale)
	key := spriteKey{src: src, w: w, h: h}
	if img, ok := c.sprites[key]; ok {
		return img
	}
	if len(c.sprites) >= maxCachedSprites {
		c.DropSprites()
	}
	var img *image.NRGBA
	if src.Bounds().Dx() == w && src.Bounds().Dy() == h {
		img = imgToNRGBA(src, true)
	} else {
		img = imaging.Resize(src, w, h, imaging.Linear)
	}
	c.sprites[key] = img
	return img
}

// tint multiplies the brush sprite colors by the stamp color. Decals are left untouched.
func (c *Compositor) tint(sprite *image.NRGBA, s Stamp) *image.NRGBA {
	if s.Kind == KindDecal {
		return sprite
	}
	col := s.Color.WithAlpha(1).NRGBA()
	if col.R == 255 && col.G == 255 && col.B == 255 {
		return sprite
	}
	dst := imaging.Clone(sprite)
	for i := 0; i+3 < len(dst.Pix); i += 4 {
		dst.Pix[i+0] = uint8(uint32(dst.Pix[i+0]) * uint32(col.R) / 255)
		dst.Pix[i+1] = uint8(uint32(dst.Pix[i+1]) * uint32(col.G) / 255)
		dst.Pix[i+2] = uint8(uint32(dst.Pix[i+2]) * uint32(col.B) / 255)
	}
	return dst
}
