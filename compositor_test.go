package uvpaint

import (
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uvpaint/uvpaint/imop"
	"github.com/uvpaint/uvpaint/scene"
)

// testCanvas is a 64x64 canvas where an 8x8 sprite keeps its size at scale 1.
var testCanvas = CanvasConfig{
	Width:         64,
	Height:        64,
	HalfExtent:    0.5,
	PixelsPerUnit: 64,
}

func squareSprite(size int) *image.NRGBA {
	return imaging.New(size, size, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
}

func TestCompositor_PixelMapping(t *testing.T) {
	c := NewCompositor(testCanvas, nil, NewAccumulator())

	testCases := []struct {
		pos  scene.Vec3
		want image.Point
	}{
		{scene.V3(0, 0, 0), image.Pt(32, 32)},
		{scene.V3(-0.5, -0.5, 0), image.Pt(0, 64)},
		{scene.V3(-0.5, 0.5, 0), image.Pt(0, 0)},
		{scene.V3(0.25, 0.25, 0), image.Pt(48, 16)},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, c.PixelAt(tc.pos), "%v", tc.pos)
	}
}

func TestCompositor_OpaqueStampCoversFootprint(t *testing.T) {
	acc := NewAccumulator()
	c := NewCompositor(testCanvas, nil, acc)

	acc.Add(Stamp{
		Pos:    scene.V3(0, 0, 0),
		Scale:  1,
		Color:  Color{R: 1, A: StampAlpha(1)},
		Sprite: squareSprite(8),
	})
	img := c.Composite()

	red := color.NRGBA{R: 255, A: 255}
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	assert.Equal(t, red, img.NRGBAAt(28, 28))
	assert.Equal(t, red, img.NRGBAAt(35, 35))
	assert.Equal(t, white, img.NRGBAAt(27, 28))
	assert.Equal(t, white, img.NRGBAAt(36, 35))

	// The base is not touched by compositing.
	assert.Equal(t, white, c.Base().NRGBAAt(30, 30))
}

func TestCompositor_FootprintFollowsScale(t *testing.T) {
	c := NewCompositor(testCanvas, nil, NewAccumulator())

	w, h := c.footprint(squareSprite(8), 2)
	assert.Equal(t, 16, w)
	assert.Equal(t, 16, h)

	w, h = c.footprint(squareSprite(8), 0.01)
	assert.Equal(t, 1, w)
	assert.Equal(t, 1, h)
}

func TestCompositor_FlattenMatchesStampsInOrder(t *testing.T) {
	acc := NewAccumulator()
	c := NewCompositor(testCanvas, nil, acc)
	sprite := squareSprite(8)

	stamps := []Stamp{
		{Pos: scene.V3(0, 0, 0), Scale: 1, Color: Color{R: 1, A: 0.5}, Sprite: sprite},
		{Pos: scene.V3(0.05, 0.05, 0), Scale: 1, Color: Color{B: 1, A: 0.5}, Sprite: sprite},
		{Pos: scene.V3(-0.3, 0.2, 0), Scale: 1, Color: Color{G: 1, A: 1}, Sprite: sprite},
	}

	want := c.Base()
	op := imop.InitOp()
	for _, s := range stamps {
		acc.Add(s)
		tinted := c.tint(sprite, s)
		pt := c.PixelAt(s.Pos).Sub(image.Pt(4, 4))
		op.Draw(want, tinted, pt, s.Opacity(), nil)
	}

	// An intermediate composite must not change the final result.
	c.Composite()

	flat := c.Flatten()
	assert.Equal(t, want.Pix, flat.Pix)
	assert.Equal(t, want.Pix, c.Base().Pix)
	assert.Zero(t, acc.Count())
	assert.Equal(t, want.Pix, c.Composite().Pix)
}

func TestCompositor_IncrementalMatchesFullRender(t *testing.T) {
	acc := NewAccumulator()
	c := NewCompositor(testCanvas, nil, acc)
	sprite := squareSprite(8)

	for i := 0; i < 20; i++ {
		acc.Add(Stamp{
			Pos:    scene.V3(float32(i)/50-0.2, 0, 0),
			Scale:  1,
			Color:  Color{R: float64(i) / 20, B: 1, A: 0.3},
			Sprite: sprite,
		})
		if i%5 == 0 {
			c.Composite()
		}
	}
	incremental := c.Composite()

	fresh := NewCompositor(testCanvas, nil, acc)
	assert.Equal(t, fresh.Composite().Pix, incremental.Pix)
}

func TestCompositor_ClearRebuildsFromBase(t *testing.T) {
	acc := NewAccumulator()
	c := NewCompositor(testCanvas, nil, acc)

	acc.Add(Stamp{Pos: scene.V3(0, 0, 0), Scale: 1, Color: Black, Sprite: squareSprite(8)})
	assert.NotEqual(t, c.Base().Pix, c.Composite().Pix)

	acc.Clear()
	assert.Equal(t, c.Base().Pix, c.Composite().Pix)
}

func TestCompositor_DecalIsNotTinted(t *testing.T) {
	acc := NewAccumulator()
	c := NewCompositor(testCanvas, nil, acc)

	decal := imaging.New(8, 8, color.NRGBA{R: 255, G: 136, A: 255})
	acc.Add(Stamp{Pos: scene.V3(0, 0, 0), Scale: 1, Color: Black.WithAlpha(2), Kind: KindDecal, Sprite: decal})
	assert.Equal(t, color.NRGBA{R: 255, G: 136, A: 255}, c.Composite().NRGBAAt(32, 32))
}

func TestCompositor_SkipsEmptyStamps(t *testing.T) {
	acc := NewAccumulator()
	c := NewCompositor(testCanvas, nil, acc)

	acc.Add(Stamp{Pos: scene.V3(0, 0, 0), Scale: 0, Color: Black, Sprite: squareSprite(8)})
	acc.Add(Stamp{Pos: scene.V3(0, 0, 0), Scale: 1, Color: Black})
	acc.Add(Stamp{Pos: scene.V3(0, 0, 0), Scale: 1, Color: Black.WithAlpha(0), Sprite: squareSprite(8)})
	assert.Equal(t, c.Base().Pix, c.Composite().Pix)
}

func TestCompositor_SetBaseResizes(t *testing.T) {
	c := NewCompositor(testCanvas, nil, NewAccumulator())

	c.SetBase(imaging.New(16, 16, color.NRGBA{B: 255, A: 255}))
	base := c.Base()
	assert.Equal(t, c.Bounds(), base.Bounds())
	assert.Equal(t, color.NRGBA{B: 255, A: 255}, base.NRGBAAt(40, 40))

	// Without a configured resolution the canvas takes the base size.
	c = NewCompositor(CanvasConfig{}, imaging.New(10, 20, color.Black), NewAccumulator())
	assert.Equal(t, image.Rect(0, 0, 10, 20), c.Bounds())
}

func TestCompositor_BlendMode(t *testing.T) {
	acc := NewAccumulator()
	base := imaging.New(64, 64, color.NRGBA{R: 255, G: 128, A: 255})
	c := NewCompositor(testCanvas, base, acc)
	require.NoError(t, c.SetBlend(imop.Multiply))

	acc.Add(Stamp{Pos: scene.V3(0, 0, 0), Scale: 1, Color: Color{G: 1, A: 1}, Sprite: squareSprite(8)})
	px := c.Composite().NRGBAAt(32, 32)
	assert.Equal(t, uint8(0), px.R)
	assert.InDelta(t, 128, int(px.G), 1)

	assert.Error(t, c.SetBlend("smudge"))
	require.NoError(t, c.SetBlend(""))
	assert.Equal(t, color.NRGBA{G: 255, A: 255}, c.Composite().NRGBAAt(32, 32))
}

func TestCompositor_Operator(t *testing.T) {
	acc := NewAccumulator()
	c := NewCompositor(testCanvas, nil, acc)
	assert.Equal(t, imop.SrcOver, c.Op())

	acc.Add(Stamp{Pos: scene.V3(0, 0, 0), Scale: 1, Color: Color{R: 1, A: 0.5}, Sprite: squareSprite(8)})
	assert.Equal(t, uint8(255), c.Composite().NRGBAAt(32, 32).A)

	// Copy replaces the backdrop under the stamp, keeping the stamp alpha.
	require.NoError(t, c.SetOp(imop.Copy))
	img := c.Composite()
	assert.Equal(t, color.NRGBA{R: 255, A: 128}, img.NRGBAAt(32, 32))
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, img.NRGBAAt(0, 0))

	assert.Error(t, c.SetOp("smudge"))
	assert.Equal(t, imop.Copy, c.Op())

	require.NoError(t, c.SetOp(""))
	assert.Equal(t, imop.SrcOver, c.Op())
	assert.Equal(t, uint8(255), c.Composite().NRGBAAt(32, 32).A)
}

func TestCompositor_SpriteCacheIsBounded(t *testing.T) {
	c := NewCompositor(testCanvas, nil, NewAccumulator())
	sprite := squareSprite(8)

	for i := 1; i <= 2*maxCachedSprites; i++ {
		img := c.sprite(sprite, float64(i)/8)
		require.Equal(t, i, img.Bounds().Dx())
		assert.LessOrEqual(t, len(c.sprites), maxCachedSprites)
	}

	c.DropSprites()
	assert.Empty(t, c.sprites)
}
