package imop

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComp_Basic(t *testing.T) {
	assert := assert.New(t)

	op := InitOp()
	assert.Equal(SrcOver, op.Get())

	assert.NoError(op.Set(Xor))
	assert.Equal(Xor, op.Get())

	assert.Error(op.Set("unsupported_composite_operation"))
	assert.Equal(Xor, op.Get())
}

func TestComp_Ops(t *testing.T) {
	transparent := color.NRGBA{R: 0, G: 0, B: 0, A: 0}
	cyan := color.NRGBA{R: 33, G: 150, B: 243, A: 255}
	magenta := color.NRGBA{R: 233, G: 30, B: 99, A: 255}

	rect := image.Rect(0, 0, 10, 10)
	source := image.NewNRGBA(rect)
	draw.Draw(source, image.Rect(0, 4, 6, 10), &image.Uniform{cyan}, image.Point{}, draw.Src)

	// Pick three representative pixels from the generated image output.
	// Depending on the applied composition operation the colors of the
	// selected pixels should be the source color, the destination color or transparent.
	testCases := []struct {
		op         string
		topRight   color.NRGBA
		bottomLeft color.NRGBA
		center     color.NRGBA
	}{
		{Copy, transparent, cyan, cyan},
		{SrcOver, magenta, cyan, cyan},
		{DstOver, magenta, cyan, magenta},
		{SrcIn, transparent, transparent, cyan},
		{DstIn, transparent, transparent, magenta},
		{SrcOut, transparent, cyan, transparent},
		{DstOut, magenta, transparent, transparent},
		{SrcAtop, magenta, transparent, cyan},
		{DstAtop, transparent, cyan, magenta},
		{Xor, magenta, cyan, transparent},
	}

	for _, tc := range testCases {
		t.Run(tc.op, func(t *testing.T) {
			backdrop := image.NewNRGBA(rect)
			draw.Draw(backdrop, image.Rect(4, 0, 10, 6), &image.Uniform{magenta}, image.Point{}, draw.Src)

			op := InitOp()
			assert.NoError(t, op.Set(tc.op))
			op.Draw(backdrop, source, image.Point{}, 1, nil)

			assert.Equal(t, tc.topRight, backdrop.NRGBAAt(9, 0))
			assert.Equal(t, tc.bottomLeft, backdrop.NRGBAAt(0, 9))
			assert.Equal(t, tc.center, backdrop.NRGBAAt(5, 5))
		})
	}
}

func TestComp_OpacityAndOffset(t *testing.T) {
	assert := assert.New(t)

	backdrop := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	draw.Draw(backdrop, backdrop.Bounds(), &image.Uniform{color.NRGBA{A: 255}}, image.Point{}, draw.Src)

	stamp := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	draw.Draw(stamp, stamp.Bounds(), &image.Uniform{color.NRGBA{R: 255, G: 255, B: 255, A: 255}}, image.Point{}, draw.Src)

	op := InitOp()
	// Half of the stamp falls outside of the backdrop.
	op.Draw(backdrop, stamp, image.Pt(9, 9), 0.5, nil)

	got := backdrop.NRGBAAt(9, 9)
	assert.InDelta(128, int(got.R), 1)
	assert.Equal(uint8(255), got.A)
	assert.Equal(color.NRGBA{A: 255}, backdrop.NRGBAAt(8, 8))

	// Opacity above one is clamped.
	op.Draw(backdrop, stamp, image.Pt(0, 0), 2.0, nil)
	assert.Equal(color.NRGBA{R: 255, G: 255, B: 255, A: 255}, backdrop.NRGBAAt(1, 1))

	// A fully transparent stamp leaves the backdrop untouched.
	op.Draw(backdrop, stamp, image.Pt(4, 4), 0, nil)
	assert.Equal(color.NRGBA{A: 255}, backdrop.NRGBAAt(4, 4))
}
