package imop

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlend_Basic(t *testing.T) {
	assert := assert.New(t)

	op := NewBlend()
	assert.Empty(op.Get())
	assert.Error(op.Set("blend_mode_not_supported"))
	assert.NoError(op.Set(Darken))
	assert.Equal(Darken, op.Get())
	assert.NoError(op.Set(Lighten))
	assert.Equal(Lighten, op.Get())
}

func TestBlend_Modes(t *testing.T) {
	// The expected values are the ones obtained in Photoshop
	// by overlapping two layers and applying the blend mode.
	pinkFront := color.NRGBA{R: 214, G: 20, B: 65, A: 255}
	orangeBack := color.NRGBA{R: 250, G: 121, B: 17, A: 255}

	testCases := []struct {
		mode     string
		expected []uint8
	}{
		{Darken, []uint8{214, 20, 17, 255}},
		{Lighten, []uint8{250, 121, 65, 255}},
		{Multiply, []uint8{209, 9, 4, 255}},
		{Screen, []uint8{254, 131, 77, 255}},
		{Overlay, []uint8{253, 18, 8, 255}},
	}

	rect := image.Rect(0, 0, 1, 1)
	for _, tc := range testCases {
		t.Run(tc.mode, func(t *testing.T) {
			source := image.NewNRGBA(rect)
			backdrop := image.NewNRGBA(rect)
			draw.Draw(source, rect, &image.Uniform{pinkFront}, image.Point{}, draw.Src)
			draw.Draw(backdrop, rect, &image.Uniform{orangeBack}, image.Point{}, draw.Src)

			blend := NewBlend()
			assert.NoError(t, blend.Set(tc.mode))
			InitOp().Draw(backdrop, source, image.Point{}, 1, blend)

			for i, v := range tc.expected {
				assert.InDelta(t, int(v), int(backdrop.Pix[i]), 1, "channel %d", i)
			}
		})
	}
}
