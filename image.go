package uvpaint

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"strings"

	"golang.org/x/image/bmp"
)

// Codec encodes the captured canvas into an image file format.
type Codec interface {
	// Ext returns the file extension, including the leading dot.
	Ext() string
	Encode(img image.Image) ([]byte, error)
}

// PNG is the default texture codec.
type PNG struct{}

// Ext implements Codec.
func (PNG) Ext() string { return ".png" }

// Encode implements Codec.
func (PNG) Encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BMP encodes uncompressed bitmaps.
type BMP struct{}

// Ext implements Codec.
func (BMP) Ext() string { return ".bmp" }

// Encode implements Codec.
func (BMP) Encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CodecFor returns the codec registered for a format name or extension.
func CodecFor(format string) (Codec, error) {
	switch strings.TrimPrefix(strings.ToLower(format), ".") {
	case "", "png":
		return PNG{}, nil
	case "bmp":
		return BMP{}, nil
	default:
		return nil, fmt.Errorf("unsupported image format: %q", format)
	}
}

// toRGB copies the image into an opaque RGBA image, dropping the alpha channel.
// The saved texture carries color only, like a 24 bit render target read back.
func toRGB(src *image.NRGBA) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		si := src.PixOffset(b.Min.X, b.Min.Y+y)
		di := dst.PixOffset(0, y)
		for x := 0; x < b.Dx(); x++ {
			dst.Pix[di+0] = src.Pix[si+0]
			dst.Pix[di+1] = src.Pix[si+1]
			dst.Pix[di+2] = src.Pix[si+2]
			dst.Pix[di+3] = 0xff
			si += 4
			di += 4
		}
	}
	return dst
}

// imgToNRGBA converts any image type to *image.NRGBA with min-point at (0, 0).
// When clone is false and the source already has that layout it is returned as is.
func imgToNRGBA(img image.Image, clone bool) *image.NRGBA {
	srcBounds := img.Bounds()
	if !clone && srcBounds.Min.X == 0 && srcBounds.Min.Y == 0 {
		if src0, ok := img.(*image.NRGBA); ok {
			return src0
		}
	}
	srcMinX := srcBounds.Min.X
	srcMinY := srcBounds.Min.Y

	dstBounds := srcBounds.Sub(srcBounds.Min)
	dstW := dstBounds.Dx()
	dstH := dstBounds.Dy()
	dst := image.NewNRGBA(dstBounds)

	switch src := img.(type) {
	case *image.NRGBA:
		rowSize := dstW * 4
		for dstY := 0; dstY < dstH; dstY++ {
			di := dst.PixOffset(0, dstY)
			si := src.PixOffset(srcMinX, srcMinY+dstY)
			copy(dst.Pix[di:di+rowSize], src.Pix[si:si+rowSize])
		}
	case *image.YCbCr:
		for dstY := 0; dstY < dstH; dstY++ {
			di := dst.PixOffset(0, dstY)
			for dstX := 0; dstX < dstW; dstX++ {
				srcX := srcMinX + dstX
				srcY := srcMinY + dstY
				r, g, b := color.YCbCrToRGB(src.Y[src.YOffset(srcX, srcY)], src.Cb[src.COffset(srcX, srcY)], src.Cr[src.COffset(srcX, srcY)])
				dst.Pix[di+0] = r
				dst.Pix[di+1] = g
				dst.Pix[di+2] = b
				dst.Pix[di+3] = 0xff
				di += 4
			}
		}
	default:
		for dstY := 0; dstY < dstH; dstY++ {
			di := dst.PixOffset(0, dstY)
			for dstX := 0; dstX < dstW; dstX++ {
				c := color.NRGBAModel.Convert(img.At(srcMinX+dstX, srcMinY+dstY)).(color.NRGBA)
				dst.Pix[di+0] = c.R
				dst.Pix[di+1] = c.G
				dst.Pix[di+2] = c.B
				dst.Pix[di+3] = c.A
				di += 4
			}
		}
	}

	return dst
}
