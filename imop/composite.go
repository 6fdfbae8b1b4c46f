package imop

import (
	"fmt"
	"image"
	"math"

	"github.com/uvpaint/uvpaint/utils"
)

// Porter-Duff composition operators supported by Composite.
const (
	Copy    = "copy"
	SrcOver = "src_over"
	DstOver = "dst_over"
	SrcIn   = "src_in"
	DstIn   = "dst_in"
	SrcOut  = "src_out"
	DstOut  = "dst_out"
	SrcAtop = "src_atop"
	DstAtop = "dst_atop"
	Xor     = "xor"
)

var compositeOps = []string{
	Copy,
	SrcOver,
	DstOver,
	SrcIn,
	DstIn,
	SrcOut,
	DstOut,
	SrcAtop,
	DstAtop,
	Xor,
}

// Composite holds the currently active composition operator.
type Composite struct {
	current string
}

// InitOp returns a Composite using source-over, the operator used to lay brush stamps on a canvas.
func InitOp() *Composite {
	return &Composite{current: SrcOver}
}

// Set activates one of the supported composition operators.
func (op *Composite) Set(cop string) error {
	if !utils.Contains(compositeOps, cop) {
		return fmt.Errorf("unsupported composite operation: %q", cop)
	}
	op.current = cop
	return nil
}

// Get returns the active composition operator.
func (op *Composite) Get() string {
	return op.current
}

// Draw composes src onto dst with the source top-left corner placed at pt.
// The source alpha is multiplied by opacity, which is clamped to [0, 1].
// Only the part of src overlapping dst is processed, dst is modified in place.
// When blend is not nil, the source color is first mixed with the backdrop
// using the blend mode, as described in the W3C compositing specification.
func (op *Composite) Draw(dst, src *image.NRGBA, pt image.Point, opacity float64, blend *Blend) {
	opacity = utils.Clamp(opacity, 0, 1)
	if opacity == 0 && op.current != Copy {
		return
	}

	sb := src.Bounds()
	area := sb.Sub(sb.Min).Add(pt).Intersect(dst.Bounds())
	if area.Empty() {
		return
	}

	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			si := src.PixOffset(x-pt.X+sb.Min.X, y-pt.Y+sb.Min.Y)
			di := dst.PixOffset(x, y)

			rs := float64(src.Pix[si+0]) / 255
			gs := float64(src.Pix[si+1]) / 255
			bs := float64(src.Pix[si+2]) / 255
			as := float64(src.Pix[si+3]) / 255 * opacity

			rb := float64(dst.Pix[di+0]) / 255
			gb := float64(dst.Pix[di+1]) / 255
			bb := float64(dst.Pix[di+2]) / 255
			ab := float64(dst.Pix[di+3]) / 255

			// applying the blending mode
			if blend != nil && blend.Get() != "" {
				rs = (1-ab)*rs + ab*blend.mix(rb, rs)
				gs = (1-ab)*gs + ab*blend.mix(gb, gs)
				bs = (1-ab)*bs + ab*blend.mix(bb, bs)
			}

			// Fa and Fb are the fractions of the source and backdrop kept by the operator.
			var fa, fb float64
			switch op.current {
			case Copy:
				fa, fb = 1, 0
			case SrcOver:
				fa, fb = 1, 1-as
			case DstOver:
				fa, fb = 1-ab, 1
			case SrcIn:
				fa, fb = ab, 0
			case DstIn:
				fa, fb = 0, as
			case SrcOut:
				fa, fb = 1-ab, 0
			case DstOut:
				fa, fb = 0, 1-as
			case SrcAtop:
				fa, fb = ab, 1-as
			case DstAtop:
				fa, fb = 1-ab, as
			case Xor:
				fa, fb = 1-ab, 1-as
			}

			// applying the alpha composition formula on premultiplied values
			an := as*fa + ab*fb
			rn := as*fa*rs + ab*fb*rb
			gn := as*fa*gs + ab*fb*gb
			bn := as*fa*bs + ab*fb*bb
			if an > 0 {
				rn, gn, bn = rn/an, gn/an, bn/an
			} else {
				rn, gn, bn = 0, 0, 0
			}

			dst.Pix[di+0] = toUint8(rn)
			dst.Pix[di+1] = toUint8(gn)
			dst.Pix[di+2] = toUint8(bn)
			dst.Pix[di+3] = toUint8(an)
		}
	}
}

func toUint8(v float64) uint8 {
	return uint8(math.Round(utils.Clamp(v, 0, 1) * 255))
}
