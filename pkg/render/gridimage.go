package render

import(
	"image"
	"image/color"
	"math"

	"github.com/mdouchement/hdr/hdrcolor"

	"github.com/abworrall/goimfit/pkg/emath"
)

// GridImage presents a FloatGrid as an HDR image, with the grid's
// values as linear gray. Row 0 of the grid is imfit's y=1, which is the
// bottom of the picture, so rows are flipped on the way out.
type GridImage struct {
	Grid *emath.FloatGrid
}

func NewGridImage(g *emath.FloatGrid) GridImage { return GridImage{Grid: g} }

// Implement golang's image.Image interface
func (gi GridImage)ColorModel() color.Model { return hdrcolor.RGBModel }
func (gi GridImage)Bounds() image.Rectangle { return image.Rect(0, 0, gi.Grid.Dx(), gi.Grid.Dy()) }
func (gi GridImage)At(x, y int) color.Color { return gi.HDRAt(x,y) }

// Implement hdr.Image interface. RGBE has no negative numbers, so
// residuals below zero come out black.
func (gi GridImage)HDRAt(x, y int) hdrcolor.Color {
	v := gi.Grid.Get(x, gi.Grid.Dy()-1-y)
	if v < 0 || math.IsNaN(v) {
		v = 0
	}
	return hdrcolor.RGB{R: v, G: v, B: v}
}
func (gi GridImage)Size() int { return gi.Bounds().Dx() * gi.Bounds().Dy() }

// Grayscale does a linear stretch of [lo,hi] into 16 bit gray, with
// the same vertical flip as GridImage. If lo==hi, the grid's own range
// is used.
func Grayscale(g *emath.FloatGrid, lo, hi float64) *image.Gray16 {
	if lo == hi {
		lo, hi = g.MinMax()
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	img := image.NewGray16(image.Rect(0, 0, g.Dx(), g.Dy()))
	for x:=0; x<g.Dx(); x++ {
		for y:=0; y<g.Dy(); y++ {
			f := (g.Get(x,y) - lo) / span
			f = math.Max(0, math.Min(1, f))
			img.SetGray16(x, g.Dy()-1-y, color.Gray16{uint16(f * 65535.0)})
		}
	}
	return img
}
