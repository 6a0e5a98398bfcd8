package emath

import(
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// A FloatGrid is a grid of floats, with some operations. Row-major; a
// grid built from an imfit (ny, nx) shape has Dx() == nx.
type FloatGrid struct {
	stride int
	values []float64
}

func NewFloatGrid(w, h int) FloatGrid {
	return FloatGrid{
		stride: w,
		values: make([]float64, w*h),
	}
}

// NewFloatGridFromValues wraps a row-major slice (not a copy).
func NewFloatGridFromValues(w int, vals []float64) (FloatGrid, error) {
	if w <= 0 || len(vals) % w != 0 {
		return FloatGrid{}, fmt.Errorf("%d values don't make rows of %d", len(vals), w)
	}
	return FloatGrid{stride: w, values: vals}, nil
}

func (g1 *FloatGrid)NewFromThis() FloatGrid  { return NewFloatGrid(g1.Dx(), g1.Dy()) }
func (fg *FloatGrid)Set(x, y int, v float64) { fg.values[fg.stride*y + x] = v }
func (fg *FloatGrid)Get(x, y int) float64    { return fg.values[fg.stride*y + x] }
func (fg *FloatGrid)Dx() int                 { return fg.stride }
func (fg *FloatGrid)Values() []float64       { return fg.values }

func (fg *FloatGrid)Dy() int {
	if fg.stride == 0 {
		return 0
	}
	return len(fg.values) / fg.stride
}

func (g1 *FloatGrid)Copy() *FloatGrid {
	g2 := FloatGrid{stride: g1.stride, values:make([]float64, len(g1.values))}
	copy(g2.values, g1.values)
	return &g2
}

func (g1 *FloatGrid)SameShape(g2 *FloatGrid) bool {
	return g1.Dx() == g2.Dx() && g1.Dy() == g2.Dy()
}

// Add accumulates g2 into g1, elementwise.
func (g1 *FloatGrid)Add(g2 *FloatGrid) error {
	if !g1.SameShape(g2) {
		return fmt.Errorf("add %dx%d into %dx%d: shape mismatch", g2.Dx(), g2.Dy(), g1.Dx(), g1.Dy())
	}
	floats.Add(g1.values, g2.values)
	return nil
}

// Sub returns a new grid, g1 - g2.
func (g1 *FloatGrid)Sub(g2 *FloatGrid) (FloatGrid, error) {
	if !g1.SameShape(g2) {
		return FloatGrid{}, fmt.Errorf("sub %dx%d from %dx%d: shape mismatch", g2.Dx(), g2.Dy(), g1.Dx(), g1.Dy())
	}
	g3 := g1.NewFromThis()
	floats.SubTo(g3.values, g1.values, g2.values)
	return g3, nil
}

func (fg *FloatGrid)Sum() float64 { return floats.Sum(fg.values) }

// Equal is an exact, bit-for-bit comparison.
func (g1 *FloatGrid)Equal(g2 *FloatGrid) bool {
	return g1.SameShape(g2) && floats.Equal(g1.values, g2.values)
}

func (fg *FloatGrid)MinMax() (float64, float64) {
	if len(fg.values) == 0 {
		return 0, 0
	}
	return floats.Min(fg.values), floats.Max(fg.values)
}

// GridStats summarises the values in a grid; mostly used on residuals.
type GridStats struct {
	Min, Max   float64
	Mean       float64
	StdDev     float64
}

func (gs GridStats)String() string {
	return fmt.Sprintf("min=%g, max=%g, mean=%g, stddev=%g", gs.Min, gs.Max, gs.Mean, gs.StdDev)
}

func (fg *FloatGrid)Stats() GridStats {
	gs := GridStats{}
	if len(fg.values) == 0 {
		return gs
	}
	gs.Min, gs.Max = fg.MinMax()
	gs.Mean, gs.StdDev = stat.MeanStdDev(fg.values, nil)
	if math.IsNaN(gs.StdDev) {
		gs.StdDev = 0 // single pixel
	}
	return gs
}

func (fg *FloatGrid)String() string {
	min, max := fg.MinMax()
	return fmt.Sprintf("fg[%dx%d, vals{%f,%f}]", fg.Dx(), fg.Dy(), min, max)
}

// ToImg saves a simple grayscale, based on the range of values in the grid, and gamma scaling the
// gray to look normal for human vision. The title is drawn in the top left corner.
func (fg *FloatGrid)ToImg(title, filename string) error {
	min, max := fg.MinMax()
	span := max - min
	if span == 0 {
		span = 1
	}

	// FITS images have their origin bottom left, so flip vertically
	img := image.NewRGBA64(image.Rectangle{Max:image.Point{fg.Dx(), fg.Dy()}})
	for x:=0; x<fg.Dx(); x++ {
		for y:=0; y<fg.Dy(); y++ {
			gray := GammaExpand_F64((fg.Get(x,y) - min) / span)
			col := color.RGBA64{uint16(gray * 65535.0), uint16(gray * 65535.0), uint16(gray * 65535.0), 0xFFFF}
			img.Set(x, fg.Dy()-1-y, col)
		}
	}

	dc := gg.NewContextForImage(img)
	if title != "" {
		dc.SetRGB(1,0.2,0.2)
		dc.DrawString(title, 10, 20)
	}
	return dc.SavePNG(filename)
}
