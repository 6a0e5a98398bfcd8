package render

import(
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/mdouchement/hdr/hdrcolor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abworrall/goimfit/pkg/emath"
)

func testGrid() emath.FloatGrid {
	g := emath.NewFloatGrid(4, 3)
	g.Set(0, 0, 2)   // bottom left, in imfit terms
	g.Set(3, 2, -1)  // top right
	g.Set(1, 1, 0.5)
	return g
}

func TestGridImage(t *testing.T) {
	g := testGrid()
	gi := NewGridImage(&g)
	assert.Equal(t, 4, gi.Bounds().Dx())
	assert.Equal(t, 3, gi.Bounds().Dy())
	assert.Equal(t, 12, gi.Size())

	assert.Equal(t, hdrcolor.RGB{R: 2, G: 2, B: 2}, gi.HDRAt(0, 2))
	assert.Equal(t, hdrcolor.RGB{R: 0, G: 0, B: 0}, gi.HDRAt(3, 0), "negative values are clamped")
	assert.Equal(t, hdrcolor.RGB{R: 0.5, G: 0.5, B: 0.5}, gi.At(1, 1))
}

func TestWriteHDR(t *testing.T) {
	g := testGrid()
	fn := filepath.Join(t.TempDir(), "model.hdr")
	require.NoError(t, WriteHDR(NewGridImage(&g), fn))
	info, err := os.Stat(fn)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	assert.Error(t, WriteHDR(NewGridImage(&g), filepath.Join(fn, "nope.hdr")))
}

func TestGrayscale(t *testing.T) {
	g := testGrid()
	img := Grayscale(&g, 0, 0)
	assert.Equal(t, uint16(65535), img.Gray16At(0, 2).Y)
	assert.Equal(t, uint16(0), img.Gray16At(3, 0).Y)

	img = Grayscale(&g, 0, 1)
	assert.Equal(t, uint16(65535), img.Gray16At(0, 2).Y, "clipped")
	assert.Equal(t, uint16(0), img.Gray16At(3, 0).Y, "clipped")
	assert.Equal(t, uint16(32767), img.Gray16At(1, 1).Y)
}

func TestWritePNGScaled(t *testing.T) {
	g := testGrid()
	img := Scale(Grayscale(&g, 0, 0), 3)
	assert.Equal(t, 12, img.Bounds().Dx())
	assert.Equal(t, 9, img.Bounds().Dy())

	fn := filepath.Join(t.TempDir(), "model.png")
	require.NoError(t, WritePNG(img, fn))

	f, err := os.Open(fn)
	require.NoError(t, err)
	defer f.Close()
	decoded, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())

	same := Grayscale(&g, 0, 0)
	assert.Equal(t, same, Scale(same, 1))
}

func TestResidual(t *testing.T) {
	data, err := emath.NewFloatGridFromValues(2, []float64{1, 2, 3, 4})
	require.NoError(t, err)
	model, err := emath.NewFloatGridFromValues(2, []float64{1, 1, 3, 3})
	require.NoError(t, err)

	res, err := NewResidual(&data, &model)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 0, 1}, res.Grid.Values())
	assert.Equal(t, 0.5, res.Stats.Mean)
	assert.Equal(t, 1.0, res.Stats.Max)
	assert.Equal(t, 4.0, res.Data.Max)
	assert.Contains(t, res.String(), "residual[2x2]")

	panel := res.Panel(&data, &model)
	assert.Equal(t, 6, panel.Bounds().Dx())
	assert.Equal(t, 2, panel.Bounds().Dy())

	wrong := emath.NewFloatGrid(3, 3)
	_, err = NewResidual(&data, &wrong)
	assert.Error(t, err)
}

func TestTonemap(t *testing.T) {
	g := emath.NewFloatGrid(16, 16)
	for x:=0; x<16; x++ {
		for y:=0; y<16; y++ {
			g.Set(x, y, 1.0 / float64(1 + (x-8)*(x-8) + (y-8)*(y-8)))
		}
	}

	for _, name := range []string{"linear", "drago03"} {
		img, err := Tonemap(NewGridImage(&g), name)
		require.NoError(t, err, name)
		assert.Equal(t, 16, img.Bounds().Dx(), name)
	}

	_, err := Tonemap(NewGridImage(&g), "fattal02")
	assert.Error(t, err)
	assert.Len(t, Tonemappers, 5)
}
