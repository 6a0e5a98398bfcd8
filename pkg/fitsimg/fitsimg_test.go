package fitsimg

import(
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/astrogo/fitsio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abworrall/goimfit/pkg/emath"
	"github.com/abworrall/goimfit/pkg/imfit"
)

func TestSplitName(t *testing.T) {
	tests := []struct {
		in   string
		file string
		hdu  int
	}{
		{"img.fits", "img.fits", -1},
		{"dir/img.fits[1]", "dir/img.fits", 1},
		{"img.fits[sci]", "img.fits[sci]", -1},
		{"img.fits]", "img.fits]", -1},
	}
	for _, tt := range tests {
		file, hdu := SplitName(tt.in)
		assert.Equal(t, tt.file, file, tt.in)
		assert.Equal(t, tt.hdu, hdu, tt.in)
	}
}

func TestWriteAndLoadGrid(t *testing.T) {
	g := emath.NewFloatGrid(5, 3)
	g.Set(0, 0, 1.5)
	g.Set(4, 2, -2.25)
	g.Set(2, 1, 1e-3)

	fn := filepath.Join(t.TempDir(), "model.fits")
	require.NoError(t, WriteGrid(&g, fn))

	shape, err := Shape(fn)
	require.NoError(t, err)
	assert.Equal(t, imfit.Shape{NY: 3, NX: 5}, shape)

	center, err := Center(fn)
	require.NoError(t, err)
	assert.Equal(t, imfit.Position{X: 2.5, Y: 1.5}, center)

	loaded, err := LoadGrid(fn)
	require.NoError(t, err)
	assert.True(t, g.Equal(&loaded))

	loaded, err = LoadGrid(fn + "[0]")
	require.NoError(t, err)
	assert.Equal(t, 5, loaded.Dx())

	_, err = LoadGrid(fn + "[3]")
	assert.Error(t, err)
}

// writeImage saves data (a pointer to a slice of the type BITPIX
// calls for) as a single 4x3 image.
func writeImage(t *testing.T, fn string, bitpix int, data interface{}) {
	w, err := os.Create(fn)
	require.NoError(t, err)
	defer w.Close()

	ff, err := fitsio.Create(w)
	require.NoError(t, err)
	defer ff.Close()

	img := fitsio.NewImage(bitpix, []int{4, 3})
	defer img.Close()
	require.NoError(t, img.Write(data))
	require.NoError(t, ff.Write(img))
}

func TestLoadGridBitpix(t *testing.T) {
	dir := t.TempDir()
	expected := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, -11}

	f32 := make([]float32, len(expected))
	i16 := make([]int16, len(expected))
	for i, v := range expected {
		f32[i], i16[i] = float32(v) / 4, int16(v)
	}

	tests := []struct {
		bitpix int
		data   interface{}
		scale  float64
	}{
		{-32, &f32, 0.25},
		{16, &i16, 1},
	}
	for _, tt := range tests {
		fn := filepath.Join(dir, fmt.Sprintf("bitpix%d.fits", tt.bitpix))
		writeImage(t, fn, tt.bitpix, tt.data)

		shape, err := Shape(fn)
		require.NoError(t, err)
		assert.Equal(t, imfit.Shape{NY: 3, NX: 4}, shape)

		g, err := LoadGrid(fn)
		require.NoError(t, err, "BITPIX %d", tt.bitpix)
		require.Equal(t, 4, g.Dx())
		require.Equal(t, 3, g.Dy())
		for i, v := range expected {
			assert.Equal(t, v * tt.scale, g.Values()[i], "BITPIX %d, pixel %d", tt.bitpix, i)
		}
	}
}

func TestScaling(t *testing.T) {
	hdr := fitsio.NewHeader(nil, fitsio.IMAGE_HDU, 16, []int{4, 3})
	zero, scale := scaling(hdr)
	assert.Equal(t, 0.0, zero)
	assert.Equal(t, 1.0, scale)

	hdr = fitsio.NewHeader([]fitsio.Card{
		{Name: "BZERO", Value: 32768},
		{Name: "BSCALE", Value: 0.5},
	}, fitsio.IMAGE_HDU, 16, []int{4, 3})
	zero, scale = scaling(hdr)
	assert.Equal(t, 32768.0, zero)
	assert.Equal(t, 0.5, scale)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := Shape(filepath.Join(dir, "missing.fits"))
	assert.Error(t, err)

	junk := filepath.Join(dir, "junk.fits")
	require.NoError(t, os.WriteFile(junk, []byte("SIMPLE? not really"), 0644))
	_, err = LoadGrid(junk)
	assert.Error(t, err)
}
