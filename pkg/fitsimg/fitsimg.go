// Package fitsimg reads and writes the 2-D images that imfit works on.
// FITS puts NAXIS1 (x) first and starts at the bottom row, which is
// also how an emath.FloatGrid built from an imfit shape is laid out.
package fitsimg

import(
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/astrogo/fitsio"

	"github.com/abworrall/goimfit/pkg/emath"
	"github.com/abworrall/goimfit/pkg/imfit"
)

// SplitName separates a filename like "img.fits[1]" into the file, and
// the HDU asked for; -1 if none was.
func SplitName(name string) (string, int) {
	if !strings.HasSuffix(name, "]") {
		return name, -1
	}
	i := strings.LastIndex(name, "[")
	if i < 0 {
		return name, -1
	}
	hdu, err := strconv.Atoi(name[i+1:len(name)-1])
	if err != nil {
		return name, -1
	}
	return name[:i], hdu
}

// withImage finds the HDU named in the filename, or else the first 2-D
// image HDU in the file (the primary HDU of many files is just a header).
func withImage(name string, f func(fitsio.Image) error) error {
	filename, want := SplitName(name)
	r, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("open '%s': %v", filename, err)
	}
	defer r.Close()

	ff, err := fitsio.Open(r)
	if err != nil {
		return fmt.Errorf("fits '%s': %v", filename, err)
	}
	defer ff.Close()

	for i, hdu := range ff.HDUs() {
		img, ok := hdu.(fitsio.Image)
		if want >= 0 && i != want {
			continue
		}
		if !ok || len(hdu.Header().Axes()) != 2 {
			if want >= 0 {
				return fmt.Errorf("fits '%s': HDU %d is not a 2-D image", filename, i)
			}
			continue
		}
		if err := f(img); err != nil {
			return fmt.Errorf("fits '%s', HDU %d: %v", filename, i, err)
		}
		return nil
	}
	return fmt.Errorf("fits '%s': no 2-D image found", filename)
}

// Shape returns the image's (ny, nx).
func Shape(filename string) (imfit.Shape, error) {
	shape := imfit.Shape{}
	err := withImage(filename, func(img fitsio.Image) error {
		axes := img.Header().Axes()
		shape = imfit.Shape{NY: axes[1], NX: axes[0]}
		return nil
	})
	return shape, err
}

// Center is where a single object, filling the image, would sit.
func Center(filename string) (imfit.Position, error) {
	shape, err := Shape(filename)
	if err != nil {
		return imfit.Position{}, err
	}
	return shape.Center(), nil
}

// LoadGrid reads the pixel values as float64s, with BZERO/BSCALE
// applied. Any BITPIX is fine.
func LoadGrid(filename string) (emath.FloatGrid, error) {
	var fg emath.FloatGrid
	err := withImage(filename, func(img fitsio.Image) error {
		vals, err := readFloats(img)
		if err != nil {
			return err
		}
		g, err := emath.NewFloatGridFromValues(img.Header().Axes()[0], vals)
		fg = g
		return err
	})
	return fg, err
}

// readFloats reads the image into a slice of the Go type that matches
// its BITPIX, since fitsio won't convert, and then widens.
func readFloats(img fitsio.Image) ([]float64, error) {
	hdr := img.Header()
	n := 1
	for _, dim := range hdr.Axes() {
		n *= dim
	}
	out := make([]float64, n)

	switch hdr.Bitpix() {
	case 8:
		raw := make([]uint8, n)
		if err := img.Read(&raw); err != nil {
			return nil, err
		}
		for i, v := range raw { out[i] = float64(v) }
	case 16:
		raw := make([]int16, n)
		if err := img.Read(&raw); err != nil {
			return nil, err
		}
		for i, v := range raw { out[i] = float64(v) }
	case 32:
		raw := make([]int32, n)
		if err := img.Read(&raw); err != nil {
			return nil, err
		}
		for i, v := range raw { out[i] = float64(v) }
	case 64:
		raw := make([]int64, n)
		if err := img.Read(&raw); err != nil {
			return nil, err
		}
		for i, v := range raw { out[i] = float64(v) }
	case -32:
		raw := make([]float32, n)
		if err := img.Read(&raw); err != nil {
			return nil, err
		}
		for i, v := range raw { out[i] = float64(v) }
	case -64:
		if err := img.Read(&out); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("BITPIX %d not supported", hdr.Bitpix())
	}

	zero, scale := scaling(hdr)
	if zero != 0 || scale != 1 {
		for i := range out {
			out[i] = zero + scale*out[i]
		}
	}
	return out, nil
}

// scaling returns BZERO and BSCALE, defaulting to 0 and 1.
func scaling(hdr *fitsio.Header) (float64, float64) {
	zero, scale := 0.0, 1.0
	if v, ok := cardFloat(hdr, "BZERO"); ok {
		zero = v
	}
	if v, ok := cardFloat(hdr, "BSCALE"); ok && v != 0 {
		scale = v
	}
	return zero, scale
}

func cardFloat(hdr *fitsio.Header, name string) (float64, bool) {
	card := hdr.Get(name)
	if card == nil {
		return 0, false
	}
	switch v := card.Value.(type) {
	case float64: return v, true
	case float32: return float64(v), true
	case int:     return float64(v), true
	case int64:   return float64(v), true
	case int32:   return float64(v), true
	}
	return 0, false
}

// WriteGrid saves the grid as a single BITPIX=-64 image, e.g. a model
// rendered from fit results, to be opened alongside the data in ds9.
func WriteGrid(fg *emath.FloatGrid, filename string) error {
	w, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("open+w '%s': %v", filename, err)
	}
	defer w.Close()

	ff, err := fitsio.Create(w)
	if err != nil {
		return fmt.Errorf("fits '%s': %v", filename, err)
	}
	defer ff.Close()

	img := fitsio.NewImage(-64, []int{fg.Dx(), fg.Dy()})
	defer img.Close()

	vals := fg.Values()
	if err := img.Write(&vals); err != nil {
		return fmt.Errorf("fits '%s', write: %v", filename, err)
	}
	return ff.Write(img)
}
