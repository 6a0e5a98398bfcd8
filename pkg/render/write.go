package render

import(
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/codec/rgbe"
	"golang.org/x/image/draw"
)

func WritePNG(img image.Image, filename string) error {
	if writer, err := os.Create(filename); err != nil {
		return fmt.Errorf("open+w '%s': %v", filename, err)
	} else {
		defer writer.Close()
		return png.Encode(writer, img)
	}
}

// WriteHDR outputs a Radiance RGBE image, which keeps the full dynamic
// range of a model; load it into any HDR viewer.
func WriteHDR(img hdr.Image, filename string) error {
	if writer, err := os.Create(filename); err != nil {
		return fmt.Errorf("open+w '%s': %v", filename, err)
	} else {
		defer writer.Close()
		return rgbe.Encode(writer, img)
	}
}

// Scale blows an image up by an integer factor, without smoothing, so
// that individual pixels of small cutouts stay visible.
func Scale(img image.Image, factor int) image.Image {
	if factor <= 1 {
		return img
	}
	b := img.Bounds()
	dst := image.NewRGBA64(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// SideBySide lays the images out left to right, top aligned.
func SideBySide(imgs ...image.Image) image.Image {
	w, h := 0, 0
	for _, img := range imgs {
		w += img.Bounds().Dx()
		if img.Bounds().Dy() > h {
			h = img.Bounds().Dy()
		}
	}

	dst := image.NewRGBA64(image.Rect(0, 0, w, h))
	x := 0
	for _, img := range imgs {
		r := image.Rect(x, 0, x+img.Bounds().Dx(), img.Bounds().Dy())
		draw.Draw(dst, r, img, img.Bounds().Min, draw.Src)
		x += img.Bounds().Dx()
	}
	return dst
}
