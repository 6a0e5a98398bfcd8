package runner

import "context"

// A Masker builds a mask for an image, e.g. by detecting and flagging
// neighbouring sources, and returns the mask's filename. Fitter treats
// the mask as opaque; it just hands the filename to imfit.
type Masker interface {
	Mask(ctx context.Context, image string) (string, error)
}

// MaskFile is a Masker for a mask that already exists.
type MaskFile string

func (mf MaskFile)Mask(ctx context.Context, image string) (string, error) {
	return string(mf), nil
}
