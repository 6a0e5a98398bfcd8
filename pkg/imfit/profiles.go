package imfit

import(
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mathext"

	"github.com/abworrall/goimfit/pkg/emath"
)

// ParamValues are the numbers a profile is evaluated with: every one of
// the form's ParamNames, plus X0 and Y0.
type ParamValues map[string]float64

// A PixelFunc returns the surface brightness at a pixel position, in
// imfit coords (the first pixel is centred on (1,1)).
type PixelFunc func(x, y float64) float64

// A ProfileFunc does any per-component precomputation and returns the
// per-pixel evaluator.
type ProfileFunc func(p ParamValues) PixelFunc

// Shape is an image shape in numpy/FITS order: (rows, cols) == (ny, nx).
type Shape struct {
	NY int
	NX int
}

// Center is the middle of the image, in the (x,y) convention imfit uses
// for X0/Y0.
func (s Shape)Center() Position {
	return Position{X: float64(s.NX) / 2.0, Y: float64(s.NY) / 2.0}
}

// Render evaluates the form over a fresh grid of the given shape.
func (ff *FunctionalForm)Render(p ParamValues, shape Shape) (emath.FloatGrid, error) {
	if shape.NX <= 0 || shape.NY <= 0 {
		return emath.FloatGrid{}, errors.Wrapf(ErrInvalidSpec, "render %s: bad shape %dx%d", ff.Name, shape.NY, shape.NX)
	}
	for _, name := range append([]string{"X0", "Y0"}, ff.ParamNames...) {
		if _, exists := p[name]; !exists {
			return emath.FloatGrid{}, errors.Wrapf(ErrUnknownParam, "render %s: no value for %s", ff.Name, name)
		}
	}

	pixelFunc := ff.NewPixelFunc(p)
	g := emath.NewFloatGrid(shape.NX, shape.NY)
	for y:=0; y<shape.NY; y++ {
		for x:=0; x<shape.NX; x++ {
			g.Set(x, y, pixelFunc(float64(x+1), float64(y+1)))
		}
	}
	return g, nil
}

// ellipticalRadius returns a func mapping a pixel to its radius in the
// profile's frame. If c0 is non-zero, the generalized ("boxy" or
// "disky") ellipse is used.
func ellipticalRadius(p ParamValues) func(x, y float64) float64 {
	frame := emath.ProfileFrame(p["X0"], p["Y0"], p["PA"])
	q := 1.0 - p["ell"]
	c0 := p["c0"]

	return func(x, y float64) float64 {
		xp, yp := frame.Apply(x, y)
		yp /= q
		if c0 == 0 {
			return math.Hypot(xp, yp)
		}
		e := c0 + 2.0
		return math.Pow(math.Pow(math.Abs(xp), e) + math.Pow(math.Abs(yp), e), 1.0/e)
	}
}

// sersicBn solves gamma(2n, b_n) = Gamma(2n)/2, so that r_e encloses
// half the light.
func sersicBn(n float64) float64 {
	return mathext.GammaIncRegInv(2.0*n, 0.5)
}

func sersicProfile(p ParamValues) PixelFunc {
	radius := ellipticalRadius(p)
	n, ie, re := p["n"], p["I_e"], p["r_e"]
	bn := sersicBn(n)
	return func(x, y float64) float64 {
		return ie * math.Exp(-1 * bn * (math.Pow(radius(x, y)/re, 1.0/n) - 1.0))
	}
}

func exponentialProfile(p ParamValues) PixelFunc {
	radius := ellipticalRadius(p)
	i0, h := p["I_0"], p["h"]
	return func(x, y float64) float64 {
		return i0 * math.Exp(-1 * radius(x, y) / h)
	}
}

// I(r) = S I_0 e^(-r/h1) [1 + e^(alpha(r - r_b))]^((1/alpha)(1/h1 - 1/h2)),
// done in log space so large alpha doesn't overflow.
func brokenExponentialProfile(p ParamValues) PixelFunc {
	radius := ellipticalRadius(p)
	i0, h1, h2, rb, alpha := p["I_0"], p["h1"], p["h2"], p["r_break"], p["alpha"]
	exponent := (1.0/alpha) * (1.0/h1 - 1.0/h2)
	logS := -1 * exponent * emath.Softplus(-1 * alpha * rb)
	return func(x, y float64) float64 {
		r := radius(x, y)
		return i0 * math.Exp(logS - r/h1 + exponent * emath.Softplus(alpha * (r - rb)))
	}
}

// Edge-on disk, no inclination: I(r,z) = 2 h L_0 (r/h) K1(r/h) sech^(2/n)(n z / 2 z_0)
func edgeOnDiskProfile(p ParamValues) PixelFunc {
	frame := emath.ProfileFrame(p["X0"], p["Y0"], p["PA"])
	l0, h, n, z0 := p["L_0"], p["h"], p["n"], p["z_0"]
	mu0 := 2.0 * h * l0
	return func(x, y float64) float64 {
		r, z := frame.Apply(x, y)
		s := math.Abs(r) / h
		radial := 1.0 // lim s->0 of s K1(s)
		if s > 1e-8 {
			radial = s * emath.BesselK1(s)
		}
		return mu0 * radial * math.Pow(emath.Sech(n*z / (2.0*z0)), 2.0/n)
	}
}

func gaussianProfile(p ParamValues) PixelFunc {
	radius := ellipticalRadius(p)
	i0, sigma := p["I_0"], p["sigma"]
	return func(x, y float64) float64 {
		r := radius(x, y)
		return i0 * math.Exp(-1 * r*r / (2.0 * sigma*sigma))
	}
}

func gaussianRingProfile(p ParamValues) PixelFunc {
	radius := ellipticalRadius(p)
	a, rRing, sigma := p["A"], p["R_ring"], p["sigma_r"]
	return func(x, y float64) float64 {
		dr := radius(x, y) - rRing
		return a * math.Exp(-1 * dr*dr / (2.0 * sigma*sigma))
	}
}

func flatSkyProfile(p ParamValues) PixelFunc {
	sky := p["I_sky"]
	return func(x, y float64) float64 { return sky }
}

func moffatProfile(p ParamValues) PixelFunc {
	radius := ellipticalRadius(p)
	i0, fwhm, beta := p["I_0"], p["fwhm"], p["beta"]
	alpha := fwhm / (2.0 * math.Sqrt(math.Pow(2.0, 1.0/beta) - 1.0))
	return func(x, y float64) float64 {
		r := radius(x, y) / alpha
		return i0 / math.Pow(1.0 + r*r, beta)
	}
}

// Elson (1999) modified King profile; zero beyond the tidal radius.
func modifiedKingProfile(p ParamValues) PixelFunc {
	radius := ellipticalRadius(p)
	i0, rc, rt, alpha := p["I_0"], p["r_c"], p["r_t"], p["alpha"]
	term := func(r float64) float64 { return 1.0 / math.Pow(1.0 + (r/rc)*(r/rc), 1.0/alpha) }
	tidal := term(rt)
	return func(x, y float64) float64 {
		r := radius(x, y)
		if r >= rt {
			return 0
		}
		return i0 * math.Pow(term(r) - tidal, alpha)
	}
}

// Without a PSF to scale, a point source puts all its flux in the
// pixel that contains the centre.
func pointSourceProfile(p ParamValues) PixelFunc {
	px, py := math.Round(p["X0"]), math.Round(p["Y0"])
	itot := p["I_tot"]
	return func(x, y float64) float64 {
		if x == px && y == py {
			return itot
		}
		return 0
	}
}
