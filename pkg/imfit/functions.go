package imfit

import(
	"sort"

	"github.com/pkg/errors"
)

// A FunctionalForm is one of imfit's named light profiles: the ordered
// list of parameter names its config block expects, default specs for
// each of them, and an evaluator for the profile.
type FunctionalForm struct {
	Name        string
	ParamNames  []string         // Order matters; imfit reads parameters positionally
	Defaults    map[string]Spec
	NewPixelFunc ProfileFunc
}

// DefaultSpecs returns a fresh copy of the defaults, safe to mutate.
func (ff *FunctionalForm)DefaultSpecs() map[string]Spec {
	out := make(map[string]Spec, len(ff.Defaults))
	for k, v := range ff.Defaults {
		if v.Bounds != nil {
			b := *v.Bounds
			v.Bounds = &b
		}
		out[k] = v
	}
	return out
}

func (ff *FunctionalForm)HasParam(name string) bool {
	for _, n := range ff.ParamNames {
		if n == name {
			return true
		}
	}
	return false
}

// Common defaults
var(
	defPA    = Bounded(20.0, 0, 360)
	defEll   = Bounded(0.2, 0, 0.99)
	defI     = Bounded(0.05, 0, 1000)
	defScale = Bounded(20.0, 0, 5000)
)

// The registry of forms we know how to configure and render. It is
// fixed at startup; add a form by adding an entry here.
var functions = map[string]*FunctionalForm{
	"Sersic": {
		Name: "Sersic",
		ParamNames: []string{"PA", "ell", "n", "I_e", "r_e"},
		Defaults: map[string]Spec{
			"PA": defPA, "ell": defEll,
			"n":   Bounded(1.0, 0.01, 5),
			"I_e": defI,
			"r_e": defScale,
		},
		NewPixelFunc: sersicProfile,
	},
	"Sersic_GenEllipse": {
		Name: "Sersic_GenEllipse",
		ParamNames: []string{"PA", "ell", "c0", "n", "I_e", "r_e"},
		Defaults: map[string]Spec{
			"PA": defPA, "ell": defEll,
			"c0":  Bounded(0.0, -0.2, 0.2),
			"n":   Bounded(1.0, 0.01, 5),
			"I_e": defI,
			"r_e": defScale,
		},
		NewPixelFunc: sersicProfile,
	},
	"Exponential": {
		Name: "Exponential",
		ParamNames: []string{"PA", "ell", "I_0", "h"},
		Defaults: map[string]Spec{
			"PA": defPA, "ell": defEll,
			"I_0": defI,
			"h":   defScale,
		},
		NewPixelFunc: exponentialProfile,
	},
	"BrokenExponential": {
		Name: "BrokenExponential",
		ParamNames: []string{"PA", "ell", "I_0", "h1", "h2", "r_break", "alpha"},
		Defaults: map[string]Spec{
			"PA": defPA, "ell": defEll,
			"I_0":     defI,
			"h1":      Bounded(4.0, 0, 5000),
			"h2":      Bounded(8.0, 0, 5000),
			"r_break": defScale,
			"alpha":   Bounded(1.0, 0.5, 5.0),
		},
		NewPixelFunc: brokenExponentialProfile,
	},
	"EdgeOnDisk": {
		Name: "EdgeOnDisk",
		ParamNames: []string{"PA", "L_0", "h", "n", "z_0"},
		Defaults: map[string]Spec{
			"PA":  defPA,
			"L_0": defI,
			"h":   defScale,
			"n":   Bounded(2.0, 1, 100),
			"z_0": Bounded(2.0, 1, 100),
		},
		NewPixelFunc: edgeOnDiskProfile,
	},
	"Gaussian": {
		Name: "Gaussian",
		ParamNames: []string{"PA", "ell", "I_0", "sigma"},
		Defaults: map[string]Spec{
			"PA": defPA, "ell": defEll,
			"I_0":   Bounded(1.0, 0.01, 5),
			"sigma": Bounded(0.1, 0.01, 1),
		},
		NewPixelFunc: gaussianProfile,
	},
	"GaussianRing": {
		Name: "GaussianRing",
		ParamNames: []string{"PA", "ell", "A", "R_ring", "sigma_r"},
		Defaults: map[string]Spec{
			"PA": defPA, "ell": defEll,
			"A":       Bounded(1.0, 0.01, 5),
			"R_ring":  Bounded(2.0, 0.1, 10),
			"sigma_r": Bounded(1.0, 0.2, 5.0),
		},
		NewPixelFunc: gaussianRingProfile,
	},
	"FlatSky": {
		Name: "FlatSky",
		ParamNames: []string{"I_sky"},
		Defaults: map[string]Spec{
			"I_sky": Bounded(0.0, -5, 5),
		},
		NewPixelFunc: flatSkyProfile,
	},
	"Moffat": {
		Name: "Moffat",
		ParamNames: []string{"PA", "ell", "I_0", "fwhm", "beta"},
		Defaults: map[string]Spec{
			"PA": defPA, "ell": defEll,
			"I_0":  Bounded(1.0, 0.01, 5),
			"fwhm": Bounded(0.2, 0.01, 10),
			"beta": Bounded(2.0, 0.1, 5),
		},
		NewPixelFunc: moffatProfile,
	},
	"ModifiedKing": {
		Name: "ModifiedKing",
		ParamNames: []string{"PA", "ell", "I_0", "r_c", "r_t", "alpha"},
		Defaults: map[string]Spec{
			"PA": defPA, "ell": defEll,
			"I_0":   Bounded(1.0, 0.01, 5),
			"r_c":   Bounded(0.2, 0.01, 10),
			"r_t":   Bounded(2.0, 0.1, 20),
			"alpha": Bounded(2.0, 1.0, 5.0),
		},
		NewPixelFunc: modifiedKingProfile,
	},
	"PointSource": {
		Name: "PointSource",
		ParamNames: []string{"I_tot"},
		Defaults: map[string]Spec{
			"I_tot": Bounded(1.0, 0.01, 5),
		},
		NewPixelFunc: pointSourceProfile,
	},
}

// LookupFunction returns the registered form with this name.
func LookupFunction(name string) (*FunctionalForm, error) {
	if ff, exists := functions[name]; exists {
		return ff, nil
	}
	return nil, errors.Wrapf(ErrUnknownFunction, "%q (have %v)", name, FunctionNames())
}

// FunctionNames lists the registered forms, sorted.
func FunctionNames() []string {
	names := []string{}
	for name := range functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
