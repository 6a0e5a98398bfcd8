package imfit

import(
	"fmt"

	"github.com/pkg/errors"
)

// A Param is a single named parameter of a functional form. It
// maintains vmin <= value <= vmax for whichever bounds are present,
// and is never both fixed and bounded. Every mutation is validated as
// a whole (value, vmin, vmax, fixed) tuple; a rejected mutation leaves
// the Param untouched.
type Param struct {
	Name       string

	value      float64
	vmin      *float64
	vmax      *float64
	fixed      bool

	// If set, bounds handed to the constructor or SetLim are offsets
	// from the value, not absolute limits.
	relative   bool
}

// NewParam builds a Param from a Spec. If relative is set and the spec
// has bounds, they are read as [value-Min, value+Max].
func NewParam(name string, s Spec, relative bool) (*Param, error) {
	p := &Param{Name: name, relative: relative}

	var vmin, vmax *float64
	if s.Bounds != nil && !s.Fixed {
		lo, hi := s.Bounds.Min, s.Bounds.Max
		if relative {
			lo, hi = s.Value - lo, s.Value + hi
		}
		vmin, vmax = &lo, &hi
	}

	if err := p.Update(s.Value, vmin, vmax, s.Fixed); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Param)Value() float64    { return p.value }
func (p *Param)Fixed() bool       { return p.fixed }
func (p *Param)Relative() bool    { return p.relative }
func (p *Param)Min() (float64, bool) { if p.vmin == nil { return 0, false }; return *p.vmin, true }
func (p *Param)Max() (float64, bool) { if p.vmax == nil { return 0, false }; return *p.vmax, true }

// Bounds returns the absolute bounds, or nil unless both are set.
func (p *Param)Bounds() *Bounds {
	if p.vmin == nil || p.vmax == nil {
		return nil
	}
	return &Bounds{*p.vmin, *p.vmax}
}

// Spec returns a spec that would rebuild this param (with absolute bounds).
func (p *Param)Spec() Spec {
	return Spec{Value: p.value, Bounds: p.Bounds(), Fixed: p.fixed}
}

// Update is the single entry point for mutation. Fixing a param drops
// its bounds.
func (p *Param)Update(value float64, vmin, vmax *float64, fixed bool) error {
	if fixed {
		vmin, vmax = nil, nil
	}
	if vmin != nil && *vmin > value {
		return errors.Wrapf(ErrBoundViolation, "%s: min %s > value %s", p.Name, formatFloat(*vmin), formatFloat(value))
	}
	if vmax != nil && *vmax < value {
		return errors.Wrapf(ErrBoundViolation, "%s: max %s < value %s", p.Name, formatFloat(*vmax), formatFloat(value))
	}

	p.value = value
	p.vmin = copyFloat(vmin)
	p.vmax = copyFloat(vmax)
	p.fixed = fixed
	return nil
}

func (p *Param)SetValue(v float64) error { return p.Update(v, p.vmin, p.vmax, p.fixed) }

// SetMin and SetMax refuse a fixed param, which has no bounds to set;
// unfix it first, or use SetLim.
func (p *Param)SetMin(v float64) error {
	if p.fixed {
		return errors.Wrapf(ErrBoundViolation, "%s: can't set min, param is fixed", p.Name)
	}
	return p.Update(p.value, &v, p.vmax, false)
}

func (p *Param)SetMax(v float64) error {
	if p.fixed {
		return errors.Wrapf(ErrBoundViolation, "%s: can't set max, param is fixed", p.Name)
	}
	return p.Update(p.value, p.vmin, &v, false)
}

func (p *Param)SetFixed(f bool) error    { return p.Update(p.value, p.vmin, p.vmax, f) }

// SetLim unfixes the param and applies a new pair of limits, which are
// offsets from the value if the param was built with relative limits.
func (p *Param)SetLim(lim Bounds) error {
	lo, hi := lim.Min, lim.Max
	if p.relative {
		lo, hi = p.value - lo, p.value + hi
	}
	return p.Update(p.value, &lo, &hi, false)
}

// ConfigLine renders the param in imfit's config grammar:
// "<name> <value> " followed by "fixed", or "<min>,<max>", or nothing.
func (p *Param)ConfigLine() string {
	line := fmt.Sprintf("%s %s ", p.Name, formatFloat(p.value))
	if p.fixed {
		line += FixedKeyword
	} else if p.vmin != nil && p.vmax != nil {
		line += fmt.Sprintf("%s,%s", formatFloat(*p.vmin), formatFloat(*p.vmax))
	}
	return line
}

func (p *Param)String() string { return p.ConfigLine() }

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
