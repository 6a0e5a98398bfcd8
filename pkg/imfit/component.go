package imfit

import(
	"fmt"

	"github.com/pkg/errors"
)

// A Position is an (x,y) location in imfit pixel coords.
type Position struct {
	X float64
	Y float64
}

// A CenterSpec requests an X0/Y0 pair for a component.
type CenterSpec struct {
	X Spec
	Y Spec
}

// A Component is one functional form, instantiated with a Param for
// every one of the form's parameter names. X0 and Y0 are optional; a
// component without them shares the center of the component before it.
type Component struct {
	Form      *FunctionalForm
	params    map[string]*Param
	X0       *Param
	Y0       *Param

	relative  bool
}

// NewComponent merges the overrides over the form's defaults, and
// builds the Params. Overrides for names the form doesn't have are an
// error (X0/Y0 belong in center, not in overrides).
func NewComponent(name string, overrides map[string]Spec, center *CenterSpec, relative bool) (*Component, error) {
	ff, err := LookupFunction(name)
	if err != nil {
		return nil, err
	}

	specs := ff.DefaultSpecs()
	for k, v := range overrides {
		if !ff.HasParam(k) {
			return nil, errors.Wrapf(ErrUnknownParam, "%s is not a param of %s", k, name)
		}
		specs[k] = v
	}

	c := &Component{Form: ff, params: map[string]*Param{}, relative: relative}
	for _, pname := range ff.ParamNames {
		p, err := NewParam(pname, specs[pname], relative)
		if err != nil {
			return nil, errors.Wrapf(err, "%s", name)
		}
		c.params[pname] = p
	}

	if center != nil {
		if err := c.SetCenter(*center); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func (c *Component)Name() string         { return c.Form.Name }
func (c *Component)ParamNames() []string { return c.Form.ParamNames }
func (c *Component)HasCenter() bool      { return c.X0 != nil && c.Y0 != nil }

// Param returns the named param, including X0/Y0 (which may be nil).
func (c *Component)Param(name string) (*Param, bool) {
	switch name {
	case "X0": return c.X0, c.X0 != nil
	case "Y0": return c.Y0, c.Y0 != nil
	}
	p, exists := c.params[name]
	return p, exists
}

// SetParam replaces the named param with a new one built from the spec.
func (c *Component)SetParam(name string, s Spec) error {
	if name != "X0" && name != "Y0" && !c.Form.HasParam(name) {
		return errors.Wrapf(ErrUnknownParam, "%s is not a param of %s", name, c.Name())
	}

	p, err := NewParam(name, s, c.relative)
	if err != nil {
		return err
	}

	switch name {
	case "X0": c.X0 = p
	case "Y0": c.Y0 = p
	default:   c.params[name] = p
	}
	return nil
}

// SetCenter replaces X0/Y0. Like any other param, their bounds are
// offsets if the component has relative limits.
func (c *Component)SetCenter(center CenterSpec) error {
	return c.setCenter(center, c.relative)
}

func (c *Component)setCenter(center CenterSpec, relative bool) error {
	x0, err := NewParam("X0", center.X, relative)
	if err != nil {
		return errors.Wrapf(err, "%s center", c.Name())
	}
	y0, err := NewParam("Y0", center.Y, relative)
	if err != nil {
		return errors.Wrapf(err, "%s center", c.Name())
	}
	c.X0, c.Y0 = x0, y0
	return nil
}

// ClearCenter drops X0/Y0, so the component doesn't emit its own center.
func (c *Component)ClearCenter() {
	c.X0, c.Y0 = nil, nil
}

// ConfigLines are the component's lines of config text: X0/Y0 if it
// has them, then the FUNCTION marker, then one line per param in the
// form's order.
func (c *Component)ConfigLines() []string {
	lines := []string{}
	if c.HasCenter() {
		lines = append(lines, c.X0.ConfigLine(), c.Y0.ConfigLine())
	}
	lines = append(lines, "FUNCTION " + c.Name())
	for _, name := range c.ParamNames() {
		lines = append(lines, c.params[name].ConfigLine())
	}
	return lines
}

// Values returns the current value of every param, plus X0/Y0 when set.
func (c *Component)Values() ParamValues {
	pv := ParamValues{}
	for name, p := range c.params {
		pv[name] = p.Value()
	}
	if c.HasCenter() {
		pv["X0"], pv["Y0"] = c.X0.Value(), c.Y0.Value()
	}
	return pv
}

func (c *Component)String() string {
	return fmt.Sprintf("Component[%s, %d params]", c.Name(), len(c.params))
}
