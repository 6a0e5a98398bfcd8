package imfit

import(
	"fmt"

	"github.com/pkg/errors"
)

// A ConfigTree describes a fit of several objects at once. Each object
// has a center, shared by all of its components. Objects and their
// components are indexed from 0, in the order they were added.
type ConfigTree struct {
	objects []*ObjectConfig
}

// An ObjectConfig is one object (e.g. a galaxy) in a ConfigTree.
type ObjectConfig struct {
	Index       int
	X0         *Param
	Y0         *Param
	Components []*Component  // none of these carry their own center
}

func (oc *ObjectConfig)NumComponents() int { return len(oc.Components) }

func NewConfigTree() *ConfigTree {
	return &ConfigTree{}
}

func (t *ConfigTree)NumObjects() int { return len(t.objects) }

func (t *ConfigTree)Object(i int) (*ObjectConfig, error) {
	if i < 0 || i >= len(t.objects) {
		return nil, errors.Wrapf(ErrNoSuchObject, "no object #%d in model (have %d)", i, len(t.objects))
	}
	return t.objects[i], nil
}

func (t *ConfigTree)Objects() []*ObjectConfig {
	return append([]*ObjectConfig{}, t.objects...)
}

// AddObject appends an object centered at pos ± delta, and returns its
// index.
func (t *ConfigTree)AddObject(pos Position, delta float64) (int, error) {
	cs := CenterSpecFor(pos, delta)
	return t.AddObjectSpec(cs)
}

// AddObjectAtCenter puts the new object in the middle of an image.
func (t *ConfigTree)AddObjectAtCenter(shape Shape, delta float64) (int, error) {
	return t.AddObject(shape.Center(), delta)
}

// AddObjectSpec appends an object with explicit X0/Y0 specs.
func (t *ConfigTree)AddObjectSpec(cs CenterSpec) (int, error) {
	x0, err := NewParam("X0", cs.X, false)
	if err != nil {
		return -1, errors.Wrapf(err, "object #%d", len(t.objects))
	}
	y0, err := NewParam("Y0", cs.Y, false)
	if err != nil {
		return -1, errors.Wrapf(err, "object #%d", len(t.objects))
	}

	oc := &ObjectConfig{Index: len(t.objects), X0: x0, Y0: y0}
	t.objects = append(t.objects, oc)
	return oc.Index, nil
}

// AddComponent adds a component to an existing object. The overrides
// are merged over the form's defaults.
func (t *ConfigTree)AddComponent(obj int, name string, overrides map[string]Spec) error {
	if _, err := LookupFunction(name); err != nil {
		return err
	}
	oc, err := t.Object(obj)
	if err != nil {
		return err
	}

	c, err := NewComponent(name, overrides, nil, false)
	if err != nil {
		return errors.Wrapf(err, "object #%d", obj)
	}
	oc.Components = append(oc.Components, c)
	return nil
}

func (t *ConfigTree)String() string {
	str := fmt.Sprintf("ConfigTree[%d objects\n", len(t.objects))
	for _, oc := range t.objects {
		str += fmt.Sprintf("  #%d (%s, %s): %d components\n", oc.Index,
			formatFloat(oc.X0.Value()), formatFloat(oc.Y0.Value()), len(oc.Components))
	}
	return str + "]\n"
}
