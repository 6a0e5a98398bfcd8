package imfit

import(
	"fmt"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/abworrall/goimfit/pkg/emath"
)

// ErrSuffix marks an uncertainty in a component's results.
const ErrSuffix = "_err"

// LatestComponent, passed as a component index, means "the component
// most recently added to this object".
const LatestComponent = -1

// A ComponentResult holds the best-fit values recovered for one
// component, keyed by param name; uncertainties are keyed by name+"_err".
// X0/Y0 are seeded from the object the component belongs to.
type ComponentResult struct {
	Function  string
	names   []string            // params in the order they were read, without X0/Y0
	values    map[string]float64
}

func newComponentResult(function string) *ComponentResult {
	return &ComponentResult{Function: function, values: map[string]float64{}}
}

// ParamNames lists the params read for the component, in order, not
// including the X0/Y0 inherited from its object.
func (cr *ComponentResult)ParamNames() []string { return append([]string{}, cr.names...) }

func (cr *ComponentResult)Get(name string) (float64, bool) {
	v, exists := cr.values[name]
	return v, exists
}

func (cr *ComponentResult)Err(name string) (float64, bool) {
	return cr.Get(name + ErrSuffix)
}

// Values returns the best-fit values (no uncertainties), as a profile
// evaluator wants them.
func (cr *ComponentResult)Values() ParamValues {
	pv := ParamValues{}
	for _, name := range append([]string{"X0", "Y0"}, cr.names...) {
		if v, exists := cr.values[name]; exists {
			pv[name] = v
		}
	}
	return pv
}

// Keys lists every key, values and uncertainties, in reading order.
func (cr *ComponentResult)Keys() []string {
	keys := []string{}
	for _, name := range append([]string{"X0", "Y0"}, cr.names...) {
		if _, exists := cr.values[name]; exists {
			keys = append(keys, name)
		}
		if _, exists := cr.values[name+ErrSuffix]; exists {
			keys = append(keys, name+ErrSuffix)
		}
	}
	return keys
}

func (cr *ComponentResult)set(name string, value float64, err *float64) {
	if _, exists := cr.values[name]; !exists && name != "X0" && name != "Y0" {
		cr.names = append(cr.names, name)
	}
	cr.values[name] = value
	delete(cr.values, name+ErrSuffix)
	if err != nil {
		cr.values[name+ErrSuffix] = *err
	}
}

// Render evaluates the component's profile over a fresh grid.
func (cr *ComponentResult)Render(shape Shape) (emath.FloatGrid, error) {
	ff, err := LookupFunction(cr.Function)
	if err != nil {
		return emath.FloatGrid{}, err
	}
	return ff.Render(cr.Values(), shape)
}

func (cr *ComponentResult)asMapSlice() yaml.MapSlice {
	ms := yaml.MapSlice{{Key: "function", Value: cr.Function}}
	for _, k := range cr.Keys() {
		ms = append(ms, yaml.MapItem{Key: k, Value: cr.values[k]})
	}
	return ms
}

// An ObjectResult is one object's recovered center, and its components.
type ObjectResult struct {
	X0          float64
	X0Err      *float64
	Y0          float64
	Y0Err      *float64
	Components []*ComponentResult
}

// A ResultTree is the fitted counterpart of a ConfigTree, built up by
// the parser. ReducedChiSq is nil if imfit reported "none".
type ResultTree struct {
	Objects      []*ObjectResult
	ReducedChiSq *float64
}

func NewResultTree() *ResultTree { return &ResultTree{} }

func (rt *ResultTree)NumObjects() int { return len(rt.Objects) }

func (rt *ResultTree)Object(i int) (*ObjectResult, error) {
	if i < 0 || i >= len(rt.Objects) {
		return nil, errors.Wrapf(ErrNoSuchObject, "no object #%d in results (have %d)", i, len(rt.Objects))
	}
	return rt.Objects[i], nil
}

// AddObject appends an object at the fitted center, and returns its index.
func (rt *ResultTree)AddObject(x0 float64, x0err *float64, y0 float64, y0err *float64) int {
	rt.Objects = append(rt.Objects, &ObjectResult{
		X0: x0, X0Err: copyFloat(x0err),
		Y0: y0, Y0Err: copyFloat(y0err),
	})
	return len(rt.Objects) - 1
}

// AddFunction starts a new component on an object, seeded with the
// object's center.
func (rt *ResultTree)AddFunction(obj int, function string) error {
	or, err := rt.Object(obj)
	if err != nil {
		return err
	}
	cr := newComponentResult(function)
	cr.set("X0", or.X0, or.X0Err)
	cr.set("Y0", or.Y0, or.Y0Err)
	or.Components = append(or.Components, cr)
	return nil
}

// AddParameter records a value (and its uncertainty, if it has one) on
// a component. Use LatestComponent to target the newest component.
func (rt *ResultTree)AddParameter(obj, comp int, name string, value float64, err *float64) error {
	or, e := rt.Object(obj)
	if e != nil {
		return e
	}
	if comp == LatestComponent {
		comp = len(or.Components) - 1
	}
	if comp < 0 || comp >= len(or.Components) {
		return errors.Wrapf(ErrNoSuchComponent, "no component #%d on object #%d (have %d)", comp, obj, len(or.Components))
	}
	or.Components[comp].set(name, value, err)
	return nil
}

// Components flattens the tree, in order.
func (rt *ResultTree)Components() []*ComponentResult {
	out := []*ComponentResult{}
	for _, or := range rt.Objects {
		out = append(out, or.Components...)
	}
	return out
}

// Array renders every component of every object over a grid of the
// given shape, and sums them. Each call builds its own grids.
func (rt *ResultTree)Array(shape Shape) (emath.FloatGrid, error) {
	if shape.NX <= 0 || shape.NY <= 0 {
		return emath.FloatGrid{}, errors.Wrapf(ErrInvalidSpec, "array: bad shape %dx%d", shape.NY, shape.NX)
	}

	acc := emath.NewFloatGrid(shape.NX, shape.NY)
	for i, or := range rt.Objects {
		for j, cr := range or.Components {
			g, err := cr.Render(shape)
			if err != nil {
				return emath.FloatGrid{}, errors.Wrapf(err, "object #%d, component #%d", i, j)
			}
			if err := acc.Add(&g); err != nil {
				return emath.FloatGrid{}, err
			}
		}
	}
	return acc, nil
}

// AsYaml dumps the tree, keeping the reading order.
func (rt *ResultTree)AsYaml() (string, error) {
	objs := []yaml.MapSlice{}
	for _, or := range rt.Objects {
		comps := []yaml.MapSlice{}
		for _, cr := range or.Components {
			comps = append(comps, cr.asMapSlice())
		}
		objs = append(objs, yaml.MapSlice{
			{Key: "X0", Value: or.X0}, {Key: "Y0", Value: or.Y0},
			{Key: "components", Value: comps},
		})
	}

	doc := yaml.MapSlice{{Key: "reduced_chisq", Value: rt.ReducedChiSq}, {Key: "objects", Value: objs}}
	b, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal results: %v", err)
	}
	return string(b), nil
}
