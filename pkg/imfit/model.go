package imfit

import(
	"fmt"

	"github.com/pkg/errors"
)

const(
	// DefaultCenterDelta is how far (in pixels) a model component's
	// center may wander from where it was asked to start.
	DefaultCenterDelta = 30.0

	// FixedCenter as a delta pins the center where it was asked to be.
	FixedCenter = 0.0

	// DefaultObjectDelta is the ± window for objects in a ConfigTree,
	// and for SersicModel.
	DefaultObjectDelta = 50.0
)

// CenterSpecFor expands a position into X0/Y0 specs: pos ± delta, with
// the lower bound kept at or above pixel 1 (but never above pos). A
// delta of FixedCenter (or less) fixes the center instead.
func CenterSpecFor(pos Position, delta float64) CenterSpec {
	if delta <= FixedCenter {
		return CenterSpec{X: Fixed(pos.X), Y: Fixed(pos.Y)}
	}

	axis := func(v float64) Spec {
		lo := v - delta
		if lo < 1 { lo = 1 }
		if lo > v { lo = v }
		return Bounded(v, lo, v + delta)
	}
	return CenterSpec{X: axis(pos.X), Y: axis(pos.Y)}
}

// A ComponentRequest asks for one component of a model. If Center is
// nil, the component shares the center of the component before it.
type ComponentRequest struct {
	Function string
	Params   map[string]Spec
	Center  *Position
}

// A Model is an ordered list of components, to be fitted together.
// The order is the order they're written into the config file, and
// the order the results come back in.
type Model struct {
	components []*Component
}

// NewModel builds one component per request, in order. The first
// request must have a Center; there's nothing before it to share.
// Centers are expanded by centerDelta (see CenterSpecFor). If relative
// is set, every other param's bounds are read as offsets from its value.
func NewModel(reqs []ComponentRequest, centerDelta float64, relative bool) (*Model, error) {
	m := &Model{}
	for i, req := range reqs {
		c, err := NewComponent(req.Function, req.Params, nil, relative)
		if err != nil {
			return nil, errors.Wrapf(err, "component %d", i)
		}
		if req.Center == nil && i == 0 {
			return nil, errors.Wrapf(ErrInvalidSpec, "%s (%s): the first component needs a center", CompKey(i), req.Function)
		}
		if req.Center != nil {
			// The window from CenterSpecFor is already absolute
			if err := c.setCenter(CenterSpecFor(*req.Center, centerDelta), false); err != nil {
				return nil, errors.Wrapf(err, "component %d", i)
			}
		}
		m.components = append(m.components, c)
	}
	return m, nil
}

// SersicModel is the common single-Sersic case: the overrides are
// merged over the Sersic defaults, and unless they include both X0 and
// Y0, the galaxy is centered at pos ± delta.
func SersicModel(overrides map[string]Spec, pos Position, delta float64) (*Model, error) {
	params := map[string]Spec{}
	for k, v := range overrides {
		if k != "X0" && k != "Y0" {
			params[k] = v
		}
	}

	center := CenterSpecFor(pos, delta)
	x0, hasX := overrides["X0"]
	y0, hasY := overrides["Y0"]
	if hasX && hasY {
		center = CenterSpec{X: x0, Y: y0}
	}

	c, err := NewComponent("Sersic", params, &center, false)
	if err != nil {
		return nil, err
	}
	return &Model{components: []*Component{c}}, nil
}

func (m *Model)Len() int { return len(m.components) }

// Components returns the components in order. The slice is a copy, the
// components are not.
func (m *Model)Components() []*Component {
	return append([]*Component{}, m.components...)
}

// Get returns the i'th component (0-based; "comp_1" is Get(0)).
func (m *Model)Get(i int) (*Component, error) {
	if i < 0 || i >= len(m.components) {
		return nil, errors.Wrapf(ErrNoSuchComponent, "component %d (model has %d)", i, len(m.components))
	}
	return m.components[i], nil
}

func (m *Model)Set(i int, c *Component) error {
	if _, err := m.Get(i); err != nil {
		return err
	}
	m.components[i] = c
	return nil
}

func (m *Model)Add(c *Component) {
	m.components = append(m.components, c)
}

// SetCompParam replaces a param on the i'th component.
func (m *Model)SetCompParam(i int, name string, s Spec) error {
	c, err := m.Get(i)
	if err != nil {
		return err
	}
	return c.SetParam(name, s)
}

// NumCenters counts the components that start a new object (i.e.
// carry their own X0/Y0).
func (m *Model)NumCenters() int {
	n := 0
	for _, c := range m.components {
		if c.HasCenter() {
			n++
		}
	}
	return n
}

func (m *Model)String() string {
	str := "Model[\n"
	for i, c := range m.components {
		str += fmt.Sprintf("  %s: %s\n", CompKey(i), c)
	}
	return str + "]\n"
}

// CompKey is the conventional name for the i'th (0-based) component.
func CompKey(i int) string { return fmt.Sprintf("comp_%d", i+1) }
