package imfit

import(
	"fmt"
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

/* Example model description ...

centerdelta: 30
relativelimits: false
components:
  - function: Sersic
    center: [100, 120]
    params:
      n: [1.0, fixed]
      r_e: [20, 5, 50]
  - function: FlatSky

Example tree description ...

objects:
  - position: [50, 60]
    delta: 50
    components:
      - function: Sersic
        params:
          PA: [10, 0, 180]
      - function: Exponential
  - center: true      # middle of the image; needs imageshape
    components:
      - function: PointSource
imageshape: [200, 300]

*/

// A Description is a YAML document that describes either a Model
// (Components), or a ConfigTree (Objects). Not both.
type Description struct {
	CenterDelta    *float64               `yaml:"centerdelta"`
	RelativeLimits bool                   `yaml:"relativelimits"`
	Components     []ComponentDescription `yaml:"components"`

	Objects        []ObjectDescription    `yaml:"objects"`
	ImageShape     []int                  `yaml:"imageshape"` // [ny, nx]
}

type ComponentDescription struct {
	Function string                 `yaml:"function"`
	Center   []float64              `yaml:"center"`
	Params   map[string]interface{} `yaml:"params"`
}

type ObjectDescription struct {
	Position   []float64              `yaml:"position"`
	Center     bool                   `yaml:"center"`
	Delta     *float64                `yaml:"delta"`
	Components []ComponentDescription `yaml:"components"`
}

func (d Description)IsTree() bool { return len(d.Objects) > 0 }

func ParseDescription(b []byte) (Description, error) {
	d := Description{}
	if err := yaml.Unmarshal(b, &d); err != nil {
		return d, errors.Wrapf(ErrInvalidSpec, "description yaml: %v", err)
	}
	if d.IsTree() && len(d.Components) > 0 {
		return d, errors.Wrapf(ErrInvalidSpec, "description has both components and objects")
	}
	if !d.IsTree() && len(d.Components) == 0 {
		return d, errors.Wrapf(ErrInvalidSpec, "description has no components or objects")
	}
	return d, nil
}

func LoadDescription(filename string) (Description, error) {
	contents, err := ioutil.ReadFile(filename)
	if err != nil {
		return Description{}, fmt.Errorf("description read %s: %v", filename, err)
	}
	return ParseDescription(contents)
}

// Shape returns the image shape, if the description has one.
func (d Description)Shape() (Shape, bool) {
	if len(d.ImageShape) != 2 {
		return Shape{}, false
	}
	return Shape{NY: d.ImageShape[0], NX: d.ImageShape[1]}, true
}

// Model builds the Model a component description asks for.
func (d Description)Model() (*Model, error) {
	if d.IsTree() {
		return nil, errors.Wrapf(ErrInvalidSpec, "description is a tree of %d objects, not a model", len(d.Objects))
	}

	delta := DefaultCenterDelta
	if d.CenterDelta != nil {
		delta = *d.CenterDelta
	}

	reqs := []ComponentRequest{}
	for i, cd := range d.Components {
		req, err := cd.request()
		if err != nil {
			return nil, errors.Wrapf(err, "%s", CompKey(i))
		}
		reqs = append(reqs, req)
	}
	return NewModel(reqs, delta, d.RelativeLimits)
}

// Tree builds the ConfigTree an object description asks for. Objects
// asking for the image center need ImageShape, or a shape passed in.
func (d Description)Tree(shape *Shape) (*ConfigTree, error) {
	if !d.IsTree() {
		return nil, errors.Wrapf(ErrInvalidSpec, "description is a model, not a tree")
	}
	if s, ok := d.Shape(); ok && shape == nil {
		shape = &s
	}

	t := NewConfigTree()
	for i, od := range d.Objects {
		delta := DefaultObjectDelta
		if od.Delta != nil {
			delta = *od.Delta
		}

		var obj int
		var err error
		switch {
		case od.Center:
			if shape == nil {
				return nil, errors.Wrapf(ErrInvalidSpec, "object #%d: centered, but no image shape", i)
			}
			obj, err = t.AddObjectAtCenter(*shape, delta)
		case len(od.Position) == 2:
			obj, err = t.AddObject(Position{od.Position[0], od.Position[1]}, delta)
		default:
			return nil, errors.Wrapf(ErrInvalidSpec, "object #%d: position must be [x, y]", i)
		}
		if err != nil {
			return nil, err
		}

		for j, cd := range od.Components {
			if cd.Center != nil {
				return nil, errors.Wrapf(ErrInvalidSpec, "object #%d, component #%d: components share the object's center", i, j)
			}
			specs, err := ParseSpecs(cd.Params)
			if err != nil {
				return nil, errors.Wrapf(err, "object #%d, component #%d", i, j)
			}
			if err := t.AddComponent(obj, cd.Function, specs); err != nil {
				return nil, errors.Wrapf(err, "component #%d", j)
			}
		}
	}
	return t, nil
}

func (cd ComponentDescription)request() (ComponentRequest, error) {
	specs, err := ParseSpecs(cd.Params)
	if err != nil {
		return ComponentRequest{}, err
	}
	req := ComponentRequest{Function: cd.Function, Params: specs}

	switch len(cd.Center) {
	case 0:
	case 2:
		req.Center = &Position{cd.Center[0], cd.Center[1]}
	default:
		return req, errors.Wrapf(ErrInvalidSpec, "center %v: want [x, y]", cd.Center)
	}
	return req, nil
}
