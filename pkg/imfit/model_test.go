package imfit

import(
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCenterSpecFor(t *testing.T) {
	tests := []struct {
		pos      Position
		delta    float64
		expected CenterSpec
	}{
		{Position{100, 120}, 30, CenterSpec{Bounded(100, 70, 130), Bounded(120, 90, 150)}},
		{Position{10, 100}, 30, CenterSpec{Bounded(10, 1, 40), Bounded(100, 70, 130)}},
		{Position{0.5, 5}, 30, CenterSpec{Bounded(0.5, 0.5, 30.5), Bounded(5, 1, 35)}},
		{Position{10, 20}, FixedCenter, CenterSpec{Fixed(10), Fixed(20)}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, CenterSpecFor(tt.pos, tt.delta), "%v ± %g", tt.pos, tt.delta)
	}
}

func twoComponentModel(t *testing.T) *Model {
	m, err := NewModel([]ComponentRequest{
		{Function: "Sersic", Params: map[string]Spec{"n": Fixed(1), "r_e": Bounded(20, 5, 50)}, Center: &Position{100, 120}},
		{Function: "FlatSky"},
	}, DefaultCenterDelta, false)
	require.NoError(t, err)
	return m
}

func TestModelConfig(t *testing.T) {
	m := twoComponentModel(t)
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, 1, m.NumCenters())

	text, err := ModelConfig(m)
	require.NoError(t, err)
	assert.Equal(t, `
X0 100.0 70.0,130.0
Y0 120.0 90.0,150.0
FUNCTION Sersic
PA 20.0 0.0,360.0
ell 0.2 0.0,0.99
n 1.0 fixed
I_e 0.05 0.0,1000.0
r_e 20.0 5.0,50.0
FUNCTION FlatSky
I_sky 0.0 -5.0,5.0
`, text)
}

func TestModelGetSet(t *testing.T) {
	m := twoComponentModel(t)

	c, err := m.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "FlatSky", c.Name())

	_, err = m.Get(2)
	assert.True(t, errors.Is(err, ErrNoSuchComponent))
	_, err = m.Get(-1)
	assert.True(t, errors.Is(err, ErrNoSuchComponent))

	gauss, err := NewComponent("Gaussian", nil, nil, false)
	require.NoError(t, err)
	require.NoError(t, m.Set(1, gauss))
	c, _ = m.Get(1)
	assert.Equal(t, "Gaussian", c.Name())
	assert.True(t, errors.Is(m.Set(5, gauss), ErrNoSuchComponent))

	require.NoError(t, m.SetCompParam(0, "ell", Bounded(0.5, 0.1, 0.9)))
	c, _ = m.Get(0)
	p, _ := c.Param("ell")
	assert.Equal(t, "ell 0.5 0.1,0.9", p.ConfigLine())
	assert.True(t, errors.Is(m.SetCompParam(0, "I_sky", Free(1)), ErrUnknownParam))
	assert.True(t, errors.Is(m.SetCompParam(3, "ell", Free(1)), ErrNoSuchComponent))

	assert.Equal(t, "comp_1", CompKey(0))
	assert.Equal(t, "comp_2", CompKey(1))
}

func TestNewModelErrors(t *testing.T) {
	center := &Position{50, 50}
	_, err := NewModel([]ComponentRequest{{Function: "Sersic", Center: center}, {Function: "Nope"}}, 30, false)
	assert.True(t, errors.Is(err, ErrUnknownFunction))

	_, err = NewModel([]ComponentRequest{{Function: "Sersic", Params: map[string]Spec{"bogus": Free(1)}, Center: center}}, 30, false)
	assert.True(t, errors.Is(err, ErrUnknownParam))

	// Nothing for the first component to share a center with
	_, err = NewModel([]ComponentRequest{{Function: "FlatSky"}, {Function: "Sersic", Center: center}}, 30, false)
	assert.True(t, errors.Is(err, ErrInvalidSpec))
	assert.Contains(t, err.Error(), "comp_1")
}

func TestNewModelRelative(t *testing.T) {
	m, err := NewModel([]ComponentRequest{
		{Function: "Exponential", Params: map[string]Spec{"h": Bounded(10, 2, 5)}, Center: &Position{50, 50}},
	}, 10, true)
	require.NoError(t, err)

	c, _ := m.Get(0)
	h, _ := c.Param("h")
	assert.Equal(t, &Bounds{8, 15}, h.Bounds())
	assert.Equal(t, &Bounds{40, 60}, c.X0.Bounds())
}

func TestSersicModel(t *testing.T) {
	m, err := SersicModel(map[string]Spec{"n": Fixed(4)}, Position{200, 150}, DefaultObjectDelta)
	require.NoError(t, err)
	require.Equal(t, 1, m.Len())

	c, _ := m.Get(0)
	assert.Equal(t, "X0 200.0 150.0,250.0", c.X0.ConfigLine())
	assert.Equal(t, "Y0 150.0 100.0,200.0", c.Y0.ConfigLine())
	n, _ := c.Param("n")
	assert.True(t, n.Fixed())

	m, err = SersicModel(map[string]Spec{"X0": Fixed(12), "Y0": Fixed(13)}, Shape{NY: 100, NX: 80}.Center(), DefaultObjectDelta)
	require.NoError(t, err)
	c, _ = m.Get(0)
	assert.Equal(t, "X0 12.0 fixed", c.X0.ConfigLine())
	assert.Equal(t, "Y0 13.0 fixed", c.Y0.ConfigLine())
}
