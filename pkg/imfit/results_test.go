package imfit

import(
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"
)

func pointSources(t *testing.T) *ResultTree {
	rt := NewResultTree()
	for _, ps := range []struct{ x, y, itot float64 }{{3, 4, 2}, {7, 8, 5}} {
		obj := rt.AddObject(ps.x, nil, ps.y, nil)
		require.NoError(t, rt.AddFunction(obj, "PointSource"))
		require.NoError(t, rt.AddParameter(obj, LatestComponent, "I_tot", ps.itot, nil))
	}
	return rt
}

func TestResultTreeArray(t *testing.T) {
	rt := pointSources(t)
	shape := Shape{NY: 10, NX: 12}

	g, err := rt.Array(shape)
	require.NoError(t, err)
	assert.Equal(t, 12, g.Dx())
	assert.Equal(t, 10, g.Dy())
	assert.Equal(t, 2.0, g.Get(2, 3))
	assert.Equal(t, 5.0, g.Get(6, 7))
	assert.Equal(t, 7.0, g.Sum())

	// The sum of the independently rendered components
	acc, err := rt.Objects[0].Components[0].Render(shape)
	require.NoError(t, err)
	other, err := rt.Objects[1].Components[0].Render(shape)
	require.NoError(t, err)
	require.NoError(t, acc.Add(&other))
	assert.True(t, acc.Equal(&g))

	g2, err := rt.Array(shape)
	require.NoError(t, err)
	assert.True(t, g.Equal(&g2))
	assert.Equal(t, 7.0, g.Sum(), "second call must not touch the first grid")
}

func TestResultTreeArrayErrors(t *testing.T) {
	rt := pointSources(t)
	_, err := rt.Array(Shape{NY: 0, NX: 10})
	assert.True(t, errors.Is(err, ErrInvalidSpec))

	require.NoError(t, rt.AddFunction(1, "NoSuchProfile"))
	_, err = rt.Array(Shape{NY: 10, NX: 10})
	assert.True(t, errors.Is(err, ErrUnknownFunction))

	rt = pointSources(t)
	require.NoError(t, rt.AddFunction(0, "Gaussian"))
	_, err = rt.Array(Shape{NY: 10, NX: 10})
	assert.True(t, errors.Is(err, ErrUnknownParam))
}

func TestResultTreeIndexing(t *testing.T) {
	rt := NewResultTree()
	assert.True(t, errors.Is(rt.AddFunction(0, "Sersic"), ErrNoSuchObject))
	assert.Equal(t, 0, rt.NumObjects())

	obj := rt.AddObject(1, nil, 2, nil)
	err := rt.AddParameter(obj, LatestComponent, "n", 1, nil)
	assert.True(t, errors.Is(err, ErrNoSuchComponent))

	require.NoError(t, rt.AddFunction(obj, "FlatSky"))
	require.NoError(t, rt.AddFunction(obj, "PointSource"))
	require.NoError(t, rt.AddParameter(obj, 0, "I_sky", 0.5, nil))
	assert.True(t, errors.Is(rt.AddParameter(obj, 2, "I_sky", 0.5, nil), ErrNoSuchComponent))
	assert.True(t, errors.Is(rt.AddParameter(3, 0, "I_sky", 0.5, nil), ErrNoSuchObject))

	v, ok := rt.Objects[0].Components[0].Get("I_sky")
	assert.True(t, ok)
	assert.Equal(t, 0.5, v)
	assert.Empty(t, rt.Objects[0].Components[1].ParamNames())
}

func TestResultTreeAsYaml(t *testing.T) {
	rt, err := ParseTree(strings.NewReader(sersicResult))
	require.NoError(t, err)

	str, err := rt.AsYaml()
	require.NoError(t, err)
	assert.True(t, strings.Index(str, "reduced_chisq") < strings.Index(str, "objects"))

	doc := map[string]interface{}{}
	require.NoError(t, yaml.Unmarshal([]byte(str), &doc))
	assert.Equal(t, 1.02, doc["reduced_chisq"])
	assert.Contains(t, str, "r_e_err: 0.5")
}
