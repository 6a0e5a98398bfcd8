package emath

import(
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBesselK1(t *testing.T) {
	tests := map[float64]float64{
		0.1: 9.853844780870606,
		1.0: 0.6019072301972346,
		2.0: 0.1398658818165224,
		5.0: 0.004044613445452164,
		0.5: 1.656441120003301,
		10:  1.864877345382558e-05,
	}
	for x, expected := range tests {
		assert.InEpsilon(t, expected, BesselK1(x), 1e-6, "K1(%g)", x)
	}
	assert.True(t, math.IsInf(BesselK1(0), 1))

	// The two fits meet at x=2
	assert.InEpsilon(t, BesselK1(2-1e-9), BesselK1(2+1e-9), 1e-6)

	// Decreasing everywhere
	prev := BesselK1(0.01)
	for x:=0.05; x<20; x+=0.05 {
		k := BesselK1(x)
		assert.Less(t, k, prev, "K1(%g)", x)
		prev = k
	}
}

func TestSoftplus(t *testing.T) {
	assert.InDelta(t, math.Log(2), Softplus(0), 1e-12)
	assert.Equal(t, 40.0, Softplus(40))
	assert.InDelta(t, math.Exp(-20), Softplus(-20), 1e-15)
}

func TestProfileFrame(t *testing.T) {
	// PA=0: the major axis runs up the image
	m := ProfileFrame(10, 20, 0)
	x, y := m.Apply(10, 23)
	assert.InDelta(t, 3.0, x, 1e-12)
	assert.InDelta(t, 0.0, y, 1e-12)

	x, y = m.Apply(10, 20)
	assert.InDelta(t, 0.0, x, 1e-12)
	assert.InDelta(t, 0.0, y, 1e-12)

	m = ProfileFrame(0, 0, 90)
	x, y = m.Apply(-2, 0)
	assert.InDelta(t, 2.0, x, 1e-12)
	assert.InDelta(t, 0.0, y, 1e-12)
}
