package nn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

func TestUniformRangeAndShape(t *testing.T) {
	u := &Uniform{Min: -0.5, Max: 0.25, Seed: 3}
	w := u.Init(40, 30)

	r, c := w.Dims()
	require.Equal(t, 40, r)
	require.Equal(t, 30, c)

	data := w.RawMatrix().Data
	for _, v := range data {
		require.GreaterOrEqual(t, v, -0.5)
		require.LessOrEqual(t, v, 0.25)
	}
	assert.InDelta(t, -0.125, stat.Mean(data, nil), 0.03)
}

func TestUniformSeedIsReproducible(t *testing.T) {
	a := (&Uniform{Min: -1, Max: 1, Seed: 11}).Init(5, 5)
	b := (&Uniform{Min: -1, Max: 1, Seed: 11}).Init(5, 5)
	c := (&Uniform{Min: -1, Max: 1, Seed: 12}).Init(5, 5)

	assert.True(t, mat.Equal(a, b))
	assert.False(t, mat.Equal(a, c))
}

func TestInitLeavesSeedUntouched(t *testing.T) {
	u := &Uniform{Min: -1, Max: 1, Seed: 7}
	first := u.Init(3, 3)
	second := u.Init(3, 3)

	assert.Equal(t, uint64(7), u.Seed)
	assert.False(t, mat.Equal(first, second))

	n := &Normal{Seed: 9}
	n.Init(3, 3)
	assert.Equal(t, uint64(9), n.Seed)
}

func TestUniformUnseededDiffers(t *testing.T) {
	a := DefaultUniform().Init(8, 8)
	b := DefaultUniform().Init(8, 8)
	assert.False(t, mat.Equal(a, b))
}

func TestNormalScalesWithFanIn(t *testing.T) {
	n := &Normal{Seed: 5}
	w := n.Init(200, 100)

	data := w.RawMatrix().Data
	assert.InDelta(t, 0, stat.Mean(data, nil), 0.01)
	assert.InDelta(t, 1/math.Sqrt(100), stat.StdDev(data, nil), 0.01)
}
