package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVector(t *testing.T) {
	v := NewVector(3).Set(1)
	require.Equal(t, 1., v.AtVec(2))

	v = NewVector(4, []float64{1, 2, 3, 4})
	assert.Equal(t, 1., v.Min())
	assert.Equal(t, 4., v.Max())

	w := v.Copy().Apply(math.Sqrt)
	assert.InDelta(t, math.Sqrt2, w.AtVec(1), 1.e-15)
	assert.Equal(t, 2., v.AtVec(1), "Copy must not alias the source")

	w = v.Copy().Scale(3)
	assert.Equal(t, 12., w.AtVec(3))

	assert.False(t, IsNan(v))
	v.Data()[0] = math.NaN()
	assert.True(t, IsNan(v))
	assert.Panics(t, func() { IsNanPanic(v) })
}
