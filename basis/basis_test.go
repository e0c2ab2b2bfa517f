package basis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetSizes(t *testing.T) {
	for order := 0; order <= MaxOrder; order++ {
		assert.Equal(t, NumDOF(order), len(New(order)), "order %d", order)
	}
	assert.Equal(t, 3, NumDOF(1))
	assert.Equal(t, 9, NumDOF(2))
	assert.Equal(t, 19, NumDOF(3))
}

func TestOrderingIsDegreeLexicographic(t *testing.T) {
	s := New(2)
	require.Len(t, s, 9)
	expected := Set{
		{1, 0, 0}, {0, 1, 0}, {0, 0, 1},
		{2, 0, 0}, {1, 1, 0}, {1, 0, 1}, {0, 2, 0}, {0, 1, 1}, {0, 0, 2},
	}
	assert.Equal(t, expected, s)
	assert.Equal(t, 2, s.Order())
	assert.Equal(t, 4, s.Index(Exponent{1, 1, 0}))
	assert.Equal(t, -1, s.Index(Exponent{3, 0, 0}))
}

func TestLowerOrderIsPrefix(t *testing.T) {
	high := New(MaxOrder)
	for order := 1; order < MaxOrder; order++ {
		low := New(order)
		assert.Equal(t, low, high[:len(low)], "order %d", order)
	}
}

func TestDerivative(t *testing.T) {
	c, d, ok := Derivative(Exponent{3, 2, 1}, Exponent{2, 1, 0})
	require.True(t, ok)
	assert.Equal(t, 6.*2., c)
	assert.Equal(t, Exponent{1, 1, 1}, d)

	_, _, ok = Derivative(Exponent{1, 0, 0}, Exponent{0, 1, 0})
	assert.False(t, ok)

	c, d, ok = Derivative(Exponent{2, 0, 0}, Exponent{})
	require.True(t, ok)
	assert.Equal(t, 1., c)
	assert.Equal(t, Exponent{2, 0, 0}, d)
}

func TestMultiIndices(t *testing.T) {
	a := MultiIndices(1, 2)
	assert.Len(t, a, 9)
	for _, e := range a {
		assert.True(t, e.Degree() >= 1 && e.Degree() <= 2)
	}
	assert.Len(t, MultiIndices(0, 0), 1)
}

func TestEvaluate(t *testing.T) {
	assert.InDelta(t, 2.*2.*3.*5.*5.*5., Exponent{2, 1, 3}.Evaluate(2, 3, 5), 1e-12)
	assert.Equal(t, 1., Exponent{}.Evaluate(7, 8, 9))
}
