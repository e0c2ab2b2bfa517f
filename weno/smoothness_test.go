package weno

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/goweno/basis"
	"github.com/notargets/goweno/geometry"
)

func ownerMoments(t *testing.T, tet geometry.Tet, degree int) geometry.MomentTable {
	frame, err := geometry.NewFrame(tet[0], tet[1], tet[2], tet[3], 1e-10)
	require.NoError(t, err)
	return geometry.VolumeIntegrals([]geometry.Tet{tet}, frame, degree)
}

func TestSmoothnessLinear(t *testing.T) {
	var (
		owner = ownerMoments(t, unitTet, 2)
		B     = SmoothnessMatrix(owner, basis.New(1))
		V     = 1. / 6
		h     = math.Cbrt(V)
	)
	// only first derivatives, B = V/h * I
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.
			if i == j {
				want = V / h
			}
			assert.InDelta(t, want, B.At(i, j), 1e-13)
		}
	}
	assert.InDelta(t, 4*V/h, SmoothnessValue(B, []float64{2, 0, 0}), 1e-13)
	assert.Zero(t, SmoothnessValue(B, []float64{0, 0, 0}))
	assert.Zero(t, SmoothnessValue(nil, nil))
	assert.Nil(t, SmoothnessMatrix(owner, basis.New(0)))
}

func TestSmoothnessPositiveSemiDefinite(t *testing.T) {
	for order := 1; order <= 3; order++ {
		var (
			B   = SmoothnessMatrix(ownerMoments(t, unitTet, 2*order), basis.New(order))
			eig mat.EigenSym
		)
		require.True(t, eig.Factorize(B, false))
		for _, v := range eig.Values(nil) {
			assert.Greater(t, v, -1e-12, "order %d", order)
		}
	}
}

func TestSmoothnessIsScaleInvariant(t *testing.T) {
	var big geometry.Tet
	for i, v := range unitTet {
		big[i] = r3.Add(r3.Scale(10, v), r3.Vec{X: 5, Y: -3, Z: 2})
	}
	set := basis.New(2)
	B1 := SmoothnessMatrix(ownerMoments(t, unitTet, 4), set)
	B2 := SmoothnessMatrix(ownerMoments(t, big, 4), set)
	assert.True(t, mat.EqualApprox(B1, B2, 1e-12))
}

func TestSmoothnessNeedsOwnerDegree(t *testing.T) {
	assert.Panics(t, func() { SmoothnessMatrix(ownerMoments(t, unitTet, 2), basis.New(3)) })
}

func TestWeights(t *testing.T) {
	wp := WeightParams{Epsilon: 1e-5, Exponent: 2}
	t.Run("equal sigma gives ideal weights", func(t *testing.T) {
		w := Weights([]float64{1000, 1, 1}, []float64{0.3, 0.3, 0.3}, wp)
		assert.InDeltaSlice(t, []float64{1000. / 1002, 1. / 1002, 1. / 1002}, w, 1e-14)
	})
	t.Run("rough stencils lose weight", func(t *testing.T) {
		w := Weights([]float64{1, 1, 1}, []float64{0, 1, 100}, wp)
		var sum float64
		for _, v := range w {
			sum += v
		}
		assert.InDelta(t, 1., sum, 1e-14)
		assert.Greater(t, w[0], w[1])
		assert.Greater(t, w[1], w[2])
		assert.Greater(t, w[0], 0.999)
	})
	t.Run("huge sigma stays finite", func(t *testing.T) {
		w := Weights([]float64{1, 1}, []float64{1e300, 1e300}, wp)
		assert.InDeltaSlice(t, []float64{0.5, 0.5}, w, 1e-14)
	})
	t.Run("theta sharpens", func(t *testing.T) {
		sigma := []float64{0.1, 0.2}
		w1 := Weights([]float64{1, 1}, sigma, wp)
		w2 := Weights([]float64{1, 1}, sigma, WeightParams{Epsilon: 1e-5, Exponent: 2, Theta: 2})
		assert.Greater(t, w2[0], w1[0])
	})
	assert.Empty(t, Weights(nil, nil, wp))
	assert.Panics(t, func() { Weights([]float64{1}, nil, wp) })
}

func TestBlendAndSensor(t *testing.T) {
	c := Blend([]float64{0.25, 0.75}, [][]float64{{4, 0}, {0, 4}})
	assert.Equal(t, []float64{1, 3}, c)
	assert.Nil(t, Blend(nil, nil))

	assert.Zero(t, ShockSensor([]float64{2, 2, 2}, 1e-5))
	assert.Zero(t, ShockSensor([]float64{7}, 1e-5))
	assert.InDelta(t, 1., ShockSensor([]float64{0, 1e3}, 1e-5), 1e-7)
}
