package geometry

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/goweno/basis"
)

func unitCubeFaces() [][]r3.Vec {
	v := func(x, y, z float64) r3.Vec { return r3.Vec{X: x, Y: y, Z: z} }
	return [][]r3.Vec{
		{v(0, 0, 0), v(0, 1, 0), v(1, 1, 0), v(1, 0, 0)},
		{v(0, 0, 1), v(1, 0, 1), v(1, 1, 1), v(0, 1, 1)},
		{v(0, 0, 0), v(1, 0, 0), v(1, 0, 1), v(0, 0, 1)},
		{v(1, 0, 0), v(1, 1, 0), v(1, 1, 1), v(1, 0, 1)},
		{v(1, 1, 0), v(0, 1, 0), v(0, 1, 1), v(1, 1, 1)},
		{v(0, 1, 0), v(0, 0, 0), v(0, 0, 1), v(0, 1, 1)},
	}
}

func factorial(n int) (f float64) {
	f = 1
	for i := 2; i <= n; i++ {
		f *= float64(i)
	}
	return
}

func TestJacobiInverse(t *testing.T) {
	J := [3][3]float64{{2, 1, 0}, {0, 3, 1}, {1, 0, 4}}
	JInv, det := JacobiInverse(J)
	assert.InDelta(t, 25., det, 1e-12)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var s float64
			for k := 0; k < 3; k++ {
				s += J[i][k] * JInv[k][j]
			}
			if i == j {
				assert.InDelta(t, 1., s, 1e-14)
			} else {
				assert.InDelta(t, 0., s, 1e-14)
			}
		}
	}
}

func TestFrameRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	rv := func() r3.Vec { return r3.Vec{X: rng.Float64(), Y: rng.Float64(), Z: rng.Float64()} }
	for trial := 0; trial < 50; trial++ {
		x0 := rv()
		f, err := NewFrame(x0, r3.Add(x0, r3.Vec{X: 1 + rng.Float64()}), r3.Add(x0, r3.Vec{X: rng.Float64(), Y: 1}),
			r3.Add(x0, r3.Vec{Y: rng.Float64(), Z: 0.5}), 1e-10)
		require.NoError(t, err)
		x := r3.Scale(10, rv())
		back := f.InverseTransformPoint(f.TransformPoint(x))
		assert.InDelta(t, 0., r3.Norm(r3.Sub(back, x)), 1e-12)
	}
}

func TestFrameMapsVerticesToUnitTet(t *testing.T) {
	x0, x1, x2, x3 := r3.Vec{X: 1, Y: 1, Z: 1}, r3.Vec{X: 3, Y: 1, Z: 1}, r3.Vec{X: 1, Y: 4, Z: 1}, r3.Vec{X: 1, Y: 1, Z: 2}
	f, err := NewFrame(x0, x1, x2, x3, 1e-10)
	require.NoError(t, err)
	assert.InDelta(t, 6., f.DetJ, 1e-14)
	assert.Equal(t, r3.Vec{}, f.TransformPoint(x0))
	assert.InDelta(t, 1., f.TransformPoint(x1).X, 1e-14)
	assert.InDelta(t, 1., f.TransformPoint(x2).Y, 1e-14)
	assert.InDelta(t, 1., f.TransformPoint(x3).Z, 1e-14)
}

func TestDegenerateFrame(t *testing.T) {
	_, err := NewFrame(r3.Vec{}, r3.Vec{X: 1}, r3.Vec{Y: 1}, r3.Vec{X: 1, Y: 1}, 1e-10)
	assert.True(t, errors.Is(err, ErrDegenerateGeometry))
	_, err = NewFrame(r3.Vec{}, r3.Vec{}, r3.Vec{}, r3.Vec{}, 1e-10)
	assert.True(t, errors.Is(err, ErrDegenerateGeometry))
}

func TestUnitCubeVolumeIntegrals(t *testing.T) {
	tets := DecomposeCell(r3.Vec{X: .5, Y: .5, Z: .5}, unitCubeFaces())
	require.Len(t, tets, 24)
	mt := VolumeIntegrals(tets, IdentityFrame(), 6)
	assert.InDelta(t, 1., mt.At(0, 0, 0), 1e-14)
	assert.InDelta(t, 0.5, mt.At(1, 0, 0), 1e-14)
	assert.InDelta(t, 1./3., mt.At(2, 0, 0), 1e-14)
	assert.InDelta(t, 1./8., mt.At(1, 1, 1), 1e-14)
	assert.InDelta(t, 1./27., mt.At(2, 2, 2), 1e-14)
	assert.InDelta(t, 1./7., mt.At(0, 0, 6), 1e-14)
	assert.InDelta(t, 1./3., mt.Mean(basis.Exponent{N: 0, M: 2, L: 0}), 1e-14)

	vol, c := VolumeCentroid(tets)
	assert.InDelta(t, 1., vol, 1e-14)
	assert.InDelta(t, 0., r3.Norm(r3.Sub(c, r3.Vec{X: .5, Y: .5, Z: .5})), 1e-14)
}

func TestReferenceTetMoments(t *testing.T) {
	x0, x1, x2, x3 := r3.Vec{X: .2, Y: -.1, Z: .3}, r3.Vec{X: 1.4, Y: 0, Z: .2}, r3.Vec{X: .1, Y: 1.1, Z: .5}, r3.Vec{X: .3, Y: .2, Z: 1.7}
	f, err := NewFrame(x0, x1, x2, x3, 1e-10)
	require.NoError(t, err)
	D := 6
	mt := VolumeIntegrals([]Tet{{x0, x1, x2, x3}}, f, D)
	for n := 0; n <= D; n++ {
		for m := 0; n+m <= D; m++ {
			for l := 0; n+m+l <= D; l++ {
				exact := factorial(n) * factorial(m) * factorial(l) / factorial(n+m+l+3)
				assert.InDelta(t, exact, mt.At(n, m, l), 1e-14, "(%d,%d,%d)", n, m, l)
			}
		}
	}
}

func TestUnitSquareFaceIntegrals(t *testing.T) {
	square := unitCubeFaces()[0]
	mt, err := FaceIntegrals(square, IdentityFrame(), 7)
	require.NoError(t, err)
	assert.InDelta(t, 1., mt.Measure(), 1e-13)
	assert.InDelta(t, 0.5, mt.At(1, 0, 0), 1e-13)
	assert.InDelta(t, 1./3., mt.At(2, 0, 0), 1e-13)
	assert.InDelta(t, 1./20., mt.At(3, 4, 0), 1e-13)
	assert.InDelta(t, 0., mt.At(0, 0, 1), 1e-14)

	area := AreaVector(square)
	assert.InDelta(t, -1., area.Z, 1e-14)
	c := FaceCentre(square)
	assert.InDelta(t, 0.5, c.X, 1e-14)
	assert.InDelta(t, 0.5, c.Y, 1e-14)
}

func TestFaceIntegralsScaledFrame(t *testing.T) {
	// Frame stretching x by 2: face means of the reference monomials are the
	// physical means of (x/2)^n.
	f, err := NewFrame(r3.Vec{}, r3.Vec{X: 2}, r3.Vec{Y: 1}, r3.Vec{Z: 1}, 1e-10)
	require.NoError(t, err)
	square := []r3.Vec{{}, {X: 2}, {X: 2, Y: 1}, {Y: 1}}
	mt, err := FaceIntegrals(square, f, 4)
	require.NoError(t, err)
	assert.InDelta(t, 2., mt.Measure(), 1e-13)
	assert.InDelta(t, 0.5, mt.Mean(basis.Exponent{N: 1}), 1e-13)
	assert.InDelta(t, 1./3., mt.Mean(basis.Exponent{N: 2}), 1e-13)
}

func TestFaceIntegralErrors(t *testing.T) {
	_, err := FaceIntegrals(unitCubeFaces()[0], IdentityFrame(), 8)
	assert.Error(t, err)
	_, err = FaceIntegrals([]r3.Vec{{}, {X: 1}}, IdentityFrame(), 2)
	assert.True(t, errors.Is(err, ErrDegenerateGeometry))
}

func TestMomentTableBounds(t *testing.T) {
	mt := NewMomentTable(2)
	assert.Panics(t, func() { mt.At(2, 1, 0) })
	assert.False(t, mt.IsEmpty())
	assert.True(t, MomentTable{}.IsEmpty())
	assert.True(t, math.IsNaN(mt.Mean(basis.Exponent{N: 1})))
}
