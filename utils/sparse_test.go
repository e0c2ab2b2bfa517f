package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestSparseAssembly(t *testing.T) {
	dok := NewDOK(3, 4)
	dok.Set(0, 0, 1)
	dok.Add(0, 0, 2)
	dok.Add(1, 3, -1)
	dok.Set(2, 1, 4)
	assert.Equal(t, 3, dok.NNZ())
	assert.Equal(t, 3., dok.At(0, 0))

	dok.SetReadOnly("A")
	assert.PanicsWithError(t, "attempt to write to a read only matrix named: \"A\"", func() { dok.Add(0, 1, 1) })

	csr := dok.ToCSR()
	nr, nc := csr.Dims()
	assert.Equal(t, 3, nr)
	assert.Equal(t, 4, nc)
	assert.Equal(t, 3, csr.NNZ())
	assert.True(t, mat.Equal(dok, csr))
	assert.ElementsMatch(t, []float64{3, -1, 4}, csr.Data())

	x := []float64{1, 2, 3, 4}
	assert.Equal(t, []float64{3, -4, 8}, csr.MulVec(x))
	y := make([]float64, 3)
	csr.MulVecRange(y, x, 1, 2)
	assert.Equal(t, []float64{0, -4, 0}, y)
	assert.Panics(t, func() { csr.MulVec([]float64{1}) })

	var dense mat.Dense
	dense.CloneFrom(csr.T())
	r, c := dense.Dims()
	assert.Equal(t, 4, r)
	assert.Equal(t, 3, c)
	assert.Equal(t, -1., dense.At(3, 1))
}

func TestPOW(t *testing.T) {
	for p := -10; p <= 10; p++ {
		assert.InEpsilon(t, mathPow(1.3, p), POW(1.3, p), 1e-14, "p = %d", p)
	}
	assert.Equal(t, 1., POW(0, 0))
}

func mathPow(x float64, p int) (y float64) {
	y = 1
	for i := 0; i < abs(p); i++ {
		y *= x
	}
	if p < 0 {
		y = 1 / y
	}
	return
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}
