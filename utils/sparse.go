package utils

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"github.com/james-bowman/sparse/blas"
	"gonum.org/v1/gonum/mat"
)

// DOK is a dictionary of keys sparse matrix used for assembly.
type DOK struct {
	M        *sparse.DOK
	readOnly bool
	name     string
}

func NewDOK(nr, nc int) (R DOK) {
	R = DOK{
		sparse.NewDOK(nr, nc),
		false,
		"unnamed - hint: pass a variable name to SetReadOnly()",
	}
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m DOK) Dims() (r, c int)    { return m.M.Dims() }
func (m DOK) At(i, j int) float64 { return m.M.At(i, j) }
func (m DOK) T() mat.Matrix       { return m.M.T() }
func (m DOK) NNZ() int            { return m.M.NNZ() }

func (m *DOK) SetReadOnly(name ...string) {
	if len(name) != 0 {
		m.name = name[0]
	}
	m.readOnly = true
}

func (m DOK) checkWritable() {
	if m.readOnly {
		panic(fmt.Errorf("attempt to write to a read only matrix named: \"%v\"", m.name))
	}
}

func (m DOK) Set(i, j int, v float64) {
	m.checkWritable()
	m.M.Set(i, j, v)
}

// Add accumulates v into entry (i,j).
func (m DOK) Add(i, j int, v float64) {
	m.checkWritable()
	m.M.Set(i, j, m.M.At(i, j)+v)
}

func (m DOK) ToCSR() CSR {
	return CSR{
		M:        m.M.ToCSR(),
		readOnly: m.readOnly,
		name:     m.name,
	}
}

// CSR is a compressed sparse row matrix used for products.
type CSR struct {
	M        *sparse.CSR
	readOnly bool
	name     string
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m CSR) Dims() (r, c int)              { return m.M.Dims() }
func (m CSR) At(i, j int) float64           { return m.M.At(i, j) }
func (m CSR) T() mat.Matrix                 { return m.M.T() }
func (m CSR) NNZ() int                      { return m.M.NNZ() }
func (m CSR) RawMatrix() *blas.SparseMatrix { return m.M.RawMatrix() }
func (m CSR) Data() []float64 {
	return m.RawMatrix().Data
}

// MulVecRange computes y[i] = sum_j M[i][j] x[j] for rows rMin <= i < rMax.
func (m CSR) MulVecRange(y, x []float64, rMin, rMax int) {
	raw := m.RawMatrix()
	for i := rMin; i < rMax; i++ {
		var sum float64
		for p := raw.Indptr[i]; p < raw.Indptr[i+1]; p++ {
			sum += raw.Data[p] * x[raw.Ind[p]]
		}
		y[i] = sum
	}
}

func (m CSR) MulVec(x []float64) (y []float64) {
	nr, nc := m.Dims()
	if len(x) != nc {
		panic(fmt.Errorf("dimension mismatch: %d columns, vector of %d", nc, len(x)))
	}
	y = make([]float64, nr)
	m.MulVecRange(y, x, 0, nr)
	return
}
