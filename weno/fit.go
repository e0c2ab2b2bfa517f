package weno

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/goweno/basis"
	"github.com/notargets/goweno/geometry"
)

// AssembleFit builds the stencil matrix A[j][k] = mean_k(member j) -
// mean_k(owner), all moments taken in the owner's reference frame.
func AssembleFit(owner geometry.MomentTable, members []geometry.MomentTable, set basis.Set) *mat.Dense {
	var (
		nr, nc = len(members), len(set)
		ownerM = owner.Means(set)
		A      = mat.NewDense(nr, nc, nil)
	)
	for j, mt := range members {
		for k, e := range set {
			A.Set(j, k, mt.Mean(e)-ownerM[k])
		}
	}
	return A
}

// FitOperator maps the stencil right hand side b_j = u_j - u_owner onto the
// polynomial coefficients. It depends only on geometry and is built once.
type FitOperator struct {
	A        *mat.Dense
	Pinv     *mat.Dense // DOF x members
	Cond     float64
	rows, nc int
}

const minFitEpsilon = 1.e-14

// NewFitOperator factors A. Square systems go through LU, over determined
// systems through the SVD pseudo inverse. Systems with a reciprocal condition
// below eps report ErrRankDeficientStencil. eps is floored at minFitEpsilon.
func NewFitOperator(A *mat.Dense, eps float64) (fo *FitOperator, err error) {
	eps = math.Max(eps, minFitEpsilon)
	nr, nc := A.Dims()
	if nr < nc {
		err = fmt.Errorf("%w: %d members for %d basis functions",
			ErrInsufficientStencilSize, nr, nc)
		return
	}
	if err = checkRows(A, eps); err != nil {
		return
	}
	fo = &FitOperator{A: A, rows: nr, nc: nc}
	if nr == nc {
		err = fo.factorLU(eps)
	} else {
		err = fo.factorSVD(eps)
	}
	if err != nil {
		fo = nil
	}
	return
}

// checkRows rejects members without geometric separation: a zero row is a
// member coinciding with the owner, two equal rows are coincident members.
func checkRows(A *mat.Dense, eps float64) error {
	var (
		nr, _ = A.Dims()
		norms = make([]float64, nr)
		scale float64
		diff  mat.VecDense
	)
	for j := 0; j < nr; j++ {
		norms[j] = mat.Norm(A.RowView(j), 2)
		scale = math.Max(scale, norms[j])
	}
	tol := eps * scale
	for j := 0; j < nr; j++ {
		if norms[j] <= tol {
			return fmt.Errorf("%w: member %d coincides with the owner", ErrRankDeficientStencil, j)
		}
		for i := 0; i < j; i++ {
			diff.SubVec(A.RowView(j), A.RowView(i))
			if mat.Norm(&diff, 2) <= tol {
				return fmt.Errorf("%w: members %d and %d coincide", ErrRankDeficientStencil, i, j)
			}
		}
	}
	return nil
}

func (fo *FitOperator) factorLU(eps float64) error {
	var lu mat.LU
	lu.Factorize(fo.A)
	fo.Cond = lu.Cond()
	if fo.Cond*eps > 1 || math.IsInf(fo.Cond, 1) || math.IsNaN(fo.Cond) {
		return fmt.Errorf("%w: condition number %g", ErrRankDeficientStencil, fo.Cond)
	}
	fo.Pinv = mat.NewDense(fo.nc, fo.nc, nil)
	if err := lu.SolveTo(fo.Pinv, false, identity(fo.nc)); err != nil {
		return fmt.Errorf("%w: %v", ErrRankDeficientStencil, err)
	}
	return nil
}

func (fo *FitOperator) factorSVD(eps float64) error {
	var (
		svd  mat.SVD
		U, V mat.Dense
	)
	if ok := svd.Factorize(fo.A, mat.SVDThin); !ok {
		return fmt.Errorf("%w: SVD did not converge", ErrRankDeficientStencil)
	}
	sig := svd.Values(nil)
	sMax, sMin := sig[0], sig[len(sig)-1]
	if sMax == 0 || sMin/sMax < eps {
		return fmt.Errorf("%w: singular values %g/%g", ErrRankDeficientStencil, sMin, sMax)
	}
	fo.Cond = sMax / sMin
	svd.UTo(&U)
	svd.VTo(&V)
	fo.Pinv = mat.NewDense(fo.nc, fo.rows, nil)
	for i := 0; i < fo.nc; i++ {
		for j := 0; j < fo.rows; j++ {
			var sum float64
			for k, s := range sig {
				sum += V.At(i, k) * U.At(j, k) / s
			}
			fo.Pinv.Set(i, j, sum)
		}
	}
	return nil
}

func identity(n int) *mat.Dense {
	I := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		I.Set(i, i, 1)
	}
	return I
}

// Dims returns the member and coefficient counts.
func (fo *FitOperator) Dims() (members, dof int) { return fo.rows, fo.nc }

// Solve returns the least squares coefficients for b.
func (fo *FitOperator) Solve(b []float64) (c []float64) {
	c = make([]float64, fo.nc)
	fo.SolveTo(c, b)
	return
}

func (fo *FitOperator) SolveTo(c, b []float64) {
	if len(b) != fo.rows || len(c) != fo.nc {
		panic(fmt.Errorf("fit dimension mismatch: have b %d c %d, need %d %d",
			len(b), len(c), fo.rows, fo.nc))
	}
	raw := fo.Pinv.RawMatrix()
	for i := 0; i < fo.nc; i++ {
		var (
			row = raw.Data[i*raw.Stride : i*raw.Stride+fo.rows]
			sum float64
		)
		for j, v := range row {
			sum += v * b[j]
		}
		c[i] = sum
	}
}
