package weno

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/goweno/basis"
	"github.com/notargets/goweno/geometry"
	"github.com/notargets/goweno/utils"
)

// SmoothnessMatrix returns the oscillation indicator matrix of the owner cell
//
//	B[i][j] = sum_{1<=|a|<=r} h^(2|a|-3) Int_owner D^a phi_i D^a phi_j dxi
//
// with h = V^(1/3) of the owner in the reference frame. The owner moments must
// reach degree 2r-2. An empty set gives a nil matrix.
func SmoothnessMatrix(owner geometry.MomentTable, set basis.Set) *mat.SymDense {
	var (
		n = len(set)
		r = set.Order()
	)
	if n == 0 {
		return nil
	}
	if owner.Degree() < 2*r-2 {
		panic("owner moments do not reach the smoothness degree")
	}
	var (
		B = mat.NewSymDense(n, nil)
		h = math.Cbrt(owner.Measure())
	)
	for _, alpha := range basis.MultiIndices(1, r) {
		scale := utils.POW(h, 2*alpha.Degree()-3)
		for i := 0; i < n; i++ {
			ci, di, ok := basis.Derivative(set[i], alpha)
			if !ok {
				continue
			}
			for j := i; j < n; j++ {
				cj, dj, ok := basis.Derivative(set[j], alpha)
				if !ok {
					continue
				}
				v := scale * ci * cj * owner.At(di.N+dj.N, di.M+dj.M, di.L+dj.L)
				B.SetSym(i, j, B.At(i, j)+v)
			}
		}
	}
	return B
}

// SmoothnessValue returns sigma = c^T B c.
func SmoothnessValue(B *mat.SymDense, c []float64) float64 {
	if B == nil || len(c) == 0 {
		return 0
	}
	x := mat.NewVecDense(len(c), c)
	return mat.Inner(x, B, x)
}
