// Package quadrature provides the integration rules used for moment
// integrals: Gauss-Jacobi rules on [-1,1], a collapsed-coordinate product
// rule on the unit tetrahedron and a tabulated degree 7 rule on the unit
// triangle.
package quadrature

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// JacobiGQ computes the N+1 point Gauss quadrature for the weight
// (1-x)^alpha (1+x)^beta on [-1,1] with the Golub-Welsch eigenvalue method.
func JacobiGQ(alpha, beta float64, N int) (X, W []float64) {
	if N == 0 {
		X = []float64{-(alpha - beta) / (alpha + beta + 2.)}
		W = []float64{gamma0(alpha, beta)}
		return
	}
	var (
		h1 = make([]float64, N+1)
		JJ = mat.NewSymDense(N+1, nil)
	)
	for i := 0; i < N+1; i++ {
		h1[i] = 2*float64(i) + alpha + beta
	}
	// main diagonal: (beta^2-alpha^2)/(h1+2)/h1
	fac := -(alpha*alpha - beta*beta)
	for i := 0; i < N+1; i++ {
		val := h1[i]
		JJ.SetSym(i, i, fac/(val*(val+2.)))
	}
	if alpha+beta < 10*1.e-16 {
		JJ.SetSym(0, 0, 0)
	}
	// first off diagonal
	for i := 0; i < N; i++ {
		ip1 := float64(i + 1)
		val := h1[i]
		d1 := 2. / (val + 2.)
		d1 *= math.Sqrt(ip1 * (ip1 + alpha + beta) * (ip1 + alpha) * (ip1 + beta) / ((val + 1.) * (val + 3.)))
		JJ.SetSym(i, i+1, d1)
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(JJ, true); !ok {
		panic("eigenvalue decomposition failed")
	}
	X = eig.Values(nil)
	VV := mat.NewDense(N+1, N+1, nil)
	eig.VectorsTo(VV)
	W = make([]float64, N+1)
	g0 := gamma0(alpha, beta)
	for i := range W {
		v := VV.At(0, i)
		W[i] = v * v * g0
	}
	return
}

// gamma0 is the integral of the Jacobi weight over [-1,1].
func gamma0(alpha, beta float64) float64 {
	ab1 := alpha + beta + 1.
	a1 := alpha + 1.
	b1 := beta + 1.
	return math.Gamma(a1) * math.Gamma(b1) * math.Pow(2, ab1) / ab1 / math.Gamma(ab1)
}
