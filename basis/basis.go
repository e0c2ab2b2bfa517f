// Package basis enumerates the monomial degrees of freedom used by the
// reconstruction polynomials.
//
// The ordering is degree-lexicographic: total degree ascending, then the x
// exponent descending, then the y exponent descending. Every matrix or vector
// indexed by "basis function" in this module uses this ordering, and the set
// for a lower order is always a prefix of the set for a higher order.
package basis

import (
	"fmt"
)

// MaxOrder is the highest supported polynomial order. Face moments are
// integrated with a degree 7 rule, so higher orders would not be exact.
const MaxOrder = 7

// Exponent holds the powers (N, M, L) of the monomial x^N y^M z^L.
type Exponent struct {
	N, M, L int
}

func (e Exponent) Degree() int { return e.N + e.M + e.L }

func (e Exponent) String() string { return fmt.Sprintf("(%d,%d,%d)", e.N, e.M, e.L) }

// Set is an ordered list of non-constant monomial exponents.
type Set []Exponent

var sets = func() (s [MaxOrder + 1]Set) {
	for order := 1; order <= MaxOrder; order++ {
		s[order] = enumerate(1, order)
	}
	return
}()

func enumerate(minDeg, maxDeg int) (set Set) {
	for d := minDeg; d <= maxDeg; d++ {
		for n := d; n >= 0; n-- {
			for m := d - n; m >= 0; m-- {
				set = append(set, Exponent{n, m, d - n - m})
			}
		}
	}
	return
}

// New returns the degree of freedom set for a polynomial order. The constant
// term is excluded, it is carried by the cell average constraint. Order 0
// yields an empty set. The returned Set is shared and must not be modified.
func New(order int) Set {
	if order <= 0 {
		return Set{}
	}
	if order > MaxOrder {
		panic(fmt.Errorf("polynomial order %d exceeds maximum %d", order, MaxOrder))
	}
	return sets[order]
}

// NumDOF is the number of non-constant monomials with total degree <= order.
func NumDOF(order int) int {
	if order <= 0 {
		return 0
	}
	return (order+1)*(order+2)*(order+3)/6 - 1
}

// Order returns the highest total degree present in the set.
func (s Set) Order() int {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1].Degree()
}

// Index returns the position of e within the set, or -1.
func (s Set) Index(e Exponent) int {
	for i, ee := range s {
		if ee == e {
			return i
		}
	}
	return -1
}

// MultiIndices returns all derivative multi-indices alpha with
// minDeg <= |alpha| <= maxDeg, in the same degree-lexicographic order.
func MultiIndices(minDeg, maxDeg int) []Exponent {
	if minDeg < 0 {
		minDeg = 0
	}
	return enumerate(minDeg, maxDeg)
}

// Derivative applies the partial derivative d^alpha to the monomial e and
// returns the resulting coefficient and exponent. ok is false when the
// derivative vanishes identically.
func Derivative(e, alpha Exponent) (coeff float64, d Exponent, ok bool) {
	if alpha.N > e.N || alpha.M > e.M || alpha.L > e.L {
		return 0, Exponent{}, false
	}
	coeff = fallingFactorial(e.N, alpha.N) *
		fallingFactorial(e.M, alpha.M) *
		fallingFactorial(e.L, alpha.L)
	d = Exponent{e.N - alpha.N, e.M - alpha.M, e.L - alpha.L}
	return coeff, d, true
}

func fallingFactorial(n, k int) (f float64) {
	f = 1
	for i := 0; i < k; i++ {
		f *= float64(n - i)
	}
	return
}

// Evaluate returns x^N y^M z^L.
func (e Exponent) Evaluate(x, y, z float64) float64 {
	return ipow(x, e.N) * ipow(y, e.M) * ipow(z, e.L)
}

func ipow(x float64, p int) (y float64) {
	y = 1
	for ; p > 0; p-- {
		y *= x
	}
	return
}
