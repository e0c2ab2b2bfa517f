package quadrature

// TetRule is a quadrature rule on the unit tetrahedron with vertices
// (0,0,0), (1,0,0), (0,1,0), (0,0,1). Weights sum to the volume 1/6.
type TetRule struct {
	Degree  int
	R, S, T []float64
	W       []float64
}

// maxCachedDegree covers the moment degree 2*MaxOrder of the basis package.
const maxCachedDegree = 14

var tetRules = func() (rules [maxCachedDegree + 1]*TetRule) {
	for d := range rules {
		rules[d] = newTetRule(d)
	}
	return
}()

// TetrahedronRule returns a rule exact for polynomials of total degree up to
// degree. Rules up to degree 14 are built once at start up and shared.
func TetrahedronRule(degree int) *TetRule {
	if degree < 0 {
		degree = 0
	}
	if degree <= maxCachedDegree {
		return tetRules[degree]
	}
	return newTetRule(degree)
}

// newTetRule builds the conical product rule in collapsed coordinates
//
//	r = u, s = (1-u) v, t = (1-u)(1-v) w,  dr ds dt = (1-u)^2 (1-v) du dv dw
//
// with Gauss-Jacobi points absorbing the (1-u)^2 and (1-v) factors.
func newTetRule(degree int) (tr *TetRule) {
	var (
		n      = degree/2 + 1 // 2n-1 >= degree
		xu, wu = JacobiGQ(2, 0, n-1)
		xv, wv = JacobiGQ(1, 0, n-1)
		xw, ww = JacobiGQ(0, 0, n-1)
		np     = n * n * n
	)
	tr = &TetRule{
		Degree: degree,
		R:      make([]float64, 0, np),
		S:      make([]float64, 0, np),
		T:      make([]float64, 0, np),
		W:      make([]float64, 0, np),
	}
	for i := 0; i < n; i++ {
		u := 0.5 * (1 + xu[i])
		for j := 0; j < n; j++ {
			v := 0.5 * (1 + xv[j])
			for k := 0; k < n; k++ {
				w := 0.5 * (1 + xw[k])
				tr.R = append(tr.R, u)
				tr.S = append(tr.S, (1-u)*v)
				tr.T = append(tr.T, (1-u)*(1-v)*w)
				tr.W = append(tr.W, wu[i]/8.*wv[j]/4.*ww[k]/2.)
			}
		}
	}
	return
}

// Len returns the number of points.
func (tr *TetRule) Len() int { return len(tr.W) }

// Integrate applies the rule to f on the unit tetrahedron.
func (tr *TetRule) Integrate(f func(r, s, t float64) float64) (sum float64) {
	for i, w := range tr.W {
		sum += w * f(tr.R[i], tr.S[i], tr.T[i])
	}
	return
}
