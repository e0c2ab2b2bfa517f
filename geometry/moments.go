package geometry

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/goweno/basis"
	"github.com/notargets/goweno/quadrature"
)

// MomentTable holds the integrals of x^n y^m z^l for n+m+l <= Degree, taken
// in some reference frame.
type MomentTable struct {
	degree int
	data   []float64
}

func NewMomentTable(degree int) MomentTable {
	d1 := degree + 1
	return MomentTable{
		degree: degree,
		data:   make([]float64, d1*d1*d1),
	}
}

func (mt MomentTable) Degree() int { return mt.degree }

func (mt MomentTable) index(n, m, l int) int {
	d1 := mt.degree + 1
	return (n*d1+m)*d1 + l
}

// At returns the moment for exponents (n,m,l). Exponents beyond the table
// degree panic, they indicate a table built for the wrong order.
func (mt MomentTable) At(n, m, l int) float64 {
	if n+m+l > mt.degree || n < 0 || m < 0 || l < 0 {
		panic(fmt.Errorf("moment (%d,%d,%d) outside table of degree %d", n, m, l, mt.degree))
	}
	return mt.data[mt.index(n, m, l)]
}

// Measure is the zeroth moment, the volume or area of the region.
func (mt MomentTable) Measure() float64 { return mt.data[0] }

// Mean returns the moment of e divided by the measure.
func (mt MomentTable) Mean(e basis.Exponent) float64 {
	return mt.At(e.N, e.M, e.L) / mt.data[0]
}

// Means returns the normalised moments for every exponent of set.
func (mt MomentTable) Means(set basis.Set) (m []float64) {
	m = make([]float64, len(set))
	for i, e := range set {
		m[i] = mt.Mean(e)
	}
	return
}

// IsEmpty reports whether the table was never filled.
func (mt MomentTable) IsEmpty() bool { return len(mt.data) == 0 }

// accumulate adds w * x^n y^m z^l for all admissible exponents.
func (mt MomentTable) accumulate(w float64, p r3.Vec, px, py, pz []float64) {
	D := mt.degree
	px[0], py[0], pz[0] = 1, 1, 1
	for i := 1; i <= D; i++ {
		px[i] = px[i-1] * p.X
		py[i] = py[i-1] * p.Y
		pz[i] = pz[i-1] * p.Z
	}
	d1 := D + 1
	for n := 0; n <= D; n++ {
		wx := w * px[n]
		for m := 0; n+m <= D; m++ {
			wxy := wx * py[m]
			base := (n*d1 + m) * d1
			for l := 0; n+m+l <= D; l++ {
				mt.data[base+l] += wxy * pz[l]
			}
		}
	}
}

// VolumeIntegrals integrates every monomial up to maxDegree over the union of
// tets after mapping them into frame. The tetrahedron rule is chosen so the
// result is exact for that degree.
func VolumeIntegrals(tets []Tet, frame Frame, maxDegree int) (mt MomentTable) {
	var (
		rule       = quadrature.TetrahedronRule(maxDegree)
		px, py, pz = make([]float64, maxDegree+1), make([]float64, maxDegree+1), make([]float64, maxDegree+1)
	)
	mt = NewMomentTable(maxDegree)
	for _, tet := range tets {
		var ref Tet
		for i, v := range tet {
			ref[i] = frame.TransformPoint(v)
		}
		detE := 6. * ref.Volume()
		if detE == 0 {
			continue
		}
		e1, e2, e3 := r3.Sub(ref[1], ref[0]), r3.Sub(ref[2], ref[0]), r3.Sub(ref[3], ref[0])
		for q, w := range rule.W {
			p := r3.Add(ref[0], r3.Add(r3.Scale(rule.R[q], e1),
				r3.Add(r3.Scale(rule.S[q], e2), r3.Scale(rule.T[q], e3))))
			mt.accumulate(w*detE, p, px, py, pz)
		}
	}
	return
}

// FaceIntegrals integrates every monomial up to maxDegree over a face. The
// integrand is evaluated in frame while the measure is the physical area, so
// that Mean returns physical face averages of the reference monomials.
func FaceIntegrals(loop []r3.Vec, frame Frame, maxDegree int) (mt MomentTable, err error) {
	if maxDegree > quadrature.TriangleRuleDegree {
		err = fmt.Errorf("face moments of degree %d exceed the exact rule degree %d",
			maxDegree, quadrature.TriangleRuleDegree)
		return
	}
	tris := FaceTriangles(loop)
	if len(tris) == 0 {
		err = fmt.Errorf("%w: face with %d vertices", ErrDegenerateGeometry, len(loop))
		return
	}
	px, py, pz := make([]float64, maxDegree+1), make([]float64, maxDegree+1), make([]float64, maxDegree+1)
	mt = NewMomentTable(maxDegree)
	for _, t := range tris {
		area := TriangleArea(t[0], t[1], t[2])
		if area == 0 {
			continue
		}
		a, b, c := frame.TransformPoint(t[0]), frame.TransformPoint(t[1]), frame.TransformPoint(t[2])
		for _, qp := range quadrature.TriangleRule {
			p := r3.Add(r3.Scale(qp.L1, a), r3.Add(r3.Scale(qp.L2, b), r3.Scale(qp.L3, c)))
			mt.accumulate(area*qp.W, p, px, py, pz)
		}
	}
	if mt.Measure() == 0 {
		err = fmt.Errorf("%w: face has zero area", ErrDegenerateGeometry)
	}
	return
}
