package quadrature

// TrianglePoint is a quadrature point in barycentric coordinates.
type TrianglePoint struct {
	L1, L2, L3 float64
	W          float64 // weights sum to one
}

// TriangleRule is the 13 point rule of Dunavant (1985), exact for polynomials
// up to degree 7 on any triangle. Weights are normalised to sum to one, so the
// integral over a triangle of area A is A * sum(W * f).
var TriangleRule = func() (pts []TrianglePoint) {
	const (
		w0 = -0.149570044467682
		a1 = 0.479308067841920
		b1 = 0.260345966079040
		w1 = 0.175615257433208
		a2 = 0.869739794195568
		b2 = 0.065130102902216
		w2 = 0.053347235608838
		a3 = 0.048690315425316
		b3 = 0.312865496004874
		c3 = 0.638444188569810
		w3 = 0.077113760890257
	)
	pts = append(pts, TrianglePoint{1. / 3., 1. / 3., 1. / 3., w0})
	for _, p := range [][3]float64{{a1, b1, b1}, {b1, a1, b1}, {b1, b1, a1}} {
		pts = append(pts, TrianglePoint{p[0], p[1], p[2], w1})
	}
	for _, p := range [][3]float64{{a2, b2, b2}, {b2, a2, b2}, {b2, b2, a2}} {
		pts = append(pts, TrianglePoint{p[0], p[1], p[2], w2})
	}
	for _, p := range [][3]float64{
		{a3, b3, c3}, {a3, c3, b3}, {b3, a3, c3},
		{b3, c3, a3}, {c3, a3, b3}, {c3, b3, a3},
	} {
		pts = append(pts, TrianglePoint{p[0], p[1], p[2], w3})
	}
	return
}()

// TriangleRuleDegree is the polynomial degree integrated exactly by TriangleRule.
const TriangleRuleDegree = 7

// IntegrateUnitTriangle integrates f over the triangle (0,0), (1,0), (0,1).
func IntegrateUnitTriangle(f func(x, y float64) float64) (sum float64) {
	for _, p := range TriangleRule {
		sum += p.W * f(p.L2, p.L3)
	}
	return 0.5 * sum
}
