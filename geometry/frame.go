// Package geometry maps cells into a local reference frame and computes
// exact monomial moment integrals over cells and faces in that frame.
package geometry

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrDegenerateGeometry is returned when a frame or cell has a near zero
// Jacobian determinant relative to its size.
var ErrDegenerateGeometry = errors.New("geometry: degenerate cell")

// Frame is the affine map x = X0 + J xi between physical and reference space.
type Frame struct {
	J, JInv [3][3]float64
	X0      r3.Vec
	DetJ    float64
}

// IdentityFrame maps every point to itself.
func IdentityFrame() Frame {
	I := [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	return Frame{J: I, JInv: I, DetJ: 1}
}

// Jacobian has the edge vectors x1-x0, x2-x0 and x3-x0 as its columns.
func Jacobian(x0, x1, x2, x3 r3.Vec) (J [3][3]float64) {
	for j, x := range [3]r3.Vec{x1, x2, x3} {
		e := r3.Sub(x, x0)
		J[0][j], J[1][j], J[2][j] = e.X, e.Y, e.Z
	}
	return
}

// JacobiInverse inverts a 3x3 matrix through its adjugate.
func JacobiInverse(J [3][3]float64) (JInv [3][3]float64, det float64) {
	// cofactors of the first row
	c00 := J[1][1]*J[2][2] - J[1][2]*J[2][1]
	c01 := J[1][2]*J[2][0] - J[1][0]*J[2][2]
	c02 := J[1][0]*J[2][1] - J[1][1]*J[2][0]
	det = J[0][0]*c00 + J[0][1]*c01 + J[0][2]*c02
	if det == 0 {
		return
	}
	inv := 1. / det
	JInv[0][0] = c00 * inv
	JInv[1][0] = c01 * inv
	JInv[2][0] = c02 * inv
	JInv[0][1] = (J[0][2]*J[2][1] - J[0][1]*J[2][2]) * inv
	JInv[1][1] = (J[0][0]*J[2][2] - J[0][2]*J[2][0]) * inv
	JInv[2][1] = (J[0][1]*J[2][0] - J[0][0]*J[2][1]) * inv
	JInv[0][2] = (J[0][1]*J[1][2] - J[0][2]*J[1][1]) * inv
	JInv[1][2] = (J[0][2]*J[1][0] - J[0][0]*J[1][2]) * inv
	JInv[2][2] = (J[0][0]*J[1][1] - J[0][1]*J[1][0]) * inv
	return
}

// NewFrame builds the frame spanned by four points. The frame is rejected
// when |det J| < eps * L^3, L being the longest edge leaving x0.
func NewFrame(x0, x1, x2, x3 r3.Vec, eps float64) (f Frame, err error) {
	f.X0 = x0
	f.J = Jacobian(x0, x1, x2, x3)
	f.JInv, f.DetJ = JacobiInverse(f.J)
	var L float64
	for _, x := range [3]r3.Vec{x1, x2, x3} {
		L = math.Max(L, r3.Norm(r3.Sub(x, x0)))
	}
	if L == 0 || math.Abs(f.DetJ) < eps*L*L*L {
		err = fmt.Errorf("%w: |det J| = %g for edge length %g", ErrDegenerateGeometry, math.Abs(f.DetJ), L)
	}
	return
}

func mul(A [3][3]float64, v r3.Vec) r3.Vec {
	return r3.Vec{
		X: A[0][0]*v.X + A[0][1]*v.Y + A[0][2]*v.Z,
		Y: A[1][0]*v.X + A[1][1]*v.Y + A[1][2]*v.Z,
		Z: A[2][0]*v.X + A[2][1]*v.Y + A[2][2]*v.Z,
	}
}

// TransformPoint maps a physical point into reference coordinates,
// xi = JInv (x - X0).
func (f Frame) TransformPoint(x r3.Vec) r3.Vec {
	return mul(f.JInv, r3.Sub(x, f.X0))
}

// InverseTransformPoint maps reference coordinates back to physical space.
func (f Frame) InverseTransformPoint(xi r3.Vec) r3.Vec {
	return r3.Add(f.X0, mul(f.J, xi))
}

// PhysicalGradient converts a gradient taken with respect to reference
// coordinates into a physical gradient, grad_x = JInv^T grad_xi.
func (f Frame) PhysicalGradient(g r3.Vec) r3.Vec {
	var JT [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			JT[i][j] = f.JInv[j][i]
		}
	}
	return mul(JT, g)
}
