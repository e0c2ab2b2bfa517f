package weno

import (
	"errors"
	"fmt"

	"github.com/notargets/goweno/geometry"
)

var (
	// ErrDegenerateGeometry marks a near zero Jacobian or volume.
	ErrDegenerateGeometry = geometry.ErrDegenerateGeometry
	// ErrRankDeficientStencil marks a numerically singular fit system.
	ErrRankDeficientStencil = errors.New("weno: rank deficient stencil")
	// ErrInsufficientStencilSize marks a stencil with fewer members than
	// basis functions.
	ErrInsufficientStencilSize = errors.New("weno: stencil smaller than the basis")
	// ErrInvalidConfiguration marks unusable configuration values.
	ErrInvalidConfiguration = errors.New("weno: invalid configuration")
	// ErrCouplingPending is returned when a coupled face is evaluated before
	// the neighbouring domain delivered its values.
	ErrCouplingPending = errors.New("weno: coupled face values not exchanged")
	// ErrUnknownField is returned for a field id that was never reconstructed.
	ErrUnknownField = errors.New("weno: unknown field")
	// ErrGeometryChanged is returned by Reconstruct when Refresh replaced the
	// geometry cache while the field was being reconstructed.
	ErrGeometryChanged = errors.New("weno: geometry cache rebuilt during reconstruction")
)

// CellError records a recovered, cell local failure. Stencil and Face are -1
// when the failure is not tied to one of them.
type CellError struct {
	Cell    int
	Stencil int
	Face    int
	Order   int // order being built when the failure occurred
	Err     error
}

func (ce *CellError) Error() string {
	switch {
	case ce.Stencil >= 0:
		return fmt.Sprintf("cell %d stencil %d: %v", ce.Cell, ce.Stencil, ce.Err)
	case ce.Face >= 0:
		return fmt.Sprintf("cell %d face %d: %v", ce.Cell, ce.Face, ce.Err)
	}
	return fmt.Sprintf("cell %d: %v", ce.Cell, ce.Err)
}

func (ce *CellError) Unwrap() error { return ce.Err }
