package weno

import "fmt"

type StencilKind uint8

const (
	STENCIL_Central StencilKind = iota
	STENCIL_Sector
)

func (sk StencilKind) String() string {
	switch sk {
	case STENCIL_Central:
		return "central"
	case STENCIL_Sector:
		return "sector"
	}
	return fmt.Sprintf("StencilKind(%d)", uint8(sk))
}

// Stencil is an ordered list of neighbour cells of an owner cell. The owner
// itself is never part of Cells. A positive Weight overrides the configured
// ideal linear weight for the stencil kind.
type Stencil struct {
	Cells  []int
	Kind   StencilKind
	Weight float64
}

// StaticStencils serves a fixed stencil list per cell.
type StaticStencils [][]Stencil

func (ss StaticStencils) Stencils(cell int) []Stencil { return ss[cell] }
