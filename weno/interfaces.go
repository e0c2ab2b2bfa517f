// Package weno reconstructs high order polynomials of cell averaged fields
// on unstructured meshes with a weighted essentially non-oscillatory blend
// of least squares fits over several candidate stencils.
//
// The work is split into a geometry phase, done once per mesh by
// NewGeometryCache, and a reconstruction phase, done for every field update by
// Reconstructor.Reconstruct. Mesh storage, the host field and inter-domain
// exchange are collaborators behind the interfaces in this file.
package weno

import (
	"context"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/goweno/geometry"
)

// FaceInfo describes one mesh face. Neighbour is -1 on boundary and coupled
// faces, CoupledDomain is -1 unless the face is shared with another domain.
type FaceInfo struct {
	Loop          []r3.Vec
	Owner         int
	Neighbour     int
	Area          r3.Vec // outward from Owner, magnitude is the face area
	CoupledDomain int
	CoupledFace   int // face index on the coupled domain
}

func (fi FaceInfo) IsCoupled() bool  { return fi.CoupledDomain >= 0 }
func (fi FaceInfo) IsBoundary() bool { return fi.Neighbour < 0 && fi.CoupledDomain < 0 }

// GeometryProvider supplies the geometric primitives of a mesh.
type GeometryProvider interface {
	NumCells() int
	NumFaces() int
	CellCentre(cell int) r3.Vec
	CellVolume(cell int) float64
	// CellFramePoints returns four cell points spanning the reference frame.
	CellFramePoints(cell int) [4]r3.Vec
	// CellTets is a tetrahedral decomposition of the cell.
	CellTets(cell int) []geometry.Tet
	CellFaces(cell int) []int
	Face(face int) FaceInfo
}

// FieldSampler gives O(1) access to cell averaged field components.
type FieldSampler interface {
	NumComponents() int
	Value(cell, component int) float64
}

// StencilProvider lists the candidate stencils of a cell.
type StencilProvider interface {
	Stencils(cell int) []Stencil
}

// CoupledValue carries the reconstructed face value of a coupled face from
// the domain that owns Face to the domain that owns PeerFace.
type CoupledValue struct {
	Domain, Face         int
	PeerDomain, PeerFace int
	Values               []float64 // per component, face average from the sending side
	Means                []float64 // per component, cell average of the sending cell
}

// Coupler exchanges coupled face values with neighbouring domains. Exchange
// blocks until every peer referenced in out has delivered its values.
type Coupler interface {
	Exchange(ctx context.Context, fieldID string, out []CoupledValue) ([]CoupledValue, error)
}

// ScalarField is a FieldSampler over a single component.
type ScalarField []float64

func (sf ScalarField) NumComponents() int        { return 1 }
func (sf ScalarField) Value(cell, _ int) float64 { return sf[cell] }

// ComponentField stores each component as a slice over cells.
type ComponentField [][]float64

func (cf ComponentField) NumComponents() int                { return len(cf) }
func (cf ComponentField) Value(cell, component int) float64 { return cf[component][cell] }
