package weno

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/goweno/geometry"
)

var unitTet = geometry.Tet{{}, {X: 1}, {Y: 1}, {Z: 1}}

func shifted(t geometry.Tet, d r3.Vec) (s geometry.Tet) {
	for i, v := range t {
		s[i] = r3.Add(v, d)
	}
	return
}

// tetCells is a provider over disconnected tetrahedra, every cell face is a
// boundary face.
type tetCells []geometry.Tet

var tetFaceVerts = [4][3]int{{0, 2, 1}, {0, 1, 3}, {1, 2, 3}, {0, 3, 2}}

func (tc tetCells) NumCells() int { return len(tc) }
func (tc tetCells) NumFaces() int { return 4 * len(tc) }
func (tc tetCells) CellCentre(cell int) r3.Vec {
	_, c := geometry.VolumeCentroid(tc.CellTets(cell))
	return c
}
func (tc tetCells) CellVolume(cell int) float64        { return tc[cell].Volume() }
func (tc tetCells) CellFramePoints(cell int) [4]r3.Vec { return [4]r3.Vec(tc[cell]) }
func (tc tetCells) CellTets(cell int) []geometry.Tet   { return []geometry.Tet{tc[cell]} }
func (tc tetCells) CellFaces(cell int) []int {
	return []int{4 * cell, 4*cell + 1, 4*cell + 2, 4*cell + 3}
}
func (tc tetCells) Face(face int) FaceInfo {
	var (
		k    = face / 4
		fv   = tetFaceVerts[face%4]
		loop = []r3.Vec{tc[k][fv[0]], tc[k][fv[1]], tc[k][fv[2]]}
	)
	return FaceInfo{
		Loop:          loop,
		Owner:         k,
		Neighbour:     -1,
		Area:          geometry.AreaVector(loop),
		CoupledDomain: -1,
		CoupledFace:   -1,
	}
}

// offsetCells returns the unit tet followed by copies shifted by offsets.
func offsetCells(offsets ...r3.Vec) tetCells {
	tc := tetCells{unitTet}
	for _, d := range offsets {
		tc = append(tc, shifted(unitTet, d))
	}
	return tc
}

// allOthers gives every cell one central stencil made of all other cells.
func allOthers(K int) StaticStencils {
	ss := make(StaticStencils, K)
	for k := range ss {
		var cells []int
		for j := 0; j < K; j++ {
			if j != k {
				cells = append(cells, j)
			}
		}
		ss[k] = []Stencil{{Cells: cells}}
	}
	return ss
}

func latticeOffsets(n int) (offsets []r3.Vec) {
	for i := -1; i <= 1; i++ {
		for j := -1; j <= 1; j++ {
			for k := -1; k <= 1; k++ {
				if i == 0 && j == 0 && k == 0 {
					continue
				}
				offsets = append(offsets, r3.Vec{X: float64(i), Y: float64(j), Z: float64(k)})
				if len(offsets) == n {
					return
				}
			}
		}
	}
	return
}
