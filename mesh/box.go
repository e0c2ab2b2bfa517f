package mesh

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/goweno/geometry"
)

// kuhnPaths are the six axis orderings walking from corner 000 to corner 111
// of a hexahedron, each path spans one tetrahedron.
var kuhnPaths = [6][3]int{{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0}}

type boxGrid struct {
	nx, ny, nz int
	lo, hi     r3.Vec
}

func newBoxGrid(nx, ny, nz int, lo, hi r3.Vec) (bg boxGrid, err error) {
	if nx < 1 || ny < 1 || nz < 1 {
		err = fmt.Errorf("box needs at least one cell per direction, have %dx%dx%d", nx, ny, nz)
		return
	}
	if !(hi.X > lo.X && hi.Y > lo.Y && hi.Z > lo.Z) {
		err = fmt.Errorf("empty box %v - %v", lo, hi)
		return
	}
	bg = boxGrid{nx: nx, ny: ny, nz: nz, lo: lo, hi: hi}
	return
}

func (bg boxGrid) vertex(i, j, k int) int {
	return i + (bg.nx+1)*(j+(bg.ny+1)*k)
}

func (bg boxGrid) addVertices(m *Mesh) {
	d := r3.Sub(bg.hi, bg.lo)
	for k := 0; k <= bg.nz; k++ {
		for j := 0; j <= bg.ny; j++ {
			for i := 0; i <= bg.nx; i++ {
				m.AddNode(bg.vertex(i, j, k), r3.Vec{
					X: bg.lo.X + d.X*float64(i)/float64(bg.nx),
					Y: bg.lo.Y + d.Y*float64(j)/float64(bg.ny),
					Z: bg.lo.Z + d.Z*float64(k)/float64(bg.nz),
				})
			}
		}
	}
}

// hexVertices returns the Gmsh ordered corners of cell (i,j,k).
func (bg boxGrid) hexVertices(i, j, k int) []int {
	return []int{
		bg.vertex(i, j, k), bg.vertex(i+1, j, k), bg.vertex(i+1, j+1, k), bg.vertex(i, j+1, k),
		bg.vertex(i, j, k+1), bg.vertex(i+1, j, k+1), bg.vertex(i+1, j+1, k+1), bg.vertex(i, j+1, k+1),
	}
}

// NewHexBoxMesh meshes the box [lo,hi] with nx*ny*nz hexahedra.
func NewHexBoxMesh(nx, ny, nz int, lo, hi r3.Vec) (*Mesh, error) {
	bg, err := newBoxGrid(nx, ny, nz, lo, hi)
	if err != nil {
		return nil, err
	}
	m := NewMesh()
	m.FormatVersion = "box"
	bg.addVertices(m)
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				if err = m.AddElement(m.NumElements+1, Hex, nil, bg.hexVertices(i, j, k)); err != nil {
					return nil, err
				}
			}
		}
	}
	if err = m.BuildConnectivity(); err != nil {
		return nil, err
	}
	return m, nil
}

// NewBoxMesh meshes the box [lo,hi] with nx*ny*nz hexahedra each split into
// six tetrahedra along the main diagonal. Every cell uses the same split so
// the tetrahedra are conforming across cells.
func NewBoxMesh(nx, ny, nz int, lo, hi r3.Vec) (*Mesh, error) {
	bg, err := newBoxGrid(nx, ny, nz, lo, hi)
	if err != nil {
		return nil, err
	}
	m := NewMesh()
	m.FormatVersion = "box"
	bg.addVertices(m)
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				for _, path := range kuhnPaths {
					var (
						c     = [3]int{i, j, k}
						tet   = make([]int, 4)
						verts [4]r3.Vec
					)
					tet[0] = bg.vertex(c[0], c[1], c[2])
					for s, axis := range path {
						c[axis]++
						tet[s+1] = bg.vertex(c[0], c[1], c[2])
					}
					for n, v := range tet {
						verts[n] = m.Vertices[m.NodeIDMap[v]]
					}
					if geometry.Tet(verts).SignedVolume() < 0 {
						tet[1], tet[2] = tet[2], tet[1]
					}
					if err = m.AddElement(m.NumElements+1, Tet, nil, tet); err != nil {
						return nil, err
					}
				}
			}
		}
	}
	if err = m.BuildConnectivity(); err != nil {
		return nil, err
	}
	return m, nil
}
