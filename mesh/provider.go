package mesh

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/goweno/geometry"
	"github.com/notargets/goweno/quadrature"
	"github.com/notargets/goweno/weno"
)

// Provider serves the geometry of a Mesh to the reconstruction. All
// quantities are computed once by NewProvider.
type Provider struct {
	Mesh    *Mesh
	centres []r3.Vec
	volumes []float64
	tets    [][]geometry.Tet
	frames  [][4]r3.Vec
	faces   []weno.FaceInfo
}

func NewProvider(m *Mesh) (p *Provider, err error) {
	if m.EToF == nil {
		if err = m.BuildConnectivity(); err != nil {
			return
		}
	}
	K := m.NumElements
	p = &Provider{
		Mesh:    m,
		centres: make([]r3.Vec, K),
		volumes: make([]float64, K),
		tets:    make([][]geometry.Tet, K),
		frames:  make([][4]r3.Vec, K),
		faces:   make([]weno.FaceInfo, m.NumFaces),
	}
	for k := 0; k < K; k++ {
		verts := m.Elements[k]
		if m.ElementTypes[k] == Tet {
			p.tets[k] = []geometry.Tet{{
				m.Vertices[verts[0]], m.Vertices[verts[1]], m.Vertices[verts[2]], m.Vertices[verts[3]],
			}}
		} else {
			var (
				pts   = make([]r3.Vec, len(verts))
				loops [][]r3.Vec
			)
			for i, v := range verts {
				pts[i] = m.Vertices[v]
			}
			for _, fv := range GetElementFaces(m.ElementTypes[k], verts) {
				loops = append(loops, p.loop(fv))
			}
			p.tets[k] = geometry.DecomposeCell(geometry.Centroid(pts), loops)
		}
		p.volumes[k], p.centres[k] = geometry.VolumeCentroid(p.tets[k])
		if !(p.volumes[k] > 0) {
			return nil, fmt.Errorf("element %d has zero volume", k)
		}
		for i, v := range frameVertices(m.ElementTypes[k], verts) {
			p.frames[k][i] = m.Vertices[v]
		}
	}
	for f, face := range m.Faces {
		loop := p.loop(face.Vertices)
		p.faces[f] = weno.FaceInfo{
			Loop:          loop,
			Owner:         face.Owner,
			Neighbour:     face.Neighbour,
			Area:          geometry.AreaVector(loop),
			CoupledDomain: -1,
			CoupledFace:   -1,
		}
	}
	return
}

func (p *Provider) loop(verts []int) (loop []r3.Vec) {
	loop = make([]r3.Vec, len(verts))
	for i, v := range verts {
		loop[i] = p.Mesh.Vertices[v]
	}
	return
}

func (p *Provider) NumCells() int                      { return len(p.centres) }
func (p *Provider) NumFaces() int                      { return len(p.faces) }
func (p *Provider) CellCentre(cell int) r3.Vec         { return p.centres[cell] }
func (p *Provider) CellVolume(cell int) float64        { return p.volumes[cell] }
func (p *Provider) CellFramePoints(cell int) [4]r3.Vec { return p.frames[cell] }
func (p *Provider) CellTets(cell int) []geometry.Tet   { return p.tets[cell] }
func (p *Provider) CellFaces(cell int) []int           { return p.Mesh.EToF[cell] }
func (p *Provider) Face(face int) weno.FaceInfo        { return p.faces[face] }

// BoundaryName returns the boundary tag of a face, empty when untagged.
func (p *Provider) BoundaryName(face int) string { return p.Mesh.BoundaryTags[face] }

// Couple turns face into a face coupled to peerFace on domain. With
// asNeighbour set the local side is the face's former neighbour, the loop and
// area vector are flipped to stay outward from it.
func (p *Provider) Couple(face, domain, peerFace int, asNeighbour bool) error {
	if face < 0 || face >= len(p.faces) {
		return fmt.Errorf("face %d out of range", face)
	}
	fi := p.faces[face]
	if asNeighbour {
		if fi.Neighbour < 0 {
			return fmt.Errorf("boundary face %d has no neighbour side", face)
		}
		fi.Owner = fi.Neighbour
		loop := make([]r3.Vec, len(fi.Loop))
		for i, v := range fi.Loop {
			loop[len(loop)-1-i] = v
		}
		fi.Loop = loop
		fi.Area = r3.Scale(-1, fi.Area)
	}
	fi.Neighbour, fi.CoupledDomain, fi.CoupledFace = -1, domain, peerFace
	p.faces[face] = fi
	return nil
}

// CellAverage integrates f over a cell with a tetrahedral rule exact to the
// given degree and divides by the volume.
func (p *Provider) CellAverage(cell int, f func(x r3.Vec) float64, degree int) float64 {
	var (
		rule = quadrature.TetrahedronRule(degree)
		sum  float64
	)
	for _, t := range p.tets[cell] {
		var (
			detJ       = 6 * t.Volume()
			e1, e2, e3 = r3.Sub(t[1], t[0]), r3.Sub(t[2], t[0]), r3.Sub(t[3], t[0])
		)
		sum += detJ * rule.Integrate(func(r, s, u float64) float64 {
			return f(r3.Add(t[0], r3.Add(r3.Scale(r, e1), r3.Add(r3.Scale(s, e2), r3.Scale(u, e3)))))
		})
	}
	return sum / p.volumes[cell]
}

// CellAverages evaluates CellAverage for every cell.
func (p *Provider) CellAverages(f func(x r3.Vec) float64, degree int) (u []float64) {
	u = make([]float64, p.NumCells())
	for k := range u {
		u[k] = p.CellAverage(k, f, degree)
	}
	return
}

// FaceAverage integrates f over a face with the degree 7 triangle rule.
func (p *Provider) FaceAverage(face int, f func(x r3.Vec) float64) float64 {
	var sum, area float64
	for _, t := range geometry.FaceTriangles(p.faces[face].Loop) {
		a := geometry.TriangleArea(t[0], t[1], t[2])
		area += a
		for _, q := range quadrature.TriangleRule {
			x := r3.Add(r3.Add(r3.Scale(q.L1, t[0]), r3.Scale(q.L2, t[1])), r3.Scale(q.L3, t[2]))
			sum += a * q.W * f(x)
		}
	}
	return sum / area
}
