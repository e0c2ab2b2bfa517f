package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Tet is a tetrahedron given by its four vertices.
type Tet [4]r3.Vec

// SignedVolume is positive for a right handed vertex ordering.
func (t Tet) SignedVolume() float64 {
	a := r3.Sub(t[1], t[0])
	b := r3.Sub(t[2], t[0])
	c := r3.Sub(t[3], t[0])
	return r3.Dot(a, r3.Cross(b, c)) / 6.
}

func (t Tet) Volume() float64 { return math.Abs(t.SignedVolume()) }

// Centroid of a point set.
func Centroid(pts []r3.Vec) (c r3.Vec) {
	if len(pts) == 0 {
		return
	}
	for _, p := range pts {
		c = r3.Add(c, p)
	}
	return r3.Scale(1./float64(len(pts)), c)
}

// FaceTriangles splits a face loop into triangles. Triangles are kept as is,
// larger polygons are fanned about the vertex centroid.
func FaceTriangles(loop []r3.Vec) (tris [][3]r3.Vec) {
	switch {
	case len(loop) < 3:
		return nil
	case len(loop) == 3:
		return [][3]r3.Vec{{loop[0], loop[1], loop[2]}}
	}
	c := Centroid(loop)
	for i := range loop {
		tris = append(tris, [3]r3.Vec{c, loop[i], loop[(i+1)%len(loop)]})
	}
	return
}

// TriangleArea is the area of the triangle abc.
func TriangleArea(a, b, c r3.Vec) float64 {
	return 0.5 * r3.Norm(r3.Cross(r3.Sub(b, a), r3.Sub(c, a)))
}

// AreaVector is the face normal scaled by the face area, oriented by the
// right hand rule on the loop ordering.
func AreaVector(loop []r3.Vec) (s r3.Vec) {
	for _, t := range FaceTriangles(loop) {
		s = r3.Add(s, r3.Scale(0.5, r3.Cross(r3.Sub(t[1], t[0]), r3.Sub(t[2], t[0]))))
	}
	return
}

// FaceCentre is the area weighted centroid of the face triangles.
func FaceCentre(loop []r3.Vec) (c r3.Vec) {
	var area float64
	for _, t := range FaceTriangles(loop) {
		a := TriangleArea(t[0], t[1], t[2])
		c = r3.Add(c, r3.Scale(a/3., r3.Add(t[0], r3.Add(t[1], t[2]))))
		area += a
	}
	if area == 0 {
		return Centroid(loop)
	}
	return r3.Scale(1./area, c)
}

// DecomposeCell splits a polyhedron into tetrahedra formed by each face
// triangle and the point centre, which must lie inside the cell.
func DecomposeCell(centre r3.Vec, faces [][]r3.Vec) (tets []Tet) {
	for _, f := range faces {
		for _, t := range FaceTriangles(f) {
			tets = append(tets, Tet{centre, t[0], t[1], t[2]})
		}
	}
	return
}

// VolumeCentroid returns the volume and centroid of a tetrahedral
// decomposition.
func VolumeCentroid(tets []Tet) (vol float64, c r3.Vec) {
	for _, t := range tets {
		v := t.Volume()
		vol += v
		c = r3.Add(c, r3.Scale(v/4., r3.Add(r3.Add(t[0], t[1]), r3.Add(t[2], t[3]))))
	}
	if vol > 0 {
		c = r3.Scale(1./vol, c)
	}
	return
}
