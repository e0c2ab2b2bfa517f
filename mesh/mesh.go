// Package mesh provides unstructured 3D meshes for reconstruction: element
// connectivity, a Gmsh 2.2 reader, structured box generators and a geometry
// provider for the weno package.
package mesh

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// ElementType represents different element types
type ElementType int

const (
	Line ElementType = iota
	Triangle
	Quad
	Tet
	Hex
	Prism
	Pyramid
)

func (e ElementType) String() string {
	return [...]string{"Line", "Triangle", "Quad", "Tet", "Hex", "Prism", "Pyramid"}[e]
}

func (e ElementType) Dimension() int {
	switch e {
	case Line:
		return 1
	case Triangle, Quad:
		return 2
	}
	return 3
}

func (e ElementType) NumNodes() int {
	return [...]int{2, 3, 4, 4, 8, 6, 5}[e]
}

// Face is a unique mesh face. Vertices are ordered outward from Owner.
type Face struct {
	Vertices       []int
	Owner          int
	OwnerLocal     int
	Neighbour      int // -1 on the boundary
	NeighbourLocal int
}

// Mesh represents a complete unstructured mesh with all connectivity
type Mesh struct {
	// Geometry
	Vertices []r3.Vec

	// Element data
	Elements     [][]int       // Element to vertex connectivity [nelems][nverts_per_elem]
	ElementTypes []ElementType // Element type for each element
	ElementTags  [][]int       // Tags for each element, physical group first

	// Connectivity (built during initialization)
	EToE [][]int // Element to element connectivity [nelems][nfaces_per_elem]
	EToF [][]int // Element to face connectivity [nelems][nfaces_per_elem]

	// Face data
	Faces        []Face         // All unique faces in mesh
	FaceMap      map[string]int // Map from sorted vertex string to face ID
	BoundaryTags map[int]string // Face ID to boundary name

	// Input data
	FormatVersion    string
	NodeIDMap        map[int]int        // file node id to vertex index
	ElementIDs       []int              // file element id per element
	PhysicalNames    map[int]string     // physical tag to name
	BoundaryElements map[string][][]int // boundary name to vertex lists

	// Mesh statistics
	NumElements int
	NumVertices int
	NumFaces    int
}

// NewMesh creates an empty mesh
func NewMesh() *Mesh {
	return &Mesh{
		FaceMap:          make(map[string]int),
		BoundaryTags:     make(map[int]string),
		NodeIDMap:        make(map[int]int),
		PhysicalNames:    make(map[int]string),
		BoundaryElements: make(map[string][][]int),
	}
}

// ReadMeshFile reads a mesh file based on extension
func ReadMeshFile(filename string) (*Mesh, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".msh":
		return ReadGmsh22(filename)
	default:
		return nil, fmt.Errorf("unsupported mesh format: %s", ext)
	}
}

func (m *Mesh) AddNode(nodeID int, x r3.Vec) {
	m.NodeIDMap[nodeID] = len(m.Vertices)
	m.Vertices = append(m.Vertices, x)
	m.NumVertices = len(m.Vertices)
}

func (m *Mesh) GetNodeIndex(nodeID int) (idx int, ok bool) {
	idx, ok = m.NodeIDMap[nodeID]
	return
}

// AddElement appends a volume element given by file node ids.
func (m *Mesh) AddElement(elemID int, etype ElementType, tags, nodeIDs []int) error {
	if etype.Dimension() != 3 {
		return fmt.Errorf("element %d: %s is not a volume element", elemID, etype)
	}
	if len(nodeIDs) != etype.NumNodes() {
		return fmt.Errorf("element %d: %s needs %d nodes, got %d",
			elemID, etype, etype.NumNodes(), len(nodeIDs))
	}
	verts := make([]int, len(nodeIDs))
	for i, id := range nodeIDs {
		idx, ok := m.GetNodeIndex(id)
		if !ok {
			return fmt.Errorf("element %d references unknown node %d", elemID, id)
		}
		verts[i] = idx
	}
	m.Elements = append(m.Elements, verts)
	m.ElementTypes = append(m.ElementTypes, etype)
	m.ElementTags = append(m.ElementTags, tags)
	m.ElementIDs = append(m.ElementIDs, elemID)
	m.NumElements = len(m.Elements)
	return nil
}

func (m *Mesh) AddBoundaryElement(name string, verts []int) {
	m.BoundaryElements[name] = append(m.BoundaryElements[name], verts)
}

func faceKey(verts []int) string {
	sorted := make([]int, len(verts))
	copy(sorted, verts)
	sort.Ints(sorted)
	return fmt.Sprintf("%v", sorted)
}

// BuildConnectivity builds element-to-element and face connectivity
func (m *Mesh) BuildConnectivity() error {
	m.EToE = make([][]int, m.NumElements)
	m.EToF = make([][]int, m.NumElements)
	m.Faces = m.Faces[:0]
	m.FaceMap = make(map[string]int)

	for elemID := 0; elemID < m.NumElements; elemID++ {
		faceVertices := GetElementFaces(m.ElementTypes[elemID], m.Elements[elemID])

		m.EToE[elemID] = make([]int, len(faceVertices))
		m.EToF[elemID] = make([]int, len(faceVertices))

		for localFaceID, faceVerts := range faceVertices {
			m.EToE[elemID][localFaceID] = -1
			key := faceKey(faceVerts)

			if faceID, exists := m.FaceMap[key]; exists {
				// Face already exists - this is an interior face
				face := &m.Faces[faceID]
				if face.Neighbour >= 0 {
					return fmt.Errorf("face %v shared by more than two elements", face.Vertices)
				}
				face.Neighbour, face.NeighbourLocal = elemID, localFaceID

				m.EToE[elemID][localFaceID] = face.Owner
				m.EToE[face.Owner][face.OwnerLocal] = elemID
				m.EToF[elemID][localFaceID] = faceID
			} else {
				faceID := len(m.Faces)
				m.Faces = append(m.Faces, Face{
					Vertices:       faceVerts,
					Owner:          elemID,
					OwnerLocal:     localFaceID,
					Neighbour:      -1,
					NeighbourLocal: -1,
				})
				m.FaceMap[key] = faceID
				m.EToF[elemID][localFaceID] = faceID
			}
		}
	}
	m.NumFaces = len(m.Faces)
	m.tagBoundaries()
	return nil
}

func (m *Mesh) tagBoundaries() {
	m.BoundaryTags = make(map[int]string)
	for name, elems := range m.BoundaryElements {
		for _, verts := range elems {
			if faceID, ok := m.FaceMap[faceKey(verts)]; ok && m.Faces[faceID].Neighbour < 0 {
				m.BoundaryTags[faceID] = name
			}
		}
	}
}

// GetElementFaces returns the face vertices for each element type, ordered
// outward for a positively oriented element
func GetElementFaces(elemType ElementType, vertices []int) [][]int {
	switch elemType {
	case Tet:
		return [][]int{
			{vertices[0], vertices[2], vertices[1]}, // Face 0
			{vertices[0], vertices[1], vertices[3]}, // Face 1
			{vertices[1], vertices[2], vertices[3]}, // Face 2
			{vertices[0], vertices[3], vertices[2]}, // Face 3
		}
	case Hex:
		return [][]int{
			{vertices[0], vertices[3], vertices[2], vertices[1]}, // Face 0 (bottom)
			{vertices[4], vertices[5], vertices[6], vertices[7]}, // Face 1 (top)
			{vertices[0], vertices[1], vertices[5], vertices[4]}, // Face 2
			{vertices[1], vertices[2], vertices[6], vertices[5]}, // Face 3
			{vertices[2], vertices[3], vertices[7], vertices[6]}, // Face 4
			{vertices[3], vertices[0], vertices[4], vertices[7]}, // Face 5
		}
	case Prism:
		return [][]int{
			{vertices[0], vertices[2], vertices[1]},              // Face 0 (bottom tri)
			{vertices[3], vertices[4], vertices[5]},              // Face 1 (top tri)
			{vertices[0], vertices[1], vertices[4], vertices[3]}, // Face 2 (quad)
			{vertices[1], vertices[2], vertices[5], vertices[4]}, // Face 3 (quad)
			{vertices[2], vertices[0], vertices[3], vertices[5]}, // Face 4 (quad)
		}
	case Pyramid:
		return [][]int{
			{vertices[0], vertices[3], vertices[2], vertices[1]}, // Face 0 (base quad)
			{vertices[0], vertices[1], vertices[4]},              // Face 1 (tri)
			{vertices[1], vertices[2], vertices[4]},              // Face 2 (tri)
			{vertices[2], vertices[3], vertices[4]},              // Face 3 (tri)
			{vertices[3], vertices[0], vertices[4]},              // Face 4 (tri)
		}
	default:
		return [][]int{}
	}
}

// frameVertices picks four element vertices spanning a non degenerate
// reference frame: a corner and its three edge neighbours.
func frameVertices(elemType ElementType, vertices []int) [4]int {
	switch elemType {
	case Hex:
		return [4]int{vertices[0], vertices[1], vertices[3], vertices[4]}
	case Prism:
		return [4]int{vertices[0], vertices[1], vertices[2], vertices[3]}
	case Pyramid:
		return [4]int{vertices[0], vertices[1], vertices[3], vertices[4]}
	default:
		return [4]int{vertices[0], vertices[1], vertices[2], vertices[3]}
	}
}

// PrintStatistics prints mesh statistics
func (m *Mesh) PrintStatistics(w io.Writer) {
	fmt.Fprintf(w, "Mesh Statistics:\n")
	fmt.Fprintf(w, "  Vertices: %d\n", m.NumVertices)
	fmt.Fprintf(w, "  Elements: %d\n", m.NumElements)
	fmt.Fprintf(w, "  Faces: %d\n", m.NumFaces)

	typeCounts := make(map[ElementType]int)
	for _, t := range m.ElementTypes {
		typeCounts[t]++
	}
	types := make([]ElementType, 0, len(typeCounts))
	for t := range typeCounts {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	fmt.Fprintf(w, "  Element types:\n")
	for _, t := range types {
		fmt.Fprintf(w, "    %s: %d\n", t, typeCounts[t])
	}
	var nb int
	for _, f := range m.Faces {
		if f.Neighbour < 0 {
			nb++
		}
	}
	fmt.Fprintf(w, "  Boundary faces: %d (%d tagged)\n", nb, len(m.BoundaryTags))
}
