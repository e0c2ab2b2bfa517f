package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// gmshElementType22 maps Gmsh v2.2 element type numbers to our ElementType
var gmshElementType22 = map[int]ElementType{
	1: Line,     // 2-node line
	2: Triangle, // 3-node triangle
	3: Quad,     // 4-node quadrangle
	4: Tet,      // 4-node tetrahedron
	5: Hex,      // 8-node hexahedron
	6: Prism,    // 6-node prism
	7: Pyramid,  // 5-node pyramid
}

// ReadGmsh22 reads a Gmsh MSH file format version 2.2
func ReadGmsh22(filename string) (*Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ParseGmsh22(file)
}

// ParseGmsh22 reads an ASCII Gmsh 2.2 mesh and builds its connectivity.
// Lower dimensional elements become tagged boundary elements.
func ParseGmsh22(r io.Reader) (*Mesh, error) {
	scanner := bufio.NewScanner(r)
	msh := NewMesh()

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var err error
		switch line {
		case "$MeshFormat":
			err = readMeshFormat22(scanner, msh)
		case "$PhysicalNames":
			err = readPhysicalNames(scanner, msh)
		case "$Nodes":
			err = readNodes22(scanner, msh)
		case "$Elements":
			err = readElements22(scanner, msh)
		default:
			if strings.HasPrefix(line, "$") && !strings.HasPrefix(line, "$End") {
				// Skip sections we do not use
				err = skipTo(scanner, "$End"+line[1:])
			}
		}
		if err != nil {
			return nil, err
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error: %w", err)
	}
	if msh.FormatVersion == "" {
		return nil, fmt.Errorf("could not find $MeshFormat section")
	}
	if err := msh.BuildConnectivity(); err != nil {
		return nil, err
	}
	return msh, nil
}

func skipTo(scanner *bufio.Scanner, endMarker string) error {
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == endMarker {
			return nil
		}
	}
	return fmt.Errorf("unexpected EOF looking for %s", endMarker)
}

func nextInt(scanner *bufio.Scanner, section string) (n int, err error) {
	if !scanner.Scan() {
		return 0, fmt.Errorf("unexpected EOF in %s", section)
	}
	if n, err = strconv.Atoi(strings.TrimSpace(scanner.Text())); err != nil {
		err = fmt.Errorf("invalid count in %s: %w", section, err)
	}
	return
}

// readMeshFormat22 reads the MeshFormat section
func readMeshFormat22(scanner *bufio.Scanner, msh *Mesh) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in MeshFormat")
	}

	parts := strings.Fields(scanner.Text())
	if len(parts) < 3 {
		return fmt.Errorf("invalid MeshFormat line")
	}
	if !strings.HasPrefix(parts[0], "2.") {
		return fmt.Errorf("unsupported Gmsh format version: %s", parts[0])
	}
	if parts[1] != "0" {
		return fmt.Errorf("binary Gmsh files are not supported")
	}
	msh.FormatVersion = parts[0]
	return skipTo(scanner, "$EndMeshFormat")
}

// readPhysicalNames reads physical group names
func readPhysicalNames(scanner *bufio.Scanner, msh *Mesh) error {
	numNames, err := nextInt(scanner, "PhysicalNames")
	if err != nil {
		return err
	}

	for i := 0; i < numNames; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF reading physical names")
		}

		parts := strings.Fields(scanner.Text())
		if len(parts) < 3 {
			return fmt.Errorf("invalid physical name line: %s", scanner.Text())
		}
		tag, _ := strconv.Atoi(parts[1])
		// Join remaining parts if name contains spaces
		name := strings.Trim(strings.Join(parts[2:], " "), "\"")
		msh.PhysicalNames[tag] = name
	}
	return skipTo(scanner, "$EndPhysicalNames")
}

// readNodes22 reads nodes in v2.2 format
func readNodes22(scanner *bufio.Scanner, msh *Mesh) error {
	numNodes, err := nextInt(scanner, "Nodes")
	if err != nil {
		return err
	}
	msh.Vertices = make([]r3.Vec, 0, numNodes)

	for i := 0; i < numNodes; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF reading nodes")
		}

		parts := strings.Fields(scanner.Text())
		if len(parts) < 4 {
			return fmt.Errorf("invalid node line: %s", scanner.Text())
		}

		nodeID, err := strconv.Atoi(parts[0])
		if err != nil {
			return fmt.Errorf("invalid node id %q: %w", parts[0], err)
		}
		var x [3]float64
		for d := range x {
			if x[d], err = strconv.ParseFloat(parts[1+d], 64); err != nil {
				return fmt.Errorf("node %d: %w", nodeID, err)
			}
		}
		msh.AddNode(nodeID, r3.Vec{X: x[0], Y: x[1], Z: x[2]})
	}
	return skipTo(scanner, "$EndNodes")
}

// readElements22 reads elements in v2.2 format
func readElements22(scanner *bufio.Scanner, msh *Mesh) error {
	numElements, err := nextInt(scanner, "Elements")
	if err != nil {
		return err
	}

	for i := 0; i < numElements; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF reading elements")
		}

		parts := strings.Fields(scanner.Text())
		if len(parts) < 4 {
			return fmt.Errorf("invalid element line: %s", scanner.Text())
		}

		elemID, _ := strconv.Atoi(parts[0])
		elemType, _ := strconv.Atoi(parts[1])
		numTags, _ := strconv.Atoi(parts[2])

		if len(parts) < 3+numTags {
			return fmt.Errorf("element %d: invalid element tags", elemID)
		}

		// Read tags
		tags := make([]int, numTags)
		for j := 0; j < numTags; j++ {
			tags[j], _ = strconv.Atoi(parts[3+j])
		}

		etype, ok := gmshElementType22[elemType]
		if !ok {
			// Skip unknown element types
			continue
		}

		expectedNodes := etype.NumNodes()
		nodeStart := 3 + numTags
		if len(parts) < nodeStart+expectedNodes {
			return fmt.Errorf("element %d: expected %d nodes, got %d",
				elemID, expectedNodes, len(parts)-nodeStart)
		}

		nodeIDs := make([]int, expectedNodes)
		for j := 0; j < expectedNodes; j++ {
			nodeIDs[j], _ = strconv.Atoi(parts[nodeStart+j])
		}

		if etype.Dimension() < 3 {
			handleBoundaryElement22(msh, tags, nodeIDs)
			continue
		}
		if err := msh.AddElement(elemID, etype, tags, nodeIDs); err != nil {
			return err
		}
	}
	return skipTo(scanner, "$EndElements")
}

// handleBoundaryElement22 processes boundary elements
func handleBoundaryElement22(msh *Mesh, tags, nodeIDs []int) {
	nodes := make([]int, len(nodeIDs))
	for i, id := range nodeIDs {
		idx, ok := msh.GetNodeIndex(id)
		if !ok {
			return // Skip if node not found
		}
		nodes[i] = idx
	}

	// Get physical tag if present
	var physicalTag int
	if len(tags) > 0 {
		physicalTag = tags[0]
	}

	tagName, ok := msh.PhysicalNames[physicalTag]
	if !ok {
		tagName = fmt.Sprintf("boundary_%d", physicalTag)
	}
	msh.AddBoundaryElement(tagName, nodes)
}
