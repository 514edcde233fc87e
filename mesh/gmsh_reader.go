package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/notargets/gofe/utils"
)

// gmshElementType2_2 maps Gmsh 2.2 element types to our ElementType
var gmshElementType2_2 = map[int]utils.ElementType{
	1:  utils.Line,
	2:  utils.Triangle,
	3:  utils.Quad,
	4:  utils.Tet,
	5:  utils.Hex,
	6:  utils.Prism,
	8:  utils.Line3,
	9:  utils.Triangle6,
	10: utils.Quad9,
	11: utils.Tet10,
	15: utils.Point,
}

type gmshElement struct {
	etype utils.ElementType
	tag   int
	nodes []int
}

// ReadGmsh reads a Gmsh 2.2 ASCII file
func ReadGmsh(filename string) (*Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	m, err := ParseGmsh(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return m, nil
}

// ParseGmsh reads a Gmsh 2.2 ASCII mesh. All nodes of high order elements are
// kept. Elements of the highest dimension become cells; elements one dimension
// lower become tagged boundary faces.
func ParseGmsh(r io.Reader) (*Mesh, error) {
	var (
		mesh     = NewMesh()
		nodeIDs  = make(map[int]int) // Gmsh node ID -> index into Vertices
		elements []gmshElement
		err      error
	)
	scanner := bufio.NewScanner(r)
	const maxScanTokenSize = 1024 * 1024 * 10
	scanner.Buffer(make([]byte, 64*1024), maxScanTokenSize)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "$MeshFormat":
			err = readMeshFormat(scanner)
		case "$PhysicalNames":
			err = readPhysicalNames(scanner, mesh)
		case "$Nodes":
			err = readNodes(scanner, mesh, nodeIDs)
		case "$Elements":
			elements, err = readElements(scanner)
		case "$Periodic", "$NodeData", "$ElementData", "$ElementNodeData":
			err = skipSection(scanner, "$End"+strings.TrimPrefix(line, "$"))
		}
		if err != nil {
			return nil, err
		}
	}
	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error: %w", err)
	}

	if err = mesh.addGmshElements(elements, nodeIDs); err != nil {
		return nil, err
	}
	mesh.BuildConnectivity()
	return mesh, nil
}

func readMeshFormat(scanner *bufio.Scanner) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in MeshFormat")
	}
	parts := strings.Fields(scanner.Text())
	if len(parts) < 3 {
		return fmt.Errorf("invalid MeshFormat line")
	}
	if !strings.HasPrefix(parts[0], "2") {
		return fmt.Errorf("Gmsh format version %s not supported, need 2.2", parts[0])
	}
	if parts[1] != "0" {
		return fmt.Errorf("binary Gmsh files are not supported")
	}
	return skipSection(scanner, "$EndMeshFormat")
}

func readPhysicalNames(scanner *bufio.Scanner, mesh *Mesh) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in PhysicalNames")
	}
	numPhysical, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return fmt.Errorf("invalid number of physical names: %w", err)
	}
	for i := 0; i < numPhysical; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF in PhysicalNames")
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			return fmt.Errorf("invalid physical name entry %q", scanner.Text())
		}
		tag, err := strconv.Atoi(fields[1])
		if err != nil {
			return fmt.Errorf("invalid physical tag: %w", err)
		}
		mesh.BoundaryTags[tag] = strings.Trim(strings.Join(fields[2:], " "), "\"")
	}
	return skipSection(scanner, "$EndPhysicalNames")
}

func readNodes(scanner *bufio.Scanner, mesh *Mesh, nodeIDs map[int]int) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in Nodes")
	}
	numNodes, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return fmt.Errorf("invalid number of nodes: %w", err)
	}
	mesh.Vertices = make([][3]float64, 0, numNodes)

	for i := 0; i < numNodes; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF in Nodes at node %d", i)
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 {
			return fmt.Errorf("invalid node entry at line %d", i+1)
		}
		nodeID, err := strconv.Atoi(fields[0])
		if err != nil {
			return fmt.Errorf("invalid node ID: %w", err)
		}
		var x [3]float64
		for j := 0; j < 3; j++ {
			if x[j], err = strconv.ParseFloat(fields[j+1], 64); err != nil {
				return fmt.Errorf("invalid coordinate for node %d: %w", nodeID, err)
			}
		}
		if _, dup := nodeIDs[nodeID]; dup {
			return fmt.Errorf("duplicate node ID %d", nodeID)
		}
		nodeIDs[nodeID] = len(mesh.Vertices)
		mesh.Vertices = append(mesh.Vertices, x)
	}
	return skipSection(scanner, "$EndNodes")
}

func readElements(scanner *bufio.Scanner) (elements []gmshElement, err error) {
	if !scanner.Scan() {
		return nil, fmt.Errorf("unexpected EOF in Elements")
	}
	numElems, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return nil, fmt.Errorf("invalid number of elements: %w", err)
	}

	for i := 0; i < numElems; i++ {
		if !scanner.Scan() {
			return nil, fmt.Errorf("unexpected EOF in Elements at element %d", i)
		}
		var (
			fields = strings.Fields(scanner.Text())
			ints   = make([]int, len(fields))
		)
		for j, f := range fields {
			if ints[j], err = strconv.Atoi(f); err != nil {
				return nil, fmt.Errorf("invalid element entry at line %d: %w", i+1, err)
			}
		}
		if len(ints) < 3 {
			return nil, fmt.Errorf("invalid element entry at line %d", i+1)
		}
		gmshType, numTags := ints[1], ints[2]
		et, ok := gmshElementType2_2[gmshType]
		if !ok {
			return nil, fmt.Errorf("element %d: unsupported Gmsh element type %d", ints[0], gmshType)
		}
		offset := 3 + numTags
		if len(ints) != offset+et.GetNumNodes() {
			return nil, fmt.Errorf("element %d: %s needs %d nodes, got %d",
				ints[0], et, et.GetNumNodes(), len(ints)-offset)
		}
		el := gmshElement{etype: et, nodes: ints[offset:]}
		if numTags > 0 {
			el.tag = ints[3] // physical tag
		}
		elements = append(elements, el)
	}
	err = skipSection(scanner, "$EndElements")
	return
}

// addGmshElements keeps the top dimension elements as cells and the ones a
// dimension below as boundary faces
func (m *Mesh) addGmshElements(elements []gmshElement, nodeIDs map[int]int) error {
	var dim int
	for _, el := range elements {
		if d := el.etype.GetDimension(); d > dim {
			dim = d
		}
	}
	if dim == 0 {
		return fmt.Errorf("mesh has no elements")
	}
	for _, el := range elements {
		verts := make([]int, len(el.nodes))
		for i, id := range el.nodes {
			v, ok := nodeIDs[id]
			if !ok {
				return fmt.Errorf("element references unknown node %d", id)
			}
			verts[i] = v
		}
		switch el.etype.GetDimension() {
		case dim:
			m.AddElement(el.etype, verts, el.tag)
		case dim - 1:
			m.BoundaryFaces = append(m.BoundaryFaces, BoundaryFace{
				Type: el.etype, Vertices: verts, Tag: el.tag,
			})
		}
	}
	return nil
}

func skipSection(scanner *bufio.Scanner, endMarker string) error {
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == endMarker {
			return nil
		}
	}
	return fmt.Errorf("missing %s", endMarker)
}
