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

// gambitType is a Gambit NTYPE element code with its node order relative to
// Gmsh and its faces, both in Gambit local node indices
type gambitType struct {
	etype utils.ElementType
	order []int
	faces [][]int
}

var gambitTypes = map[int]gambitType{
	1: {utils.Line, []int{0, 1}, [][]int{{0}, {1}}},
	2: {utils.Quad, []int{0, 1, 2, 3}, [][]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}}},
	3: {utils.Triangle, []int{0, 1, 2}, [][]int{{0, 1}, {1, 2}, {2, 0}}},
	4: {utils.Hex, []int{0, 1, 3, 2, 4, 5, 7, 6}, [][]int{
		{0, 1, 5, 4}, {1, 3, 7, 5}, {3, 2, 6, 7}, {2, 0, 4, 6}, {1, 0, 2, 3}, {4, 5, 7, 6}}},
	5: {utils.Prism, []int{0, 1, 2, 3, 4, 5}, [][]int{
		{0, 1, 4, 3}, {1, 2, 5, 4}, {2, 0, 3, 5}, {0, 2, 1}, {3, 4, 5}}},
	6: {utils.Tet, []int{0, 1, 2, 3}, [][]int{{1, 0, 2}, {0, 1, 3}, {1, 2, 3}, {2, 0, 3}}},
}

type gambitElement struct {
	ntype int
	nodes []int // 0 based, Gambit order
}

// ReadGambit reads a Gambit neutral (.neu) file
func ReadGambit(filename string) (*Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	m, err := ParseGambit(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return m, nil
}

// ParseGambit reads linear elements of a Gambit neutral mesh. Element groups
// become element tags; each boundary condition set becomes a physical tag,
// numbered from 1 in file order, whose faces are attached as boundary faces.
func ParseGambit(r io.Reader) (*Mesh, error) {
	var (
		mesh                = NewMesh()
		numnp, nelem, ndfcd int
		elements            []gambitElement
		numBC               int
		err                 error
	)
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch {
		case strings.HasPrefix(line, "NUMNP"):
			numnp, nelem, ndfcd, err = readGambitSize(scanner)
		case strings.HasPrefix(line, "NODAL COORDINATES"):
			err = readGambitNodes(scanner, mesh, numnp, ndfcd)
		case strings.HasPrefix(line, "ELEMENTS/CELLS"):
			elements, err = readGambitElements(scanner, mesh, nelem)
		case strings.HasPrefix(line, "ELEMENT GROUP"):
			err = readGambitGroup(scanner, mesh)
		case strings.HasPrefix(line, "BOUNDARY CONDITIONS"):
			numBC++
			err = readGambitBC(scanner, mesh, elements, numBC)
		}
		if err != nil {
			return nil, err
		}
	}
	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error: %w", err)
	}
	if mesh.NumElements == 0 {
		return nil, fmt.Errorf("mesh has no elements")
	}
	mesh.BuildConnectivity()
	return mesh, nil
}

func readGambitSize(scanner *bufio.Scanner) (numnp, nelem, ndfcd int, err error) {
	if !scanner.Scan() {
		err = fmt.Errorf("unexpected EOF in problem size")
		return
	}
	fields := strings.Fields(scanner.Text())
	if len(fields) < 5 {
		err = fmt.Errorf("invalid problem size line %q", scanner.Text())
		return
	}
	if numnp, err = strconv.Atoi(fields[0]); err != nil {
		return
	}
	if nelem, err = strconv.Atoi(fields[1]); err != nil {
		return
	}
	if ndfcd, err = strconv.Atoi(fields[4]); err != nil {
		return
	}
	if ndfcd < 1 || ndfcd > 3 {
		err = fmt.Errorf("%d coordinate directions not supported", ndfcd)
	}
	return
}

func readGambitNodes(scanner *bufio.Scanner, mesh *Mesh, numnp, ndfcd int) error {
	mesh.Vertices = make([][3]float64, numnp)
	for i := 0; i < numnp; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF in nodal coordinates")
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 1+ndfcd {
			return fmt.Errorf("invalid node line %q", scanner.Text())
		}
		id, err := strconv.Atoi(fields[0])
		if err != nil {
			return fmt.Errorf("invalid node ID: %w", err)
		}
		if id < 1 || id > numnp {
			return fmt.Errorf("node ID %d out of range 1..%d", id, numnp)
		}
		for d := 0; d < ndfcd; d++ {
			if mesh.Vertices[id-1][d], err = strconv.ParseFloat(fields[1+d], 64); err != nil {
				return fmt.Errorf("invalid coordinate: %w", err)
			}
		}
	}
	mesh.NumVertices = numnp
	return nil
}

func readGambitElements(scanner *bufio.Scanner, mesh *Mesh, nelem int) (elements []gambitElement, err error) {
	dim := 0
	for i := 0; i < nelem; i++ {
		if !scanner.Scan() {
			return nil, fmt.Errorf("unexpected EOF in elements")
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			return nil, fmt.Errorf("invalid element line %q", scanner.Text())
		}
		var ntype, ndp int
		if ntype, err = strconv.Atoi(fields[1]); err != nil {
			return
		}
		if ndp, err = strconv.Atoi(fields[2]); err != nil {
			return
		}
		gt, ok := gambitTypes[ntype]
		if !ok {
			return nil, fmt.Errorf("Gambit element type %d not supported", ntype)
		}
		if ndp != gt.etype.GetNumNodes() {
			return nil, fmt.Errorf("%s element with %d nodes not supported", gt.etype, ndp)
		}
		if dim == 0 {
			dim = gt.etype.GetDimension()
		} else if dim != gt.etype.GetDimension() {
			return nil, fmt.Errorf("elements of dimension %d and %d in one mesh", dim, gt.etype.GetDimension())
		}
		// Node lists wrap after seven entries
		tokens := fields[3:]
		for len(tokens) < ndp {
			if !scanner.Scan() {
				return nil, fmt.Errorf("unexpected EOF in element node list")
			}
			tokens = append(tokens, strings.Fields(scanner.Text())...)
		}
		ge := gambitElement{ntype: ntype, nodes: make([]int, ndp)}
		for j := range ge.nodes {
			var v int
			if v, err = strconv.Atoi(tokens[j]); err != nil {
				return
			}
			if v < 1 || v > len(mesh.Vertices) {
				return nil, fmt.Errorf("element references missing node %d", v)
			}
			ge.nodes[j] = v - 1
		}
		verts := make([]int, ndp)
		for j, g := range gt.order {
			verts[j] = ge.nodes[g]
		}
		mesh.AddElement(gt.etype, verts, 0)
		elements = append(elements, ge)
	}
	return
}

func readGambitGroup(scanner *bufio.Scanner, mesh *Mesh) (err error) {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in element group")
	}
	var (
		fields      = strings.Fields(scanner.Text())
		group, nelg = -1, -1
	)
	for i := 0; i < len(fields)-1; i++ {
		switch fields[i] {
		case "GROUP:":
			group, err = strconv.Atoi(fields[i+1])
		case "ELEMENTS:":
			nelg, err = strconv.Atoi(fields[i+1])
		}
		if err != nil {
			return
		}
	}
	if group < 0 || nelg < 0 {
		return fmt.Errorf("invalid element group line %q", scanner.Text())
	}
	// group name and solver flags
	for i := 0; i < 2; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF in element group")
		}
	}
	for read := 0; read < nelg; {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF in element group")
		}
		for _, field := range strings.Fields(scanner.Text()) {
			var id int
			if id, err = strconv.Atoi(field); err != nil {
				return
			}
			if id < 1 || id > mesh.NumElements {
				return fmt.Errorf("element group references missing element %d", id)
			}
			mesh.ElementTags[id-1] = group
			read++
		}
	}
	return
}

func readGambitBC(scanner *bufio.Scanner, mesh *Mesh, elements []gambitElement, tag int) (err error) {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in boundary conditions")
	}
	fields := strings.Fields(scanner.Text())
	if len(fields) < 3 {
		return fmt.Errorf("invalid boundary condition line %q", scanner.Text())
	}
	var itype, nentry int
	if itype, err = strconv.Atoi(fields[1]); err != nil {
		return
	}
	if nentry, err = strconv.Atoi(fields[2]); err != nil {
		return
	}
	mesh.BoundaryTags[tag] = fields[0]
	for i := 0; i < nentry; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF in boundary condition %s", fields[0])
		}
		// nodal conditions carry no faces
		if itype == 0 {
			continue
		}
		entry := strings.Fields(scanner.Text())
		if len(entry) < 3 {
			return fmt.Errorf("invalid boundary face line %q", scanner.Text())
		}
		var elem, face int
		if elem, err = strconv.Atoi(entry[0]); err != nil {
			return
		}
		if face, err = strconv.Atoi(entry[2]); err != nil {
			return
		}
		if elem < 1 || elem > len(elements) {
			return fmt.Errorf("boundary condition %s references missing element %d", fields[0], elem)
		}
		ge := elements[elem-1]
		faces := gambitTypes[ge.ntype].faces
		if face < 1 || face > len(faces) {
			return fmt.Errorf("element %d has no face %d", elem, face)
		}
		verts := make([]int, len(faces[face-1]))
		for j, l := range faces[face-1] {
			verts[j] = ge.nodes[l]
		}
		mesh.BoundaryFaces = append(mesh.BoundaryFaces, BoundaryFace{
			Type:     faceType(len(verts)),
			Vertices: verts,
			Tag:      tag,
		})
	}
	return
}

// faceType is the element type of a linear face with n corners
func faceType(n int) utils.ElementType {
	switch n {
	case 1:
		return utils.Point
	case 2:
		return utils.Line
	case 3:
		return utils.Triangle
	case 4:
		return utils.Quad
	}
	return utils.Invalid
}
