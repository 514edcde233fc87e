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

// su2Types maps SU2 (VTK) element identifiers to element types and the node
// order relative to Gmsh. See https://su2code.github.io/docs_v7/Mesh-File/
var su2Types = map[int]struct {
	etype utils.ElementType
	order []int
}{
	3:  {utils.Line, []int{0, 1}},
	5:  {utils.Triangle, []int{0, 1, 2}},
	9:  {utils.Quad, []int{0, 1, 2, 3}},
	10: {utils.Tet, []int{0, 1, 2, 3}},
	12: {utils.Hex, []int{0, 1, 2, 3, 4, 5, 6, 7}},
	// VTK wedges have their base triangle pointing away from the top
	13: {utils.Prism, []int{0, 2, 1, 3, 5, 4}},
}

// ReadSU2 reads a native SU2 (.su2) mesh file
func ReadSU2(filename string) (*Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	m, err := ParseSU2(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return m, nil
}

// su2Reader yields keyword lines and data lines, skipping % comments
type su2Reader struct {
	scanner *bufio.Scanner
}

func (r su2Reader) next() (line string, ok bool) {
	for r.scanner.Scan() {
		line = strings.TrimSpace(r.scanner.Text())
		if line == "" || strings.HasPrefix(line, "%") {
			continue
		}
		return line, true
	}
	return "", false
}

// keyword splits "KEY= value" lines
func keyword(line string) (key, value string, ok bool) {
	ind := strings.Index(line, "=")
	if ind < 0 {
		return
	}
	return strings.TrimSpace(line[:ind]), strings.TrimSpace(line[ind+1:]), true
}

func (r su2Reader) count(value string) (n int, err error) {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return 0, fmt.Errorf("missing count")
	}
	if n, err = strconv.Atoi(fields[0]); err == nil && n < 0 {
		err = fmt.Errorf("negative count %d", n)
	}
	return
}

// element reads "type v0 v1 ... [index]" into Gmsh order
func (r su2Reader) element() (et utils.ElementType, verts []int, err error) {
	line, ok := r.next()
	if !ok {
		return et, nil, fmt.Errorf("unexpected EOF in element list")
	}
	fields := strings.Fields(line)
	var vtk int
	if vtk, err = strconv.Atoi(fields[0]); err != nil {
		return
	}
	st, ok := su2Types[vtk]
	if !ok {
		return et, nil, fmt.Errorf("SU2 element type %d not supported", vtk)
	}
	nn := len(st.order)
	if len(fields) < 1+nn {
		return et, nil, fmt.Errorf("element line %q has too few nodes", line)
	}
	verts = make([]int, nn)
	for j, o := range st.order {
		if verts[j], err = strconv.Atoi(fields[1+o]); err != nil {
			return
		}
	}
	return st.etype, verts, nil
}

// ParseSU2 reads a native SU2 mesh. Markers become boundary faces; each
// distinct marker label gets a physical tag numbered from 1.
func ParseSU2(r io.Reader) (*Mesh, error) {
	var (
		mesh   = NewMesh()
		rd     = su2Reader{bufio.NewScanner(r)}
		ndime  int
		tags   = make(map[string]int)
		marker string
		err    error
	)
	for {
		line, ok := rd.next()
		if !ok {
			break
		}
		key, value, ok := keyword(line)
		if !ok {
			return nil, fmt.Errorf("badly formed input line [%s], should have an =", line)
		}
		var n int
		switch key {
		case "NDIME":
			if ndime, err = rd.count(value); err == nil && (ndime < 1 || ndime > 3) {
				err = fmt.Errorf("%d dimensional meshes not supported", ndime)
			}
		case "NELEM":
			if n, err = rd.count(value); err != nil {
				break
			}
			for k := 0; k < n && err == nil; k++ {
				var (
					et    utils.ElementType
					verts []int
				)
				if et, verts, err = rd.element(); err == nil {
					if et.GetDimension() != ndime {
						err = fmt.Errorf("%s element in a %d dimensional mesh", et, ndime)
						break
					}
					mesh.AddElement(et, verts, 0)
				}
			}
		case "NPOIN":
			if n, err = rd.count(value); err != nil {
				break
			}
			mesh.Vertices = make([][3]float64, n)
			for i := 0; i < n && err == nil; i++ {
				line, ok := rd.next()
				if !ok {
					err = fmt.Errorf("unexpected EOF in point list")
					break
				}
				fields := strings.Fields(line)
				if len(fields) < ndime {
					err = fmt.Errorf("point line %q has too few coordinates", line)
					break
				}
				for d := 0; d < ndime && err == nil; d++ {
					mesh.Vertices[i][d], err = strconv.ParseFloat(fields[d], 64)
				}
			}
		case "NMARK":
			_, err = rd.count(value)
		case "MARKER_TAG":
			marker = value
			if _, ok := tags[marker]; !ok {
				tags[marker] = len(tags) + 1
				mesh.BoundaryTags[tags[marker]] = marker
			}
		case "MARKER_ELEMS":
			if marker == "" {
				err = fmt.Errorf("MARKER_ELEMS before MARKER_TAG")
				break
			}
			if n, err = rd.count(value); err != nil {
				break
			}
			for i := 0; i < n && err == nil; i++ {
				var (
					et    utils.ElementType
					verts []int
				)
				if et, verts, err = rd.element(); err == nil {
					if et.GetDimension() != ndime-1 {
						err = fmt.Errorf("%s element in marker %s of a %d dimensional mesh", et, marker, ndime)
						break
					}
					mesh.BoundaryFaces = append(mesh.BoundaryFaces, BoundaryFace{
						Type: et, Vertices: verts, Tag: tags[marker],
					})
				}
			}
		}
		if err != nil {
			return nil, err
		}
	}
	if err = rd.scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error: %w", err)
	}
	if mesh.NumElements == 0 {
		return nil, fmt.Errorf("mesh has no elements")
	}
	for k, verts := range mesh.EtoV {
		for _, v := range verts {
			if v < 0 || v >= len(mesh.Vertices) {
				return nil, fmt.Errorf("element %d references missing point %d", k, v)
			}
		}
	}
	mesh.BuildConnectivity()
	return mesh, nil
}
