// Package mesh holds unstructured mixed element meshes, their face
// connectivity, readers, structured generators and a graph partitioner.
package mesh

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"

	"github.com/notargets/gofe/utils"
)

// Face represents a face of an element
type Face struct {
	Vertices []int // Sorted corner vertex indices
	Element  int   // Parent element
	LocalID  int   // Local face ID within element
}

// BoundaryFace is a lower dimensional element read from a mesh file, e.g. a
// line on the boundary of a 2D mesh, carrying its physical tag
type BoundaryFace struct {
	Type     utils.ElementType
	Vertices []int
	Tag      int
}

// Mesh represents a complete unstructured mesh with all connectivity
type Mesh struct {
	// Geometry
	Vertices [][3]float64 // Node coordinates, including high order nodes

	// Element data
	EtoV         [][]int             // Element to node connectivity in Gmsh order
	ElementTypes []utils.ElementType // Element type for each element
	ElementTags  []int               // Physical group/tag for each element

	// Connectivity (built during initialization)
	EToE [][]int // Element to element connectivity [nelems][nfaces_per_elem]
	EToF [][]int // Local face index of the neighbor across each face, -1 on boundary
	EToP []int   // Element to partition mapping (set after partitioning)

	// Face data
	Faces         []Face         // All unique faces in mesh
	FaceMap       map[string]int // Map from sorted vertex string to face ID
	BoundaryTags  map[int]string // Physical names by tag
	BoundaryFaces []BoundaryFace // Tagged boundary entities from the mesh file
	FaceTags      map[int]int    // Face ID to physical tag of the matching boundary entity

	// Mesh statistics
	NumElements int
	NumVertices int
	NumFaces    int
}

// NewMesh creates an empty mesh
func NewMesh() *Mesh {
	return &Mesh{
		FaceMap:      make(map[string]int),
		BoundaryTags: make(map[int]string),
		FaceTags:     make(map[int]int),
	}
}

// ReadMeshFile reads a mesh file based on extension
func ReadMeshFile(filename string) (*Mesh, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".msh":
		return ReadGmsh(filename)
	case ".neu":
		return ReadGambit(filename)
	case ".su2":
		return ReadSU2(filename)
	default:
		return nil, fmt.Errorf("unsupported mesh format: %s", ext)
	}
}

// AddElement appends one element; connectivity must be rebuilt afterwards
func (m *Mesh) AddElement(et utils.ElementType, verts []int, tag int) {
	if len(verts) != et.GetNumNodes() {
		panic(fmt.Errorf("element %d of type %s has %d nodes, need %d",
			len(m.EtoV), et, len(verts), et.GetNumNodes()))
	}
	m.EtoV = append(m.EtoV, verts)
	m.ElementTypes = append(m.ElementTypes, et)
	m.ElementTags = append(m.ElementTags, tag)
	m.NumElements = len(m.EtoV)
}

// Cell is a view of one element of a mesh. It satisfies mapping.Element.
type Cell struct {
	ID    int
	Etype utils.ElementType
	Verts []int
	Tag   int
	nodes [][3]float64
}

func (c Cell) Type() utils.ElementType { return c.Etype }

// Nodes returns the node coordinates in element order
func (c Cell) Nodes() [][3]float64 { return c.nodes }

func (c Cell) Dim() int { return c.Etype.GetDimension() }

// Cell returns element k
func (m *Mesh) Cell(k int) Cell {
	verts := m.EtoV[k]
	nodes := make([][3]float64, len(verts))
	for i, v := range verts {
		nodes[i] = m.Vertices[v]
	}
	c := Cell{
		ID:    k,
		Etype: m.ElementTypes[k],
		Verts: verts,
		nodes: nodes,
	}
	if k < len(m.ElementTags) {
		c.Tag = m.ElementTags[k]
	}
	return c
}

// Dim is the largest element dimension in the mesh
func (m *Mesh) Dim() (dim int) {
	for _, et := range m.ElementTypes {
		if d := et.GetDimension(); d > dim {
			dim = d
		}
	}
	return
}

// CountTypes returns the number of elements of each type
func (m *Mesh) CountTypes() (counts map[utils.ElementType]int) {
	counts = make(map[utils.ElementType]int)
	for _, et := range m.ElementTypes {
		counts[et]++
	}
	return
}

// Bounds returns the bounding box of all nodes
func (m *Mesh) Bounds() (lo, hi [3]float64) {
	for i := 0; i < 3; i++ {
		lo[i], hi[i] = math.Inf(1), math.Inf(-1)
	}
	for _, x := range m.Vertices {
		for i := 0; i < 3; i++ {
			lo[i] = math.Min(lo[i], x[i])
			hi[i] = math.Max(hi[i], x[i])
		}
	}
	return
}

func faceKey(verts []int) (key string, sorted []int) {
	sorted = make([]int, len(verts))
	copy(sorted, verts)
	sort.Ints(sorted)
	key = fmt.Sprintf("%v", sorted)
	return
}

// BuildConnectivity builds element-to-element and face connectivity from the
// element corner vertices, then attaches boundary entity tags to faces
func (m *Mesh) BuildConnectivity() {
	m.NumElements = len(m.EtoV)
	m.NumVertices = len(m.Vertices)
	m.EToE = make([][]int, m.NumElements)
	m.EToF = make([][]int, m.NumElements)
	m.Faces = m.Faces[:0]
	m.FaceMap = make(map[string]int)
	m.FaceTags = make(map[int]int)

	for elemID := 0; elemID < m.NumElements; elemID++ {
		faceVertices := utils.GetElementFaces(m.ElementTypes[elemID], m.EtoV[elemID])

		m.EToE[elemID] = make([]int, len(faceVertices))
		m.EToF[elemID] = make([]int, len(faceVertices))
		for i := range m.EToE[elemID] {
			m.EToE[elemID][i] = -1
			m.EToF[elemID][i] = -1
		}

		for localFaceID, faceVerts := range faceVertices {
			key, sorted := faceKey(faceVerts)
			if faceID, exists := m.FaceMap[key]; exists {
				// Interior face: link both sides with each other's local index
				face := &m.Faces[faceID]
				m.EToE[elemID][localFaceID] = face.Element
				m.EToE[face.Element][face.LocalID] = elemID
				m.EToF[elemID][localFaceID] = face.LocalID
				m.EToF[face.Element][face.LocalID] = localFaceID
			} else {
				m.FaceMap[key] = len(m.Faces)
				m.Faces = append(m.Faces, Face{
					Vertices: sorted,
					Element:  elemID,
					LocalID:  localFaceID,
				})
			}
		}
	}
	m.NumFaces = len(m.Faces)

	for _, bf := range m.BoundaryFaces {
		corners := bf.Type.GetCornerNodes()
		verts := make([]int, len(corners))
		for i, c := range corners {
			verts[i] = bf.Vertices[c]
		}
		key, _ := faceKey(verts)
		if faceID, ok := m.FaceMap[key]; ok {
			m.FaceTags[faceID] = bf.Tag
		}
	}
}

// IsBoundaryFace is true when the face has a single adjacent element
func (m *Mesh) IsBoundaryFace(faceID int) bool {
	f := m.Faces[faceID]
	return m.EToE[f.Element][f.LocalID] < 0
}

// PrintStatistics prints mesh statistics
func (m *Mesh) PrintStatistics() {
	fmt.Printf("Mesh Statistics:\n")
	fmt.Printf("  Vertices: %d\n", m.NumVertices)
	fmt.Printf("  Elements: %d\n", m.NumElements)
	fmt.Printf("  Faces: %d\n", m.NumFaces)

	typeCounts := m.CountTypes()
	types := make([]utils.ElementType, 0, len(typeCounts))
	for t := range typeCounts {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	fmt.Printf("  Element types:\n")
	for _, t := range types {
		fmt.Printf("    %s: %d\n", t, typeCounts[t])
	}

	boundaryFaces := 0
	for i := 0; i < m.NumElements; i++ {
		for _, neighbor := range m.EToE[i] {
			if neighbor < 0 {
				boundaryFaces++
			}
		}
	}
	fmt.Printf("  Boundary faces: %d\n", boundaryFaces)
	if len(m.FaceTags) > 0 {
		fmt.Printf("  Tagged boundary faces: %d\n", len(m.FaceTags))
	}
}
