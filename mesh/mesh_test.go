package mesh

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/notargets/gofe/fevalues"
	"github.com/notargets/gofe/mapping"
	"github.com/notargets/gofe/quadrature"
	"github.com/notargets/gofe/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ mapping.Element = Cell{}

const mixedMsh = `$MeshFormat
2.2 0 8
$EndMeshFormat
$PhysicalNames
5
1 1 "bottom"
1 2 "outflow"
1 3 "top"
1 4 "inflow"
2 10 "fluid"
$EndPhysicalNames
$Nodes
6
1 0 0 0
2 1 0 0
3 2 0 0
4 0 1 0
5 1 1 0
6 2 1 0
$EndNodes
$Elements
10
1 15 2 0 1 1
2 1 2 1 1 1 2
3 1 2 1 1 2 3
4 1 2 2 2 3 6
5 1 2 3 3 6 5
6 1 2 3 3 5 4
7 1 2 4 4 4 1
8 3 2 10 1 1 2 5 4
9 2 2 10 1 2 3 6
10 2 2 10 1 2 6 5
$EndElements
`

func TestParseGmshMixed(t *testing.T) {
	m, err := ParseGmsh(strings.NewReader(mixedMsh))
	require.NoError(t, err)

	assert.Equal(t, 6, m.NumVertices)
	assert.Equal(t, 3, m.NumElements)
	assert.Equal(t, 2, m.Dim())
	assert.Equal(t, map[utils.ElementType]int{utils.Quad: 1, utils.Triangle: 2}, m.CountTypes())
	assert.Equal(t, []int{10, 10, 10}, m.ElementTags)
	assert.Equal(t, "inflow", m.BoundaryTags[4])
	assert.Equal(t, "fluid", m.BoundaryTags[10])
	assert.Equal(t, 6, len(m.BoundaryFaces))
	assert.Equal(t, 8, m.NumFaces)

	// quad face 1 (nodes 2-5) is tri 2's face 2, tri 1 face 2 is tri 2 face 0
	assert.Equal(t, 2, m.EToE[0][1])
	assert.Equal(t, 2, m.EToF[0][1])
	assert.Equal(t, 0, m.EToE[2][2])
	assert.Equal(t, 1, m.EToF[2][2])
	assert.Equal(t, 2, m.EToE[1][2])
	assert.Equal(t, 1, m.EToE[2][0])
	assert.Equal(t, -1, m.EToE[0][0])

	// every boundary face got the physical tag of its line element
	require.Equal(t, 6, len(m.FaceTags))
	for faceID, tag := range m.FaceTags {
		assert.True(t, m.IsBoundaryFace(faceID))
		assert.Contains(t, []int{1, 2, 3, 4}, tag)
	}
	left, _ := faceKey([]int{0, 3})
	assert.Equal(t, 4, m.FaceTags[m.FaceMap[left]])

	c := m.Cell(0)
	assert.Equal(t, utils.Quad, c.Type())
	assert.Equal(t, [][3]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}}, c.Nodes())
	assert.Equal(t, 10, c.Tag)
}

func TestParseGmshInterval(t *testing.T) {
	msh := `$MeshFormat
2.2 0 8
$EndMeshFormat
$Nodes
3
1 0 0 0
2 0.5 0 0
3 1 0 0
$EndNodes
$Elements
4
1 15 2 1 1 1
2 15 2 2 2 3
3 1 2 5 1 1 2
4 1 2 5 1 2 3
$EndElements
`
	m, err := ParseGmsh(strings.NewReader(msh))
	require.NoError(t, err)
	assert.Equal(t, 1, m.Dim())
	assert.Equal(t, 2, m.NumElements)
	require.Len(t, m.BoundaryFaces, 2)
	assert.Equal(t, utils.Point, m.BoundaryFaces[0].Type)

	// the end points tag the two boundary faces, the middle node stays untagged
	require.Len(t, m.FaceTags, 2)
	left, _ := faceKey([]int{0})
	right, _ := faceKey([]int{2})
	assert.Equal(t, 1, m.FaceTags[m.FaceMap[left]])
	assert.Equal(t, 2, m.FaceTags[m.FaceMap[right]])
	mid, _ := faceKey([]int{1})
	assert.False(t, m.IsBoundaryFace(m.FaceMap[mid]))
}

func TestParseGmshHighOrder(t *testing.T) {
	msh := `$MeshFormat
2.2 0 8
$EndMeshFormat
$Nodes
6
10 0 0 0
20 1 0 0
30 0 1 0
40 0.5 0 0
50 0.5 0.5 0
60 0 0.5 0
$EndNodes
$Elements
1
1 9 2 0 1 10 20 30 40 50 60
$EndElements
`
	m, err := ParseGmsh(strings.NewReader(msh))
	require.NoError(t, err)
	assert.Equal(t, utils.Triangle6, m.ElementTypes[0])
	// non contiguous Gmsh node IDs are renumbered
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, m.EtoV[0])
	assert.Equal(t, 3, m.NumFaces)
}

func TestParseGmshErrors(t *testing.T) {
	cases := map[string]string{
		"version":      "$MeshFormat\n4.1 0 8\n$EndMeshFormat\n",
		"binary":       "$MeshFormat\n2.2 1 8\n$EndMeshFormat\n",
		"empty":        "$MeshFormat\n2.2 0 8\n$EndMeshFormat\n",
		"unknown node": "$Nodes\n1\n1 0 0 0\n$EndNodes\n$Elements\n1\n1 1 0 1 2\n$EndElements\n",
		"node count":   "$Nodes\n2\n1 0 0 0\n2 1 0 0\n$EndNodes\n$Elements\n1\n1 2 0 1 2\n$EndElements\n",
		"bad type":     "$Nodes\n1\n1 0 0 0\n$EndNodes\n$Elements\n1\n1 99 0 1\n$EndElements\n",
		"truncated":    "$Nodes\n3\n1 0 0 0\n",
	}
	for name, msh := range cases {
		_, err := ParseGmsh(strings.NewReader(msh))
		assert.Error(t, err, name)
	}
}

func TestReadMeshFile(t *testing.T) {
	dir := t.TempDir()
	fileName := filepath.Join(dir, "mixed.msh")
	require.NoError(t, os.WriteFile(fileName, []byte(mixedMsh), 0644))
	m, err := ReadMeshFile(fileName)
	require.NoError(t, err)
	assert.Equal(t, 3, m.NumElements)

	_, err = ReadMeshFile(filepath.Join(dir, "mesh.vtk"))
	assert.Error(t, err)
	_, err = ReadGmsh(filepath.Join(dir, "missing.msh"))
	assert.Error(t, err)
}

// measure integrates 1 over the mesh
func measure(t *testing.T, m *Mesh) (sum float64) {
	byFamily := make(map[quadrature.Family]*fevalues.FEValues)
	for k := 0; k < m.NumElements; k++ {
		c := m.Cell(k)
		f := quadrature.FamilyOf(c.Type())
		fe, ok := byFamily[f]
		if !ok {
			fe = fevalues.New(c.Dim(), quadrature.For(c.Type(), 2), fevalues.UpdateJxW)
			byFamily[f] = fe
		}
		require.NoError(t, fe.Reinit(c))
		for _, w := range fe.JxW() {
			sum += w
		}
	}
	return
}

func TestGenerators(t *testing.T) {
	for _, et := range []utils.ElementType{utils.Line, utils.Line3} {
		m := NewInterval(5, -1, 2, et)
		assert.Equal(t, 5, m.NumElements)
		assert.InDelta(t, 3., measure(t, m), 1.e-13)
		assert.Equal(t, 6, m.NumFaces)
	}
	for _, et := range []utils.ElementType{utils.Quad, utils.Quad9, utils.Triangle, utils.Triangle6} {
		t.Run(fmt.Sprintf("rectangle %s", et), func(t *testing.T) {
			m := NewRectangle(4, 3, 0, 2, 0, 1, et)
			ne := 12
			if et.IsSimplex() {
				ne = 24
			}
			assert.Equal(t, ne, m.NumElements)
			assert.InDelta(t, 2., measure(t, m), 1.e-13)
			nb := 0
			for f := range m.Faces {
				if m.IsBoundaryFace(f) {
					nb++
				}
			}
			assert.Equal(t, 2*(4+3), nb)
		})
	}
	for _, et := range []utils.ElementType{utils.Hex, utils.Tet, utils.Prism} {
		t.Run(fmt.Sprintf("box %s", et), func(t *testing.T) {
			m := NewBox(2, 3, 2, 0, 1, 0, 1, 0, 3, et)
			perCell := map[utils.ElementType]int{utils.Hex: 1, utils.Tet: 6, utils.Prism: 2}[et]
			assert.Equal(t, 12*perCell, m.NumElements)
			assert.InDelta(t, 3., measure(t, m), 1.e-12)
			// each interior face has exactly one neighbour on the other side
			for k, nbrs := range m.EToE {
				for f, n := range nbrs {
					if n >= 0 {
						assert.Equal(t, k, m.EToE[n][m.EToF[k][f]])
					}
				}
			}
		})
	}
	{
		m := NewMixedRectangle(4, 2, 0, 1, 0, 1)
		assert.Equal(t, map[utils.ElementType]int{utils.Quad: 4, utils.Triangle: 8}, m.CountTypes())
		assert.InDelta(t, 1., measure(t, m), 1.e-13)
		lo, hi := m.Bounds()
		assert.Equal(t, [3]float64{0, 0, 0}, lo)
		assert.Equal(t, [3]float64{1, 1, 0}, hi)
	}
	assert.Panics(t, func() { NewRectangle(2, 2, 0, 1, 0, 1, utils.Hex) })
	assert.Panics(t, func() { NewBox(0, 1, 1, 0, 1, 0, 1, 0, 1, utils.Hex) })
}

func TestPartition(t *testing.T) {
	m := NewRectangle(8, 8, 0, 1, 0, 1, utils.Quad)
	require.NoError(t, Partition(m, 4))
	require.Equal(t, m.NumElements, len(m.EToP))
	parts := m.PartitionElements()
	require.Equal(t, 4, len(parts))
	total := 0
	for _, p := range parts {
		assert.NotEmpty(t, p)
		total += len(p)
	}
	assert.Equal(t, m.NumElements, total)

	mp := NewMeshPartitioner(m, DefaultPartitionConfig(4))
	r := mp.Analyze()
	assert.Equal(t, 4, len(r.Parts))
	assert.Greater(t, r.CutFaces, 0)
	assert.Less(t, r.Imbalance, 0.2)

	{ // single partition skips metis
		require.NoError(t, Partition(m, 1))
		assert.Equal(t, 1, len(m.PartitionElements()))
	}
	assert.Error(t, Partition(m, 0))
	assert.Error(t, Partition(NewRectangle(1, 1, 0, 1, 0, 1, utils.Quad), 2))
}

func TestBuildMetisGraph(t *testing.T) {
	m := NewMixedRectangle(3, 2, 0, 1, 0, 1)
	mp := NewMeshPartitioner(m, DefaultPartitionConfig(2))
	xadj, adjncy, vwgt, adjwgt := mp.buildMetisGraph()
	assert.Equal(t, m.NumElements+1, len(xadj))
	assert.Equal(t, int32(0), xadj[0])
	assert.Equal(t, len(adjncy), int(xadj[len(xadj)-1]))
	assert.Equal(t, len(adjncy), len(adjwgt))
	assert.Equal(t, m.NumElements, len(vwgt))
	for i := 1; i < len(xadj); i++ {
		assert.GreaterOrEqual(t, xadj[i], xadj[i-1])
	}
	// the dual graph is symmetric
	edges := make(map[[2]int32]bool)
	for v := 0; v < m.NumElements; v++ {
		for _, n := range adjncy[xadj[v]:xadj[v+1]] {
			edges[[2]int32{int32(v), n}] = true
		}
	}
	for e := range edges {
		assert.True(t, edges[[2]int32{e[1], e[0]}])
	}
}
