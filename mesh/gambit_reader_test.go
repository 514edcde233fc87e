package mesh

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/notargets/gofe/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const squareNeu = `        CONTROL INFO 2.2.30
** GAMBIT NEUTRAL FILE
square
PROGRAM:                Gambit     VERSION:  2.2.30
Jan 2020
     NUMNP     NELEM     NGRPS    NBSETS     NDFCD     NDFVL
         4         2         1         1         2         2
ENDOFSECTION
   NODAL COORDINATES 2.2.30
         1   0.0000000000e+00   0.0000000000e+00
         2   1.0000000000e+00   0.0000000000e+00
         3   1.0000000000e+00   1.0000000000e+00
         4   0.0000000000e+00   1.0000000000e+00
ENDOFSECTION
      ELEMENTS/CELLS 2.2.30
       1  3  3        1       2       3
       2  3  3        1       3       4
ENDOFSECTION
       ELEMENT GROUP 2.2.30
GROUP:          7 ELEMENTS:          2 MATERIAL:          2 NFLAGS:          1
                           fluid
       0
       1       2
ENDOFSECTION
 BOUNDARY CONDITIONS 2.2.30
                            Wall       1       2       0       6
       1       3       1
       2       3       2
ENDOFSECTION
`

const brickNeu = `     NUMNP     NELEM     NGRPS    NBSETS     NDFCD     NDFVL
         8         1         0         1         3         3
ENDOFSECTION
   NODAL COORDINATES 2.2.30
 1 0 0 0
 2 1 0 0
 3 0 1 0
 4 1 1 0
 5 0 0 1
 6 1 0 1
 7 0 1 1
 8 1 1 1
ENDOFSECTION
      ELEMENTS/CELLS 2.2.30
       1  4  8        1       2       3       4       5       6       7
               8
ENDOFSECTION
 BOUNDARY CONDITIONS 2.2.30
                           Inlet       1       1       0       6
       1       4       4
ENDOFSECTION
`

func TestParseGambitTriangles(t *testing.T) {
	m, err := ParseGambit(strings.NewReader(squareNeu))
	require.NoError(t, err)
	assert.Equal(t, 2, m.NumElements)
	assert.Equal(t, 4, m.NumVertices)
	assert.Equal(t, 5, m.NumFaces)
	assert.Equal(t, []int{7, 7}, m.ElementTags)
	assert.Equal(t, "Wall", m.BoundaryTags[1])
	require.Len(t, m.BoundaryFaces, 2)
	assert.Equal(t, utils.Line, m.BoundaryFaces[0].Type)
	assert.Equal(t, []int{0, 1}, m.BoundaryFaces[0].Vertices)
	assert.Equal(t, []int{2, 3}, m.BoundaryFaces[1].Vertices)
	assert.Len(t, m.FaceTags, 2)
	for faceID, tag := range m.FaceTags {
		assert.True(t, m.IsBoundaryFace(faceID))
		assert.Equal(t, 1, tag)
	}
	assert.Equal(t, 1, m.EToE[0][2])
	assert.InDelta(t, 1., measure(t, m), 1.e-14)
}

func TestParseGambitBrick(t *testing.T) {
	m, err := ParseGambit(strings.NewReader(brickNeu))
	require.NoError(t, err)
	require.Equal(t, 1, m.NumElements)
	assert.Equal(t, utils.Hex, m.ElementTypes[0])
	// Gambit numbers brick nodes lexicographically, cells use Gmsh order
	assert.Equal(t, []int{0, 1, 3, 2, 4, 5, 7, 6}, m.EtoV[0])
	assert.Equal(t, [3]float64{1, 1, 0}, m.Cell(0).Nodes()[2])
	assert.InDelta(t, 1., measure(t, m), 1.e-14)
	// face 4 of a Gambit brick is x = 0
	require.Len(t, m.BoundaryFaces, 1)
	for _, v := range m.BoundaryFaces[0].Vertices {
		assert.Equal(t, 0., m.Vertices[v][0])
	}
	assert.Equal(t, utils.Quad, m.BoundaryFaces[0].Type)
	assert.Len(t, m.FaceTags, 1)
}

func TestParseGambitInterval(t *testing.T) {
	neu := `     NUMNP     NELEM     NGRPS    NBSETS     NDFCD     NDFVL
         3         2         0         1         1         1
ENDOFSECTION
   NODAL COORDINATES 2.2.30
 1 0
 2 0.5
 3 1
ENDOFSECTION
      ELEMENTS/CELLS 2.2.30
       1  1  2        1       2
       2  1  2        2       3
ENDOFSECTION
 BOUNDARY CONDITIONS 2.2.30
                            Ends       1       2       0       6
       1       1       1
       2       1       2
ENDOFSECTION
`
	m, err := ParseGambit(strings.NewReader(neu))
	require.NoError(t, err)
	assert.Equal(t, 2, m.NumElements)
	require.Len(t, m.BoundaryFaces, 2)
	assert.Equal(t, utils.Point, m.BoundaryFaces[0].Type)
	assert.Equal(t, []int{0}, m.BoundaryFaces[0].Vertices)
	assert.Equal(t, []int{2}, m.BoundaryFaces[1].Vertices)
	assert.Len(t, m.FaceTags, 2)
	assert.InDelta(t, 1., measure(t, m), 1.e-14)
}

func TestParseGambitErrors(t *testing.T) {
	for name, neu := range map[string]string{
		"empty":    "",
		"pyramid":  strings.Replace(brickNeu, "1  4  8", "1  7  8", 1),
		"bad node": strings.Replace(brickNeu, "               8\n", "               9\n", 1),
		"bad face": strings.Replace(brickNeu, "1       4       4", "1       4       9", 1),
		"mixed dim": strings.Replace(squareNeu, "2  3  3        1       3       4",
			"2  1  2        1       3", 1),
		"truncated": squareNeu[:strings.Index(squareNeu, "ELEMENTS/CELLS")+40],
	} {
		_, err := ParseGambit(strings.NewReader(neu))
		assert.Error(t, err, name)
	}
}

func TestReadGambitFile(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "square.neu")
	require.NoError(t, os.WriteFile(fileName, []byte(squareNeu), 0644))
	m, err := ReadMeshFile(fileName)
	require.NoError(t, err)
	assert.Equal(t, 2, m.NumElements)
	_, err = ReadGambit(filepath.Join(t.TempDir(), "missing.neu"))
	assert.Error(t, err)
}
