package utils

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

// DOK is an accumulating sparse matrix used while assembling global arrays
type DOK struct {
	M        *sparse.DOK
	readOnly bool
	name     string
}

func NewDOK(nr, nc int) (R DOK) {
	R = DOK{
		sparse.NewDOK(nr, nc),
		false,
		"unnamed - hint: pass a variable name to SetReadOnly()",
	}
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m DOK) Dims() (r, c int)    { return m.M.Dims() }
func (m DOK) At(i, j int) float64 { return m.M.At(i, j) }
func (m DOK) T() mat.Matrix       { return m.M.T() }
func (m DOK) NNZ() int            { return m.M.NNZ() }

func (m *DOK) SetReadOnly(name ...string) DOK {
	if len(name) != 0 {
		m.name = name[0]
	}
	m.readOnly = true
	return *m
}

// AddAt accumulates val into entry (i,j)
func (m DOK) AddAt(i, j int, val float64) DOK { // Changes receiver
	m.checkWritable()
	if val == 0 {
		return m
	}
	m.M.Set(i, j, m.M.At(i, j)+val)
	return m
}

// Scatter accumulates a dense element matrix into the rows/columns given by dofs
func (m DOK) Scatter(dofs []int, Ke Matrix) DOK { // Changes receiver
	var (
		nr, nc = Ke.Dims()
	)
	if nr != len(dofs) || nc != len(dofs) {
		panic(fmt.Errorf("element matrix is %dx%d, have %d dofs", nr, nc, len(dofs)))
	}
	for i, I := range dofs {
		for j, J := range dofs {
			m.AddAt(I, J, Ke.At(i, j))
		}
	}
	return m
}

// Merge accumulates all nonzeros of other into the receiver
func (m DOK) Merge(other DOK) DOK { // Changes receiver
	var (
		nr, nc   = m.Dims()
		onr, onc = other.Dims()
	)
	if nr != onr || nc != onc {
		panic(fmt.Errorf("mismatched dimensions in merge: %dx%d and %dx%d", nr, nc, onr, onc))
	}
	other.M.DoNonZero(func(i, j int, v float64) {
		m.AddAt(i, j, v)
	})
	return m
}

func (m DOK) checkWritable() {
	if m.readOnly {
		err := fmt.Errorf("attempt to write to a read only matrix named: \"%v\"", m.name)
		panic(err)
	}
}

func (m DOK) ToCSR() CSR {
	return CSR{
		M:    m.M.ToCSR(),
		name: m.name,
	}
}

// CSR is the compressed form handed back to callers once assembly is complete
type CSR struct {
	M    *sparse.CSR
	name string
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m CSR) Dims() (r, c int)    { return m.M.Dims() }
func (m CSR) At(i, j int) float64 { return m.M.At(i, j) }
func (m CSR) T() mat.Matrix       { return m.M.T() }
func (m CSR) NNZ() int            { return m.M.NNZ() }

// MulVec returns m*x
func (m CSR) MulVec(x []float64) (y []float64) {
	var (
		nr, nc = m.Dims()
	)
	if len(x) != nc {
		panic(fmt.Errorf("vector length %d does not match %d columns", len(x), nc))
	}
	y = make([]float64, nr)
	m.M.DoNonZero(func(i, j int, v float64) {
		y[i] += v * x[j]
	})
	return
}

// Sum returns the sum of all stored entries
func (m CSR) Sum() (s float64) {
	m.M.DoNonZero(func(_, _ int, v float64) {
		s += v
	})
	return
}
