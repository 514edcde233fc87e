package utils

import (
	"fmt"
	"strings"
)

// ElementType identifies the topology and geometric order of a finite element.
// It carries no geometry, so it is usable as a cache key for anything that
// depends only on the reference element.
type ElementType int

const (
	Invalid ElementType = iota
	// 1D elements
	Line
	Line3 // 3-node line (quadratic)
	// 2D elements
	Triangle
	Triangle6 // 6-node triangle (quadratic)
	Quad
	Quad9 // 9-node quad (biquadratic)
	// 3D elements
	Tet
	Tet10 // 10-node tetrahedron (quadratic)
	Hex
	Prism
	// 0D element, the boundary of 1D meshes
	Point
)

// String representation of element types
func (e ElementType) String() string {
	names := []string{
		"Invalid",
		"Line", "Line3",
		"Triangle", "Triangle6", "Quad", "Quad9",
		"Tet", "Tet10", "Hex", "Prism",
		"Point",
	}
	if int(e) >= 0 && int(e) < len(names) {
		return names[e]
	}
	return "Invalid"
}

// GetDimension returns the spatial dimension of the element
func (e ElementType) GetDimension() int {
	switch e {
	case Point:
		return 0
	case Line, Line3:
		return 1
	case Triangle, Triangle6, Quad, Quad9:
		return 2
	case Tet, Tet10, Hex, Prism:
		return 3
	default:
		return -1
	}
}

// GetNumNodes returns the number of nodes for each element type
func (e ElementType) GetNumNodes() int {
	switch e {
	case Point:
		return 1
	case Line:
		return 2
	case Line3:
		return 3
	case Triangle:
		return 3
	case Triangle6:
		return 6
	case Quad:
		return 4
	case Quad9:
		return 9
	case Tet:
		return 4
	case Tet10:
		return 10
	case Hex:
		return 8
	case Prism:
		return 6
	default:
		return 0
	}
}

// GetOrder returns the polynomial order of the geometry/basis
func (e ElementType) GetOrder() int {
	switch e {
	case Line3, Triangle6, Quad9, Tet10:
		return 2
	case Invalid:
		return 0
	default:
		return 1
	}
}

// IsSimplex is true for lines, triangles and tetrahedra of any order
func (e ElementType) IsSimplex() bool {
	switch e {
	case Line, Line3, Triangle, Triangle6, Tet, Tet10:
		return true
	}
	return false
}

// IsAffine is true when the reference-to-physical map has a constant Jacobian
// for every admissible node placement, i.e. straight sided linear simplices.
func (e ElementType) IsAffine() bool {
	switch e {
	case Line, Triangle, Tet:
		return true
	}
	return false
}

// GetNumFaces returns the number of (dim-1) boundary entities
func (e ElementType) GetNumFaces() int {
	switch e {
	case Line, Line3:
		return 2
	case Triangle, Triangle6:
		return 3
	case Quad, Quad9:
		return 4
	case Tet, Tet10:
		return 4
	case Hex:
		return 6
	case Prism:
		return 5
	default:
		return 0
	}
}

// GetCornerNodes returns the indices of corner nodes for higher-order elements
func (e ElementType) GetCornerNodes() []int {
	switch e {
	case Line3:
		return []int{0, 1}
	case Triangle6:
		return []int{0, 1, 2}
	case Quad9:
		return []int{0, 1, 2, 3}
	case Tet10:
		return []int{0, 1, 2, 3}
	default:
		// For linear elements, all nodes are corner nodes
		n := e.GetNumNodes()
		nodes := make([]int, n)
		for i := 0; i < n; i++ {
			nodes[i] = i
		}
		return nodes
	}
}

// GetElementFaces returns the faces of an element as corner vertex lists
func GetElementFaces(elemType ElementType, vertices []int) [][]int {
	switch elemType {
	case Line, Line3:
		return [][]int{{vertices[0]}, {vertices[1]}}

	case Triangle, Triangle6:
		v := vertices
		return [][]int{
			{v[0], v[1]},
			{v[1], v[2]},
			{v[2], v[0]},
		}

	case Quad, Quad9:
		v := vertices
		return [][]int{
			{v[0], v[1]},
			{v[1], v[2]},
			{v[2], v[3]},
			{v[3], v[0]},
		}

	case Tet, Tet10:
		v := vertices
		return [][]int{
			{v[0], v[2], v[1]}, // Face 0
			{v[0], v[1], v[3]}, // Face 1
			{v[0], v[3], v[2]}, // Face 2
			{v[1], v[2], v[3]}, // Face 3
		}

	case Hex:
		v := vertices
		return [][]int{
			{v[0], v[3], v[2], v[1]}, // Face 0 (bottom)
			{v[4], v[5], v[6], v[7]}, // Face 1 (top)
			{v[0], v[1], v[5], v[4]}, // Face 2
			{v[1], v[2], v[6], v[5]}, // Face 3
			{v[2], v[3], v[7], v[6]}, // Face 4
			{v[3], v[0], v[4], v[7]}, // Face 5
		}

	case Prism:
		v := vertices
		return [][]int{
			{v[0], v[2], v[1]},       // Face 0 (bottom tri)
			{v[3], v[4], v[5]},       // Face 1 (top tri)
			{v[0], v[1], v[4], v[3]}, // Face 2 (quad)
			{v[1], v[2], v[5], v[4]}, // Face 3 (quad)
			{v[2], v[0], v[3], v[5]}, // Face 4 (quad)
		}

	default:
		return [][]int{}
	}
}

// ParseElementType is the inverse of String
func ParseElementType(name string) (ElementType, error) {
	for et := Line; et <= Point; et++ {
		if strings.EqualFold(et.String(), name) {
			return et, nil
		}
	}
	return Invalid, fmt.Errorf("unknown element type %q", name)
}
