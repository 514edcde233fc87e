package mesh

import (
	"fmt"
	"log"
	"math"

	metis "github.com/notargets/go-metis"
	"github.com/notargets/gofe/utils"
)

// PartitionConfig holds configuration for mesh partitioning
type PartitionConfig struct {
	NumPartitions    int32
	ImbalanceFactor  float32 // e.g., 1.05 for 5% imbalance
	UseEdgeWeights   bool
	UseVertexWeights bool
	Objective        string // "cut" or "vol"
	Verbose          bool
}

// DefaultPartitionConfig returns default partitioning configuration
func DefaultPartitionConfig(nparts int32) *PartitionConfig {
	return &PartitionConfig{
		NumPartitions:    nparts,
		ImbalanceFactor:  1.05,
		UseEdgeWeights:   true,
		UseVertexWeights: true,
		Objective:        "vol", // minimize communication volume
	}
}

// MeshPartitioner splits the elements of a mesh into sets of similar
// evaluation cost for parallel assembly
type MeshPartitioner struct {
	mesh   *Mesh
	config *PartitionConfig

	// Cost models
	computeCostModel func(elemType utils.ElementType) int32
	commCostModel    func(faceVertices int) int32
}

// NewMeshPartitioner creates a new partitioner for the given mesh
func NewMeshPartitioner(mesh *Mesh, config *PartitionConfig) *MeshPartitioner {
	mp := &MeshPartitioner{
		mesh:   mesh,
		config: config,
	}

	// Evaluation cost grows with the number of shape functions
	mp.computeCostModel = func(elemType utils.ElementType) int32 {
		return int32(elemType.GetNumNodes())
	}

	// Shared nodes across a face
	mp.commCostModel = func(faceVertices int) int32 {
		return int32(faceVertices)
	}

	return mp
}

// Partition sets m.EToP using nparts partitions with the default configuration
func Partition(m *Mesh, nparts int) error {
	return NewMeshPartitioner(m, DefaultPartitionConfig(int32(nparts))).Partition()
}

// Partition performs the mesh partitioning
func (mp *MeshPartitioner) Partition() error {
	ne := mp.mesh.NumElements
	if mp.config.NumPartitions < 1 {
		return fmt.Errorf("invalid number of partitions %d", mp.config.NumPartitions)
	}
	if mp.mesh.EToE == nil {
		mp.mesh.BuildConnectivity()
	}
	if int(mp.config.NumPartitions) > ne {
		return fmt.Errorf("cannot split %d elements into %d partitions", ne, mp.config.NumPartitions)
	}
	mp.mesh.EToP = make([]int, ne)
	if mp.config.NumPartitions == 1 {
		return nil
	}

	log.Printf("Partitioning mesh with %d elements into %d parts",
		ne, mp.config.NumPartitions)

	xadj, adjncy, vwgt, adjwgt := mp.buildMetisGraph()

	opts := make([]int32, metis.NoOptions)
	err := metis.SetDefaultOptions(opts)
	if err != nil {
		return fmt.Errorf("failed to set METIS options: %w", err)
	}

	if mp.config.Objective == "vol" {
		opts[metis.OptionObjType] = metis.ObjTypeVol
	} else {
		opts[metis.OptionObjType] = metis.ObjTypeCut
	}

	ubvec := []float32{mp.config.ImbalanceFactor}

	var vwgtPtr, adjwgtPtr []int32
	if mp.config.UseVertexWeights {
		vwgtPtr = vwgt
	}
	if mp.config.UseEdgeWeights {
		adjwgtPtr = adjwgt
	}

	part, objval, err := metis.PartGraphKwayWeighted(
		xadj, adjncy, vwgtPtr, adjwgtPtr,
		mp.config.NumPartitions, nil, ubvec, opts,
	)
	if err != nil {
		return fmt.Errorf("METIS partitioning failed: %w", err)
	}

	for i := 0; i < ne; i++ {
		mp.mesh.EToP[i] = int(part[i])
	}

	stats := mp.Analyze()
	log.Printf("Partition: objective %d, cut faces %d, load imbalance %.2f%%, load range [%d, %d]",
		objval, stats.CutFaces, stats.Imbalance*100, stats.MinLoad, stats.MaxLoad)
	if mp.config.Verbose {
		for _, ps := range stats.Parts {
			log.Printf("  Partition %d: %d elements, load %d, types %v, %d neighbors",
				ps.ID, ps.NumElements, ps.ComputeLoad, ps.ElementTypes, len(ps.NumNeighbors))
		}
	}
	return nil
}

// buildMetisGraph converts the element dual graph to METIS CSR format
func (mp *MeshPartitioner) buildMetisGraph() (xadj, adjncy, vwgt, adjwgt []int32) {
	ne := mp.mesh.NumElements

	vwgt = make([]int32, ne)
	for i := 0; i < ne; i++ {
		vwgt[i] = mp.computeCostModel(mp.mesh.ElementTypes[i])
	}

	xadj = make([]int32, ne+1)
	for elem := 0; elem < ne; elem++ {
		faces := utils.GetElementFaces(mp.mesh.ElementTypes[elem], mp.mesh.EtoV[elem])
		for faceIdx, neighbor := range mp.mesh.EToE[elem] {
			if neighbor >= 0 && neighbor != elem {
				adjncy = append(adjncy, int32(neighbor))
				adjwgt = append(adjwgt, mp.commCostModel(len(faces[faceIdx])))
			}
		}
		xadj[elem+1] = int32(len(adjncy))
	}
	return
}

// PartitionStats holds statistics for a single partition
type PartitionStats struct {
	ID           int
	NumElements  int
	ComputeLoad  int64
	ElementTypes map[utils.ElementType]int
	NumNeighbors map[int]int // neighbor partition -> shared faces
}

// PartitionReport summarizes the quality of a partition
type PartitionReport struct {
	Parts     []PartitionStats
	CutFaces  int
	MinLoad   int64
	MaxLoad   int64
	Imbalance float64 // max load / average load - 1
}

// Analyze computes partition quality metrics from m.EToP
func (mp *MeshPartitioner) Analyze() (r PartitionReport) {
	nparts := 0
	for _, p := range mp.mesh.EToP {
		if p+1 > nparts {
			nparts = p + 1
		}
	}
	r.Parts = make([]PartitionStats, nparts)
	for i := range r.Parts {
		r.Parts[i].ID = i
		r.Parts[i].ElementTypes = make(map[utils.ElementType]int)
		r.Parts[i].NumNeighbors = make(map[int]int)
	}

	for elem := 0; elem < mp.mesh.NumElements; elem++ {
		part := mp.mesh.EToP[elem]
		stats := &r.Parts[part]
		stats.NumElements++
		stats.ElementTypes[mp.mesh.ElementTypes[elem]]++
		stats.ComputeLoad += int64(mp.computeCostModel(mp.mesh.ElementTypes[elem]))

		for _, neighbor := range mp.mesh.EToE[elem] {
			if neighbor > elem { // count each face once
				np := mp.mesh.EToP[neighbor]
				if np != part {
					r.CutFaces++
					r.Parts[part].NumNeighbors[np]++
					r.Parts[np].NumNeighbors[part]++
				}
			}
		}
	}

	var (
		avgLoad float64
		maxLoad int64
		minLoad int64 = math.MaxInt64
	)
	for _, stats := range r.Parts {
		avgLoad += float64(stats.ComputeLoad)
		if stats.ComputeLoad > maxLoad {
			maxLoad = stats.ComputeLoad
		}
		if stats.ComputeLoad < minLoad {
			minLoad = stats.ComputeLoad
		}
	}
	r.MinLoad, r.MaxLoad = minLoad, maxLoad
	if nparts > 0 {
		avgLoad /= float64(nparts)
		r.Imbalance = float64(maxLoad)/avgLoad - 1.0
	}
	return
}

// PartitionElements returns the elements of each partition, in element order
func (m *Mesh) PartitionElements() (parts [][]int) {
	for elem, p := range m.EToP {
		for len(parts) <= p {
			parts = append(parts, nil)
		}
		parts[p] = append(parts[p], elem)
	}
	return
}
