package utils

// PartitionMap splits the indices [0, MaxIndex) into ParallelDegree
// contiguous buckets whose sizes differ by at most one
type PartitionMap struct {
	MaxIndex       int
	ParallelDegree int
	Partitions     [][2]int // begin and end (exclusive) of each bucket
}

func NewPartitionMap(parallelDegree, maxIndex int) (pm *PartitionMap) {
	if parallelDegree < 1 {
		parallelDegree = 1
	}
	pm = &PartitionMap{
		MaxIndex:       maxIndex,
		ParallelDegree: parallelDegree,
		Partitions:     make([][2]int, parallelDegree),
	}
	var (
		size  = maxIndex / parallelDegree
		extra = maxIndex % parallelDegree // the first buckets take one more
		begin int
	)
	for n := range pm.Partitions {
		end := begin + size
		if n < extra {
			end++
		}
		pm.Partitions[n] = [2]int{begin, end}
		begin = end
	}
	return
}

func (pm *PartitionMap) GetBucketRange(bucketNum int) (kMin, kMax int) {
	kMin, kMax = pm.Partitions[bucketNum][0], pm.Partitions[bucketNum][1]
	return
}

// Indices lists the members of a bucket
func (pm *PartitionMap) Indices(bucketNum int) (idx []int) {
	kMin, kMax := pm.GetBucketRange(bucketNum)
	idx = make([]int, 0, kMax-kMin)
	for k := kMin; k < kMax; k++ {
		idx = append(idx, k)
	}
	return
}
