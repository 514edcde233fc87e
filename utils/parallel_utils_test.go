package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitionMap(t *testing.T) {
	histogram := func(K, Np int) (histo map[int]int) {
		pm := NewPartitionMap(Np, K)
		histo = make(map[int]int)
		for n := 0; n < pm.ParallelDegree; n++ {
			histo[len(pm.Indices(n))]++
		}
		return
	}
	assert.Equal(t, map[int]int{0: 30, 1: 2}, histogram(2, 32))
	assert.Equal(t, map[int]int{1: 32}, histogram(32, 32))
	assert.Equal(t, map[int]int{8: 32}, histogram(256, 32))
	assert.Equal(t, map[int]int{8: 1, 9: 31}, histogram(287, 32))

	// Buckets tile the index range in order
	for K := 0; K < 200; K++ {
		pm := NewPartitionMap(7, K)
		next := 0
		for n := 0; n < pm.ParallelDegree; n++ {
			kMin, kMax := pm.GetBucketRange(n)
			assert.Equal(t, next, kMin)
			assert.LessOrEqual(t, kMax-kMin, K/7+1)
			next = kMax
		}
		assert.Equal(t, K, next)
	}

	pm := NewPartitionMap(0, 10)
	assert.Equal(t, 1, pm.ParallelDegree)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, pm.Indices(0))
}
