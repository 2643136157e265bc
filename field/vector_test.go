package field

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVectorRetractDifferenceInverse(t *testing.T) {
	assert := assert.New(t)

	v := Vector{N: 3}
	stored := []float64{1, 2, 3}
	delta := []float64{0.5, -0.1, 0.2}

	retracted := v.Retract(stored, delta)
	back := v.Difference(retracted, stored)
	assert.InDeltaSlice(delta, back, 1e-12)
}

func TestVectorWeightedMean(t *testing.T) {
	assert := assert.New(t)

	v := Vector{N: 2}
	samples := [][]float64{{1, 1}, {3, 3}}
	weights := []float64{0.5, 0.5}

	mean := v.WeightedMean(samples, weights)
	assert.Equal([]float64{2, 2}, mean)
}

func TestVectorArity(t *testing.T) {
	assert := assert.New(t)

	v := Vector{N: 9}
	assert.Equal(9, v.StorageArity())
	assert.Equal(9, v.TangentArity())
}
