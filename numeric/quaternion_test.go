package numeric

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentityRotate(t *testing.T) {
	assert := assert.New(t)

	q := Identity()
	v := q.Rotate([3]float64{1, 2, 3})
	assert.InDelta(1.0, v[0], 1e-12)
	assert.InDelta(2.0, v[1], 1e-12)
	assert.InDelta(3.0, v[2], 1e-12)
}

func TestRotatePreservesNorm(t *testing.T) {
	assert := assert.New(t)

	q := ExpMap([3]float64{0.3, -0.2, 0.1}).Normalized()
	v := [3]float64{0, 0, -9.80665}
	r := q.Rotate(v)

	inNorm := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	outNorm := math.Sqrt(r[0]*r[0] + r[1]*r[1] + r[2]*r[2])
	assert.InDelta(inNorm, outNorm, 1e-9)
}

func TestExpLogMapInverse(t *testing.T) {
	assert := assert.New(t)

	for _, omega := range [][3]float64{
		{0, 0, 0},
		{0.01, 0, 0},
		{0.1, -0.2, 0.05},
	} {
		q := ExpMap(omega)
		back := LogMap(q)
		assert.InDelta(omega[0], back[0], 1e-9)
		assert.InDelta(omega[1], back[1], 1e-9)
		assert.InDelta(omega[2], back[2], 1e-9)
	}
}

func TestMulConjIsIdentity(t *testing.T) {
	assert := assert.New(t)

	q := ExpMap([3]float64{0.4, 0.1, -0.3}).Normalized()
	id := q.Mul(q.Conj())
	assert.InDelta(1.0, id.W, 1e-9)
	assert.InDelta(0.0, id.X, 1e-9)
	assert.InDelta(0.0, id.Y, 1e-9)
	assert.InDelta(0.0, id.Z, 1e-9)
}

func TestNormalizedZeroFallsBackToIdentity(t *testing.T) {
	assert := assert.New(t)

	q := Quaternion{}.Normalized()
	assert.Equal(Identity(), q)
}

func TestFiniteDetectsNaN(t *testing.T) {
	assert := assert.New(t)

	assert.True(Identity().Finite())
	assert.False(Quaternion{W: math.NaN()}.Finite())
	assert.False(Quaternion{X: math.Inf(1)}.Finite())
}

func TestFromToSliceRoundTrip(t *testing.T) {
	assert := assert.New(t)

	in := []float64{0.5, 0.5, 0.5, 0.5}
	q := FromSlice(in)
	out := make([]float64, 4)
	q.ToSlice(out)
	assert.Equal(in, out)
}
