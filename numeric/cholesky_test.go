package numeric

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestScaledSqrtReproducesCovariance(t *testing.T) {
	assert := assert.New(t)

	cov := mat.NewSymDense(3, []float64{
		4, 1, 0,
		1, 3, 0.5,
		0, 0.5, 2,
	})

	l, err := ScaledSqrt(cov, 1.0)
	assert.NoError(err)

	var reconstructed mat.Dense
	reconstructed.Mul(l, l.T())

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			assert.InDelta(cov.At(i, j), reconstructed.At(i, j), 1e-9)
		}
	}
}

func TestScaledSqrtAppliesScale(t *testing.T) {
	assert := assert.New(t)

	cov := mat.NewSymDense(2, []float64{1, 0, 0, 1})
	l, err := ScaledSqrt(cov, 4.0)
	assert.NoError(err)

	var reconstructed mat.Dense
	reconstructed.Mul(l, l.T())
	assert.InDelta(4.0, reconstructed.At(0, 0), 1e-9)
	assert.InDelta(4.0, reconstructed.At(1, 1), 1e-9)
}

func TestScaledSqrtRegularizesNearSingular(t *testing.T) {
	assert := assert.New(t)

	// Rank-deficient: second row/col is a multiple of the first.
	cov := mat.NewSymDense(2, []float64{1, 1, 1, 1})
	l, err := ScaledSqrt(cov, 1.0)
	assert.NoError(err)
	assert.NotNil(l)
}

func TestSymmetrizePreservesDiagonal(t *testing.T) {
	assert := assert.New(t)

	m := mat.NewSymDense(2, []float64{2, 0.3, 0.3, 5})
	Symmetrize(m)
	assert.InDelta(2.0, m.At(0, 0), 1e-12)
	assert.InDelta(5.0, m.At(1, 1), 1e-12)
	assert.InDelta(m.At(0, 1), m.At(1, 0), 1e-12)
}
