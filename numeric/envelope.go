package numeric

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ErrorEnvelope returns, for each row of cov, the square root of the sum of
// the absolute values of that row's entries -- a conservative per-axis
// uncertainty bound that also accounts for cross-axis correlation, not
// just the diagonal variance.
func ErrorEnvelope(cov mat.Symmetric) []float64 {
	n := cov.SymmetricDim()
	env := make([]float64, n)
	row := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			row[j] = math.Abs(cov.At(i, j))
		}
		env[i] = math.Sqrt(floats.Sum(row))
	}
	return env
}
