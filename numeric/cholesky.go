package numeric

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// MaxRegularizeAttempts bounds the symmetrize-and-regularize retry loop in
// ScaledSqrt before a Cholesky failure is treated as a fatal numeric error.
const MaxRegularizeAttempts = 8

// ScaledSqrt returns the lower-triangular square root of scale*cov, i.e. a
// matrix L such that L*L^T = scale*cov, computed via a symmetric
// positive-definite Cholesky decomposition.
//
// If the decomposition fails, cov is first symmetrised (cov <- (cov+cov^T)/2)
// and then diagonally regularized by the smallest power-of-ten increment
// that makes the decomposition succeed. Persistent failure after
// MaxRegularizeAttempts is returned as an error; callers must treat this as
// a fatal numeric divergence.
func ScaledSqrt(cov *mat.SymDense, scale float64) (*mat.TriDense, error) {
	n := cov.SymmetricDim()

	sym := mat.NewSymDense(n, nil)
	sym.CopySym(cov)
	Symmetrize(sym)

	scaled := mat.NewSymDense(n, nil)
	scaled.CopySym(sym)
	scaled.ScaleSym(scale, scaled)

	var chol mat.Cholesky
	eps := 0.0
	for attempt := 0; attempt <= MaxRegularizeAttempts; attempt++ {
		trial := mat.NewSymDense(n, nil)
		trial.CopySym(scaled)
		if eps > 0 {
			for i := 0; i < n; i++ {
				trial.SetSym(i, i, trial.At(i, i)+eps)
			}
		}

		if chol.Factorize(trial) {
			var l mat.TriDense
			chol.LTo(&l)
			return &l, nil
		}

		if eps == 0 {
			eps = 1e-12
		} else {
			eps *= 10
		}
	}

	return nil, fmt.Errorf("cholesky factorization failed after %d regularization attempts", MaxRegularizeAttempts)
}

// Symmetrize overwrites m in place with (m + m^T)/2, enforcing the
// invariant that a covariance matrix must stay symmetric after every
// a-posteriori step.
func Symmetrize(m *mat.SymDense) {
	n := m.SymmetricDim()
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			avg := (m.At(i, j) + m.At(j, i)) / 2
			m.SetSym(i, j, avg)
		}
	}
}
