// Package ukf implements a sigma-point Unscented Kalman Filter core: a
// fixed a-priori / innovation / a-posteriori step cycle over a
// state.Vector, with the scaled square-root covariance taken via a
// symmetric positive-definite Cholesky rather than an SVD.
package ukf

import (
	"math"

	"github.com/windale-avionics/ukf9/field"
	"github.com/windale-avionics/ukf9/numeric"
	"github.com/windale-avionics/ukf9/state"
	"gonum.org/v1/gonum/mat"
)

// Config holds the unitless UKF tuning parameters, with conventional
// defaults (alpha=1e-3, beta=2, kappa=0).
type Config struct {
	Alpha float64
	Beta  float64
	Kappa float64
}

// DefaultConfig returns the conventional default tuning.
func DefaultConfig() Config {
	return Config{Alpha: 1e-3, Beta: 2, Kappa: 0}
}

// weights holds the derived, unitless sigma-point weights for a filter
// of covariance size L.
type weights struct {
	lambda float64
	gamma  float64
	wm0    float64
	wc0    float64
	w      float64
}

func newWeights(l int, c Config) weights {
	L := float64(l)
	lambda := c.Alpha*c.Alpha*(L+c.Kappa) - L
	wm0 := lambda / (L + lambda)
	wc0 := wm0 + (1 - c.Alpha*c.Alpha + c.Beta)
	w := 1 / (2 * (L + lambda))
	return weights{lambda: lambda, gamma: math.Sqrt(L + lambda), wm0: wm0, wc0: wc0, w: w}
}

// meanWeight returns the sigma weight used for reconstructing a mean at
// column i of a 2L+1 sigma set (index 0 is the central point).
func (w weights) meanWeight(i int) float64 {
	if i == 0 {
		return w.wm0
	}
	return w.w
}

// covWeight returns the sigma weight used for reconstructing a
// covariance or cross-covariance contribution at column i.
func (w weights) covWeight(i int) float64 {
	if i == 0 {
		return w.wc0
	}
	return w.w
}

// sigmaSet is the set of 2L+1 sigma points of a filter with covariance
// size L, stored as state.Vectors in index order: 0 is the mean, 1..L
// are mean (+) column i of the scaled square root, L+1..2L are mean (-)
// column i.
type sigmaSet struct {
	points []*state.Vector
}

// generateSigmaSet builds the sigma set of mean with scaled square-root
// covariance sqrtCov = chol((L+lambda)*cov).
func generateSigmaSet(reg *field.Registry, mean *state.Vector, cov *mat.SymDense, w weights) (*sigmaSet, error) {
	l := reg.CovarianceSize()
	sqrtCov, err := numeric.ScaledSqrt(cov, l2lambda(l, w))
	if err != nil {
		return nil, err
	}

	points := make([]*state.Vector, 2*l+1)
	points[0] = mean

	for i := 0; i < l; i++ {
		col := mat.Col(nil, i, sqrtCov)
		delta := mat.NewVecDense(l, col)

		plus, err := mean.Retract(delta)
		if err != nil {
			return nil, err
		}
		points[1+i] = plus

		neg := mat.NewVecDense(l, nil)
		neg.ScaleVec(-1, delta)
		minus, err := mean.Retract(neg)
		if err != nil {
			return nil, err
		}
		points[1+l+i] = minus
	}

	return &sigmaSet{points: points}, nil
}

// l2lambda returns L+lambda, the scale factor applied to the covariance
// before taking its square root (gamma squared).
func l2lambda(l int, w weights) float64 {
	return float64(l) + w.lambda
}

// weightedMean reconstructs the weighted mean of a sigma set's points
// (or of any set of state.Vectors sharing the same registry and sigma
// weighting).
func weightedMean(reg *field.Registry, points []*state.Vector, w weights) (*state.Vector, error) {
	weightsSlice := make([]float64, len(points))
	for i := range points {
		weightsSlice[i] = w.meanWeight(i)
	}
	return state.WeightedMean(reg, points, weightsSlice)
}

// weightedCovariance reconstructs the weighted outer-product covariance
// of difference(points[i], mean), without the additive process-noise
// term, which the caller adds separately.
func weightedCovariance(reg *field.Registry, points []*state.Vector, mean *state.Vector, w weights) (*mat.SymDense, error) {
	l := reg.CovarianceSize()
	cov := mat.NewSymDense(l, nil)

	for i, p := range points {
		d, err := p.Difference(mean)
		if err != nil {
			return nil, err
		}
		outer := mat.NewDense(l, l, nil)
		outer.Mul(d, d.T())
		wc := w.covWeight(i)
		for r := 0; r < l; r++ {
			for c := r; c < l; c++ {
				cov.SetSym(r, c, cov.At(r, c)+wc*outer.At(r, c))
			}
		}
	}

	return cov, nil
}
