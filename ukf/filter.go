package ukf

import (
	"errors"
	"fmt"

	"github.com/windale-avionics/ukf9/field"
	"github.com/windale-avionics/ukf9/integrator"
	"github.com/windale-avionics/ukf9/measurement"
	"github.com/windale-avionics/ukf9/numeric"
	"github.com/windale-avionics/ukf9/state"
	"gonum.org/v1/gonum/mat"
)

// Sentinel errors for the three recognized failure modes.
var (
	// ErrDivergence marks a numeric divergence: a Cholesky failure after
	// regularisation, or a non-finite value produced by a model.
	ErrDivergence = errors.New("ukf: numeric divergence")
	// ErrProtocol marks a protocol misuse: steps invoked out of the
	// fixed IDLE -> A_PRIORI_DONE -> INNOVATION_DONE -> IDLE order.
	ErrProtocol = errors.New("ukf: protocol misuse")
	// ErrEmptyMeasurement marks an innovation step called with no
	// enabled measurement fields; the caller must skip the update.
	ErrEmptyMeasurement = errors.New("ukf: empty measurement vector")
)

// stage is the filter's position in the per-tick step cycle.
type stage int

const (
	idle stage = iota
	aPrioriDone
	innovationDone
)

// ProcessNoiseFunc returns the symmetric PSD process-noise covariance
// for a step of duration dt.
type ProcessNoiseFunc func(dt float64) *mat.SymDense

// Integrate performs one manifold integration step; RK4 and
// integrator.Euler both satisfy it.
type Integrate func(f integrator.DerivativeFunc, s *state.Vector, input interface{}, dt float64) (*state.Vector, error)

// Filter is a generic sigma-point UKF core: a fixed
// a-priori/innovation/a-posteriori step cycle driven externally, with
// innovation_covariance, cross_covariance and residual exposed as
// public fields so a two-filter coupling driver may mutate them
// between the innovation and a-posteriori steps.
type Filter struct {
	reg        *field.Registry
	derivative integrator.DerivativeFunc
	integrate  Integrate
	processQ   ProcessNoiseFunc
	cfg        Config
	weights    weights

	mean *state.Vector
	cov  *mat.SymDense

	st stage

	// aPriori holds results from the a-priori step, persisted for reuse
	// in the innovation step.
	aPrioriMean  *state.Vector
	aPrioriCov   *mat.SymDense
	aPrioriSigma *sigmaSet

	// InnovationCovariance, CrossCovariance and Residual are public
	// fields mutable by an outer coupling driver between the innovation
	// and a-posteriori steps.
	InnovationCovariance *mat.SymDense
	CrossCovariance      *mat.Dense
	Residual             *mat.VecDense
}

// New constructs a Filter over reg with initial mean and covariance
// (covariance must be PSD; this is not checked beyond Cholesky success
// in the first a-priori step), a process derivative callback, an
// integration scheme (ukf.Integrate, typically integrator.RK4), a
// process-noise function, and a sigma-point tuning config.
func New(reg *field.Registry, mean *state.Vector, cov *mat.SymDense, derivative integrator.DerivativeFunc, integrate Integrate, processQ ProcessNoiseFunc, cfg Config) (*Filter, error) {
	if mean.Registry() != reg {
		return nil, fmt.Errorf("ukf: initial mean is not over the filter's registry")
	}
	if n := cov.SymmetricDim(); n != reg.CovarianceSize() {
		return nil, fmt.Errorf("ukf: initial covariance has size %d, want %d", n, reg.CovarianceSize())
	}

	return &Filter{
		reg:        reg,
		derivative: derivative,
		integrate:  integrate,
		processQ:   processQ,
		cfg:        cfg,
		weights:    newWeights(reg.CovarianceSize(), cfg),
		mean:       mean.Clone(),
		cov:        cloneSym(cov),
		st:         idle,
	}, nil
}

func cloneSym(m *mat.SymDense) *mat.SymDense {
	out := mat.NewSymDense(m.SymmetricDim(), nil)
	out.CopySym(m)
	return out
}

// Reset clears the filter's divergence state and reinitialises mean and
// covariance.
func (f *Filter) Reset(mean *state.Vector, cov *mat.SymDense) error {
	if mean.Registry() != f.reg {
		return fmt.Errorf("ukf: reset mean is not over the filter's registry")
	}
	if n := cov.SymmetricDim(); n != f.reg.CovarianceSize() {
		return fmt.Errorf("ukf: reset covariance has size %d, want %d", n, f.reg.CovarianceSize())
	}
	f.mean = mean.Clone()
	f.cov = cloneSym(cov)
	f.st = idle
	f.aPrioriMean, f.aPrioriCov, f.aPrioriSigma = nil, nil, nil
	f.InnovationCovariance, f.CrossCovariance, f.Residual = nil, nil, nil
	return nil
}

// State returns the filter's current best-estimate mean. After an
// a-priori step and before a-posteriori, this is still the previous
// tick's corrected mean; use APrioriState for the propagated mean.
func (f *Filter) State() *state.Vector { return f.mean }

// Covariance returns a copy of the filter's current covariance.
func (f *Filter) Covariance() *mat.SymDense { return cloneSym(f.cov) }

// ErrorEnvelope returns the diagonal error envelope of the current
// covariance: the elementwise square root of the sum of absolute
// values of each covariance row.
func (f *Filter) ErrorEnvelope() []float64 { return numeric.ErrorEnvelope(f.cov) }

// Precision reports which real type the filter's public matrices and
// vectors use; this build always uses 64-bit (double) precision.
func (f *Filter) Precision() string { return "double" }

// APrioriState returns the mean propagated by the most recent a-priori
// step, for use as the "a-priori, not updated" exogenous input to a
// coupled filter. It stays available after the a-posteriori step, until
// the next a-priori step or Reset; before the first a-priori step it is
// nil.
func (f *Filter) APrioriState() *state.Vector { return f.aPrioriMean }

// APrioriStep takes the square root of the
// scaled current covariance, builds 2L+1 sigma points, propagates each
// by dt through the process model and the supplied integration scheme,
// reconstructs the a-priori mean and covariance, and inflates the
// covariance by the process-noise covariance scaled by dt.
func (f *Filter) APrioriStep(dt float64, input interface{}) error {
	if f.st != idle {
		return fmt.Errorf("%w: a-priori step called outside IDLE stage", ErrProtocol)
	}

	sigma, err := generateSigmaSet(f.reg, f.mean, f.cov, f.weights)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDivergence, err)
	}

	propagated := make([]*state.Vector, len(sigma.points))
	for i, p := range sigma.points {
		next, err := f.integrate(f.derivative, p, input, dt)
		if err != nil {
			return fmt.Errorf("%w: sigma point %d propagation failed: %v", ErrDivergence, i, err)
		}
		if !finiteState(next) {
			return fmt.Errorf("%w: sigma point %d produced non-finite state", ErrDivergence, i)
		}
		propagated[i] = next
	}

	mean, err := weightedMean(f.reg, propagated, f.weights)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDivergence, err)
	}

	cov, err := weightedCovariance(f.reg, propagated, mean, f.weights)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDivergence, err)
	}

	q := f.processQ(dt)
	n := f.reg.CovarianceSize()
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			cov.SetSym(i, j, cov.At(i, j)+q.At(i, j))
		}
	}

	f.aPrioriMean = mean
	f.aPrioriCov = cov
	f.aPrioriSigma = &sigmaSet{points: propagated}
	f.st = aPrioriDone
	return nil
}

// InnovationStep evaluates every enabled
// measurement field's expected-measurement function on each persisted
// a-priori sigma point, reconstructs the predicted measurement,
// innovation covariance, cross-covariance and residual. Calling it
// again with identical inputs before a-posteriori recomputes the same
// public fields deterministically, since the a-priori sigma set is not
// consumed.
//
// An empty measurement vector returns ErrEmptyMeasurement; the caller
// must skip the update for this tick but may still call a-posteriori,
// which is then a no-op pass-through of the a-priori mean/covariance.
func (f *Filter) InnovationStep(m *measurement.Vector, input interface{}) error {
	if f.st != aPrioriDone && f.st != innovationDone {
		return fmt.Errorf("%w: innovation step called outside A_PRIORI_DONE stage", ErrProtocol)
	}
	if m.Empty() {
		return ErrEmptyMeasurement
	}

	points := f.aPrioriSigma.points
	out := m.Len()
	expected := make([]*mat.VecDense, len(points))
	zMean := mat.NewVecDense(out, nil)

	for i, p := range points {
		z, err := m.Expected(p, input)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrDivergence, err)
		}
		expected[i] = z
		zMean.AddScaledVec(zMean, f.weights.meanWeight(i), z)
	}

	l := f.reg.CovarianceSize()
	syy := mat.NewSymDense(out, nil)
	pxy := mat.NewDense(l, out, nil)

	for i, p := range points {
		dz := mat.NewVecDense(out, nil)
		dz.SubVec(expected[i], zMean)

		dx, err := p.Difference(f.aPrioriMean)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrDivergence, err)
		}

		wc := f.weights.covWeight(i)

		outerYY := mat.NewDense(out, out, nil)
		outerYY.Mul(dz, dz.T())
		for r := 0; r < out; r++ {
			for c := r; c < out; c++ {
				syy.SetSym(r, c, syy.At(r, c)+wc*outerYY.At(r, c))
			}
		}

		outerXY := mat.NewDense(l, out, nil)
		outerXY.Mul(dx, dz.T())
		pxy.Add(pxy, scaleDense(outerXY, wc))
	}

	r := m.NoiseCov()
	for i := 0; i < out; i++ {
		for j := i; j < out; j++ {
			syy.SetSym(i, j, syy.At(i, j)+r.At(i, j))
		}
	}

	residual := mat.NewVecDense(out, nil)
	residual.SubVec(m.Observed(), zMean)

	f.InnovationCovariance = syy
	f.CrossCovariance = pxy
	f.Residual = residual
	f.st = innovationDone
	return nil
}

// APosterioriStep solves the Kalman gain via
// the Cholesky of S_yy, retracts the a-priori mean by K*y, and updates
// the covariance, symmetrising it afterward.
//
// If innovation was skipped (the caller never reached innovationDone
// because the measurement vector was empty), a-posteriori degenerates
// to accepting the a-priori mean and covariance unchanged.
func (f *Filter) APosterioriStep() error {
	if f.st == idle {
		return fmt.Errorf("%w: a-posteriori step called outside A_PRIORI_DONE or INNOVATION_DONE stage", ErrProtocol)
	}

	if f.st == aPrioriDone {
		f.mean = f.aPrioriMean
		f.cov = f.aPrioriCov
		f.st = idle
		return nil
	}

	l := f.reg.CovarianceSize()
	out := f.InnovationCovariance.SymmetricDim()

	var chol mat.Cholesky
	if !chol.Factorize(f.InnovationCovariance) {
		sym := cloneSym(f.InnovationCovariance)
		numeric.Symmetrize(sym)
		if !chol.Factorize(sym) {
			return fmt.Errorf("%w: a-posteriori Cholesky of innovation covariance failed", ErrDivergence)
		}
	}

	gainT := mat.NewDense(out, l, nil)
	if err := chol.SolveTo(gainT, f.CrossCovariance.T()); err != nil {
		return fmt.Errorf("%w: Kalman gain solve failed: %v", ErrDivergence, err)
	}
	gain := transposeDense(gainT)

	delta := mat.NewVecDense(l, nil)
	delta.MulVec(gain, f.Residual)

	mean, err := f.aPrioriMean.Retract(delta)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDivergence, err)
	}
	if !finiteState(mean) {
		return fmt.Errorf("%w: a-posteriori retraction produced non-finite state", ErrDivergence)
	}

	ks := mat.NewDense(l, out, nil)
	ks.Mul(gain, f.InnovationCovariance)
	correction := mat.NewDense(l, l, nil)
	correction.Mul(ks, gain.T())

	cov := mat.NewSymDense(l, nil)
	for i := 0; i < l; i++ {
		for j := i; j < l; j++ {
			cov.SetSym(i, j, f.aPrioriCov.At(i, j)-correction.At(i, j))
		}
	}
	numeric.Symmetrize(cov)

	f.mean = mean
	f.cov = cov
	f.st = idle
	return nil
}

func scaleDense(m *mat.Dense, s float64) *mat.Dense {
	out := mat.NewDense(m.RawMatrix().Rows, m.RawMatrix().Cols, nil)
	out.Scale(s, m)
	return out
}

func transposeDense(m *mat.Dense) *mat.Dense {
	r, c := m.Dims()
	out := mat.NewDense(c, r, nil)
	out.Copy(m.T())
	return out
}

func finiteState(s *state.Vector) bool {
	for _, x := range s.Raw() {
		if x != x || x > 1e300 || x < -1e300 {
			return false
		}
	}
	return true
}
