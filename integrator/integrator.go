// Package integrator implements Euler and RK4 stepping over the state
// manifold. The derivative callback returns a *tangent* vector
// (covariance-size), not a state-shaped one. This lets RK4's
// intermediate combinations (k1+2k2+2k3+k4) be ordinary
// Euclidean vector arithmetic in tangent space, with manifold-aware
// retraction (and, for quaternion fields, renormalisation) applied only
// once, at the very end of each stage and the final step.
package integrator

import (
	"fmt"

	"github.com/windale-avionics/ukf9/state"
	"gonum.org/v1/gonum/mat"
)

// DerivativeFunc computes the total derivative of s (optionally driven by
// an exogenous input) as a tangent vector. Every entry must be finite.
type DerivativeFunc func(s *state.Vector, input interface{}) (*mat.VecDense, error)

// scale returns a new vector equal to v scaled by s.
func scale(v *mat.VecDense, s float64) *mat.VecDense {
	out := mat.NewVecDense(v.Len(), nil)
	out.ScaleVec(s, v)
	return out
}

// sumScaled returns sum(coeffs[i]*vecs[i]).
func sumScaled(vecs []*mat.VecDense, coeffs []float64) *mat.VecDense {
	out := mat.NewVecDense(vecs[0].Len(), nil)
	for i, v := range vecs {
		out.AddScaledVec(out, coeffs[i], v)
	}
	return out
}

// Euler performs a first-order Euler step: s' = s (+) (dt * f(s)).
func Euler(f DerivativeFunc, s *state.Vector, input interface{}, dt float64) (*state.Vector, error) {
	k1, err := f(s, input)
	if err != nil {
		return nil, fmt.Errorf("integrator: euler derivative failed: %w", err)
	}
	return s.Retract(scale(k1, dt))
}

// RK4 performs a classical fourth-order Runge-Kutta step over the state
// manifold:
//
//	k1 = f(s)
//	k2 = f(s (+) (dt/2 * k1))
//	k3 = f(s (+) (dt/2 * k2))
//	k4 = f(s (+) (dt   * k3))
//	s' = s (+) (dt/6 * (k1 + 2*k2 + 2*k3 + k4))
func RK4(f DerivativeFunc, s *state.Vector, input interface{}, dt float64) (*state.Vector, error) {
	k1, err := f(s, input)
	if err != nil {
		return nil, fmt.Errorf("integrator: rk4 k1 derivative failed: %w", err)
	}

	s2, err := s.Retract(scale(k1, dt/2))
	if err != nil {
		return nil, fmt.Errorf("integrator: rk4 k1 retraction failed: %w", err)
	}
	k2, err := f(s2, input)
	if err != nil {
		return nil, fmt.Errorf("integrator: rk4 k2 derivative failed: %w", err)
	}

	s3, err := s.Retract(scale(k2, dt/2))
	if err != nil {
		return nil, fmt.Errorf("integrator: rk4 k2 retraction failed: %w", err)
	}
	k3, err := f(s3, input)
	if err != nil {
		return nil, fmt.Errorf("integrator: rk4 k3 derivative failed: %w", err)
	}

	s4, err := s.Retract(scale(k3, dt))
	if err != nil {
		return nil, fmt.Errorf("integrator: rk4 k3 retraction failed: %w", err)
	}
	k4, err := f(s4, input)
	if err != nil {
		return nil, fmt.Errorf("integrator: rk4 k4 derivative failed: %w", err)
	}

	combined := sumScaled([]*mat.VecDense{k1, k2, k3, k4}, []float64{1, 2, 2, 1})
	return s.Retract(scale(combined, dt/6))
}
