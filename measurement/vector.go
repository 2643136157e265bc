// Package measurement implements a dynamic measurement vector: a
// runtime-composed, ordered collection of enabled measurement fields,
// each with an expected-measurement function and a fixed noise
// variance, producing a variable-length residual whose entries share
// the same field order as the diagonal measurement-noise matrix.
package measurement

import (
	"fmt"

	"github.com/windale-avionics/ukf9/field"
	"github.com/windale-avionics/ukf9/state"
	"gonum.org/v1/gonum/mat"
)

// ExpectedFunc computes the expected value of a measurement field given a
// state sigma point and an optional exogenous input.
type ExpectedFunc func(s *state.Vector, input interface{}) ([]float64, error)

// FieldSpec describes one enabled measurement field: its type (reusing
// field.Type for arity and weighted-mean/reconciliation semantics), its
// expected-measurement closure, and its fixed per-axis noise variance.
type FieldSpec struct {
	Key      field.Key
	Type     field.Type
	Expected ExpectedFunc
	Variance []float64
}

// Vector is a dynamic, ordered collection of enabled measurement fields
// together with an observed value for each.
type Vector struct {
	specs   []FieldSpec
	values  [][]float64
	offsets []int
	size    int
}

// NewVector builds an empty measurement vector. Fields are appended in
// the order Enable is called, and that order is shared by the residual,
// the expected-measurement array, and the diagonal noise matrix.
func NewVector() *Vector {
	return &Vector{}
}

// Enable appends spec to the measurement vector with the observed value
// obs (length must equal spec.Type.StorageArity()). Measurement fields in
// this system are always plain vectors (accel/gyro/mag axes), so storage
// arity equals tangent arity.
func (v *Vector) Enable(spec FieldSpec, obs []float64) error {
	if len(obs) != spec.Type.StorageArity() {
		return fmt.Errorf("measurement: field %v expects %d values, got %d", spec.Key, spec.Type.StorageArity(), len(obs))
	}
	if len(spec.Variance) != spec.Type.TangentArity() {
		return fmt.Errorf("measurement: field %v variance has %d entries, want %d", spec.Key, len(spec.Variance), spec.Type.TangentArity())
	}
	v.offsets = append(v.offsets, v.size)
	v.specs = append(v.specs, spec)
	cp := make([]float64, len(obs))
	copy(cp, obs)
	v.values = append(v.values, cp)
	v.size += spec.Type.TangentArity()
	return nil
}

// Len returns the total residual length: the sum of tangent arities of
// every enabled field.
func (v *Vector) Len() int { return v.size }

// Empty reports whether no fields are enabled. An empty measurement
// vector is under-determined and causes the innovation step to be
// skipped.
func (v *Vector) Empty() bool { return len(v.specs) == 0 }

// Specs returns the enabled field specs in order.
func (v *Vector) Specs() []FieldSpec { return v.specs }

// Observed returns the flattened observed values in field order, as a
// gonum vector of length Len().
func (v *Vector) Observed() *mat.VecDense {
	out := mat.NewVecDense(v.size, nil)
	idx := 0
	for _, val := range v.values {
		for _, x := range val {
			out.SetVec(idx, x)
			idx++
		}
	}
	return out
}

// NoiseCov returns the diagonal measurement-noise covariance matrix R,
// assembled by concatenating each enabled field's variance vector in
// field order.
func (v *Vector) NoiseCov() *mat.SymDense {
	diag := make([]float64, v.size)
	idx := 0
	for _, spec := range v.specs {
		for _, x := range spec.Variance {
			diag[idx] = x
			idx++
		}
	}
	r := mat.NewSymDense(v.size, nil)
	for i, x := range diag {
		r.SetSym(i, i, x)
	}
	return r
}

// Expected evaluates every enabled field's expected-measurement function
// on sigma point s and returns the flattened result, in the same field
// order as Observed and NoiseCov.
func (v *Vector) Expected(s *state.Vector, input interface{}) (*mat.VecDense, error) {
	out := mat.NewVecDense(v.size, nil)
	idx := 0
	for _, spec := range v.specs {
		z, err := spec.Expected(s, input)
		if err != nil {
			return nil, fmt.Errorf("measurement: field %v expected-measurement failed: %w", spec.Key, err)
		}
		if len(z) != spec.Type.TangentArity() {
			return nil, fmt.Errorf("measurement: field %v expected %d values, got %d", spec.Key, spec.Type.TangentArity(), len(z))
		}
		for _, x := range z {
			out.SetVec(idx, x)
			idx++
		}
	}
	return out, nil
}
