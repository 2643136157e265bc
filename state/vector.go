// Package state implements the state vector and its manifold operations:
// retract (⊞), difference (⊟), and per-field weighted mean, all built
// on top of a field.Registry.
package state

import (
	"fmt"

	"github.com/windale-avionics/ukf9/field"
	"gonum.org/v1/gonum/mat"
)

// Vector is a typed state vector: a flat, field-registry-described data
// array plus the registry needed to interpret it. The state is owned by
// whatever filter instance holds it; sigma points built from it are
// transient values owned by the step that creates them.
type Vector struct {
	reg  *field.Registry
	data []float64
}

// New creates a zero-valued Vector over reg.
func New(reg *field.Registry) *Vector {
	return &Vector{reg: reg, data: make([]float64, reg.StoredSize())}
}

// FromSlice creates a Vector over reg from an existing stored-size slice.
// The slice is copied; the caller retains ownership of the original.
func FromSlice(reg *field.Registry, data []float64) (*Vector, error) {
	if len(data) != reg.StoredSize() {
		return nil, fmt.Errorf("state: expected %d stored values, got %d", reg.StoredSize(), len(data))
	}
	v := New(reg)
	copy(v.data, data)
	return v, nil
}

// Registry returns the field registry this vector is laid out against.
func (v *Vector) Registry() *field.Registry { return v.reg }

// Clone returns a deep copy of v.
func (v *Vector) Clone() *Vector {
	out := &Vector{reg: v.reg, data: make([]float64, len(v.data))}
	copy(out.data, v.data)
	return out
}

// Raw returns the underlying stored slice. Callers must not retain or
// mutate the returned slice past the current step.
func (v *Vector) Raw() []float64 { return v.data }

// Get returns the stored slice for key. The returned slice aliases v's
// internal storage; callers that need to retain it must copy.
func (v *Vector) Get(key field.Key) ([]float64, error) {
	return v.reg.StoredSlice(v.data, key)
}

// Set overwrites the stored slice for key with value, which must have
// exactly the field's storage arity. A mismatched arity is a programming
// error.
func (v *Vector) Set(key field.Key, value []float64) error {
	spec, err := v.reg.Spec(key)
	if err != nil {
		return err
	}
	if len(value) != spec.Type.StorageArity() {
		return fmt.Errorf("state: field %v expects %d values, got %d", key, spec.Type.StorageArity(), len(value))
	}
	dst, err := v.reg.StoredSlice(v.data, key)
	if err != nil {
		return err
	}
	copy(dst, value)
	return nil
}

// Retract implements ⊞: it returns a new Vector obtained by retracting v
// by the tangent delta, whose length must equal the registry's
// covariance size. Each field is retracted independently by its own
// field.Type.
func (v *Vector) Retract(delta *mat.VecDense) (*Vector, error) {
	if delta.Len() != v.reg.CovarianceSize() {
		return nil, fmt.Errorf("state: retract delta has length %d, want %d", delta.Len(), v.reg.CovarianceSize())
	}

	out := New(v.reg)
	for _, key := range v.reg.Keys() {
		spec, err := v.reg.Spec(key)
		if err != nil {
			return nil, err
		}
		stored, err := v.reg.StoredSlice(v.data, key)
		if err != nil {
			return nil, err
		}
		tStart, err := v.reg.TangentOffset(key)
		if err != nil {
			return nil, err
		}
		n := spec.Type.TangentArity()
		tangent := make([]float64, n)
		for i := 0; i < n; i++ {
			tangent[i] = delta.AtVec(tStart + i)
		}
		retracted := spec.Type.Retract(stored, tangent)
		if err := out.Set(key, retracted); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Difference implements ⊟: it returns the tangent vector delta = v ⊟
// other, such that other.Retract(delta) == v, approximately.
func (v *Vector) Difference(other *Vector) (*mat.VecDense, error) {
	delta := mat.NewVecDense(v.reg.CovarianceSize(), nil)
	for _, key := range v.reg.Keys() {
		spec, err := v.reg.Spec(key)
		if err != nil {
			return nil, err
		}
		a, err := v.reg.StoredSlice(v.data, key)
		if err != nil {
			return nil, err
		}
		b, err := other.reg.StoredSlice(other.data, key)
		if err != nil {
			return nil, err
		}
		d := spec.Type.Difference(a, b)
		tStart, err := v.reg.TangentOffset(key)
		if err != nil {
			return nil, err
		}
		for i, x := range d {
			delta.SetVec(tStart+i, x)
		}
	}
	return delta, nil
}

// WeightedMean computes the per-field weighted mean of samples (all over
// the same registry as this receiver's registry) and returns the
// resulting Vector. samples[0] is treated as the current best-guess mean
// for fields (like quaternions) whose mean is computed iteratively.
func WeightedMean(reg *field.Registry, samples []*Vector, weights []float64) (*Vector, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("state: weighted mean requires at least one sample")
	}
	if len(samples) != len(weights) {
		return nil, fmt.Errorf("state: %d samples but %d weights", len(samples), len(weights))
	}

	out := New(reg)
	for _, key := range reg.Keys() {
		spec, err := reg.Spec(key)
		if err != nil {
			return nil, err
		}
		fieldSamples := make([][]float64, len(samples))
		for i, s := range samples {
			fs, err := reg.StoredSlice(s.data, key)
			if err != nil {
				return nil, err
			}
			fieldSamples[i] = fs
		}
		mean := spec.Type.WeightedMean(fieldSamples, weights)
		if err := out.Set(key, mean); err != nil {
			return nil, err
		}
	}
	return out, nil
}
