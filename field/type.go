// Package field implements a typed field registry: an ordered list of
// (FieldKey, FieldType) pairs describing a heterogeneous state, with
// per-field storage/tangent layout and manifold operations (retract,
// difference, weighted mean).
package field

// Key identifies a field within a Registry. Callers define their own
// small-integer key spaces (see ahrsmodel).
type Key int

// Type is implemented by every field kind the registry can hold. It knows
// its own storage and tangent arities and the manifold operations proper
// to its shape.
type Type interface {
	// StorageArity is the number of slots this field occupies in the
	// stored state vector.
	StorageArity() int
	// TangentArity is the number of degrees of freedom this field
	// contributes to the covariance / tangent space.
	TangentArity() int
	// Retract implements ⊞ for this field: given the field's current
	// stored slice and a tangent delta of length TangentArity, it
	// returns the new stored slice.
	Retract(stored, delta []float64) []float64
	// Difference implements ⊟ for this field: given two stored slices,
	// it returns the tangent delta of length TangentArity such that
	// Retract(b, delta) == a.
	Difference(a, b []float64) []float64
	// WeightedMean computes the weighted mean of a set of stored
	// samples for this field type.
	WeightedMean(samples [][]float64, weights []float64) []float64
}

// Spec pairs a Key with the Type that describes it.
type Spec struct {
	Key  Key
	Type Type
}
