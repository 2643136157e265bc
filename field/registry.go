package field

import "fmt"

// offset records where a field's data begins in the stored and tangent
// layouts.
type offset struct {
	spec         Spec
	storedStart  int
	tangentStart int
}

// Registry is the compile/construction-time description of a
// heterogeneous state: an ordered list of (Key, Type) pairs, with the
// byte/slot layout and per-field getters/setters this implies. It
// provides two semantic sizes: StoredSize (e.g. a quaternion occupies 4
// slots) and CovarianceSize (a quaternion contributes only 3 degrees
// of freedom).
type Registry struct {
	order      []Key
	offsets    map[Key]offset
	storedSize int
	covSize    int
}

// NewRegistry builds a Registry from an ordered list of field specs. It
// returns an error if any key appears more than once.
func NewRegistry(specs ...Spec) (*Registry, error) {
	r := &Registry{
		offsets: make(map[Key]offset, len(specs)),
	}

	for _, spec := range specs {
		if _, exists := r.offsets[spec.Key]; exists {
			return nil, fmt.Errorf("field: duplicate field key %v", spec.Key)
		}
		r.offsets[spec.Key] = offset{
			spec:         spec,
			storedStart:  r.storedSize,
			tangentStart: r.covSize,
		}
		r.order = append(r.order, spec.Key)
		r.storedSize += spec.Type.StorageArity()
		r.covSize += spec.Type.TangentArity()
	}

	return r, nil
}

// StoredSize returns the total number of slots in the stored state
// vector.
func (r *Registry) StoredSize() int { return r.storedSize }

// CovarianceSize returns the total number of degrees of freedom in the
// covariance / tangent vector.
func (r *Registry) CovarianceSize() int { return r.covSize }

// Keys returns the fields in registration order.
func (r *Registry) Keys() []Key {
	out := make([]Key, len(r.order))
	copy(out, r.order)
	return out
}

// Spec returns the field spec for key, or an error if key is not
// registered. A lookup with an unregistered key is a programming error.
func (r *Registry) Spec(key Key) (Spec, error) {
	off, ok := r.offsets[key]
	if !ok {
		return Spec{}, fmt.Errorf("field: unknown field key %v", key)
	}
	return off.spec, nil
}

// StoredSlice returns the sub-slice of data occupied by key's storage,
// and an error if key is unknown or data is too short.
func (r *Registry) StoredSlice(data []float64, key Key) ([]float64, error) {
	off, ok := r.offsets[key]
	if !ok {
		return nil, fmt.Errorf("field: unknown field key %v", key)
	}
	n := off.spec.Type.StorageArity()
	if off.storedStart+n > len(data) {
		return nil, fmt.Errorf("field: stored data too short for key %v", key)
	}
	return data[off.storedStart : off.storedStart+n], nil
}

// TangentSlice returns the sub-slice of a tangent vector occupied by
// key's degrees of freedom, and an error if key is unknown or the vector
// is too short.
func (r *Registry) TangentSlice(tangent []float64, key Key) ([]float64, error) {
	off, ok := r.offsets[key]
	if !ok {
		return nil, fmt.Errorf("field: unknown field key %v", key)
	}
	n := off.spec.Type.TangentArity()
	if off.tangentStart+n > len(tangent) {
		return nil, fmt.Errorf("field: tangent vector too short for key %v", key)
	}
	return tangent[off.tangentStart : off.tangentStart+n], nil
}

// StoredOffset returns the start index of key within the stored layout.
func (r *Registry) StoredOffset(key Key) (int, error) {
	off, ok := r.offsets[key]
	if !ok {
		return 0, fmt.Errorf("field: unknown field key %v", key)
	}
	return off.storedStart, nil
}

// TangentOffset returns the start index of key within the tangent layout.
func (r *Registry) TangentOffset(key Key) (int, error) {
	off, ok := r.offsets[key]
	if !ok {
		return 0, fmt.Errorf("field: unknown field key %v", key)
	}
	return off.tangentStart, nil
}
