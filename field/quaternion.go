package field

import "github.com/windale-avionics/ukf9/numeric"

// IntrinsicMeanIterations is the fixed iteration count for the quaternion
// intrinsic mean.
const IntrinsicMeanIterations = 3

// Quaternion is the FieldType for a unit-quaternion field. Storage arity
// is 4 (w,x,y,z); tangent arity is 3 (a small-angle rotation vector),
// since a unit quaternion has three degrees of freedom.
type Quaternion struct{}

// StorageArity implements Type.
func (Quaternion) StorageArity() int { return 4 }

// TangentArity implements Type.
func (Quaternion) TangentArity() int { return 3 }

// Retract implements ⊞ for a quaternion field: given tangent omega, form
// q_delta whose vector part is omega*0.5 and scalar part is
// sqrt(1-|omega*0.5|^2) (or a renormalised approximation), then
// Q <- Q (x) q_delta, normalised.
func (Quaternion) Retract(stored, delta []float64) []float64 {
	q := numeric.FromSlice(stored)
	qDelta := numeric.ExpMap([3]float64{delta[0], delta[1], delta[2]})
	result := q.Mul(qDelta).Normalized()
	out := make([]float64, 4)
	result.ToSlice(out)
	return out
}

// Difference implements ⊟ for a quaternion field: q_d = Qb^-1 (x) Qa,
// re-signed so w >= 0, tangent = 2*q_d.xyz. This inverts the right
// retraction in Retract: Retract(b, Difference(a, b)) == a.
func (Quaternion) Difference(a, b []float64) []float64 {
	qa := numeric.FromSlice(a)
	qb := numeric.FromSlice(b)
	qd := qb.Conj().Mul(qa)
	omega := numeric.LogMap(qd)
	return []float64{omega[0], omega[1], omega[2]}
}

// WeightedMean computes the intrinsic mean of the quaternion samples: a
// fixed number of iterations starting from samples[0] (the sigma-0 mean
// from the previous step), each time retracting the running mean by the
// weighted sum of tangent residuals of every sample.
func (q Quaternion) WeightedMean(samples [][]float64, weights []float64) []float64 {
	mean := make([]float64, 4)
	copy(mean, samples[0])

	for iter := 0; iter < IntrinsicMeanIterations; iter++ {
		sum := [3]float64{}
		for s, sample := range samples {
			d := q.Difference(sample, mean)
			w := weights[s]
			sum[0] += w * d[0]
			sum[1] += w * d[1]
			sum[2] += w * d[2]
		}
		mean = q.Retract(mean, sum[:])
	}
	return mean
}
