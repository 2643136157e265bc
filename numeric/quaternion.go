// Package numeric provides the fixed-size dense linear algebra that the
// rest of this module builds on: gonum-backed vectors and matrices, a
// Cholesky decomposition with a regularization retry, and quaternion
// algebra including the log/exp maps used by the state manifold.
package numeric

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Quaternion is a unit or non-unit quaternion W + Xi + Yj + Zk.
type Quaternion struct {
	W, X, Y, Z float64
}

// Identity returns the identity rotation quaternion.
func Identity() Quaternion {
	return Quaternion{W: 1}
}

// Norm returns the Euclidean norm of q.
func (q Quaternion) Norm() float64 {
	return math.Sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
}

// Normalized returns q scaled to unit norm. If q is numerically zero it
// returns the identity quaternion.
func (q Quaternion) Normalized() Quaternion {
	n := q.Norm()
	if n < 1e-12 {
		return Identity()
	}
	return Quaternion{W: q.W / n, X: q.X / n, Y: q.Y / n, Z: q.Z / n}
}

// Conj returns the conjugate of q.
func (q Quaternion) Conj() Quaternion {
	return Quaternion{W: q.W, X: -q.X, Y: -q.Y, Z: -q.Z}
}

// Mul returns the Hamilton product q*r.
func (q Quaternion) Mul(r Quaternion) Quaternion {
	return Quaternion{
		W: q.W*r.W - q.X*r.X - q.Y*r.Y - q.Z*r.Z,
		X: q.W*r.X + q.X*r.W + q.Y*r.Z - q.Z*r.Y,
		Y: q.W*r.Y - q.X*r.Z + q.Y*r.W + q.Z*r.X,
		Z: q.W*r.Z + q.X*r.Y - q.Y*r.X + q.Z*r.W,
	}
}

// Scale returns q with every component scaled by s.
func (q Quaternion) Scale(s float64) Quaternion {
	return Quaternion{W: q.W * s, X: q.X * s, Y: q.Y * s, Z: q.Z * s}
}

// Add returns the component-wise sum of q and r.
func (q Quaternion) Add(r Quaternion) Quaternion {
	return Quaternion{W: q.W + r.W, X: q.X + r.X, Y: q.Y + r.Y, Z: q.Z + r.Z}
}

// Rotate rotates the 3-vector v from the reference frame into the frame
// that q represents, i.e. v_body = q * (0,v) * q_conj, returning the
// vector part.
func (q Quaternion) Rotate(v [3]float64) [3]float64 {
	p := Quaternion{W: 0, X: v[0], Y: v[1], Z: v[2]}
	r := q.Mul(p).Mul(q.Conj())
	return [3]float64{r.X, r.Y, r.Z}
}

// XYZ returns the vector part of q.
func (q Quaternion) XYZ() [3]float64 {
	return [3]float64{q.X, q.Y, q.Z}
}

// FromSlice builds a Quaternion from a 4-element slice in (w,x,y,z) order.
func FromSlice(s []float64) Quaternion {
	return Quaternion{W: s[0], X: s[1], Y: s[2], Z: s[3]}
}

// ToSlice writes q into a 4-element slice in (w,x,y,z) order.
func (q Quaternion) ToSlice(dst []float64) {
	dst[0], dst[1], dst[2], dst[3] = q.W, q.X, q.Y, q.Z
}

// Finite reports whether every component of q is finite. Retraction
// producing a non-finite quaternion component signals filter divergence.
func (q Quaternion) Finite() bool {
	return !math.IsNaN(q.W) && !math.IsInf(q.W, 0) &&
		!math.IsNaN(q.X) && !math.IsInf(q.X, 0) &&
		!math.IsNaN(q.Y) && !math.IsInf(q.Y, 0) &&
		!math.IsNaN(q.Z) && !math.IsInf(q.Z, 0)
}

// ExpMap builds the unit quaternion corresponding to the small-angle
// rotation-vector tangent omega (3-vector): vector part is omega*0.5,
// scalar part is sqrt(1-|omega*0.5|^2) when non-negative, else a
// renormalised approximation.
func ExpMap(omega [3]float64) Quaternion {
	half := [3]float64{omega[0] * 0.5, omega[1] * 0.5, omega[2] * 0.5}
	sq := half[0]*half[0] + half[1]*half[1] + half[2]*half[2]
	var w float64
	if sq <= 1 {
		w = math.Sqrt(1 - sq)
	} else {
		// renormalised approximation: treat (w,half) as already on the
		// unit sphere and rescale.
		n := math.Sqrt(sq)
		half[0] /= n
		half[1] /= n
		half[2] /= n
		w = 0
	}
	return Quaternion{W: w, X: half[0], Y: half[1], Z: half[2]}
}

// LogMap is the inverse of ExpMap: given a unit quaternion q close to the
// identity, it returns the 3-vector tangent omega such that
// ExpMap(omega) ~= q. Used by Difference (⊟).
func LogMap(q Quaternion) [3]float64 {
	q = q.Normalized()
	if q.W < 0 {
		q = Quaternion{W: -q.W, X: -q.X, Y: -q.Y, Z: -q.Z}
	}
	return [3]float64{2 * q.X, 2 * q.Y, 2 * q.Z}
}

// Vec returns q's vector part as a gonum vector, e.g. for plugging into
// matrix arithmetic in measurement models.
func (q Quaternion) Vec() *mat.VecDense {
	return mat.NewVecDense(3, []float64{q.X, q.Y, q.Z})
}
