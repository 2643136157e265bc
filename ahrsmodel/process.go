package ahrsmodel

import (
	"fmt"

	"github.com/windale-avionics/ukf9/state"
	"gonum.org/v1/gonum/mat"
)

// Derivative implements the AHRS process model: attitude evolves by
// q_dot = -1/2 * (0,omega) (x) q (body-frame angular velocity, rate
// quaternion on the left, conjugated), angular velocity and
// acceleration are modelled constant (their variance enters through
// process noise, not through a nonzero rate here).
//
// field.Quaternion.Retract is a right retraction, Q <- Q (x) q_delta,
// so a tangent of omega fed through it would integrate to
// q_dot = 1/2*q(x)(0,omega) -- rate on the right, the wrong
// multiplication order. To reproduce the left-multiplied, conjugated
// kinematics through a right retraction, the tangent has to be
// rotated into q's own frame and negated first: since
// Retract(q,v) ~= q (x) ExpMap(v) and ExpMap(v) ~= q^-1 (x) ExpMap(q
// Rotate(v)) (x) q for small v, choosing v = -Conj(q).Rotate(omega)
// makes the right retraction match the left-multiplied rate exactly
// to first order.
func Derivative(s *state.Vector, input interface{}) (*mat.VecDense, error) {
	q, err := attitudeOf(s)
	if err != nil {
		return nil, fmt.Errorf("ahrsmodel: derivative: %w", err)
	}

	raw, err := s.Get(AngularVelocity)
	if err != nil {
		return nil, fmt.Errorf("ahrsmodel: derivative: %w", err)
	}
	var omega [3]float64
	copy(omega[:], raw)

	tangent := q.Conj().Rotate(omega)

	out := mat.NewVecDense(9, nil)
	out.SetVec(0, -tangent[0])
	out.SetVec(1, -tangent[1])
	out.SetVec(2, -tangent[2])
	// AngularVelocity and Acceleration tangents stay zero: "constant"
	// model, their uncertainty grows only via process noise.
	return out, nil
}
