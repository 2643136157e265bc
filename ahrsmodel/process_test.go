package ahrsmodel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/windale-avionics/ukf9/integrator"
	"github.com/windale-avionics/ukf9/state"
)

func TestDerivativeReturnsNegatedAngularVelocityAsAttitudeTangentAtIdentity(t *testing.T) {
	assert := assert.New(t)

	reg, err := AHRSRegistry()
	assert.NoError(err)

	s := state.New(reg)
	assert.NoError(s.Set(Attitude, []float64{1, 0, 0, 0}))
	assert.NoError(s.Set(AngularVelocity, []float64{0.1, -0.2, 0.3}))
	assert.NoError(s.Set(Acceleration, []float64{0, 0, 0}))

	d, err := Derivative(s, nil)
	assert.NoError(err)
	// At identity attitude Conj(q).Rotate(omega) == omega, so the
	// tangent is -omega: q_dot = -1/2*(0,omega)(x)q.
	assert.InDelta(-0.1, d.AtVec(0), 1e-12)
	assert.InDelta(0.2, d.AtVec(1), 1e-12)
	assert.InDelta(-0.3, d.AtVec(2), 1e-12)

	// Rate and acceleration tangents stay zero: a constant model.
	for i := 3; i < 9; i++ {
		assert.Equal(0.0, d.AtVec(i))
	}
}

// TestDerivativeIntegratesToClosedFormYaw checks the process model
// against a rotation whose exact solution is known independently of
// any trajectory generator: constant body-frame yaw rate omegaZ about
// the z axis starting from identity satisfies
// q_dot = -1/2*(0,0,0,omegaZ)(x)q, whose closed-form solution is
// q(t) = (cos(omegaZ*t/2), 0, 0, -sin(omegaZ*t/2)).
func TestDerivativeIntegratesToClosedFormYaw(t *testing.T) {
	assert := assert.New(t)

	reg, err := AHRSRegistry()
	assert.NoError(err)

	s := state.New(reg)
	assert.NoError(s.Set(Attitude, []float64{1, 0, 0, 0}))
	const omegaZ = 0.5
	assert.NoError(s.Set(AngularVelocity, []float64{0, 0, omegaZ}))
	assert.NoError(s.Set(Acceleration, []float64{0, 0, 0}))

	const dt = 1e-3
	const steps = 1000
	for i := 0; i < steps; i++ {
		s, err = integrator.RK4(Derivative, s, nil, dt)
		assert.NoError(err)
	}

	got, err := s.Get(Attitude)
	assert.NoError(err)

	total := dt * steps
	want := []float64{math.Cos(omegaZ * total / 2), 0, 0, -math.Sin(omegaZ * total / 2)}
	for i := range want {
		assert.InDelta(want[i], got[i], 1e-6)
	}
}
