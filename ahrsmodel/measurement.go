// Package ahrsmodel's measurement model: each sensor axis is bias +
// scale * ideal_prediction, except the magnetometer, whose ideal
// prediction is passed through an unconstrained 3x3 mixing matrix
// instead of a diagonal scale.
//
// Each expected-measurement function is evaluated once per sigma
// point of whichever filter's innovation step calls it. The AHRS and
// parameter filters each run their own innovation step over the same
// raw measurement, so two variants are needed per sensor: one
// evaluated with state=ahrs, input=params (used by the AHRS filter),
// one with state=params, input=ahrs (used by the parameter filter).
package ahrsmodel

import (
	"fmt"

	"github.com/windale-avionics/ukf9/field"
	"github.com/windale-avionics/ukf9/numeric"
	"github.com/windale-avionics/ukf9/state"
)

func worldGravity() [3]float64  { return [3]float64{0, 0, -Gravity} }
func worldMagnetic() [3]float64 { return [3]float64{EarthMagnitude, 0, 0} }

// asState recovers the exogenous input's concrete state.Vector. The
// UKF core treats the exogenous input opaquely; in this wiring it is
// always the coupled filter's mean.
func asState(input interface{}) (*state.Vector, error) {
	s, ok := input.(*state.Vector)
	if !ok {
		return nil, fmt.Errorf("ahrsmodel: exogenous input is %T, want *state.Vector", input)
	}
	return s, nil
}

func attitudeOf(s *state.Vector) (numeric.Quaternion, error) {
	raw, err := s.Get(Attitude)
	if err != nil {
		return numeric.Quaternion{}, fmt.Errorf("ahrsmodel: %w", err)
	}
	return numeric.FromSlice(raw), nil
}

func biasScaleAxis(params *state.Vector, biasKey, scaleKey field.Key, ideal [3]float64) ([]float64, error) {
	bias, err := params.Get(biasKey)
	if err != nil {
		return nil, fmt.Errorf("ahrsmodel: %w", err)
	}
	scale, err := params.Get(scaleKey)
	if err != nil {
		return nil, fmt.Errorf("ahrsmodel: %w", err)
	}
	out := make([]float64, 3)
	for i := 0; i < 3; i++ {
		out[i] = bias[i] + scale[i]*ideal[i]
	}
	return out, nil
}

func magnetometerAxis(params *state.Vector, ideal [3]float64) ([]float64, error) {
	bias, err := params.Get(MagnetometerBias)
	if err != nil {
		return nil, fmt.Errorf("ahrsmodel: %w", err)
	}
	mix, err := params.Get(MagnetometerMixing)
	if err != nil {
		return nil, fmt.Errorf("ahrsmodel: %w", err)
	}
	out := make([]float64, 3)
	for r := 0; r < 3; r++ {
		sum := 0.0
		for c := 0; c < 3; c++ {
			sum += mix[r*3+c] * ideal[c]
		}
		out[r] = bias[r] + sum
	}
	return out, nil
}

// AHRSAccelerometerExpected evaluates the accelerometer model with the
// AHRS filter's own sigma point as state and the parameter filter's
// mean as exogenous input. It satisfies measurement.ExpectedFunc.
func AHRSAccelerometerExpected(s *state.Vector, input interface{}) ([]float64, error) {
	params, err := asState(input)
	if err != nil {
		return nil, err
	}
	q, err := attitudeOf(s)
	if err != nil {
		return nil, err
	}
	ideal := q.Rotate(worldGravity())
	return biasScaleAxis(params, AccelerometerBias, AccelerometerScale, ideal)
}

// AHRSGyroscopeExpected evaluates the gyroscope model with the AHRS
// filter's own sigma point as state.
func AHRSGyroscopeExpected(s *state.Vector, input interface{}) ([]float64, error) {
	params, err := asState(input)
	if err != nil {
		return nil, err
	}
	omega, err := s.Get(AngularVelocity)
	if err != nil {
		return nil, fmt.Errorf("ahrsmodel: %w", err)
	}
	var ideal [3]float64
	copy(ideal[:], omega)
	return biasScaleAxis(params, GyroscopeBias, GyroscopeScale, ideal)
}

// AHRSMagnetometerExpected evaluates the magnetometer model with the
// AHRS filter's own sigma point as state.
func AHRSMagnetometerExpected(s *state.Vector, input interface{}) ([]float64, error) {
	params, err := asState(input)
	if err != nil {
		return nil, err
	}
	q, err := attitudeOf(s)
	if err != nil {
		return nil, err
	}
	ideal := q.Rotate(worldMagnetic())
	return magnetometerAxis(params, ideal)
}

// ParamAccelerometerExpected evaluates the accelerometer model with the
// parameter filter's own sigma point as state and the AHRS filter's
// a-priori mean as exogenous input.
func ParamAccelerometerExpected(s *state.Vector, input interface{}) ([]float64, error) {
	ahrs, err := asState(input)
	if err != nil {
		return nil, err
	}
	q, err := attitudeOf(ahrs)
	if err != nil {
		return nil, err
	}
	ideal := q.Rotate(worldGravity())
	return biasScaleAxis(s, AccelerometerBias, AccelerometerScale, ideal)
}

// ParamGyroscopeExpected evaluates the gyroscope model with the
// parameter filter's own sigma point as state.
func ParamGyroscopeExpected(s *state.Vector, input interface{}) ([]float64, error) {
	ahrs, err := asState(input)
	if err != nil {
		return nil, err
	}
	omega, err := ahrs.Get(AngularVelocity)
	if err != nil {
		return nil, fmt.Errorf("ahrsmodel: %w", err)
	}
	var ideal [3]float64
	copy(ideal[:], omega)
	return biasScaleAxis(s, GyroscopeBias, GyroscopeScale, ideal)
}

// ParamMagnetometerExpected evaluates the magnetometer model with the
// parameter filter's own sigma point as state.
func ParamMagnetometerExpected(s *state.Vector, input interface{}) ([]float64, error) {
	ahrs, err := asState(input)
	if err != nil {
		return nil, err
	}
	q, err := attitudeOf(ahrs)
	if err != nil {
		return nil, err
	}
	ideal := q.Rotate(worldMagnetic())
	return magnetometerAxis(s, ideal)
}
