// Package ahrsmodel wires the generic engine in numeric, field, state,
// integrator, measurement and ukf into a 9-axis attitude/heading
// reference system: an attitude/rate/acceleration filter coupled to a
// sensor bias/scale parameter filter via the driver in coupling.go.
//
// None of this package is core engine behavior -- the process model,
// the measurement model and every tuning constant here are concrete
// parameters the engine is built to accept, not requirements on it.
package ahrsmodel

import (
	"github.com/windale-avionics/ukf9/field"
)

// AHRS filter field keys. Covariance size is 3+3+3 = 9, matching the
// tuning defaults' 9-value initial covariance diagonal.
const (
	Attitude field.Key = iota
	AngularVelocity
	Acceleration
)

// Parameter filter field keys. Sensors get an independent bias and
// scale vector field each, except the magnetometer, which replaces its
// scale with an unconstrained 3x3 mixing matrix. Covariance size is
// 3*5 + 9 = 24.
const (
	GyroscopeBias field.Key = iota
	GyroscopeScale
	AccelerometerBias
	AccelerometerScale
	MagnetometerBias
	MagnetometerMixing
)

// Measurement field keys, shared by both filters' measurement vectors.
const (
	AccelerometerMeasurement field.Key = iota
	GyroscopeMeasurement
	MagnetometerMeasurement
)

// AHRSRegistry returns the field registry for the attitude/rate/
// acceleration filter.
func AHRSRegistry() (*field.Registry, error) {
	return field.NewRegistry(
		field.Spec{Key: Attitude, Type: field.Quaternion{}},
		field.Spec{Key: AngularVelocity, Type: field.Vector{N: 3}},
		field.Spec{Key: Acceleration, Type: field.Vector{N: 3}},
	)
}

// ParameterRegistry returns the field registry for the sensor bias/
// scale parameter filter.
func ParameterRegistry() (*field.Registry, error) {
	return field.NewRegistry(
		field.Spec{Key: GyroscopeBias, Type: field.Vector{N: 3}},
		field.Spec{Key: GyroscopeScale, Type: field.Vector{N: 3}},
		field.Spec{Key: AccelerometerBias, Type: field.Vector{N: 3}},
		field.Spec{Key: AccelerometerScale, Type: field.Vector{N: 3}},
		field.Spec{Key: MagnetometerBias, Type: field.Vector{N: 3}},
		field.Spec{Key: MagnetometerMixing, Type: field.Vector{N: 9}},
	)
}
