package ahrsmodel

import (
	"github.com/windale-avionics/ukf9/field"
	"gonum.org/v1/gonum/mat"
)

// Tuning defaults for a representative strapdown IMU/magnetometer
// sensor suite.
const (
	// Gravity is the nominal magnitude of gravitational acceleration,
	// m/s^2.
	Gravity = 9.80665
	// EarthMagnitude is the nominal magnitude of the local magnetic
	// field, assumed aligned with magnetic north in the NED frame.
	EarthMagnitude = 45.0
)

// AHRS process-noise diagonal, per-axis, for {attitude tangent, angular
// velocity, acceleration}.
var ahrsProcessNoiseAxis = [3]float64{7e-5, 1.0, 20.0}

// AHRS initial covariance diagonal.
var ahrsInitialCovarianceDiag = []float64{1, 1, 1, 1, 1, 1, 5, 5, 5}

// Measurement-noise diagonal, per-axis, for {accel, gyro, mag}.
var measurementNoiseAxis = [3]float64{0.12, 0.003, 0.3}

// AHRSProcessNoise returns the process-noise covariance for a step of
// duration dt: the per-axis diagonal scaled linearly in dt.
func AHRSProcessNoise(dt float64) *mat.SymDense {
	cov := mat.NewSymDense(9, nil)
	diag := []float64{
		ahrsProcessNoiseAxis[0], ahrsProcessNoiseAxis[0], ahrsProcessNoiseAxis[0],
		ahrsProcessNoiseAxis[1], ahrsProcessNoiseAxis[1], ahrsProcessNoiseAxis[1],
		ahrsProcessNoiseAxis[2], ahrsProcessNoiseAxis[2], ahrsProcessNoiseAxis[2],
	}
	for i, v := range diag {
		cov.SetSym(i, i, v*dt)
	}
	return cov
}

// AHRSInitialCovariance returns the AHRS filter's initial covariance.
func AHRSInitialCovariance() *mat.SymDense {
	cov := mat.NewSymDense(len(ahrsInitialCovarianceDiag), nil)
	for i, v := range ahrsInitialCovarianceDiag {
		cov.SetSym(i, i, v)
	}
	return cov
}

// ParameterProcessNoise returns the parameter filter's process-noise
// covariance for a step of duration dt: gyroscope bias, accelerometer
// bias and magnetometer bias diffuse linearly in dt; every scale field
// and the magnetometer mixing matrix carry zero process noise.
func ParameterProcessNoise(dt float64) *mat.SymDense {
	cov := mat.NewSymDense(24, nil)
	offset := 0
	setDiag := func(n int, v float64) {
		for i := 0; i < n; i++ {
			cov.SetSym(offset+i, offset+i, v*dt)
		}
		offset += n
	}
	setDiag(3, 5.2e-5) // GyroscopeBias
	setDiag(3, 0)      // GyroscopeScale
	setDiag(3, 3.0e-3) // AccelerometerBias
	setDiag(3, 0)      // AccelerometerScale
	setDiag(3, 1.5e-2) // MagnetometerBias
	setDiag(9, 0)      // MagnetometerMixing
	return cov
}

// ParameterInitialCovariance returns the parameter filter's initial
// covariance: bias fields start with a modest uncertainty, scale
// fields start tight around their nominal value of 1, and the
// magnetometer mixing matrix starts tight around the identity mapping.
func ParameterInitialCovariance() *mat.SymDense {
	cov := mat.NewSymDense(24, nil)
	diag := make([]float64, 24)
	for i := 0; i < 3; i++ {
		diag[i] = 1e-2 // GyroscopeBias
	}
	for i := 3; i < 6; i++ {
		diag[i] = 1e-2 // GyroscopeScale
	}
	for i := 6; i < 9; i++ {
		diag[i] = 1e-1 // AccelerometerBias
	}
	for i := 9; i < 12; i++ {
		diag[i] = 1e-2 // AccelerometerScale
	}
	for i := 12; i < 15; i++ {
		diag[i] = 1e-1 // MagnetometerBias
	}
	for i := 15; i < 24; i++ {
		diag[i] = 1e-2 // MagnetometerMixing
	}
	for i, v := range diag {
		cov.SetSym(i, i, v)
	}
	return cov
}

// MeasurementVariance returns the per-axis variance for a measurement
// field: {accel, gyro, mag} -> {0.12, 0.003, 0.3}.
func MeasurementVariance(key field.Key) []float64 {
	var v float64
	switch key {
	case AccelerometerMeasurement:
		v = measurementNoiseAxis[0]
	case GyroscopeMeasurement:
		v = measurementNoiseAxis[1]
	case MagnetometerMeasurement:
		v = measurementNoiseAxis[2]
	}
	return []float64{v, v, v}
}
