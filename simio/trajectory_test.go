package simio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/windale-avionics/ukf9/ahrsmodel"
)

func TestStationaryReportsGravityAndNorthField(t *testing.T) {
	assert := assert.New(t)

	ticks := Stationary(5, 0.01)
	assert.Len(ticks, 5)
	for _, tk := range ticks {
		assert.InDeltaSlice([]float64{0, 0, -ahrsmodel.Gravity}, tk.Sample.Accelerometer, 1e-9)
		assert.InDeltaSlice([]float64{0, 0, 0}, tk.Sample.Gyroscope, 1e-9)
		assert.InDeltaSlice([]float64{ahrsmodel.EarthMagnitude, 0, 0}, tk.Sample.Magnetometer, 1e-9)
	}
}

func TestConstantRateReportsCommandedGyroRate(t *testing.T) {
	assert := assert.New(t)

	omega := [3]float64{0, 0, 0.5}
	ticks := ConstantRate(10, 0.01, omega)
	for _, tk := range ticks {
		assert.InDeltaSlice([]float64{0, 0, 0.5}, tk.Sample.Gyroscope, 1e-9)
	}
}

func TestConstantRateAccelMagStayConsistentWithIntegratedAttitude(t *testing.T) {
	assert := assert.New(t)

	omega := [3]float64{0, 0, 0.5}
	ticks := ConstantRate(200, 0.01, omega)
	last := ticks[len(ticks)-1]

	// Gravity and field magnitude must be preserved under rotation.
	norm := func(v []float64) float64 {
		return v[0]*v[0] + v[1]*v[1] + v[2]*v[2]
	}
	assert.InDelta(ahrsmodel.Gravity*ahrsmodel.Gravity, norm(last.Sample.Accelerometer), 1e-6)
	assert.InDelta(ahrsmodel.EarthMagnitude*ahrsmodel.EarthMagnitude, norm(last.Sample.Magnetometer), 1e-6)
}

func TestNoisyConstantRatePerturbsReadings(t *testing.T) {
	assert := assert.New(t)

	ticks, err := NoisyConstantRate(50, 0.01, [3]float64{0, 0, 0},
		[]float64{0.1, 0.1, 0.1}, []float64{0.01, 0.01, 0.01}, []float64{0.3, 0.3, 0.3})
	assert.NoError(err)
	assert.Len(ticks, 50)

	differs := false
	for _, tk := range ticks {
		if tk.Sample.Accelerometer[2] != -ahrsmodel.Gravity {
			differs = true
			break
		}
	}
	assert.True(differs, "expected Gaussian perturbation to move at least one reading off the noiseless trajectory")
}
