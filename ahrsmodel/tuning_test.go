package ahrsmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAHRSProcessNoiseScalesWithDt(t *testing.T) {
	assert := assert.New(t)

	q1 := AHRSProcessNoise(1.0)
	q2 := AHRSProcessNoise(2.0)
	assert.InDelta(q1.At(0, 0)*2, q2.At(0, 0), 1e-12)
}

func TestParameterProcessNoiseZeroForScaleAndMixing(t *testing.T) {
	assert := assert.New(t)

	q := ParameterProcessNoise(1.0)
	for i := 3; i < 6; i++ {
		assert.Equal(0.0, q.At(i, i))
	}
	for i := 15; i < 24; i++ {
		assert.Equal(0.0, q.At(i, i))
	}
	assert.Greater(q.At(0, 0), 0.0)
	assert.Greater(q.At(6, 6), 0.0)
	assert.Greater(q.At(12, 12), 0.0)
}

func TestMeasurementVarianceByKey(t *testing.T) {
	assert := assert.New(t)

	assert.Equal([]float64{0.12, 0.12, 0.12}, MeasurementVariance(AccelerometerMeasurement))
	assert.Equal([]float64{0.003, 0.003, 0.003}, MeasurementVariance(GyroscopeMeasurement))
	assert.Equal([]float64{0.3, 0.3, 0.3}, MeasurementVariance(MagnetometerMeasurement))
}

func TestInitialCovariancesArePositiveDefinite(t *testing.T) {
	assert := assert.New(t)

	n := AHRSInitialCovariance().SymmetricDim()
	for i := 0; i < n; i++ {
		assert.Greater(AHRSInitialCovariance().At(i, i), 0.0)
	}

	m := ParameterInitialCovariance().SymmetricDim()
	for i := 0; i < m; i++ {
		assert.Greater(ParameterInitialCovariance().At(i, i), 0.0)
	}
}
