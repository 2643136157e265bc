package simio

import (
	"fmt"

	"github.com/windale-avionics/ukf9/ahrsmodel"
	"github.com/windale-avionics/ukf9/noise"
	"github.com/windale-avionics/ukf9/numeric"
)

// Stationary generates n ticks of duration dt for a body at rest at
// identity attitude, feeling gravity, no rotation, and a
// north-pointing magnetic field.
func Stationary(n int, dt float64) []Tick {
	return ConstantRate(n, dt, [3]float64{0, 0, 0})
}

// ConstantRate generates n ticks of duration dt for a body rotating at
// the constant body-frame rate omega (rad/s) from identity attitude.
// Accelerometer and magnetometer readings are derived from the
// integrated attitude so they stay self-consistent with the commanded
// gyro rate.
func ConstantRate(n int, dt float64, omega [3]float64) []Tick {
	ticks := make([]Tick, n)
	q := numeric.Identity()

	for i := 0; i < n; i++ {
		accel := q.Rotate([3]float64{0, 0, -ahrsmodel.Gravity})
		mag := q.Rotate([3]float64{ahrsmodel.EarthMagnitude, 0, 0})

		ticks[i] = Tick{
			DT: dt,
			Sample: ahrsmodel.Sample{
				Accelerometer: accel[:],
				Gyroscope:     []float64{omega[0], omega[1], omega[2]},
				Magnetometer:  mag[:],
			},
		}

		q = numeric.ExpMap([3]float64{-omega[0] * dt, -omega[1] * dt, -omega[2] * dt}).Mul(q).Normalized()
	}

	return ticks
}

// NoisyConstantRate behaves like ConstantRate but perturbs each sensor
// axis with independent Gaussian noise of the given per-axis variance,
// for exercising the filter against realistic measurement noise
// rather than the noiseless ground truth.
func NoisyConstantRate(n int, dt float64, omega [3]float64, accelVar, gyroVar, magVar []float64) ([]Tick, error) {
	ticks := ConstantRate(n, dt, omega)

	accelNoise, err := noise.NewDiagonalGaussian(accelVar)
	if err != nil {
		return nil, fmt.Errorf("simio: accelerometer noise: %w", err)
	}
	gyroNoise, err := noise.NewDiagonalGaussian(gyroVar)
	if err != nil {
		return nil, fmt.Errorf("simio: gyroscope noise: %w", err)
	}
	magNoise, err := noise.NewDiagonalGaussian(magVar)
	if err != nil {
		return nil, fmt.Errorf("simio: magnetometer noise: %w", err)
	}

	for i := range ticks {
		perturb(ticks[i].Sample.Accelerometer, accelNoise)
		perturb(ticks[i].Sample.Gyroscope, gyroNoise)
		perturb(ticks[i].Sample.Magnetometer, magNoise)
	}

	return ticks, nil
}

func perturb(axis []float64, g *noise.Gaussian) {
	sample := g.Sample()
	for i := range axis {
		axis[i] += sample.AtVec(i)
	}
}
