package ahrsmodel

import (
	"fmt"

	"github.com/windale-avionics/ukf9/field"
	"github.com/windale-avionics/ukf9/integrator"
	"github.com/windale-avionics/ukf9/measurement"
	"github.com/windale-avionics/ukf9/state"
	"github.com/windale-avionics/ukf9/ukf"
	"gonum.org/v1/gonum/mat"
)

// Sample is one tick's raw sensor reading. A nil axis disables that
// measurement field for the tick, producing an under-determined (or
// partially determined) measurement.
type Sample struct {
	Accelerometer []float64
	Gyroscope     []float64
	Magnetometer  []float64
}

// ahrsMeasurement builds the measurement.Vector used by the AHRS
// filter's innovation step: state = AHRS sigma point, input = params.
func ahrsMeasurement(s Sample) (*measurement.Vector, error) {
	m := measurement.NewVector()
	if err := enable(m, s, AHRSAccelerometerExpected, AHRSGyroscopeExpected, AHRSMagnetometerExpected); err != nil {
		return nil, err
	}
	return m, nil
}

// paramMeasurement builds the measurement.Vector used by the parameter
// filter's innovation step: state = parameter sigma point, input =
// AHRS a-priori mean. It reuses the same raw sample the AHRS filter's
// innovation step just consumed.
func paramMeasurement(s Sample) (*measurement.Vector, error) {
	m := measurement.NewVector()
	if err := enable(m, s, ParamAccelerometerExpected, ParamGyroscopeExpected, ParamMagnetometerExpected); err != nil {
		return nil, err
	}
	return m, nil
}

func enable(m *measurement.Vector, s Sample, accel, gyro, mag measurement.ExpectedFunc) error {
	v3 := field.Vector{N: 3}
	if s.Accelerometer != nil {
		if err := m.Enable(measurement.FieldSpec{
			Key: AccelerometerMeasurement, Type: v3, Expected: accel,
			Variance: MeasurementVariance(AccelerometerMeasurement),
		}, s.Accelerometer); err != nil {
			return err
		}
	}
	if s.Gyroscope != nil {
		if err := m.Enable(measurement.FieldSpec{
			Key: GyroscopeMeasurement, Type: v3, Expected: gyro,
			Variance: MeasurementVariance(GyroscopeMeasurement),
		}, s.Gyroscope); err != nil {
			return err
		}
	}
	if s.Magnetometer != nil {
		if err := m.Enable(measurement.FieldSpec{
			Key: MagnetometerMeasurement, Type: v3, Expected: mag,
			Variance: MeasurementVariance(MagnetometerMeasurement),
		}, s.Magnetometer); err != nil {
			return err
		}
	}
	return nil
}

// Driver owns the AHRS and the parameter filter and runs the
// two-filter coupling protocol between them as an explicit driver
// that owns both filters, rather than as two objects poking each
// other's fields. Neither filter references the other; the driver
// alone reads one filter's intermediates and writes them into the
// other's public fields.
type Driver struct {
	AHRS   *ukf.Filter
	Params *ukf.Filter
}

// NewDriver constructs a Driver with both filters initialized at
// their tuning defaults, using RK4 integration for the AHRS process
// model and Euler (a constant model with no meaningful curvature) for
// the parameter filter.
func NewDriver() (*Driver, error) {
	ahrsReg, err := AHRSRegistry()
	if err != nil {
		return nil, err
	}
	paramReg, err := ParameterRegistry()
	if err != nil {
		return nil, err
	}

	ahrsMean := state.New(ahrsReg)
	if err := ahrsMean.Set(Attitude, []float64{1, 0, 0, 0}); err != nil {
		return nil, err
	}
	if err := ahrsMean.Set(AngularVelocity, []float64{0, 0, 0}); err != nil {
		return nil, err
	}
	if err := ahrsMean.Set(Acceleration, []float64{0, 0, 0}); err != nil {
		return nil, err
	}

	paramMean := state.New(paramReg)
	nominal := map[field.Key][]float64{
		GyroscopeBias:      {0, 0, 0},
		GyroscopeScale:     {1, 1, 1},
		AccelerometerBias:  {0, 0, 0},
		AccelerometerScale: {1, 1, 1},
		MagnetometerBias:   {0, 0, 0},
		MagnetometerMixing: {1, 0, 0, 0, 1, 0, 0, 0, 1},
	}
	for k, v := range nominal {
		if err := paramMean.Set(k, v); err != nil {
			return nil, err
		}
	}

	ahrsFilter, err := ukf.New(ahrsReg, ahrsMean, AHRSInitialCovariance(), Derivative, integrator.RK4, AHRSProcessNoise, ukf.DefaultConfig())
	if err != nil {
		return nil, err
	}

	paramFilter, err := ukf.New(paramReg, paramMean, ParameterInitialCovariance(), constantDerivative, integrator.Euler, ParameterProcessNoise, ukf.DefaultConfig())
	if err != nil {
		return nil, err
	}

	return &Driver{AHRS: ahrsFilter, Params: paramFilter}, nil
}

// constantDerivative is the parameter filter's process model: every
// field is modelled constant; bias/scale/mixing drift is injected
// entirely through process noise.
func constantDerivative(s *state.Vector, input interface{}) (*mat.VecDense, error) {
	return mat.NewVecDense(s.Registry().CovarianceSize(), nil), nil
}

// Tick runs one iteration of the two-filter coupling driver for
// duration dt over sample m.
func (d *Driver) Tick(dt float64, m Sample) error {
	if err := d.AHRS.APrioriStep(dt, d.Params.State()); err != nil {
		return fmt.Errorf("ahrsmodel: ahrs a-priori: %w", err)
	}

	ahrsMeas, err := ahrsMeasurement(m)
	if err != nil {
		return fmt.Errorf("ahrsmodel: building ahrs measurement: %w", err)
	}
	if err := d.AHRS.InnovationStep(ahrsMeas, d.Params.State()); err != nil && err != ukf.ErrEmptyMeasurement {
		return fmt.Errorf("ahrsmodel: ahrs innovation: %w", err)
	}
	if err := d.AHRS.APosterioriStep(); err != nil {
		return fmt.Errorf("ahrsmodel: ahrs a-posteriori: %w", err)
	}

	if err := d.Params.APrioriStep(dt, nil); err != nil {
		return fmt.Errorf("ahrsmodel: params a-priori: %w", err)
	}

	paramMeas, err := paramMeasurement(m)
	if err != nil {
		return fmt.Errorf("ahrsmodel: building parameter measurement: %w", err)
	}
	if err := d.Params.InnovationStep(paramMeas, d.AHRS.APrioriState()); err != nil && err != ukf.ErrEmptyMeasurement {
		return fmt.Errorf("ahrsmodel: params innovation: %w", err)
	} else if err == nil {
		// Cross-inject the AHRS innovation covariance into the
		// parameter filter's own: this inflates the parameter
		// filter's uncertainty budget to account for the fact that
		// its exogenous input (the AHRS state) is itself uncertain.
		n := d.Params.InnovationCovariance.SymmetricDim()
		for i := 0; i < n; i++ {
			for j := i; j < n; j++ {
				d.Params.InnovationCovariance.SetSym(i, j, d.Params.InnovationCovariance.At(i, j)+d.AHRS.InnovationCovariance.At(i, j))
			}
		}
	}
	if err := d.Params.APosterioriStep(); err != nil {
		return fmt.Errorf("ahrsmodel: params a-posteriori: %w", err)
	}

	return nil
}
