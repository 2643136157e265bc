// Command ukf9sim drives ahrsmodel.Driver over a sensor log (CSV) or a
// synthetic trajectory and reports the filtered attitude, rate and
// acceleration estimates, optionally plotting the sum of the AHRS
// filter's covariance error envelope over time.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"

	"github.com/windale-avionics/ukf9/ahrsmodel"
	"github.com/windale-avionics/ukf9/simio"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

func main() {
	input := flag.String("in", "", "input CSV sensor log (default: synthetic stationary scenario)")
	steps := flag.Int("steps", 1000, "number of synthetic ticks, if -in is not given")
	dt := flag.Float64("dt", 0.01, "tick duration in seconds, if -in is not given")
	yawRate := flag.Float64("yaw-rate", 0, "synthetic constant yaw rate, rad/s")
	noisy := flag.Bool("noisy", false, "perturb synthetic sensor readings with Gaussian noise, if -in is not given")
	plotPath := flag.String("plot", "", "if set, write the AHRS error envelope plot to this PNG path")
	flag.Parse()

	ticks, err := loadTicks(*input, *steps, *dt, *yawRate, *noisy)
	if err != nil {
		log.Fatalf("ukf9sim: %v", err)
	}

	driver, err := ahrsmodel.NewDriver()
	if err != nil {
		log.Fatalf("ukf9sim: failed to build driver: %v", err)
	}

	envelope := make(plotter.XYs, len(ticks))
	for i, t := range ticks {
		if err := driver.Tick(t.DT, t.Sample); err != nil {
			log.Fatalf("ukf9sim: tick %d: %v", i, err)
		}
		env := driver.AHRS.ErrorEnvelope()
		envelope[i].X = float64(i)
		envelope[i].Y = mat.Sum(mat.NewVecDense(len(env), env))
	}

	attitude, err := driver.AHRS.State().Get(ahrsmodel.Attitude)
	if err != nil {
		log.Fatalf("ukf9sim: %v", err)
	}
	rate, err := driver.AHRS.State().Get(ahrsmodel.AngularVelocity)
	if err != nil {
		log.Fatalf("ukf9sim: %v", err)
	}
	fmt.Printf("final attitude (w,x,y,z): %v\n", attitude)
	fmt.Printf("final angular velocity:   %v\n", rate)
	fmt.Printf("final precision:          %s\n", driver.AHRS.Precision())

	if *plotPath != "" {
		if err := savePlot(envelope, *plotPath); err != nil {
			log.Fatalf("ukf9sim: failed to save plot: %v", err)
		}
	}
}

func loadTicks(path string, steps int, dt, yawRate float64, noisy bool) ([]simio.Tick, error) {
	if path == "" {
		omega := [3]float64{0, 0, yawRate}
		if noisy {
			return simio.NoisyConstantRate(steps, dt, omega,
				ahrsmodel.MeasurementVariance(ahrsmodel.AccelerometerMeasurement),
				ahrsmodel.MeasurementVariance(ahrsmodel.GyroscopeMeasurement),
				ahrsmodel.MeasurementVariance(ahrsmodel.MagnetometerMeasurement))
		}
		if yawRate != 0 {
			return simio.ConstantRate(steps, dt, omega), nil
		}
		return simio.Stationary(steps, dt), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	return simio.ReadCSV(f)
}

func savePlot(envelope plotter.XYs, path string) error {
	p := plot.New()
	p.Title.Text = "AHRS covariance error envelope"
	p.X.Label.Text = "tick"
	p.Y.Label.Text = "sum |error envelope|"
	p.Legend = plot.NewLegend()

	line, err := plotter.NewLine(envelope)
	if err != nil {
		return err
	}
	line.Color = color.RGBA{R: 196, G: 64, B: 64, A: 255}
	p.Add(line)
	p.Legend.Add("error envelope", line)

	return p.Save(8*vg.Inch, 6*vg.Inch, path)
}
