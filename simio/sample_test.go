package simio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/windale-avionics/ukf9/ahrsmodel"
)

func TestReadCSVParsesHeaderAndRows(t *testing.T) {
	assert := assert.New(t)

	csv := "dt,ax,ay,az,gx,gy,gz,mx,my,mz\n" +
		"0.01,0,0,-9.8,0,0,0,45,0,0\n"

	ticks, err := ReadCSV(strings.NewReader(csv))
	assert.NoError(err)
	assert.Len(ticks, 1)
	assert.InDelta(0.01, ticks[0].DT, 1e-12)
	assert.Equal([]float64{0, 0, -9.8}, ticks[0].Sample.Accelerometer)
	assert.Equal([]float64{0, 0, 0}, ticks[0].Sample.Gyroscope)
	assert.Equal([]float64{45, 0, 0}, ticks[0].Sample.Magnetometer)
}

func TestReadCSVBlankAxisGroupDisablesField(t *testing.T) {
	assert := assert.New(t)

	csv := "0.01,0,0,-9.8,0,0,0,,,\n"
	ticks, err := ReadCSV(strings.NewReader(csv))
	assert.NoError(err)
	assert.Len(ticks, 1)
	assert.Nil(ticks[0].Sample.Magnetometer)
}

func TestReadCSVZeroGyroStaysEnabled(t *testing.T) {
	assert := assert.New(t)

	// A stationary gyro reading of exactly zero must not be confused
	// with a disabled (blank) axis group.
	csv := "0.01,0,0,-9.8,0,0,0,45,0,0\n"
	ticks, err := ReadCSV(strings.NewReader(csv))
	assert.NoError(err)
	assert.NotNil(ticks[0].Sample.Gyroscope)
	assert.Equal([]float64{0, 0, 0}, ticks[0].Sample.Gyroscope)
}

func TestReadCSVRejectsWrongColumnCount(t *testing.T) {
	assert := assert.New(t)

	_, err := ReadCSV(strings.NewReader("0.01,0,0\n"))
	assert.Error(err)
}

func TestWriteReadCSVRoundTrip(t *testing.T) {
	assert := assert.New(t)

	ticks := []Tick{{
		DT: 0.02,
		Sample: ahrsmodel.Sample{
			Accelerometer: []float64{0, 0, -9.8},
			Gyroscope:     []float64{0, 0, 0},
			Magnetometer:  []float64{45, 0, 0},
		},
	}}

	var buf bytes.Buffer
	assert.NoError(WriteCSV(&buf, ticks))

	got, err := ReadCSV(&buf)
	assert.NoError(err)
	assert.Len(got, 1)
	assert.InDelta(ticks[0].DT, got[0].DT, 1e-12)
	assert.Equal(ticks[0].Sample.Accelerometer, got[0].Sample.Accelerometer)
}

func TestWriteCSVRendersDisabledAxisAsBlank(t *testing.T) {
	assert := assert.New(t)

	ticks := []Tick{{
		DT: 0.01,
		Sample: ahrsmodel.Sample{
			Accelerometer: []float64{0, 0, -9.8},
		},
	}}

	var buf bytes.Buffer
	assert.NoError(WriteCSV(&buf, ticks))
	assert.Contains(buf.String(), "0.01,0,0,-9.8,,,,,,\n")
}
