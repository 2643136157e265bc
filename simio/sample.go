// Package simio supplies sample sources for driving ahrsmodel.Driver:
// CSV-encoded sensor logs and synthetic trajectory generators. No
// third-party CSV or structured-log library fits this kind of flat
// tabular sensor log well, so this package uses encoding/csv directly,
// in the same flag+stdlib idiom as the other command-line tools here.
package simio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/windale-avionics/ukf9/ahrsmodel"
)

// Tick pairs a sample with the duration since the previous tick.
type Tick struct {
	DT     float64
	Sample ahrsmodel.Sample
}

// CSV column order: dt,ax,ay,az,gx,gy,gz,mx,my,mz. Any axis group may
// be entirely empty (all three of its cells blank) to produce an
// under-determined measurement for that sensor on that tick.
var csvHeader = []string{"dt", "ax", "ay", "az", "gx", "gy", "gz", "mx", "my", "mz"}

// ReadCSV parses a sensor log in the column order of csvHeader,
// skipping a single header row if present.
func ReadCSV(r io.Reader) ([]Tick, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("simio: reading CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	if records[0][0] == csvHeader[0] {
		records = records[1:]
	}

	ticks := make([]Tick, 0, len(records))
	for i, row := range records {
		if len(row) != 10 {
			return nil, fmt.Errorf("simio: row %d has %d columns, want 10", i, len(row))
		}
		vals, blank, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("simio: row %d: %w", i, err)
		}
		ticks = append(ticks, Tick{
			DT: vals[0],
			Sample: ahrsmodel.Sample{
				Accelerometer: axisGroup(vals[1:4], blank[1:4]),
				Gyroscope:     axisGroup(vals[4:7], blank[4:7]),
				Magnetometer:  axisGroup(vals[7:10], blank[7:10]),
			},
		})
	}
	return ticks, nil
}

// WriteCSV writes ticks in the column order of csvHeader, with a
// disabled axis group rendered as three empty cells.
func WriteCSV(w io.Writer, ticks []Tick) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("simio: writing CSV header: %w", err)
	}
	for _, t := range ticks {
		row := make([]string, 10)
		row[0] = strconv.FormatFloat(t.DT, 'g', -1, 64)
		writeAxisGroup(row[1:4], t.Sample.Accelerometer)
		writeAxisGroup(row[4:7], t.Sample.Gyroscope)
		writeAxisGroup(row[7:10], t.Sample.Magnetometer)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("simio: writing CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func parseRow(row []string) (vals []float64, blank []bool, err error) {
	vals = make([]float64, len(row))
	blank = make([]bool, len(row))
	for i, cell := range row {
		if cell == "" {
			blank[i] = true
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("column %d: %w", i, err)
		}
		vals[i] = v
	}
	return vals, blank, nil
}

// axisGroup returns nil (disabling the field) only when every cell in
// the group was blank in the source row; a row with all-zero but
// present values (e.g. a stationary gyroscope) stays enabled.
func axisGroup(v []float64, blank []bool) []float64 {
	if blank[0] && blank[1] && blank[2] {
		return nil
	}
	out := make([]float64, 3)
	copy(out, v)
	return out
}

func writeAxisGroup(dst []string, v []float64) {
	if v == nil {
		dst[0], dst[1], dst[2] = "", "", ""
		return
	}
	for i := 0; i < 3; i++ {
		dst[i] = strconv.FormatFloat(v[i], 'g', -1, 64)
	}
}
