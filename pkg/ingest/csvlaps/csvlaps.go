// Package csvlaps reads lap records from CSV exports.
//
// Header names are trimmed before lookup. The compound column is the first
// column whose name contains "Compound", all other columns must match exactly.
package csvlaps

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/mpapenbr/iracelog-tirestrategy/pkg/model"
)

const (
	ColLap        = "Lap"
	ColLapTime    = "Laptime"
	ColCompound   = "Compound"
	ColFrontLeft  = "Front left tire usage (percentage)"
	ColFrontRight = "Front right tire usage (percentage)"
	ColRearLeft   = "Rear left tire usage (percentage)"
	ColRearRight  = "Rear right tire usage (percentage)"
)

var (
	ErrMissingColumn = errors.New("missing column")
	ErrInvalidValue  = errors.New("invalid value")
	ErrNoHeader      = errors.New("no header row")
)

var wearColumns = [model.NumCorners]string{
	model.FrontLeft:  ColFrontLeft,
	model.FrontRight: ColFrontRight,
	model.RearLeft:   ColRearLeft,
	model.RearRight:  ColRearRight,
}

type columns struct {
	lap      int
	lapTime  int
	compound int
	wear     [model.NumCorners]int
}

func ReadFile(path string) ([]model.LapRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// Read parses all rows of r. Rows are returned in file order.
func Read(r io.Reader) ([]model.LapRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	cols, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}
	ret := make([]model.LapRecord, 0)
	for row := 2; ; row++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", row, err)
		}
		lap, err := cols.parse(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		ret = append(ret, lap)
	}
	return ret, nil
}

func resolveColumns(header []string) (*columns, error) {
	names := make([]string, len(header))
	for i, h := range header {
		names[i] = strings.TrimSpace(h)
	}
	exact := func(name string) (int, error) {
		for i, n := range names {
			if n == name {
				return i, nil
			}
		}
		return -1, fmt.Errorf("%w: %q", ErrMissingColumn, name)
	}
	var err error
	cols := &columns{compound: -1}
	if cols.lap, err = exact(ColLap); err != nil {
		return nil, err
	}
	if cols.lapTime, err = exact(ColLapTime); err != nil {
		return nil, err
	}
	for i, name := range wearColumns {
		if cols.wear[i], err = exact(name); err != nil {
			return nil, err
		}
	}
	for i, n := range names {
		if strings.Contains(n, ColCompound) {
			cols.compound = i
			break
		}
	}
	if cols.compound < 0 {
		return nil, fmt.Errorf("%w: no column containing %q", ErrMissingColumn, ColCompound)
	}
	return cols, nil
}

func (c *columns) parse(rec []string) (model.LapRecord, error) {
	var ret model.LapRecord
	var err error
	if ret.Lap, err = parseLap(rec[c.lap]); err != nil {
		return ret, fmt.Errorf("%w: column %s: %w", ErrInvalidValue, ColLap, err)
	}
	if ret.LapTime, err = parseFloat(rec[c.lapTime]); err != nil {
		return ret, fmt.Errorf("%w: column %s: %w", ErrInvalidValue, ColLapTime, err)
	}
	ret.Compound = model.Compound(strings.TrimSpace(rec[c.compound]))
	for i, idx := range c.wear {
		if ret.Wear[i], err = parseFloat(rec[idx]); err != nil {
			return ret, fmt.Errorf("%w: column %s: %w", ErrInvalidValue, wearColumns[i], err)
		}
	}
	return ret, nil
}

// parseFloat rejects NaN and infinities which strconv accepts
func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return v, nil
}

// parseLap accepts integral floats like "12.0" which some exporters write
func parseLap(s string) (int, error) {
	s = strings.TrimSpace(s)
	if v, err := strconv.Atoi(s); err == nil {
		return v, nil
	}
	f, err := parseFloat(s)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("lap %q is not a whole number", s)
	}
	return int(f), nil
}
