// Package pmt applies the PMT sensitivities to the 300 PMT channels of the
// mirror cell measurements, giving segment tip-tilt and piston.
package pmt

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/optics.report/internal/fsutil"
)

// NChannels is the number of PMT channels of a sample.
const NChannels = 300

// Sensitivity is a row-major [Rows x Cols] PMT sensitivity matrix. Every CSV
// row reads "metric,segment,v1,...,vCols".
type Sensitivity struct {
	Rows     int
	Cols     int
	Data     []float64
	Metrics  []string
	Segments []string
}

// ReadSensitivity parses a headerless sensitivity CSV.
func ReadSensitivity(r io.Reader) (*Sensitivity, error) {
	rd := csv.NewReader(r)
	rd.FieldsPerRecord = -1
	rd.TrimLeadingSpace = true

	s := &Sensitivity{}
	for line := 1; ; line++ {
		rec, err := rd.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("pmt: reading sensitivity: %w", err)
		}
		if len(rec) < 3 {
			return nil, fmt.Errorf("pmt: line %d has %d fields, want metric, segment and values", line, len(rec))
		}
		values := rec[2:]
		if s.Rows == 0 {
			s.Cols = len(values)
		} else if len(values) != s.Cols {
			return nil, fmt.Errorf("pmt: line %d has %d values, want %d", line, len(values), s.Cols)
		}
		for i, field := range values {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("pmt: line %d value %d: %w", line, i+1, err)
			}
			s.Data = append(s.Data, v)
		}
		s.Metrics = append(s.Metrics, rec[0])
		s.Segments = append(s.Segments, rec[1])
		s.Rows++
	}
	if s.Rows == 0 {
		return nil, errors.New("pmt: empty sensitivity")
	}
	return s, nil
}

// LoadSensitivity reads a sensitivity CSV file.
func LoadSensitivity(fsys fsutil.FileSystem, path string) (*Sensitivity, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pmt: %w", err)
	}
	s, err := ReadSensitivity(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	return s, nil
}

// Matrix views the sensitivity as a gonum matrix without copying.
func (s *Sensitivity) Matrix() *mat.Dense {
	return mat.NewDense(s.Rows, s.Cols, s.Data)
}
