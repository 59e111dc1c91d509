package pmt

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/optics.report/internal/lom"
	"github.com/banshee-data/optics.report/internal/units"
)

// Column is the table column holding the PMT samples.
const Column = "PMT3D"

// Scale factors of the PMT transforms.
const (
	tipTiltScale = 1e3
	pistonScale  = 1e9
)

// Series is a time series of PMT samples, Width channels each.
type Series struct {
	Width int
	data  []float64
	time  []float64
	fs    float64
}

// NewSeries wraps sample-major values of width channels.
func NewSeries(width int, values []float64) (*Series, error) {
	if width <= 0 || len(values)%width != 0 {
		return nil, fmt.Errorf("pmt: %d values is not a whole number of %d-channel samples", len(values), width)
	}
	return &Series{Width: width, data: values}, nil
}

// FromTable reads the PMT samples of a table column, Column when name is
// empty. Null rows are dropped; the sample time is the table row index.
func FromTable(t lom.Table, name string) (*Series, error) {
	if name == "" {
		name = Column
	}
	rows, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	s := &Series{Width: NChannels}
	for k, row := range rows {
		if row == nil {
			continue
		}
		if len(row) != NChannels {
			return nil, fmt.Errorf("pmt: row %d has %d channels, want %d", k, len(row), NChannels)
		}
		s.data = append(s.data, row...)
		s.time = append(s.time, float64(k))
	}
	if len(s.time) >= 2 {
		s.fs = 1 / (s.time[1] - s.time[0])
	}
	return s, nil
}

// Len is the number of samples.
func (s *Series) Len() int { return len(s.data) / s.Width }

// SamplingFrequency is the sampling frequency in Hz, 1 when unknown.
func (s *Series) SamplingFrequency() float64 {
	if s.fs > 0 {
		return s.fs
	}
	return 1
}

// Time returns the sample times.
func (s *Series) Time() []float64 {
	if s.time != nil {
		return append([]float64(nil), s.time...)
	}
	t := make([]float64, s.Len())
	for i := range t {
		t[i] = float64(i) / s.SamplingFrequency()
	}
	return t
}

// Shuffle reorders the channels: channel i becomes the former channel idx[i].
func (s *Series) Shuffle(idx []int) error {
	if len(idx) == 0 {
		return fmt.Errorf("pmt: shuffle needs at least one channel")
	}
	for _, i := range idx {
		if i < 0 || i >= s.Width {
			return fmt.Errorf("pmt: shuffle index %d out of range [0,%d)", i, s.Width)
		}
	}
	n := s.Len()
	out := make([]float64, 0, n*len(idx))
	for k := range n {
		sample := s.data[k*s.Width : (k+1)*s.Width]
		for _, i := range idx {
			out = append(out, sample[i])
		}
	}
	s.data = out
	s.Width = len(idx)
	return nil
}

// Transform applies a sensitivity to every sample and scales the result.
func (s *Series) Transform(sens *Sensitivity, scale float64, name, unit string) (*lom.MetricSeries, error) {
	if sens.Cols != s.Width {
		return nil, fmt.Errorf("pmt: sensitivity has %d columns, series has %d channels", sens.Cols, s.Width)
	}
	n := s.Len()
	if n == 0 {
		return lom.NewMetricSeries(name, unit, sens.Rows, []float64{})
	}
	var out mat.Dense
	out.Mul(mat.NewDense(n, s.Width, s.data), sens.Matrix().T())
	out.Scale(scale, &out)
	return lom.NewMetricSeries(name, unit, sens.Rows, out.RawMatrix().Data)
}

// SegmentTipTilt applies the 14-row segment tip-tilt sensitivity.
func (s *Series) SegmentTipTilt(sens *Sensitivity) (*lom.MetricSeries, error) {
	if sens.Rows != lom.NSegmentTT {
		return nil, fmt.Errorf("pmt: segment tip-tilt sensitivity has %d rows, want %d", sens.Rows, lom.NSegmentTT)
	}
	return s.Transform(sens, tipTiltScale, lom.MetricSegmentTipTilt, units.Milliradian)
}

// SegmentPiston applies the 7-row segment piston sensitivity.
func (s *Series) SegmentPiston(sens *Sensitivity) (*lom.MetricSeries, error) {
	if sens.Rows != lom.NSegmentPiston {
		return nil, fmt.Errorf("pmt: segment piston sensitivity has %d rows, want %d", sens.Rows, lom.NSegmentPiston)
	}
	return s.Transform(sens, pistonScale, lom.MetricSegmentPiston, units.Nanometer)
}
