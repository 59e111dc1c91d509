package lom

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// WholeSeries selects every sample as the statistics window.
const WholeSeries = 0

// MetricSeries is a flat time series of optical metrics: Width channels per
// sample, samples one after the other.
type MetricSeries struct {
	Name   string
	Unit   string
	Width  int
	Values []float64
}

// NewMetricSeries checks that values hold a whole number of samples.
func NewMetricSeries(name, unit string, width int, values []float64) (*MetricSeries, error) {
	if width <= 0 {
		return nil, fmt.Errorf("lom: metric %q width must be positive, got %d", name, width)
	}
	if len(values)%width != 0 {
		return nil, fmt.Errorf("lom: metric %q has %d values, not a multiple of width %d",
			name, len(values), width)
	}
	return &MetricSeries{Name: name, Unit: unit, Width: width, Values: values}, nil
}

// Len is the number of samples.
func (s *MetricSeries) Len() int {
	if s.Width == 0 {
		return 0
	}
	return len(s.Values) / s.Width
}

// Chunks splits the values into consecutive runs of width. A trailing
// partial run is dropped. The chunks alias Values.
func (s *MetricSeries) Chunks(width int) [][]float64 {
	if width <= 0 {
		return nil
	}
	n := len(s.Values) / width
	out := make([][]float64, n)
	for i := range n {
		out[i] = s.Values[i*width : (i+1)*width : (i+1)*width]
	}
	return out
}

// Items returns the samples of the series.
func (s *MetricSeries) Items() [][]float64 { return s.Chunks(s.Width) }

// Sample returns sample k. It aliases Values.
func (s *MetricSeries) Sample(k int) []float64 {
	return s.Values[k*s.Width : (k+1)*s.Width]
}

// Channel returns a copy of the time series of channel i.
func (s *MetricSeries) Channel(i int) []float64 {
	out := make([]float64, s.Len())
	for k := range out {
		out[k] = s.Values[k*s.Width+i]
	}
	return out
}

// ChannelLabels names the channels of the series: tip and tilt for the exit
// pupil, per segment names for segment metrics, and c<i> otherwise.
func (s *MetricSeries) ChannelLabels() []string {
	out := make([]string, s.Width)
	for i := range out {
		switch {
		case s.Name == MetricTipTilt && s.Width == NTipTilt:
			out[i] = [NTipTilt]string{"tip", "tilt"}[i]
		case s.Name == MetricSegmentTipTilt && s.Width == NSegmentTT:
			axis := "tip"
			if i >= NSegments {
				axis = "tilt"
			}
			out[i] = fmt.Sprintf("%s_s%d", axis, i%NSegments+1)
		case s.Width == NSegments && (s.Name == MetricSegmentPiston || s.Name == MetricSegmentWfeRms):
			out[i] = fmt.Sprintf("s%d", i+1)
		default:
			out[i] = fmt.Sprintf("c%d", i)
		}
	}
	return out
}

// Scaled returns a copy of the series multiplied by factor.
func (s *MetricSeries) Scaled(factor float64, unit string) *MetricSeries {
	values := append([]float64(nil), s.Values...)
	floats.Scale(factor, values)
	return &MetricSeries{Name: s.Name, Unit: unit, Width: s.Width, Values: values}
}

// trailing returns the last window samples, or all of them for WholeSeries.
// Negative windows are rejected.
func (s *MetricSeries) trailing(window int) ([][]float64, error) {
	items := s.Items()
	if window < 0 {
		return nil, &WindowError{Requested: window, Available: len(items)}
	}
	n := window
	if n == WholeSeries {
		n = len(items)
	}
	if n == 0 || n > len(items) {
		return nil, &WindowError{Requested: n, Available: len(items)}
	}
	return items[len(items)-n:], nil
}

// Mean is the per-channel mean of the trailing window.
func (s *MetricSeries) Mean(window int) ([]float64, error) {
	items, err := s.trailing(window)
	if err != nil {
		return nil, err
	}
	return mean(items, s.Width), nil
}

func mean(items [][]float64, width int) []float64 {
	m := make([]float64, width)
	for _, item := range items {
		floats.Add(m, item)
	}
	n := float64(len(items))
	for i := range m {
		m[i] /= n
	}
	return m
}

// Variance is the per-channel population variance of the trailing window,
// computed in two passes: mean first, then the mean squared deviation.
func (s *MetricSeries) Variance(window int) ([]float64, error) {
	items, err := s.trailing(window)
	if err != nil {
		return nil, err
	}
	m := mean(items, s.Width)
	v := make([]float64, s.Width)
	for _, item := range items {
		for i, x := range item {
			d := x - m[i]
			v[i] += d * d
		}
	}
	n := float64(len(items))
	for i := range v {
		v[i] /= n
	}
	return v, nil
}

// Std is the per-channel population standard deviation of the trailing window.
func (s *MetricSeries) Std(window int) ([]float64, error) {
	v, err := s.Variance(window)
	if err != nil {
		return nil, err
	}
	for i := range v {
		v[i] = math.Sqrt(v[i])
	}
	return v, nil
}

// TimeWise transposes the trailing window into a single buffer, channel
// major: the window of channel 0, then the window of channel 1, and so on.
func (s *MetricSeries) TimeWise(window int) ([]float64, error) {
	items, err := s.trailing(window)
	if err != nil {
		return nil, err
	}
	n := len(items)
	out := make([]float64, s.Width*n)
	for k, item := range items {
		for i, x := range item {
			out[i*n+k] = x
		}
	}
	return out, nil
}
