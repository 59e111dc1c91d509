package lom

import (
	"fmt"
	"iter"

	"gonum.org/v1/gonum/mat"
)

// MotionSeries is a time series of M1 and M2 rigid body motions, logically a
// [84 x N] matrix with one column per sample.
//
// Samples are stored contiguously, 84 values each, so the backing slice is
// also the row-major [N x 84] transpose used by the transforms. A series is
// not safe for concurrent mutation: ZeroM1 and ZeroM2 must not race with
// readers.
type MotionSeries struct {
	buf  []float64
	n    int
	time []float64
	fs   float64
}

// MotionOption configures a MotionSeries at construction.
type MotionOption func(*MotionSeries) error

// WithSamplingFrequency sets the sampling frequency in Hz used to synthesize
// sample times.
func WithSamplingFrequency(hz float64) MotionOption {
	return func(m *MotionSeries) error {
		if !(hz > 0) {
			return fmt.Errorf("lom: sampling frequency must be positive, got %g", hz)
		}
		m.fs = hz
		return nil
	}
}

// WithTime sets explicit sample times, one per sample.
func WithTime(t []float64) MotionOption {
	return func(m *MotionSeries) error {
		if len(t) != m.n {
			return fmt.Errorf("lom: %d sample times for %d samples", len(t), m.n)
		}
		m.time = append([]float64(nil), t...)
		return nil
	}
}

func newMotionSeries(buf []float64, opts []MotionOption) (*MotionSeries, error) {
	m := &MotionSeries{buf: buf, n: len(buf) / NDof}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// NewMotionSeries wraps sample-major values, 84 per sample. The slice is
// owned by the series afterwards.
func NewMotionSeries(values []float64, opts ...MotionOption) (*MotionSeries, error) {
	if len(values)%NDof != 0 {
		return nil, fmt.Errorf("%w: %d values is not a whole number of %d-dof samples",
			ErrDofCount, len(values), NDof)
	}
	return newMotionSeries(values, opts)
}

// FromSlices builds a series from per-sample M1 and M2 vectors of 42 values.
func FromSlices(samples iter.Seq2[[]float64, []float64], opts ...MotionOption) (*MotionSeries, error) {
	var buf []float64
	k := 0
	for m1, m2 := range samples {
		if len(m1) != NMirrorDof {
			return nil, &DofCountError{Mirror: M1, Sample: k, Got: len(m1), Want: NMirrorDof}
		}
		if len(m2) != NMirrorDof {
			return nil, &DofCountError{Mirror: M2, Sample: k, Got: len(m2), Want: NMirrorDof}
		}
		buf = append(buf, m1...)
		buf = append(buf, m2...)
		k++
	}
	return newMotionSeries(buf, opts)
}

// FromSegments builds a series from per-sample M1 and M2 motions given
// segment by segment, 7 segments of 6 degrees of freedom.
func FromSegments(samples iter.Seq2[[][]float64, [][]float64], opts ...MotionOption) (*MotionSeries, error) {
	var buf []float64
	k := 0
	for m1, m2 := range samples {
		for _, block := range []struct {
			mirror Mirror
			segs   [][]float64
		}{{M1, m1}, {M2, m2}} {
			if len(block.segs) != NSegments {
				return nil, &DofCountError{Mirror: block.mirror, Sample: k, Got: len(block.segs), Want: NSegments}
			}
			for i, seg := range block.segs {
				if len(seg) != NSegmentDof {
					return nil, &DofCountError{Mirror: block.mirror, Sample: k, Segment: i + 1, Got: len(seg), Want: NSegmentDof}
				}
				buf = append(buf, seg...)
			}
		}
		k++
	}
	return newMotionSeries(buf, opts)
}

// Zip pairs the M1 and M2 entries of two equally long slices.
func Zip[T any](m1, m2 []T) iter.Seq2[T, T] {
	return func(yield func(T, T) bool) {
		for i := range min(len(m1), len(m2)) {
			if !yield(m1[i], m2[i]) {
				return
			}
		}
	}
}

// Len is the number of samples.
func (m *MotionSeries) Len() int { return m.n }

// SamplingFrequency is the sampling frequency in Hz, 1 when unknown.
func (m *MotionSeries) SamplingFrequency() float64 {
	if m.fs > 0 {
		return m.fs
	}
	return 1
}

// Time returns the sample times: the explicit times when given, otherwise
// i / SamplingFrequency() for sample i.
func (m *MotionSeries) Time() []float64 {
	if m.time != nil {
		return append([]float64(nil), m.time...)
	}
	fs := m.SamplingFrequency()
	t := make([]float64, m.n)
	for i := range t {
		t[i] = float64(i) / fs
	}
	return t
}

// Sample returns a copy of the 84 motions of sample k.
func (m *MotionSeries) Sample(k int) []float64 {
	return append([]float64(nil), m.buf[k*NDof:(k+1)*NDof]...)
}

// Segments returns the motions of sample k segment by segment.
func (m *MotionSeries) Segments(k int) (m1, m2 [][]float64) {
	s := m.Sample(k)
	for seg := range NSegments {
		m1 = append(m1, s[M1Offset+seg*NSegmentDof:M1Offset+(seg+1)*NSegmentDof])
		m2 = append(m2, s[M2Offset+seg*NSegmentDof:M2Offset+(seg+1)*NSegmentDof])
	}
	return m1, m2
}

// Columns splits the series into per-sample M1 and M2 vectors.
func (m *MotionSeries) Columns() (m1, m2 [][]float64) {
	m1 = make([][]float64, m.n)
	m2 = make([][]float64, m.n)
	for k := range m.n {
		s := m.Sample(k)
		m1[k] = s[:NMirrorDof]
		m2[k] = s[NMirrorDof:]
	}
	return m1, m2
}

// ZeroM1 sets every M1 motion to zero.
func (m *MotionSeries) ZeroM1() { m.zero(M1) }

// ZeroM2 sets every M2 motion to zero.
func (m *MotionSeries) ZeroM2() { m.zero(M2) }

func (m *MotionSeries) zero(mirror Mirror) {
	for k := range m.n {
		block := m.buf[k*NDof+mirror.Offset() : k*NDof+mirror.Offset()+NMirrorDof]
		clear(block)
	}
}

// Clone returns a deep copy of the series.
func (m *MotionSeries) Clone() *MotionSeries {
	c := *m
	c.buf = append([]float64(nil), m.buf...)
	if m.time != nil {
		c.time = append([]float64(nil), m.time...)
	}
	return &c
}

// Data returns a read-only [84 x N] view of the series.
func (m *MotionSeries) Data() mat.Matrix {
	return dofMatrix{m}
}

// transposed views the series as a row-major [N x 84] matrix. It must not be
// called on an empty series.
func (m *MotionSeries) transposed() *mat.Dense {
	return mat.NewDense(m.n, NDof, m.buf)
}

type dofMatrix struct {
	m *MotionSeries
}

func (d dofMatrix) Dims() (r, c int) { return NDof, d.m.n }

func (d dofMatrix) At(i, j int) float64 {
	if i < 0 || i >= NDof {
		panic(mat.ErrRowAccess)
	}
	if j < 0 || j >= d.m.n {
		panic(mat.ErrColAccess)
	}
	return d.m.buf[j*NDof+i]
}

func (d dofMatrix) T() mat.Matrix { return mat.Transpose{Matrix: d} }
