package lom

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/banshee-data/optics.report/internal/units"
)

// Metric names of the series produced by Model.
const (
	MetricTipTilt         = "tiptilt"
	MetricSegmentTipTilt  = "segment_tiptilt"
	MetricSegmentPiston   = "segment_piston"
	MetricMaskedWavefront = "masked_wavefront"
	MetricWavefront       = "wavefront"
	MetricSegmentWfeRms   = "segment_wfe_rms"
)

// Builder assembles a Model. Without sensitivities the Loader (or
// DefaultLoader) supplies them; without motions the model holds an empty
// series.
type Builder struct {
	store    *Store
	loader   *Loader
	motions  *MotionSeries
	required []Kind
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder { return &Builder{} }

// WithSensitivities sets the sensitivity store.
func (b *Builder) WithSensitivities(s *Store) *Builder {
	b.store = s
	return b
}

// WithLoader sets where sensitivities are loaded from when no store is given.
func (b *Builder) WithLoader(l Loader) *Builder {
	b.loader = &l
	return b
}

// WithMotions sets the rigid body motions.
func (b *Builder) WithMotions(m *MotionSeries) *Builder {
	b.motions = m
	return b
}

// Require makes Build fail unless the store holds the given kinds.
func (b *Builder) Require(kinds ...Kind) *Builder {
	b.required = append(b.required, kinds...)
	return b
}

// Build loads the sensitivities if needed and checks the required kinds.
func (b *Builder) Build() (*Model, error) {
	store := b.store
	if store == nil {
		loader := DefaultLoader()
		if b.loader != nil {
			loader = *b.loader
		}
		var err error
		if store, err = loader.Load(); err != nil {
			return nil, err
		}
	}
	if err := store.Require(b.required...); err != nil {
		return nil, err
	}
	motions := b.motions
	if motions == nil {
		motions = &MotionSeries{}
	}
	return &Model{store: store, motions: motions}, nil
}

// Model is the linear optical model: sensitivities applied to a motion
// series. Transforms read the motions and may run concurrently, but not
// while the motions are being zeroed.
//
// Transforms of a kind missing from the store panic with a
// *MissingSensitivityError; see Builder.Require.
type Model struct {
	store   *Store
	motions *MotionSeries
}

// New returns a model of the given sensitivities and motions.
func New(store *Store, motions *MotionSeries) (*Model, error) {
	return NewBuilder().WithSensitivities(store).WithMotions(motions).Build()
}

// Len is the number of motion samples.
func (m *Model) Len() int { return m.motions.Len() }

// Time returns the motion sample times.
func (m *Model) Time() []float64 { return m.motions.Time() }

// Motions returns the motion series.
func (m *Model) Motions() *MotionSeries { return m.motions }

// Store returns the sensitivities.
func (m *Model) Store() *Store { return m.store }

func (m *Model) transform(kind Kind, name, unit string) *MetricSeries {
	s := m.store.Get(kind)
	return &MetricSeries{Name: name, Unit: unit, Width: s.Rows(), Values: s.apply(m.motions)}
}

// TipTilt is the exit pupil tip and tilt in radians.
func (m *Model) TipTilt() *MetricSeries {
	return m.transform(TipTilt, MetricTipTilt, units.Radian)
}

// TipTiltMas is the exit pupil tip and tilt in milli-arcseconds.
func (m *Model) TipTiltMas() *MetricSeries {
	return m.TipTilt().Scaled(units.AngleFactor(units.Milliarc), units.Milliarc)
}

// SegmentTipTilt is the tip and tilt of every segment in radians: per
// sample, the 7 segment tips then the 7 segment tilts.
func (m *Model) SegmentTipTilt() *MetricSeries {
	return m.transform(SegmentTipTilt, MetricSegmentTipTilt, units.Radian)
}

// SegmentTipTiltMas is SegmentTipTilt in milli-arcseconds.
func (m *Model) SegmentTipTiltMas() *MetricSeries {
	return m.SegmentTipTilt().Scaled(units.AngleFactor(units.Milliarc), units.Milliarc)
}

// SegmentPiston is the piston of every segment in meters.
func (m *Model) SegmentPiston() *MetricSeries {
	return m.transform(SegmentPiston, MetricSegmentPiston, units.Meter)
}

// MaskedWavefront is the wavefront in meters over the illuminated pupil
// points.
func (m *Model) MaskedWavefront() *MetricSeries {
	return m.transform(Wavefront, MetricMaskedWavefront, units.Meter)
}

// Wavefront is the wavefront in meters over the full pupil grid, zero
// outside the illuminated points.
func (m *Model) Wavefront() *MetricSeries {
	pupil := m.store.Get(PupilMask).Pupil
	masked := m.MaskedWavefront()
	g := len(pupil)
	out := make([]float64, g*masked.Len())
	for k, sample := range masked.Items() {
		row := out[k*g : (k+1)*g]
		j := 0
		for i, lit := range pupil {
			if lit {
				row[i] = sample[j]
				j++
			}
		}
	}
	return &MetricSeries{Name: MetricWavefront, Unit: units.Meter, Width: g, Values: out}
}

// SegmentWavefront splits the masked wavefront by segment. Bucket i holds
// the values of segment i+1 for every sample, sample after sample.
func (m *Model) SegmentWavefront() [NSegments][]float64 {
	mask := m.store.Get(SegmentMask).Segments
	var out [NSegments][]float64
	for _, sample := range m.MaskedWavefront().Items() {
		for i, id := range mask {
			out[id-1] = append(out[id-1], sample[i])
		}
	}
	return out
}

// SegmentWfeRms is the wavefront error RMS of every segment over all
// samples, in meters times 10^-e: e = -9 gives nanometers. A segment
// without illuminated points has zero RMS.
func (m *Model) SegmentWfeRms(e int) []float64 {
	buckets := m.SegmentWavefront()
	out := make([]float64, NSegments)
	for i, w := range buckets {
		out[i] = rms(w, e)
	}
	return out
}

// SegmentWfeRmsSeries is the wavefront error RMS of every segment, sample
// by sample, in meters times 10^-e.
func (m *Model) SegmentWfeRmsSeries(e int) *MetricSeries {
	mask := m.store.Get(SegmentMask).Segments
	masked := m.MaskedWavefront()
	out := make([]float64, 0, NSegments*masked.Len())
	buckets := make([][]float64, NSegments)
	for _, sample := range masked.Items() {
		for i := range buckets {
			buckets[i] = buckets[i][:0]
		}
		for i, id := range mask {
			buckets[id-1] = append(buckets[id-1], sample[i])
		}
		for _, w := range buckets {
			out = append(out, rms(w, e))
		}
	}
	unit := units.Meter
	switch e {
	case -9:
		unit = units.Nanometer
	case -6:
		unit = units.Micrometer
	}
	return &MetricSeries{Name: MetricSegmentWfeRms, Unit: unit, Width: NSegments, Values: out}
}

func rms(w []float64, e int) float64 {
	if len(w) == 0 {
		return 0
	}
	r := math.Sqrt(floats.Dot(w, w) / float64(len(w)))
	if e != 0 {
		r *= math.Pow10(-e)
	}
	return r
}
