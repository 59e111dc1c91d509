// Package testutil provides synthetic optical models for tests outside the
// lom package.
package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/banshee-data/optics.report/internal/lom"
)

// Pupil is a small pupil grid with six illuminated points, and SegmentIDs
// assigns them to segments 1, 2, 2, 5, 7, 7.
var (
	Pupil      = []bool{true, false, true, true, false, true, true, true, false}
	SegmentIDs = []int32{1, 2, 2, 5, 7, 7}
)

// Matrix fills a column-major [rows x 84] sensitivity with smooth values.
func Matrix(rows int, phase float64) []float64 {
	v := make([]float64, rows*lom.NDof)
	for i := range v {
		v[i] = math.Sin(phase + 0.13*float64(i))
	}
	return v
}

// Store returns a store holding every sensitivity kind.
func Store(t testing.TB) *lom.Store {
	t.Helper()
	var sens []*lom.Sensitivity
	for _, m := range []struct {
		kind lom.Kind
		rows int
	}{
		{lom.Wavefront, len(SegmentIDs)},
		{lom.TipTilt, lom.NTipTilt},
		{lom.SegmentTipTilt, lom.NSegmentTT},
		{lom.SegmentPiston, lom.NSegmentPiston},
	} {
		s, err := lom.NewMatrixSensitivity(m.kind, Matrix(m.rows, float64(m.kind)))
		require.NoError(t, err)
		sens = append(sens, s)
	}
	mask, err := lom.NewSegmentMask(SegmentIDs)
	require.NoError(t, err)
	pupil, err := lom.NewPupilMask(Pupil)
	require.NoError(t, err)
	store, err := lom.NewStore(append(sens, mask, pupil)...)
	require.NoError(t, err)
	return store
}

// Motions returns n samples of micrometer-scale rigid body motions sampled
// at fs.
func Motions(t testing.TB, n int, fs float64) *lom.MotionSeries {
	t.Helper()
	values := make([]float64, n*lom.NDof)
	for k := 0; k < n; k++ {
		for i := 0; i < lom.NDof; i++ {
			values[k*lom.NDof+i] = 1e-6 * math.Cos(2*math.Pi*float64(k)/16+float64(i))
		}
	}
	m, err := lom.NewMotionSeries(values, lom.WithSamplingFrequency(fs))
	require.NoError(t, err)
	return m
}

// Model combines Store and Motions.
func Model(t testing.TB, n int, fs float64) *lom.Model {
	t.Helper()
	m, err := lom.New(Store(t), Motions(t, n, fs))
	require.NoError(t, err)
	return m
}
