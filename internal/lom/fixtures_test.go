package lom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

// Five illuminated points on an eight point pupil grid.
var (
	testSegmentIDs = []int32{1, 1, 2, 3, 7}
	testPupil      = []bool{false, true, true, false, true, true, false, true}
)

// testMatrix fills a column-major [rows x 84] matrix with distinct values.
func testMatrix(rows int, seed float64) []float64 {
	v := make([]float64, rows*NDof)
	for c := 0; c < NDof; c++ {
		for r := 0; r < rows; r++ {
			v[c*rows+r] = math.Sin(seed + float64(r*NDof+c))
		}
	}
	return v
}

func mustMatrix(t *testing.T, kind Kind, values []float64) *Sensitivity {
	t.Helper()
	s, err := NewMatrixSensitivity(kind, values)
	require.NoError(t, err)
	return s
}

func testStore(t *testing.T) *Store {
	t.Helper()
	mask, err := NewSegmentMask(testSegmentIDs)
	require.NoError(t, err)
	pupil, err := NewPupilMask(testPupil)
	require.NoError(t, err)
	store, err := NewStore(
		mustMatrix(t, Wavefront, testMatrix(len(testSegmentIDs), 0.1)),
		mustMatrix(t, TipTilt, testMatrix(NTipTilt, 0.2)),
		mustMatrix(t, SegmentTipTilt, testMatrix(NSegmentTT, 0.3)),
		mustMatrix(t, SegmentPiston, testMatrix(NSegmentPiston, 0.4)),
		mask,
		pupil,
	)
	require.NoError(t, err)
	return store
}

func testMotions(t *testing.T, n int, opts ...MotionOption) *MotionSeries {
	t.Helper()
	values := make([]float64, n*NDof)
	for i := range values {
		values[i] = 1e-6 * math.Cos(0.37*float64(i))
	}
	m, err := NewMotionSeries(values, opts...)
	require.NoError(t, err)
	return m
}

// naiveProduct evaluates the sensitivity times the motions element by
// element, time-major.
func naiveProduct(values []float64, rows int, m *MotionSeries) []float64 {
	data := m.Data()
	out := make([]float64, 0, rows*m.Len())
	for k := 0; k < m.Len(); k++ {
		for r := 0; r < rows; r++ {
			var sum float64
			for c := 0; c < NDof; c++ {
				sum += values[c*rows+r] * data.At(c, k)
			}
			out = append(out, sum)
		}
	}
	return out
}
