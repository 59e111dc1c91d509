package lom

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(start float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)
	}
	return out
}

func segmentsOf(v []float64) [][]float64 {
	var segs [][]float64
	for chunk := range slices.Chunk(v, NSegmentDof) {
		segs = append(segs, chunk)
	}
	return segs
}

func TestFromSlicesAndFromSegmentsAgree(t *testing.T) {
	m1 := [][]float64{seq(0, NMirrorDof), seq(100, NMirrorDof)}
	m2 := [][]float64{seq(1000, NMirrorDof), seq(2000, NMirrorDof)}

	flat, err := FromSlices(Zip(m1, m2))
	require.NoError(t, err)

	var s1, s2 [][][]float64
	for k := range m1 {
		s1 = append(s1, segmentsOf(m1[k]))
		s2 = append(s2, segmentsOf(m2[k]))
	}
	nested, err := FromSegments(Zip(s1, s2))
	require.NoError(t, err)

	require.Equal(t, 2, flat.Len())
	for k := 0; k < flat.Len(); k++ {
		if diff := cmp.Diff(flat.Sample(k), nested.Sample(k)); diff != "" {
			t.Errorf("sample %d mismatch (-flat +nested):\n%s", k, diff)
		}
	}

	data := flat.Data()
	r, c := data.Dims()
	assert.Equal(t, NDof, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, 100.0+41, data.At(41, 1))
	assert.Equal(t, 2000.0, data.At(42, 1))
	assert.Equal(t, data.At(5, 1), data.T().At(1, 5))

	gotM1, gotM2 := nested.Segments(1)
	assert.Equal(t, s1[1], gotM1)
	assert.Equal(t, s2[1], gotM2)
}

func TestMotionShapeErrors(t *testing.T) {
	tests := []struct {
		name string
		run  func() error
		want DofCountError
	}{
		{
			name: "short M1 slice",
			run: func() error {
				_, err := FromSlices(Zip([][]float64{seq(0, 41)}, [][]float64{seq(0, 42)}))
				return err
			},
			want: DofCountError{Mirror: M1, Got: 41, Want: NMirrorDof},
		},
		{
			name: "long M2 slice in second sample",
			run: func() error {
				_, err := FromSlices(Zip(
					[][]float64{seq(0, 42), seq(0, 42)},
					[][]float64{seq(0, 42), seq(0, 43)}))
				return err
			},
			want: DofCountError{Mirror: M2, Sample: 1, Got: 43, Want: NMirrorDof},
		},
		{
			name: "six segments",
			run: func() error {
				_, err := FromSegments(Zip(
					[][][]float64{segmentsOf(seq(0, 36))},
					[][][]float64{segmentsOf(seq(0, 42))}))
				return err
			},
			want: DofCountError{Mirror: M1, Got: 6, Want: NSegments},
		},
		{
			name: "segment with five dof",
			run: func() error {
				bad := segmentsOf(seq(0, 42))
				bad[3] = bad[3][:5]
				_, err := FromSegments(Zip(
					[][][]float64{segmentsOf(seq(0, 42))},
					[][][]float64{bad}))
				return err
			},
			want: DofCountError{Mirror: M2, Segment: 4, Got: 5, Want: NSegmentDof},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			require.ErrorIs(t, err, ErrDofCount)
			var got *DofCountError
			require.ErrorAs(t, err, &got)
			assert.Equal(t, tt.want, *got)
		})
	}

	_, err := NewMotionSeries(make([]float64, NDof+1))
	assert.ErrorIs(t, err, ErrDofCount)
}

func TestMotionTime(t *testing.T) {
	m := testMotions(t, 4, WithSamplingFrequency(10))
	assert.InDeltaSlice(t, []float64{0, 0.1, 0.2, 0.3}, m.Time(), 1e-15)
	assert.Equal(t, 10.0, m.SamplingFrequency())

	m = testMotions(t, 3)
	assert.Equal(t, []float64{0, 1, 2}, m.Time(), "default sampling frequency is 1 Hz")

	m = testMotions(t, 3, WithTime([]float64{5, 7, 9}))
	assert.Equal(t, []float64{5, 7, 9}, m.Time())

	_, err := NewMotionSeries(make([]float64, 2*NDof), WithTime([]float64{1}))
	assert.Error(t, err)
	_, err = NewMotionSeries(nil, WithSamplingFrequency(0))
	assert.Error(t, err)
}

func TestZeroMirror(t *testing.T) {
	m := testMotions(t, 3)
	orig := m.Clone()

	m.ZeroM1()
	for k := 0; k < m.Len(); k++ {
		s := m.Sample(k)
		assert.Equal(t, make([]float64, NMirrorDof), s[:NMirrorDof])
		assert.Equal(t, orig.Sample(k)[NMirrorDof:], s[NMirrorDof:])
	}

	m.ZeroM2()
	for k := 0; k < m.Len(); k++ {
		assert.Equal(t, make([]float64, NDof), m.Sample(k))
	}
	assert.NotEqual(t, make([]float64, NDof), orig.Sample(0), "clone must not share storage")
}

func TestFromTable(t *testing.T) {
	table := NewMemTable()
	require.NoError(t, table.Add(DefaultM1Column, [][]float64{seq(0, 42), nil, seq(200, 42), seq(300, 42)}))
	require.NoError(t, table.Add(DefaultM2Column, [][]float64{seq(10, 42), seq(110, 42), seq(210, 42), seq(310, 42)}))
	assert.Equal(t, 4, table.NumRows())

	m, err := FromTable(table, "", "")
	require.NoError(t, err)
	require.Equal(t, 3, m.Len(), "null row dropped")
	assert.Equal(t, []float64{0, 2, 3}, m.Time(), "time is the table row index")
	assert.Equal(t, 0.5, m.SamplingFrequency())
	assert.Equal(t, 300.0, m.Sample(2)[0])
	assert.Equal(t, 310.0, m.Sample(2)[NMirrorDof])

	_, err = FromTable(table, "M1", "")
	assert.ErrorIs(t, err, ErrMissingColumn)

	err = table.Add("short", [][]float64{nil})
	assert.Error(t, err, "columns must share the row count")
}

func TestTableRoundTrip(t *testing.T) {
	m := testMotions(t, 5)
	table := ToTable(m, "", "")
	assert.Equal(t, []string{WriteM1Column, WriteM2Column}, table.Names())

	back, err := FromTable(table, WriteM1Column, WriteM2Column)
	require.NoError(t, err)
	require.Equal(t, m.Len(), back.Len())
	for k := 0; k < m.Len(); k++ {
		assert.Equal(t, m.Sample(k), back.Sample(k))
	}
}

func TestSingleRowTableKeepsDefaultFrequency(t *testing.T) {
	table := ToTable(testMotions(t, 1), DefaultM1Column, DefaultM2Column)
	m, err := FromTable(table, "", "")
	require.NoError(t, err)
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, 1.0, m.SamplingFrequency())
	assert.Equal(t, []float64{0}, m.Time())
}
