package lom

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunks(t *testing.T) {
	s, err := NewMetricSeries("x", "m", 2, []float64{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)

	if diff := cmp.Diff([][]float64{{1, 2}, {3, 4}, {5, 6}}, s.Chunks(2)); diff != "" {
		t.Errorf("Chunks(2) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([][]float64{{1, 2, 3, 4}}, s.Chunks(4)); diff != "" {
		t.Errorf("Chunks(4) mismatch (-want +got):\n%s", diff)
	}
	assert.Nil(t, s.Chunks(0))
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []float64{2, 4, 6}, s.Channel(1))

	_, err = NewMetricSeries("x", "m", 4, []float64{1, 2, 3})
	assert.Error(t, err)
	_, err = NewMetricSeries("x", "m", 0, nil)
	assert.Error(t, err)
}

func TestTrailingWindowStatistics(t *testing.T) {
	s, err := NewMetricSeries("x", "m", 2, []float64{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)

	mean, err := s.Mean(2)
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 5}, mean)

	variance, err := s.Variance(2)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1}, variance)

	std, err := s.Std(2)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1}, std)

	mean, err = s.Mean(WholeSeries)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 4}, mean)

	variance, err = s.Variance(WholeSeries)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{8.0 / 3, 8.0 / 3}, variance, 1e-15)

	tw, err := s.TimeWise(2)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 5, 4, 6}, tw)
}

func TestTimeWiseIsChannelMajor(t *testing.T) {
	s, err := NewMetricSeries("x", "m", 2, []float64{0, 10, 1, 11, 2, 12})
	require.NoError(t, err)

	tw, err := s.TimeWise(WholeSeries)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 2, 10, 11, 12}, tw)

	tw, err = s.TimeWise(3)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 2, 10, 11, 12}, tw)
}

func TestWholeSeriesMatchesFullWindow(t *testing.T) {
	model := testModel(t, 30)
	stt := model.SegmentTipTilt()
	n := stt.Len()

	for name, stat := range map[string]func(int) ([]float64, error){
		"mean":     stt.Mean,
		"variance": stt.Variance,
		"std":      stt.Std,
	} {
		t.Run(name, func(t *testing.T) {
			whole, err := stat(WholeSeries)
			require.NoError(t, err)
			full, err := stat(n)
			require.NoError(t, err)
			assert.Equal(t, full, whole)
		})
	}
}

func TestNegativeWindowIsRejected(t *testing.T) {
	s, err := NewMetricSeries("x", "m", 2, []float64{0, 10, 1, 11, 2, 12})
	require.NoError(t, err)

	_, err = s.Mean(-5)
	require.ErrorIs(t, err, ErrNotEnoughSamples)
	var werr *WindowError
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, -5, werr.Requested)
	assert.Equal(t, 3, werr.Available)

	_, err = s.TimeWise(-1)
	assert.ErrorIs(t, err, ErrNotEnoughSamples)
	_, err = s.PowerSpectrum(-1, 1)
	assert.ErrorIs(t, err, ErrNotEnoughSamples)
}

func TestStatisticsWindowPrecondition(t *testing.T) {
	s, _ := NewMetricSeries("x", "m", 2, []float64{1, 2, 3, 4, 5, 6})
	empty, _ := NewMetricSeries("y", "m", 3, nil)

	tests := []struct {
		name   string
		series *MetricSeries
		window int
	}{
		{"window longer than series", s, 4},
		{"empty series", empty, WholeSeries},
		{"empty series with window", empty, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, call := range []func(int) error{
				func(w int) error { _, err := tt.series.Mean(w); return err },
				func(w int) error { _, err := tt.series.Variance(w); return err },
				func(w int) error { _, err := tt.series.Std(w); return err },
				func(w int) error { _, err := tt.series.TimeWise(w); return err },
			} {
				err := call(tt.window)
				require.ErrorIs(t, err, ErrNotEnoughSamples)
				var werr *WindowError
				require.ErrorAs(t, err, &werr)
				assert.Equal(t, tt.series.Len(), werr.Available)
			}
		})
	}
}

func TestConstantSeriesHasZeroVariance(t *testing.T) {
	values := make([]float64, 3*50)
	for i := range values {
		values[i] = 4.2 + float64(i%3)
	}
	s, err := NewMetricSeries("c", "m", 3, values)
	require.NoError(t, err)

	mean, err := s.Mean(20)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{4.2, 5.2, 6.2}, mean, 1e-12)
	variance, err := s.Variance(20)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 0, 0}, variance, 1e-24)
}

func TestStdSquaredIsVariance(t *testing.T) {
	model := testModel(t, 40)
	stt := model.SegmentTipTiltMas()

	variance, err := stt.Variance(25)
	require.NoError(t, err)
	std, err := stt.Std(25)
	require.NoError(t, err)
	for i := range std {
		assert.Equal(t, math.Sqrt(variance[i]), std[i], "channel %d", i)
		assert.InEpsilon(t, variance[i], std[i]*std[i], 1e-12)
	}
}

func TestChannelLabels(t *testing.T) {
	model := testModel(t, 1)
	assert.Equal(t, []string{"tip", "tilt"}, model.TipTiltMas().ChannelLabels())

	stt := model.SegmentTipTilt().ChannelLabels()
	require.Len(t, stt, NSegmentTT)
	assert.Equal(t, "tip_s1", stt[0])
	assert.Equal(t, "tip_s7", stt[6])
	assert.Equal(t, "tilt_s1", stt[7])

	assert.Equal(t, "s3", model.SegmentPiston().ChannelLabels()[2])
	assert.Equal(t, []string{"c0", "c1", "c2", "c3", "c4"}, model.MaskedWavefront().ChannelLabels())
}

func TestScaledCopies(t *testing.T) {
	s, _ := NewMetricSeries("p", "m", 1, []float64{1e-9, -2e-9})
	nm := s.Scaled(1e9, "nm")
	assert.InDeltaSlice(t, []float64{1, -2}, nm.Values, 1e-12)
	assert.Equal(t, "nm", nm.Unit)
	assert.Equal(t, []float64{1e-9, -2e-9}, s.Values)
}

func TestPowerSpectrum(t *testing.T) {
	const (
		n    = 64
		fs   = 16.0
		freq = 2.0
	)
	values := make([]float64, 2*n)
	for k := 0; k < n; k++ {
		values[2*k] = math.Sin(2 * math.Pi * freq * float64(k) / fs)
		values[2*k+1] = 0.5
	}
	s, err := NewMetricSeries("tt", "rad", 2, values)
	require.NoError(t, err)

	sp, err := s.PowerSpectrum(WholeSeries, fs)
	require.NoError(t, err)
	require.Len(t, sp.Frequency, n/2+1)
	assert.Equal(t, fs/2, sp.Frequency[n/2])

	// Parseval: the integrated density equals the mean square.
	df := fs / n
	for ch, want := range []float64{0.5, 0.25} {
		var total float64
		for _, p := range sp.Power[ch] {
			total += p * df
		}
		assert.InDelta(t, want, total, 1e-12, "channel %d", ch)
	}

	peak := 0
	for i, p := range sp.Power[0] {
		if p > sp.Power[0][peak] {
			peak = i
		}
	}
	assert.Equal(t, freq, sp.Frequency[peak])
	assert.InDelta(t, 0.25/df, sp.Power[1][0], 1e-12, "constant channel is pure DC")

	_, err = s.PowerSpectrum(n+1, fs)
	assert.ErrorIs(t, err, ErrNotEnoughSamples)
}
