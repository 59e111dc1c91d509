package report

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/optics.report/internal/lom"
	"github.com/banshee-data/optics.report/internal/monitoring"
)

// Plot sizes of the saved PNG files.
const (
	plotWidth  = 14 * vg.Inch
	plotHeight = 6 * vg.Inch
)

// TimePlot draws every channel of s against time, one line per channel.
func TimePlot(s *lom.MetricSeries, time []float64) (*plot.Plot, error) {
	if len(time) != s.Len() {
		return nil, fmt.Errorf("metric %q has %d samples but %d time stamps", s.Name, s.Len(), len(time))
	}
	p := plot.New()
	p.Title.Text = s.Name
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = fmt.Sprintf("%s (%s)", s.Name, s.Unit)

	for i, label := range s.ChannelLabels() {
		pts := make(plotter.XYs, s.Len())
		for k := range pts {
			pts[k] = plotter.XY{X: time[k], Y: s.Values[k*s.Width+i]}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1)
		p.Add(line)
		if s.Width <= 2*lom.NSegmentTT {
			p.Legend.Add(label, line)
		}
	}
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

// SavePNG writes the time plot of s to path. The image format follows the
// file extension.
func SavePNG(path string, s *lom.MetricSeries, time []float64) error {
	p, err := TimePlot(s, time)
	if err != nil {
		return err
	}
	if err := p.Save(plotWidth, plotHeight, path); err != nil {
		return fmt.Errorf("failed to save plot %s: %w", path, err)
	}
	monitoring.Logf("saved %s plot to %s", s.Name, path)
	return nil
}

// SpectrumPlot draws the power spectral density of every channel of s on
// log-log axes. The DC bin and empty bins are left out.
func SpectrumPlot(s *lom.MetricSeries, sp *lom.Spectrum) (*plot.Plot, error) {
	if len(sp.Power) != s.Width {
		return nil, fmt.Errorf("metric %q has %d channels but %d spectra", s.Name, s.Width, len(sp.Power))
	}
	p := plot.New()
	p.Title.Text = s.Name + " PSD"
	p.X.Label.Text = "Frequency (Hz)"
	p.Y.Label.Text = fmt.Sprintf("PSD (%s²/Hz)", s.Unit)

	drawn := 0
	for i, label := range s.ChannelLabels() {
		var pts plotter.XYs
		for j, f := range sp.Frequency {
			if f > 0 && sp.Power[i][j] > 0 {
				pts = append(pts, plotter.XY{X: f, Y: sp.Power[i][j]})
			}
		}
		if len(pts) == 0 {
			continue
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1)
		p.Add(line)
		if s.Width <= 2*lom.NSegmentTT {
			p.Legend.Add(label, line)
		}
		drawn++
	}
	if drawn > 0 {
		p.X.Scale = plot.LogScale{}
		p.X.Tick.Marker = plot.LogTicks{}
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{}
	}
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

// SaveSpectrumPNG writes the spectrum plot of s to path.
func SaveSpectrumPNG(path string, s *lom.MetricSeries, sp *lom.Spectrum) error {
	p, err := SpectrumPlot(s, sp)
	if err != nil {
		return err
	}
	if err := p.Save(plotWidth, plotHeight, path); err != nil {
		return fmt.Errorf("failed to save plot %s: %w", path, err)
	}
	monitoring.Logf("saved %s spectrum to %s", s.Name, path)
	return nil
}
