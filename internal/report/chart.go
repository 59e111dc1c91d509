package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/optics.report/internal/lom"
)

// AssetsHost serves the echarts scripts of the HTML pages.
var AssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"

// LineChart builds an interactive chart of every channel of s against time.
func LineChart(s *lom.MetricSeries, time []float64) (*charts.Line, error) {
	if len(time) != s.Len() {
		return nil, fmt.Errorf("metric %q has %d samples but %d time stamps", s.Name, s.Len(), len(time))
	}
	x := make([]string, len(time))
	for k, t := range time {
		x[k] = strconv.FormatFloat(t, 'g', 6, 64)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: s.Name, Width: "100%", Height: "600px", AssetsHost: AssetsHost}),
		charts.WithTitleOpts(opts.Title{Title: s.Name, Subtitle: fmt.Sprintf("%d samples, %s", s.Len(), s.Unit)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(s.Width <= 2*lom.NSegmentTT), Type: "scroll"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Time (s)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: s.Unit}),
	)
	line.SetXAxis(x)
	for i, label := range s.ChannelLabels() {
		data := make([]opts.LineData, s.Len())
		for k := range data {
			data[k] = opts.LineData{Value: s.Values[k*s.Width+i]}
		}
		line.AddSeries(label, data, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
	}
	return line, nil
}

// WriteHTML renders one chart per series on a single page.
func WriteHTML(w io.Writer, time []float64, series ...*lom.MetricSeries) error {
	page := components.NewPage()
	page.PageTitle = "Linear optical model"
	page.AssetsHost = AssetsHost
	for _, s := range series {
		line, err := LineChart(s, time)
		if err != nil {
			return err
		}
		page.AddCharts(line)
	}
	return page.Render(w)
}
