package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/banshee-data/optics.report/internal/fsutil"
	"github.com/banshee-data/optics.report/internal/lom"
	"github.com/banshee-data/optics.report/internal/pmt"
	"github.com/banshee-data/optics.report/internal/report"
)

func (a *app) pmtCmd() *cobra.Command {
	var (
		column  string
		tipTilt string
		piston  string
		window  int
		format  string
	)
	cmd := &cobra.Command{
		Use:   "pmt <run-id>",
		Short: "Segment tip-tilt and piston of a run from its PMT measurements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if tipTilt == "" && piston == "" {
				return fmt.Errorf("at least one of --tiptilt and --piston is required")
			}
			f, err := report.ParseFormatting(format)
			if err != nil {
				return err
			}
			if window < 0 {
				return fmt.Errorf("window must not be negative, got %d", window)
			}

			d, err := a.openDB()
			if err != nil {
				return err
			}
			defer d.Close()

			table, err := d.Table(args[0])
			if err != nil {
				return err
			}
			series, err := pmt.FromTable(table, column)
			if err != nil {
				return err
			}

			var out []*lom.MetricSeries
			for _, t := range []struct {
				path      string
				transform func(*pmt.Sensitivity) (*lom.MetricSeries, error)
			}{
				{tipTilt, series.SegmentTipTilt},
				{piston, series.SegmentPiston},
			} {
				if t.path == "" {
					continue
				}
				sens, err := pmt.LoadSensitivity(fsutil.OSFileSystem{}, t.path)
				if err != nil {
					return err
				}
				s, err := t.transform(sens)
				if err != nil {
					return err
				}
				out = append(out, s)
			}

			n := window
			if n == lom.WholeSeries || n > series.Len() {
				n = series.Len()
			}
			fmt.Fprintf(a.out, "run %s: %d PMT samples, statistics over the last %d\n\n", args[0], series.Len(), n)
			for _, s := range out {
				tbl, err := report.StatsTable(s, n)
				if err != nil {
					return err
				}
				if err := tbl.Write(a.out, f); err != nil {
					return err
				}
				fmt.Fprintln(a.out)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&column, "column", pmt.Column, "Table column of the PMT samples")
	cmd.Flags().StringVar(&tipTilt, "tiptilt", "", "Segment tip-tilt PMT sensitivity CSV")
	cmd.Flags().StringVar(&piston, "piston", "", "Segment piston PMT sensitivity CSV")
	cmd.Flags().IntVarP(&window, "window", "n", 0, "Trailing samples of the statistics, 0 for all")
	cmd.Flags().StringVar(&format, "format", "adhoc", "Table format: adhoc or latex")
	return cmd
}
