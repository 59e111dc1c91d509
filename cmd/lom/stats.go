package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/banshee-data/optics.report/internal/lom"
	"github.com/banshee-data/optics.report/internal/monitoring"
	"github.com/banshee-data/optics.report/internal/report"
	"github.com/banshee-data/optics.report/internal/units"
)

// reported are the sensitivities every report needs.
var reported = []lom.Kind{lom.TipTilt, lom.SegmentTipTilt, lom.SegmentPiston}

// metrics returns the reported series of a model in the configured units.
// The segment wavefront error is added when the store holds the wavefront
// and segment mask.
func (a *app) metrics(model *lom.Model) []*lom.MetricSeries {
	angle, length := a.cfg.GetAngleUnit(), a.cfg.GetLengthUnit()
	out := []*lom.MetricSeries{
		model.TipTilt().Scaled(units.AngleFactor(angle), angle),
		model.SegmentTipTilt().Scaled(units.AngleFactor(angle), angle),
		model.SegmentPiston().Scaled(units.LengthFactor(length), length),
	}
	if model.Store().Has(lom.Wavefront) && model.Store().Has(lom.SegmentMask) {
		out = append(out, model.SegmentWfeRmsSeries(a.cfg.GetWfeExponent()))
	}
	return out
}

func (a *app) statsCmd() *cobra.Command {
	var (
		window  int
		format  string
		save    bool
		motions bool
	)
	cmd := &cobra.Command{
		Use:   "stats <run-id>",
		Short: "Print the mean and standard deviation of the optical metrics of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := report.ParseFormatting(format)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("window") {
				window = a.cfg.GetWindow()
			}
			if window < 0 {
				return fmt.Errorf("window must not be negative, got %d", window)
			}

			d, err := a.openDB()
			if err != nil {
				return err
			}
			defer d.Close()

			model, table, err := a.loadModel(d, args[0], reported...)
			if err != nil {
				return err
			}
			run := table.Run()
			n := window
			if n == lom.WholeSeries || n > model.Len() {
				n = model.Len()
			}
			fmt.Fprintf(a.out, "run %s (%s): %d samples, statistics over the last %d\n\n", run.ID, run.Label, model.Len(), n)

			if motions && model.Len() > 0 {
				if err := report.MotionsTable(model.Motions(), model.Len()-1).Write(a.out, f); err != nil {
					return err
				}
				fmt.Fprintln(a.out)
			}

			for _, s := range a.metrics(model) {
				tbl, err := report.StatsTable(s, n)
				if err != nil {
					return err
				}
				if err := tbl.Write(a.out, f); err != nil {
					return err
				}
				fmt.Fprintln(a.out)

				if save {
					info, err := d.SaveMetricSeries(run.ID, s, model.Time())
					if err != nil {
						return err
					}
					monitoring.Logger().WithFields(logrus.Fields{
						"run":    run.ID,
						"metric": s.Name,
						"series": info.ID,
					}).Info("saved metric series")
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&window, "window", "n", 0, "Trailing samples of the statistics, 0 for all (default from config)")
	cmd.Flags().StringVar(&format, "format", "adhoc", "Table format: adhoc or latex")
	cmd.Flags().BoolVar(&save, "save", false, "Store the metric series in the database")
	cmd.Flags().BoolVar(&motions, "motions", false, "Also print the last rigid body motions")
	return cmd
}
