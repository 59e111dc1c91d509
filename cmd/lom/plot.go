package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/banshee-data/optics.report/internal/lom"
	"github.com/banshee-data/optics.report/internal/monitoring"
	"github.com/banshee-data/optics.report/internal/report"
	"github.com/banshee-data/optics.report/internal/security"
)

func (a *app) plotCmd() *cobra.Command {
	var (
		outDir string
		html   bool
		psd    bool
	)
	cmd := &cobra.Command{
		Use:   "plot <run-id>",
		Short: "Plot the optical metrics of a run against time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if outDir == "" {
				outDir = a.cfg.GetOutputDir()
			}
			if err := security.ValidateOutputPath(outDir); err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
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
			prefix := security.SanitizeFilename(table.Run().Label)
			series := a.metrics(model)

			if html {
				path := filepath.Join(outDir, prefix+".html")
				f, err := os.Create(path)
				if err != nil {
					return err
				}
				if err := report.WriteHTML(f, model.Time(), series...); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				monitoring.Logf("wrote charts to %s", path)
				return nil
			}

			fs := model.Motions().SamplingFrequency()
			for _, s := range series {
				base := filepath.Join(outDir, prefix+"_"+security.SanitizeFilename(s.Name))
				if !psd {
					if err := report.SavePNG(base+".png", s, model.Time()); err != nil {
						return err
					}
					continue
				}
				sp, err := s.PowerSpectrum(lom.WholeSeries, fs)
				if err != nil {
					return err
				}
				if err := report.SaveSpectrumPNG(base+"_psd.png", s, sp); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (default from config)")
	cmd.Flags().BoolVar(&html, "html", false, "Write one interactive HTML page instead of PNG files")
	cmd.Flags().BoolVar(&psd, "psd", false, "Plot power spectral densities instead of time series")
	return cmd
}
