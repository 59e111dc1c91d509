package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/banshee-data/optics.report/internal/export"
	"github.com/banshee-data/optics.report/internal/fsutil"
	"github.com/banshee-data/optics.report/internal/security"
)

func (a *app) exportCmd() *cobra.Command {
	var (
		format  string
		out     string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "export <run-id>",
		Short: "Export the optical metrics of a run to a file or InfluxDB",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			var docs []*export.Document
			for _, s := range a.metrics(model) {
				doc, err := export.NewDocument(s, model.Time())
				if err != nil {
					return err
				}
				docs = append(docs, doc)
			}

			if format == "influx" {
				cfg := a.cfg.GetInflux()
				if cfg == nil {
					return errors.New("influx export needs an influx section in the configuration")
				}
				ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
				defer cancel()
				sink, err := export.NewInfluxSink(ctx, cfg)
				if err != nil {
					return err
				}
				defer sink.Close()
				return sink.Write(ctx, map[string]string{"run": run.ID, "label": run.Label}, run.CreatedAt, docs...)
			}

			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			if out == "" {
				out = filepath.Join(a.cfg.GetOutputDir(), security.SanitizeFilename(run.Label)+f.Extension())
			}
			if got, err := export.FormatOf(out); err != nil || got != f {
				return fmt.Errorf("output %s does not match format %s", out, f)
			}
			if err := security.ValidateOutputPath(out); err != nil {
				return err
			}
			if err := export.WriteFile(fsutil.OSFileSystem{}, out, docs...); err != nil {
				return err
			}
			fmt.Fprintln(a.out, out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Export format: json, gob or influx")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default: <output_dir>/<label>.<ext>)")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "InfluxDB request timeout")
	return cmd
}
