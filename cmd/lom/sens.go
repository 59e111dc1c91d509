package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/optics.report/internal/fsutil"
	"github.com/banshee-data/optics.report/internal/lom"
	"github.com/banshee-data/optics.report/internal/version"
)

func (a *app) sensCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sens",
		Short: "Inspect optical sensitivity files",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "info [file]",
		Short: "List the sensitivities of a file (default: the configured one)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				store *lom.Store
				path  string
				err   error
			)
			if len(args) == 1 {
				path = args[0]
				store, err = lom.Load(fsutil.OSFileSystem{}, path)
			} else {
				loader := a.cfg.Loader()
				path = loader.Path()
				store, err = loader.Load()
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(a.out, path)
			tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "KIND\tSHAPE\tM1 NORM\tM2 NORM")
			var matrices []lom.Kind
			for _, kind := range store.Kinds() {
				s := store.Get(kind)
				if !kind.IsMatrix() {
					fmt.Fprintf(tw, "%s\t%d\t-\t-\n", kind, s.Len())
					continue
				}
				matrices = append(matrices, kind)
				var norms [2]float64
				for i, m := range []lom.Mirror{lom.M1, lom.M2} {
					block, err := s.MirrorBlock(m)
					if err != nil {
						return err
					}
					norms[i] = mat.Norm(block, 2)
				}
				fmt.Fprintf(tw, "%s\t%dx%d\t%.4g\t%.4g\n", kind, s.Rows(), lom.NDof, norms[0], norms[1])
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			if len(matrices) > 0 {
				stacked, err := store.Stack(matrices...)
				if err != nil {
					return err
				}
				r, c := stacked.Dims()
				fmt.Fprintf(a.out, "stacked: %dx%d\n", r, c)
			}
			if s, ok := store.Lookup(lom.SegmentTipTilt); ok {
				rxry, err := s.M2RxRy()
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "M2 Rx/Ry condition number: %.4g\n", mat.Cond(rxry, 2))
			}
			return nil
		},
	})
	return cmd
}

func versionCmd(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(out, version.String())
		},
	}
}
