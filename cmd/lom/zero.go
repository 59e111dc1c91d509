package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/banshee-data/optics.report/internal/lom"
)

// zeroCmd stores a copy of a run with the motions of one mirror set to zero,
// so that the contribution of the other mirror can be reported on its own.
func (a *app) zeroCmd() *cobra.Command {
	var (
		mirror string
		label  string
	)
	cmd := &cobra.Command{
		Use:   "zero <run-id>",
		Short: "Store a copy of a run without the motions of one mirror",
		Long:  "The copy is written to the M1RigidBodyMotions and M2RigidBodyMotions columns; point m1_column and m2_column at them to report on it.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var m lom.Mirror
			switch strings.ToLower(mirror) {
			case "m1":
				m = lom.M1
			case "m2":
				m = lom.M2
			default:
				return fmt.Errorf("unknown mirror %q, want m1 or m2", mirror)
			}

			d, err := a.openDB()
			if err != nil {
				return err
			}
			defer d.Close()

			motions, table, err := a.loadMotions(d, args[0])
			if err != nil {
				return err
			}
			if m == lom.M1 {
				motions.ZeroM1()
			} else {
				motions.ZeroM2()
			}
			if label == "" {
				label = fmt.Sprintf("%s-no-%s", table.Run().Label, strings.ToLower(m.String()))
			}
			run, err := d.CreateMotionRun(label, motions)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, run.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&mirror, "mirror", "m1", "Mirror whose motions are zeroed: m1 or m2")
	cmd.Flags().StringVar(&label, "label", "", "Label of the new run (default: <label>-no-<mirror>)")
	return cmd
}
