package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/banshee-data/optics.report/internal/lom"
)

// readColumns parses a JSON object of columns, each an array of rows where
// null marks a missing row.
func readColumns(path string) (*lom.MemTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cols map[string][][]float64
	if err := json.Unmarshal(data, &cols); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	names := make([]string, 0, len(cols))
	for name := range cols {
		names = append(names, name)
	}
	sort.Strings(names)

	t := lom.NewMemTable()
	for _, name := range names {
		if err := t.Add(name, cols[name]); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (a *app) importCmd() *cobra.Command {
	var label string
	cmd := &cobra.Command{
		Use:   "import <columns.json>",
		Short: "Store a table of rigid body motion columns as a new run",
		Long:  "Reads a JSON object mapping column names (e.g. OSSM1Lcl, MCM2Lcl6D) to arrays of 42-value rows, null for missing rows, and stores it as a run.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := readColumns(args[0])
			if err != nil {
				return err
			}
			if label == "" {
				label = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			}

			d, err := a.openDB()
			if err != nil {
				return err
			}
			defer d.Close()

			run, err := d.CreateRun(label, t)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, run.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&label, "label", "", "Run label (default: file name)")
	return cmd
}

func (a *app) runsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "runs",
		Short: "List the stored runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.openDB()
			if err != nil {
				return err
			}
			defer d.Close()

			runs, err := d.ListRuns()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tLABEL\tROWS\tCREATED")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", r.ID, r.Label, r.Rows, r.CreatedAt.Format(time.RFC3339))
			}
			return tw.Flush()
		},
	}
}
