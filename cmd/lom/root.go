package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/banshee-data/optics.report/internal/config"
	"github.com/banshee-data/optics.report/internal/db"
	"github.com/banshee-data/optics.report/internal/lom"
	"github.com/banshee-data/optics.report/internal/monitoring"
)

// app carries the flags and configuration shared by every subcommand.
type app struct {
	out        io.Writer
	configPath string
	logLevel   string
	dbPath     string
	sensDir    string
	cfg        *config.Config
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}

	root := &cobra.Command{
		Use:           "lom",
		Short:         "Linear optical model of the GMT segmented mirrors",
		Long:          "Transforms M1 and M2 rigid body motions into exit pupil tip-tilt, segment tip-tilt, segment piston and wavefront, and reports their statistics.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.SetOut(out)

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to a JSON or YAML configuration file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Set log level (trace, debug, info, warn, error)")
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "SQLite database of runs (overrides config)")
	root.PersistentFlags().StringVar(&a.sensDir, "sens-dir", "", "Directory of the optical sensitivities (overrides config and $LOM)")

	root.AddCommand(
		a.importCmd(),
		a.runsCmd(),
		a.statsCmd(),
		a.zeroCmd(),
		a.plotCmd(),
		a.exportCmd(),
		a.pmtCmd(),
		a.sensCmd(),
		versionCmd(out),
	)
	return root
}

// setup loads .env files and the configuration, then applies flag
// overrides.
func (a *app) setup() error {
	if err := config.LoadEnv(".env"); err != nil {
		monitoring.Logger().WithError(err).Warn("error loading .env file")
	}

	path := a.configPath
	if path == "" {
		if _, err := os.Stat(config.DefaultConfigPath); err == nil {
			path = config.DefaultConfigPath
		}
	}
	a.cfg = config.Empty()
	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}

	if a.dbPath != "" {
		a.cfg.Database = &a.dbPath
	}
	if a.sensDir != "" {
		a.cfg.SensitivityDir = &a.sensDir
	}

	level := a.cfg.GetLogLevel()
	if a.logLevel != "" {
		level = a.logLevel
	}
	if err := monitoring.SetLevel(level); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	return nil
}

func (a *app) openDB() (*db.DB, error) {
	return db.NewDB(a.cfg.GetDatabase())
}

// loadMotions reads the rigid body motions of a stored run. With a
// configured sampling frequency, row indices are converted to seconds.
func (a *app) loadMotions(d *db.DB, runID string) (*lom.MotionSeries, *db.RunTable, error) {
	table, err := d.Table(runID)
	if err != nil {
		return nil, nil, err
	}
	m, err := lom.FromTable(table, a.cfg.GetM1Column(), a.cfg.GetM2Column())
	if err != nil {
		return nil, nil, err
	}
	fs := a.cfg.GetSamplingFrequency()
	if fs <= 0 {
		return m, table, nil
	}
	values := make([]float64, 0, m.Len()*lom.NDof)
	times := m.Time()
	for k := range times {
		values = append(values, m.Sample(k)...)
		times[k] /= fs
	}
	m, err = lom.NewMotionSeries(values, lom.WithTime(times), lom.WithSamplingFrequency(fs))
	return m, table, err
}

// loadModel builds the model of a stored run.
func (a *app) loadModel(d *db.DB, runID string, kinds ...lom.Kind) (*lom.Model, *db.RunTable, error) {
	motions, table, err := a.loadMotions(d, runID)
	if err != nil {
		return nil, nil, err
	}
	model, err := lom.NewBuilder().
		WithLoader(a.cfg.Loader()).
		WithMotions(motions).
		Require(kinds...).
		Build()
	if err != nil {
		return nil, nil, err
	}
	return model, table, nil
}
