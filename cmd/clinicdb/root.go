package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/jwalitptl/clinic-data/internal/config"
	"github.com/jwalitptl/clinic-data/internal/database"
	"github.com/jwalitptl/clinic-data/pkg/logger"
	"github.com/jwalitptl/clinic-data/pkg/metrics"
)

// app is the state shared by every subcommand
type app struct {
	configPath  string
	logLevel    string
	metricsFile string

	cfg      *config.Config
	log      *logger.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
}

func newRootCommand() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "clinicdb",
		Short:         "Operate the clinic database",
		Long:          "clinicdb migrates the clinic schema, loads the system catalog and maintains the audit trail.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.writeMetrics()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "config file (default ./config.yaml or ./config/config.yaml)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level, overrides log.level")
	flags.StringVar(&a.metricsFile, "metrics-file", "", "write database metrics in text format to this file on exit")

	cmd.AddCommand(
		newMigrateCommand(a),
		newSeedCommand(a),
		newAuditCommand(a),
	)
	return cmd
}

func (a *app) init() error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := cfg.Log.Level
	if a.logLevel != "" {
		level = a.logLevel
	}
	a.log = logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(level),
		TimeFormat: time.RFC3339,
		Output:     os.Stderr,
		Console:    cfg.Log.Console,
	})

	a.registry = prometheus.NewRegistry()
	a.metrics = metrics.NewMetrics("clinic", "db", a.registry)
	return nil
}

// open connects with the loaded config; callers close the DB
func (a *app) open(ctx context.Context) (*database.DB, error) {
	db, err := database.Open(ctx, a.cfg.Database, database.OptionsFromConfig(a.cfg, a.log, a.metrics))
	if err != nil {
		a.log.Error(err, "failed to open database", "host", a.cfg.Database.Host, "name", a.cfg.Database.Name)
		return nil, err
	}
	return db, nil
}

// run opens the database, calls fn and logs its failure
func (a *app) run(cmd *cobra.Command, fn func(ctx context.Context, db *database.DB) error) error {
	ctx := cmd.Context()
	db, err := a.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := fn(ctx, db); err != nil {
		a.log.Error(err, cmd.Name()+" failed")
		return err
	}
	return nil
}

func (a *app) writeMetrics() error {
	if a.metricsFile == "" || a.registry == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(a.metricsFile, a.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
