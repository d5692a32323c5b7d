package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/arloliu/sqlexec"
	"github.com/arloliu/sqlexec/config"
	vmmetrics "github.com/arloliu/sqlexec/contrib/metrics/vm"
	"github.com/spf13/cobra"

	// Backend transports register themselves via init()
	_ "github.com/arloliu/sqlexec/adapter/oracle"
	_ "github.com/arloliu/sqlexec/adapter/postgres"
	_ "github.com/arloliu/sqlexec/adapter/sqlserver"
)

// Version information (set at build time).
var Version = "0.1.0"

// app holds the state shared by subcommands after configuration is loaded.
type app struct {
	cfgFile     string
	dumpMetrics bool

	settings  *sqlexec.Settings
	logger    *slog.Logger
	collector *vmmetrics.Collector
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "sqlexec",
		Short: "sqlexec - provider-agnostic SQL command runner",
		Long: `sqlexec runs SQL text and stored procedures against SQL Server,
PostgreSQL or Oracle with one set of semantics: strategy selection,
bounded retry of transient failures, ref-cursor draining and
canonical error classification.

Settings are read from ./sqlexec.yaml, SQLEXEC_* environment variables
and flags, in increasing precedence.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			return a.load(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: ./sqlexec.yaml)")
	rootCmd.PersistentFlags().BoolVar(&a.dumpMetrics, "dump-metrics", false, "write collected metrics to stderr on exit")
	config.RegisterFlags(rootCmd.PersistentFlags())

	_ = rootCmd.RegisterFlagCompletionFunc("backend", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"sqlserver", "postgres", "oracle"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newBackendsCommand(a))
	rootCmd.AddCommand(newQueryCommand(a))
	rootCmd.AddCommand(newExecCommand(a))

	return rootCmd
}

// load reads settings and builds the logger and metrics collector.
func (a *app) load(cmd *cobra.Command) error {
	settings, err := config.Load(a.cfgFile, cmd.Root().PersistentFlags())
	if err != nil {
		return err
	}
	a.settings = settings
	a.logger = newLogger(cmd, settings.Log.Level)

	if settings.Metrics.Prefix != "" {
		a.collector = vmmetrics.New(vmmetrics.WithPrefix(settings.Metrics.Prefix))
	}

	return nil
}

// open opens an executor from the loaded settings.
func (a *app) open(ctx context.Context) (*sqlexec.Executor, error) {
	opts := []sqlexec.Option{sqlexec.WithLogger(a.logger)}
	if a.collector != nil {
		opts = append(opts, sqlexec.WithMetrics(a.collector))
	}

	exec, err := sqlexec.Open(ctx, a.settings, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s executor: %w", a.settings.Backend, err)
	}

	return exec, nil
}

// finish closes exec and dumps metrics when requested.
func (a *app) finish(exec *sqlexec.Executor) {
	if err := exec.Close(); err != nil {
		a.logger.Warn("close executor", "error", err)
	}
	if a.dumpMetrics && a.collector != nil {
		a.collector.WritePrometheus(os.Stderr)
	}
}

func newLogger(cmd *cobra.Command, level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: lvl}))
}
