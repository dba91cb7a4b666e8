package cmd

import (
	"context"
	"fmt"

	"github.com/psantana5/ct/internal/config"
	"github.com/psantana5/ct/internal/logging"
	"github.com/psantana5/ct/pkg/timing"
	"github.com/psantana5/ct/pkg/usage"
	"github.com/spf13/cobra"
)

var cfgFile string

// session is what every subcommand works with once flags and config are
// resolved.
type session struct {
	cfg      *config.Config
	logger   *logging.Logger
	usage    *usage.Config
	reporter *timing.Reporter
}

var current *session

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "ct",
	Short: "Time functions and commands, report CPU and RAM deltas",
	Long: `ct wraps work in timing and resource-usage reporters: it prints a bordered
block with the elapsed wall-clock time and one line per CPU or RAM delta.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// ExecuteContext runs the root command; subcommands observe ctx
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.ct/config.yaml)")
	pf.String("output", "table", "output format: table or json")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.Bool("log-json", false, "JSON logs; usage lines are then sent through the logger")
	pf.String("cpu-format", usage.DefaultCPUFormat, "CPU usage message template")
	pf.String("ram-format", usage.DefaultRAMFormat, "RAM usage message template")
	pf.String("cpu-scope", string(usage.ScopeSystem), "CPU measurement scope: system or process")
}

// setup loads configuration and builds the reporters
func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger := cfg.Logger()
	logger.SetOutput(cmd.ErrOrStderr())

	sampler, err := usage.NewSampler(cfg.Scope())
	if err != nil {
		return fmt.Errorf("failed to create sampler: %w", err)
	}

	var sink usage.Sink = usage.WriterSink{W: cmd.OutOrStdout()}
	if cfg.LogJSON {
		sink = logger.WithField("component", "usage")
	}

	u := usage.NewConfig(usage.WithSink(sink), usage.WithSampler(sampler))
	cfg.Apply(u)

	current = &session{
		cfg:      cfg,
		logger:   logger,
		usage:    u,
		reporter: timing.NewReporter(cmd.OutOrStdout()),
	}
	logger.Debug("configuration loaded", map[string]any{"cpu_scope": cfg.CPUScope, "output": cfg.Output})
	return nil
}

func isJSONOutput() bool {
	return current != nil && current.cfg.Output == "json"
}
