package cmd

import (
	"path/filepath"

	"github.com/psantana5/ct/internal/wrapper"
	"github.com/psantana5/ct/pkg/timing"
	"github.com/psantana5/ct/pkg/usage"
	"github.com/spf13/cobra"
)

var (
	execCPU bool
	execRAM bool
)

// execCmd represents the exec command
var execCmd = &cobra.Command{
	Use:   "exec [flags] <command> [args...]",
	Short: "Run a command and report how long it took",
	Long: `Runs an external command with its output forwarded, then prints a timing
block. With --cpu or --ram the CPU or RSS delta around the run is reported as
well. Flags after the command name belong to the command. A failing command
reports nothing and ct exits with its exit code.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExec,
}

func init() {
	rootCmd.AddCommand(execCmd)

	execCmd.Flags().SetInterspersed(false)

	execCmd.Flags().BoolVar(&execCPU, "cpu", false, "report the CPU usage delta")
	execCmd.Flags().BoolVar(&execRAM, "ram", false, "report the RSS delta of ct itself")
}

func runExec(cmd *cobra.Command, args []string) error {
	c := wrapper.New(args[0], args[1:]...)
	c.Stdout = cmd.OutOrStdout()
	c.Stderr = cmd.ErrOrStderr()
	c.Logger = current.logger

	name := filepath.Base(args[0])
	run := timing.Wrap(current.reporter, c.Run, timing.WithName(name))
	if execCPU {
		run = usage.WrapCPU(current.usage, run, usage.WithName(name))
	}
	if execRAM {
		run = usage.WrapRAM(current.usage, run, usage.WithName(name))
	}

	res, err := run(cmd.Context())
	if err != nil {
		return err
	}
	current.logger.Debug("command finished", map[string]any{"pid": res.PID, "exit_code": res.ExitCode})
	return nil
}
