package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/psantana5/ct/pkg/timing"
	"github.com/psantana5/ct/pkg/usage"
	"github.com/spf13/cobra"
)

var (
	workloadDuration time.Duration
	workloadSize     string
)

var workloadCmd = &cobra.Command{
	Use:   "workload",
	Short: "Run a built-in workload through every reporter",
	Long: `Built-in workloads are plain Go functions wrapped with the timing, CPU and
RAM reporters, handy for checking templates and sinks.`,
}

var workloadSleepCmd = &cobra.Command{
	Use:   "sleep",
	Short: "Sleep for --duration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := measured(sleepFor, "sleep")(cmd.Context(), workloadDuration)
		return err
	},
}

var workloadSpinCmd = &cobra.Command{
	Use:   "spin",
	Short: "Keep one CPU busy for --duration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := measured(spinFor, "spin")(cmd.Context(), workloadDuration)
		if err != nil {
			return err
		}
		current.logger.Debug("spin finished", map[string]any{"iterations": n})
		return nil
	},
}

var workloadAllocCmd = &cobra.Command{
	Use:   "alloc",
	Short: "Allocate and touch --size bytes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		size, err := humanize.ParseBytes(workloadSize)
		if err != nil {
			return fmt.Errorf("invalid size %q: %w", workloadSize, err)
		}
		buf, err := measured(allocate, "alloc")(cmd.Context(), size)
		if err != nil {
			return err
		}
		current.logger.Debug("allocated", map[string]any{"bytes": humanize.IBytes(uint64(len(buf)))})
		return nil
	},
}

func init() {
	rootCmd.AddCommand(workloadCmd)
	workloadCmd.AddCommand(workloadSleepCmd, workloadSpinCmd, workloadAllocCmd)

	workloadCmd.PersistentFlags().DurationVar(&workloadDuration, "duration", time.Second, "how long sleep and spin run")
	workloadAllocCmd.Flags().StringVar(&workloadSize, "size", "64MiB", "bytes to allocate, e.g. 128MB or 1GiB")
}

// measured stacks the reporters around fn: RAM outermost, timing innermost,
// so the timing block only covers fn.
func measured[A, R any](fn func(context.Context, A) (R, error), name string) func(context.Context, A) (R, error) {
	timed := timing.Wrap2(current.reporter, fn, timing.WithName(name))
	cpu := usage.WrapCPU2(current.usage, timed, usage.WithName(name))
	return usage.WrapRAM2(current.usage, cpu, usage.WithName(name))
}

func sleepFor(ctx context.Context, d time.Duration) (time.Duration, error) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return d, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func spinFor(ctx context.Context, d time.Duration) (uint64, error) {
	deadline := time.Now().Add(d)
	var n uint64
	for time.Now().Before(deadline) {
		if n%1_000_000 == 0 && ctx.Err() != nil {
			return n, ctx.Err()
		}
		n++
	}
	return n, nil
}

// allocate returns the buffer so it stays live until the RAM wrapper has
// taken its second reading.
func allocate(ctx context.Context, size uint64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	buf := make([]byte, size)
	for i := 0; i < len(buf); i += 4096 {
		buf[i] = 1
	}
	return buf, nil
}
