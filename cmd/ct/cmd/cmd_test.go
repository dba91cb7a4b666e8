package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"runtime"
	"testing"
	"time"

	"github.com/psantana5/ct/internal/wrapper"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	resetFlags(rootCmd)
	cfgFile = ""

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestConfigShowYAML(t *testing.T) {
	out, _, err := execute(t, "config", "show", "--cpu-scope", "process")

	require.NoError(t, err)
	assert.Contains(t, out, "cpu_format: ")
	assert.Contains(t, out, "CPU usage={cpu_usage}%")
	assert.Contains(t, out, "cpu_scope: process")
}

func TestConfigShowJSON(t *testing.T) {
	t.Setenv("CT_RAM_FORMAT", "{name} {ram_usage}")

	out, _, err := execute(t, "--output", "json", "config", "show")

	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "{name} {ram_usage}", got["ram_format"])
	assert.Equal(t, "json", got["output"])
}

func TestInvalidScopeFails(t *testing.T) {
	_, _, err := execute(t, "--cpu-scope", "gpu", "config", "show")
	assert.ErrorContains(t, err, "invalid cpu scope")
}

func TestWorkloadSleepReportsAll(t *testing.T) {
	out, _, err := execute(t, "workload", "sleep", "--duration", "10ms",
		"--cpu-format", "{name} cpu", "--ram-format", "{name} ram")

	require.NoError(t, err)
	assert.Contains(t, out, "Function sleep finished")
	assert.Contains(t, out, "Elapsed time: 0:00:00.0")
	assert.Contains(t, out, "sleep cpu\n")
	assert.Contains(t, out, "sleep ram\n")
}

func TestWorkloadUsageThroughLogger(t *testing.T) {
	out, logs, err := execute(t, "--log-json", "workload", "sleep", "--duration", "1ms",
		"--ram-format", "ram {ram_usage:.1f}")

	require.NoError(t, err)
	assert.Contains(t, out, "Function sleep finished")
	assert.NotContains(t, out, "ram ")
	assert.Contains(t, logs, `"component":"usage"`)
	assert.Contains(t, logs, `"message":"ram `)
}

func TestWorkloadBadTemplateFails(t *testing.T) {
	out, _, err := execute(t, "workload", "sleep", "--duration", "1ms", "--cpu-format", "{missing}")

	assert.Error(t, err)
	assert.Contains(t, out, "Function sleep finished")
	assert.NotContains(t, out, "RAM usage")
}

func TestWorkloadAllocRejectsBadSize(t *testing.T) {
	_, _, err := execute(t, "workload", "alloc", "--size", "lots")
	assert.ErrorContains(t, err, "invalid size")
}

func TestExecReportsTiming(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs sh")
	}

	out, _, err := execute(t, "exec", "--", "sh", "-c", "echo hi")

	require.NoError(t, err)
	assert.Contains(t, out, "hi\n")
	assert.Contains(t, out, "Function sh finished")
}

func TestExecPassesFlagsToCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs sh")
	}

	out, _, err := execute(t, "exec", "--cpu-format", "{name} cpu", "--cpu", "sh", "-c", "echo $0", "--ram")

	require.NoError(t, err)
	assert.Contains(t, out, "--ram\n")
	assert.Contains(t, out, "Function sh finished")
	assert.Contains(t, out, "sh cpu\n")
	assert.NotContains(t, out, "RAM usage")
}

func TestExecFailureSkipsReport(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs sh")
	}

	out, _, err := execute(t, "exec", "--cpu", "--", "sh", "-c", "exit 3")

	var exitErr *wrapper.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 3, exitErr.ExitCode)
	assert.NotContains(t, out, "finished")
	assert.NotContains(t, out, "CPU usage")
}

func TestWorkloadsHonourCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sleepFor(ctx, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = spinFor(ctx, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = allocate(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAllocateTouchesBuffer(t *testing.T) {
	buf, err := allocate(context.Background(), 10000)

	require.NoError(t, err)
	assert.Len(t, buf, 10000)
	assert.Equal(t, byte(1), buf[4096])
}

func TestCollectAndRenderStats(t *testing.T) {
	s, err := collectStats(10 * time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), s.PID)
	assert.Greater(t, s.ProcessRSSBytes, uint64(0))
	assert.Greater(t, s.MemTotalBytes, uint64(0))

	var buf bytes.Buffer
	renderStats(&buf, &statsSample{
		PID:             42,
		CPUCount:        8,
		ProcessRSSBytes: 3 << 20,
		MemUsedBytes:    1 << 30,
		MemTotalBytes:   4 << 30,
		MemUsedPercent:  25,
	})
	assert.Contains(t, buf.String(), "3.0 MiB")
	assert.Contains(t, buf.String(), "1.0 GiB / 4.0 GiB (25.0%)")
}
