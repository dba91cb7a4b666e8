package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/psantana5/ct/pkg/usage"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/spf13/cobra"
)

var statsInterval time.Duration

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show one sample of the readings the usage reporter relies on",
	Long: `Takes a CPU baseline for both scopes, waits --interval, then prints CPU
percentages, the RSS of this process and system memory.`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().DurationVar(&statsInterval, "interval", 500*time.Millisecond, "time between baseline and reading")
}

type statsSample struct {
	PID              int     `json:"pid"`
	CPUCount         int     `json:"cpu_count"`
	SystemCPUPercent float64 `json:"system_cpu_percent"`
	ProcessCPU       float64 `json:"process_cpu_percent"`
	ProcessRSSBytes  uint64  `json:"process_rss_bytes"`
	MemTotalBytes    uint64  `json:"mem_total_bytes"`
	MemUsedBytes     uint64  `json:"mem_used_bytes"`
	MemUsedPercent   float64 `json:"mem_used_percent"`
}

func collectStats(interval time.Duration) (*statsSample, error) {
	system, err := usage.NewSampler(usage.ScopeSystem)
	if err != nil {
		return nil, err
	}
	proc, err := usage.NewSampler(usage.ScopeProcess)
	if err != nil {
		return nil, err
	}

	time.Sleep(interval)

	s := &statsSample{PID: os.Getpid()}
	if s.SystemCPUPercent, err = system.CPUPercent(); err != nil {
		return nil, err
	}
	if s.ProcessCPU, err = proc.CPUPercent(); err != nil {
		return nil, err
	}
	if s.ProcessRSSBytes, err = proc.RSSBytes(); err != nil {
		return nil, err
	}

	counts, err := cpu.Counts(true)
	if err != nil {
		return nil, fmt.Errorf("failed to count CPUs: %w", err)
	}
	s.CPUCount = counts

	vm, err := mem.VirtualMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to read system memory: %w", err)
	}
	s.MemTotalBytes = vm.Total
	s.MemUsedBytes = vm.Used
	s.MemUsedPercent = vm.UsedPercent
	return s, nil
}

func runStats(cmd *cobra.Command, args []string) error {
	s, err := collectStats(statsInterval)
	if err != nil {
		return err
	}
	if isJSONOutput() {
		return writeJSON(cmd.OutOrStdout(), s)
	}
	renderStats(cmd.OutOrStdout(), s)
	return nil
}

func renderStats(w io.Writer, s *statsSample) {
	table := tablewriter.NewWriter(w)
	table.Header("Field", "Value")
	table.Append("PID", fmt.Sprintf("%d", s.PID))
	table.Append("CPUs", fmt.Sprintf("%d", s.CPUCount))
	table.Append("System CPU", fmt.Sprintf("%.1f%%", s.SystemCPUPercent))
	table.Append("Process CPU", fmt.Sprintf("%.1f%%", s.ProcessCPU))
	table.Append("Process RSS", humanize.IBytes(s.ProcessRSSBytes))
	table.Append("Memory", fmt.Sprintf("%s / %s (%.1f%%)",
		humanize.IBytes(s.MemUsedBytes), humanize.IBytes(s.MemTotalBytes), s.MemUsedPercent))
	table.Render()
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}
