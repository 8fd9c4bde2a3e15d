package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"

	"serverless-bench/internal/config"
	"serverless-bench/internal/types"
)

// ConsoleReporter handles human readable console output
type ConsoleReporter struct {
	out io.Writer
}

// NewConsoleReporter creates a new console reporter writing to stdout
func NewConsoleReporter() *ConsoleReporter {
	return NewConsoleReporterTo(os.Stdout)
}

// NewConsoleReporterTo creates a console reporter writing to w
func NewConsoleReporterTo(w io.Writer) *ConsoleReporter {
	return &ConsoleReporter{out: w}
}

// PrintHeader prints the run header
func (c *ConsoleReporter) PrintHeader(cfg *config.Config, targets int) {
	fmt.Fprintln(c.out, strings.Repeat("=", 80))
	fmt.Fprintln(c.out, "Serverless Latency Benchmark")
	fmt.Fprintln(c.out, strings.Repeat("=", 80))
	fmt.Fprintf(c.out, "Targets: %d\n", targets)
	fmt.Fprintf(c.out, "Requests per Target: %d\n", cfg.Benchmark.Requests)
	fmt.Fprintf(c.out, "Request Timeout: %ds\n", cfg.Benchmark.RequestTimeoutSeconds)
	fmt.Fprintf(c.out, "Protocol: %s\n", cfg.Benchmark.Protocol)
	fmt.Fprintf(c.out, "Parallel Targets: %d\n", cfg.Benchmark.ParallelTargets)
	fmt.Fprintln(c.out, strings.Repeat("=", 80))
	fmt.Fprintln(c.out)
}

// PrintSection prints a section header
func (c *ConsoleReporter) PrintSection(title string) {
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, strings.Repeat("-", 80))
	fmt.Fprintf(c.out, ">>> %s\n", title)
	fmt.Fprintln(c.out, strings.Repeat("-", 80))
}

// PrintResults prints the outcome of one target
func (c *ConsoleReporter) PrintResults(ts types.TargetSummary) {
	if !ts.OK() {
		fmt.Fprintf(c.out, "\n%s (%s) failed: %v\n", ts.Service, ts.Region, ts.Err)
		return
	}
	fmt.Fprintf(c.out, "\n%s (%s) Results:\n%s\n", ts.Service, ts.Region, FormatResults(ts.Summary))
	if failures := ts.Summary.Failures(); failures > 0 {
		fmt.Fprintf(c.out, "  (%d of %d requests failed)\n", failures, ts.Summary.Requests)
	}
}

// PrintComparison prints a table comparing all targets
func (c *ConsoleReporter) PrintComparison(results []types.TargetSummary) {
	if len(results) == 0 {
		return
	}
	fmt.Fprintln(c.out, "\nSummary (ms):")

	table := tablewriter.NewTable(c.out,
		tablewriter.WithHeader([]string{
			"Service", "Region", "OK/Total", "Cold Start", "Avg TTFB", "Avg", "Min", "Max", "P95",
		}),
	)

	for _, r := range results {
		if !r.OK() {
			table.Append([]string{r.Service, r.Region, "-", "-", "-", "-", "-", "-", "-"})
			continue
		}
		s := r.Summary
		table.Append([]string{
			r.Service,
			r.Region,
			fmt.Sprintf("%d/%d", s.Successes, s.Requests),
			fmt.Sprintf("%.2f", s.ColdStartTime),
			fmt.Sprintf("%.2f", s.AvgTimeToFirstByte),
			fmt.Sprintf("%.2f", s.AvgTotalTime),
			fmt.Sprintf("%.2f", s.MinTotalTime),
			fmt.Sprintf("%.2f", s.MaxTotalTime),
			fmt.Sprintf("%.2f", s.P95TotalTime),
		})
	}

	table.Render()
}

// PrintFileSaved prints a message indicating an output file was written
func (c *ConsoleReporter) PrintFileSaved(kind, location string) {
	fmt.Fprintf(c.out, "%s saved to: %s\n", kind, location)
}

// PrintDone prints the closing banner
func (c *ConsoleReporter) PrintDone(csvFile string) {
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, strings.Repeat("=", 80))
	fmt.Fprintf(c.out, "All benchmarks completed. Results have been appended to %s\n", csvFile)
	fmt.Fprintln(c.out, strings.Repeat("=", 80))
}
