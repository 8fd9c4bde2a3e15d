package report

import (
	"fmt"
	"os"
	"strings"
	"time"

	"serverless-bench/internal/config"
	"serverless-bench/internal/types"
)

// MarkdownReporter generates markdown reports
type MarkdownReporter struct {
	config *config.Config
	now    func() time.Time
}

// NewMarkdownReporter creates a new markdown reporter
func NewMarkdownReporter(cfg *config.Config) *MarkdownReporter {
	return &MarkdownReporter{
		config: cfg,
		now:    time.Now,
	}
}

// Generate generates the full markdown report
func (m *MarkdownReporter) Generate(results []types.TargetSummary) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Serverless Latency Benchmark Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", m.now().UTC().Format("2006-01-02 15:04:05 UTC")))

	m.writeConfiguration(&sb)
	m.writeOverallSummary(&sb, results)
	m.writeLatencyResults(&sb, results)
	m.writeFailures(&sb, results)

	return sb.String()
}

// writeConfiguration writes the test configuration section
func (m *MarkdownReporter) writeConfiguration(sb *strings.Builder) {
	sb.WriteString("## Test Configuration\n\n")
	sb.WriteString("| Parameter | Value |\n")
	sb.WriteString("|-----------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Requests per Target | %d |\n", m.config.Benchmark.Requests))
	sb.WriteString(fmt.Sprintf("| Request Timeout | %d seconds |\n", m.config.Benchmark.RequestTimeoutSeconds))
	sb.WriteString(fmt.Sprintf("| Protocol | %s |\n", m.config.Benchmark.Protocol))
	sb.WriteString(fmt.Sprintf("| Parallel Targets | %d |\n", m.config.Benchmark.ParallelTargets))
	sb.WriteString(fmt.Sprintf("| Services File | %s |\n\n", m.config.Benchmark.ServicesFile))
}

// writeOverallSummary writes the overall summary section
func (m *MarkdownReporter) writeOverallSummary(sb *strings.Builder, results []types.TargetSummary) {
	sb.WriteString("## Overall Summary\n\n")

	totalRequests := 0
	totalSuccess := 0
	failedTargets := 0
	for _, r := range results {
		if !r.OK() {
			failedTargets++
			continue
		}
		totalRequests += r.Summary.Requests
		totalSuccess += r.Summary.Successes
	}

	successRate := 0.0
	if totalRequests > 0 {
		successRate = float64(totalSuccess) / float64(totalRequests) * 100.0
	}

	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Targets | %d |\n", len(results)))
	sb.WriteString(fmt.Sprintf("| Failed Targets | %d |\n", failedTargets))
	sb.WriteString(fmt.Sprintf("| Requests (measured targets) | %d |\n", totalRequests))
	sb.WriteString(fmt.Sprintf("| Successful Requests | %d (%.2f%%) |\n\n", totalSuccess, successRate))
}

// writeLatencyResults writes one row per measured target
func (m *MarkdownReporter) writeLatencyResults(sb *strings.Builder, results []types.TargetSummary) {
	sb.WriteString("## Latency by Target\n\n")
	sb.WriteString("| Service | Region | Cold Start (ms) | Avg TTFB (ms) | Avg (ms) | Min (ms) | Max (ms) | P95 (ms) |\n")
	sb.WriteString("|---------|--------|-----------------|---------------|----------|----------|----------|----------|\n")

	for _, r := range results {
		if !r.OK() {
			continue
		}
		s := r.Summary
		sb.WriteString(fmt.Sprintf("| %s | %s | %.2f | %.2f | %.2f | %.2f | %.2f | %.2f |\n",
			r.Service,
			r.Region,
			s.ColdStartTime,
			s.AvgTimeToFirstByte,
			s.AvgTotalTime,
			s.MinTotalTime,
			s.MaxTotalTime,
			s.P95TotalTime,
		))
	}
	sb.WriteString("\n")
}

// writeFailures lists targets that produced no summary
func (m *MarkdownReporter) writeFailures(sb *strings.Builder, results []types.TargetSummary) {
	sb.WriteString("## Failed Targets\n\n")

	var failed []types.TargetSummary
	for _, r := range results {
		if !r.OK() {
			failed = append(failed, r)
		}
	}
	if len(failed) == 0 {
		sb.WriteString("All targets produced results.\n\n")
		return
	}

	sb.WriteString("| Service | Region | Error |\n")
	sb.WriteString("|---------|--------|-------|\n")
	for _, r := range failed {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n", r.Service, r.Region, markdownCell(r.Err.Error())))
	}
	sb.WriteString("\n")
}

// cellEscaper keeps a value on one table row
var cellEscaper = strings.NewReplacer("|", `\|`, "\r\n", " ", "\n", " ", "\r", " ")

func markdownCell(s string) string {
	return strings.TrimSpace(cellEscaper.Replace(s))
}

// SaveToFile saves the report to a file
func (m *MarkdownReporter) SaveToFile(content string, filename string) error {
	return os.WriteFile(filename, []byte(content), 0644)
}
