package report

import (
	"fmt"
	"strings"

	"serverless-bench/internal/types"
)

// FormatResults renders a summary as "field: value ms" lines with six decimals
func FormatResults(s types.Summary) string {
	fields := []struct {
		name  string
		value float64
	}{
		{"coldStartTime", s.ColdStartTime},
		{"avgTimeToFirstByte", s.AvgTimeToFirstByte},
		{"avgTotalTime", s.AvgTotalTime},
		{"minTotalTime", s.MinTotalTime},
		{"maxTotalTime", s.MaxTotalTime},
		{"p95TotalTime", s.P95TotalTime},
	}

	lines := make([]string, len(fields))
	for i, f := range fields {
		lines[i] = fmt.Sprintf("%s: %.6f ms", f.name, f.value)
	}
	return strings.Join(lines, "\n")
}
