package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"serverless-bench/internal/types"
)

// CSVHeader is written once, when the results file is created
var CSVHeader = []string{
	"Service", "Region", "Timestamp",
	"Cold Start Time", "Avg TTFB", "Avg Total Time", "Min Total Time", "Max Total Time", "P95 Total Time",
}

// timestampLayout is ISO 8601 in UTC with millisecond precision
const timestampLayout = "2006-01-02T15:04:05.000Z"

// CSVSink appends target summaries to a CSV file
type CSVSink struct {
	mu   sync.Mutex
	path string
}

// NewCSVSink creates a sink writing to path
func NewCSVSink(path string) *CSVSink {
	return &CSVSink{path: path}
}

// Path returns the file the sink appends to
func (s *CSVSink) Path() string {
	return s.path
}

// Append writes one row per successful target. Failed targets are skipped.
func (s *CSVSink) Append(results ...types.TargetSummary) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	writeHeader := true
	if info, err := os.Stat(s.path); err == nil && info.Size() > 0 {
		writeHeader = false
	}

	file, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open CSV file %s: %w", s.path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close CSV file: %w", cerr)
		}
	}()

	w := csv.NewWriter(file)
	if writeHeader {
		if err := w.Write(CSVHeader); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
	}
	for _, r := range results {
		if !r.OK() {
			continue
		}
		if err := w.Write(csvRecord(r)); err != nil {
			return fmt.Errorf("failed to write CSV record for %s/%s: %w", r.Service, r.Region, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV file: %w", err)
	}
	return nil
}

func csvRecord(r types.TargetSummary) []string {
	ts := r.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	s := r.Summary
	return []string{
		r.Service,
		r.Region,
		ts.UTC().Format(timestampLayout),
		formatFloat(s.ColdStartTime),
		formatFloat(s.AvgTimeToFirstByte),
		formatFloat(s.AvgTotalTime),
		formatFloat(s.MinTotalTime),
		formatFloat(s.MaxTotalTime),
		formatFloat(s.P95TotalTime),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
