package types

import "time"

// Summary contains the reduced statistics of one sampling run.
// All latency values are in milliseconds.
type Summary struct {
	// Sample counts
	Requests  int
	Successes int

	// Latency stats (in milliseconds)
	ColdStartTime      float64
	AvgTimeToFirstByte float64
	AvgTotalTime       float64
	MinTotalTime       float64
	MaxTotalTime       float64
	P95TotalTime       float64
}

// Failures returns the number of requests that produced no sample
func (s Summary) Failures() int {
	return s.Requests - s.Successes
}

// TargetSummary ties a Summary to the service and region it was measured against
type TargetSummary struct {
	Service   string
	Region    string
	URL       string
	Timestamp time.Time
	Duration  time.Duration

	// Summary is only meaningful when Err is nil
	Summary Summary
	Err     error
}

// OK reports whether the target produced a summary
func (t TargetSummary) OK() bool {
	return t.Err == nil
}
