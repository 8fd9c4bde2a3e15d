package benchmark

import (
	"errors"
	"math"
	"sort"
	"time"

	"serverless-bench/internal/types"
)

// ErrInsufficientSamples is returned when a run produced no successful sample to reduce
var ErrInsufficientSamples = errors.New("insufficient samples: no request succeeded")

// Sample is one measured request
type Sample struct {
	Start           time.Time
	End             time.Time
	TimeToFirstByte time.Duration
}

// TotalTime returns the full round trip of the request
func (s Sample) TotalTime() time.Duration {
	return s.End.Sub(s.Start)
}

// Reduce computes the summary statistics of an ordered sequence of samples.
// The first sample is taken as the cold start.
func Reduce(samples []Sample) (types.Summary, error) {
	if len(samples) == 0 {
		return types.Summary{}, ErrInsufficientSamples
	}

	totals := make([]float64, len(samples))
	ttfbs := make([]float64, len(samples))
	for i, s := range samples {
		totals[i] = millis(s.TotalTime())
		ttfbs[i] = millis(s.TimeToFirstByte)
	}

	sortedTotals := make([]float64, len(totals))
	copy(sortedTotals, totals)
	sort.Float64s(sortedTotals)

	return types.Summary{
		Requests:           len(samples),
		Successes:          len(samples),
		ColdStartTime:      totals[0],
		AvgTimeToFirstByte: average(ttfbs),
		AvgTotalTime:       average(totals),
		MinTotalTime:       sortedTotals[0],
		MaxTotalTime:       sortedTotals[len(sortedTotals)-1],
		P95TotalTime:       Percentile(sortedTotals, 0.95),
	}, nil
}

// millis converts a duration to fractional milliseconds
func millis(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / float64(time.Millisecond)
}

// average calculates the average of a slice of float64
func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Percentile calculates the p-th quantile (0..1) of a sorted slice using
// linear interpolation between the two closest ranks.
func Percentile(sortedValues []float64, p float64) float64 {
	if len(sortedValues) == 0 {
		return 0
	}

	pos := float64(len(sortedValues)-1) * p
	base := int(math.Floor(pos))
	if base < 0 {
		return sortedValues[0]
	}
	if base >= len(sortedValues)-1 {
		return sortedValues[len(sortedValues)-1]
	}

	// Linear interpolation
	rest := pos - float64(base)
	return sortedValues[base] + rest*(sortedValues[base+1]-sortedValues[base])
}
