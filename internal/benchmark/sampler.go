package benchmark

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"serverless-bench/internal/types"
)

// RequestStartHeader carries the server-reported start of request handling
const RequestStartHeader = "X-Request-Start"

// FailureObserver is invoked for every attempt that produced no sample.
// attempt is 1-based.
type FailureObserver func(attempt int, err error)

// SampleObserver is invoked for every successful sample
type SampleObserver func(attempt int, sample Sample)

// Sampler issues sequential GET requests against a target and reduces them into a Summary
type Sampler struct {
	client         *http.Client
	clock          clockwork.Clock
	requestTimeout time.Duration
	onFailure      FailureObserver
	onSample       SampleObserver
}

// Option configures a Sampler
type Option func(*Sampler)

// WithHTTPClient sets the client used to issue requests
func WithHTTPClient(client *http.Client) Option {
	return func(s *Sampler) {
		s.client = client
	}
}

// WithClock sets the clock used to stamp requests
func WithClock(clock clockwork.Clock) Option {
	return func(s *Sampler) {
		s.clock = clock
	}
}

// WithRequestTimeout bounds every request, including reading the body.
// Zero means no timeout beyond the client's own.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(s *Sampler) {
		s.requestTimeout = timeout
	}
}

// WithFailureObserver registers a callback for failed attempts
func WithFailureObserver(fn FailureObserver) Option {
	return func(s *Sampler) {
		s.onFailure = fn
	}
}

// WithSampleObserver registers a callback for successful samples
func WithSampleObserver(fn SampleObserver) Option {
	return func(s *Sampler) {
		s.onSample = fn
	}
}

// NewSampler creates a new Sampler
func NewSampler(opts ...Option) *Sampler {
	s := &Sampler{
		client:    http.DefaultClient,
		clock:     clockwork.NewRealClock(),
		onFailure: func(int, error) {},
		onSample:  func(int, Sample) {},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run issues sampleCount requests against target one after another and
// returns the reduced statistics of the successful ones. Failed attempts
// consume the budget and are not retried.
func (s *Sampler) Run(ctx context.Context, target string, sampleCount int) (types.Summary, error) {
	if sampleCount <= 0 {
		return types.Summary{}, fmt.Errorf("sample count must be positive, got %d", sampleCount)
	}

	samples := make([]Sample, 0, sampleCount)
	for i := 1; i <= sampleCount; i++ {
		if err := ctx.Err(); err != nil {
			return types.Summary{}, err
		}

		sample, err := s.measure(ctx, target)
		if err != nil {
			s.onFailure(i, err)
			continue
		}
		s.onSample(i, sample)
		samples = append(samples, sample)
	}

	summary, err := Reduce(samples)
	if err != nil {
		return types.Summary{}, err
	}
	summary.Requests = sampleCount
	return summary, nil
}

// measure executes a single request
func (s *Sampler) measure(ctx context.Context, target string) (Sample, error) {
	if s.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Sample{}, fmt.Errorf("failed to create request: %w", err)
	}

	start := s.clock.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return Sample{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return Sample{}, fmt.Errorf("failed to read response body: %w", err)
	}
	end := s.clock.Now()

	sample := Sample{
		Start: start,
		End:   end,
		// Without a server timestamp the whole round trip stands in for TTFB
		TimeToFirstByte: end.Sub(start),
	}
	if serverStart, ok := parseRequestStart(resp.Header.Get(RequestStartHeader)); ok {
		sample.TimeToFirstByte = serverStart.Sub(start)
	}
	return sample, nil
}

// parseRequestStart parses an X-Request-Start value. Accepts an optional
// "t=" prefix and a Unix timestamp in seconds, milliseconds or microseconds.
func parseRequestStart(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	value = strings.TrimPrefix(value, "t=")
	if value == "" {
		return time.Time{}, false
	}

	v, err := strconv.ParseFloat(value, 64)
	if err != nil || v <= 0 {
		return time.Time{}, false
	}

	var micros float64
	switch {
	case v < 1e11:
		micros = v * 1e6
	case v < 1e14:
		micros = v * 1e3
	default:
		micros = v
	}
	return time.UnixMicro(int64(micros)), true
}
