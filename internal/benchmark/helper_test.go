package benchmark

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

var errConnectionRefused = errors.New("connection refused")

// step scripts one round trip of a scriptedTransport
type step struct {
	delay  time.Duration
	status int
	header http.Header
	body   io.Reader
	err    error
}

// scriptedTransport answers requests from a fixed script, advancing the
// fake clock by each step's delay to simulate latency
type scriptedTransport struct {
	mu    sync.Mutex
	clock *clockwork.FakeClock
	steps []step
	calls int
}

func (s *scriptedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	s.mu.Lock()
	st := s.steps[s.calls%len(s.steps)]
	s.calls++
	s.mu.Unlock()

	s.clock.Advance(st.delay)
	if st.err != nil {
		return nil, st.err
	}

	status := st.status
	if status == 0 {
		status = http.StatusOK
	}
	header := st.header
	if header == nil {
		header = http.Header{}
	}
	body := st.body
	if body == nil {
		body = strings.NewReader(`{"primeCount":664579}`)
	}
	return &http.Response{
		StatusCode: status,
		Header:     header,
		Body:       io.NopCloser(body),
		Request:    req,
	}, nil
}

func (s *scriptedTransport) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func newScriptedSampler(clock *clockwork.FakeClock, steps ...step) (*Sampler, *scriptedTransport) {
	transport := &scriptedTransport{clock: clock, steps: steps}
	return NewSampler(
		WithHTTPClient(&http.Client{Transport: transport}),
		WithClock(clock),
	), transport
}

func ms(n float64) time.Duration {
	return time.Duration(n * float64(time.Millisecond))
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
