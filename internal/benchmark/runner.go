package benchmark

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"

	"serverless-bench/internal/config"
	"serverless-bench/internal/metrics"
	"serverless-bench/internal/registry"
	"serverless-bench/internal/report"
	"serverless-bench/internal/types"
)

// RunnerConfig holds the collaborators of a Runner
type RunnerConfig struct {
	Config  *config.Config
	Console *report.ConsoleReporter
	Sink    *report.CSVSink

	// Optional. Built from the configured protocol when nil.
	HTTPClient *http.Client
	// Optional. Real clock when nil.
	Clock clockwork.Clock
}

// Runner orchestrates the benchmark over every registered target
type Runner struct {
	log     *slog.Logger
	config  *config.Config
	console *report.ConsoleReporter
	sink    *report.CSVSink
	client  *http.Client
	clock   clockwork.Clock
}

type target struct {
	service string
	region  string
	url     string
}

// NewRunner creates a new benchmark runner
func NewRunner(log *slog.Logger, rc RunnerConfig) (*Runner, error) {
	if rc.Config == nil {
		return nil, errors.New("config is required")
	}
	if rc.Sink == nil {
		return nil, errors.New("sink is required")
	}

	console := rc.Console
	if console == nil {
		console = report.NewConsoleReporter()
	}

	clock := rc.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	client := rc.HTTPClient
	if client == nil {
		protocol, err := ParseProtocol(rc.Config.Benchmark.Protocol)
		if err != nil {
			return nil, err
		}
		client, err = NewHTTPClient(protocol, rc.Config.RequestTimeout())
		if err != nil {
			return nil, err
		}
	}

	return &Runner{
		log:     log,
		config:  rc.Config,
		console: console,
		sink:    rc.Sink,
		client:  client,
		clock:   clock,
	}, nil
}

// Run benchmarks every endpoint of reg. Services run in name order and
// regions in their declared order. Results are printed and appended to the
// sink in that same order, even when targets run concurrently.
func (r *Runner) Run(ctx context.Context, reg registry.Registry) ([]types.TargetSummary, error) {
	targets := targetsOf(reg)
	r.console.PrintHeader(r.config, len(targets))
	if len(targets) == 0 {
		r.log.Warn("No targets registered; deploy a provider first")
		return nil, nil
	}

	var sinkErr error
	lastService := ""
	emitter := newOrderedEmitter(len(targets), func(ts types.TargetSummary) {
		if ts.Service != lastService {
			r.console.PrintSection(fmt.Sprintf("Benchmarks for %s", ts.Service))
			lastService = ts.Service
		}
		r.console.PrintResults(ts)
		if !ts.OK() {
			return
		}
		if err := r.sink.Append(ts); err != nil {
			r.log.Error("Failed to append results", "service", ts.Service, "region", ts.Region, "error", err)
			if sinkErr == nil {
				sinkErr = err
			}
		}
	})

	pool := NewTargetPool(r.config.Benchmark.ParallelTargets)
	for i, t := range targets {
		pool.Submit(func() {
			emitter.complete(i, r.runTarget(ctx, t))
		})
	}
	pool.Wait()

	results := emitter.results
	r.console.PrintComparison(results)

	if sinkErr != nil {
		return results, fmt.Errorf("failed to write results: %w", sinkErr)
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

// runTarget samples one endpoint
func (r *Runner) runTarget(ctx context.Context, t target) types.TargetSummary {
	log := r.log.With("service", t.service, "region", t.region)
	requests := r.config.Benchmark.Requests

	ts := types.TargetSummary{
		Service: t.service,
		Region:  t.region,
		URL:     t.url,
	}
	if err := ctx.Err(); err != nil {
		ts.Err = err
		return ts
	}

	log.Info("Benchmarking target", "url", t.url, "requests", requests)

	sampler := NewSampler(
		WithHTTPClient(r.client),
		WithClock(r.clock),
		WithRequestTimeout(r.config.RequestTimeout()),
		WithFailureObserver(func(attempt int, err error) {
			log.Warn("Request failed", "attempt", attempt, "error", err)
			metrics.RequestsTotal.WithLabelValues(t.service, t.region, metrics.OutcomeFailure).Inc()
		}),
		WithSampleObserver(func(attempt int, s Sample) {
			log.Debug("Request completed", "attempt", attempt, "total", s.TotalTime(), "ttfb", s.TimeToFirstByte)
			metrics.RequestsTotal.WithLabelValues(t.service, t.region, metrics.OutcomeSuccess).Inc()
			metrics.RequestDuration.WithLabelValues(t.service, t.region).Observe(s.TotalTime().Seconds())
		}),
	)

	started := r.clock.Now()
	summary, err := sampler.Run(ctx, t.url, requests)
	ts.Timestamp = r.clock.Now()
	ts.Duration = ts.Timestamp.Sub(started)

	if err != nil {
		ts.Err = err
		log.Error("Target produced no summary", "error", err)
		metrics.TargetRunsTotal.WithLabelValues(t.service, metrics.OutcomeFailure).Inc()
		return ts
	}

	ts.Summary = summary
	metrics.TargetRunsTotal.WithLabelValues(t.service, metrics.OutcomeSuccess).Inc()
	metrics.ColdStartSeconds.WithLabelValues(t.service, t.region).Set(summary.ColdStartTime / 1000)
	metrics.P95Seconds.WithLabelValues(t.service, t.region).Set(summary.P95TotalTime / 1000)
	log.Info("Target completed",
		"successes", summary.Successes,
		"failures", summary.Failures(),
		"duration", ts.Duration.Round(time.Millisecond))
	return ts
}

// GenerateReport writes the markdown report when a report file is configured.
// Returns the path written, or "" when disabled.
func (r *Runner) GenerateReport(results []types.TargetSummary) (string, error) {
	filename := r.config.Output.ReportFile
	if filename == "" {
		return "", nil
	}

	generator := report.NewMarkdownReporter(r.config)
	content := generator.Generate(results)
	if err := generator.SaveToFile(content, filename); err != nil {
		return "", fmt.Errorf("failed to save report: %w", err)
	}

	r.console.PrintFileSaved("Report", filename)
	return filename, nil
}

func targetsOf(reg registry.Registry) []target {
	targets := make([]target, 0, reg.Len())
	for _, name := range reg.Names() {
		for _, ep := range reg[name].Regions {
			targets = append(targets, target{service: name, region: ep.Name, url: ep.URL})
		}
	}
	return targets
}
