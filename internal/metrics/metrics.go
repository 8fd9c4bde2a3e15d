package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var (
	// Build information metric
	BuildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "serverless_bench_build_info",
		Help: "Build information of serverless-bench",
	}, []string{"version", "commit", "date"})

	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "serverless_bench_requests_total",
		Help: "Total number of sampling requests by outcome",
	}, []string{"service", "region", "outcome"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "serverless_bench_request_duration_seconds",
		Help:    "Total round trip time of successful sampling requests",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 14),
	}, []string{"service", "region"})

	ColdStartSeconds = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "serverless_bench_cold_start_seconds",
		Help: "Total time of the first successful request of the last run",
	}, []string{"service", "region"})

	P95Seconds = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "serverless_bench_p95_seconds",
		Help: "95th percentile total time of the last run",
	}, []string{"service", "region"})

	TargetRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "serverless_bench_target_runs_total",
		Help: "Total number of target runs by outcome",
	}, []string{"service", "outcome"})

	DeploymentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "serverless_bench_deployments_total",
		Help: "Total number of regional deployments by outcome",
	}, []string{"provider", "outcome"})
)

// Serve exposes the default registry on addr until ctx is done
func Serve(ctx context.Context, log *slog.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	go func() {
		log.Info("metrics server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", "error", err)
		}
	}()
}
