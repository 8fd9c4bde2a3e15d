package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"serverless-bench/internal/awsconf"
	"serverless-bench/internal/benchmark"
	"serverless-bench/internal/metrics"
	"serverless-bench/internal/registry"
	"serverless-bench/internal/report"
)

var (
	benchServices []string
	benchRequests int
	benchCSVFile  string
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Benchmark every registered endpoint and append the results to the CSV file",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger(logLevel)

		cfg, err := loadConfig(cmd, log)
		if err != nil {
			log.Error("Failed to load configuration", "error", err)
			return err
		}
		if benchRequests > 0 {
			cfg.Benchmark.Requests = benchRequests
		}
		if benchCSVFile != "" {
			cfg.Output.CSVFile = benchCSVFile
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		if cfg.Metrics.ListenAddr != "" {
			metrics.Serve(ctx, log, cfg.Metrics.ListenAddr)
		}

		reg, err := registry.Load(cfg.Benchmark.ServicesFile)
		if err != nil {
			log.Error("Failed to load registry", "error", err)
			return err
		}
		reg, err = reg.Filter(benchServices)
		if err != nil {
			log.Error("Failed to select services", "error", err)
			return err
		}

		console := report.NewConsoleReporter()
		runner, err := benchmark.NewRunner(log, benchmark.RunnerConfig{
			Config:  cfg,
			Console: console,
			Sink:    report.NewCSVSink(cfg.Output.CSVFile),
		})
		if err != nil {
			log.Error("Failed to create runner", "error", err)
			return err
		}

		log.Info("Operation started: bench", "targets", reg.Len(), "requests", cfg.Benchmark.Requests)
		results, err := runner.Run(ctx, reg)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("Operation cancelled by signal")
			}
			log.Error("Operation failed: bench", "error", err)
			return err
		}

		reportFile, err := runner.GenerateReport(results)
		if err != nil {
			log.Error("Failed to generate report", "error", err)
			return err
		}

		if cfg.Output.S3Bucket != "" && len(results) > 0 {
			awsCfg, err := awsconf.Load(ctx, cfg.Output.S3Region, cfg.AWS.AccessKeyID, cfg.AWS.SecretAccessKey)
			if err != nil {
				log.Error("Failed to load AWS config", "error", err)
				return err
			}
			uploader := report.NewS3Uploader(s3.NewFromConfig(awsCfg), cfg.Output.S3Bucket, cfg.Output.S3Prefix)

			files := map[string]string{cfg.Output.CSVFile: "text/csv"}
			if reportFile != "" {
				files[reportFile] = "text/markdown"
			}
			for file, contentType := range files {
				location, err := uploader.UploadFile(ctx, file, contentType)
				if err != nil {
					log.Error("Failed to upload results", "file", file, "error", err)
					return err
				}
				console.PrintFileSaved("Upload", location)
			}
		}

		if len(results) > 0 {
			console.PrintDone(cfg.Output.CSVFile)
		}
		log.Info("Operation completed: bench")
		return nil
	},
}

func init() {
	benchCmd.Flags().StringSliceVar(&benchServices, "service", nil, "Only benchmark these services (repeatable)")
	benchCmd.Flags().IntVar(&benchRequests, "requests", 0, "Requests per target (overrides config)")
	benchCmd.Flags().StringVar(&benchCSVFile, "csv", "", "CSV results file (overrides config)")
}
