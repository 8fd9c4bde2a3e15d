package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"serverless-bench/internal/config"
	"serverless-bench/internal/deploy"
)

var deployCmd = &cobra.Command{
	Use:   "deploy <provider>...",
	Short: "Deploy the function to one or more providers (" + strings.Join(deploy.Providers, ", ") + ")",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return forEachProvider(cmd, args, deploy.OperationDeploy, func(ctx context.Context, m *deploy.Manager, d deploy.Deployer) error {
			_, err := m.Deploy(ctx, d)
			return err
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <provider>...",
	Short: "Delete previously deployed functions of one or more providers",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return forEachProvider(cmd, args, deploy.OperationDelete, func(ctx context.Context, m *deploy.Manager, d deploy.Deployer) error {
			return m.Delete(ctx, d)
		})
	},
}

// forEachProvider runs op for every provider in order. A failing provider
// is logged and does not stop the others.
func forEachProvider(cmd *cobra.Command, providers []string, operation deploy.Operation, op func(context.Context, *deploy.Manager, deploy.Deployer) error) error {
	log := newLogger(logLevel)

	cfg, err := loadConfig(cmd, log)
	if err != nil {
		log.Error("Failed to load configuration", "error", err)
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	manager := deploy.NewManager(log, cfg.Benchmark.ServicesFile, cfg.DeploymentDir)

	failed := 0
	for _, provider := range providers {
		if ctx.Err() != nil {
			log.Info("Operation cancelled by signal")
			return ctx.Err()
		}
		if err := runProvider(ctx, log, cfg, manager, provider, operation, op); err != nil {
			log.Error("Provider operation failed", slog.String("provider", provider), slog.String("error", err.Error()))
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d provider(s) failed", failed, len(providers))
	}
	return nil
}

func runProvider(ctx context.Context, log *slog.Logger, cfg *config.Config, m *deploy.Manager, provider string, operation deploy.Operation, op func(context.Context, *deploy.Manager, deploy.Deployer) error) error {
	d, err := deploy.New(log, cfg, provider, operation)
	if err != nil {
		return err
	}
	return op(ctx, m, d)
}
