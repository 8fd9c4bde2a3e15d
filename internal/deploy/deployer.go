// Package deploy pushes the benchmark function to serverless providers and
// keeps track of what was deployed so it can be removed again.
//
// Each provider takes a different artifact:
//
//   - aws: aws.source_file_path is a Linux executable named bootstrap for the
//     provided.al2023 runtime, built from ./cmd/prime-lambda
//     (GOOS=linux go build -tags lambda.norpc -o build/bootstrap ./cmd/prime-lambda).
//   - gcp: gcp.source_code_path is a directory holding a Go module whose root
//     package exports the entry point. The repository root qualifies, with
//     entry point BenchmarkFunction and a go1xx runtime.
//   - do, fleek: source_code_path is a single source file for the platform's
//     own runtime, uploaded verbatim. None ships with this repository.
//
// ./cmd/prime-http serves the same handler on $PORT for container runtimes
// and local runs.
package deploy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"serverless-bench/internal/config"
	"serverless-bench/internal/metrics"
	"serverless-bench/internal/registry"
)

// Provider names accepted on the command line
const (
	ProviderAWS          = "aws"
	ProviderGCP          = "gcp"
	ProviderDigitalOcean = "do"
	ProviderFleek        = "fleek"
)

// Providers lists every supported provider
var Providers = []string{ProviderAWS, ProviderGCP, ProviderDigitalOcean, ProviderFleek}

// Record describes one regional deployment
type Record struct {
	Provider     string `json:"provider"`
	Region       string `json:"region"`
	FunctionName string `json:"functionName"`
	URL          string `json:"url"`
}

// Deployer deploys the function to every configured region of one provider.
// Deploy returns the successful deployments; per-region failures are logged
// and skipped.
type Deployer interface {
	Name() string
	Deploy(ctx context.Context) ([]Record, error)
	Delete(ctx context.Context, records []Record) error
}

// Operation is what a deployer is created for
type Operation string

const (
	OperationDeploy Operation = "deploy"
	OperationDelete Operation = "delete"
)

// New creates the deployer for provider after checking the settings op needs
func New(log *slog.Logger, cfg *config.Config, provider string, op Operation) (Deployer, error) {
	var err error
	switch op {
	case OperationDeploy:
		err = cfg.ValidateDeploy(provider)
	case OperationDelete:
		err = cfg.ValidateDelete(provider)
	default:
		err = fmt.Errorf("unknown operation: %s", op)
	}
	if err != nil {
		return nil, err
	}
	switch provider {
	case ProviderAWS:
		return NewAWSDeployer(log, cfg.AWS), nil
	case ProviderGCP:
		return NewGCPDeployer(log, cfg.GCP, nil), nil
	case ProviderDigitalOcean:
		return NewDigitalOceanDeployer(log, cfg.DigitalOcean, nil), nil
	case ProviderFleek:
		return NewFleekDeployer(log, cfg.Fleek, nil), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
}

// Manager runs deployers and persists their results to the registry and
// the per-provider deployment data files
type Manager struct {
	log           *slog.Logger
	registryPath  string
	deploymentDir string
}

// NewManager creates a new Manager
func NewManager(log *slog.Logger, registryPath, deploymentDir string) *Manager {
	return &Manager{
		log:           log,
		registryPath:  registryPath,
		deploymentDir: deploymentDir,
	}
}

// Deploy runs d and records the successful deployments. When nothing was
// deployed the registry is left untouched.
func (m *Manager) Deploy(ctx context.Context, d Deployer) ([]Record, error) {
	provider := d.Name()
	log := m.log.With("provider", provider)
	log.Info("Operation started: deploy")

	records, err := d.Deploy(ctx)
	if err != nil {
		return nil, fmt.Errorf("deployment to %s failed: %w", provider, err)
	}
	if len(records) == 0 {
		log.Warn("No successful deployments, check the logs for details")
		return nil, nil
	}

	reg, err := registry.Load(m.registryPath)
	if err != nil {
		return records, err
	}
	reg.Set(provider, Endpoints(records))
	if err := reg.Save(m.registryPath); err != nil {
		return records, err
	}

	path, err := SaveRecords(m.deploymentDir, provider, records)
	if err != nil {
		return records, err
	}

	log.Info("Operation completed: deploy",
		slog.Int("regions", len(records)),
		slog.String("deployment_data", path))
	return records, nil
}

// Delete removes every recorded deployment of d's provider, then the
// deployment data file and the provider's registry entry. Individual
// deletion failures are logged and do not keep the data file.
func (m *Manager) Delete(ctx context.Context, d Deployer) error {
	provider := d.Name()
	log := m.log.With("provider", provider)

	records, err := LoadRecords(m.deploymentDir, provider)
	if errors.Is(err, ErrNoDeploymentData) {
		log.Info("No deployment data found")
		return nil
	}
	if err != nil {
		return err
	}

	log.Info("Operation started: delete", slog.Int("records", len(records)))
	if err := d.Delete(ctx, records); err != nil {
		if errors.Is(err, ErrDeleteUnsupported) {
			return fmt.Errorf("deletion from %s failed: %w", provider, err)
		}
		// Failed records are not retried; the data file is removed regardless
		log.Error("Some deployments could not be deleted", "error", err)
	}

	if err := RemoveRecords(m.deploymentDir, provider); err != nil {
		return err
	}

	reg, err := registry.Load(m.registryPath)
	if err != nil {
		return err
	}
	if _, ok := reg[provider]; ok {
		delete(reg, provider)
		if err := reg.Save(m.registryPath); err != nil {
			return err
		}
	}

	log.Info("Operation completed: delete")
	return nil
}

// Endpoints converts records to registry endpoints
func Endpoints(records []Record) []registry.Endpoint {
	endpoints := make([]registry.Endpoint, len(records))
	for i, r := range records {
		endpoints[i] = registry.Endpoint{Name: r.Region, URL: r.URL}
	}
	return endpoints
}

func recordOutcome(provider string, err error) {
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeFailure
	}
	metrics.DeploymentsTotal.WithLabelValues(provider, outcome).Inc()
}
