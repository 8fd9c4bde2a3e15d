package deploy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"serverless-bench/internal/config"
)

// Commander runs an external command and returns its standard output
type Commander interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execCommander struct{}

func (execCommander) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return out, fmt.Errorf("%w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return out, err
	}
	return out, nil
}

// gcloud prints the trigger URL as "url: https://..." (or "URL:" / "uri:")
var gcloudURLPattern = regexp.MustCompile(`(?mi)^\s*(?:url|uri):\s*(https://\S+)`)

// GCPDeployer deploys the function with the gcloud CLI
type GCPDeployer struct {
	log *slog.Logger
	cfg config.GCPConfig
	cmd Commander
}

// NewGCPDeployer creates a new GCP deployer. A nil commander runs gcloud
// from PATH.
func NewGCPDeployer(log *slog.Logger, cfg config.GCPConfig, cmd Commander) *GCPDeployer {
	if cmd == nil {
		cmd = execCommander{}
	}
	return &GCPDeployer{
		log: log.With("provider", ProviderGCP),
		cfg: cfg,
		cmd: cmd,
	}
}

func (d *GCPDeployer) Name() string { return ProviderGCP }

// Deploy runs "gcloud functions deploy" once per region
func (d *GCPDeployer) Deploy(ctx context.Context) ([]Record, error) {
	source, err := filepath.Abs(d.cfg.SourceCodePath)
	if err != nil {
		return nil, newDeployError(ProviderGCP, "", "resolve_source", err)
	}
	info, err := os.Stat(source)
	if err != nil || !info.IsDir() {
		return nil, newDeployError(ProviderGCP, "", "resolve_source",
			fmt.Errorf("source path %s does not exist or is not a directory", source))
	}

	var records []Record
	for _, region := range d.cfg.Regions {
		if err := ctx.Err(); err != nil {
			return records, err
		}
		log := d.log.With("region", region)
		log.Info("Deploying function", "function", d.cfg.FunctionName)

		var url string
		out, err := d.cmd.Run(ctx, "gcloud", d.deployArgs(region, source)...)
		if err == nil {
			url, err = parseGCloudURL(out)
		}
		recordOutcome(ProviderGCP, err)
		if err != nil {
			log.Error("Deployment failed", "error", newDeployError(ProviderGCP, region, "deploy", err))
			continue
		}

		records = append(records, Record{
			Provider:     ProviderGCP,
			Region:       region,
			FunctionName: d.cfg.FunctionName,
			URL:          url,
		})
		log.Info("Successfully deployed", "url", url)
	}
	return records, nil
}

func (d *GCPDeployer) deployArgs(region, source string) []string {
	return []string{
		"functions", "deploy", d.cfg.FunctionName,
		"--project=" + d.cfg.ProjectID,
		"--region=" + region,
		"--runtime=" + d.cfg.Runtime,
		"--entry-point=" + d.cfg.EntryPoint,
		"--trigger-http",
		"--allow-unauthenticated",
		"--memory=" + d.cfg.Memory,
		"--timeout=" + d.cfg.Timeout,
		"--source=" + source,
	}
}

func parseGCloudURL(out []byte) (string, error) {
	m := gcloudURLPattern.FindSubmatch(out)
	if m == nil {
		return "", errors.New("deployment output contains no function URL")
	}
	return string(m[1]), nil
}

// Delete runs "gcloud functions delete" for every record
func (d *GCPDeployer) Delete(ctx context.Context, records []Record) error {
	var errs []error
	for _, r := range records {
		log := d.log.With("region", r.Region, "function", r.FunctionName)
		_, err := d.cmd.Run(ctx, "gcloud",
			"functions", "delete", r.FunctionName,
			"--project="+d.cfg.ProjectID,
			"--region="+r.Region,
			"--quiet",
		)
		if err != nil {
			log.Error("Failed to delete function", "error", err)
			errs = append(errs, newDeployError(ProviderGCP, r.Region, "delete", err))
			continue
		}
		log.Info("Deleted function")
	}
	return deleteErrors(errs)
}
