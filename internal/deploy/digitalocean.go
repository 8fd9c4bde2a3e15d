package deploy

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"

	"serverless-bench/internal/config"
)

type doFunctionRequest struct {
	Name       string `json:"name"`
	Region     string `json:"region"`
	SourceCode string `json:"source_code"`
	Memory     int    `json:"memory"`
}

type doFunctionResponse struct {
	Function struct {
		Endpoint string `json:"endpoint"`
	} `json:"function"`
}

// DigitalOceanDeployer deploys the function through the DigitalOcean API
type DigitalOceanDeployer struct {
	log    *slog.Logger
	cfg    config.DigitalOceanConfig
	client *http.Client
}

// NewDigitalOceanDeployer creates a new DigitalOcean deployer
func NewDigitalOceanDeployer(log *slog.Logger, cfg config.DigitalOceanConfig, client *http.Client) *DigitalOceanDeployer {
	if client == nil {
		client = newAPIClient()
	}
	return &DigitalOceanDeployer{
		log:    log.With("provider", ProviderDigitalOcean),
		cfg:    cfg,
		client: client,
	}
}

func (d *DigitalOceanDeployer) Name() string { return ProviderDigitalOcean }

// Deploy creates the function in every configured region
func (d *DigitalOceanDeployer) Deploy(ctx context.Context) ([]Record, error) {
	source, err := os.ReadFile(d.cfg.SourceCodePath)
	if err != nil {
		return nil, newDeployError(ProviderDigitalOcean, "", "read_source", err)
	}

	endpoint := strings.TrimRight(d.cfg.APIURL, "/") + "/v2/functions"

	var records []Record
	for _, region := range d.cfg.Regions {
		if err := ctx.Err(); err != nil {
			return records, err
		}
		log := d.log.With("region", region)
		log.Info("Deploying function", "function", d.cfg.FunctionName)

		var resp doFunctionResponse
		err := doJSON(ctx, d.client, http.MethodPost, endpoint, d.cfg.APIToken, doFunctionRequest{
			Name:       d.cfg.FunctionName,
			Region:     region,
			SourceCode: string(source),
			Memory:     d.cfg.MemoryMB,
		}, &resp)
		if err == nil && resp.Function.Endpoint == "" {
			err = fmt.Errorf("response contains no function endpoint")
		}
		recordOutcome(ProviderDigitalOcean, err)
		if err != nil {
			log.Error("Deployment failed", "error", newDeployError(ProviderDigitalOcean, region, "create_function", err))
			continue
		}

		records = append(records, Record{
			Provider:     ProviderDigitalOcean,
			Region:       region,
			FunctionName: d.cfg.FunctionName,
			URL:          resp.Function.Endpoint,
		})
		log.Info("Successfully deployed", "url", resp.Function.Endpoint)
	}
	return records, nil
}

// Delete removes the function from every recorded region
func (d *DigitalOceanDeployer) Delete(ctx context.Context, records []Record) error {
	base := strings.TrimRight(d.cfg.APIURL, "/") + "/v2/functions/"

	var errs []error
	for _, r := range records {
		log := d.log.With("region", r.Region, "function", r.FunctionName)
		endpoint := base + url.PathEscape(r.FunctionName) + "?region=" + url.QueryEscape(r.Region)
		if err := doJSON(ctx, d.client, http.MethodDelete, endpoint, d.cfg.APIToken, nil, nil); err != nil {
			log.Error("Failed to delete function", "error", err)
			errs = append(errs, newDeployError(ProviderDigitalOcean, r.Region, "delete_function", err))
			continue
		}
		log.Info("Deleted function")
	}
	return deleteErrors(errs)
}
