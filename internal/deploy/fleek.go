package deploy

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"serverless-bench/internal/config"
)

// fleekRegion names the single deployment Fleek serves from its edge
const fleekRegion = "global"

type fleekDeployRequest struct {
	TeamID string `json:"teamId"`
	SiteID string `json:"siteId"`
	Source string `json:"source"`
}

type fleekDeployResponse struct {
	DeployURL string `json:"deployUrl"`
}

// FleekDeployer deploys the function to a Fleek site
type FleekDeployer struct {
	log    *slog.Logger
	cfg    config.FleekConfig
	client *http.Client
}

// NewFleekDeployer creates a new Fleek deployer
func NewFleekDeployer(log *slog.Logger, cfg config.FleekConfig, client *http.Client) *FleekDeployer {
	if client == nil {
		client = newAPIClient()
	}
	return &FleekDeployer{
		log:    log.With("provider", ProviderFleek),
		cfg:    cfg,
		client: client,
	}
}

func (d *FleekDeployer) Name() string { return ProviderFleek }

// Deploy publishes the source to the configured site
func (d *FleekDeployer) Deploy(ctx context.Context) ([]Record, error) {
	source, err := os.ReadFile(d.cfg.SourceCodePath)
	if err != nil {
		return nil, newDeployError(ProviderFleek, "", "read_source", err)
	}

	endpoint := strings.TrimRight(d.cfg.APIURL, "/") + "/v1/sites/deploy"

	var resp fleekDeployResponse
	err = doJSON(ctx, d.client, http.MethodPost, endpoint, d.cfg.APIKey, fleekDeployRequest{
		TeamID: d.cfg.TeamID,
		SiteID: d.cfg.SiteID,
		Source: string(source),
	}, &resp)
	if err == nil && resp.DeployURL == "" {
		err = errors.New("response contains no deploy URL")
	}
	recordOutcome(ProviderFleek, err)
	if err != nil {
		d.log.Error("Deployment failed", "error", newDeployError(ProviderFleek, fleekRegion, "deploy", err))
		return nil, nil
	}

	d.log.Info("Successfully deployed", "url", resp.DeployURL)
	return []Record{{
		Provider:     ProviderFleek,
		Region:       fleekRegion,
		FunctionName: d.cfg.SiteID,
		URL:          resp.DeployURL,
	}}, nil
}

// Delete is not offered by the Fleek deploy API
func (d *FleekDeployer) Delete(ctx context.Context, records []Record) error {
	return ErrDeleteUnsupported
}
