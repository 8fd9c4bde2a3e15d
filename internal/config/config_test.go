package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestConfig_LoadConfig_JSONDefaults(t *testing.T) {
	path := writeConfig(t, "config.json", `{"aws": {"regions": ["us-east-1"], "function_name": "bench"}}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, DefaultRequests, cfg.Benchmark.Requests)
	require.Equal(t, DefaultParallelTargets, cfg.Benchmark.ParallelTargets)
	require.Equal(t, DefaultProtocol, cfg.Benchmark.Protocol)
	require.Equal(t, DefaultServicesFile, cfg.Benchmark.ServicesFile)
	require.Equal(t, DefaultCSVFile, cfg.Output.CSVFile)
	require.Equal(t, 30*time.Second, cfg.RequestTimeout())
	require.Equal(t, DefaultAWSRuntime, cfg.AWS.Runtime)
	require.Equal(t, DefaultMemoryMB, cfg.AWS.MemoryMB)
	require.Equal(t, []string{"us-east-1"}, cfg.AWS.Regions)
	require.Equal(t, DefaultGCPEntryPoint, cfg.GCP.EntryPoint)
	require.Equal(t, DefaultDigitalOceanAPIURL, cfg.DigitalOcean.APIURL)
}

func TestConfig_LoadConfig_YAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
benchmark:
  requests: 5
  parallel_targets: 4
  protocol: http2
output:
  csv_file: out.csv
  s3_bucket: results
  s3_prefix: runs
gcp:
  regions: [us-central1, europe-west1]
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 5, cfg.Benchmark.Requests)
	require.Equal(t, 4, cfg.Benchmark.ParallelTargets)
	require.Equal(t, "http2", cfg.Benchmark.Protocol)
	require.Equal(t, "out.csv", cfg.Output.CSVFile)
	require.Equal(t, "runs", cfg.Output.S3Prefix)
	require.Equal(t, []string{"us-central1", "europe-west1"}, cfg.GCP.Regions)
}

func TestConfig_LoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("AWS_LAMBDA_ROLE_ARN", "arn:aws:iam::123456789012:role/lambda")
	t.Setenv("GCP_PROJECT_ID", "bench-project")
	t.Setenv("GCP_RUNTIME", "nodejs20")
	t.Setenv("DIGITALOCEAN_API_TOKEN", "do-token")
	t.Setenv("FLEEK_API_KEY", "fleek-key")

	path := writeConfig(t, "config.json", `{"aws": {"role_arn": "from-file"}, "gcp": {"project_id": "from-file"}}`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "arn:aws:iam::123456789012:role/lambda", cfg.AWS.RoleARN)
	require.Equal(t, "bench-project", cfg.GCP.ProjectID)
	require.Equal(t, "nodejs20", cfg.GCP.Runtime)
	require.Equal(t, "do-token", cfg.DigitalOcean.APIToken)
	require.Equal(t, "fleek-key", cfg.Fleek.APIKey)
}

func TestConfig_LoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadConfig(writeConfig(t, "config.json", `{"benchmark":`))
	require.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "config.json", `{"benchmark": {"requests": -1}}`))
	require.ErrorContains(t, err, "benchmark.requests")

	_, err = LoadConfig(writeConfig(t, "config.json", `{"output": {"s3_prefix": "runs"}}`))
	require.ErrorContains(t, err, "s3_bucket")
}

func TestConfig_Default(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.Equal(t, DefaultRequests, cfg.Benchmark.Requests)
	require.Equal(t, DefaultDeploymentDir, cfg.DeploymentDir)
}

func TestConfig_ValidateDeploy(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	for _, provider := range []string{"aws", "gcp", "do", "fleek"} {
		require.Error(t, cfg.ValidateDeploy(provider), provider)
	}
	require.ErrorContains(t, cfg.ValidateDeploy("azure"), "unknown provider")

	cfg.AWS = AWSConfig{
		Regions:        []string{"us-east-1"},
		FunctionName:   "bench",
		SourceFilePath: "bootstrap",
	}
	require.ErrorContains(t, cfg.ValidateDeploy("aws"), "role_arn")
	cfg.AWS.RoleARN = "arn:aws:iam::123456789012:role/lambda"
	require.NoError(t, cfg.ValidateDeploy("aws"))

	cfg.GCP = GCPConfig{ProjectID: "p", Runtime: "go122", Regions: []string{"us-central1"}, FunctionName: "bench", SourceCodePath: "fn"}
	require.NoError(t, cfg.ValidateDeploy("gcp"))

	cfg.DigitalOcean = DigitalOceanConfig{Regions: []string{"nyc1"}, FunctionName: "bench", SourceCodePath: "fn.js"}
	require.ErrorContains(t, cfg.ValidateDeploy("do"), "DIGITALOCEAN_API_TOKEN")
	cfg.DigitalOcean.APIToken = "token"
	require.NoError(t, cfg.ValidateDeploy("do"))

	cfg.Fleek = FleekConfig{TeamID: "team", SiteID: "site", SourceCodePath: "fn.js", APIKey: "key"}
	require.NoError(t, cfg.ValidateDeploy("fleek"))
}

func TestConfig_ValidateDelete(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	require.NoError(t, cfg.ValidateDelete("aws"))
	require.NoError(t, cfg.ValidateDelete("fleek"))
	require.ErrorContains(t, cfg.ValidateDelete("gcp"), "GCP_PROJECT_ID")
	require.ErrorContains(t, cfg.ValidateDelete("do"), "DIGITALOCEAN_API_TOKEN")
	require.ErrorContains(t, cfg.ValidateDelete("azure"), "unknown provider")

	cfg.GCP.ProjectID = "bench-project"
	cfg.DigitalOcean.APIToken = "token"
	require.NoError(t, cfg.ValidateDelete("gcp"))
	require.NoError(t, cfg.ValidateDelete("do"))
}
